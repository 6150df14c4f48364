// Copyright (c) 2026 BVK Chaitanya

package api

import (
	"time"

	"github.com/shopspring/decimal"
)

const AlertListPath = "/pacwatch/alert/list"

type AlertListRequest struct {
}

type AlertListResponseItem struct {
	UID string

	Candidate string
	PACName   string
	Direction string

	Threshold decimal.Decimal

	CreateTime time.Time

	LastTotal decimal.Decimal

	FiredTime  time.Time
	FiredTotal decimal.Decimal
}

type AlertListResponse struct {
	Alerts []*AlertListResponseItem
}
