// Copyright (c) 2026 BVK Chaitanya

package api

const AlertRemovePath = "/pacwatch/alert/remove"

type AlertRemoveRequest struct {
	UID string
}

type AlertRemoveResponse struct {
}
