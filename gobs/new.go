// Copyright (c) 2023 BVK Chaitanya

package gobs

import (
	"fmt"
)

func NewByTypename(typename string) (any, error) {
	var v any
	switch typename {
	case "Expenditure":
		v = new(Expenditure)
	case "ServerState":
		v = new(ServerState)
	case "RunState":
		v = new(RunState)
	case "AlertState":
		v = new(AlertState)
	case "TelegramState":
		v = new(TelegramState)
	case "KeyValue":
		v = new(KeyValue)
	default:
		return nil, fmt.Errorf("unsupported type name %q", typename)
	}
	return v, nil
}
