// Copyright (c) 2023 BVK Chaitanya

package gobs

// KeyValue holds one raw store entry, as written by the backup command and
// consumed by restore.
type KeyValue struct {
	Key   string
	Value []byte
}
