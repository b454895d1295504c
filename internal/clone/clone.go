//
// Tencent is pleased to support the open source community by making trpc-agenteval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agenteval-go is licensed under the Apache License Version 2.0.
//
//

// Package clone provides deep-copy helpers for persisted record types.
package clone

import (
	"encoding/json"
	"errors"
)

// Clone deep-copies src through a JSON round trip. All persisted types in
// this module are JSON-serializable, which keeps the copy rule uniform
// across managers.
func Clone[T any](src *T) (*T, error) {
	if src == nil {
		return nil, errors.New("nil input")
	}
	data, err := json.Marshal(src)
	if err != nil {
		return nil, err
	}
	var dst T
	if err := json.Unmarshal(data, &dst); err != nil {
		return nil, err
	}
	return &dst, nil
}

// CloneSlice deep-copies a slice of pointers, preserving nil elements.
func CloneSlice[T any](src []*T) ([]*T, error) {
	if src == nil {
		return nil, nil
	}
	dst := make([]*T, 0, len(src))
	for _, item := range src {
		if item == nil {
			dst = append(dst, nil)
			continue
		}
		cloned, err := Clone(item)
		if err != nil {
			return nil, err
		}
		dst = append(dst, cloned)
	}
	return dst, nil
}
