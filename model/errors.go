package model

import "errors"

var (
	ErrNotFound          = errors.New("record not found")
	ErrSuperseded        = errors.New("search superseded by a newer one")
	ErrImageSearchFailed = errors.New("image search failed")
)
