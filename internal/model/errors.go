package model

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrEmptyTitle     = errors.New("title must not be empty")
	ErrInvalidType    = errors.New("invalid question type")
	ErrInvalidLogic   = errors.New("logic must be AND or OR")
	ErrInvalidContent = errors.New("invalid question content")
	ErrInvalidReorder = errors.New("section order must be a permutation of existing sections")
)
