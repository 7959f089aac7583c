package repository

import "errors"

var (
	ErrNotFound = errors.New("not found")

	// 一意制約違反（同じ注文に同じ本など）
	ErrDuplicate = errors.New("duplicate")
)
