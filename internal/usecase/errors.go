package usecase

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// 存在しないことを表す（BookNotFound / OrderNotFound の共通）
var ErrNotFound = errors.New("not found")

type BookNotFoundError struct {
	BookID string
}

func (e *BookNotFoundError) Error() string {
	return fmt.Sprintf("book %q does not exist", e.BookID)
}

func (e *BookNotFoundError) Is(target error) bool { return target == ErrNotFound }

type OrderNotFoundError struct {
	OrderID string
}

func (e *OrderNotFoundError) Error() string {
	return fmt.Sprintf("order %q does not exist", e.OrderID)
}

func (e *OrderNotFoundError) Is(target error) bool { return target == ErrNotFound }

// 同じ注文に同じ本が2回
type DuplicateBookError struct {
	BookID string
}

func (e *DuplicateBookError) Error() string {
	return fmt.Sprintf("order already contains book %q", e.BookID)
}

type InsufficientStockError struct {
	BookID    string
	Requested int64
	Available int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("not enough stock for book %q: requested %d, available %d", e.BookID, e.Requested, e.Available)
}

// 入力エラー。フィールドごとのメッセージを持つ
type InvalidArgumentError struct {
	Fields map[string]string
}

func NewInvalidArgument(field, msg string) *InvalidArgumentError {
	e := &InvalidArgumentError{Fields: map[string]string{}}
	e.Add(field, msg)
	return e
}

// 同じフィールドは最初のメッセージを残す
func (e *InvalidArgumentError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

func (e *InvalidArgumentError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid argument: " + strings.Join(parts, ", ")
}
