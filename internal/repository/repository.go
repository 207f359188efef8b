package repository

// Package repository contains the data access layer abstractions.
// Implementations live in subpackages (postgres today) inside this
// directory and hold strictly persistence logic.

// PageQuery holds limit/offset pagination parameters plus an optional
// owner filter.
type PageQuery struct {
	Limit   int
	Offset  int
	OwnerID string
}

// PageResult is a generic pagination result wrapper.
type PageResult[T any] struct {
	Items []T
	Total int
}
