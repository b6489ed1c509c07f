package repository

import "errors"

var (
	// ErrFoodNotFound indicates no record exists for the requested name.
	// This is normal control flow for the cache-aside lookup.
	ErrFoodNotFound = errors.New("food not found")

	// ErrDuplicateFood indicates an insert violated the unique food name
	// constraint. Concurrent resolutions of the same unseen barcode can race
	// to insert; the constraint guarantees at most one row wins.
	ErrDuplicateFood = errors.New("food already exists")
)
