package repository

import "errors"

var (
	// ErrNoMorePages is returned by NextPage once the feed is exhausted.
	ErrNoMorePages = errors.New("no more pages")

	// ErrNoPreviousPage is returned by PrevPage on the first page.
	ErrNoPreviousPage = errors.New("already at the first page")

	// ErrRecipeNotFound is returned when a recipe is not in the local cache.
	ErrRecipeNotFound = errors.New("recipe not found in cache")
)
