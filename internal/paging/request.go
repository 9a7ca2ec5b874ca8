package paging

import (
	"errors"
	"fmt"
	"strings"

	"github.com/asteroid-belt/pantry/internal/models"
)

// Variant discriminates a LoadType.
type Variant int

const (
	VariantAll Variant = iota
	VariantSearch
	VariantCategory
)

func (v Variant) String() string {
	switch v {
	case VariantSearch:
		return "search"
	case VariantCategory:
		return "category"
	default:
		return "all"
	}
}

// LoadType selects which feed a page belongs to: every recipe, a text
// search, or one category. Build it with All, Search or Category.
// LoadType is comparable and safe to use as a map key.
type LoadType struct {
	variant Variant
	value   string
}

// All selects every recipe.
func All() LoadType { return LoadType{variant: VariantAll} }

// Search selects recipes matching query.
func Search(query string) LoadType { return LoadType{variant: VariantSearch, value: query} }

// Category selects recipes with the given API tag.
func Category(tag string) LoadType { return LoadType{variant: VariantCategory, value: tag} }

// ForCategory maps a catalog entry to its load type. The "all" entry maps to All.
func ForCategory(c models.Category) LoadType {
	if c.IsAll() {
		return All()
	}
	return Category(c.APITag)
}

// Variant returns the discriminator.
func (t LoadType) Variant() Variant { return t.variant }

// Query returns the search text for a Search load type.
func (t LoadType) Query() (string, bool) {
	return t.value, t.variant == VariantSearch
}

// Tag returns the category tag for a Category load type.
func (t LoadType) Tag() (string, bool) {
	return t.value, t.variant == VariantCategory
}

func (t LoadType) String() string {
	if t.variant == VariantAll {
		return "all"
	}
	return fmt.Sprintf("%s(%q)", t.variant, t.value)
}

// ErrInvalidRequest is returned for malformed page requests.
var ErrInvalidRequest = errors.New("invalid page request")

// Request asks for one page of a feed.
type Request struct {
	Type  LoadType
	Index int
	Size  int
}

// Validate checks the request's bounds and payload.
func (r Request) Validate() error {
	if r.Index < 0 {
		return fmt.Errorf("%w: negative index %d", ErrInvalidRequest, r.Index)
	}
	if r.Size <= 0 {
		return fmt.Errorf("%w: size must be positive, got %d", ErrInvalidRequest, r.Size)
	}
	if r.Type.variant != VariantAll && strings.TrimSpace(r.Type.value) == "" {
		return fmt.Errorf("%w: empty %s payload", ErrInvalidRequest, r.Type.variant)
	}
	return nil
}

// Offset is the zero-based position of the page's first record.
func (r Request) Offset() int {
	return r.Index * r.Size
}

// Source tells where a page came from.
type Source string

const (
	SourceRemote Source = "remote"
	SourceCache  Source = "cache"
)

// Page is one page of records with its cursors.
// Prev is nil on the first page. Next is nil once fewer than Size records come back.
type Page struct {
	Records []models.Recipe
	Prev    *int
	Next    *int
	Source  Source
}

// cursors computes Prev and Next for a page of n records.
func cursors(req Request, n int) (prev, next *int) {
	if req.Index > 0 {
		p := req.Index - 1
		prev = &p
	}
	if n >= req.Size {
		x := req.Index + 1
		next = &x
	}
	return prev, next
}
