// Package pagination tracks where a paged list stands and which page
// indexes a user may navigate to.
package pagination

import (
	"errors"

	"storefront/internal/domain"
)

var ErrOutOfRange = errors.New("page index out of range")

// State mirrors the backend's envelope. Page is zero-based.
type State struct {
	Page       int
	TotalPages int
	TotalItems int64
	PageSize   int
}

func From[T any](p domain.Page[T]) State {
	return State{Page: p.Number, TotalPages: p.TotalPages, TotalItems: p.TotalElements, PageSize: p.Size}
}

func (s State) HasPrev() bool { return s.Page > 0 }

func (s State) HasNext() bool { return s.Page < s.TotalPages-1 }

// Check allows page 0 (the first fetch, before totals are known) and
// any index below TotalPages.
func (s State) Check(page int) error {
	if page == 0 {
		return nil
	}
	if page < 0 || page >= s.TotalPages {
		return ErrOutOfRange
	}
	return nil
}

func (s State) Prev() (int, error) {
	if !s.HasPrev() {
		return 0, ErrOutOfRange
	}
	return s.Page - 1, nil
}

func (s State) Next() (int, error) {
	if !s.HasNext() {
		return 0, ErrOutOfRange
	}
	return s.Page + 1, nil
}

// Pages lists every navigable index.
func (s State) Pages() []int {
	out := make([]int, s.TotalPages)
	for i := range out {
		out[i] = i
	}
	return out
}

// ShowControls mirrors the storefront: navigation appears only with more
// than one page.
func (s State) ShowControls() bool { return s.TotalPages > 1 }
