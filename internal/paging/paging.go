package paging

import (
	"fmt"

	"github.com/MyNameIsWhaaat/nearbuy/internal/apperr"
)

const DefaultSize = 10

type Request struct {
	Page int
	Size int
}

func (r Request) Validate() error {
	if r.Page < 1 {
		return fmt.Errorf("%w: page must be >= 1", apperr.ErrValidation)
	}
	if r.Size < 1 {
		return fmt.Errorf("%w: page size must be >= 1", apperr.ErrValidation)
	}
	return nil
}

// Offset is the number of records that precede the page.
func (r Request) Offset() int {
	return (r.Page - 1) * r.Size
}

// Bounds clamps the page window to [0, total].
func (r Request) Bounds(total int) (start, end int) {
	start = r.Offset()
	if start > total {
		start = total
	}
	end = start + r.Size
	if end > total {
		end = total
	}
	return start, end
}

type Result[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	Size       int `json:"size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func NewResult[T any](items []T, r Request, total int) Result[T] {
	if items == nil {
		items = []T{}
	}
	return Result[T]{
		Items:      items,
		Page:       r.Page,
		Size:       r.Size,
		Total:      total,
		TotalPages: TotalPages(total, r.Size),
	}
}

// TotalPages is ceil(total/size); zero when there is nothing to page.
func TotalPages(total, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return (total + size - 1) / size
}
