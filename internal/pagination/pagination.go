// Package pagination splits ordered sequences into fixed-size pages.
package pagination

// Page is one bounded slice of an ordered sequence plus the metadata
// templates need to render page navigation.
type Page[T any] struct {
	Items      []T
	Number     int
	Size       int
	TotalItems int
	TotalPages int
	HasNext    bool
	HasPrev    bool
}

// PrevNumber is the previous page number, for link building.
func (p Page[T]) PrevNumber() int { return p.Number - 1 }

// NextNumber is the next page number, for link building.
func (p Page[T]) NextNumber() int { return p.Number + 1 }

// Paginate returns the 1-based page `number` of `items`, `size` items per
// page. Out-of-range page numbers are clamped into the valid range, so a
// request past the end yields the last page rather than an empty one. An
// empty sequence yields a single empty page.
func Paginate[T any](items []T, size, number int) Page[T] {
	if size < 1 {
		size = 1
	}

	totalPages := (len(items) + size - 1) / size
	if totalPages < 1 {
		totalPages = 1
	}

	if number < 1 {
		number = 1
	}
	if number > totalPages {
		number = totalPages
	}

	start := (number - 1) * size
	end := start + size
	if start > len(items) {
		start = len(items)
	}
	if end > len(items) {
		end = len(items)
	}

	return Page[T]{
		Items:      items[start:end],
		Number:     number,
		Size:       size,
		TotalItems: len(items),
		TotalPages: totalPages,
		HasNext:    number < totalPages,
		HasPrev:    number > 1,
	}
}
