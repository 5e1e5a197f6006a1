package pagination_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dkorchagin/plume/internal/pagination"
)

func numbers(n int) []int {
	items := make([]int, n)
	for i := range items {
		items[i] = i + 1
	}
	return items
}

func TestPaginate_FirstPageIsFull(t *testing.T) {
	page := pagination.Paginate(numbers(12), 10, 1)

	assert.Len(t, page.Items, 10)
	assert.Equal(t, 1, page.Number)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, 12, page.TotalItems)
	assert.True(t, page.HasNext)
	assert.False(t, page.HasPrev)
}

func TestPaginate_LastPageHoldsRemainder(t *testing.T) {
	page := pagination.Paginate(numbers(12), 10, 2)

	assert.Len(t, page.Items, 2)
	assert.Equal(t, []int{11, 12}, page.Items)
	assert.False(t, page.HasNext)
	assert.True(t, page.HasPrev)
}

func TestPaginate_ClampsOutOfRangePages(t *testing.T) {
	page := pagination.Paginate(numbers(12), 10, 99)
	assert.Equal(t, 2, page.Number)
	assert.Equal(t, []int{11, 12}, page.Items)

	page = pagination.Paginate(numbers(12), 10, -3)
	assert.Equal(t, 1, page.Number)
	assert.Len(t, page.Items, 10)
}

func TestPaginate_EmptySequence(t *testing.T) {
	page := pagination.Paginate(numbers(0), 10, 1)

	assert.Empty(t, page.Items)
	assert.Equal(t, 1, page.Number)
	assert.Equal(t, 1, page.TotalPages)
	assert.False(t, page.HasNext)
	assert.False(t, page.HasPrev)
}

func TestPaginate_ExactMultiple(t *testing.T) {
	page := pagination.Paginate(numbers(20), 10, 2)

	assert.Len(t, page.Items, 10)
	assert.Equal(t, 2, page.TotalPages)
	assert.False(t, page.HasNext)
}
