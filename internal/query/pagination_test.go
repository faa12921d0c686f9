package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperr "github.com/cookshelf/backend/internal/errors"
)

func TestNewPage(t *testing.T) {
	p, err := NewPage(1, 10, 25)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, int64(25), p.TotalItems)
	assert.Equal(t, 0, p.Offset)
	assert.False(t, p.HasPrevious())
	assert.True(t, p.HasNext())
}

func TestNewPageOffset(t *testing.T) {
	p, err := NewPage(3, 10, 25)
	require.NoError(t, err)
	assert.Equal(t, 20, p.Offset)
	assert.True(t, p.HasPrevious())
	assert.False(t, p.HasNext())
}

func TestNewPageEmptyResultSet(t *testing.T) {
	p, err := NewPage(1, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 1, p.TotalPages)
	assert.Equal(t, 0, p.Offset)
	assert.False(t, p.HasPrevious())
	assert.False(t, p.HasNext())
}

func TestNewPageClampsBeyondLastPage(t *testing.T) {
	p, err := NewPage(9, 10, 25)
	require.NoError(t, err)
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 20, p.Offset)
}

func TestNewPageClampsBelowFirstPage(t *testing.T) {
	p, err := NewPage(0, 10, 25)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Page)
}

func TestNewPageRejectsNonPositivePageSize(t *testing.T) {
	_, err := NewPage(1, 0, 25)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalid))
}

func TestPageLinksCarryFiltersAndSort(t *testing.T) {
	p, err := NewPage(2, 10, 25)
	require.NoError(t, err)

	filters := FilterSet{Raw: "complexity:2-4"}
	sorts := SortSet{Raw: "category.name:asc"}

	prev := p.PreviousLink("/api/v1/recipes", filters, sorts)
	next := p.NextLink("/api/v1/recipes", filters, sorts)

	assert.Contains(t, prev, "page=1")
	assert.Contains(t, next, "page=3")
	for _, link := range []string{prev, next} {
		assert.Contains(t, link, "page_size=10")
		assert.Contains(t, link, "filters=complexity%3A2-4")
		assert.Contains(t, link, "sort=category.name%3Aasc")
	}
}

func TestPageLinksAbsentAtBoundaries(t *testing.T) {
	first, err := NewPage(1, 10, 25)
	require.NoError(t, err)
	assert.Empty(t, first.PreviousLink("/api/v1/recipes", FilterSet{}, SortSet{}))

	last, err := NewPage(3, 10, 25)
	require.NoError(t, err)
	assert.Empty(t, last.NextLink("/api/v1/recipes", FilterSet{}, SortSet{}))
}
