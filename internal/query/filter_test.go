package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperr "github.com/cookshelf/backend/internal/errors"
)

func TestCompileFiltersEmpty(t *testing.T) {
	fs, err := CompileFilters("", time.Now())
	require.NoError(t, err)
	assert.Empty(t, fs.Filters)
}

func TestCompileFiltersComplexityRange(t *testing.T) {
	fs, err := CompileFilters("complexity:2-4", time.Now())
	require.NoError(t, err)
	require.Len(t, fs.Filters, 1)
	assert.Equal(t, "recipes.complexity >= ? AND recipes.complexity <= ?", fs.Filters[0].Clause)
	assert.Equal(t, []any{2, 4}, fs.Filters[0].Args)
	assert.Equal(t, "complexity:2-4", fs.Raw)
}

func TestCompileFiltersTimeToPrepareRange(t *testing.T) {
	fs, err := CompileFilters("time_to_prepare:10-60", time.Now())
	require.NoError(t, err)
	require.Len(t, fs.Filters, 1)
	assert.Equal(t, []any{10, 60}, fs.Filters[0].Args)
}

func TestCompileFiltersCreatedBy(t *testing.T) {
	fs, err := CompileFilters("created_by:7", time.Now())
	require.NoError(t, err)
	require.Len(t, fs.Filters, 1)
	assert.Equal(t, "recipes.created_by_id = ?", fs.Filters[0].Clause)
	assert.Equal(t, []any{uint64(7)}, fs.Filters[0].Args)
}

func TestCompileFiltersPeriod(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	fs, err := CompileFilters("period:30", now)
	require.NoError(t, err)
	require.Len(t, fs.Filters, 1)
	assert.Equal(t, "recipes.created_on >= ?", fs.Filters[0].Clause)
	assert.Equal(t, []any{now.AddDate(0, 0, -30)}, fs.Filters[0].Args)
}

func TestCompileFiltersCategorySet(t *testing.T) {
	fs, err := CompileFilters("category:1-2-3", time.Now())
	require.NoError(t, err)
	require.Len(t, fs.Filters, 1)
	assert.Equal(t, "recipes.recipe_category_id IN ?", fs.Filters[0].Clause)
	assert.Equal(t, []any{[]uint64{1, 2, 3}}, fs.Filters[0].Args)
}

func TestCompileFiltersMultiple(t *testing.T) {
	fs, err := CompileFilters("complexity:1-3,category:2,created_by:5", time.Now())
	require.NoError(t, err)
	assert.Len(t, fs.Filters, 3)
}

func TestCompileFiltersUnknownFieldRejectsWholeSet(t *testing.T) {
	_, err := CompileFilters("complexity:1-3,bogus:1-2", time.Now())
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalid))

	var ae *apperr.AppError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "bogus", ae.Meta["field"])
}

func TestCompileFiltersMalformedConditions(t *testing.T) {
	cases := []string{
		"complexity:abc",       // not a range
		"complexity:1-",        // empty upper bound
		"complexity:4-2",       // inverted range
		"complexity:",          // missing condition
		"complexity",           // missing separator
		"created_by:alice",     // non-integer id
		"period:soon",          // non-integer days
		"period:-3",            // negative days
		"category:1-two-3",     // non-integer in set
		"time_to_prepare:a-b",  // non-integer range
		"time_to_prepare:1--5", // stray separator
	}
	for _, raw := range cases {
		_, err := CompileFilters(raw, time.Now())
		assert.Error(t, err, "expected %q to be rejected", raw)
		assert.True(t, apperr.IsCode(err, apperr.CodeInvalid), "expected invalid code for %q", raw)
	}
}
