package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperr "github.com/cookshelf/backend/internal/errors"
)

func TestCompileSortDefault(t *testing.T) {
	ss, err := CompileSort("")
	require.NoError(t, err)
	assert.Equal(t, []string{"recipes.id DESC"}, ss.Orders)
	assert.Equal(t, "recipes.id DESC", ss.OrderClause())
}

func TestCompileSortExplicitDirection(t *testing.T) {
	ss, err := CompileSort("name:asc")
	require.NoError(t, err)
	assert.Equal(t, []string{"recipes.name ASC", "recipes.id DESC"}, ss.Orders)
}

func TestCompileSortDirectionDefaultsToDesc(t *testing.T) {
	ss, err := CompileSort("complexity")
	require.NoError(t, err)
	assert.Equal(t, []string{"recipes.complexity DESC", "recipes.id DESC"}, ss.Orders)
}

func TestCompileSortCategoryColumns(t *testing.T) {
	ss, err := CompileSort("category.name:asc,category.id:desc")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"recipe_categories.name ASC",
		"recipe_categories.id DESC",
		"recipes.id DESC",
	}, ss.Orders)
}

func TestCompileSortPrecedenceIsLeftToRight(t *testing.T) {
	ss, err := CompileSort("complexity:desc,time_to_prepare:asc")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"recipes.complexity DESC",
		"recipes.time_to_prepare ASC",
		"recipes.id DESC",
	}, ss.Orders)
}

func TestCompileSortExplicitIDSkipsTiebreak(t *testing.T) {
	ss, err := CompileSort("id:asc")
	require.NoError(t, err)
	assert.Equal(t, []string{"recipes.id ASC"}, ss.Orders)
}

func TestCompileSortUnknownField(t *testing.T) {
	_, err := CompileSort("embedding:asc")
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalid))

	var ae *apperr.AppError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "embedding", ae.Meta["field"])
}

func TestCompileSortInvalidDirection(t *testing.T) {
	_, err := CompileSort("name:sideways")
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalid))
}
