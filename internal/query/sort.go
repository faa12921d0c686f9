package query

import (
	"strings"

	apperr "github.com/cookshelf/backend/internal/errors"
)

// sortColumns is the fixed allow-list of sortable fields. The two dotted
// entries resolve against the joined category table; everything else is a
// recipe column.
var sortColumns = map[string]string{
	"id":              "recipes.id",
	"name":            "recipes.name",
	"complexity":      "recipes.complexity",
	"time_to_prepare": "recipes.time_to_prepare",
	"serves":          "recipes.serves",
	"calories":        "recipes.calories",
	"carbo":           "recipes.carbo",
	"fats":            "recipes.fats",
	"proteins":        "recipes.proteins",
	"cholesterol":     "recipes.cholesterol",
	"created_on":      "recipes.created_on",
	"category.id":     "recipe_categories.id",
	"category.name":   "recipe_categories.name",
}

// SortSet is the compiled form of a `sort=` query fragment. Orders holds SQL
// order expressions in precedence order; Raw keeps the original fragment for
// pagination links.
type SortSet struct {
	Orders []string
	Raw    string
}

// CompileSort parses comma-separated field:direction pairs into an ordered
// list of SQL order expressions. Direction defaults to desc when omitted.
// The empty string compiles to the default order, newest first by id.
//
// `recipes.id DESC` is always appended as the final key so equal rows page
// deterministically regardless of the requested sort.
func CompileSort(raw string) (SortSet, error) {
	ss := SortSet{Raw: raw}
	if strings.TrimSpace(raw) == "" {
		ss.Orders = []string{"recipes.id DESC"}
		return ss, nil
	}

	sawID := false
	for _, pair := range strings.Split(raw, ",") {
		field, dir, found := strings.Cut(strings.TrimSpace(pair), ":")
		if !found || dir == "" {
			dir = "desc"
		}

		column, ok := sortColumns[field]
		if !ok {
			return SortSet{}, apperr.Newf(apperr.CodeInvalid, "unknown sort field %q", field).WithMeta("field", field)
		}

		switch strings.ToLower(dir) {
		case "asc":
			ss.Orders = append(ss.Orders, column+" ASC")
		case "desc":
			ss.Orders = append(ss.Orders, column+" DESC")
		default:
			return SortSet{}, apperr.Newf(apperr.CodeInvalid, "invalid sort direction %q for field %q", dir, field).WithMeta("field", field)
		}

		if field == "id" {
			sawID = true
		}
	}

	if !sawID {
		ss.Orders = append(ss.Orders, "recipes.id DESC")
	}
	return ss, nil
}

// OrderClause joins the compiled order expressions for gorm's Order.
func (s SortSet) OrderClause() string {
	return strings.Join(s.Orders, ", ")
}
