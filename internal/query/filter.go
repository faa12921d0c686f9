package query

import (
	"strconv"
	"strings"
	"time"

	apperr "github.com/cookshelf/backend/internal/errors"
)

// Filter is one compiled predicate, expressed as a SQL fragment plus its
// arguments so the repository can chain it onto a gorm query.
type Filter struct {
	Clause string
	Args   []any
}

// FilterSet is the compiled form of a `filters=` query fragment. Raw keeps the
// original fragment so pagination links can carry the user's view forward.
type FilterSet struct {
	Filters []Filter
	Raw     string
}

func invalidFilterField(field string) error {
	return apperr.Newf(apperr.CodeInvalid, "unknown filter field %q", field).WithMeta("field", field)
}

func invalidFilterCondition(field string) error {
	return apperr.Newf(apperr.CodeInvalid, "invalid filter condition for field %q", field).WithMeta("field", field)
}

// CompileFilters parses a comma-separated list of field:condition pairs into
// predicates over the recipe listing query. Recognized fields:
//
//	complexity:lo-hi        inclusive integer range
//	time_to_prepare:lo-hi   inclusive integer range
//	created_by:id           equality on creator id
//	period:days             created within the last N days
//	category:1-2-3          category id within the given set
//
// Any unknown field or malformed condition rejects the whole set; filters are
// never silently dropped.
func CompileFilters(raw string, now time.Time) (FilterSet, error) {
	fs := FilterSet{Raw: raw}
	if strings.TrimSpace(raw) == "" {
		return fs, nil
	}

	for _, pair := range strings.Split(raw, ",") {
		field, cond, found := strings.Cut(strings.TrimSpace(pair), ":")
		if !found || cond == "" {
			return FilterSet{}, invalidFilterCondition(field)
		}

		switch field {
		case "complexity":
			lo, hi, err := parseRange(cond)
			if err != nil {
				return FilterSet{}, invalidFilterCondition(field)
			}
			fs.Filters = append(fs.Filters, Filter{
				Clause: "recipes.complexity >= ? AND recipes.complexity <= ?",
				Args:   []any{lo, hi},
			})
		case "time_to_prepare":
			lo, hi, err := parseRange(cond)
			if err != nil {
				return FilterSet{}, invalidFilterCondition(field)
			}
			fs.Filters = append(fs.Filters, Filter{
				Clause: "recipes.time_to_prepare >= ? AND recipes.time_to_prepare <= ?",
				Args:   []any{lo, hi},
			})
		case "created_by":
			id, err := strconv.ParseUint(cond, 10, 64)
			if err != nil {
				return FilterSet{}, invalidFilterCondition(field)
			}
			fs.Filters = append(fs.Filters, Filter{
				Clause: "recipes.created_by_id = ?",
				Args:   []any{id},
			})
		case "period":
			days, err := strconv.Atoi(cond)
			if err != nil || days < 0 {
				return FilterSet{}, invalidFilterCondition(field)
			}
			fs.Filters = append(fs.Filters, Filter{
				Clause: "recipes.created_on >= ?",
				Args:   []any{now.AddDate(0, 0, -days)},
			})
		case "category":
			ids, err := parseIDSet(cond)
			if err != nil {
				return FilterSet{}, invalidFilterCondition(field)
			}
			fs.Filters = append(fs.Filters, Filter{
				Clause: "recipes.recipe_category_id IN ?",
				Args:   []any{ids},
			})
		default:
			return FilterSet{}, invalidFilterField(field)
		}
	}

	return fs, nil
}

// parseRange parses "lo-hi" into an inclusive integer range.
func parseRange(cond string) (int, int, error) {
	loStr, hiStr, found := strings.Cut(cond, "-")
	if !found {
		return 0, 0, invalidFilterCondition(cond)
	}
	lo, err := strconv.Atoi(loStr)
	if err != nil {
		return 0, 0, err
	}
	hi, err := strconv.Atoi(hiStr)
	if err != nil {
		return 0, 0, err
	}
	if hi < lo {
		return 0, 0, invalidFilterCondition(cond)
	}
	return lo, hi, nil
}

// parseIDSet parses a "-"-separated list of positive integer ids.
func parseIDSet(cond string) ([]uint64, error) {
	parts := strings.Split(cond, "-")
	ids := make([]uint64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
