package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperr "github.com/cookshelf/backend/internal/errors"
	"github.com/cookshelf/backend/internal/models"
	"github.com/cookshelf/backend/internal/query"
)

// writeError maps an application error code onto the HTTP status and renders
// the uniform error body. Unrecognized errors become opaque 500s.
func writeError(c *gin.Context, err error) {
	var appErr *apperr.AppError
	status := http.StatusInternalServerError
	message := "internal server error"
	var meta map[string]any

	if errors.As(err, &appErr) {
		message = appErr.Message
		meta = appErr.Meta
		switch appErr.Code {
		case apperr.CodeInvalid:
			status = http.StatusUnprocessableEntity
		case apperr.CodeNotFound:
			status = http.StatusNotFound
		case apperr.CodeConflict:
			status = http.StatusBadRequest
		case apperr.CodeUnauthorized:
			status = http.StatusUnauthorized
		case apperr.CodeForbidden:
			status = http.StatusForbidden
		case apperr.CodeUnavailable:
			status = http.StatusServiceUnavailable
		default:
			message = "internal server error"
		}
	}

	body := gin.H{"error": message}
	if len(meta) > 0 {
		body["meta"] = meta
	}
	c.JSON(status, body)
}

// RecipeView is a recipe decorated with the creator's display name.
type RecipeView struct {
	models.Recipe
	CreatedByName string `json:"created_by_name"`
}

// PageEnvelope is the uniform list response: items plus pagination state and
// ready-made navigation links.
type PageEnvelope struct {
	Items        any    `json:"items"`
	TotalItems   int64  `json:"total_items"`
	TotalPages   int    `json:"total_pages"`
	Page         int    `json:"page"`
	PageSize     int    `json:"page_size"`
	NextPage     string `json:"next_page,omitempty"`
	PreviousPage string `json:"previous_page,omitempty"`
}

func newPageEnvelope(items any, pg query.Page, basePath string, filters query.FilterSet, sorts query.SortSet) PageEnvelope {
	return PageEnvelope{
		Items:        items,
		TotalItems:   pg.TotalItems,
		TotalPages:   pg.TotalPages,
		Page:         pg.Page,
		PageSize:     pg.PageSize,
		NextPage:     pg.NextLink(basePath, filters, sorts),
		PreviousPage: pg.PreviousLink(basePath, filters, sorts),
	}
}
