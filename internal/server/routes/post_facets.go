package routes

import (
	"errors"
	"net/http"

	"github.com/verseprint/backend/internal/server/middleware"
	"github.com/verseprint/backend/pkg/logger"
	"github.com/verseprint/backend/pkg/retrieval"
	"github.com/verseprint/backend/pkg/style"

	"github.com/labstack/echo/v4"
)

// GetFacetsHandler runs the facet retrieval for a request without
// generating, useful for inspecting what context a generation would see.
func GetFacetsHandler(c echo.Context) error {
	type facetsBody struct {
		Topic          string   `json:"topic"`
		MoodSignals    []string `json:"mood_signals"`
		StructuralHint string   `json:"structural_hint"`
	}

	type facetsResponse struct {
		Message string             `json:"message"`
		Bundle  *style.FacetBundle `json:"bundle,omitempty"`
	}

	authorID := c.Param("author_id")
	if authorID == "" {
		return c.JSON(http.StatusBadRequest, facetsResponse{Message: "Missing author ID"})
	}

	data := new(facetsBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, facetsResponse{Message: "Invalid request body"})
	}

	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()

	bundle, err := app.Retriever.RetrieveFacets(ctx, authorID, retrieval.Request{
		Topic:          data.Topic,
		MoodSignals:    data.MoodSignals,
		StructuralHint: data.StructuralHint,
	})
	if err != nil {
		if errors.Is(err, style.ErrAuthorNotFound) || errors.Is(err, style.ErrNoAuthorData) {
			return c.JSON(http.StatusNotFound, facetsResponse{Message: "No style data for author"})
		}
		logger.Error("Facet retrieval failed", "author_id", authorID, "err", err)
		return c.JSON(http.StatusInternalServerError, facetsResponse{Message: "Internal server error"})
	}

	return c.JSON(http.StatusOK, facetsResponse{
		Message: "Facets retrieved",
		Bundle:  bundle,
	})
}
