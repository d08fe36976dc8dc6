package routes

import (
	"errors"
	"net/http"

	"github.com/verseprint/backend/internal/server/middleware"
	"github.com/verseprint/backend/pkg/logger"
	"github.com/verseprint/backend/pkg/style"

	"github.com/labstack/echo/v4"
)

func GetAuthorHandler(c echo.Context) error {
	type authorResponse struct {
		Message    string        `json:"message"`
		Author     *style.Author `json:"author,omitempty"`
		HasDerived bool          `json:"hasDerived"`
	}

	authorID := c.Param("author_id")
	if authorID == "" {
		return c.JSON(http.StatusBadRequest, authorResponse{Message: "Missing author ID"})
	}

	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()

	author, err := app.Store.GetAuthor(ctx, authorID)
	if err != nil {
		if errors.Is(err, style.ErrAuthorNotFound) {
			return c.JSON(http.StatusNotFound, authorResponse{Message: "Author not found"})
		}
		logger.Error("Failed to load author", "author_id", authorID, "err", err)
		return c.JSON(http.StatusInternalServerError, authorResponse{Message: "Internal server error"})
	}

	hasDerived, err := app.Store.HasDerived(ctx, authorID)
	if err != nil {
		logger.Error("Failed to check derived layer", "author_id", authorID, "err", err)
		return c.JSON(http.StatusInternalServerError, authorResponse{Message: "Internal server error"})
	}

	return c.JSON(http.StatusOK, authorResponse{
		Message:    "OK",
		Author:     &author,
		HasDerived: hasDerived,
	})
}
