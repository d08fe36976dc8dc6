package routes

import (
	"errors"
	"net/http"

	"github.com/verseprint/backend/internal/server/middleware"
	"github.com/verseprint/backend/pkg/logger"
	"github.com/verseprint/backend/pkg/retrieval"
	"github.com/verseprint/backend/pkg/style"
	"github.com/verseprint/backend/pkg/validate"

	"github.com/labstack/echo/v4"
)

// GenerateHandler produces text in the author's style and returns it with
// the validation report of the accepted (or best surviving) attempt.
func GenerateHandler(c echo.Context) error {
	type generateBody struct {
		Topic          string   `json:"topic" validate:"required"`
		MoodSignals    []string `json:"mood_signals"`
		StructuralHint string   `json:"structural_hint"`
		MaxAttempts    int      `json:"max_attempts"`
	}

	type generateResponse struct {
		Message string           `json:"message"`
		Result  *validate.Result `json:"result,omitempty"`
	}

	authorID := c.Param("author_id")
	if authorID == "" {
		return c.JSON(http.StatusBadRequest, generateResponse{Message: "Missing author ID"})
	}

	data := new(generateBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, generateResponse{Message: "Invalid request body"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, generateResponse{Message: "Invalid request body"})
	}

	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()

	req := retrieval.Request{
		Topic:          data.Topic,
		MoodSignals:    data.MoodSignals,
		StructuralHint: data.StructuralHint,
	}

	result, err := app.Engine.GenerateStyled(ctx, authorID, req, data.MaxAttempts)
	if err != nil {
		switch {
		case errors.Is(err, style.ErrAuthorNotFound), errors.Is(err, style.ErrNoAuthorData):
			return c.JSON(http.StatusNotFound, generateResponse{Message: "No style data for author"})
		case errors.Is(err, style.ErrGenerationUnavailable):
			logger.Error("Generation capability outage", "author_id", authorID, "err", err)
			return c.JSON(http.StatusBadGateway, generateResponse{Message: "Generation temporarily unavailable"})
		default:
			logger.Error("Generation failed", "author_id", authorID, "err", err)
			return c.JSON(http.StatusInternalServerError, generateResponse{Message: "Internal server error"})
		}
	}

	return c.JSON(http.StatusOK, generateResponse{
		Message: "Generation complete",
		Result:  result,
	})
}
