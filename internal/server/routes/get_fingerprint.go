package routes

import (
	"errors"
	"net/http"

	"github.com/verseprint/backend/internal/server/middleware"
	"github.com/verseprint/backend/pkg/logger"
	"github.com/verseprint/backend/pkg/style"

	"github.com/labstack/echo/v4"
)

func GetFingerprintHandler(c echo.Context) error {
	type fingerprintResponse struct {
		Message     string                  `json:"message"`
		Fingerprint *style.StyleFingerprint `json:"fingerprint,omitempty"`
	}

	authorID := c.Param("author_id")
	if authorID == "" {
		return c.JSON(http.StatusBadRequest, fingerprintResponse{Message: "Missing author ID"})
	}

	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()

	fp, err := app.Store.GetFingerprint(ctx, authorID)
	if err != nil {
		if errors.Is(err, style.ErrAuthorNotFound) || errors.Is(err, style.ErrNoAuthorData) {
			return c.JSON(http.StatusNotFound, fingerprintResponse{Message: "No fingerprint for author"})
		}
		logger.Error("Failed to load fingerprint", "author_id", authorID, "err", err)
		return c.JSON(http.StatusInternalServerError, fingerprintResponse{Message: "Internal server error"})
	}

	return c.JSON(http.StatusOK, fingerprintResponse{
		Message:     "OK",
		Fingerprint: &fp,
	})
}
