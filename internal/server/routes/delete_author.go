package routes

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/verseprint/backend/internal/queue"
	"github.com/verseprint/backend/internal/server/middleware"
	"github.com/verseprint/backend/pkg/logger"
	"github.com/verseprint/backend/pkg/style"

	"github.com/labstack/echo/v4"
)

// DeleteAuthorHandler queues removal of an author and every node derived
// from their corpus. Deletion runs on the worker so it can wait behind any
// in-flight ingestion for the same author.
func DeleteAuthorHandler(c echo.Context) error {
	type deleteResponse struct {
		Message string `json:"message"`
	}

	authorID := c.Param("author_id")
	if authorID == "" {
		return c.JSON(http.StatusBadRequest, deleteResponse{Message: "Missing author ID"})
	}

	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()

	if _, err := app.Store.GetAuthor(ctx, authorID); err != nil {
		if errors.Is(err, style.ErrAuthorNotFound) {
			return c.JSON(http.StatusNotFound, deleteResponse{Message: "Author not found"})
		}
		logger.Error("Failed to load author", "author_id", authorID, "err", err)
		return c.JSON(http.StatusInternalServerError, deleteResponse{Message: "Internal server error"})
	}

	msgBytes, err := json.Marshal(queue.DeleteMsg{AuthorID: authorID})
	if err != nil {
		logger.Error("Failed to marshal delete message", "author_id", authorID, "err", err)
		return c.JSON(http.StatusInternalServerError, deleteResponse{Message: "Internal server error"})
	}
	if err := queue.PublishFIFO(app.Queue, queue.DeleteQueue, msgBytes); err != nil {
		logger.Error("Failed to queue deletion", "author_id", authorID, "err", err)
		return c.JSON(http.StatusInternalServerError, deleteResponse{Message: "Internal server error"})
	}

	app.Retriever.InvalidateAuthor(authorID)

	return c.JSON(http.StatusAccepted, deleteResponse{Message: "Deletion queued"})
}
