package routes

import (
	"encoding/json"
	"net/http"

	"github.com/verseprint/backend/internal/queue"
	"github.com/verseprint/backend/internal/server/middleware"
	"github.com/verseprint/backend/pkg/graph"
	"github.com/verseprint/backend/pkg/logger"
	"github.com/verseprint/backend/pkg/style"

	"github.com/labstack/echo/v4"
)

// IngestAuthorHandler replaces an author's corpus and rebuilds the style
// graph. With async=true the work is queued and the handler returns 202;
// otherwise it runs inline and returns the ingestion report.
func IngestAuthorHandler(c echo.Context) error {
	type ingestDocument struct {
		Title        string `json:"title" validate:"required"`
		CollectionID string `json:"collection_id"`
		Text         string `json:"text"`
		ObjectKey    string `json:"object_key"`
	}

	type ingestBody struct {
		AuthorName string           `json:"author_name" validate:"required"`
		Documents  []ingestDocument `json:"documents" validate:"required,min=1,dive"`
		Async      bool             `json:"async"`
	}

	type ingestResponse struct {
		Message string                 `json:"message"`
		Report  *style.IngestionReport `json:"report,omitempty"`
	}

	authorID := c.Param("author_id")
	if authorID == "" {
		return c.JSON(http.StatusBadRequest, ingestResponse{Message: "Missing author ID"})
	}

	data := new(ingestBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, ingestResponse{Message: "Invalid request body"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, ingestResponse{Message: "Invalid request body"})
	}
	for _, doc := range data.Documents {
		if doc.Text == "" && doc.ObjectKey == "" {
			return c.JSON(http.StatusBadRequest, ingestResponse{
				Message: "Each document needs either text or an object key",
			})
		}
	}

	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()

	if data.Async {
		docs := make([]queue.IngestDocument, 0, len(data.Documents))
		for _, doc := range data.Documents {
			docs = append(docs, queue.IngestDocument{
				Title:        doc.Title,
				CollectionID: doc.CollectionID,
				Text:         doc.Text,
				ObjectKey:    doc.ObjectKey,
			})
		}
		msg := queue.IngestMsg{
			AuthorID:   authorID,
			AuthorName: data.AuthorName,
			Documents:  docs,
		}
		msgBytes, err := json.Marshal(msg)
		if err != nil {
			logger.Error("Failed to marshal ingest message", "author_id", authorID, "err", err)
			return c.JSON(http.StatusInternalServerError, ingestResponse{Message: "Internal server error"})
		}
		if err := queue.PublishFIFO(app.Queue, queue.IngestQueue, msgBytes); err != nil {
			logger.Error("Failed to queue ingestion", "author_id", authorID, "err", err)
			return c.JSON(http.StatusInternalServerError, ingestResponse{Message: "Internal server error"})
		}
		return c.JSON(http.StatusAccepted, ingestResponse{Message: "Ingestion queued"})
	}

	docs := make([]graph.DocumentInput, 0, len(data.Documents))
	for _, doc := range data.Documents {
		if doc.Text == "" {
			return c.JSON(http.StatusBadRequest, ingestResponse{
				Message: "Object-key documents require async ingestion",
			})
		}
		docs = append(docs, graph.DocumentInput{
			Title:        doc.Title,
			CollectionID: doc.CollectionID,
			Text:         doc.Text,
		})
	}

	report, err := app.Pipeline.Ingest(ctx, authorID, data.AuthorName, docs)
	if err != nil {
		logger.Error("Ingestion failed", "author_id", authorID, "err", err)
		return c.JSON(http.StatusInternalServerError, ingestResponse{Message: "Ingestion failed"})
	}

	app.Retriever.InvalidateAuthor(authorID)

	return c.JSON(http.StatusOK, ingestResponse{
		Message: "Ingestion complete",
		Report:  report,
	})
}
