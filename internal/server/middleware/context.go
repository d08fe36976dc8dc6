package middleware

import (
	"github.com/MicahParks/keyfunc/v3"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/rabbitmq/amqp091-go"

	"github.com/verseprint/backend/pkg/ai"
	"github.com/verseprint/backend/pkg/graph"
	"github.com/verseprint/backend/pkg/retrieval"
	"github.com/verseprint/backend/pkg/store"
	"github.com/verseprint/backend/pkg/validate"
)

type AppUser struct {
	UserID      int64
	Role        string
	Permissions []string
}

// App bundles the long-lived clients shared by all handlers. Everything in
// it is built once at startup; handlers must not construct their own
// connections.
type App struct {
	DBConn         *pgxpool.Pool
	Queue          *amqp091.Channel
	Key            *keyfunc.Keyfunc
	S3             *s3.Client
	Store          store.StyleStorage
	AiClient       ai.StyleAIClient
	Pipeline       *graph.Pipeline
	Retriever      *retrieval.Retriever
	Engine         *validate.Engine
	MasterAPIKey   string
	MasterUserID   int64
	MasterUserRole string
}

type AppContext struct {
	echo.Context
	App  *App
	User *AppUser
}

func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &AppContext{c, app, nil}
			return next(cc)
		}
	}
}
