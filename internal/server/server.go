package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/verseprint/backend/internal/queue"
	mid "github.com/verseprint/backend/internal/server/middleware"
	"github.com/verseprint/backend/internal/storage"
	"github.com/verseprint/backend/internal/util"
	"github.com/verseprint/backend/pkg/ai"
	oai "github.com/verseprint/backend/pkg/ai/ollama"
	gai "github.com/verseprint/backend/pkg/ai/openai"
	"github.com/verseprint/backend/pkg/graph"
	"github.com/verseprint/backend/pkg/logger"
	"github.com/verseprint/backend/pkg/prompt"
	"github.com/verseprint/backend/pkg/retrieval"
	stylestore "github.com/verseprint/backend/pkg/store/pgx"
	"github.com/verseprint/backend/pkg/validate"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/go-playground/validator"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	pgxvec "github.com/pgvector/pgvector-go/pgx"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

func Init() {
	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}

	jwksUrl := util.GetEnv("AUTH_URL") + "/jwks"
	k, err := keyfunc.NewDefault([]string{jwksUrl})
	if err != nil {
		logger.Fatal("Failed to load jwks keys", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runMigrations()

	conn, err := pgxpool.New(ctx, util.GetEnv("DATABASE_URL"))
	if err != nil {
		logger.Fatal("Failed to connect to database", "err", err)
	}
	defer conn.Close()
	conn.Config().AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	que := queue.Init()
	defer que.Close()
	ch, err := que.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}
	if err := queue.SetupQueues(ch, queue.Queues); err != nil {
		logger.Fatal("Failed to set up queues", "err", err)
	}

	s3 := storage.NewS3Client(ctx)

	aiClient := buildAIClient()
	st := stylestore.NewStyleDBStorage(conn)
	retriever := retrieval.NewRetriever(st, aiClient, retrieval.Config{})
	assembler, err := prompt.NewAssembler(util.GetEnvString("TOKEN_ENCODER", "o200k_base"), 0, 0)
	if err != nil {
		logger.Fatal("Failed to load token encoder", "err", err)
	}
	engine := validate.NewEngine(st, retriever, assembler,
		validate.NewValidator(validate.DefaultWeights()), aiClient, validate.EngineConfig{})
	pipeline := graph.NewPipeline(graph.NewPipelineParams{
		Store:        st,
		AIClient:     aiClient,
		ParallelDocs: int(util.GetEnvNumeric("INGEST_PARALLEL_DOCS", 4)),
	})

	masterAPIKey := util.GetEnv("MASTER_API_KEY")
	masterUserID, _ := strconv.ParseInt(util.GetEnv("MASTER_USER_ID"), 10, 64)
	masterUserRole := util.GetEnv("MASTER_USER_ROLE")

	app := &mid.App{
		DBConn:         conn,
		Queue:          ch,
		Key:            &k,
		S3:             s3,
		Store:          st,
		AiClient:       aiClient,
		Pipeline:       pipeline,
		Retriever:      retriever,
		Engine:         engine,
		MasterAPIKey:   masterAPIKey,
		MasterUserID:   masterUserID,
		MasterUserRole: masterUserRole,
	}

	e.Use(mid.AppContextMiddleware(app))
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("32M"))

	RegisterRoutes(e)

	go func() {
		port := util.GetEnv("PORT")
		if port == "" {
			port = "8080"
		}
		logger.Info("Starting server", "port", port)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
}

func runMigrations() {
	dir := util.GetEnvString("MIGRATIONS_DIR", "migrations")
	m, err := migrate.New("file://"+dir, util.GetEnv("DATABASE_URL"))
	if err != nil {
		logger.Fatal("Failed to open migrations", "err", err)
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Fatal("Failed to run migrations", "err", err)
	}
}

// buildAIClient assembles the provider stack from the environment. With
// AI_FALLBACK_ADAPTER set, calls fall through to the second provider when
// the primary fails.
func buildAIClient() ai.StyleAIClient {
	primary := newAdapter(util.GetEnv("AI_ADAPTER"))
	if fallback := util.GetEnv("AI_FALLBACK_ADAPTER"); fallback != "" {
		return ai.NewChain(0, primary, newAdapter(fallback))
	}
	return primary
}

func newAdapter(adapter string) ai.StyleAIClient {
	switch adapter {
	case "ollama":
		client, err := oai.NewStyleAIClient(oai.NewStyleOllamaClientParams{
			ChatModel:      util.GetEnv("AI_CHAT_MODEL"),
			EmbeddingModel: util.GetEnv("AI_EMBED_MODEL"),
			Dimensions:     int(util.GetEnvNumeric("AI_EMBED_DIMENSIONS", 1536)),

			BaseURL: util.GetEnv("AI_CHAT_URL"),
			ApiKey:  util.GetEnv("AI_CHAT_KEY"),

			MaxConcurrentRequests: int64(util.GetEnvNumeric("AI_PARALLEL_REQ", 15)),
		})
		if err != nil {
			logger.Fatal("Failed to create Ollama client", "err", err)
		}
		return client
	default:
		return gai.NewStyleAIClient(gai.NewStyleOpenAIClientParams{
			ChatModel:      util.GetEnv("AI_CHAT_MODEL"),
			EmbeddingModel: util.GetEnv("AI_EMBED_MODEL"),
			Dimensions:     int(util.GetEnvNumeric("AI_EMBED_DIMENSIONS", 1536)),

			ChatURL:      util.GetEnv("AI_CHAT_URL"),
			ChatKey:      util.GetEnv("AI_CHAT_KEY"),
			EmbeddingURL: util.GetEnv("AI_EMBED_URL"),
			EmbeddingKey: util.GetEnv("AI_EMBED_KEY"),
		})
	}
}
