// Package bootstrap builds the application dependency graph shared by the
// API and worker binaries.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"skillgap-backend/internal/analysis"
	"skillgap-backend/internal/employees"
	"skillgap-backend/internal/llm"
	openai "skillgap-backend/internal/llm/openai"
	"skillgap-backend/internal/positions"
	"skillgap-backend/internal/profiles"
	"skillgap-backend/internal/queue"
	"skillgap-backend/internal/server"
	"skillgap-backend/internal/services/health"
	"skillgap-backend/internal/shared/config"
	"skillgap-backend/internal/shared/storage/db"
	"skillgap-backend/internal/shared/storage/object"
	localstore "skillgap-backend/internal/shared/storage/object/local"
	s3store "skillgap-backend/internal/shared/storage/object/s3"
	"skillgap-backend/internal/workerproc"
)

// App holds shared dependencies.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore
	Queue  queue.Client

	EmployeesRepo employees.Repo
	PositionsRepo positions.Repo
	ProfilesRepo  profiles.Repo
	AnalysisRepo  analysis.Repo

	AnalysisService *analysis.Service
	AnalysisHandler *analysis.Handler
	HealthService   *health.Service
}

// BuildOptions tunes dependency construction per binary.
type BuildOptions struct {
	// DBOptions selects the connection pool profile. Zero value means the
	// long-running server profile.
	DBOptions db.Options
	// SkipRouter leaves App.Router nil; the worker has no HTTP surface.
	SkipRouter bool
}

// Build prepares shared dependencies for the API binary.
func Build(cfg config.Config) (*App, error) {
	return BuildWith(cfg, BuildOptions{DBOptions: db.OptionsFromEnv(db.DefaultServerOptions())})
}

// BuildWorker prepares shared dependencies for the queue worker.
func BuildWorker(cfg config.Config) (*App, error) {
	return BuildWith(cfg, BuildOptions{
		DBOptions:  db.OptionsFromEnv(db.DefaultWorkerOptions()),
		SkipRouter: true,
	})
}

// BuildWith prepares shared dependencies with explicit options.
func BuildWith(cfg config.Config, opts BuildOptions) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg, opts.DBOptions)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	queueClient, err := buildQueue(ctx)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
		Queue:  queueClient,
	}
	if err := buildServices(app); err != nil {
		return nil, err
	}

	if !opts.SkipRouter {
		app.Router = server.NewRouter(server.RouterDeps{
			Config:          app.Config,
			AnalysisHandler: app.AnalysisHandler,
			Health:          app.HealthService,
		})
	}
	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config, opts db.Options) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildQueue(ctx context.Context) (queue.Client, error) {
	if strings.TrimSpace(os.Getenv("SG_SQS_QUEUE_URL")) == "" {
		return nil, nil
	}
	return queue.NewSQSClient(ctx)
}

func buildServices(app *App) error {
	var (
		empRepo     employees.Repo
		posRepo     positions.Repo
		profRepo    profiles.Repo
		reqRepo     analysis.Repo
		metricsRepo analysis.MetricsRepo
	)
	if app.DB != nil {
		empRepo = &employees.PGRepo{DB: app.DB}
		posRepo = &positions.PGRepo{DB: app.DB}
		profRepo = &profiles.PGRepo{DB: app.DB}
		reqRepo = &analysis.PGRepo{DB: app.DB}
		metricsRepo = &analysis.PGMetricsRepo{DB: app.DB}
	} else {
		empRepo = employees.NewMemoryRepo()
		posRepo = positions.NewMemoryRepo()
		profRepo = profiles.NewMemoryRepo()
		reqRepo = analysis.NewMemoryRepo()
		metricsRepo = analysis.NewMemoryMetricsRepo()
	}

	var llmClient llm.Client
	if app.Config.LLMProvider == "openai" && app.Config.OpenAIAPIKey != "" {
		client, err := openai.NewClient(app.Config.OpenAIAPIKey, app.Config.LLMModel)
		if err != nil {
			return err
		}
		llmClient = client
	} else if !isDevLike(app.Config.Env) {
		return fmt.Errorf("LLM_PROVIDER %q is not configured", app.Config.LLMProvider)
	}

	svc := &analysis.Service{
		Repo:        reqRepo,
		Metrics:     metricsRepo,
		Employees:   empRepo,
		Positions:   posRepo,
		Profiles:    profRepo,
		Store:       app.Store,
		LLM:         llmClient,
		RetryPolicy: llm.DefaultRetryPolicy(),
		Queue:       app.Queue,
	}

	app.EmployeesRepo = empRepo
	app.PositionsRepo = posRepo
	app.ProfilesRepo = profRepo
	app.AnalysisRepo = reqRepo
	app.AnalysisService = svc
	app.AnalysisHandler = analysis.NewHandler(svc)
	app.HealthService = health.NewService(app.DB)
	return nil
}

// HandleJob runs one queue-delivered analysis job.
func (a *App) HandleJob(ctx context.Context, job queue.AnalysisJob) analysis.Result {
	return workerproc.Handle(ctx, a.AnalysisService, job)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
