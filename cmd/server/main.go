package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tendant/chi-demo/app"
	"github.com/tendant/label-store/pkg/labelstore"
	"github.com/tendant/label-store/pkg/labelstore/api"
	"github.com/tendant/label-store/pkg/labelstore/category"
	"github.com/tendant/label-store/pkg/labelstore/metrics"
	"github.com/tendant/label-store/pkg/labelstore/placement"
	repomemory "github.com/tendant/label-store/pkg/labelstore/repo/memory"
	repopg "github.com/tendant/label-store/pkg/labelstore/repo/postgres"
	memorystorage "github.com/tendant/label-store/pkg/labelstore/storage/memory"
	s3storage "github.com/tendant/label-store/pkg/labelstore/storage/s3"
)

type Config struct {
	Category       CategoryConfig
	DB             DbConfig
	S3             S3Config
	StorageBackend string `env:"STORAGE_BACKEND" env-default:"memory"`
	RepoBackend    string `env:"REPO_BACKEND" env-default:"memory"`
}

type CategoryConfig struct {
	TablePath   string `env:"CATEGORY_TABLE" env-default:"categories.csv"`
	IDTablePath string `env:"LABEL_ID_TABLE" env-default:""`
}

type DbConfig struct {
	Port     uint16 `env:"LABELSTORE_PG_PORT" env-default:"5432"`
	Host     string `env:"LABELSTORE_PG_HOST" env-default:"localhost"`
	Name     string `env:"LABELSTORE_PG_NAME" env-default:"labelstore_db"`
	User     string `env:"LABELSTORE_PG_USER" env-default:"labelstore"`
	Password string `env:"LABELSTORE_PG_PASSWORD" env-default:"pwd"`
}

type S3Config struct {
	Endpoint        string `env:"AWS_S3_ENDPOINT" env-default:"http://localhost:9000"`
	AccessKeyID     string `env:"AWS_ACCESS_KEY_ID" env-default:"minioadmin"`
	SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" env-default:"minioadmin"`
	BucketName      string `env:"AWS_S3_BUCKET" env-default:"label-bucket"`
	Region          string `env:"AWS_S3_REGION" env-default:"us-east-1"`
	UsePathStyle    bool   `env:"AWS_S3_USE_PATH_STYLE" env-default:"true"`
}

func (c DbConfig) toDatabaseUrl() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   c.Name,
	}
	return u.String()
}

func initializeStore(config Config) (labelstore.Store, error) {
	switch config.StorageBackend {
	case "memory":
		return memorystorage.New(), nil
	case "s3":
		return s3storage.New(s3storage.Config{
			Endpoint:        config.S3.Endpoint,
			AccessKeyID:     config.S3.AccessKeyID,
			SecretAccessKey: config.S3.SecretAccessKey,
			Bucket:          config.S3.BucketName,
			Region:          config.S3.Region,
			UsePathStyle:    config.S3.UsePathStyle,
		})
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", config.StorageBackend)
	}
}

func initializeRepository(ctx context.Context, config Config) (labelstore.Repository, error) {
	switch config.RepoBackend {
	case "memory":
		return repomemory.New(), nil
	case "postgres":
		pool, err := pgxpool.New(ctx, config.DB.toDatabaseUrl())
		if err != nil {
			return nil, fmt.Errorf("failed to create connection pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		return repopg.NewWithPool(pool), nil
	default:
		return nil, fmt.Errorf("unsupported repo backend: %s", config.RepoBackend)
	}
}

func main() {
	// Load configuration
	var config Config
	if err := cleanenv.ReadEnv(&config); err != nil {
		slog.Error("Failed to read configuration", "err", err)
		os.Exit(1)
	}

	// Load the category table; a missing or malformed source is fatal
	table, err := category.LoadFile(config.Category.TablePath)
	if err != nil {
		slog.Error("Failed to load category table", "path", config.Category.TablePath, "err", err)
		os.Exit(1)
	}
	slog.Info("Category table loaded", "path", config.Category.TablePath, "labels", table.Len())

	// Initialize object store
	store, err := initializeStore(config)
	if err != nil {
		slog.Error("Failed to initialize object store", "err", err)
		os.Exit(1)
	}

	ctx := context.Background()
	if err := store.HeadBucket(ctx); err != nil {
		slog.Error("Object store unreachable", "err", err)
		os.Exit(1)
	}

	// Initialize ingestion-record repository
	repo, err := initializeRepository(ctx, config)
	if err != nil {
		slog.Error("Failed to initialize repository", "err", err)
		os.Exit(1)
	}

	m := metrics.Init(nil)
	ingestHandler := api.NewIngestHandler(placement.New(store, table), repo, m)

	server := app.DefaultApp()

	app.RoutesHealthz(server.R)
	app.RoutesHealthzReady(server.R)
	server.R.Handle("/metrics", promhttp.Handler())

	server.R.Route("/api/v1", func(r chi.Router) {
		r.Mount("/files", ingestHandler.Routes())
	})

	// Start server
	server.Run()
}
