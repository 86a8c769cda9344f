package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"

	"stationwatch/internal/alert"
	"stationwatch/internal/handlers"
	"stationwatch/internal/logger"
	"stationwatch/internal/metrics"
	"stationwatch/internal/repository"
	"stationwatch/internal/repository/db"
	"stationwatch/internal/server"
	"stationwatch/internal/service"
	"stationwatch/internal/tempest"
)

const defaultPollInterval = 5 * time.Minute

func main() {
	// load config.yml first so the logger picks up the configured level
	cfgErr := loadConfig()
	log := logger.Get(viper.GetString("log.level"))
	if cfgErr != nil {
		log.Fatalw("error reading config", "err", cfgErr)
	}

	// open DB
	sqlDB, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	blobs, err := newBlobClient()
	if err != nil {
		log.Fatalw("failed to init blob store client", "err", err)
	}
	rdb := newRedisClient()
	defer func() {
		if cerr := rdb.Close(); cerr != nil {
			log.Errorw("failed to close redis", "err", cerr)
		}
	}()

	// wire dependencies
	repos := repository.NewRepository(sqlDB, blobs, viper.GetString("s3.bucket"), rdb)
	services := service.NewService(
		repos,
		newTempestClient(),
		alert.NewSlackWebhook(viper.GetString("slack.webhook_url")),
		metrics.NewHTTPSender(viper.GetString("metrics.endpoint")),
		pollConfig(log),
		viper.GetString("jwt.signing_key"),
		log,
	)
	apiHandler := handlers.NewHandler(services, log)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// start the poll loop (via composed service)
	go services.Scheduler.Run(ctx, pollInterval())

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	return viper.ReadInConfig()
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "stationwatch.db")
		dbPath = "stationwatch.db"
	}
	return db.InitDB(dbPath)
}

// newBlobClient builds the S3 client used for cache images.
func newBlobClient() (*minio.Client, error) {
	return minio.New(viper.GetString("s3.endpoint"), &minio.Options{
		Creds: credentials.NewStaticV4(
			viper.GetString("s3.access_key"),
			viper.GetString("s3.secret_key"),
			"",
		),
		Secure: viper.GetBool("s3.use_ssl"),
	})
}

func newRedisClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     viper.GetString("redis.addr"),
		Password: viper.GetString("redis.password"),
		DB:       viper.GetInt("redis.db"),
	})
}

func newTempestClient() *tempest.Client {
	var opts []tempest.Option
	if base := viper.GetString("tempest.base_url"); base != "" {
		opts = append(opts, tempest.WithBaseURL(base))
	}
	return tempest.NewClient(opts...)
}

// pollConfig reads the monitored accounts and poller tunables.
func pollConfig(log *logger.Logger) service.Config {
	var accounts []service.AccountConfig
	if err := viper.UnmarshalKey("accounts", &accounts); err != nil {
		log.Fatalw("invalid accounts config", "err", err)
	}
	if len(accounts) == 0 {
		log.Warnw("no accounts configured; poll cycles will be empty")
	}
	return service.Config{
		Accounts: accounts,
		JobName:  viper.GetString("metrics.job_name"),
		Workers:  viper.GetInt("poll.workers"),
	}
}

func pollInterval() time.Duration {
	if d := viper.GetDuration("poll.interval"); d > 0 {
		return d
	}
	return defaultPollInterval
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
