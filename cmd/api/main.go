package main

import (
	"context"
	"database/sql"
	"flag"
	"os"
	"sync"
	"time"

	"github.com/hafizmfadli/movie-catalog/internal/data"
	"github.com/hafizmfadli/movie-catalog/internal/jsonlog"
	"github.com/hafizmfadli/movie-catalog/internal/mailer"
	"github.com/joho/godotenv"
)

// Application version number
const version = "1.0.0"

// config struct hold all the configuration settings for out application.
type config struct {

	// the network port that we want the server to listen on
	port int

	// current operating environment for the application (dev, staging, prod, etc..)
	env string

	// minimum severity written by the logger
	logLevel string

	// db struct field hold the configuration settings for our database connection pool.
	// An empty dsn keeps everything in memory.
	db struct {
		driver       string
		dsn          string
		maxOpenConns int
		maxIdleConns int
		maxIdleTime  string
		migrate      bool
	}

	// lifetime of the bearer tokens issued by POST /token
	tokenTTL time.Duration

	// limiter struct containing fields for the requests per second and burst
	// values, and a boolean field which we can use to enable/disable rate limiting
	// altogether
	limiter struct {
		rps     float64
		burst   int
		enabled bool
	}

	// smtp struct hold smtp configuration. An empty host disables the welcome email.
	smtp struct {
		host     string
		port     int
		username string
		password string
		sender   string
	}
}

// mailSender is satisfied by mailer.Mailer.
type mailSender interface {
	Send(recipient, templateFile string, data any) error
}

// application struct hold the dependencies for our HTTP handlers, helpers, and middleware.
type application struct {
	config config
	logger *jsonlog.Logger
	models data.Models
	mailer mailSender
	// sync.WaitGroup is used to coordinate the graceful shutdown and our background goroutine
	wg sync.WaitGroup
}

func main() {
	// A missing .env file is fine; flags and the environment still apply.
	_ = godotenv.Load()

	var cfg config

	flag.IntVar(&cfg.port, "port", 4000, "API server port")
	flag.StringVar(&cfg.env, "env", "development", "Environment (development|staging|production)")
	flag.StringVar(&cfg.logLevel, "log-level", "info", "Minimum log level (debug|info|error|off)")
	flag.StringVar(&cfg.db.driver, "db-driver", "postgres", "database/sql driver (postgres|pgx)")
	flag.StringVar(&cfg.db.dsn, "db-dsn", os.Getenv("MOVIES_DB_DSN"), "PostgreSQL DSN (empty keeps data in memory)")
	flag.IntVar(&cfg.db.maxOpenConns, "db-max-open-conns", 25, "PostgreSQL max open connections")
	flag.IntVar(&cfg.db.maxIdleConns, "db-max-idle-conns", 25, "PostgreSQL max idle connections")
	flag.StringVar(&cfg.db.maxIdleTime, "db-max-idle-time", "15m", "PostgreSQL max connection idle time")
	flag.BoolVar(&cfg.db.migrate, "db-migrate", true, "Apply schema migrations at start-up")
	flag.DurationVar(&cfg.tokenTTL, "token-ttl", data.DefaultTokenTTL, "Bearer token lifetime")
	flag.Float64Var(&cfg.limiter.rps, "limiter-rps", 2, "Rate limiter maximum request per second")
	flag.IntVar(&cfg.limiter.burst, "limiter-burst", 4, "Rate limiter maximum burst")
	flag.BoolVar(&cfg.limiter.enabled, "limiter-enabled", true, "Enable rate limiter")
	flag.StringVar(&cfg.smtp.host, "smtp-host", os.Getenv("MOVIES_SMTP_HOST"), "SMTP host")
	flag.IntVar(&cfg.smtp.port, "smtp-port", 1025, "SMTP port")
	flag.StringVar(&cfg.smtp.username, "smtp-username", os.Getenv("MOVIES_SMTP_USERNAME"), "SMTP username")
	flag.StringVar(&cfg.smtp.password, "smtp-password", os.Getenv("MOVIES_SMTP_PASSWORD"), "SMTP password")
	flag.StringVar(&cfg.smtp.sender, "smtp-sender", "Movies <no-reply@movies.hafizmfadli.net>", "SMTP sender")

	flag.Parse()

	logger := jsonlog.NewLogger(os.Stdout, jsonlog.ParseLevel(cfg.logLevel))

	app := &application{
		config: cfg,
		logger: logger,
	}

	if cfg.db.dsn == "" {
		logger.PrintInfo("no database configured, using in-memory store", nil)
		app.models = data.NewMemoryModels(nil)
	} else {
		db, err := openDB(cfg)
		if err != nil {
			logger.PrintFatal(err, nil)
		}
		defer db.Close()

		logger.PrintInfo("database connection pool established", map[string]string{
			"driver": cfg.db.driver,
		})

		if cfg.db.migrate {
			if err := data.Migrate(context.Background(), db); err != nil {
				logger.PrintFatal(err, nil)
			}
			logger.PrintInfo("database migrations applied", nil)
		}

		app.models = data.NewModels(db)
	}

	if cfg.smtp.host != "" {
		app.mailer = mailer.New(cfg.smtp.host, cfg.smtp.port, cfg.smtp.username, cfg.smtp.password, cfg.smtp.sender)
	}

	err := app.serve()
	if err != nil {
		logger.PrintFatal(err, nil)
	}
}

// openDB returns a sql.DB connection pool
func openDB(cfg config) (*sql.DB, error) {
	return data.OpenDB(data.DBConfig{
		Driver:       cfg.db.driver,
		DSN:          cfg.db.dsn,
		MaxOpenConns: cfg.db.maxOpenConns,
		MaxIdleConns: cfg.db.maxIdleConns,
		MaxIdleTime:  cfg.db.maxIdleTime,
	})
}
