package main

import (
	"context"
	"flag"
	"html/template"
	"os"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/hafizmfadli/movie-catalog/internal/data"
	"github.com/hafizmfadli/movie-catalog/internal/jsonlog"
	"github.com/joho/godotenv"
)

type config struct {
	port     int
	env      string
	logLevel string

	// An empty dsn keeps everything in memory.
	db struct {
		driver       string
		dsn          string
		maxOpenConns int
		maxIdleConns int
		maxIdleTime  string
		migrate      bool
	}

	session struct {
		secret string
		maxAge int
	}
}

// application holds the dependencies of the web handlers.
type application struct {
	config        config
	logger        *jsonlog.Logger
	models        data.Models
	sessions      *sessions.CookieStore
	templateCache map[string]*template.Template
}

func main() {
	_ = godotenv.Load()

	var cfg config

	flag.IntVar(&cfg.port, "port", 5000, "Web server port")
	flag.StringVar(&cfg.env, "env", "development", "Environment (development|staging|production)")
	flag.StringVar(&cfg.logLevel, "log-level", "info", "Minimum log level (debug|info|error|off)")
	flag.StringVar(&cfg.db.driver, "db-driver", "postgres", "database/sql driver (postgres|pgx)")
	flag.StringVar(&cfg.db.dsn, "db-dsn", os.Getenv("MOVIES_DB_DSN"), "PostgreSQL DSN (empty keeps data in memory)")
	flag.IntVar(&cfg.db.maxOpenConns, "db-max-open-conns", 25, "PostgreSQL max open connections")
	flag.IntVar(&cfg.db.maxIdleConns, "db-max-idle-conns", 25, "PostgreSQL max idle connections")
	flag.StringVar(&cfg.db.maxIdleTime, "db-max-idle-time", "15m", "PostgreSQL max connection idle time")
	flag.BoolVar(&cfg.db.migrate, "db-migrate", true, "Apply schema migrations at start-up")
	flag.StringVar(&cfg.session.secret, "session-secret", os.Getenv("MOVIES_SESSION_SECRET"), "Key used to sign session cookies")
	flag.IntVar(&cfg.session.maxAge, "session-max-age", 86400*7, "Session cookie lifetime in seconds")

	flag.Parse()

	logger := jsonlog.NewLogger(os.Stdout, jsonlog.ParseLevel(cfg.logLevel))

	templateCache, err := newTemplateCache()
	if err != nil {
		logger.PrintFatal(err, nil)
	}

	app := &application{
		config:        cfg,
		logger:        logger,
		templateCache: templateCache,
	}

	secret := []byte(cfg.session.secret)
	if len(secret) == 0 {
		logger.PrintInfo("no session secret configured, sessions will not survive a restart", nil)
		secret = securecookie.GenerateRandomKey(32)
	}
	app.sessions = newSessionStore(secret, cfg)

	if cfg.db.dsn == "" {
		logger.PrintInfo("no database configured, using in-memory store", nil)
		app.models = data.NewMemoryModels(nil)
	} else {
		db, err := data.OpenDB(data.DBConfig{
			Driver:       cfg.db.driver,
			DSN:          cfg.db.dsn,
			MaxOpenConns: cfg.db.maxOpenConns,
			MaxIdleConns: cfg.db.maxIdleConns,
			MaxIdleTime:  cfg.db.maxIdleTime,
		})
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

	err = app.serve()
	if err != nil {
		logger.PrintFatal(err, nil)
	}
}
