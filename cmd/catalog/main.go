package main

import (
	"flag"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/hafizmfadli/movie-catalog/internal/catalog"
	"github.com/hafizmfadli/movie-catalog/internal/jsonlog"
	"github.com/joho/godotenv"
)

// application holds the catalog's dependencies.
type application struct {
	logger    *jsonlog.Logger
	movies    *catalog.MovieRepository
	templates map[string]*template.Template
}

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "could not load .env file: %v\n", err)
	}

	port, _ := strconv.Atoi(os.Getenv("CATALOG_PORT"))
	if port == 0 {
		port = 5001
	}
	dsn := os.Getenv("CATALOG_DB")
	if dsn == "" {
		dsn = "movies.db"
	}

	flag.IntVar(&port, "port", port, "HTTP port")
	flag.StringVar(&dsn, "db", dsn, "SQLite database file")
	logLevel := flag.String("log-level", "info", "Minimum log level (debug|info|error|off)")
	flag.Parse()

	logger := jsonlog.NewLogger(os.Stdout, jsonlog.ParseLevel(*logLevel))

	db, err := catalog.NewDB(dsn)
	if err != nil {
		logger.PrintFatal(err, nil)
	}
	defer db.Close()

	if err := db.InitSchema(); err != nil {
		logger.PrintFatal(err, nil)
	}

	seeded, err := db.Seed()
	if err != nil {
		logger.PrintFatal(err, nil)
	}
	if seeded > 0 {
		logger.PrintInfo("seeded empty catalog", map[string]string{"movies": strconv.Itoa(seeded)})
	}

	templates, err := newTemplateCache()
	if err != nil {
		logger.PrintFatal(err, nil)
	}

	app := &application{
		logger:    logger,
		movies:    catalog.NewMovieRepository(db),
		templates: templates,
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      app.routes(),
		ErrorLog:     log.New(logger, "", 0),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	logger.PrintInfo("starting server", map[string]string{"addr": srv.Addr, "db": dsn})

	err = srv.ListenAndServe()
	logger.PrintFatal(err, nil)
}
