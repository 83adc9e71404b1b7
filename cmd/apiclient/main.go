// Command apiclient walks through the JSON API by hand: it obtains a token,
// lists the user's movies and adds one, printing each response.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/term"
)

// readPassword is replaced in tests so the terminal is never touched.
var readPassword = term.ReadPassword

type config struct {
	baseURL  string
	username string
	password string
	timeout  time.Duration
}

func main() {
	_ = godotenv.Load()

	var cfg config

	baseURL := os.Getenv("MOVIES_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:4000"
	}

	flag.StringVar(&cfg.baseURL, "base-url", baseURL, "API base URL")
	flag.StringVar(&cfg.username, "username", "testing", "Account username")
	flag.StringVar(&cfg.password, "password", "", "Account password (prompted for when empty)")
	flag.DurationVar(&cfg.timeout, "timeout", 10*time.Second, "Per-request timeout")
	flag.Parse()

	if cfg.password == "" {
		pw, err := promptPassword(os.Stderr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "read password: %v\n", err)
			os.Exit(1)
		}
		cfg.password = pw
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c := newClient(cfg.baseURL, cfg.timeout, os.Stdout)
	if err := c.run(ctx, cfg.username, cfg.password); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// promptPassword asks for the password on the terminal without echo.
func promptPassword(w io.Writer) (string, error) {
	fmt.Fprint(w, "Password: ")
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}
