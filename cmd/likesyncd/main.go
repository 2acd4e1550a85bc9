// Command likesyncd serves the liked-tracks export API.
package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/charmbracelet/log"

	"github.com/likesync/likesync/internal/config"
	"github.com/likesync/likesync/internal/fetch"
	"github.com/likesync/likesync/internal/likes"
	"github.com/likesync/likesync/internal/web"
	"github.com/likesync/likesync/internal/yandex"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	logger.SetLevel(cfg.LogLevel)

	opts := []yandex.Option{
		yandex.WithRateLimit(cfg.RateLimit),
		yandex.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
	}
	if cfg.YandexAPIURL != "" {
		opts = append(opts, yandex.WithBaseURL(cfg.YandexAPIURL))
	}
	catalog := yandex.NewClient(opts...)

	service := likes.New(fetch.New(catalog), catalog, logger)

	server := web.NewServer(web.ServerConfig{
		Addr:   cfg.Addr,
		Likes:  service,
		Logger: logger,
	})
	return server.Run()
}
