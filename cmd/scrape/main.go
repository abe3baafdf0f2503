// Command scrape extracts one product page and prints the record as JSON.
//
//	scrape [-rules dir] [-timeout 15s] <product-url>
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"sjsage522/productscraper/config"
	"sjsage522/productscraper/helpers"
	"sjsage522/productscraper/internal/scraper"
	"sjsage522/productscraper/logger"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	logger.Init()

	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg := config.LoadConfig()

	fs := flag.NewFlagSet("scrape", flag.ContinueOnError)
	fs.SetOutput(stderr)
	rulesDir := fs.String("rules", cfg.RulesDir, "directory with rule table overrides")
	timeout := fs.Duration("timeout", cfg.FetchTimeout, "fetch timeout")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "usage: scrape [-rules dir] [-timeout 15s] <product-url>")
		return 2
	}

	fetcher := helpers.NewHTTPFetcher(nil, *timeout, cfg.UserAgent, cfg.AcceptLanguage)
	s, err := scraper.NewFromRules(fetcher, *rulesDir, scraper.Thresholds{
		MinPrice:             cfg.MinPrice,
		MaxPrice:             cfg.MaxPrice,
		MinTitleLength:       cfg.MinTitleLength,
		MinDescriptionLength: cfg.MinDescriptionLength,
	})
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout+5*time.Second)
	defer cancel()

	product, err := s.Scrape(ctx, fs.Arg(0))
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(product); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}
