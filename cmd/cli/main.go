// Command cli is an interactive console for exploring the recommendation
// engine against the product catalog, with store refresh and cache
// administration built in.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/medirec/backend/config"
	"github.com/medirec/backend/internal/domain"
	"github.com/medirec/backend/internal/infrastructure/cache"
	"github.com/medirec/backend/internal/infrastructure/woo"
	"github.com/medirec/backend/internal/usecase"
)

func main() {
	productsFile := flag.String("products", "", "products CSV file (overrides the configured path)")
	query := flag.String("query", "", "single query to process (skips interactive mode)")
	jsonOutput := flag.Bool("json", false, "print results as JSON")
	refresh := flag.Bool("refresh", false, "refresh the catalog from the store before starting")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	logger := zap.NewNop()
	if *verbose {
		var err error
		logger, err = zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *productsFile != "" {
		cfg.Catalog.ProductsFile = *productsFile
	}

	productCache, err := cache.NewFileCache(cfg.Cache.Dir, cfg.Cache.Duration, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize product cache: %v\n", err)
		os.Exit(1)
	}

	var storeClient domain.StoreClient
	if cfg.StoreConfigured() {
		storeClient = woo.NewClient(
			cfg.Store.URL,
			cfg.Store.ConsumerKey,
			cfg.Store.ConsumerSecret,
			cfg.Store.Timeout,
			cfg.Store.MaxProducts,
			logger,
		)
	}

	engine := usecase.NewRecommender(logger)
	catalog := usecase.NewCatalogService(engine, storeClient, productCache, usecase.CatalogServiceConfig{
		ProductsFile: cfg.Catalog.ProductsFile,
	}, logger)

	if err := catalog.Bootstrap(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load products: %v\n", err)
		os.Exit(1)
	}

	if *refresh {
		refreshCatalog(os.Stdout, catalog)
	}

	if *query != "" {
		runSingleQuery(engine, *query, *jsonOutput)
		return
	}

	printBanner()
	runInteractive(engine, catalog)
}

func printBanner() {
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("Medical Product Recommender")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println()
}

func runSingleQuery(engine *usecase.Recommender, query string, jsonOutput bool) {
	rec, err := engine.Recommend(query, usecase.DefaultMaxProducts)
	if err != nil {
		if jsonOutput {
			out, _ := json.MarshalIndent(map[string]string{"error": err.Error(), "query": query}, "", "  ")
			fmt.Println(string(out))
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}

	if jsonOutput {
		out, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(out))
		return
	}
	writeRecommendation(os.Stdout, rec)
}

func runInteractive(engine *usecase.Recommender, catalog *usecase.CatalogService) {
	fmt.Println("Interactive mode - type a query, or 'help' for commands")
	fmt.Println("Examples: 'ratownik medyczny', 'cukrzyca', 'lekarz', 'pierwsza pomoc'")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return
		}
		if runCommand(os.Stdout, engine, catalog, scanner.Text()) {
			return
		}
	}
}

// runCommand executes a single console line and reports whether the
// session should end.
func runCommand(w io.Writer, engine *usecase.Recommender, catalog *usecase.CatalogService, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	cmd, arg := splitCommand(line)
	switch cmd {
	case "quit", "exit", "q":
		fmt.Fprintln(w, "Bye!")
		return true
	case "help":
		printHelp(w)
	case "stats":
		printStats(w, engine)
	case "categories":
		printCategories(w, engine)
	case "search":
		if arg == "" {
			fmt.Fprintln(w, "Usage: search <term>")
			return false
		}
		printSearchResults(w, engine.SearchProducts(arg, 20))
	case "refresh":
		refreshCatalog(w, catalog)
	case "cache":
		printCacheInfo(w, catalog)
	case "clear-cache":
		clearCache(w, catalog)
	default:
		rec, err := engine.Recommend(line, usecase.DefaultMaxProducts)
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return false
		}
		writeRecommendation(w, rec)
	}
	return false
}

func splitCommand(line string) (string, string) {
	parts := strings.SplitN(line, " ", 2)
	cmd := strings.ToLower(parts[0])
	if len(parts) == 2 {
		return cmd, strings.TrimSpace(parts[1])
	}
	return cmd, ""
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w, "\nAvailable commands:")
	fmt.Fprintln(w, "  help           - show this help")
	fmt.Fprintln(w, "  stats          - show system statistics")
	fmt.Fprintln(w, "  categories     - show available categories")
	fmt.Fprintln(w, "  search <term>  - search products by name or description")
	fmt.Fprintln(w, "  refresh        - refresh the catalog from the store")
	fmt.Fprintln(w, "  cache          - show product cache state")
	fmt.Fprintln(w, "  clear-cache    - remove the product cache")
	fmt.Fprintln(w, "  quit/exit      - leave the program")
	fmt.Fprintln(w, "  anything else  - treated as a recommendation query")
	fmt.Fprintln(w)
}

func printStats(w io.Writer, engine *usecase.Recommender) {
	fmt.Fprintln(w, "\nSystem statistics:")
	fmt.Fprintf(w, "  Products:   %d\n", engine.ProductCount())
	fmt.Fprintf(w, "  Categories: %d\n", len(engine.Categories()))
	fmt.Fprintf(w, "  Rules:      %d\n", len(usecase.Rules()))
	fmt.Fprintln(w)
}

func printCategories(w io.Writer, engine *usecase.Recommender) {
	counts := make(map[string]int)
	for _, p := range engine.Products() {
		counts[p.Category]++
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintf(w, "\nAvailable categories (%d):\n", len(names))
	for _, name := range names {
		fmt.Fprintf(w, "  - %s (%d products)\n", name, counts[name])
	}
	fmt.Fprintln(w)
}

func printSearchResults(w io.Writer, products []domain.Product) {
	if len(products) == 0 {
		fmt.Fprintln(w, "No products found.")
		return
	}
	fmt.Fprintf(w, "\nFound %d products:\n", len(products))
	for i, p := range products {
		fmt.Fprintf(w, "%2d. %s [%s] %.2f PLN\n", i+1, p.Name, p.Category, p.Price)
	}
	fmt.Fprintln(w)
}

func refreshCatalog(w io.Writer, catalog *usecase.CatalogService) {
	if !catalog.StoreEnabled() {
		fmt.Fprintln(w, "Store is not configured; set MEDIREC_STORE_URL and the API credentials first.")
		return
	}
	fmt.Fprintln(w, "Refreshing products from the store...")
	count, err := catalog.RefreshFromStore(context.Background())
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(w, "Imported %d products.\n", count)
}

func printCacheInfo(w io.Writer, catalog *usecase.CatalogService) {
	info, err := catalog.CacheInfo()
	if err != nil {
		if errors.Is(err, domain.ErrCacheMiss) {
			fmt.Fprintln(w, "No cached products.")
			return
		}
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}

	fmt.Fprintln(w, "\nProduct cache:")
	fmt.Fprintf(w, "  Products: %d\n", info.ProductCount)
	fmt.Fprintf(w, "  Age:      %.0fs of %ds\n", info.AgeSeconds, info.CacheDuration)
	fmt.Fprintf(w, "  Valid:    %t\n", info.IsValid)
	fmt.Fprintln(w)
}

func clearCache(w io.Writer, catalog *usecase.CatalogService) {
	if err := catalog.ClearCache(); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(w, "Cache cleared.")
}

func writeRecommendation(w io.Writer, rec *domain.Recommendation) {
	fmt.Fprintf(w, "\nQuery: %q\n", rec.Query)
	fmt.Fprintf(w, "Confidence: %.0f%%\n", rec.Confidence*100)
	fmt.Fprintf(w, "Reasoning: %s\n", rec.Reasoning)
	fmt.Fprintf(w, "\nRecommended products (%d):\n", len(rec.Products))
	fmt.Fprintln(w, strings.Repeat("-", 50))
	for i, p := range rec.Products {
		fmt.Fprintf(w, "%2d. %s\n", i+1, p.Name)
		fmt.Fprintf(w, "    Category: %s\n", p.Category)
		fmt.Fprintf(w, "    Price: %.2f PLN\n", p.Price)
		if p.Description != "" {
			fmt.Fprintf(w, "    %s\n", p.Description)
		}
		fmt.Fprintln(w)
	}
}
