package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/termbridge/termbridge/internal/config"
	"github.com/termbridge/termbridge/internal/domain/terminology"
	"github.com/termbridge/termbridge/internal/platform/genai"
	"github.com/termbridge/termbridge/internal/platform/icd11"
	"github.com/termbridge/termbridge/internal/platform/middleware"
	"github.com/termbridge/termbridge/internal/platform/source"
)

// GenAIAdapter adapts the genai client to the terminology.Generator
// interface, avoiding a circular import between the genai and
// terminology packages.
type GenAIAdapter struct {
	client *genai.Client
}

// NewGenAIAdapter creates a new adapter.
func NewGenAIAdapter(client *genai.Client) *GenAIAdapter {
	return &GenAIAdapter{client: client}
}

// Available implements terminology.Generator.
func (a *GenAIAdapter) Available() bool {
	return a.client.Available()
}

// Generate implements terminology.Generator.
func (a *GenAIAdapter) Generate(ctx context.Context, query string, history []terminology.ChatTurn, contextText string) (string, bool) {
	turns := make([]genai.Turn, len(history))
	for i, h := range history {
		turns[i] = genai.Turn{Role: h.Role, Content: h.Content}
	}
	return a.client.Generate(ctx, query, turns, contextText)
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "termbridge-server",
		Short: "NAMASTE / ICD-11 terminology bridge server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(checkSourcesCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the terminology API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func checkSourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-sources",
		Short: "Probe the configured terminology sources and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			checker, cleanup, err := newChecker(ctx, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			for _, st := range checker.CheckSources(ctx) {
				fmt.Printf("%-12s %-20s %v\n", st.Source, st.Status, st.Tables)
			}
			return nil
		},
	}
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()

	// Terminology sources. A source that fails to load is logged and
	// skipped; the server still starts with whatever loaded.
	store, checker, cleanup, err := loadSources(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load terminology sources")
	}
	defer cleanup()

	for _, sys := range terminology.SourceSystems {
		logger.Info().Str("system", string(sys)).Int("rows", store.Count(sys)).Msg("loaded terminology table")
	}
	logger.Info().Int("rows", store.Count(terminology.SystemICD11)).Msg("loaded local ICD-11 table")

	matcher := terminology.NewMatcher(store, cfg.SearchTopK)
	mapper := terminology.NewMapper(store, matcher)

	// Remote ICD-11 search (optional)
	var remote terminology.RemoteSearcher
	if cfg.RemoteICD11() {
		remote = icd11.NewClient(cfg.ICD11APIURL, time.Duration(cfg.ICD11TimeoutSecs)*time.Second, logger)
		logger.Info().Str("url", cfg.ICD11APIURL).Msg("ICD-11 search in remote mode")
	} else {
		logger.Info().Msg("ICD-11 search in local mode")
	}

	// Generative chat backend (optional)
	var gen terminology.Generator
	if cfg.GoogleAPIKey != "" {
		client := genai.NewClient(cfg.GenAIBaseURL, cfg.GoogleAPIKey, cfg.GeminiModel, time.Duration(cfg.GenAITimeoutSecs)*time.Second, logger)
		gen = NewGenAIAdapter(client)
		logger.Info().Str("model", cfg.GeminiModel).Msg("generative chat enabled")
	} else {
		logger.Warn().Msg("GOOGLE_API_KEY not set; chat degrades to system fallback")
	}

	svc := terminology.NewService(store, matcher, mapper, remote, gen, checker, logger)
	handler := terminology.NewHandler(svc)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{"Content-Type", "X-Request-ID"},
	}))

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	e.Use(middleware.RateLimit(rateLimitCfg))

	handler.RegisterRoutes(e)

	// Start server
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("forced shutdown")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

// loadSources loads the NAMASTE tables and the local ICD-11 table from
// the configured backend (Postgres when DATABASE_URL is set, workbook
// files otherwise). Individual source failures are logged and the table
// left empty. The returned cleanup closes any pooled connection.
func loadSources(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*terminology.Store, terminology.SourceChecker, func(), error) {
	tables := make(map[terminology.System][]terminology.NamasteRecord)
	cleanup := func() {}

	var checker terminology.SourceChecker

	if cfg.UsePostgres() {
		pool, err := source.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, cleanup, fmt.Errorf("connect to database: %w", err)
		}
		cleanup = pool.Close

		pgTables := []source.TableSource{
			{Name: string(terminology.SystemAyurveda), Table: cfg.AyurvedaTable},
			{Name: string(terminology.SystemUnani), Table: cfg.UnaniTable},
			{Name: string(terminology.SystemSiddha), Table: cfg.SiddhaTable},
		}
		for i, sys := range terminology.SourceSystems {
			rows, err := source.LoadNamastePG(ctx, pool, pgTables[i].Table)
			if err != nil {
				logger.Warn().Err(err).Str("table", pgTables[i].Table).Msg("failed to load table, continuing without it")
				continue
			}
			tables[sys] = rows
		}
		checker = source.NewPGChecker(pool, pgTables)
	} else {
		files := map[terminology.System]string{
			terminology.SystemAyurveda: cfg.AyurvedaXLSX,
			terminology.SystemUnani:    cfg.UnaniXLSX,
			terminology.SystemSiddha:   cfg.SiddhaXLSX,
		}
		for _, sys := range terminology.SourceSystems {
			rows, err := source.LoadNamasteXLSX(files[sys])
			if err != nil {
				logger.Warn().Err(err).Str("path", files[sys]).Msg("failed to load workbook, continuing without it")
				continue
			}
			tables[sys] = rows
		}
		checker = source.NewFileChecker([]source.FileSource{
			{Name: string(terminology.SystemAyurveda), Path: cfg.AyurvedaXLSX},
			{Name: string(terminology.SystemUnani), Path: cfg.UnaniXLSX},
			{Name: string(terminology.SystemSiddha), Path: cfg.SiddhaXLSX},
			{Name: string(terminology.SystemICD11), Path: cfg.ICD11CSV},
		})
	}

	var icd []terminology.ICD11Record
	if rows, err := source.LoadICD11CSV(cfg.ICD11CSV); err != nil {
		logger.Warn().Err(err).Str("path", cfg.ICD11CSV).Msg("failed to load local ICD-11 table, continuing without it")
	} else {
		icd = rows
	}

	return terminology.NewStore(tables, icd), checker, cleanup, nil
}

// newChecker builds just the source checker for the check-sources
// command, without loading any tables.
func newChecker(ctx context.Context, cfg *config.Config) (terminology.SourceChecker, func(), error) {
	if cfg.UsePostgres() {
		pool, err := source.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, func() {}, err
		}
		return source.NewPGChecker(pool, []source.TableSource{
			{Name: string(terminology.SystemAyurveda), Table: cfg.AyurvedaTable},
			{Name: string(terminology.SystemUnani), Table: cfg.UnaniTable},
			{Name: string(terminology.SystemSiddha), Table: cfg.SiddhaTable},
		}), pool.Close, nil
	}
	return source.NewFileChecker([]source.FileSource{
		{Name: string(terminology.SystemAyurveda), Path: cfg.AyurvedaXLSX},
		{Name: string(terminology.SystemUnani), Path: cfg.UnaniXLSX},
		{Name: string(terminology.SystemSiddha), Path: cfg.SiddhaXLSX},
		{Name: string(terminology.SystemICD11), Path: cfg.ICD11CSV},
	}), func() {}, nil
}
