package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/cryptobalance/tracker/internal/api"
	"github.com/cryptobalance/tracker/internal/asset"
	"github.com/cryptobalance/tracker/internal/config"
	"github.com/cryptobalance/tracker/internal/database"
	"github.com/cryptobalance/tracker/internal/export"
	"github.com/cryptobalance/tracker/internal/holding"
	"github.com/cryptobalance/tracker/internal/insights"
	"github.com/cryptobalance/tracker/internal/market"
	"github.com/cryptobalance/tracker/internal/platform"
	"github.com/cryptobalance/tracker/internal/snapshot"
	"github.com/cryptobalance/tracker/internal/transfer"
	"github.com/cryptobalance/tracker/internal/worker"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not load .env file", "error", err)
	}

	app := &cli.App{
		Name:  "tracker",
		Usage: "crypto portfolio tracker",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API and background workers",
				Action: runServe,
			},
			{
				Name:  "export",
				Usage: "export the current portfolio report and exit",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "out",
						Usage: "write an XLSX report to this path instead of Google Sheets",
					},
				},
				Action: runExport,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// services holds the wired application graph shared by both commands.
type services struct {
	pool      *pgxpool.Pool
	holdings  *holding.Service
	platforms *platform.Service
	transfers *transfer.Service
	market    *market.Service
	insights  *insights.Service
	snapshots *snapshot.Service
}

func buildServices(ctx context.Context, cfg config.Config) (*services, error) {
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	migrationsSub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating migrations sub-fs: %w", err)
	}
	if err := database.RunMigrations(ctx, pool, migrationsSub); err != nil {
		pool.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	platformRepo := platform.NewPgRepository(pool)
	assetRepo := asset.NewPgRepository(pool)
	holdingRepo := holding.NewPgRepository(pool)
	snapshotRepo := snapshot.NewPgRepository(pool)

	coingecko := market.NewCoinGeckoClient(cfg.CoinGeckoURL, cfg.CoinGeckoAPIKey, cfg.CoinGeckoDelay, cfg.CoinGeckoRetryMax)
	marketSvc := market.NewService(coingecko, assetRepo, cfg.MarketRefreshPause)

	insightsSvc := insights.NewService(holdingRepo, assetRepo, platformRepo)

	return &services{
		pool:      pool,
		holdings:  holding.NewService(holdingRepo, marketSvc, platformRepo),
		platforms: platform.NewService(platformRepo),
		transfers: transfer.NewService(holdingRepo, platformRepo),
		market:    marketSvc,
		insights:  insightsSvc,
		snapshots: snapshot.NewService(insightsSvc, snapshotRepo),
	}, nil
}

// buildExporter returns nil when no report destination is configured.
func buildExporter(ctx context.Context, cfg config.Config, src export.InsightsSource, xlsxPath string) (*export.Service, error) {
	if xlsxPath != "" {
		return export.NewService(src, export.NewXLSXWriter(xlsxPath)), nil
	}
	if cfg.SheetsSpreadsheetID == "" {
		return nil, nil
	}
	writer, err := export.NewSheetsWriter(ctx, cfg.SheetsSpreadsheetID, cfg.SheetsCredentialsJSON)
	if err != nil {
		return nil, fmt.Errorf("creating sheets writer: %w", err)
	}
	return export.NewService(src, writer), nil
}

func runServe(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()

	svcs, err := buildServices(ctx, cfg)
	if err != nil {
		return err
	}
	defer svcs.pool.Close()

	exporter, err := buildExporter(ctx, cfg, svcs.insights, "")
	if err != nil {
		return err
	}
	if exporter == nil {
		slog.Info("no report destination configured, snapshots will not be exported")
	}

	priceWorker := worker.NewPriceWorker(svcs.market, cfg.PriceWorkerInterval)
	go priceWorker.Run(ctx)

	var hook worker.AfterSnapshotHook
	if exporter != nil {
		hook = exporter
	}
	reportWorker := worker.NewReportWorker(svcs.snapshots, cfg.ReportWorkerInterval, hook)
	go reportWorker.Run(ctx)

	if cfg.AdminAPIKey == "" {
		slog.Warn("ADMIN_API_KEY not set, mutating endpoints are unprotected")
	}

	srv := api.NewServer(cfg.HTTPPort, api.Handlers{
		Insights:  api.NewInsightsHandler(svcs.insights, cfg.MaxAssetsInChart),
		Portfolio: api.NewPortfolioHandler(svcs.holdings, svcs.platforms, svcs.transfers, svcs.market),
		Snapshots: api.NewSnapshotHandler(svcs.snapshots),
	}, cfg.AdminAPIKey)

	go func() {
		log.Printf("HTTP server listening on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("HTTP server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	log.Println("Shutdown complete")
	return nil
}

func runExport(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()

	svcs, err := buildServices(ctx, cfg)
	if err != nil {
		return err
	}
	defer svcs.pool.Close()

	xlsxPath := c.String("out")
	if xlsxPath == "" && cfg.SheetsSpreadsheetID == "" {
		xlsxPath = cfg.XLSXReportPath
	}

	exporter, err := buildExporter(ctx, cfg, svcs.insights, xlsxPath)
	if err != nil {
		return err
	}

	if err := exporter.Export(ctx); err != nil {
		if errors.Is(err, insights.ErrNoData) {
			slog.Info("portfolio is empty, nothing to export")
			return nil
		}
		return fmt.Errorf("exporting report: %w", err)
	}

	if xlsxPath != "" {
		log.Printf("Report written to %s", xlsxPath)
	} else {
		log.Printf("Report written to spreadsheet %s", cfg.SheetsSpreadsheetID)
	}
	return nil
}
