package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/andresuchdata/scm-dashboard/backend-go/internal/app"
	"github.com/andresuchdata/scm-dashboard/backend-go/internal/config"
	"github.com/andresuchdata/scm-dashboard/backend-go/internal/drive"
	"github.com/andresuchdata/scm-dashboard/backend-go/internal/ingest"
	"github.com/andresuchdata/scm-dashboard/backend-go/internal/repository/postgres"
	"github.com/andresuchdata/scm-dashboard/backend-go/pkg/logger"
	"github.com/urfave/cli/v2"
)

const appMetaKey = "app"

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

// initApp builds the application against the database given by --db-url and
// stores it on the command context.
func initApp(c *cli.Context) error {
	cfg := config.Load()
	cfg.Database.URL = c.String("db-url")

	a, err := app.New(c.Context, cfg)
	if err != nil {
		return err
	}
	c.App.Metadata[appMetaKey] = a
	return nil
}

func closeApp(c *cli.Context) error {
	if a, ok := c.App.Metadata[appMetaKey].(*app.App); ok {
		a.Close()
	}
	return nil
}

func appFrom(c *cli.Context) *app.App {
	return c.App.Metadata[appMetaKey].(*app.App)
}

func main() {
	application := &cli.App{
		Name:     "seed",
		Usage:    "Seed the supply-chain database",
		Metadata: map[string]interface{}{},
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "Apply the database schema",
				Flags: []cli.Flag{newDBURLFlag()},
				Action: func(c *cli.Context) error {
					db, err := postgres.NewDBFromURL(c.String("db-url"))
					if err != nil {
						return err
					}
					defer db.Close()
					return db.Migrate(c.Context)
				},
			},
			{
				Name:   "synthetic",
				Usage:  "Replace products, demand, suppliers and inventory with generated data",
				Flags:  []cli.Flag{newDBURLFlag()},
				Before: initApp,
				After:  closeApp,
				Action: func(c *cli.Context) error {
					res, err := appFrom(c).Services.Data.LoadSynthetic(c.Context)
					if err != nil {
						return err
					}
					logger.Log.Info().Int("demand_records", res.Count).Msg(res.Message)
					return nil
				},
			},
			{
				Name:  "csv",
				Usage: "Insert sales history from local CSV/XLSX files or archived objects",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringSliceFlag{
						Name:  "file",
						Usage: "Sales file to import (repeatable)",
					},
					&cli.StringSliceFlag{
						Name:  "object",
						Usage: "Object key in the configured bucket to import (repeatable)",
					},
					&cli.StringFlag{
						Name:  "download-dir",
						Usage: "Directory for downloaded objects",
						Value: os.TempDir(),
					},
				},
				Before: initApp,
				After:  closeApp,
				Action: runCSV,
			},
			{
				Name:  "drive",
				Usage: "Download a Google Drive folder's sales files and insert them",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:    "folder-id",
						Usage:   "Drive folder holding CSV/XLSX sales files",
						EnvVars: []string{"GOOGLE_DRIVE_FOLDER_ID"},
					},
					&cli.StringFlag{
						Name:  "download-dir",
						Usage: "Directory for downloaded files",
						Value: "./data/drive",
					},
				},
				Before: initApp,
				After:  closeApp,
				Action: runDrive,
			},
			{
				Name:   "sync",
				Usage:  "Pull products and demand history from the analytics backend",
				Flags:  []cli.Flag{newDBURLFlag()},
				Before: initApp,
				After:  closeApp,
				Action: func(c *cli.Context) error {
					data := appFrom(c).Services.Data
					products, err := data.SyncProducts(c.Context)
					if err != nil {
						return fmt.Errorf("sync products: %w", err)
					}
					demand, err := data.SyncDemand(c.Context)
					if err != nil {
						return fmt.Errorf("sync demand: %w", err)
					}
					logger.Log.Info().
						Int("products", products.ProductsInserted).
						Int("demand_records", demand.DemandRecordsInserted).
						Int("total_available", demand.TotalAvailable).
						Msg("sync completed")
					return nil
				},
			},
		},
	}

	if err := application.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("seed failed")
	}
}

func runDrive(c *cli.Context) error {
	if c.String("folder-id") == "" {
		return fmt.Errorf("--folder-id is required")
	}
	src, err := drive.NewService(c.Context, config.Load().Drive.CredentialsJSON)
	if err != nil {
		return err
	}

	paths, err := drive.NewDownloader(src).DownloadFolderCSV(c.Context, drive.DownloadOptions{
		FolderID:    c.String("folder-id"),
		DownloadDir: c.String("download-dir"),
	})
	if err != nil {
		return err
	}
	logger.Log.Info().Int("files", len(paths)).Msg("downloaded drive folder")
	return insertFiles(c, paths)
}

func runCSV(c *cli.Context) error {
	a := appFrom(c)
	paths := c.StringSlice("file")

	if keys := c.StringSlice("object"); len(keys) > 0 {
		if a.Objects == nil {
			return fmt.Errorf("--object requires STORAGE_ENABLED and storage credentials")
		}
		for _, key := range keys {
			dest := filepath.Join(c.String("download-dir"), filepath.Base(key))
			if err := a.Objects.DownloadObject(c.Context, key, dest); err != nil {
				return err
			}
			logger.Log.Info().Str("key", key).Str("path", dest).Msg("downloaded object")
			paths = append(paths, dest)
		}
	}
	if len(paths) == 0 {
		return fmt.Errorf("at least one --file or --object is required")
	}
	return insertFiles(c, paths)
}

func insertFiles(c *cli.Context, paths []string) error {
	if len(paths) == 0 {
		logger.Log.Warn().Msg("no sales files to insert")
		return nil
	}
	sales, err := ingest.ParseFiles(c.Context, paths)
	if err != nil {
		return err
	}
	res, err := appFrom(c).Services.Data.InsertSalesData(c.Context, sales.Products, sales.Demand)
	if err != nil {
		return err
	}
	logger.Log.Info().
		Int("files", len(paths)).
		Int("products", res.ProductsInserted).
		Int("demand_records", res.DemandRecordsInserted).
		Msg("sales data inserted")
	return nil
}
