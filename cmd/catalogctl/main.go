package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"catalog-api/internal/config"
	"catalog-api/internal/importer"
	"catalog-api/internal/jobstore"
	"catalog-api/internal/model"
	"catalog-api/internal/repository"
	"catalog-api/pkg/database"
	"catalog-api/pkg/logger"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, _ := config.Load()
	log := logger.New(cfg.LogLevel, "text")

	app := &cli.Command{
		Name:  "catalogctl",
		Usage: "catalog database and import tooling",
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "manage schema migrations",
				Commands: []*cli.Command{
					{
						Name:  "up",
						Usage: "apply all pending migrations",
						Action: func(ctx context.Context, cmd *cli.Command) error {
							return migrateUp(cfg, log)
						},
					},
					{
						Name:  "down",
						Usage: "roll back migrations",
						Flags: []cli.Flag{
							&cli.IntFlag{Name: "steps", Usage: "number of migrations to roll back", Value: 1},
						},
						Action: func(ctx context.Context, cmd *cli.Command) error {
							return migrateDown(cfg, log, cmd.Int("steps"))
						},
					},
					{
						Name:  "version",
						Usage: "print the current schema version",
						Action: func(ctx context.Context, cmd *cli.Command) error {
							return migrateVersion(cfg, os.Stdout)
						},
					},
				},
			},
			{
				Name:      "import",
				Usage:     "import a product CSV synchronously",
				ArgsUsage: "<file.csv>",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "batch-size", Usage: "rows per transaction", Value: cfg.ImportBatchSize},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() != 1 {
						return cli.Exit("expected exactly one CSV file", 2)
					}
					return importFile(ctx, cfg, log, cmd.Args().First(), cmd.Int("batch-size"), os.Stdout)
				},
			},
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		log.WithError(err).Fatal("command failed")
	}
}

func migrateUp(cfg *config.Config, log *logrus.Logger) error {
	changed, err := database.MigrateUp(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	if !changed {
		log.Info("no change: database is up to date")
		return nil
	}
	log.Info("migrations applied")
	return nil
}

func migrateDown(cfg *config.Config, log *logrus.Logger, steps int) error {
	mg, err := database.NewMigrator(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer mg.Close()
	if err := mg.Down(steps); err != nil {
		return err
	}
	log.WithField("steps", steps).Info("migrations rolled back")
	return nil
}

func migrateVersion(cfg *config.Config, w io.Writer) error {
	mg, err := database.NewMigrator(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer mg.Close()
	v, dirty, err := mg.Version()
	if err != nil {
		return err
	}
	if dirty {
		_, err = fmt.Fprintf(w, "%d (dirty)\n", v)
		return err
	}
	_, err = fmt.Fprintf(w, "%d\n", v)
	return err
}

// importFile runs the import pipeline against the configured database.
func importFile(ctx context.Context, cfg *config.Config, log *logrus.Logger, path string, batchSize int, w io.Writer) error {
	db, err := database.ConnectDB(cfg.DatabaseURL, log)
	if err != nil {
		return err
	}
	defer database.Close(db)

	return runImport(ctx, repository.NewProductRepo(db), log, path, "", batchSize, w)
}

// runImport imports a private copy of path made in tmpDir, since the
// importer removes its input when done. The final job snapshot is written
// to w as JSON.
func runImport(ctx context.Context, store importer.TxBeginner, log *logrus.Logger, path, tmpDir string, batchSize int, w io.Writer) error {
	tmp, err := copyToTemp(path, tmpDir)
	if err != nil {
		return err
	}

	jobs := jobstore.NewMemoryStore()
	jobID := uuid.NewString()
	if _, err := jobs.Create(ctx, jobID); err != nil {
		os.Remove(tmp)
		return err
	}

	imp := importer.New(store, jobs, log, importer.WithBatchSize(batchSize))
	imp.Run(ctx, jobID, tmp)

	job, err := jobs.Get(ctx, jobID)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(job); err != nil {
		return err
	}
	if job.Status != model.JobStatusCompleted {
		return cli.Exit(job.Message, 1)
	}
	return nil
}

func copyToTemp(path, dir string) (string, error) {
	src, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer src.Close()

	dst, err := os.CreateTemp(dir, "catalogctl-*.csv")
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", err
	}
	return dst.Name(), dst.Close()
}
