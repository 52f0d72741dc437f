package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/mhofstetter/homestorage/internal/domain"
	"github.com/mhofstetter/homestorage/internal/repository/postgres"
	"github.com/mhofstetter/homestorage/internal/storage"
)

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func backupFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "endpoint",
			Usage:    "S3-compatible endpoint for backups",
			Required: true,
			EnvVars:  []string{"BACKUP_ENDPOINT"},
		},
		&cli.StringFlag{
			Name:     "access-key",
			Usage:    "Backup access key",
			Required: true,
			EnvVars:  []string{"BACKUP_ACCESS_KEY"},
		},
		&cli.StringFlag{
			Name:     "secret-key",
			Usage:    "Backup secret key",
			Required: true,
			EnvVars:  []string{"BACKUP_SECRET_KEY"},
		},
		&cli.StringFlag{
			Name:    "bucket",
			Usage:   "Backup bucket",
			Value:   "homestorage-backups",
			EnvVars: []string{"BACKUP_BUCKET"},
		},
		&cli.StringFlag{
			Name:    "region",
			Usage:   "Backup bucket region",
			Value:   "us-east-1",
			EnvVars: []string{"BACKUP_REGION"},
		},
		&cli.BoolFlag{
			Name:    "use-ssl",
			Usage:   "Connect to the backup endpoint over TLS",
			Value:   true,
			EnvVars: []string{"BACKUP_USE_SSL"},
		},
	}
}

func newBackupClient(c *cli.Context) (*storage.MinioClient, error) {
	return storage.NewMinioClient(storage.MinioConfig{
		Endpoint:  c.String("endpoint"),
		AccessKey: c.String("access-key"),
		SecretKey: c.String("secret-key"),
		Bucket:    c.String("bucket"),
		Region:    c.String("region"),
		UseSSL:    c.Bool("use-ssl"),
	})
}

func openRepo(c *cli.Context) (*postgres.StateRepository, *postgres.DB, error) {
	db, err := postgres.NewDBFromURL(c.String("db-url"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return postgres.NewStateRepository(db), db, nil
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "homectl",
		Usage: "Operate the household storage database",
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "Create the state table when missing",
				Flags:  []cli.Flag{newDBURLFlag()},
				Action: runMigrate,
			},
			{
				Name:  "seed",
				Usage: "Load a state export file into the database",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:     "file",
						Usage:    "Path to a state JSON export",
						Required: true,
					},
				},
				Action: runSeed,
			},
			{
				Name:  "export",
				Usage: "Write the current state as JSON to a file or stdout",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:  "file",
						Usage: "Destination path, stdout when omitted",
					},
				},
				Action: runExport,
			},
			{
				Name:   "backup",
				Usage:  "Upload a timestamped state snapshot to the backup bucket",
				Flags:  append([]cli.Flag{newDBURLFlag()}, backupFlags()...),
				Action: runBackup,
			},
			{
				Name:  "restore",
				Usage: "Replace the state with a snapshot from the backup bucket",
				Flags: append([]cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:  "key",
						Usage: "Snapshot object key, the most recent one when omitted",
					},
				}, backupFlags()...),
				Action: runRestore,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runMigrate(c *cli.Context) error {
	repo, db, err := openRepo(c)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := repo.EnsureSchema(c.Context); err != nil {
		return err
	}
	log.Println("Schema is up to date")
	return nil
}

func runSeed(c *cli.Context) error {
	data, err := os.ReadFile(c.String("file"))
	if err != nil {
		return fmt.Errorf("failed to read state file: %w", err)
	}

	st := &domain.State{}
	if err := json.Unmarshal(data, st); err != nil {
		return fmt.Errorf("state file is not a valid state export: %w", err)
	}
	st.Normalize()

	repo, db, err := openRepo(c)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := repo.EnsureSchema(c.Context); err != nil {
		return err
	}
	if err := repo.Save(c.Context, st); err != nil {
		return err
	}

	log.Printf("Seeded state with %d articles, %d recipes, %d lots",
		len(st.Articles), len(st.Recipes), len(st.Inventory))
	return nil
}

func runExport(c *cli.Context) error {
	repo, db, err := openRepo(c)
	if err != nil {
		return err
	}
	defer db.Close()

	st, err := repo.Load(c.Context)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	if path := c.String("file"); path != "" {
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		log.Printf("Exported state to %s", path)
		return nil
	}

	_, err = fmt.Println(string(data))
	return err
}

func runBackup(c *cli.Context) error {
	repo, db, err := openRepo(c)
	if err != nil {
		return err
	}
	defer db.Close()

	st, err := repo.Load(c.Context)
	if err != nil {
		return err
	}
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	client, err := newBackupClient(c)
	if err != nil {
		return err
	}

	key := fmt.Sprintf("state/%s.json", time.Now().UTC().Format("20060102T150405Z"))
	if err := client.UploadObject(c.Context, key, data); err != nil {
		return err
	}

	log.Printf("Uploaded snapshot %s (%d bytes)", key, len(data))
	return nil
}

func runRestore(c *cli.Context) error {
	client, err := newBackupClient(c)
	if err != nil {
		return err
	}

	key := c.String("key")
	if key == "" {
		key, err = latestSnapshotKey(c, client)
		if err != nil {
			return err
		}
	}

	data, err := client.DownloadObject(c.Context, key)
	if err != nil {
		return err
	}

	st := &domain.State{}
	if err := json.Unmarshal(data, st); err != nil {
		return fmt.Errorf("snapshot %s is not a valid state export: %w", key, err)
	}
	st.Normalize()

	repo, db, err := openRepo(c)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := repo.EnsureSchema(c.Context); err != nil {
		return err
	}
	if err := repo.Save(c.Context, st); err != nil {
		return err
	}

	log.Printf("Restored snapshot %s", key)
	return nil
}

// latestSnapshotKey picks the newest object under state/. Keys embed a
// sortable timestamp but LastModified is the source of truth.
func latestSnapshotKey(c *cli.Context, client *storage.MinioClient) (string, error) {
	objects, err := client.ListObjects(c.Context, "state/")
	if err != nil {
		return "", err
	}
	if len(objects) == 0 {
		return "", fmt.Errorf("no snapshots found in bucket %s", c.String("bucket"))
	}

	sort.Slice(objects, func(i, j int) bool {
		return objects[i].LastModified.After(objects[j].LastModified)
	})
	return objects[0].Key, nil
}
