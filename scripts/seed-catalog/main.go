// seed-catalog loads a small sample catalog into a local MySQL database so
// list_db has something to return during development.
//
// Usage: go run ./scripts/seed-catalog [-dry-run=false] [-migrate] [-databases N]
//
// Database connection: uses the same MYSQL_* environment variables (or
// config.yaml) as the functions host.
//
// Flags:
//
//	-dry-run     Print the rows that would be inserted (default: true)
//	-migrate     Apply the bundled schema before seeding
//	-databases   Number of sample databases to create (default: 3)
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/SongDrop/gitgptapi/migrations"
	"github.com/SongDrop/gitgptapi/pkg/config"
	"github.com/SongDrop/gitgptapi/pkg/database"
)

var sampleTags = []string{"research", "papers", "internal", "public", "archive"}

type seedUser struct {
	ID   string
	Name string
}

type seedDatabase struct {
	ID          string
	Name        string
	Description string
	IsPublic    bool
	OwnerID     string
	Rating      float64
	Files       []string
	Tags        []string
}

func main() {
	dryRun := flag.Bool("dry-run", true, "Print the rows that would be inserted without inserting")
	migrate := flag.Bool("migrate", false, "Apply the bundled schema before seeding")
	count := flag.Int("databases", 3, "Number of sample databases to create")
	flag.Parse()

	if *count < 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s [-dry-run=false] [-migrate] [-databases N]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\n-databases must be at least 1\n")
		os.Exit(1)
	}

	cfg, err := config.Load("seed")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if cfg.Catalog.Driver != database.DriverMySQL {
		fmt.Fprintf(os.Stderr, "seed-catalog only supports the mysql catalog driver, got %q\n", cfg.Catalog.Driver)
		os.Exit(1)
	}

	users, dbs := buildSeed(*count, time.Now().UTC())

	if *dryRun {
		fmt.Println("DRY RUN - no changes will be made")
		fmt.Println("Run with -dry-run=false to actually insert rows")
		fmt.Println()
		printSeed(users, dbs)
		return
	}

	if *migrate {
		migrationDB, _, err := database.Open(&cfg.Catalog)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open database for migrations: %v\n", err)
			os.Exit(1)
		}
		if err := database.RunMigrations(migrationDB, migrations.MySQL, migrations.MySQLDir, zap.NewNop()); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to migrate: %v\n", err)
			os.Exit(1)
		}
	}

	db, dialect, err := database.Open(&cfg.Catalog)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Catalog.Timeout)
	defer cancel()

	if err := insertSeed(ctx, db, dialect, users, dbs); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to seed catalog: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Inserted %d users and %d databases\n", len(users), len(dbs))
}

// buildSeed returns two users and count databases. The last database has no
// owner so the listing shows the "Unknown" fallback.
func buildSeed(count int, now time.Time) ([]seedUser, []seedDatabase) {
	users := []seedUser{
		{ID: uuid.NewString(), Name: "Ada Lovelace"},
		{ID: uuid.NewString(), Name: "Grace Hopper"},
	}

	dbs := make([]seedDatabase, 0, count)
	for i := 0; i < count; i++ {
		d := seedDatabase{
			ID:          uuid.NewString(),
			Name:        fmt.Sprintf("Sample Database %d", i+1),
			Description: fmt.Sprintf("Seeded on %s", now.Format(time.DateOnly)),
			IsPublic:    i%2 == 0,
			Rating:      float64(3+i%3) - 0.5,
			Files:       []string{fmt.Sprintf("paper-%d.pdf", i+1)},
			Tags:        []string{sampleTags[i%len(sampleTags)], sampleTags[(i+1)%len(sampleTags)]},
		}
		if i < count-1 || count == 1 {
			d.OwnerID = users[i%len(users)].ID
		}
		dbs = append(dbs, d)
	}
	return users, dbs
}

func printSeed(users []seedUser, dbs []seedDatabase) {
	for _, u := range users {
		fmt.Printf("  user %s %q\n", u.ID, u.Name)
	}
	for _, d := range dbs {
		owner := d.OwnerID
		if owner == "" {
			owner = "(none)"
		}
		fmt.Printf("  database %s %q owner=%s public=%t files=%v tags=%v\n",
			d.ID, d.Name, owner, d.IsPublic, d.Files, d.Tags)
	}
}

func insertSeed(ctx context.Context, db *sql.DB, q database.Quoter, users []seedUser, dbs []seedDatabase) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin failed: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, u := range users {
		if _, err := tx.ExecContext(ctx, `INSERT INTO users (id, name) VALUES (?, ?)`, u.ID, u.Name); err != nil {
			return fmt.Errorf("insert user %s failed: %w", u.ID, err)
		}
	}

	insertDatabase := fmt.Sprintf(`
		INSERT INTO %s (id, name, description, type, isPublic, lastUpdated, documentCount, usageCount, rating, owner_id)
		VALUES (?, ?, ?, 'vector', ?, ?, ?, 0, ?, ?)`, q.Quote("databases"))

	for _, d := range dbs {
		var owner sql.NullString
		if d.OwnerID != "" {
			owner = sql.NullString{String: d.OwnerID, Valid: true}
		}
		if _, err := tx.ExecContext(ctx, insertDatabase,
			d.ID, d.Name, d.Description, d.IsPublic, time.Now().UTC(), len(d.Files), d.Rating, owner); err != nil {
			return fmt.Errorf("insert database %s failed: %w", d.ID, err)
		}

		for _, u := range users {
			if u.ID == d.OwnerID {
				continue
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO database_contributors (database_id, user_id) VALUES (?, ?)`, d.ID, u.ID); err != nil {
				return fmt.Errorf("insert contributor failed: %w", err)
			}
		}
		for _, f := range d.Files {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO database_files (database_id, name, size, type, uploadedAt) VALUES (?, ?, ?, ?, ?)`,
				d.ID, f, 1024, "application/pdf", time.Now().UTC()); err != nil {
				return fmt.Errorf("insert file failed: %w", err)
			}
		}
		for _, t := range d.Tags {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO database_tags (database_id, tag) VALUES (?, ?)`, d.ID, t); err != nil {
				return fmt.Errorf("insert tag failed: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit failed: %w", err)
	}
	return nil
}
