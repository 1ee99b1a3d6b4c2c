// Command-line tool to clean the database by dropping all tables in the public schema,
// or to remove uploaded objects that no file record point to.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"CareerFindr-backend/internal/config"
	"CareerFindr-backend/internal/controller/file"
	"CareerFindr-backend/internal/database"
)

const dropAllTables = `
	DO $$
		DECLARE
			r RECORD;
		BEGIN
			FOR r IN (SELECT tablename FROM pg_tables WHERE schemaname = 'public') LOOP
				EXECUTE 'DROP TABLE IF EXISTS ' || quote_ident(r.tablename) || ' CASCADE';
			END LOOP;
		END $$;
	`

func confirm(prompt string) bool {
	fmt.Println(prompt)
	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		log.Fatalf("Failed to read input: %v", err)
	}
	return strings.TrimSpace(strings.ToLower(input)) == "yes"
}

func main() {
	orphans := flag.Bool("orphans", false, "remove bucket objects without file record instead of dropping tables")
	dryRun := flag.Bool("dry-run", false, "with -orphans, only list objects that would be removed")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if *orphans {
		sweepOrphans(cfg, *dryRun)
		return
	}

	if !confirm("WARNING: This command will DROP ALL TABLES in the 'public' schema of your database.\n" +
		"This action is irreversible. Do you want to continue? (yes/no): ") {
		fmt.Println("Operation cancelled.")
		return
	}

	db, err := database.GetMainDB(cfg)
	if err != nil {
		log.Fatalf("Database failed to initialize: %v", err)
	}
	defer db.Close()

	if err := db.Exec(dropAllTables).Error; err != nil {
		log.Fatalf("failed to execute drop command: %v", err)
	}

	fmt.Println("All tables dropped successfully.")
}

func sweepOrphans(cfg *config.Config, dryRun bool) {
	if cfg.GCSBucket == "" {
		log.Fatal("GCS_BUCKET_NAME is not set")
	}

	ctx := context.Background()
	db, err := database.GetMainDB(cfg)
	if err != nil {
		log.Fatalf("Database failed to initialize: %v", err)
	}
	defer db.Close()

	store, err := file.NewCloudStorageClient(ctx, cfg.GCSBucket)
	if err != nil {
		log.Fatalf("Failed to create cloud storage client: %v", err)
	}
	defer store.Close()

	removed, err := file.SweepOrphanObjects(ctx, db.DB, store, dryRun)
	for _, name := range removed {
		fmt.Println(name)
	}
	if err != nil {
		log.Fatalf("Failed to sweep orphan objects: %v", err)
	}

	verb := "Removed"
	if dryRun {
		verb = "Found"
	}
	fmt.Printf("%s %d orphan object(s).\n", verb, len(removed))
}
