// Command-line tool copying the topics of a file store data directory into the sql store
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-while/go-topics/internal/config"
	"github.com/go-while/go-topics/internal/database"
	"github.com/go-while/go-topics/internal/filestore"
	"github.com/go-while/go-topics/internal/importer"
)

var appVersion = "-unset-"

func main() {
	config.AppVersion = appVersion

	var (
		configFile = flag.String("config", "", "YAML config file (optional)")
		envFile    = flag.String("env", ".env", "dotenv file, ignored if missing")
		dataDir    = flag.String("datadir", "", "Directory holding the topic files (default: data)")
		dbDriver   = flag.String("dbdriver", "", "Database driver: sqlite3 or postgres (default: sqlite3)")
		dbName     = flag.String("database", "", "sqlite3: database file, postgres: database name (default: data/topics.sq3)")
		authorID   = flag.Int64("author", 0, "author id assigned to imported topics (default: none)")
		workers    = flag.Int("workers", importer.DefaultWorkers, "Number of worker goroutines")
		dryRun     = flag.Bool("dry-run", false, "Don't actually write to database, just read files")
		update     = flag.Bool("update", false, "Update mode: only import titles missing in the database")
		verbose    = flag.Bool("verbose", false, "Verbose logging")
	)
	flag.Parse()

	log.Printf("Starting go-topics IMPORT (version: %s)", appVersion)

	mainConfig := config.NewDefaultConfig()
	if *configFile != "" {
		if err := mainConfig.LoadFile(*configFile); err != nil {
			log.Fatalf("[IMPORT]: %v", err)
		}
	}
	if err := mainConfig.LoadEnv(*envFile); err != nil {
		log.Fatalf("[IMPORT]: %v", err)
	}
	if *dataDir != "" {
		mainConfig.Storage.DataDir = *dataDir
	}
	if *dbDriver != "" {
		mainConfig.Database.Driver = *dbDriver
	}
	if *dbName != "" {
		mainConfig.Database.Name = *dbName
	}
	if err := mainConfig.Validate(); err != nil {
		log.Fatalf("[IMPORT]: Invalid configuration: %v", err)
	}
	if _, err := os.Stat(mainConfig.Storage.DataDir); os.IsNotExist(err) {
		log.Fatalf("[IMPORT]: Data directory does not exist: %s", mainConfig.Storage.DataDir)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, err := filestore.New(mainConfig.Storage.DataDir)
	if err != nil {
		log.Fatalf("[IMPORT]: Failed to open file store: %v", err)
	}

	dbConfig := database.DefaultDBConfig()
	dbConfig.Driver = mainConfig.Database.Driver
	dbConfig.DSN = mainConfig.Database.DSN()
	db, err := database.OpenDatabase(ctx, dbConfig)
	if err != nil {
		log.Fatalf("[IMPORT]: Failed to initialize database: %v", err)
	}
	defer db.Shutdown()

	imp := importer.New(src, db, importer.Options{
		Workers:  *workers,
		AuthorID: *authorID,
		DryRun:   *dryRun,
		Update:   *update,
		Verbose:  *verbose,
	})
	go imp.StatsReporter(ctx, 30*time.Second)

	stats, err := imp.Run(ctx)
	if err != nil {
		log.Printf("[IMPORT]: Import aborted: %v", err)
		db.Shutdown()
		os.Exit(1)
	}
	log.Printf("[IMPORT]: Import completed! processed=%d errors=%d skipped=%d existing=%d",
		stats.Processed, stats.Errors, stats.Skipped, stats.Existing)
	if stats.Errors > 0 {
		db.Shutdown()
		os.Exit(1)
	}
}
