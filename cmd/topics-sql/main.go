// Topic web server storing topics and authors in sqlite3 or postgres
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	prof "github.com/go-while/go-cpu-mem-profiler"
	"github.com/go-while/go-topics/internal/config"
	"github.com/go-while/go-topics/internal/database"
	"github.com/go-while/go-topics/internal/web"
)

var Prof *prof.Profiler

var (
	// command-line flags
	configFile  string
	envFile     string
	webport     int
	webssl      bool
	webcertFile string
	webkeyFile  string
	dbDriver    string
	dbName      string
	pprofAddr   string
)

var appVersion = "-unset-"

func main() {
	config.AppVersion = appVersion

	flag.StringVar(&configFile, "config", "", "YAML config file (optional)")
	flag.StringVar(&envFile, "env", ".env", "dotenv file, ignored if missing")
	flag.IntVar(&webport, "webport", 0, "Web server port (default: 3000)")
	flag.BoolVar(&webssl, "webssl", false, "Enable SSL")
	flag.StringVar(&webcertFile, "websslcert", "", "SSL certificate file (/path/to/fullchain.pem)")
	flag.StringVar(&webkeyFile, "websslkey", "", "SSL key file (/path/to/privkey.pem)")
	flag.StringVar(&dbDriver, "dbdriver", "", "Database driver: sqlite3 or postgres (default: sqlite3)")
	flag.StringVar(&dbName, "database", "", "sqlite3: database file, postgres: database name (default: data/topics.sq3)")
	flag.StringVar(&pprofAddr, "pprof", "", "Start the pprof web profiler on this address (e.g. :51111)")
	flag.Parse()

	log.Printf("Starting go-topics: sql server (version: %s)", appVersion)

	mainConfig := config.NewDefaultConfig()
	if configFile != "" {
		if err := mainConfig.LoadFile(configFile); err != nil {
			log.Fatalf("[WEB]: %v", err)
		}
	}
	if err := mainConfig.LoadEnv(envFile); err != nil {
		log.Fatalf("[WEB]: %v", err)
	}

	// Override config with command-line flags if provided
	webConfig := &mainConfig.Web
	if webport > 0 {
		webConfig.ListenPort = webport
		log.Printf("[WEB]: Overriding listen port with command-line flag: %d", webConfig.ListenPort)
	}
	if webssl {
		webConfig.SSL = true
		log.Printf("[WEB]: SSL enabled via command-line flag")
	}
	if webcertFile != "" {
		webConfig.CertFile = webcertFile
	}
	if webkeyFile != "" {
		webConfig.KeyFile = webkeyFile
	}
	if dbDriver != "" {
		mainConfig.Database.Driver = dbDriver
	}
	if dbName != "" {
		mainConfig.Database.Name = dbName
	}
	if err := mainConfig.Validate(); err != nil {
		log.Fatalf("[WEB]: Invalid configuration: %v", err)
	}

	if pprofAddr != "" {
		Prof = prof.NewProf()
		go Prof.PprofWeb(pprofAddr)
		log.Printf("[WEB]: pprof web profiler on %s", pprofAddr)
	}

	dbConfig := database.DefaultDBConfig()
	dbConfig.Driver = mainConfig.Database.Driver
	dbConfig.DSN = mainConfig.Database.DSN()
	dbConfig.MaxOpenConns = mainConfig.Database.MaxOpenConns
	dbConfig.MaxIdleConns = mainConfig.Database.MaxIdleConns

	db, err := database.OpenDatabase(context.Background(), dbConfig)
	if err != nil {
		log.Fatalf("[WEB]: Failed to initialize database: %v", err)
	}
	if db.Driver() == database.DriverSQLite3 {
		log.Printf("[WEB]: Using sqlite %s", database.SQLiteVersion())
	}

	server := web.NewServer(db, webConfig)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	webServerErrChan := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			webServerErrChan <- err
		}
	}()
	log.Printf("[WEB]: Server started successfully. Press Ctrl+C to gracefully shutdown...")

	select {
	case <-sigChan:
		log.Printf("[WEB]: Received shutdown signal, initiating graceful shutdown...")
	case err := <-webServerErrChan:
		db.Shutdown()
		log.Fatalf("[WEB]: Failed to start web server: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.DefaultShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("[WEB]: Error during web server shutdown: %v", err)
	}

	if err := db.Shutdown(); err != nil {
		log.Fatalf("[WEB]: Failed to shutdown database: %v", err)
	} else {
		log.Printf("[WEB]: Database shutdown successfully")
	}
	log.Printf("[WEB]: Graceful shutdown completed")
} // end main
