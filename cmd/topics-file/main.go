// Topic web server storing every topic as <title>.txt in a data directory
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
	"github.com/go-while/go-topics/internal/filestore"
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
	dataDir     string
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
	flag.StringVar(&dataDir, "datadir", "", "Directory holding the topic files (default: data)")
	flag.StringVar(&pprofAddr, "pprof", "", "Start the pprof web profiler on this address (e.g. :51111)")
	flag.Parse()

	log.Printf("Starting go-topics: file server (version: %s)", appVersion)

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
	if dataDir != "" {
		mainConfig.Storage.DataDir = dataDir
	}
	if err := mainConfig.Validate(); err != nil {
		log.Fatalf("[WEB]: Invalid configuration: %v", err)
	}

	if pprofAddr != "" {
		Prof = prof.NewProf()
		go Prof.PprofWeb(pprofAddr)
		log.Printf("[WEB]: pprof web profiler on %s", pprofAddr)
	}

	store, err := filestore.New(mainConfig.Storage.DataDir)
	if err != nil {
		log.Fatalf("[WEB]: Failed to open file store: %v", err)
	}

	server := web.NewServer(store, webConfig)

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
		log.Fatalf("[WEB]: Failed to start web server: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.DefaultShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("[WEB]: Error during web server shutdown: %v", err)
	}
	log.Printf("[WEB]: Graceful shutdown completed after %s", server.Uptime())
} // end main
