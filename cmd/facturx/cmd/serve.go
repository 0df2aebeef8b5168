package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rezonia/facturx/internal/config"
	"github.com/rezonia/facturx/internal/logger"
	"github.com/rezonia/facturx/internal/server"
)

var (
	serverAddr   string
	serverDebug  bool
	historyFile  string
	readTimeout  time.Duration
	writeTimeout time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP API server for generating invoices.

The API provides endpoints for:
  - POST /api/v1/generate/xml      - Factur-X XML
  - POST /api/v1/generate/pdf      - Visual PDF
  - POST /api/v1/generate/zugferd  - Hybrid PDF with embedded XML
  - GET  /api/v1/history           - Stored senders, recipients, footers
  - GET  /api/v1/next-id           - Next free invoice number
  - GET  /health                   - Health check

Examples:
  # Start server on default port
  facturx serve

  # Start on a custom address in debug mode
  facturx serve --address :9000 --debug`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverAddr, "address", "", "Server listen address (default from config)")
	serveCmd.Flags().BoolVar(&serverDebug, "debug", false, "Enable debug mode")
	serveCmd.Flags().StringVar(&historyFile, "history-file", "", "Invoice history file (default from config)")
	serveCmd.Flags().DurationVar(&readTimeout, "read-timeout", 0, "HTTP read timeout (default from config)")
	serveCmd.Flags().DurationVar(&writeTimeout, "write-timeout", 0, "HTTP write timeout (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Flags win over environment configuration.
	if serverAddr == "" {
		serverAddr = cfg.HTTP.Addr()
	}
	if historyFile == "" {
		historyFile = cfg.App.HistoryFile
	}
	if readTimeout == 0 {
		readTimeout = cfg.HTTP.ReadTimeout
	}
	if writeTimeout == 0 {
		writeTimeout = cfg.HTTP.WriteTimeout
	}
	if profile == "" {
		profile = cfg.App.Profile
	}

	prof, err := parseProfile(profile)
	if err != nil {
		return err
	}

	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	srv := server.NewServer(&server.Config{
		Address:      serverAddr,
		HistoryFile:  historyFile,
		Profile:      prof,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		Debug:        serverDebug,
	}, log)

	// Handle graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		fmt.Println("\nShutting down server...")
		os.Exit(0)
	}()

	fmt.Printf("Starting server on %s (profile %s)\n", serverAddr, prof)
	return srv.Run()
}
