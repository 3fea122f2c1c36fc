package main

import (
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kestrelsec/passvault/pkg/audit"
	"github.com/kestrelsec/passvault/pkg/config"
	"github.com/kestrelsec/passvault/pkg/db"
	"github.com/kestrelsec/passvault/pkg/keycrypt"
	"github.com/kestrelsec/passvault/pkg/server"
	"github.com/kestrelsec/passvault/pkg/server/endpoints"
)

func defaultBindAddress() string {
	if addr := os.Getenv("BIND_ADDRESS"); addr != "" {
		return addr
	}
	return "0.0.0.0"
}

func defaultPort() string {
	if port := os.Getenv("PORT"); port != "" {
		return port
	}
	return "8000"
}

func defaultPortInt() int {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			return p
		}
	}
	return 8000
}

func newLogger() *zap.SugaredLogger {
	var zl *zap.Logger
	var err error
	if os.Getenv("PASSVAULT_LOG_LEVEL") == "debug" {
		zl, err = zap.NewDevelopment()
	} else {
		zl, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return zl.Sugar()
}

// keyFromEnv decodes a base64 PKCS1 DER private key from the named
// environment variable.
func keyFromEnv(name string) (*keycrypt.Key, error) {
	value, ok := os.LookupEnv(name)
	if !ok || value == "" {
		return nil, nil
	}
	der, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("bad %s: %w", name, err)
	}
	key, err := keycrypt.NewKey(der)
	if err != nil {
		return nil, fmt.Errorf("bad %s: %w", name, err)
	}
	return key, nil
}

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the passvault application server",
	Long: `Run the passvault application server

To run the server requires the environment variables PASSVAULT_SIGNING_KEY
and DATABASE_URL. Set PASSVAULT_ADMIN_KEY to enable break-glass decryption
on redeemed access windows.

By default, database migrations are run on startup. Use --no-migrate to skip.`,
	Run: func(cmd *cobra.Command, args []string) {
		// Validate required environment variables first (fail fast)
		signingKey, err := keyFromEnv("PASSVAULT_SIGNING_KEY")
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		if signingKey == nil {
			fmt.Fprintln(os.Stderr, "PASSVAULT_SIGNING_KEY environment variable is required")
			os.Exit(1)
		}

		if os.Getenv("DATABASE_URL") == "" {
			fmt.Fprintln(os.Stderr, "DATABASE_URL environment variable is required")
			os.Exit(1)
		}

		adminKey, err := keyFromEnv("PASSVAULT_ADMIN_KEY")
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		// Run migrations unless --no-migrate is set
		noMigrate, _ := cmd.Flags().GetBool("no-migrate")
		if !noMigrate {
			log.Println("Running database migrations...")
			if err := runMigrations(); err != nil {
				fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
				os.Exit(1)
			}
		}

		logger := newLogger()

		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Unable to load configuration:", err)
			os.Exit(1)
		}
		if err := cfg.Validate(); err != nil {
			fmt.Fprintln(os.Stderr, "Invalid configuration:", err)
			os.Exit(1)
		}

		conn, err := db.Connect(db.Config{})
		if err != nil {
			fmt.Fprintln(os.Stderr, "Unable to connect to DB:", err)
			os.Exit(1)
		}

		var auditStore *audit.Store
		if cfg.AuditPersistEnabled {
			auditStore, err = audit.NewStore()
			if err != nil {
				fmt.Fprintln(os.Stderr, "Unable to open audit store:", err)
				os.Exit(1)
			}
			defer func() { _ = auditStore.Close() }()
		}
		sink := audit.NewSink(auditStore, logger)

		// Reload configuration when the config file changes on disk.
		stop := make(chan struct{})
		defer close(stop)
		go func() {
			err := config.Watch(stop, func(reloadErr error) {
				if reloadErr != nil {
					logger.Warnw("config reload failed", "error", reloadErr)
					return
				}
				logger.Infow("configuration reloaded")
			})
			if err != nil {
				logger.Debugw("config watch unavailable", "error", err)
			}
		}()

		host, _ := cmd.Flags().GetString("bind-address")
		port, _ := cmd.Flags().GetString("port")
		s := server.NewServer(conn, signingKey, adminKey, sink, cfg, logger, host, port)

		endpoints.RegisterAll(s)

		log.Printf("Running server at http://%s:%s...\n", host, port)
		log.Fatal(s.Start())
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().StringP("port", "p", defaultPort(), "server listen port")
	serverCmd.Flags().StringP("bind-address", "b", defaultBindAddress(), "server bind address")
	serverCmd.Flags().Bool("no-migrate", false, "skip running database migrations on start")
}
