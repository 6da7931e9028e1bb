package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"comanda-system/internal/app/notify"
	"comanda-system/internal/app/server"
	"comanda-system/internal/common/config"
	"comanda-system/internal/common/db"
	"comanda-system/internal/common/logger"
	"comanda-system/internal/common/mq"
	"comanda-system/internal/store"
	"comanda-system/internal/store/postgres"
	"comanda-system/internal/store/sheet"
)

var (
	cfgFile string
	mode    string
	port    int
)

var rootCmd = &cobra.Command{
	Use:   "comanda",
	Short: "Restaurant front-of-house: voice ordering, kitchen display, order sync",
	RunE: func(cmd *cobra.Command, args []string) error {
		lg := logger.New("bootstrap")

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		switch mode {
		case "server":
			if port == 0 {
				port = cfg.HTTPPort
			}
			lg.Info("service_started", map[string]any{"service": "server", "port": port, "store": cfg.StoreBackend})
			return runServer(ctx, cfg, port)
		case "notification-subscriber":
			lg.Info("service_started", map[string]any{"service": "notification-subscriber"})
			return notify.Run(ctx, cfg.Rabbit)
		default:
			return fmt.Errorf("--mode is required: server | notification-subscriber")
		}
	},
}

func runServer(ctx context.Context, cfg config.App, httpPort int) error {
	if err := cfg.ValidateStore(); err != nil {
		return err
	}

	var orders store.OrderStore
	var menus store.MenuStore

	switch cfg.StoreBackend {
	case "postgres":
		conn, err := db.Connect(ctx, cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Pass, cfg.Database.Name)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer conn.Close()
		pg := postgres.New(conn)
		orders, menus = pg, pg
	default:
		sh := sheet.New(cfg.Sheet.MenuURL, cfg.Sheet.OrdersURL, cfg.Sheet.WebhookURL)
		orders, menus = sh, sh
	}

	var notifier *mq.Client
	if cfg.Rabbit.Enabled {
		client, err := mq.Dial(cfg.Rabbit.Host, cfg.Rabbit.Port, cfg.Rabbit.User, cfg.Rabbit.Pass)
		if err != nil {
			return fmt.Errorf("dial rabbitmq: %w", err)
		}
		defer client.Close()
		if err := client.DeclareAll(); err != nil {
			return fmt.Errorf("declare rabbitmq topology: %w", err)
		}
		notifier = client
	}

	svc := server.New(orders, menus, notifier, cfg.PollInterval)

	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Run(loopCtx) }()

	if err := svc.Serve(loopCtx, httpPort); err != nil {
		cancel()
		<-errCh
		return err
	}
	cancel()
	return <-errCh
}

func init() {
	rootCmd.Flags().StringVar(&cfgFile, "config", "", "config file (default config.yaml)")
	rootCmd.Flags().StringVar(&mode, "mode", "server", "server | notification-subscriber")
	rootCmd.Flags().IntVar(&port, "port", 0, "http port (server mode)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
