package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"github.com/thereceipt/order-printing/internal/api"
	"github.com/thereceipt/order-printing/internal/composer"
	"github.com/thereceipt/order-printing/internal/config"
	"github.com/thereceipt/order-printing/internal/dispatch"
	"github.com/thereceipt/order-printing/internal/encoder"
	"github.com/thereceipt/order-printing/internal/logger"
	"github.com/thereceipt/order-printing/internal/metrics"
	"github.com/thereceipt/order-printing/internal/printer"
	"github.com/thereceipt/order-printing/internal/printing"
	"github.com/thereceipt/order-printing/pkg/order"
	"go.uber.org/zap"
)

// Version is set during build via ldflags
var Version = "dev"

func main() {
	flags := pflag.NewFlagSet("order-printing", pflag.ExitOnError)
	config.RegisterFlags(flags)
	flags.Parse(os.Args[1:])

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log)
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	log.Info("starting order printing server",
		zap.String("version", Version),
		zap.String("port", cfg.Server.Port),
		zap.String("registry", cfg.Printer.RegistryPath),
		zap.String("default_family", cfg.Printer.DefaultFamily),
	)

	manager, err := printer.NewManager(cfg.Printer.RegistryPath, log.Named("printer"))
	if err != nil {
		return fmt.Errorf("failed to create printer manager: %w", err)
	}

	printers, err := manager.DetectPrinters()
	if err != nil {
		log.Warn("printer detection failed", zap.Error(err))
	} else {
		log.Info("printers detected", zap.Int("count", len(printers)))
	}

	pool := printer.NewConnectionPool(log.Named("pool"))
	defer pool.DisconnectAll()

	queue := printer.NewPrintQueue(pool, manager, cfg.Printer.MaxRetries, log.Named("queue"))
	defer queue.Stop()

	m := metrics.New()

	remote := dispatch.NewRemoteGateway(dispatch.RemoteConfig{
		Endpoint: cfg.PrintNode.Endpoint,
		APIKey:   cfg.PrintNode.APIKey,
		Timeout:  cfg.PrintNode.Timeout,
	}, &http.Client{}, log.Named("remote"))
	if cfg.PrintNode.APIKey == "" {
		log.Warn("printnode.api_key is not set, remote printing will fail")
	}

	local := dispatch.NewLocalGateway(manager, queue, cfg.Printer.LocalTimeout, log.Named("local"))

	service := printing.NewService(
		composer.New(composerOptions(cfg.Receipt)),
		encoder.New(encoder.Config{LineWidth: cfg.Printer.LineWidth}),
		printing.Config{DefaultFamily: cfg.Printer.DefaultFamily, LineWidth: cfg.Printer.LineWidth},
		printing.WithRemote(remote),
		printing.WithLocal(local),
		printing.WithFamilies(manager),
		printing.WithMetrics(m),
		printing.WithLogger(log.Named("printing")),
	)

	server := api.NewServer(manager, queue, service, m, log.Named("api"),
		api.WithOrderSource(order.Source{
			Root:      cfg.Server.OrdersDir,
			DenyFiles: cfg.Server.OrdersDir == "",
			DenyURLs:  !cfg.Server.AllowOrderURLs,
			Client:    &http.Client{Timeout: cfg.Server.FetchTimeout},
		}),
	)

	manager.OnPrinterAdded(server.BroadcastPrinterAdded)
	manager.OnPrinterRemoved(server.BroadcastPrinterRemoved)

	monitor := printer.NewMonitor(manager, 2*time.Second, log.Named("monitor"))
	monitor.Start()
	defer monitor.Stop()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Run(fmt.Sprintf("0.0.0.0:%s", cfg.Server.Port))
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return err
	case sig := <-sigChan:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}

func composerOptions(rc config.ReceiptConfig) composer.Options {
	return composer.Options{
		SourceTag:  rc.SourceTag,
		BrandLines: rc.BrandLines,
		QR:         rc.QR.Directive(),
	}
}
