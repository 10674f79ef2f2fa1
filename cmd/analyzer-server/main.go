package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"

	"github.com/danielpatrickdp/affect-field/go-controller/internal/analysis"
	"github.com/danielpatrickdp/affect-field/go-controller/internal/config"
	"github.com/danielpatrickdp/affect-field/go-controller/internal/telemetry"
)

// #region main
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := run(cfg); err != nil {
		log.Fatalf("analyzer-server: %v", err)
	}
}

// #endregion main

// #region run
func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.Setup(ctx, cfg.ServiceName+"-analyzer", cfg.OTelEndpoint)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdown(sctx)
	}()

	// The server never proxies to another gRPC analyzer.
	var analyzer analysis.Analyzer
	switch cfg.Analyzer {
	case config.AnalyzerOpenAI:
		a, err := analysis.NewOpenAIAnalyzer(cfg.OpenAIConfig())
		if err != nil {
			return err
		}
		analyzer = a
	default:
		analyzer = analysis.NewLexiconAnalyzer(nil)
	}

	lis, err := net.Listen("tcp", cfg.GRPCListen)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.GRPCListen, err)
	}

	srv := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	analysis.RegisterServer(srv, analyzer)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[ANALYZE] serving on %s (backend=%T)", lis.Addr(), analyzer)
		errCh <- srv.Serve(lis)
	}()

	select {
	case <-ctx.Done():
		log.Printf("[ANALYZE] shutting down")
		srv.GracefulStop()
		return nil
	case err := <-errCh:
		return err
	}
}

// #endregion run
