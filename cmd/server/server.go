package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	grpc_logging "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	grpc_recovery "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"

	"github.com/KirkDiggler/gm-api/internal/ai"
	"github.com/KirkDiggler/gm-api/internal/config"
	"github.com/KirkDiggler/gm-api/internal/orchestrators/turn"
	"github.com/KirkDiggler/gm-api/internal/pkg/clock"
	"github.com/KirkDiggler/gm-api/internal/pkg/idgen"
	redisclient "github.com/KirkDiggler/gm-api/internal/redis"
	"github.com/KirkDiggler/gm-api/internal/repositories/actor"
	"github.com/KirkDiggler/gm-api/internal/repositories/judgment"
	"github.com/KirkDiggler/gm-api/internal/repositories/narrative"
	"github.com/KirkDiggler/gm-api/internal/repositories/room"
	"github.com/KirkDiggler/gm-api/internal/repositories/roundstate"
	"github.com/KirkDiggler/gm-api/internal/rounds"
	"github.com/KirkDiggler/gm-api/internal/rules"
	"github.com/KirkDiggler/gm-api/internal/services/coordinator"
	"github.com/KirkDiggler/gm-api/internal/stream"
	"github.com/KirkDiggler/gm-api/internal/tasks"
	"github.com/KirkDiggler/gm-api/internal/transport/ws"
)

var (
	httpAddr string
	grpcPort int
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the game server",
	Long:  `Start the websocket game server and the gRPC health endpoint.`,
	RunE:  runServer,
}

func init() {
	serverCmd.Flags().StringVar(&httpAddr, "http-addr", "", "websocket listen address (overrides GM_API_HTTP_ADDR)")
	serverCmd.Flags().IntVar(&grpcPort, "grpc-port", 0, "gRPC health port (overrides GM_API_GRPC_PORT)")
}

func runServer(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("received shutdown signal, gracefully stopping")
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if httpAddr != "" {
		cfg.HTTPAddr = httpAddr
	}
	if grpcPort != 0 {
		cfg.GRPCPort = grpcPort
	}

	redisClient, err := redisclient.NewClient(cfg.RedisAddr, nil)
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer func() { _ = redisClient.Close() }()

	aiClient, err := ai.NewOpenAIClient(&ai.OpenAIConfig{
		APIKey:    cfg.OpenAIAPIKey,
		Model:     cfg.OpenAIModel,
		MaxTokens: cfg.OpenAIMaxTokens,
	})
	if err != nil {
		return fmt.Errorf("failed to create openai client: %w", err)
	}

	streams, err := stream.NewRegistry(&stream.RegistryConfig{Clock: clock.New()})
	if err != nil {
		return fmt.Errorf("failed to create stream registry: %w", err)
	}
	gcStop := make(chan struct{})
	go streams.RunGC(cfg.GCInterval, gcStop)
	defer close(gcStop)

	supervisor, err := tasks.NewSupervisor(&tasks.Config{Timeout: cfg.TaskTimeout})
	if err != nil {
		return fmt.Errorf("failed to create supervisor: %w", err)
	}
	defer supervisor.StopAll()

	roomRepo := room.NewRedisRepository(redisClient)
	actorRepo := actor.NewRedisRepository(redisClient)

	orchestrator, err := turn.NewOrchestrator(&turn.Config{
		RoomRepo:       roomRepo,
		ActorRepo:      actorRepo,
		JudgmentRepo:   judgment.NewRedisRepository(redisClient),
		NarrativeRepo:  narrative.NewRedisRepository(redisClient),
		RoundStateRepo: roundstate.NewRedisRepository(redisClient),
		Judge:          aiClient,
		Narrator:       aiClient,
		Streams:        streams,
		Tracker:        rounds.NewTracker(),
		Supervisor:     supervisor,
		Roller:         rules.NewToolkitRoller(),
		JudgmentIDGen:  idgen.NewUUID("judg"),
		NarrativeIDGen: idgen.NewUUID("narr"),
		Clock:          clock.New(),
		TokenPace:      cfg.TokenPace,
	})
	if err != nil {
		return fmt.Errorf("failed to create turn orchestrator: %w", err)
	}

	hub := ws.NewHub()
	coord, err := coordinator.New(&coordinator.Config{
		Turn:        orchestrator,
		Supervisor:  supervisor,
		Broadcaster: hub,
		RoomRepo:    roomRepo,
		ActorRepo:   actorRepo,
	})
	if err != nil {
		return fmt.Errorf("failed to create coordinator: %w", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", ws.Handler(hub, coord))
	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	grpcSrv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			grpc_logging.UnaryServerInterceptor(grpc_logging.LoggerFunc(logFunc)),
			grpc_recovery.UnaryServerInterceptor(),
		),
		grpc.ChainStreamInterceptor(
			grpc_logging.StreamServerInterceptor(grpc_logging.LoggerFunc(logFunc)),
			grpc_recovery.StreamServerInterceptor(),
		),
	)
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcSrv, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	reflection.Register(grpcSrv)

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	errChan := make(chan error, 2)
	go func() {
		slog.Info("gRPC health server starting", "port", cfg.GRPCPort)
		if err := grpcSrv.Serve(lis); err != nil {
			errChan <- fmt.Errorf("grpc serve: %w", err)
		}
	}()
	go func() {
		slog.Info("websocket server starting", "addr", cfg.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("http serve: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("http shutdown failed", "error", err)
		}

		stopped := make(chan struct{})
		go func() {
			grpcSrv.GracefulStop()
			close(stopped)
		}()

		select {
		case <-shutdownCtx.Done():
			slog.Warn("graceful shutdown timeout exceeded, forcing stop")
			grpcSrv.Stop()
		case <-stopped:
			slog.Info("server stopped gracefully")
		}

		return nil
	case err := <-errChan:
		return err
	}
}

func logFunc(ctx context.Context, level grpc_logging.Level, msg string, fields ...any) {
	slog.Log(ctx, slog.Level(level), msg, fields...)
}
