package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/mitchelldurbincs/santorini/internal/config"
	"github.com/mitchelldurbincs/santorini/internal/grpc/gameserver"
	"github.com/mitchelldurbincs/santorini/internal/monitoring"
)

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// serverConfig maps the configured limits onto the game service
func serverConfig(cfg *config.Config, maxGames int) gameserver.Config {
	c := cfg.Server.GRPCServer
	return gameserver.Config{
		MaxGames:          maxGames,
		FinishedGameTTL:   seconds(c.FinishedGameTTL),
		AbandonedGameTTL:  seconds(c.AbandonedGameTTL),
		CleanupInterval:   seconds(c.CleanupInterval),
		IdempotencyTTL:    seconds(c.IdempotencyTTL),
		SuggestDepth:      c.SuggestDepth,
		SearchParallelism: cfg.Search.Parallelism,
	}
}

func main() {
	// Command line flags
	configPath := flag.String("config", "", "Path to config file")
	port := flag.Int("port", -1, "The server port (-1 to use config default)")
	host := flag.String("host", "", "The server host (empty to use config default)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error) (empty to use config default)")
	maxGames := flag.Int("max-games", -1, "Maximum concurrent games (-1 to use config default)")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize config")
	}
	if err := config.LoadEnvironmentConfig(os.Getenv("APP_ENV")); err != nil {
		log.Fatal().Err(err).Msg("Failed to load environment config")
	}
	cfg := config.Get()

	// Use config defaults if not overridden by flags
	if *port == -1 {
		*port = cfg.Server.GRPCServer.Port
	}
	if *host == "" {
		*host = cfg.Server.GRPCServer.Host
	}
	levelFromFlag := *logLevel != ""
	if !levelFromFlag {
		*logLevel = cfg.Server.GRPCServer.LogLevel
	}
	if *maxGames == -1 {
		*maxGames = cfg.Server.GRPCServer.MaxGames
	}

	logger := config.SetupLogging(os.Stdout, *logLevel, cfg.Logging.Format)

	logger.Info().
		Int("port", *port).
		Str("host", *host).
		Int("max_games", *maxGames).
		Int("suggest_depth", cfg.Server.GRPCServer.SuggestDepth).
		Msg("Starting gRPC game server")

	lis, err := net.Listen("tcp", fmt.Sprintf("%s:%d", *host, *port))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to listen")
	}

	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			loggingInterceptor(logger),
			recoveryInterceptor(logger),
		),
		grpc.ChainStreamInterceptor(
			streamLoggingInterceptor(logger),
			streamRecoveryInterceptor(logger),
		),
	)

	gameService := gameserver.NewServer(serverConfig(cfg, *maxGames), logger)
	gameserver.RegisterGameServiceServer(grpcServer, gameService)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(gameserver.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	monitor := monitoring.NewGoroutineMonitor(logger)
	monitor.RegisterGauge("games", gameService.ActiveGames)
	monitor.RegisterGauge("watchers", gameService.Watchers)
	monitor.Start()

	// The log level follows the config file unless a flag pinned it
	if config.ConfigFilePath() != "" {
		config.WatchConfig(func() {
			if levelFromFlag {
				return
			}
			level, err := config.ParseLevel(config.Get().Server.GRPCServer.LogLevel)
			if err != nil {
				logger.Warn().Err(err).Msg("Ignoring invalid log level from reloaded config")
				return
			}
			zerolog.SetGlobalLevel(level)
			logger.Info().Str("level", level.String()).Msg("Config reloaded")
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

		healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
		healthServer.SetServingStatus(gameserver.ServiceName, grpc_health_v1.HealthCheckResponse_NOT_SERVING)

		// Give ongoing requests time to complete
		time.Sleep(seconds(cfg.Server.GRPCServer.GracefulShutdownDelay))

		logger.Info().Msg("Gracefully stopping gRPC server")
		// Watch streams only end once their games are closed
		gameService.Close()
		grpcServer.GracefulStop()
		monitor.Stop()
		cancel()
	}()

	logger.Info().Str("address", lis.Addr().String()).Msg("gRPC server listening")

	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			logger.Fatal().Err(err).Msg("Failed to serve")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Server shutdown complete")
}
