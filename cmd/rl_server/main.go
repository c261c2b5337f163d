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
	"google.golang.org/grpc/reflection"

	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/config"
	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/experience"
	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/experiment"
	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/game/events"
	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/game/events/subscribers"
	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/grpc/experimentserver"
	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/monitoring"
)

func main() {
	// Command line flags
	configPath := flag.String("config", "", "Path to config file")
	port := flag.Int("port", -1, "The server port (-1 to use config default)")
	host := flag.String("host", "", "The server host (empty to use config default)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error) (empty to use config default)")
	maxConcurrent := flag.Int("max-concurrent", -1, "Maximum concurrent experiments (-1 to use config default)")
	enableReflection := flag.Bool("enable-reflection", false, "Enable gRPC reflection for debugging")
	watchConfig := flag.Bool("watch-config", false, "Reload request defaults when the config file changes")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize config")
	}

	cfg := config.Get()
	srvCfg := cfg.Server.RLServer

	// Use config defaults if not overridden by flags
	if *port == -1 {
		*port = srvCfg.Port
	}
	if *host == "" {
		*host = srvCfg.Host
	}
	if *logLevel == "" {
		*logLevel = srvCfg.LogLevel
	}
	if *maxConcurrent == -1 {
		*maxConcurrent = srvCfg.MaxConcurrentExperiments
	}
	if !*enableReflection {
		*enableReflection = srvCfg.EnableReflection
	}

	setupLogging(*logLevel, srvCfg.LogFormat)

	log.Info().
		Int("port", *port).
		Str("host", *host).
		Int("max_concurrent", *maxConcurrent).
		Str("reports", cfg.Reports.Type).
		Msg("Starting gRPC experiment server")

	if *watchConfig && config.ConfigFilePath() != "" {
		config.WatchConfig(func(name string, err error) {
			if err != nil {
				log.Warn().Err(err).Str("file", name).Msg("Ignoring invalid config change")
				return
			}
			log.Info().Str("file", name).Msg("Config reloaded")
		})
	}

	reportLayer, err := experience.NewPersistenceLayer(experience.PersistenceConfig{
		Type:        experience.PersistenceType(cfg.Reports.Type),
		BaseDir:     cfg.Reports.BaseDir,
		MaxFileSize: cfg.Reports.MaxFileSize,
	}, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open report storage")
	}
	defer reportLayer.Close()

	bus := events.NewEventBus(events.WithLogger(log.Logger))
	bus.Subscribe(subscribers.NewLoggerSubscriber("event_logger", log.Logger, zerolog.DebugLevel))

	monitor := monitoring.NewExperimentMonitor(time.Duration(srvCfg.MonitorInterval)*time.Second, log.Logger)
	monitor.Start()
	defer monitor.Stop()

	runnerOpts := experiment.Options{
		MaxConcurrent: *maxConcurrent,
		Publisher:     bus,
		Monitor:       monitor,
		Logger:        log.Logger,
	}
	serverOpts := experimentserver.Options{Logger: log.Logger}
	if cfg.Reports.Type == string(experience.PersistenceTypeFile) {
		sink := experiment.NewPersistenceSink(reportLayer)
		runnerOpts.Reports = sink
		serverOpts.Reports = sink
	}
	runner := experiment.NewRunner(runnerOpts)

	lis, err := net.Listen("tcp", fmt.Sprintf("%s:%d", *host, *port))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to listen")
	}

	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			experimentserver.LoggingInterceptor(log.Logger),
			experimentserver.RecoveryInterceptor(log.Logger),
		),
	)
	experimentserver.RegisterExperimentServiceServer(grpcServer, experimentserver.NewServer(runner, serverOpts))

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(experimentserver.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	if *enableReflection {
		reflection.Register(grpcServer)
		log.Info().Msg("gRPC reflection enabled")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

		healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
		healthServer.SetServingStatus(experimentserver.ServiceName, grpc_health_v1.HealthCheckResponse_NOT_SERVING)

		// Give load balancers time to notice before refusing calls
		time.Sleep(time.Duration(srvCfg.GracefulShutdownDelay) * time.Second)

		log.Info().Msg("Gracefully stopping gRPC server")
		grpcServer.GracefulStop()
		cancel()
	}()

	log.Info().Str("address", lis.Addr().String()).Msg("gRPC server listening")

	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatal().Err(err).Msg("Failed to serve")
		}
	}()

	<-ctx.Done()
	m := monitor.GetMetrics()
	log.Info().
		Int("completed", m.Completed).
		Int("failed", m.Failed).
		Msg("Server shutdown complete")
}

func setupLogging(level, format string) {
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	if format == "json" || os.Getenv("APP_ENV") == "production" {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	})
}
