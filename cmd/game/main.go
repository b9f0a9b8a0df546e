package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mitchelldurbincs/santorini/internal/config"
	"github.com/mitchelldurbincs/santorini/internal/game"
	"github.com/mitchelldurbincs/santorini/internal/host"
	"github.com/mitchelldurbincs/santorini/internal/report"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	blueAgent := flag.String("blue", "", "Agent for the blue seat: search, greedy or random (empty to use config)")
	whiteAgent := flag.String("white", "", "Agent for the white seat (empty to use config)")
	depth := flag.Int("depth", 0, "Search depth in plies (0 to use config)")
	quiet := flag.Bool("quiet", false, "Only print the final island")
	noReport := flag.Bool("no-report", false, "Do not write game reports")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize config")
	}
	cfg := config.Get()
	if *blueAgent != "" {
		cfg.Host.Players.Blue.Agent = *blueAgent
	}
	if *whiteAgent != "" {
		cfg.Host.Players.White.Agent = *whiteAgent
	}
	if *depth > 0 {
		cfg.Search.Depth = *depth
	}
	if err := config.Validate(cfg); err != nil {
		log.Fatal().Err(err).Msg("Invalid settings")
	}

	logger := config.SetupLogging(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)

	var writer report.Writer = report.Nop{}
	if !*noReport {
		fw, err := report.NewFileWriter(cfg.Host.ReportDir, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to open report file")
		}
		defer fw.Close()
		writer = fw
		logger.Info().Str("path", fw.Path()).Msg("Writing game reports")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var options []host.Option
	if !*quiet {
		options = append(options, host.WithOnTurn(func(info host.TurnInfo) {
			fmt.Printf("Turn %d: %s\n%s\n", info.Turn, info.Command, game.RenderSnapshot(info.Snapshot))
		}))
	}

	runner, err := host.NewConfiguredRunner(cfg, "", host.SeedsFromConfig(cfg, 0), writer, logger, options...)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to seat players")
	}

	result, err := runner.Run(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("Game aborted")
	}

	fmt.Printf("Final island:\n%s\n", game.RenderSnapshot(result.Snapshot))
	switch {
	case result.Winner != "":
		fmt.Printf("%s wins after %d turns (%s)\n", result.Winner, result.Turns, result.Duration.Round(time.Millisecond))
	case result.Stalled:
		fmt.Printf("%s cannot move after %d turns, no winner\n", result.StalledPlayer, result.Turns)
	case result.TurnLimit:
		fmt.Printf("Turn limit of %d reached, no winner\n", cfg.Host.MaxTurns)
	}
}
