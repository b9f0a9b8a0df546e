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
	"github.com/mitchelldurbincs/santorini/internal/host"
	"github.com/mitchelldurbincs/santorini/internal/report"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	games := flag.Int("games", 20, "Number of matches to play")
	parallel := flag.Int("parallel", 4, "Matches played at once")
	blueAgent := flag.String("blue", "", "Agent for the blue seat (empty to use config)")
	whiteAgent := flag.String("white", "", "Agent for the white seat (empty to use config)")
	replay := flag.String("replay", "", "Summarize a report file instead of playing")
	gameID := flag.String("game", "", "Only summarize this game with -replay")
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
	if err := config.Validate(cfg); err != nil {
		log.Fatal().Err(err).Msg("Invalid settings")
	}

	logger := config.SetupLogging(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)

	if *replay != "" {
		reports, err := report.Read(*replay, *gameID)
		if err != nil {
			logger.Fatal().Err(err).Str("path", *replay).Msg("Failed to read reports")
		}
		printSummary(host.SummarizeReports(reports, cfg.Host.MaxTurns))
		return
	}

	fw, err := report.NewFileWriter(cfg.Host.ReportDir, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open report file")
	}
	defer fw.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info().
		Int("games", *games).
		Int("parallel", *parallel).
		Str("blue", cfg.Host.Players.Blue.Agent).
		Str("white", cfg.Host.Players.White.Agent).
		Msg("Starting self-play")

	summary, err := host.PlayMany(ctx, *games, *parallel, func(i int) (*host.Runner, error) {
		return host.NewConfiguredRunner(cfg, "", host.SeedsFromConfig(cfg, i), fw, logger)
	})
	if err != nil {
		logger.Error().Err(err).Int("completed", summary.Games).Msg("Self-play stopped early")
	}

	fmt.Printf("Played in %s\n", summary.Duration.Round(time.Millisecond))
	printSummary(summary)
	fmt.Printf("%d reports written to %s\n", fw.Stats().TotalWritten, fw.Path())
	if err != nil {
		os.Exit(1)
	}
}

func printSummary(summary host.Summary) {
	fmt.Printf("%d games, %.1f turns on average\n", summary.Games, summary.AverageTurns())
	for _, name := range summary.Players() {
		fmt.Printf("  %-10s %d wins\n", name, summary.Wins[name])
	}
	if summary.Stalls > 0 {
		fmt.Printf("  stalled    %d\n", summary.Stalls)
	}
	if summary.TurnLimit > 0 {
		fmt.Printf("  turn limit %d\n", summary.TurnLimit)
	}
}
