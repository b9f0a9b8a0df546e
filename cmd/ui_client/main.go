package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/mitchelldurbincs/santorini/internal/config"
	"github.com/mitchelldurbincs/santorini/internal/game"
	"github.com/mitchelldurbincs/santorini/internal/game/states"
	"github.com/mitchelldurbincs/santorini/internal/grpc/gameserver"
	"github.com/mitchelldurbincs/santorini/internal/host"
	"github.com/mitchelldurbincs/santorini/internal/report"
	"github.com/mitchelldurbincs/santorini/internal/ui"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	mode := flag.String("mode", "play", "play against an agent, spectate a local match or watch a remote game")
	name := flag.String("name", "You", "Your player name in play mode")
	first := flag.Bool("first", true, "Place and move first in play mode")
	addr := flag.String("addr", "localhost:50051", "Game server address in watch mode")
	gameID := flag.String("game", "", "Game to watch (empty picks the first running game)")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize config")
	}
	cfg := config.Get()
	logger := config.SetupLogging(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var g ebiten.Game
	switch *mode {
	case "play":
		opponent, err := host.NewSeat(cfg, cfg.Host.Players.White, host.SeedsFromConfig(cfg, 0).Search, report.Nop{}, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to create opponent")
		}
		hg, err := ui.NewHumanGame(ui.HumanGameConfig{
			Human:            *name,
			Opponent:         opponent,
			HumanPlacesFirst: *first,
			Logger:           logger,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to start game")
		}
		defer hg.Close()
		g = hg

	case "spectate":
		seeds := host.SeedsFromConfig(cfg, 0)
		feed := ui.LocalFeed(ctx, func(options ...host.Option) (*host.Runner, error) {
			return host.NewConfiguredRunner(cfg, "", seeds, report.Nop{}, logger, options...)
		}, logger)
		g = ui.NewSpectator(feed)

	case "watch":
		feed, closeConn, err := watchRemote(ctx, *addr, *gameID, logger)
		if err != nil {
			logger.Fatal().Err(err).Str("addr", *addr).Msg("Failed to watch game")
		}
		defer closeConn()
		g = ui.NewSpectator(feed)

	default:
		logger.Fatal().Str("mode", *mode).Msg("Unknown mode, use play, spectate or watch")
	}

	ebiten.SetWindowSize(ui.ScreenWidth(), ui.ScreenHeight())
	ebiten.SetWindowTitle(cfg.UI.Window.Title)

	if err := ebiten.RunGame(g); err != nil {
		logger.Fatal().Err(err).Msg("UI stopped")
	}
}

// watchRemote subscribes to a game on the server at addr. An empty id
// picks the first game that is not over.
func watchRemote(ctx context.Context, addr, id string, logger zerolog.Logger) (<-chan game.Snapshot, func(), error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, nil, err
	}
	client := gameserver.NewClient(conn)

	if id == "" {
		listCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		games, err := client.ListGames(listCtx)
		cancel()
		if err != nil {
			conn.Close()
			return nil, nil, err
		}
		for _, info := range games.Games {
			if phase, err := states.ParsePhase(info.Phase); err == nil && !phase.IsTerminal() {
				id = info.GameID
				break
			}
		}
	}

	stream, err := client.WatchGame(ctx, &gameserver.WatchGameRequest{GameID: id})
	if err != nil {
		conn.Close()
		return nil, nil, err
	}
	logger.Info().Str("game_id", id).Str("addr", addr).Msg("Watching game")
	return ui.RemoteFeed(ctx, stream, logger), func() { conn.Close() }, nil
}
