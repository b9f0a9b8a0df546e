package ui

import (
	"context"
	"errors"
	"io"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/santorini/internal/game"
	"github.com/mitchelldurbincs/santorini/internal/grpc/gameserver"
	"github.com/mitchelldurbincs/santorini/internal/host"
)

// UpdateReceiver is the receiving side of a WatchGame stream
type UpdateReceiver interface {
	Recv() (*gameserver.GameUpdate, error)
}

// LocalFeed builds a runner with newRunner, plays its match and sends a
// snapshot after setup and after every turn. Sends block, so a slow
// spectator slows the match down. The channel is closed when the match
// ends or ctx is done.
func LocalFeed(ctx context.Context, newRunner func(...host.Option) (*host.Runner, error), logger zerolog.Logger) <-chan game.Snapshot {
	feed := make(chan game.Snapshot, 1)
	send := func(snap game.Snapshot) {
		select {
		case feed <- snap:
		case <-ctx.Done():
		}
	}

	go func() {
		defer close(feed)
		r, err := newRunner(host.WithOnTurn(func(info host.TurnInfo) { send(info.Snapshot) }))
		if err != nil {
			logger.Error().Err(err).Msg("Failed to seat players")
			return
		}
		if err := r.Setup(ctx); err != nil {
			logger.Error().Err(err).Msg("Failed to set up match")
			return
		}
		send(r.Match().Snapshot())

		if _, err := r.Run(ctx); err != nil {
			logger.Error().Err(err).Msg("Match aborted")
		}
	}()
	return feed
}

// RemoteFeed forwards the states of a WatchGame stream. The channel is
// closed when the stream ends or after the first state of a finished game.
func RemoteFeed(ctx context.Context, stream UpdateReceiver, logger zerolog.Logger) <-chan game.Snapshot {
	feed := make(chan game.Snapshot, 16)
	go func() {
		defer close(feed)
		for {
			update, err := stream.Recv()
			if err != nil {
				if !errors.Is(err, io.EOF) && ctx.Err() == nil {
					logger.Warn().Err(err).Msg("Watch stream failed")
				}
				return
			}
			logger.Debug().Str("event", update.Event).Int("turn", update.State.Turn).Msg("Received game update")
			select {
			case feed <- update.State:
			case <-ctx.Done():
				return
			}
			if update.State.PhaseOf().IsTerminal() {
				logger.Info().Str("winner", update.State.Winner).Int("turns", update.State.Turn).Msg("Watched game finished")
				return
			}
		}
	}()
	return feed
}
