package game

import (
	"strings"
	"time"

	"github.com/mitchelldurbincs/santorini/internal/game/core"
	"github.com/mitchelldurbincs/santorini/internal/game/events"
)

// TryMoveWorker applies a turn. A false return means nothing changed.
func (m *Match) TryMoveWorker(cmd core.MoveCommand) bool {
	return m.ApplyMove(cmd) == nil
}

// ApplyMove moves a worker and builds next to its new land as one turn.
// Every check runs before the board is touched, so a rejected command
// leaves the match exactly as it was. Landing on the winning level ends the
// game and skips the build.
func (m *Match) ApplyMove(cmd core.MoveCommand) error {
	w, err := m.checkMove(cmd)
	if err != nil {
		m.logger.Debug().Err(err).Str("command", cmd.String()).Msg("Move rejected")
		m.publish(events.NewMoveRejectedEvent(m.id, cmd, err.Error()))
		return core.WrapCommandError(cmd, err)
	}

	from, _ := w.Position()
	if !w.TryMoveTo(m.island, cmd.MoveTo.X, cmd.MoveTo.Y) {
		return core.WrapCommandError(cmd, core.ErrIllegalMove)
	}

	level := w.LandLevel()
	winning := m.winCheck.IsWinningLevel(level)
	if !winning && !w.TryBuildAt(m.island, cmd.BuildAt.X, cmd.BuildAt.Y) {
		w.TryReturnTo(m.island, from)
		return core.WrapCommandError(cmd, core.ErrIllegalBuild)
	}

	m.history = append(m.history, cmd)
	m.publish(events.NewMoveAppliedEvent(m.id, cmd, from, level, len(m.history), winning))

	if winning {
		m.winner = m.Player(cmd.PlayerName)
		m.logger.Info().
			Str("winner", m.winner.Name()).
			Int("turns", len(m.history)).
			Msg("Game over")
		m.publish(events.NewGameEndedEvent(m.id, m.winner.Name(), len(m.history), time.Since(m.startedAt)))
		m.syncPhase("worker reached the winning level")
	}
	return nil
}

// checkMove validates a command against the current board without mutating it
func (m *Match) checkMove(cmd core.MoveCommand) (*core.Worker, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	switch phase := m.Phase(); {
	case phase.IsTerminal():
		return nil, core.ErrGameOver
	case !phase.CanReceiveMoves():
		return nil, core.ErrWorkersNotPlaced
	}
	p := m.Player(cmd.PlayerName)
	if p == nil {
		return nil, core.ErrUnknownPlayer
	}
	w := p.Worker(cmd.WorkerNumber)
	if w == nil {
		return nil, core.ErrUnknownWorker
	}
	if !m.island.IsUnoccupied(cmd.MoveTo.X, cmd.MoveTo.Y) {
		return nil, core.ErrLandOccupied
	}
	if !w.CanMoveTo(m.island, cmd.MoveTo) {
		return nil, core.ErrIllegalMove
	}
	dest := m.island.Land(cmd.MoveTo)
	if !m.winCheck.IsWinningLevel(dest.Level()) &&
		!m.legal.CanBuildAfterMove(m.island, w, cmd.MoveTo, cmd.BuildAt) {
		return nil, core.ErrIllegalBuild
	}
	return w, nil
}

// TryUndoCommand reverses the last applied command. See UndoCommand.
func (m *Match) TryUndoCommand(cmd core.MoveCommand, origin core.Coordinate) bool {
	return m.UndoCommand(cmd, origin) == nil
}

// UndoCommand takes back the last applied command, returning the worker to
// origin. The build is demolished first, since the build land may be the
// origin itself. Undoing a winning move clears the winner.
func (m *Match) UndoCommand(cmd core.MoveCommand, origin core.Coordinate) error {
	if len(m.history) == 0 || !sameCommand(m.history[len(m.history)-1], cmd) {
		return core.WrapCommandError(cmd, core.ErrNotInHistory)
	}
	w := m.Player(cmd.PlayerName).Worker(cmd.WorkerNumber)
	pos, placed := w.Position()
	if !placed || !pos.Equal(cmd.MoveTo) {
		return core.WrapCommandError(cmd, core.ErrNotInHistory)
	}
	if !origin.IsValid() {
		return core.WrapCommandError(cmd, core.ErrInvalidCoordinates)
	}
	if back := m.island.Land(origin); back.HasWorker() || !pos.IsAdjacentTo(origin) {
		return core.WrapCommandError(cmd, core.ErrIllegalMove)
	}

	winning := m.winner != nil
	if !winning {
		build := m.island.Land(cmd.BuildAt)
		if !build.HasTower() || build.HasWorker() {
			return core.WrapCommandError(cmd, core.ErrIllegalBuild)
		}
		build.TryDemolish()
	}
	w.TryReturnTo(m.island, origin)
	m.history = m.history[:len(m.history)-1]

	if winning {
		m.winner = nil
		m.syncPhase("winning move undone")
	}
	return nil
}

func sameCommand(a, b core.MoveCommand) bool {
	return strings.EqualFold(a.PlayerName, b.PlayerName) &&
		a.WorkerNumber == b.WorkerNumber &&
		a.MoveTo.Equal(b.MoveTo) &&
		a.BuildAt.Equal(b.BuildAt)
}
