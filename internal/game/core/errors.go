package core

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCoordinates   = errors.New("invalid coordinates")
	ErrEmptyPlayerName      = errors.New("player name is empty")
	ErrInvalidWorkerNumber  = errors.New("worker number must be 1 or 2")
	ErrBuildOnDestination   = errors.New("cannot build on the move destination")
	ErrDuplicatePlacement   = errors.New("workers must be placed on distinct lands")
	ErrGameOver             = errors.New("game is over")
	ErrMatchFull            = errors.New("match already has two players")
	ErrDuplicatePlayer      = errors.New("player name already registered")
	ErrUnknownPlayer        = errors.New("unknown player")
	ErrUnknownWorker        = errors.New("unknown worker")
	ErrWorkerPlaced         = errors.New("worker already placed")
	ErrNotPlacementTurn     = errors.New("not this player's placement turn")
	ErrPlayersNotRegistered = errors.New("two players must be registered")
	ErrWorkersNotPlaced     = errors.New("all workers must be placed")
	ErrLandOccupied         = errors.New("land is occupied")
	ErrIllegalMove          = errors.New("illegal move")
	ErrIllegalBuild         = errors.New("illegal build")
	ErrNotInHistory         = errors.New("command is not the last applied move")
)

// WrapCommandError adds the player, worker and target of a move to err.
func WrapCommandError(cmd MoveCommand, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("player %q worker %d: move to %s build at %s: %w",
		cmd.PlayerName, cmd.WorkerNumber, cmd.MoveTo, cmd.BuildAt, err)
}

// WrapPlacementError adds the player and worker being placed to err.
func WrapPlacementError(player string, number int, at Coordinate, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("player %q worker %d: place at %s: %w", player, number, at, err)
}
