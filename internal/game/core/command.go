package core

import "fmt"

// MoveCommand is one turn: move a worker, then build next to its new land.
type MoveCommand struct {
	PlayerName   string     `json:"playerName"`
	WorkerNumber int        `json:"workerNumber"`
	MoveTo       Coordinate `json:"moveTo"`
	BuildAt      Coordinate `json:"buildAt"`
}

// NewMoveCommand creates a move command. Validity is checked separately.
func NewMoveCommand(player string, worker int, moveTo, buildAt Coordinate) MoveCommand {
	return MoveCommand{
		PlayerName:   player,
		WorkerNumber: worker,
		MoveTo:       moveTo,
		BuildAt:      buildAt,
	}
}

// Validate checks the command's own fields. It never looks at the board.
func (m MoveCommand) Validate() error {
	if m.PlayerName == "" {
		return ErrEmptyPlayerName
	}
	if m.WorkerNumber < 1 || m.WorkerNumber > WorkersPerPlayer {
		return ErrInvalidWorkerNumber
	}
	if !m.MoveTo.IsValid() || !m.BuildAt.IsValid() {
		return ErrInvalidCoordinates
	}
	if m.MoveTo.Equal(m.BuildAt) {
		return ErrBuildOnDestination
	}
	return nil
}

// IsValid reports whether Validate succeeds
func (m MoveCommand) IsValid() bool {
	return m.Validate() == nil
}

func (m MoveCommand) String() string {
	return fmt.Sprintf("%s#%d move %s build %s", m.PlayerName, m.WorkerNumber, m.MoveTo, m.BuildAt)
}

// PlaceWorkersCommand carries the starting lands of a player's two workers
type PlaceWorkersCommand struct {
	WorkerOne Coordinate `json:"workerOne"`
	WorkerTwo Coordinate `json:"workerTwo"`
}

// Validate requires both coordinates on the island and distinct
func (p PlaceWorkersCommand) Validate() error {
	if !p.WorkerOne.IsValid() || !p.WorkerTwo.IsValid() {
		return ErrInvalidCoordinates
	}
	if p.WorkerOne.Equal(p.WorkerTwo) {
		return ErrDuplicatePlacement
	}
	return nil
}

// IsValid reports whether Validate succeeds
func (p PlaceWorkersCommand) IsValid() bool {
	return p.Validate() == nil
}

// Coordinate returns the placement for worker 1 or 2
func (p PlaceWorkersCommand) Coordinate(worker int) Coordinate {
	if worker == 2 {
		return p.WorkerTwo
	}
	return p.WorkerOne
}
