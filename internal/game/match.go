package game

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/santorini/internal/game/core"
	"github.com/mitchelldurbincs/santorini/internal/game/events"
	"github.com/mitchelldurbincs/santorini/internal/game/rules"
	"github.com/mitchelldurbincs/santorini/internal/game/states"
)

const maxPlayers = 2

// MatchConfig holds the configuration for a new match
type MatchConfig struct {
	GameID   string
	Logger   zerolog.Logger
	EventBus *events.EventBus // optional
}

// Match owns the island, the players and the move history of one game.
// It is not safe for concurrent use; callers serialize commands.
type Match struct {
	id      string
	island  *core.Island
	players []*Player
	history []core.MoveCommand
	winner  *Player

	// placement counter: slots 0-1 belong to the first placer, 2-3 to the other
	placed      int
	firstPlacer int

	startedAt time.Time
	logger    zerolog.Logger
	eventBus  *events.EventBus
	machine   *states.StateMachine
	legal     *rules.LegalMoveCalculator
	winCheck  *rules.WinConditionChecker
}

// NewMatch creates an empty match in the registering phase
func NewMatch(cfg MatchConfig) *Match {
	if cfg.GameID == "" {
		cfg.GameID = uuid.NewString()
	}
	logger := cfg.Logger.With().Str("component", "Match").Str("game_id", cfg.GameID).Logger()

	m := &Match{
		id:          cfg.GameID,
		island:      core.NewIsland(),
		firstPlacer: -1,
		startedAt:   time.Now(),
		logger:      logger,
		eventBus:    cfg.EventBus,
		machine:     states.NewStateMachine(cfg.GameID, cfg.EventBus, logger),
		legal:       rules.NewLegalMoveCalculator(),
		winCheck:    rules.NewWinConditionChecker(logger),
	}
	m.publish(events.NewGameCreatedEvent(m.id))
	return m
}

func (m *Match) ID() string { return m.id }

// Island exposes the board. Mutating it directly bypasses the match rules.
func (m *Match) Island() *core.Island { return m.island }

// Phase returns the phase derived from the match counts
func (m *Match) Phase() states.GamePhase {
	return states.DerivePhase(len(m.players), m.placed, m.winner != nil)
}

// PhaseHistory returns the observed phase transitions
func (m *Match) PhaseHistory() []states.Transition {
	return m.machine.GetHistory()
}

// TryAddPlayer registers a player. See AddPlayer for the rejection reasons.
func (m *Match) TryAddPlayer(name string) bool {
	return m.AddPlayer(name) == nil
}

// AddPlayer registers a player by name. At most two players may join and
// names are unique regardless of case.
func (m *Match) AddPlayer(name string) error {
	if name == "" {
		return core.ErrEmptyPlayerName
	}
	if !m.Phase().CanAddPlayers() {
		return core.ErrMatchFull
	}
	if m.Player(name) != nil {
		return core.ErrDuplicatePlayer
	}

	m.players = append(m.players, NewPlayer(name))
	seat := len(m.players)

	m.logger.Debug().Str("player", name).Int("seat", seat).Msg("Player joined")
	m.publish(events.NewPlayerJoinedEvent(m.id, name, seat))
	m.syncPhase("players registered")
	return nil
}

// TryAddWorker places one worker. See AddWorker for the rejection reasons.
func (m *Match) TryAddWorker(player string, number, x, y int) bool {
	return m.AddWorker(player, number, x, y) == nil
}

// AddWorker puts a worker on the island. Both players must be registered,
// the worker must be unplaced and it must be the player's placement turn.
func (m *Match) AddWorker(player string, number, x, y int) error {
	at := core.NewCoordinate(x, y)
	p, w, err := m.checkPlacement(player, number, at)
	if err != nil {
		return core.WrapPlacementError(player, number, at, err)
	}
	if !m.island.TryAddPiece(w, x, y) {
		return core.WrapPlacementError(player, number, at, core.ErrLandOccupied)
	}
	m.recordPlacement(p, w, at)
	return nil
}

// TryPlaceWorkers places both of a player's workers, or neither.
func (m *Match) TryPlaceWorkers(player string, cmd core.PlaceWorkersCommand) bool {
	return m.PlaceWorkers(player, cmd) == nil
}

// PlaceWorkers places both of a player's workers, or neither.
func (m *Match) PlaceWorkers(player string, cmd core.PlaceWorkersCommand) error {
	if err := cmd.Validate(); err != nil {
		return core.WrapPlacementError(player, 1, cmd.WorkerOne, err)
	}
	workers := make([]*core.Worker, 0, core.WorkersPerPlayer)
	for number := 1; number <= core.WorkersPerPlayer; number++ {
		at := cmd.Coordinate(number)
		_, w, err := m.checkPlacement(player, number, at)
		if err == nil && !m.island.IsUnoccupied(at.X, at.Y) {
			err = core.ErrLandOccupied
		}
		if err != nil {
			return core.WrapPlacementError(player, number, at, err)
		}
		workers = append(workers, w)
	}
	for _, w := range workers {
		at := cmd.Coordinate(w.Number())
		if err := m.AddWorker(player, w.Number(), at.X, at.Y); err != nil {
			return err
		}
	}
	return nil
}

func (m *Match) checkPlacement(player string, number int, at core.Coordinate) (*Player, *core.Worker, error) {
	phase := m.Phase()
	if phase.CanAddPlayers() {
		return nil, nil, core.ErrPlayersNotRegistered
	}
	p := m.Player(player)
	if p == nil {
		return nil, nil, core.ErrUnknownPlayer
	}
	w := p.Worker(number)
	if w == nil {
		return nil, nil, core.ErrUnknownWorker
	}
	if w.IsPlaced() || !phase.CanPlaceWorkers() {
		return nil, nil, core.ErrWorkerPlaced
	}
	if owner := m.placementOwner(); owner != nil && owner != p {
		return nil, nil, core.ErrNotPlacementTurn
	}
	if !at.IsValid() {
		return nil, nil, core.ErrInvalidCoordinates
	}
	return p, w, nil
}

// placementOwner returns who places next, or nil before the first placement
func (m *Match) placementOwner() *Player {
	if m.firstPlacer < 0 || m.placed >= maxPlayers*core.WorkersPerPlayer {
		return nil
	}
	if m.placed < core.WorkersPerPlayer {
		return m.players[m.firstPlacer]
	}
	return m.players[1-m.firstPlacer]
}

func (m *Match) recordPlacement(p *Player, w *core.Worker, at core.Coordinate) {
	if m.firstPlacer < 0 {
		m.firstPlacer = m.seatOf(p)
	}
	m.placed++

	m.logger.Debug().
		Str("worker", w.ID().String()).
		Stringer("at", at).
		Int("placed", m.placed).
		Msg("Worker placed")
	m.publish(events.NewWorkerPlacedEvent(m.id, w.ID(), at, m.placed))
	m.syncPhase("workers placed")
}

// PlayersRegistered reports whether both players have joined
func (m *Match) PlayersRegistered() bool {
	return len(m.players) == maxPlayers
}

// AllWorkersPlaced reports whether all four workers are on the island
func (m *Match) AllWorkersPlaced() bool {
	return m.placed == maxPlayers*core.WorkersPerPlayer
}

// PlacedWorkers returns the placement counter
func (m *Match) PlacedWorkers() int {
	return m.placed
}

// GameIsOver reports whether a winner exists
func (m *Match) GameIsOver() bool {
	return m.winner != nil
}

// Winner returns the winning player, or nil
func (m *Match) Winner() *Player {
	return m.winner
}

// Players returns the players in registration order
func (m *Match) Players() []*Player {
	out := make([]*Player, len(m.players))
	copy(out, m.players)
	return out
}

// Player looks a player up by name, ignoring case
func (m *Match) Player(name string) *Player {
	for _, p := range m.players {
		if p.Is(name) {
			return p
		}
	}
	return nil
}

// Opponent returns the other registered player, or nil
func (m *Match) Opponent(name string) *Player {
	if !m.PlayersRegistered() || m.Player(name) == nil {
		return nil
	}
	for _, p := range m.players {
		if !p.Is(name) {
			return p
		}
	}
	return nil
}

// FirstPlacer returns the player who placed the first worker, or nil
func (m *Match) FirstPlacer() *Player {
	if m.firstPlacer < 0 {
		return nil
	}
	return m.players[m.firstPlacer]
}

// NextPlayer returns who acts next: the placement owner while placing, the
// first placer for the opening move, then whoever did not move last. It is
// nil before placement starts and after the game ends.
func (m *Match) NextPlayer() *Player {
	if m.winner != nil || m.firstPlacer < 0 {
		return nil
	}
	if !m.AllWorkersPlaced() {
		return m.placementOwner()
	}
	if len(m.history) == 0 {
		return m.players[m.firstPlacer]
	}
	return m.Opponent(m.history[len(m.history)-1].PlayerName)
}

// History returns a copy of the accepted commands in order
func (m *Match) History() []core.MoveCommand {
	out := make([]core.MoveCommand, len(m.history))
	copy(out, m.history)
	return out
}

// Turn returns the number of accepted moves
func (m *Match) Turn() int {
	return len(m.history)
}

// LegalCommands returns every command player could submit now
func (m *Match) LegalCommands(player string) []core.MoveCommand {
	if !m.Phase().CanReceiveMoves() {
		return nil
	}
	return m.legal.CommandsFor(m.island, player)
}

// HasLegalMove reports whether player can complete a turn
func (m *Match) HasLegalMove(player string) bool {
	if !m.Phase().CanReceiveMoves() {
		return false
	}
	return m.legal.HasLegalMove(m.island, player)
}

func (m *Match) seatOf(p *Player) int {
	for i, candidate := range m.players {
		if candidate == p {
			return i
		}
	}
	return -1
}

func (m *Match) syncPhase(reason string) {
	if err := m.machine.Sync(m.Phase(), reason); err != nil {
		m.logger.Warn().Err(err).Msg("Unexpected phase change")
	}
}

func (m *Match) publish(event events.Event) {
	if m.eventBus != nil {
		m.eventBus.Publish(event)
	}
}

// IsRejection reports whether err is a gameplay rejection produced by the match
func IsRejection(err error) bool {
	for _, target := range rejections {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

var rejections = []error{
	core.ErrInvalidCoordinates, core.ErrEmptyPlayerName, core.ErrInvalidWorkerNumber,
	core.ErrBuildOnDestination, core.ErrDuplicatePlacement, core.ErrGameOver,
	core.ErrMatchFull, core.ErrDuplicatePlayer, core.ErrUnknownPlayer,
	core.ErrUnknownWorker, core.ErrWorkerPlaced, core.ErrNotPlacementTurn,
	core.ErrPlayersNotRegistered, core.ErrWorkersNotPlaced, core.ErrLandOccupied,
	core.ErrIllegalMove, core.ErrIllegalBuild, core.ErrNotInHistory,
}
