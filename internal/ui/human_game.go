package ui

import (
	"context"
	"errors"
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/rs/zerolog"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/mitchelldurbincs/santorini/internal/agent"
	"github.com/mitchelldurbincs/santorini/internal/game"
	"github.com/mitchelldurbincs/santorini/internal/game/core"
	"github.com/mitchelldurbincs/santorini/internal/ui/input"
	"github.com/mitchelldurbincs/santorini/internal/ui/renderer"
)

// HumanGameConfig describes a match between a local player and an agent
type HumanGameConfig struct {
	Human            string
	Opponent         agent.Agent
	HumanPlacesFirst bool
	Logger           zerolog.Logger
}

type aiOutcome struct {
	placement *core.PlaceWorkersCommand
	move      *core.MoveCommand
	err       error
}

// HumanGame lets a player click through placements and turns against an
// agent. The agent thinks on its own goroutine; every match mutation
// happens in Update.
type HumanGame struct {
	match         *game.Match
	human         string
	opponent      agent.Agent
	humanFirst    bool
	boardRenderer *renderer.BoardRenderer
	inputHandler  *input.Handler
	defaultFont   font.Face
	logger        zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	// Turn management
	handlerReady bool
	aiPending    bool
	aiResults    chan aiOutcome
	turnTimer    int
	finished     bool

	// UI state
	statusMessage string
	messageTimer  int
}

func NewHumanGame(cfg HumanGameConfig) (*HumanGame, error) {
	if cfg.Opponent == nil {
		return nil, errors.New("ui: an opponent agent is required")
	}
	m := game.NewMatch(game.MatchConfig{Logger: cfg.Logger})
	if err := m.AddPlayer(cfg.Human); err != nil {
		return nil, fmt.Errorf("ui: add %q: %w", cfg.Human, err)
	}
	if err := m.AddPlayer(cfg.Opponent.Name()); err != nil {
		return nil, fmt.Errorf("ui: add %q: %w", cfg.Opponent.Name(), err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	g := &HumanGame{
		match:       m,
		human:       m.Players()[0].Name(),
		opponent:    cfg.Opponent,
		humanFirst:  cfg.HumanPlacesFirst,
		defaultFont: basicfont.Face7x13,
		logger:      cfg.Logger.With().Str("component", "HumanGame").Logger(),
		ctx:         ctx,
		cancel:      cancel,
		aiResults:   make(chan aiOutcome, 1),
	}
	g.boardRenderer = newBoardRenderer(g.defaultFont)
	g.inputHandler = input.NewHandler(g.boardRenderer.CellAt)
	return g, nil
}

// Close stops a running agent computation
func (g *HumanGame) Close() {
	g.cancel()
}

func (g *HumanGame) Update() error {
	g.inputHandler.Update()

	if g.messageTimer > 0 {
		g.messageTimer--
	}
	if msg := g.inputHandler.GetLastValidationMessage(); msg != "" {
		g.showMessage(msg, 90)
	}

	g.collectAI()
	if g.finished {
		return nil
	}

	m := g.match
	if m.GameIsOver() {
		g.finish(fmt.Sprintf("%s wins!", m.Winner().Name()))
		return nil
	}

	toAct := g.toAct()
	if m.AllWorkersPlaced() && !m.HasLegalMove(toAct) {
		g.finish(fmt.Sprintf("%s cannot move", toAct))
		return nil
	}

	if m.Player(toAct).Is(g.human) {
		g.handleHumanTurn()
	} else {
		g.handleAITurn()
	}
	return nil
}

// toAct returns the player expected to act next, including the first
// placement that NextPlayer leaves open
func (g *HumanGame) toAct() string {
	if next := g.match.NextPlayer(); next != nil {
		return next.Name()
	}
	if g.humanFirst {
		return g.human
	}
	return g.opponent.Name()
}

func (g *HumanGame) handleHumanTurn() {
	m := g.match

	if !m.AllWorkersPlaced() {
		if !g.handlerReady {
			g.inputHandler.StartPlacement(g.freeLands())
			g.handlerReady = true
		}
		if placement, ok := g.inputHandler.TakePlacement(); ok {
			g.handlerReady = false
			if err := m.PlaceWorkers(g.human, placement); err != nil {
				g.showMessage(err.Error(), 120)
			}
		}
		return
	}

	if !g.handlerReady {
		g.inputHandler.StartTurn(g.origins(g.human), m.LegalCommands(g.human))
		g.handlerReady = true
	}
	if cmd, ok := g.inputHandler.TakeMove(); ok {
		g.handlerReady = false
		if err := m.ApplyMove(cmd); err != nil {
			g.showMessage(err.Error(), 120)
			return
		}
		g.turnTimer = 0
	}
}

func (g *HumanGame) handleAITurn() {
	if g.aiPending {
		return
	}
	g.turnTimer++
	if g.turnTimer < TurnInterval() {
		return
	}
	g.turnTimer = 0
	g.aiPending = true

	snap := g.match.Snapshot()
	placing := !g.match.AllWorkersPlaced()
	go func() {
		var out aiOutcome
		if placing {
			placement, err := g.opponent.PlaceWorkers(g.ctx, snap)
			out = aiOutcome{placement: &placement, err: err}
		} else {
			move, err := g.opponent.NextMove(g.ctx, snap)
			out = aiOutcome{move: &move, err: err}
		}
		g.aiResults <- out
	}()
}

// collectAI applies a finished agent computation, if any
func (g *HumanGame) collectAI() {
	var out aiOutcome
	select {
	case out = <-g.aiResults:
	default:
		return
	}
	g.aiPending = false

	if out.err != nil {
		g.logger.Error().Err(out.err).Str("agent", g.opponent.Name()).Msg("Agent failed to act")
		g.finish(fmt.Sprintf("%s failed: %v", g.opponent.Name(), out.err))
		return
	}

	var err error
	if out.placement != nil {
		err = g.match.PlaceWorkers(g.opponent.Name(), *out.placement)
	} else {
		err = g.match.ApplyMove(*out.move)
	}
	if err != nil {
		g.logger.Warn().Err(err).Str("agent", g.opponent.Name()).Msg("Agent command rejected")
		g.showMessage(err.Error(), 120)
	}
}

func (g *HumanGame) finish(status string) {
	g.finished = true
	g.inputHandler.Stop()
	g.showMessage(status, -1)

	if err := g.opponent.Report(g.ctx, g.match.Snapshot()); err != nil {
		g.logger.Warn().Err(err).Msg("Failed to report game result")
	}
	g.logger.Info().Str("result", status).Int("turns", g.match.Turn()).Msg("Game finished")
}

func (g *HumanGame) freeLands() []core.Coordinate {
	var free []core.Coordinate
	for i, cell := range g.match.Island().Cells() {
		if cell.Occupant == nil && cell.Level < core.MaxLevel {
			free = append(free, core.CoordinateFromIndex(i))
		}
	}
	return free
}

func (g *HumanGame) origins(player string) map[int]core.Coordinate {
	origins := make(map[int]core.Coordinate, core.WorkersPerPlayer)
	for _, w := range g.match.Player(player).Workers() {
		if pos, placed := w.Position(); placed {
			origins[w.Number()] = pos
		}
	}
	return origins
}

// showMessage shows msg for duration frames, or until replaced when
// duration is negative
func (g *HumanGame) showMessage(msg string, duration int) {
	g.statusMessage = msg
	g.messageTimer = duration
}

func (g *HumanGame) Draw(screen *ebiten.Image) {
	screen.Fill(g.boardRenderer.Palette().Background)

	snap := g.match.Snapshot()
	g.boardRenderer.Draw(screen, snap)

	highlights := renderer.Highlights{LastMove: lastMove(snap), Targets: g.inputHandler.Targets()}
	if hover, ok := g.inputHandler.HoveredCell(); ok {
		highlights.Hover = &hover
	}
	if selected, ok := g.inputHandler.Selected(); ok {
		highlights.Selected = &selected
	}
	g.boardRenderer.DrawHighlights(screen, highlights)

	g.drawUI(screen, snap)
}

func (g *HumanGame) drawUI(screen *ebiten.Image, snap game.Snapshot) {
	status := ""
	if g.messageTimer != 0 {
		status = g.statusMessage
	}
	drawHeader(screen, g.defaultFont, g.boardRenderer, snap, status)

	if state := g.inputHandler.State(); state != input.SelectionNone {
		hint := fmt.Sprintf("Your turn: %s (right click or ESC to go back)", state)
		text.Draw(screen, hint, g.defaultFont, ScreenWidth()-len(hint)*7-5, 15, color.White)
	} else if g.aiPending {
		text.Draw(screen, g.opponent.Name()+" is thinking...", g.defaultFont, ScreenWidth()-160, 15, color.Gray{Y: 200})
	}
}

func (g *HumanGame) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	return ScreenWidth(), ScreenHeight()
}
