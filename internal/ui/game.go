package ui

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/mitchelldurbincs/santorini/internal/config"
	"github.com/mitchelldurbincs/santorini/internal/game"
	"github.com/mitchelldurbincs/santorini/internal/game/core"
	"github.com/mitchelldurbincs/santorini/internal/ui/renderer"
)

// UI configuration functions
func ScreenWidth() int {
	return config.Get().UI.Window.Width
}

func ScreenHeight() int {
	return config.Get().UI.Window.Height
}

func TileSize() int {
	return config.Get().UI.Game.TileSize
}

func TurnInterval() int {
	return config.Get().UI.Game.TurnInterval
}

// HeaderHeight is the space above the island left for text
func HeaderHeight() int {
	h := ScreenHeight() - core.BoardSize*TileSize()
	if h < 0 {
		return 0
	}
	return h
}

// NewPalette builds the board palette from the configured colours
func NewPalette(colors config.UIColorsConfig) renderer.Palette {
	return renderer.Palette{
		Background: renderer.RGB(colors.Background),
		GridLines:  renderer.RGB(colors.GridLines),
		Dome:       renderer.RGB(colors.Dome),
		Seats:      [2]color.Color{renderer.RGB(colors.Blue), renderer.RGB(colors.White)},
	}
}

func newBoardRenderer(f font.Face) *renderer.BoardRenderer {
	return renderer.NewBoardRenderer(TileSize(), 0, HeaderHeight(), f, NewPalette(config.Get().UI.Colors))
}

// Spectator shows a match from the snapshots it receives. Queued snapshots
// are shown one per turn interval so fast matches stay watchable.
type Spectator struct {
	updates       <-chan game.Snapshot
	boardRenderer *renderer.BoardRenderer
	defaultFont   font.Face

	latest   game.Snapshot
	hasState bool
	closed   bool

	turnTimer int
}

// NewSpectator creates a new Ebitengine game that draws the snapshots sent
// on updates. Closing updates marks the feed as ended.
func NewSpectator(updates <-chan game.Snapshot) *Spectator {
	g := &Spectator{
		updates:     updates,
		defaultFont: basicfont.Face7x13,
	}
	g.boardRenderer = newBoardRenderer(g.defaultFont)
	return g
}

// Update takes at most one snapshot off the feed per turn interval
func (g *Spectator) Update() error {
	g.turnTimer++
	if g.closed || (g.hasState && g.turnTimer < TurnInterval()) {
		return nil
	}

	select {
	case snap, ok := <-g.updates:
		if !ok {
			g.closed = true
			return nil
		}
		g.latest = snap
		g.hasState = true
		g.turnTimer = 0
	default:
	}
	return nil
}

// Draw renders the game screen.
func (g *Spectator) Draw(screen *ebiten.Image) {
	screen.Fill(g.boardRenderer.Palette().Background)

	if !g.hasState {
		text.Draw(screen, "Waiting for the game to start...", g.defaultFont, 5, 20, color.White)
		return
	}

	g.boardRenderer.Draw(screen, g.latest)
	g.boardRenderer.DrawHighlights(screen, renderer.Highlights{LastMove: lastMove(g.latest)})

	status := ""
	if g.closed && !g.latest.PhaseOf().IsTerminal() {
		status = "Feed ended"
	}
	drawHeader(screen, g.defaultFont, g.boardRenderer, g.latest, status)
}

// Layout defines the Ebitengine screen size.
func (g *Spectator) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	return ScreenWidth(), ScreenHeight()
}

func lastMove(snap game.Snapshot) *core.MoveCommand {
	if len(snap.History) == 0 {
		return nil
	}
	cmd := snap.History[len(snap.History)-1]
	return &cmd
}

// drawHeader prints the turn, both players in their seat colours and the
// outcome above the island
func drawHeader(screen *ebiten.Image, f font.Face, br *renderer.BoardRenderer, snap game.Snapshot, status string) {
	text.Draw(screen, fmt.Sprintf("Turn: %d  Phase: %s", snap.Turn, snap.Phase), f, 5, 15, color.White)

	x := 5
	for seat, p := range snap.Players {
		label := p.Name
		if snap.NextPlayer != "" && p.Name == snap.NextPlayer {
			label = "> " + label
		}
		text.Draw(screen, label, f, x, 33, br.SeatColor(seat))
		x += 12 + len(label)*7
	}

	switch {
	case snap.Winner != "":
		text.Draw(screen, fmt.Sprintf("%s wins!", snap.Winner), f, 5, 51, color.RGBA{255, 220, 80, 255})
	case status != "":
		text.Draw(screen, status, f, 5, 51, color.Gray{Y: 200})
	}
}
