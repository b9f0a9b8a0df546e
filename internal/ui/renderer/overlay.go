package renderer

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/mitchelldurbincs/santorini/internal/game/core"
)

var (
	SelectionColor = color.RGBA{255, 255, 100, 255} // Yellow highlight
	TargetColor    = color.RGBA{100, 255, 100, 96}  // Semi-transparent green
	HoverColor     = color.RGBA{255, 255, 255, 64}  // Semi-transparent white
	LastMoveColor  = color.RGBA{255, 160, 60, 255}  // Orange outline
)

// Highlights marks lands on top of the board
type Highlights struct {
	Hover    *core.Coordinate
	Selected *core.Coordinate
	Targets  []core.Coordinate
	// LastMove outlines the destination and build of the previous turn
	LastMove *core.MoveCommand
}

// DrawHighlights renders h over an already drawn board
func (br *BoardRenderer) DrawHighlights(screen *ebiten.Image, h Highlights) {
	ts := float32(br.tileSize)

	if h.LastMove != nil {
		for _, c := range []core.Coordinate{h.LastMove.MoveTo, h.LastMove.BuildAt} {
			x, y := br.CellOrigin(c)
			vector.StrokeRect(screen, x+3, y+3, ts-6, ts-6, 2, LastMoveColor, false)
		}
	}
	for _, c := range h.Targets {
		x, y := br.CellOrigin(c)
		vector.DrawFilledRect(screen, x, y, ts, ts, TargetColor, false)
	}
	if h.Hover != nil && h.Hover.IsValid() {
		x, y := br.CellOrigin(*h.Hover)
		vector.DrawFilledRect(screen, x, y, ts, ts, HoverColor, false)
	}
	if h.Selected != nil {
		x, y := br.CellOrigin(*h.Selected)
		vector.StrokeRect(screen, x+1, y+1, ts-2, ts-2, 4, SelectionColor, false)
	}
}
