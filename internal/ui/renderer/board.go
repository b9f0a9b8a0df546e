package renderer

import (
	"image/color"
	"strconv"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font"

	"github.com/mitchelldurbincs/santorini/internal/game"
	"github.com/mitchelldurbincs/santorini/internal/game/core"
)

// -----------------------------------------------------------------------------
// Colour definitions
// -----------------------------------------------------------------------------

// Palette holds the colours the board is drawn with
type Palette struct {
	Background color.Color
	GridLines  color.Color
	Ground     color.Color
	Dome       color.Color
	// Seats colours workers by registration order
	Seats [2]color.Color
}

// DefaultPalette is used for any colour left nil
var DefaultPalette = Palette{
	Background: color.RGBA{24, 48, 96, 255},
	GridLines:  color.RGBA{70, 110, 60, 255},
	Ground:     color.RGBA{120, 170, 90, 255},
	Dome:       color.RGBA{30, 60, 160, 255},
	Seats:      [2]color.Color{color.RGBA{50, 100, 220, 255}, color.RGBA{240, 240, 240, 255}},
}

// towerShades colours levels 1 to 3, bottom to top
var towerShades = [3]color.Color{
	color.RGBA{200, 200, 195, 255},
	color.RGBA{222, 222, 215, 255},
	color.RGBA{245, 245, 238, 255},
}

var (
	LevelTextColor  = color.RGBA{40, 40, 40, 255}
	WorkerTextColor = color.Black
	WorkerOutline   = color.RGBA{20, 20, 20, 255}
)

// RGB converts a configured [r, g, b] triple
func RGB(c [3]int) color.Color {
	return color.RGBA{R: uint8(c[0]), G: uint8(c[1]), B: uint8(c[2]), A: 255}
}

// -----------------------------------------------------------------------------
// Renderer
// -----------------------------------------------------------------------------

type BoardRenderer struct {
	tileSize         int
	offsetX, offsetY int
	defaultFont      font.Face
	palette          Palette
}

// NewBoardRenderer returns a renderer that draws the island with its top
// left corner at (offsetX, offsetY)
func NewBoardRenderer(tileSize, offsetX, offsetY int, f font.Face, palette Palette) *BoardRenderer {
	if palette.Background == nil {
		palette.Background = DefaultPalette.Background
	}
	if palette.GridLines == nil {
		palette.GridLines = DefaultPalette.GridLines
	}
	if palette.Ground == nil {
		palette.Ground = DefaultPalette.Ground
	}
	if palette.Dome == nil {
		palette.Dome = DefaultPalette.Dome
	}
	for i := range palette.Seats {
		if palette.Seats[i] == nil {
			palette.Seats[i] = DefaultPalette.Seats[i]
		}
	}
	return &BoardRenderer{tileSize: tileSize, offsetX: offsetX, offsetY: offsetY, defaultFont: f, palette: palette}
}

func (br *BoardRenderer) TileSize() int { return br.tileSize }

func (br *BoardRenderer) Palette() Palette { return br.palette }

// SeatColor returns the colour of the player registered at seat (0 or 1)
func (br *BoardRenderer) SeatColor(seat int) color.Color {
	if seat < 0 || seat >= len(br.palette.Seats) {
		return LevelTextColor
	}
	return br.palette.Seats[seat]
}

// CellAt maps a screen position to a land. ok is false off the island.
func (br *BoardRenderer) CellAt(x, y int) (core.Coordinate, bool) {
	x -= br.offsetX
	y -= br.offsetY
	if x < 0 || y < 0 {
		return core.Coordinate{}, false
	}
	c := core.NewCoordinate(x/br.tileSize, y/br.tileSize)
	return c, c.IsValid()
}

// CellOrigin returns the screen position of a land's top left corner
func (br *BoardRenderer) CellOrigin(c core.Coordinate) (float32, float32) {
	return float32(br.offsetX + c.X*br.tileSize), float32(br.offsetY + c.Y*br.tileSize)
}

// Draw renders the island of snap on screen
func (br *BoardRenderer) Draw(screen *ebiten.Image, snap game.Snapshot) {
	seats := make(map[string]int, len(snap.Players))
	for i, p := range snap.Players {
		seats[strings.ToLower(p.Name)] = i
	}

	ts := float32(br.tileSize)
	for _, cell := range snap.Cells {
		x, y := br.CellOrigin(cell.Coordinate)

		// ---------------------------------------------------------------------
		// Ground and tower
		// ---------------------------------------------------------------------
		vector.DrawFilledRect(screen, x, y, ts, ts, br.palette.Ground, false)
		for lvl := 1; lvl <= cell.Level && lvl <= len(towerShades); lvl++ {
			inset := ts * float32(lvl) / 10
			vector.DrawFilledRect(screen, x+inset, y+inset, ts-2*inset, ts-2*inset, towerShades[lvl-1], false)
		}
		if cell.Level == core.MaxLevel {
			vector.DrawFilledCircle(screen, x+ts/2, y+ts/2, ts*0.3, br.palette.Dome, true)
		}
		vector.StrokeRect(screen, x, y, ts, ts, 2, br.palette.GridLines, false)

		if br.defaultFont != nil && cell.Level > 0 && cell.Level < core.MaxLevel {
			text.Draw(screen, strconv.Itoa(cell.Level), br.defaultFont, int(x)+6, int(y)+16, LevelTextColor)
		}

		// ---------------------------------------------------------------------
		// Worker
		// ---------------------------------------------------------------------
		if !cell.Occupied {
			continue
		}
		seat, ok := seats[strings.ToLower(cell.Player)]
		if !ok {
			seat = -1
		}
		r := ts * 0.22
		vector.DrawFilledCircle(screen, x+ts/2, y+ts/2, r+2, WorkerOutline, true)
		vector.DrawFilledCircle(screen, x+ts/2, y+ts/2, r, br.SeatColor(seat), true)

		if br.defaultFont != nil {
			label := strconv.Itoa(cell.Worker)
			b := text.BoundString(br.defaultFont, label)
			textW := b.Max.X - b.Min.X
			textH := b.Max.Y - b.Min.Y
			text.Draw(screen, label, br.defaultFont,
				int(x)+(br.tileSize-textW)/2, int(y)+(br.tileSize+textH)/2, WorkerTextColor)
		}
	}
}
