package game

import (
	"strconv"
	"strings"

	"github.com/mitchelldurbincs/santorini/internal/game/core"
)

// ANSI color codes
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorPurple = "\033[35m"
	ColorCyan   = "\033[36m"
	ColorWhite  = "\033[37m"
	ColorGray   = "\033[90m"
)

// seat colors, first registered player first
var playerColors = []string{ColorBlue, ColorRed}

// levelSymbols index by tower level; level 4 is a dome
var levelSymbols = [core.MaxLevel + 1]string{"·", "1", "2", "3", "▲"}

// Render draws the island with tower levels and workers.
func (m *Match) Render() string {
	return RenderSnapshot(m.Snapshot())
}

// RenderSnapshot draws a snapshot the way Render draws a live match. Each
// cell shows the tower level followed by the worker standing on it, if any:
// "2A" is player A's worker on a level-2 tower.
func RenderSnapshot(snap Snapshot) string {
	seats := make(map[string]int, len(snap.Players))
	for i, p := range snap.Players {
		seats[strings.ToLower(p.Name)] = i
	}

	var sb strings.Builder
	sb.Grow((core.BoardSize*16 + 8) * (core.BoardSize + 4))

	sb.WriteString("   ")
	for x := 0; x < core.BoardSize; x++ {
		sb.WriteString(" ")
		sb.WriteString(strconv.Itoa(x))
		sb.WriteString(" ")
	}
	sb.WriteString("\n")

	for y := 0; y < core.BoardSize; y++ {
		sb.WriteString(strconv.Itoa(y))
		sb.WriteString("  ")
		for x := 0; x < core.BoardSize; x++ {
			cell, ok := snap.Cell(core.NewCoordinate(x, y))
			if !ok {
				sb.WriteString(" ? ")
				continue
			}
			writeCell(&sb, cell, seats)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	for i, p := range snap.Players {
		sb.WriteString(getPlayerColor(i))
		sb.WriteByte(seatSymbol(i))
		sb.WriteString(ColorReset)
		sb.WriteString("=")
		sb.WriteString(p.Name)
		sb.WriteString(" ")
	}
	sb.WriteString("·=ground 1-3=levels ▲=dome\n")
	return sb.String()
}

func writeCell(sb *strings.Builder, cell CellSnapshot, seats map[string]int) {
	level := cell.Level
	if level < 0 || level > core.MaxLevel {
		level = 0
	}
	if !cell.Occupied {
		if level == core.MaxLevel {
			sb.WriteString(ColorGray)
		} else {
			sb.WriteString(ColorWhite)
		}
		sb.WriteString(" ")
		sb.WriteString(levelSymbols[level])
		sb.WriteString(" ")
		sb.WriteString(ColorReset)
		return
	}

	seat, ok := seats[strings.ToLower(cell.Player)]
	if !ok {
		seat = -1
	}
	sb.WriteString(getPlayerColor(seat))
	sb.WriteString(levelSymbols[level])
	sb.WriteByte(seatSymbol(seat))
	sb.WriteString(strconv.Itoa(cell.Worker))
	sb.WriteString(ColorReset)
}

func seatSymbol(seat int) byte {
	const symbols = "AB"
	if seat < 0 || seat >= len(symbols) {
		return '?'
	}
	return symbols[seat]
}

// getPlayerColor returns the color for the given seat
func getPlayerColor(seat int) string {
	if seat < 0 || seat >= len(playerColors) {
		return ColorWhite
	}
	return playerColors[seat]
}
