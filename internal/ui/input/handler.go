package input

import (
	"github.com/mitchelldurbincs/santorini/internal/game/core"
)

type SelectionState int

const (
	SelectionNone SelectionState = iota
	// SelectionPlacing collects the two starting lands of the player's workers
	SelectionPlacing
	// SelectionWorker waits for one of the player's workers to be clicked
	SelectionWorker
	// SelectionMove waits for the destination of the selected worker
	SelectionMove
	// SelectionBuild waits for the land to build on after the move
	SelectionBuild
)

func (s SelectionState) String() string {
	switch s {
	case SelectionPlacing:
		return "place workers"
	case SelectionWorker:
		return "select a worker"
	case SelectionMove:
		return "select a destination"
	case SelectionBuild:
		return "select a land to build on"
	default:
		return "waiting"
	}
}

// Handler turns clicks on the island into placement and move commands
type Handler struct {
	// Mouse state
	mouseX, mouseY int
	cellAt         func(x, y int) (core.Coordinate, bool)

	selectionState SelectionState

	// Placement state
	free      map[core.Coordinate]bool
	firstLand *core.Coordinate

	// Turn state
	origins map[int]core.Coordinate
	legal   []core.MoveCommand
	worker  int
	moveTo  core.Coordinate

	pendingMove      *core.MoveCommand
	pendingPlacement *core.PlaceWorkersCommand

	lastValidationMessage string
}

// NewHandler creates a handler. cellAt maps a screen position to a land.
func NewHandler(cellAt func(x, y int) (core.Coordinate, bool)) *Handler {
	return &Handler{cellAt: cellAt, selectionState: SelectionNone}
}

// Update polls the mouse and keyboard. Call it once per frame.
func (h *Handler) Update() {
	h.mouseX, h.mouseY = GetCursorPosition()

	if IsLeftClickJustPressed() {
		if at, ok := h.cellAt(h.mouseX, h.mouseY); ok {
			h.Click(at)
		}
	}
	if IsRightClickJustPressed() || IsEscapeJustPressed() {
		h.Cancel()
	}
}

// StartPlacement lets the player pick two of the free lands
func (h *Handler) StartPlacement(free []core.Coordinate) {
	h.reset()
	h.free = make(map[core.Coordinate]bool, len(free))
	for _, c := range free {
		h.free[c] = true
	}
	h.selectionState = SelectionPlacing
}

// StartTurn lets the player choose among legal. origins maps each worker
// number to the land it stands on.
func (h *Handler) StartTurn(origins map[int]core.Coordinate, legal []core.MoveCommand) {
	h.reset()
	h.origins = origins
	h.legal = legal
	h.selectionState = SelectionWorker
}

// Stop ends the player's turn without a command
func (h *Handler) Stop() {
	h.reset()
}

func (h *Handler) reset() {
	h.selectionState = SelectionNone
	h.free = nil
	h.firstLand = nil
	h.origins = nil
	h.legal = nil
	h.worker = 0
	h.pendingMove = nil
	h.pendingPlacement = nil
}

// Click advances the selection with a click on at
func (h *Handler) Click(at core.Coordinate) {
	switch h.selectionState {
	case SelectionPlacing:
		h.clickPlacement(at)
	case SelectionWorker:
		for number, origin := range h.origins {
			if origin.Equal(at) && h.hasCommand(func(cmd core.MoveCommand) bool { return cmd.WorkerNumber == number }) {
				h.worker = number
				h.selectionState = SelectionMove
				h.lastValidationMessage = ""
				return
			}
		}
		h.lastValidationMessage = "Select one of your workers that can move"
	case SelectionMove:
		if origin := h.origins[h.worker]; origin.Equal(at) {
			h.selectionState = SelectionWorker
			return
		}
		if h.hasCommand(func(cmd core.MoveCommand) bool {
			return cmd.WorkerNumber == h.worker && cmd.MoveTo.Equal(at)
		}) {
			h.moveTo = at
			h.selectionState = SelectionBuild
			h.lastValidationMessage = ""
			return
		}
		h.lastValidationMessage = "Worker cannot move there"
	case SelectionBuild:
		for _, cmd := range h.legal {
			if cmd.WorkerNumber == h.worker && cmd.MoveTo.Equal(h.moveTo) && cmd.BuildAt.Equal(at) {
				chosen := cmd
				h.pendingMove = &chosen
				h.selectionState = SelectionNone
				h.lastValidationMessage = ""
				return
			}
		}
		h.lastValidationMessage = "Cannot build there"
	}
}

func (h *Handler) clickPlacement(at core.Coordinate) {
	if !h.free[at] {
		h.lastValidationMessage = "Land is not free"
		return
	}
	if h.firstLand == nil {
		h.firstLand = &at
		return
	}
	if h.firstLand.Equal(at) {
		h.firstLand = nil
		return
	}
	h.pendingPlacement = &core.PlaceWorkersCommand{WorkerOne: *h.firstLand, WorkerTwo: at}
	h.firstLand = nil
	h.selectionState = SelectionNone
}

func (h *Handler) hasCommand(match func(core.MoveCommand) bool) bool {
	for _, cmd := range h.legal {
		if match(cmd) {
			return true
		}
	}
	return false
}

// Cancel steps back one stage of the current selection
func (h *Handler) Cancel() {
	switch h.selectionState {
	case SelectionPlacing:
		h.firstLand = nil
	case SelectionMove:
		h.selectionState = SelectionWorker
	case SelectionBuild:
		h.selectionState = SelectionMove
	}
}

func (h *Handler) State() SelectionState { return h.selectionState }

// Selected returns the land of the selected worker or placement
func (h *Handler) Selected() (core.Coordinate, bool) {
	switch h.selectionState {
	case SelectionPlacing:
		if h.firstLand != nil {
			return *h.firstLand, true
		}
	case SelectionMove:
		return h.origins[h.worker], true
	case SelectionBuild:
		return h.moveTo, true
	}
	return core.Coordinate{}, false
}

// Targets returns the lands a click may choose at the current stage
func (h *Handler) Targets() []core.Coordinate {
	seen := make(map[core.Coordinate]bool)
	var out []core.Coordinate
	add := func(c core.Coordinate) {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}

	for _, cmd := range h.legal {
		switch h.selectionState {
		case SelectionWorker:
			add(h.origins[cmd.WorkerNumber])
		case SelectionMove:
			if cmd.WorkerNumber == h.worker {
				add(cmd.MoveTo)
			}
		case SelectionBuild:
			if cmd.WorkerNumber == h.worker && cmd.MoveTo.Equal(h.moveTo) {
				add(cmd.BuildAt)
			}
		}
	}
	return out
}

// HoveredCell returns the land under the cursor
func (h *Handler) HoveredCell() (core.Coordinate, bool) {
	return h.cellAt(h.mouseX, h.mouseY)
}

// TakeMove returns the chosen command once, then clears it
func (h *Handler) TakeMove() (core.MoveCommand, bool) {
	if h.pendingMove == nil {
		return core.MoveCommand{}, false
	}
	cmd := *h.pendingMove
	h.pendingMove = nil
	return cmd, true
}

// TakePlacement returns the chosen placement once, then clears it
func (h *Handler) TakePlacement() (core.PlaceWorkersCommand, bool) {
	if h.pendingPlacement == nil {
		return core.PlaceWorkersCommand{}, false
	}
	p := *h.pendingPlacement
	h.pendingPlacement = nil
	return p, true
}

// GetLastValidationMessage returns the latest rejected click reason and clears it
func (h *Handler) GetLastValidationMessage() string {
	msg := h.lastValidationMessage
	h.lastValidationMessage = ""
	return msg
}
