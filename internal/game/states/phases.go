package states

import "fmt"

// GamePhase represents the current phase of a match
type GamePhase int

const (
	// PhaseRegistering - fewer than two players have joined
	PhaseRegistering GamePhase = iota

	// PhasePlacing - both players joined, workers still being placed
	PhasePlacing

	// PhaseActive - all four workers placed, turns alternate
	PhaseActive

	// PhaseOver - a worker reached the winning level
	PhaseOver
)

// String returns the string representation of a GamePhase
func (p GamePhase) String() string {
	switch p {
	case PhaseRegistering:
		return "Registering"
	case PhasePlacing:
		return "Placing"
	case PhaseActive:
		return "Active"
	case PhaseOver:
		return "Over"
	default:
		return fmt.Sprintf("Unknown(%d)", p)
	}
}

// IsTerminal returns true if no further moves are accepted in this phase
func (p GamePhase) IsTerminal() bool {
	return p == PhaseOver
}

// CanReceiveMoves returns true if turns can be applied in this phase
func (p GamePhase) CanReceiveMoves() bool {
	return p == PhaseActive
}

// CanAddPlayers returns true if players can join in this phase
func (p GamePhase) CanAddPlayers() bool {
	return p == PhaseRegistering
}

// CanPlaceWorkers returns true if workers can be put on the island in this phase
func (p GamePhase) CanPlaceWorkers() bool {
	return p == PhasePlacing
}

// AllowedTransitions returns the valid phases this phase can transition to.
// Over returns to Active when the winning move is taken back.
func (p GamePhase) AllowedTransitions() []GamePhase {
	switch p {
	case PhaseRegistering:
		return []GamePhase{PhasePlacing}
	case PhasePlacing:
		return []GamePhase{PhaseActive}
	case PhaseActive:
		return []GamePhase{PhaseOver}
	case PhaseOver:
		return []GamePhase{PhaseActive}
	default:
		return []GamePhase{}
	}
}

// CanTransitionTo checks if a transition from this phase to the target phase is allowed
func (p GamePhase) CanTransitionTo(target GamePhase) bool {
	for _, phase := range p.AllowedTransitions() {
		if phase == target {
			return true
		}
	}
	return false
}

// ParsePhase converts a string to a GamePhase
func ParsePhase(s string) (GamePhase, error) {
	switch s {
	case "Registering":
		return PhaseRegistering, nil
	case "Placing":
		return PhasePlacing, nil
	case "Active":
		return PhaseActive, nil
	case "Over":
		return PhaseOver, nil
	default:
		return PhaseRegistering, fmt.Errorf("unknown phase %q", s)
	}
}

// DerivePhase computes the phase from the match's counts.
func DerivePhase(players, placedWorkers int, hasWinner bool) GamePhase {
	switch {
	case hasWinner:
		return PhaseOver
	case players < 2:
		return PhaseRegistering
	case placedWorkers < 4:
		return PhasePlacing
	default:
		return PhaseActive
	}
}
