package game

import "strings"

// Action represents a turn decision. The command layer parses free-form
// input into this closed set; the engine never sees raw text.
type Action int

const (
	Hit Action = iota
	Stand
	Double
	Split
	Surrender
)

func (a Action) String() string {
	switch a {
	case Hit:
		return "hit"
	case Stand:
		return "stand"
	case Double:
		return "double"
	case Split:
		return "split"
	case Surrender:
		return "surrender"
	default:
		return "unknown"
	}
}

// ParseAction maps player input to an Action. "stay" is accepted as an
// alias for stand. The second return is false for unrecognized input.
func ParseAction(s string) (Action, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hit":
		return Hit, true
	case "stand", "stay":
		return Stand, true
	case "double":
		return Double, true
	case "split":
		return Split, true
	case "surrender":
		return Surrender, true
	default:
		return 0, false
	}
}
