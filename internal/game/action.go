package game

import "github.com/sweeney/pinball-cabinet/internal/logic"

// Action is a manual control request: a simulated trigger or a scoreboard
// operation. Actions are queued to the main loop, which applies them.
type Action string

const (
	ActionTarget  Action = "target"
	ActionBumper1 Action = "bumper-1"
	ActionBumper2 Action = "bumper-2"
	ActionLetter  Action = "letter"
	ActionDrain   Action = "drain"
	ActionReset   Action = "reset"
)

// Actions lists every valid action in display order.
var Actions = []Action{ActionTarget, ActionBumper1, ActionBumper2, ActionLetter, ActionDrain, ActionReset}

// ParseAction returns the action named s.
func ParseAction(s string) (Action, bool) {
	for _, a := range Actions {
		if string(a) == s {
			return a, true
		}
	}
	return "", false
}

// Source returns the trigger source a simulated trigger stands in for.
// Scoreboard operations have no source.
func (a Action) Source() (logic.SourceID, bool) {
	switch a {
	case ActionTarget:
		return logic.SourceTarget, true
	case ActionBumper1:
		return logic.SourceBumper1, true
	case ActionBumper2:
		return logic.SourceBumper2, true
	default:
		return "", false
	}
}
