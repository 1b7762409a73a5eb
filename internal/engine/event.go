package engine

import "stackup/internal/catalog"

// maxChainDepth bounds event chains within one turn; a chain target past
// the cap is dropped instead of made pending.
const maxChainDepth = 3

// crisisCooldownTurns spaces out CRISIS events regardless of per-event
// cooldowns.
const crisisCooldownTurns = 3

const lastCrisisKey = "$crisis"

// maybeTriggerEvent draws at most one event after a turn resolution. The
// roll is derived from (eventSeed, turn) so a game replays identically.
// Never called while an event is already pending or the game is terminal.
func maybeTriggerEvent(g *GameState, cat *catalog.Catalog) {
	roll := turnRoll(g.EventSeed, g.CurrentTurn)

	acc := 0.0
	for _, e := range cat.Events() {
		if !eligible(g, e) {
			continue
		}
		acc += e.Trigger.Probability
		if roll < acc {
			fireEvent(g, e.ID, 0)
			if e.Kind == catalog.EventCrisis {
				g.EventFiredTurn[lastCrisisKey] = g.CurrentTurn
			}
			return
		}
	}
}

func eligible(g *GameState, e *catalog.Event) bool {
	t := e.Trigger
	if t.Probability <= 0 {
		return false
	}
	if t.MinTurn > 0 && g.CurrentTurn < t.MinTurn {
		return false
	}
	if t.MaxTurn > 0 && g.CurrentTurn > t.MaxTurn {
		return false
	}
	if t.RequiresOverflow && g.ConsecutiveCapacityExceeded == 0 {
		return false
	}
	if t.MinTrust > 0 && g.Trust < t.MinTrust {
		return false
	}
	if t.MaxTrust > 0 && g.Trust > t.MaxTrust {
		return false
	}
	if last, ok := g.EventFiredTurn[e.ID]; ok && t.CooldownTurns > 0 {
		if g.CurrentTurn-last <= t.CooldownTurns {
			return false
		}
	}
	if e.Kind == catalog.EventCrisis {
		if last, ok := g.EventFiredTurn[lastCrisisKey]; ok && g.CurrentTurn-last <= crisisCooldownTurns {
			return false
		}
	}
	return true
}

func fireEvent(g *GameState, eventID string, depth int) {
	if g.EventFiredTurn == nil {
		g.EventFiredTurn = make(map[string]int)
	}
	g.EventFiredTurn[eventID] = g.CurrentTurn
	g.PendingEvent = &PendingEvent{EventID: eventID, ChainDepth: depth}
}

// eventChoiceAvailable checks the infrastructure gate on an event choice.
func eventChoiceAvailable(g *GameState, ec *catalog.EventChoice) bool {
	for _, id := range ec.RequiresInfrastructure {
		if !g.HasInfra(id) {
			return false
		}
	}
	return true
}
