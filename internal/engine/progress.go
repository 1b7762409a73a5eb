package engine

// evaluateProgress runs the loss and victory checks after a transition.
// Losses are checked first in a fixed order: a transition that numerically
// satisfies both a loss and a win loses. turnExhausted marks a transition
// that resolved the final turn of the difficulty's budget.
func evaluateProgress(g *GameState, cfg DifficultyConfig, turnExhausted bool) {
	if g.Cash <= 0 {
		g.Status = StatusLostBankrupt
		return
	}
	if g.ConsecutiveCapacityExceeded >= cfg.OutageStreakLoss {
		g.Status = StatusLostOutage
		return
	}
	if g.Trust <= cfg.TrustFloor {
		g.Status = StatusLostFiredCTO
		return
	}

	for _, path := range victoryOrder {
		if meetsThreshold(g, cfg.Victory[path]) {
			g.VictoryPath = path
			switch path {
			case PathIPO:
				g.Status = StatusWonIPO
			case PathAcquisition:
				g.Status = StatusWonAcquisition
			case PathProfitability:
				g.Status = StatusWonProfitability
			case PathTechLeader:
				g.Status = StatusWonTechLeader
			}
			return
		}
	}

	if turnExhausted {
		g.Status = StatusLostFailedIPO
	}
}

func meetsThreshold(g *GameState, t VictoryThreshold) bool {
	if g.Users < t.Users || g.Cash < t.Cash || g.Trust < t.Trust {
		return false
	}
	if t.InfraCount > 0 && len(g.Infrastructure) < t.InfraCount {
		return false
	}
	return true
}
