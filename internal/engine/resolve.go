package engine

import (
	"math"

	"stackup/internal/catalog"
)

// capacityPenaltyTiers maps the overflow ratio to a base trust penalty.
// Tiers are inclusive upper bounds; anything past the last tier takes its
// penalty.
var capacityPenaltyTiers = []struct {
	ratio   float64
	penalty int
}{
	{0.10, 2},
	{0.30, 3},
	{0.50, 5},
	{1.00, 6},
}

const (
	designerUsersMultiplier = 2
	plannerTrustMultiplier  = 2

	// stableTurnsForBonus consecutive turns at or under stableLoadRatio of
	// capacity earn stableTrustBonus.
	stableTurnsForBonus = 3
	stableLoadRatio     = 0.8
	stableTrustBonus    = 3
)

// transitionEffect is the summed, pre-multiplier outcome of one submission.
type transitionEffect struct {
	users int64
	cash  int64
	trust int

	addInfra   []string
	hires      []StaffRole
	consulting bool
}

func sumChoiceEffects(choices []*catalog.Choice) transitionEffect {
	var eff transitionEffect
	for _, ch := range choices {
		eff.users += ch.Effects.Users
		eff.cash += ch.Effects.Cash
		eff.trust += ch.Effects.Trust
		eff.addInfra = append(eff.addInfra, ch.AddInfrastructure...)
		if ch.HiresStaff != "" {
			eff.hires = append(eff.hires, StaffRole(ch.HiresStaff))
		}
		if ch.Consulting {
			eff.consulting = true
		}
	}
	return eff
}

func eventChoiceEffect(ec *catalog.EventChoice) transitionEffect {
	return transitionEffect{
		users:    ec.Effects.Users,
		cash:     ec.Effects.Cash,
		trust:    ec.Effects.Trust,
		addInfra: append([]string(nil), ec.AddInfrastructure...),
	}
}

// applyTransition runs the shared effect pipeline: staff multipliers,
// difficulty scaling of setbacks, resource deltas, acquisitions, capacity
// recomputation, overflow bookkeeping and final clamping. Both normal
// choices and event choices go through here.
func applyTransition(g *GameState, cfg DifficultyConfig, eff transitionEffect) {
	if g.HasStaff(RoleDesigner) {
		eff.users *= designerUsersMultiplier
	}
	if g.HasStaff(RolePlanner) {
		eff.trust *= plannerTrustMultiplier
	}

	if eff.cash < 0 {
		eff.cash = int64(math.Round(float64(eff.cash) * cfg.PenaltyScale))
	}
	if eff.trust < 0 {
		eff.trust = int(math.Round(float64(eff.trust) * cfg.PenaltyScale))
	}

	g.Users += eff.users
	if g.Users < 0 {
		g.Users = 0
	}
	g.Cash += eff.cash
	g.Trust += eff.trust

	for _, id := range eff.addInfra {
		if !g.HasInfra(id) {
			g.Infrastructure = append(g.Infrastructure, id)
		}
	}
	for _, role := range eff.hires {
		if !g.HasStaff(role) {
			g.HiredStaff = append(g.HiredStaff, role)
		}
	}
	if eff.consulting {
		g.Consulting = true
	}

	recomputeCapacity(g)
	settleLoad(g, cfg)
	clampTrust(g)
}

// settleLoad compares users against capacity and updates the overflow
// streak, the trust penalty and the stable-operations counter.
func settleLoad(g *GameState, cfg DifficultyConfig) {
	if g.Users > g.MaxUserCapacity && g.MaxUserCapacity > 0 {
		ratio := float64(g.Users-g.MaxUserCapacity) / float64(g.MaxUserCapacity)
		g.Trust -= overflowPenalty(ratio, cfg.PenaltyScale, g.ConsecutiveCapacityExceeded)
		g.ConsecutiveCapacityExceeded++
		g.CapacityWarning = true
		g.StableTurns = 0
		return
	}

	g.ConsecutiveCapacityExceeded = 0
	g.CapacityWarning = false
	if float64(g.Users) <= stableLoadRatio*float64(g.MaxUserCapacity) {
		g.StableTurns++
		if g.StableTurns >= stableTurnsForBonus {
			g.Trust += stableTrustBonus
			g.StableTurns = 0
		}
	} else {
		g.StableTurns = 0
	}
}

// overflowPenalty scales the tiered base penalty by difficulty and by the
// streak of prior consecutive overflows, so back-to-back overflows always
// cost more than isolated ones.
func overflowPenalty(ratio, scale float64, priorStreak int) int {
	base := capacityPenaltyTiers[len(capacityPenaltyTiers)-1].penalty
	for _, tier := range capacityPenaltyTiers {
		if ratio <= tier.ratio {
			base = tier.penalty
			break
		}
	}
	p := float64(base) * scale * (1 + 0.5*float64(priorStreak))
	penalty := int(math.Round(p))
	if penalty < 1 {
		penalty = 1
	}
	return penalty
}

func clampTrust(g *GameState) {
	if g.Trust < 0 {
		g.Trust = 0
	}
	if g.Trust > 100 {
		g.Trust = 100
	}
}

// advanceTurn follows the resolved choices' next-turn pointers, capped at
// the difficulty's turn budget. With two submitted choices the furthest
// pointer wins.
func advanceTurn(g *GameState, cfg DifficultyConfig, choices []*catalog.Choice) {
	next := g.CurrentTurn
	for _, ch := range choices {
		if ch.Next > next {
			next = ch.Next
		}
	}
	if next > cfg.MaxTurns {
		next = cfg.MaxTurns
	}
	g.CurrentTurn = next
}

// maxChoicesFor returns how many choice ids one submission may carry.
func maxChoicesFor(g *GameState) int {
	if g.HasStaff(RoleDeveloper) {
		return 2
	}
	return 1
}
