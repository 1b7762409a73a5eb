package engine

// Score ranks a finished game for the leaderboard. Pure: same state and
// bonus always give the same score.
func Score(g *GameState, quizBonus int64) int64 {
	return g.Users + floorDiv(g.Cash, 10_000) + int64(g.Trust)*1_000 + quizBonus
}

// floorDiv rounds toward negative infinity, which matters for bankrupt
// states carrying negative cash.
func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
