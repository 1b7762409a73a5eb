package engine

import "time"

type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyNormal Difficulty = "NORMAL"
	DifficultyHard   Difficulty = "HARD"
)

func ParseDifficulty(s string) (Difficulty, error) {
	switch Difficulty(s) {
	case DifficultyEasy, DifficultyNormal, DifficultyHard:
		return Difficulty(s), nil
	default:
		return "", ErrInvalidDifficulty
	}
}

type Status string

const (
	StatusPlaying Status = "PLAYING"

	StatusWonIPO           Status = "WON_IPO"
	StatusWonAcquisition   Status = "WON_ACQUISITION"
	StatusWonProfitability Status = "WON_PROFITABILITY"
	StatusWonTechLeader    Status = "WON_TECH_LEADER"

	StatusLostBankrupt  Status = "LOST_BANKRUPT"
	StatusLostOutage    Status = "LOST_OUTAGE"
	StatusLostFiredCTO  Status = "LOST_FIRED_CTO"
	StatusLostFailedIPO Status = "LOST_FAILED_IPO"
)

func (s Status) Terminal() bool {
	return s != StatusPlaying
}

type VictoryPath string

const (
	PathIPO           VictoryPath = "IPO"
	PathAcquisition   VictoryPath = "ACQUISITION"
	PathProfitability VictoryPath = "PROFITABILITY"
	PathTechLeader    VictoryPath = "TECH_LEADER"
)

type StaffRole string

const (
	RoleDeveloper StaffRole = "DEVELOPER"
	RoleDesigner  StaffRole = "DESIGNER"
	RolePlanner   StaffRole = "PLANNER"
)

// PendingEvent references a catalog event awaiting the player's answer.
// ChainDepth counts how many chain hops led here within the current turn.
type PendingEvent struct {
	EventID    string `json:"event_id"`
	ChainDepth int    `json:"chain_depth"`
}

// GameState is the mutable aggregate for one running game. It is mutated
// only by the transition pipeline in this package; once Status is terminal
// no further transitions are accepted.
type GameState struct {
	ID         string     `json:"id"`
	Difficulty Difficulty `json:"difficulty"`
	Status     Status     `json:"status"`

	VictoryPath VictoryPath `json:"victory_path,omitempty"`

	CurrentTurn int   `json:"current_turn"`
	Users       int64 `json:"users"`
	Cash        int64 `json:"cash"`
	Trust       int   `json:"trust"`

	Infrastructure []string    `json:"infrastructure"`
	HiredStaff     []StaffRole `json:"hired_staff"`
	Consulting     bool        `json:"consulting"`

	MaxUserCapacity             int64 `json:"max_user_capacity"`
	ConsecutiveCapacityExceeded int   `json:"consecutive_capacity_exceeded"`
	StableTurns                 int   `json:"stable_turns"`
	CapacityWarning             bool  `json:"capacity_warning"`

	PendingEvent *PendingEvent `json:"pending_event,omitempty"`

	// EventSeed fixes the event draw sequence for the life of the game.
	EventSeed uint64 `json:"event_seed"`
	// EventFiredTurn records the last turn each event fired, for cooldowns.
	EventFiredTurn map[string]int `json:"event_fired_turn,omitempty"`

	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (g *GameState) HasInfra(id string) bool {
	for _, v := range g.Infrastructure {
		if v == id {
			return true
		}
	}
	return false
}

func (g *GameState) HasStaff(role StaffRole) bool {
	for _, v := range g.HiredStaff {
		if v == role {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so a failed transition never leaks partial
// mutations into the stored state.
func (g *GameState) Clone() *GameState {
	c := *g
	c.Infrastructure = append([]string(nil), g.Infrastructure...)
	c.HiredStaff = append([]StaffRole(nil), g.HiredStaff...)
	if g.PendingEvent != nil {
		pe := *g.PendingEvent
		c.PendingEvent = &pe
	}
	if g.EventFiredTurn != nil {
		c.EventFiredTurn = make(map[string]int, len(g.EventFiredTurn))
		for k, v := range g.EventFiredTurn {
			c.EventFiredTurn[k] = v
		}
	}
	return &c
}

// VictoryThreshold is one victory path's requirement tuple. InfraCount of
// zero means the path puts no requirement on infrastructure.
type VictoryThreshold struct {
	Users      int64
	Cash       int64
	Trust      int
	InfraCount int
}

// DifficultyConfig holds every difficulty-tuned number in one place.
type DifficultyConfig struct {
	StartingCash  int64
	StartingTrust int
	BaseCapacity  int64
	MaxTurns      int

	// PenaltyScale multiplies negative cash/trust deltas and overflow
	// penalties.
	PenaltyScale float64
	// TrustFloor at or below which the board fires the CTO.
	TrustFloor int
	// OutageStreakLoss is the consecutive-overflow count that loses the game.
	OutageStreakLoss int

	Victory map[VictoryPath]VictoryThreshold
}

var difficultyConfigs = map[Difficulty]DifficultyConfig{
	DifficultyEasy: {
		StartingCash:     15_000_000,
		StartingTrust:    50,
		BaseCapacity:     15_000,
		MaxTurns:         30,
		PenaltyScale:     0.6,
		TrustFloor:       5,
		OutageStreakLoss: 4,
		Victory: map[VictoryPath]VictoryThreshold{
			PathIPO:           {Users: 70_000, Cash: 200_000_000, Trust: 60},
			PathAcquisition:   {Users: 50_000, Cash: 50_000_000, Trust: 60, InfraCount: 7},
			PathProfitability: {Users: 25_000, Cash: 400_000_000, Trust: 40},
			PathTechLeader:    {Users: 30_000, Cash: 50_000_000, Trust: 75, InfraCount: 9},
		},
	},
	DifficultyNormal: {
		StartingCash:     10_000_000,
		StartingTrust:    50,
		BaseCapacity:     10_000,
		MaxTurns:         25,
		PenaltyScale:     1.0,
		TrustFloor:       10,
		OutageStreakLoss: 3,
		Victory: map[VictoryPath]VictoryThreshold{
			PathIPO:           {Users: 80_000, Cash: 200_000_000, Trust: 65},
			PathAcquisition:   {Users: 60_000, Cash: 80_000_000, Trust: 70, InfraCount: 8},
			PathProfitability: {Users: 30_000, Cash: 500_000_000, Trust: 50},
			PathTechLeader:    {Users: 40_000, Cash: 80_000_000, Trust: 85, InfraCount: 10},
		},
	},
	DifficultyHard: {
		StartingCash:     7_000_000,
		StartingTrust:    30,
		BaseCapacity:     5_000,
		MaxTurns:         22,
		PenaltyScale:     1.4,
		TrustFloor:       15,
		OutageStreakLoss: 2,
		Victory: map[VictoryPath]VictoryThreshold{
			PathIPO:           {Users: 120_000, Cash: 400_000_000, Trust: 85},
			PathAcquisition:   {Users: 80_000, Cash: 150_000_000, Trust: 80, InfraCount: 10},
			PathProfitability: {Users: 50_000, Cash: 800_000_000, Trust: 60},
			PathTechLeader:    {Users: 60_000, Cash: 150_000_000, Trust: 95, InfraCount: 12},
		},
	},
}

// victoryOrder fixes tie-breaking when one transition satisfies several
// paths at once.
var victoryOrder = []VictoryPath{PathIPO, PathAcquisition, PathProfitability, PathTechLeader}

func ConfigFor(d Difficulty) DifficultyConfig {
	return difficultyConfigs[d]
}
