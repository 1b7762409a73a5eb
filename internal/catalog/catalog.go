// Package catalog holds the static game content: the turn/choice script a
// game walks through and the pool of dynamic events. Content is loaded from
// YAML once and is immutable afterwards.
package catalog

type Effects struct {
	Users int64 `yaml:"users" json:"users"`
	Cash  int64 `yaml:"cash" json:"cash"`
	Trust int   `yaml:"trust" json:"trust"`
}

// Choice is one catalog-defined action. IDs are unique across the whole
// catalog, not just within a turn.
type Choice struct {
	ID       string `yaml:"id" json:"id"`
	Text     string `yaml:"text" json:"text"`
	Category string `yaml:"category,omitempty" json:"category,omitempty"`

	Effects           Effects  `yaml:"effects" json:"effects"`
	AddInfrastructure []string `yaml:"add_infrastructure,omitempty" json:"add_infrastructure,omitempty"`
	HiresStaff        string   `yaml:"hires_staff,omitempty" json:"hires_staff,omitempty"`
	Consulting        bool     `yaml:"consulting,omitempty" json:"consulting,omitempty"`

	// Next points at the turn this choice advances to. Zero on final-turn
	// choices.
	Next int `yaml:"next,omitempty" json:"next,omitempty"`

	// Turn is the owning turn number, filled in at load time.
	Turn int `yaml:"-" json:"turn"`
}

type Turn struct {
	Number  int      `yaml:"number" json:"number"`
	Title   string   `yaml:"title" json:"title"`
	Text    string   `yaml:"text" json:"text"`
	Choices []Choice `yaml:"choices" json:"choices"`
}

type EventKind string

const (
	EventRandom      EventKind = "RANDOM"
	EventChain       EventKind = "CHAIN"
	EventCrisis      EventKind = "CRISIS"
	EventOpportunity EventKind = "OPPORTUNITY"
	EventSeasonal    EventKind = "SEASONAL"
)

func validEventKind(k EventKind) bool {
	switch k {
	case EventRandom, EventChain, EventCrisis, EventOpportunity, EventSeasonal:
		return true
	}
	return false
}

// Trigger gates when an event may fire. Zero-valued fields are
// unconstrained; Probability zero means the event never fires on its own
// (chain targets use this).
type Trigger struct {
	Probability      float64 `yaml:"probability,omitempty" json:"probability,omitempty"`
	MinTurn          int     `yaml:"min_turn,omitempty" json:"min_turn,omitempty"`
	MaxTurn          int     `yaml:"max_turn,omitempty" json:"max_turn,omitempty"`
	CooldownTurns    int     `yaml:"cooldown,omitempty" json:"cooldown,omitempty"`
	RequiresOverflow bool    `yaml:"requires_overflow,omitempty" json:"requires_overflow,omitempty"`
	MinTrust         int     `yaml:"min_trust,omitempty" json:"min_trust,omitempty"`
	MaxTrust         int     `yaml:"max_trust,omitempty" json:"max_trust,omitempty"`
}

type EventChoice struct {
	ID   string `yaml:"id" json:"id"`
	Text string `yaml:"text" json:"text"`

	Effects           Effects  `yaml:"effects" json:"effects"`
	AddInfrastructure []string `yaml:"add_infrastructure,omitempty" json:"add_infrastructure,omitempty"`

	// RequiresInfrastructure hides the choice unless every listed service is
	// owned (crisis mitigations gated on prior investment).
	RequiresInfrastructure []string `yaml:"requires_infrastructure,omitempty" json:"requires_infrastructure,omitempty"`

	// ChainsTo names a follow-up event made pending when this choice is
	// taken.
	ChainsTo string `yaml:"chains_to,omitempty" json:"chains_to,omitempty"`
}

type Event struct {
	ID       string        `yaml:"id" json:"id"`
	Kind     EventKind     `yaml:"kind" json:"kind"`
	Severity string        `yaml:"severity,omitempty" json:"severity,omitempty"`
	Title    string        `yaml:"title" json:"title"`
	Text     string        `yaml:"text" json:"text"`
	Trigger  Trigger       `yaml:"trigger,omitempty" json:"trigger,omitempty"`
	Choices  []EventChoice `yaml:"choices" json:"choices"`
}

// Catalog is the loaded, validated content set.
type Catalog struct {
	turns   map[int]*Turn
	choices map[string]*Choice
	events  map[string]*Event

	// eventOrder preserves document order; the weighted draw walks it.
	eventOrder []string
	maxTurn    int
}

func (c *Catalog) MaxTurn() int { return c.maxTurn }

func (c *Catalog) Turn(number int) (*Turn, bool) {
	t, ok := c.turns[number]
	return t, ok
}

func (c *Catalog) Choice(id string) (*Choice, bool) {
	ch, ok := c.choices[id]
	return ch, ok
}

func (c *Catalog) Event(id string) (*Event, bool) {
	e, ok := c.events[id]
	return e, ok
}

// Events returns the pool in document order.
func (c *Catalog) Events() []*Event {
	out := make([]*Event, 0, len(c.eventOrder))
	for _, id := range c.eventOrder {
		out = append(out, c.events[id])
	}
	return out
}
