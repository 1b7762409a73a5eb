package catalog

import (
	"fmt"
	"strings"
)

// validate checks structural integrity of freshly parsed content and
// collects every problem before failing.
func validate(raw rawCatalog, c *Catalog) error {
	var errs []string

	if len(raw.Turns) == 0 {
		errs = append(errs, "catalog has no turns")
	}

	seenTurn := make(map[int]bool)
	for _, t := range raw.Turns {
		if t.Number < 1 {
			errs = append(errs, fmt.Sprintf("turn number %d must be >= 1", t.Number))
			continue
		}
		if seenTurn[t.Number] {
			errs = append(errs, fmt.Sprintf("duplicate turn %d", t.Number))
		}
		seenTurn[t.Number] = true
		if len(t.Choices) == 0 {
			errs = append(errs, fmt.Sprintf("turn %d has no choices", t.Number))
		}
	}
	for n := 1; n <= c.maxTurn; n++ {
		if !seenTurn[n] {
			errs = append(errs, fmt.Sprintf("turn %d is missing (turns must cover 1..%d)", n, c.maxTurn))
		}
	}

	seenChoice := make(map[string]bool)
	for _, t := range raw.Turns {
		for _, ch := range t.Choices {
			if ch.ID == "" {
				errs = append(errs, fmt.Sprintf("turn %d has a choice without id", t.Number))
				continue
			}
			if seenChoice[ch.ID] {
				errs = append(errs, fmt.Sprintf("duplicate choice id %q", ch.ID))
			}
			seenChoice[ch.ID] = true
			if t.Number < c.maxTurn {
				if _, ok := c.turns[ch.Next]; !ok {
					errs = append(errs, fmt.Sprintf("choice %q points at missing turn %d", ch.ID, ch.Next))
				}
			}
		}
	}

	seenEvent := make(map[string]bool)
	for _, e := range raw.Events {
		if e.ID == "" {
			errs = append(errs, "event without id")
			continue
		}
		if seenEvent[e.ID] {
			errs = append(errs, fmt.Sprintf("duplicate event id %q", e.ID))
		}
		seenEvent[e.ID] = true
		if !validEventKind(e.Kind) {
			errs = append(errs, fmt.Sprintf("event %q has unknown kind %q", e.ID, e.Kind))
		}
		if e.Trigger.Probability < 0 || e.Trigger.Probability > 1 {
			errs = append(errs, fmt.Sprintf("event %q probability must be in [0,1]", e.ID))
		}
		if len(e.Choices) == 0 {
			errs = append(errs, fmt.Sprintf("event %q has no choices", e.ID))
		}
		seenEventChoice := make(map[string]bool)
		for _, ec := range e.Choices {
			if ec.ID == "" {
				errs = append(errs, fmt.Sprintf("event %q has a choice without id", e.ID))
				continue
			}
			if seenEventChoice[ec.ID] {
				errs = append(errs, fmt.Sprintf("event %q has duplicate choice id %q", e.ID, ec.ID))
			}
			seenEventChoice[ec.ID] = true
			if ec.ChainsTo != "" {
				if _, ok := c.events[ec.ChainsTo]; !ok {
					errs = append(errs, fmt.Sprintf("event choice %s/%s chains to missing event %q", e.ID, ec.ID, ec.ChainsTo))
				}
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("catalog validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
