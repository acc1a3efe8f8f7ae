// Package alert classifies lead-time day counts into notification tiers and
// renders the messages sent for them.
package alert

import "fmt"

// Tier labels for the default lead times.
const (
	TierMonth = "month"
	TierWeek  = "week"
	TierDay   = "day"
	TierToday = "today"
)

// Tier is a named lead-time bucket. An alert for a tier is due only on the
// day the remaining count equals Days exactly.
type Tier struct {
	Label string
	Days  int
}

// Policy maps a days-until count to a tier. Matching is exact: each tier
// fires once per occurrence per year as long as the daily tick runs every
// day. Ranged matching would force the delivery ledger to dedupe by day and
// lose the lead-time signal.
type Policy struct {
	tiers []Tier
}

// DefaultPolicy returns the standard month/week/day/today tier set.
func DefaultPolicy() Policy {
	return Policy{tiers: []Tier{
		{Label: TierMonth, Days: 30},
		{Label: TierWeek, Days: 7},
		{Label: TierDay, Days: 1},
		{Label: TierToday, Days: 0},
	}}
}

// NewPolicy builds a policy from a custom tier set. Labels must be unique
// and day counts non-negative and unique.
func NewPolicy(tiers []Tier) (Policy, error) {
	if len(tiers) == 0 {
		return Policy{}, fmt.Errorf("no tiers configured")
	}
	byLabel := make(map[string]bool, len(tiers))
	byDays := make(map[int]bool, len(tiers))
	for _, tier := range tiers {
		if tier.Label == "" {
			return Policy{}, fmt.Errorf("tier with empty label")
		}
		if tier.Days < 0 {
			return Policy{}, fmt.Errorf("tier %q has negative days %d", tier.Label, tier.Days)
		}
		if byLabel[tier.Label] {
			return Policy{}, fmt.Errorf("duplicate tier label %q", tier.Label)
		}
		if byDays[tier.Days] {
			return Policy{}, fmt.Errorf("duplicate tier day count %d", tier.Days)
		}
		byLabel[tier.Label] = true
		byDays[tier.Days] = true
	}
	return Policy{tiers: tiers}, nil
}

// TierFor returns the tier due at exactly daysUntil days out, if any.
func (p Policy) TierFor(daysUntil int) (Tier, bool) {
	for _, tier := range p.tiers {
		if tier.Days == daysUntil {
			return tier, true
		}
	}
	return Tier{}, false
}

// Tiers returns the configured tier set in order.
func (p Policy) Tiers() []Tier {
	return p.tiers
}
