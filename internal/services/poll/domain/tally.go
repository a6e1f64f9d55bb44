package domain

import "github.com/samber/lo"

// Snapshot is an immutable copy of a tally, safe to hand to other goroutines.
type Snapshot map[string]int

// Tally counts votes per option label for one question. Its key set never
// changes after creation.
type Tally struct {
	counts map[string]int
}

// NewTally returns a tally with every option at zero.
func NewTally(options []string) *Tally {
	return &Tally{
		counts: lo.SliceToMap(options, func(option string) (string, int) {
			return option, 0
		}),
	}
}

// Has reports whether label is one of the tally's options.
func (t *Tally) Has(label string) bool {
	_, ok := t.counts[label]
	return ok
}

// Increment adds one vote for label and returns the new count. It reports
// false, leaving the tally unchanged, when label is not an option.
func (t *Tally) Increment(label string) (int, bool) {
	count, ok := t.counts[label]
	if !ok {
		return 0, false
	}
	count++
	t.counts[label] = count
	return count, true
}

// Snapshot returns a copy of the current counts.
func (t *Tally) Snapshot() Snapshot {
	out := make(Snapshot, len(t.counts))
	for label, count := range t.counts {
		out[label] = count
	}
	return out
}

// Total returns the number of votes cast.
func (t *Tally) Total() int {
	return lo.Sum(lo.Values(t.counts))
}
