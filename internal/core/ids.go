package core

import "fmt"

// IDPolicy decides how a table assigns identifiers to new records.
type IDPolicy string

const (
	// MaxPlusOne assigns max(existing)+1, or 1 when the table is empty.
	// Ids of deleted records can come back once the table is emptied.
	MaxPlusOne IDPolicy = "max_plus_one"
	// Monotonic also takes a persisted high-water mark into account, so ids
	// are never reused.
	Monotonic IDPolicy = "monotonic"
)

// ParseIDPolicy maps a config string to a policy. Empty means MaxPlusOne.
func ParseIDPolicy(s string) (IDPolicy, error) {
	switch IDPolicy(s) {
	case "", MaxPlusOne:
		return MaxPlusOne, nil
	case Monotonic:
		return Monotonic, nil
	default:
		return "", fmt.Errorf("unknown id policy %q", s)
	}
}

// NextID returns the identifier for a new record given the ids already in
// the table and the last persisted high-water mark (ignored by MaxPlusOne).
func (p IDPolicy) NextID(existing []int64, highWater int64) int64 {
	var max int64
	for _, id := range existing {
		if id > max {
			max = id
		}
	}
	if p == Monotonic && highWater > max {
		max = highWater
	}
	return max + 1
}
