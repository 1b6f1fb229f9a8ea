package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ReactionMap maps a reaction symbol to its current count.
// Counts are always positive; an absent key means zero.
type ReactionMap map[string]int

// Apply folds a reported count for symbol into the map.
// A count of zero or below removes the key.
func (r ReactionMap) Apply(symbol string, count int) {
	if count <= 0 {
		delete(r, symbol)
		return
	}
	r[symbol] = count
}

// Total sums all reaction counts
func (r ReactionMap) Total() int {
	total := 0
	for _, count := range r {
		total += count
	}
	return total
}

// Clone returns a copy that is never nil
func (r ReactionMap) Clone() ReactionMap {
	clone := make(ReactionMap, len(r))
	for symbol, count := range r {
		clone[symbol] = count
	}
	return clone
}

// Value implements driver.Valuer for the jsonb column
func (r ReactionMap) Value() (driver.Value, error) {
	if r == nil {
		return "{}", nil
	}
	data, err := json.Marshal(map[string]int(r))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal reactions: %w", err)
	}
	return string(data), nil
}

// Scan implements sql.Scanner for the jsonb column
func (r *ReactionMap) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*r = ReactionMap{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported reactions type %T", src)
	}

	raw := map[string]int{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to unmarshal reactions: %w", err)
	}

	result := make(ReactionMap, len(raw))
	for symbol, count := range raw {
		result.Apply(symbol, count)
	}
	*r = result
	return nil
}
