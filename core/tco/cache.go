package tco

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/fleetcost/trucktco/core/scenario"
)

// CachedCalculator memoizes Calculate by a content hash of the scenario, so
// two scenarios that are equal by value always share an entry regardless of
// identity. It is an additive layer: results are identical to the wrapped
// calculator's. Cached results must be treated as read-only.
type CachedCalculator struct {
	calc *Calculator

	mu      sync.Mutex
	entries map[string]Result
	order   []string
	max     int
}

// NewCached wraps calc with a bounded memoization layer. maxEntries <= 0
// means an unbounded cache; entries otherwise evict oldest-first.
func NewCached(calc *Calculator, maxEntries int) *CachedCalculator {
	return &CachedCalculator{
		calc:    calc,
		entries: make(map[string]Result),
		max:     maxEntries,
	}
}

// Calculate returns the memoized result for a value-equal scenario, or runs
// the wrapped calculator and stores the outcome. Errors are never cached.
func (c *CachedCalculator) Calculate(s scenario.Scenario) (Result, error) {
	key, err := ScenarioKey(s)
	if err != nil {
		return Result{}, err
	}

	c.mu.Lock()
	if res, ok := c.entries[key]; ok {
		c.mu.Unlock()
		return res, nil
	}
	c.mu.Unlock()

	res, err := c.calc.Calculate(s)
	if err != nil {
		return Result{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok {
		if c.max > 0 && len(c.order) >= c.max {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
		}
		c.entries[key] = res
		c.order = append(c.order, key)
	}
	return res, nil
}

// Len reports the number of cached results.
func (c *CachedCalculator) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Invalidate drops every cached result.
func (c *CachedCalculator) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]Result)
	c.order = nil
}

// ScenarioKey derives a deterministic content hash of the scenario. JSON
// encoding sorts map keys, so value-equal scenarios hash identically.
func ScenarioKey(s scenario.Scenario) (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("hash scenario: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
