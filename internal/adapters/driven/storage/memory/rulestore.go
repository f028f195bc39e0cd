package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/rulehub/internal/core/domain"
	"github.com/custodia-labs/rulehub/internal/core/ports/driven"
	"github.com/custodia-labs/rulehub/internal/logger"
)

// Ensure RuleStore implements the interface.
var _ driven.RuleStore = (*RuleStore)(nil)

// RuleStore is an in-memory implementation of driven.RuleStore.
// Rules are copied on the way in and on the way out, so neither callers nor
// snapshots can observe or cause in-place mutation.
type RuleStore struct {
	mu    sync.RWMutex
	rules map[string]domain.Rule
}

// NewRuleStore creates a new in-memory rule store.
func NewRuleStore() *RuleStore {
	return &RuleStore{
		rules: make(map[string]domain.Rule),
	}
}

// Add inserts or replaces a rule by ID.
func (s *RuleStore) Add(_ context.Context, rule domain.Rule) error {
	if strings.TrimSpace(rule.ID) == "" {
		return domain.ErrInvalidRecord
	}
	stored := rule.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules[stored.ID] = stored
	return nil
}

// AddAll inserts or replaces rules in slice order.
// Records with a blank ID are logged and skipped.
func (s *RuleStore) AddAll(ctx context.Context, rules []domain.Rule) int {
	added := 0
	for i := range rules {
		if ctx.Err() != nil {
			break
		}
		if err := s.Add(ctx, rules[i]); err != nil {
			logger.Warn("Skipping rule with invalid ID (description %q, origin %s): %v",
				rules[i].Description, rules[i].Origin, err)
			continue
		}
		added++
	}
	return added
}

// Get retrieves a rule by ID.
func (s *RuleStore) Get(_ context.Context, id string) (domain.Rule, bool) {
	if strings.TrimSpace(id) == "" {
		return domain.Rule{}, false
	}
	s.mu.RLock()
	rule, ok := s.rules[id]
	s.mu.RUnlock()
	if !ok {
		return domain.Rule{}, false
	}
	return rule.Clone(), true
}

// List returns a snapshot of all rules sorted by ID.
func (s *RuleStore) List(_ context.Context) []domain.Rule {
	s.mu.RLock()
	result := make([]domain.Rule, 0, len(s.rules))
	for _, rule := range s.rules {
		result = append(result, rule.Clone())
	}
	s.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result
}

// Remove deletes a rule by ID.
func (s *RuleStore) Remove(_ context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rules[id]; !ok {
		return false
	}
	delete(s.rules, id)
	return true
}

// Len returns the number of indexed rules.
func (s *RuleStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rules)
}
