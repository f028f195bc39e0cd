package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/rulehub/internal/core/domain"
	"github.com/custodia-labs/rulehub/internal/core/ports/driven"
	"github.com/custodia-labs/rulehub/internal/core/ports/driving"
)

// Ensure RuleService implements the interface.
var _ driving.RuleService = (*RuleService)(nil)

// RuleService answers rule queries from the rule index.
type RuleService struct {
	store driven.RuleStore
}

// NewRuleService creates a new rule service.
func NewRuleService(store driven.RuleStore) *RuleService {
	return &RuleService{store: store}
}

// ListMetadata returns every indexed rule, sorted by ID.
func (s *RuleService) ListMetadata(ctx context.Context) ([]domain.Rule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.List(ctx), nil
}

// GetMetadata retrieves a rule by ID.
func (s *RuleService) GetMetadata(ctx context.Context, id string) (*domain.Rule, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: rule id is required", domain.ErrInvalidInput)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rule, ok := s.store.Get(ctx, id)
	if !ok {
		return nil, fmt.Errorf("%w: rule %q", domain.ErrNotFound, id)
	}
	return &rule, nil
}

// ListByLanguage returns rules whose language matches, ignoring case.
// Rules without a language never match.
func (s *RuleService) ListByLanguage(ctx context.Context, language string) ([]domain.Rule, error) {
	if strings.TrimSpace(language) == "" {
		return nil, fmt.Errorf("%w: language is required", domain.ErrInvalidInput)
	}
	return s.filter(ctx, func(r domain.Rule) bool { return r.HasLanguage(language) })
}

// ListByTag returns rules carrying the tag, ignoring case.
func (s *RuleService) ListByTag(ctx context.Context, tag string) ([]domain.Rule, error) {
	if strings.TrimSpace(tag) == "" {
		return nil, fmt.Errorf("%w: tag is required", domain.ErrInvalidInput)
	}
	return s.filter(ctx, func(r domain.Rule) bool { return r.HasTag(tag) })
}

// GetContent looks up a rule and resolves its full text.
func (s *RuleService) GetContent(ctx context.Context, id string) (string, error) {
	rule, err := s.GetMetadata(ctx, id)
	if err != nil {
		return "", err
	}
	return s.ResolveContent(ctx, *rule)
}

// ResolveContent resolves a rule's full text from its content reference.
func (s *RuleService) ResolveContent(ctx context.Context, rule domain.Rule) (string, error) {
	if rule.Content == nil {
		return "", fmt.Errorf("%w: rule %q has no content reference", domain.ErrNotConfigured, rule.ID)
	}
	return rule.Content.Resolve(ctx)
}

func (s *RuleService) filter(ctx context.Context, keep func(domain.Rule) bool) ([]domain.Rule, error) {
	all, err := s.ListMetadata(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Rule, 0, len(all))
	for _, r := range all {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out, nil
}
