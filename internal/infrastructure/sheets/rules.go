package sheets

import (
	"context"
	"fmt"
	"strings"

	"github.com/unimate-backend/internal/domain"
)

// Rules tab columns (A through C).
const (
	colRuleCategory = iota
	colRuleTitle
	colRuleBody
)

// RuleRepo reads regulation excerpts from the rules tab. The tab is
// maintained by staff in the spreadsheet UI, so rows are re-read on every
// request rather than cached.
type RuleRepo struct {
	store Tabular
	tab   string
}

func NewRuleRepo(store Tabular, tab string) *RuleRepo {
	return &RuleRepo{store: store, tab: tab}
}

func (r *RuleRepo) List(ctx context.Context) ([]domain.Rule, error) {
	rng := fmt.Sprintf("%s!A%d:C", r.tab, headerRows+1)
	raw, err := r.store.Read(ctx, rng)
	if err != nil {
		return nil, fmt.Errorf("read rules tab: %w", domain.ErrUnavailable)
	}
	rules := make([]domain.Rule, 0, len(raw))
	for _, cells := range raw {
		if cell(cells, colRuleTitle) == "" && cell(cells, colRuleBody) == "" {
			continue
		}
		rules = append(rules, domain.Rule{
			Category: cell(cells, colRuleCategory),
			Title:    cell(cells, colRuleTitle),
			Body:     cell(cells, colRuleBody),
		})
	}
	return rules, nil
}

// Search filters rules by category (exact, empty matches all) and by a
// case-insensitive keyword over title and body.
func (r *RuleRepo) Search(ctx context.Context, category, keyword string) ([]domain.Rule, error) {
	rules, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	kw := strings.ToLower(keyword)
	matched := make([]domain.Rule, 0, len(rules))
	for _, rule := range rules {
		if category != "" && rule.Category != category {
			continue
		}
		if kw != "" &&
			!strings.Contains(strings.ToLower(rule.Title), kw) &&
			!strings.Contains(strings.ToLower(rule.Body), kw) {
			continue
		}
		matched = append(matched, rule)
	}
	return matched, nil
}
