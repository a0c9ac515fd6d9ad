package main

import (
	"github.com/httpeek/httpeek/pkg/config"
	"github.com/httpeek/httpeek/pkg/filter"
)

// buildFilter translates the match and exclude flags into a filter
// spec. The default "All" status matcher contributes no rule, and a
// spec with no rules at all comes back nil so the engine skips
// filtering entirely.
func buildFilter(cfg *config.Config) (*filter.Spec, error) {
	b := filter.NewBuilder()
	if !cfg.MatchAllStatuses() {
		b.Status(cfg.MatchStatus)
	}
	spec, err := b.
		Length(cfg.MatchLength).
		ExcludeStatus(cfg.ExcludeStatus).
		ExcludeLength(cfg.ExcludeLength).
		TitleMatch(cfg.TitleMatch).
		BodyMatch(cfg.BodyMatch).
		Build()
	if err != nil {
		return nil, err
	}
	if spec.IsEmpty() {
		return nil, nil
	}
	return spec, nil
}
