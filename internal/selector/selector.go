// Package selector implements the adaptive item selector: among the
// eligible catalog items, pick the one carrying the most Fisher information
// at the test-taker's current ability estimate.
package selector

import (
	"github.com/langtest/catengine/internal/domainerr"
	"github.com/langtest/catengine/internal/kernel"
	"github.com/langtest/catengine/internal/model"
)

// Select filters candidates down to active, unseen items matching the
// configured skill areas, then returns the one with the highest information
// at theta. An empty skillAreas set is treated as "no filter" — unlike the
// literal reading of the original cat_service.select_next_question, whose
// any(...) over an empty iterable is vacuously false and excludes every
// item (see DESIGN.md open-question decision).
//
// Ties break on first-encountered order in candidates, making selection
// deterministic for a fixed catalog ordering.
func Select(theta float64, candidates []model.Item, skillAreas []string, answered map[string]bool) (model.Item, error) {
	var best model.Item
	var bestInfo float64
	found := false

	for _, item := range candidates {
		if !item.Active {
			continue
		}
		if answered[item.ID] {
			continue
		}
		if len(skillAreas) > 0 && !item.HasSkillOverlap(skillAreas) {
			continue
		}

		info, err := kernel.Information(theta, kernel.ItemParams{
			Discrimination: item.Parameters.Discrimination,
			Difficulty:     item.Parameters.Difficulty,
		})
		if err != nil {
			return model.Item{}, err
		}

		if !found || info > bestInfo {
			best = item
			bestInfo = info
			found = true
		}
	}

	if !found {
		return model.Item{}, domainerr.New(domainerr.NoEligibleItems, "no eligible items remain for this session")
	}
	return best, nil
}
