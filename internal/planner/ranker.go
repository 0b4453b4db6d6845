package planner

import (
	"sort"

	"github.com/ignite/planner-ranker/internal/domain"
)

// rankEntries sorts entries by descending adjusted score and assigns dense
// 1-based ranks. The sort is stable and ties on score break by ascending
// plan ID, so the ordering is deterministic regardless of how the entries
// were produced.
func rankEntries(entries []domain.RankedEntry) []domain.RankedEntry {
	ranked := append([]domain.RankedEntry(nil), entries...)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].AdjustedScore != ranked[j].AdjustedScore {
			return ranked[i].AdjustedScore > ranked[j].AdjustedScore
		}
		return ranked[i].PlanID < ranked[j].PlanID
	})
	for i := range ranked {
		ranked[i].FinalRank = i + 1
	}
	return ranked
}

// buildResult partitions scored entries into the all-plans scope and the
// per-publisher scopes, ranking each scope independently. A plan assigned
// to several publishers is ranked once in each of those publishers' lists
// and once globally.
func buildResult(global []domain.RankedEntry, perPublisher map[string][]domain.RankedEntry) domain.RankingResult {
	result := domain.RankingResult{
		AllPublishers: rankEntries(global),
		ByPublisher:   make(map[string][]domain.RankedEntry, len(perPublisher)),
	}
	for pub, entries := range perPublisher {
		result.ByPublisher[pub] = rankEntries(entries)
	}
	return result
}
