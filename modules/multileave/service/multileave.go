// Package service implements team-draft multileaving: fusing several
// systems' ranked lists into one, crediting each fused position to the
// system that contributed it. Ported from the reference implementation's
// team_draft_multileave.py -- the round/credit/common-prefix structure
// below mirrors that module's control flow exactly.
package service

import (
	"math/rand"
	"sync"
)

// Multileaver fuses ranked lists from multiple systems using the
// team-draft policy (spec.md §4.2). A Multileaver carries exactly one
// piece of mutable state -- the per-system impression counter used for
// fair system selection -- and is constructed fresh for each batch; it
// is never shared across batches (spec.md §9).
type Multileaver struct {
	rankingLength     int
	systemsPerRanking int
	commonPrefix      bool

	mu          sync.Mutex
	impressions map[int64]int
}

// New constructs a Multileaver parameterised by the target ranking length
// L, the cap K on contributing systems, and whether the longest common
// prefix across all input lists is credited to no one and placed first.
func New(rankingLength, systemsPerRanking int, commonPrefix bool) *Multileaver {
	return &Multileaver{
		rankingLength:     rankingLength,
		systemsPerRanking: systemsPerRanking,
		commonPrefix:      commonPrefix,
		impressions:       make(map[int64]int),
	}
}

// SelectSystems picks up to K systems from systems, preferring systems
// with the lowest cumulative impression count so far (C2.5). Each
// selected system's counter is incremented before the next pick, so
// repeated calls equalise participation over many invocations (C2.6).
func (m *Multileaver) SelectSystems(systems []int64) []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := m.systemsPerRanking
	if k > len(systems) {
		k = len(systems)
	}

	remaining := append([]int64(nil), systems...)
	selected := make([]int64, 0, k)

	for i := 0; i < k; i++ {
		min := -1
		var candidates []int64
		for _, s := range remaining {
			c := m.impressions[s]
			if min == -1 || c < min {
				min = c
				candidates = []int64{s}
			} else if c == min {
				candidates = append(candidates, s)
			}
		}

		pick := candidates[rand.Intn(len(candidates))]
		m.impressions[pick]++
		selected = append(selected, pick)

		for j, s := range remaining {
			if s == pick {
				remaining = append(remaining[:j], remaining[j+1:]...)
				break
			}
		}
	}

	return selected
}

// Multileave fuses rankings (system ID -> ordered, distinct items) into
// one ranking of length at most rankingLength, crediting each position to
// the contributing system or nil for the common prefix (C2.1-C2.4).
func (m *Multileaver) Multileave(rankings map[int64][]string) ([]string, []*int64) {
	var ranking []string
	var credit []*int64

	if len(rankings) == 0 {
		return ranking, credit
	}

	lists := make(map[int64][]string, len(rankings))
	for s, items := range rankings {
		lists[s] = append([]string(nil), items...)
	}

	if m.commonPrefix {
		prefix := commonPrefix(lists)
		for _, item := range prefix {
			ranking = append(ranking, item)
			credit = append(credit, nil)
			for s := range lists {
				lists[s] = dropFront(lists[s], item)
			}
		}
	}

	active := make([]int64, 0, len(lists))
	for s, items := range lists {
		if len(items) > 0 {
			active = append(active, s)
		}
	}

	placed := make(map[string]struct{}, len(ranking))
	for _, item := range ranking {
		placed[item] = struct{}{}
	}

	for len(ranking) < m.rankingLength && len(active) > 0 {
		round := rand.Perm(len(active))

		var stillActive []int64
		for _, idx := range round {
			s := active[idx]
			items := lists[s]

			var next string
			found := false
			for len(items) > 0 {
				candidate := items[0]
				items = items[1:]
				if _, dup := placed[candidate]; !dup {
					next = candidate
					found = true
					break
				}
			}
			lists[s] = items

			if found {
				ranking = append(ranking, next)
				sysID := s
				credit = append(credit, &sysID)
				placed[next] = struct{}{}
				if len(ranking) == m.rankingLength {
					break
				}
			}

			if len(lists[s]) > 0 {
				stillActive = append(stillActive, s)
			}
		}

		active = stillActive
	}

	return ranking, credit
}

// dropFront removes item from the front of items if it is there,
// mirroring the deque popleft used to skip already-placed items.
func dropFront(items []string, item string) []string {
	if len(items) > 0 && items[0] == item {
		return items[1:]
	}
	return items
}

// commonPrefix finds the longest prefix shared, in order, by every list
// in lists. It walks the lists position by position, comparing every list
// against the first one, and stops at the first position where any list
// differs or the shortest list ends.
func commonPrefix(lists map[int64][]string) []string {
	if len(lists) == 0 {
		return nil
	}

	var all [][]string
	for _, items := range lists {
		all = append(all, items)
	}

	minLen := len(all[0])
	for _, items := range all[1:] {
		if len(items) < minLen {
			minLen = len(items)
		}
	}

	var prefix []string
	for i := 0; i < minLen; i++ {
		item := all[0][i]
		match := true
		for _, items := range all[1:] {
			if items[i] != item {
				match = false
				break
			}
		}
		if !match {
			break
		}
		prefix = append(prefix, item)
	}

	return prefix
}
