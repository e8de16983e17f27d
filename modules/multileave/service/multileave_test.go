package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultileave_Distinctness(t *testing.T) {
	m := New(10, 5, false)
	rankings := map[int64][]string{
		10: {"a", "b", "c"},
		20: {"b", "d", "e"},
	}

	ranking, _ := m.Multileave(rankings)

	seen := make(map[string]struct{})
	for _, item := range ranking {
		_, dup := seen[item]
		assert.False(t, dup, "ranking contains duplicate %q", item)
		seen[item] = struct{}{}
	}
}

func TestMultileave_Attribution(t *testing.T) {
	m := New(10, 5, false)
	rankings := map[int64][]string{
		10: {"a", "b", "c"},
		20: {"b", "d", "e"},
	}

	ranking, credit := m.Multileave(rankings)
	require.Equal(t, len(ranking), len(credit))

	for i, c := range credit {
		if c == nil {
			continue
		}
		items, ok := rankings[*c]
		require.True(t, ok, "credit references unknown system %d", *c)
		assert.Contains(t, items, ranking[i])
	}
}

func TestMultileave_CommonPrefix(t *testing.T) {
	m := New(10, 5, true)
	rankings := map[int64][]string{
		10: {"a", "b", "x"},
		20: {"a", "b", "y"},
		30: {"a", "b", "z"},
	}

	ranking, credit := m.Multileave(rankings)

	require.GreaterOrEqual(t, len(ranking), 2)
	assert.Equal(t, "a", ranking[0])
	assert.Equal(t, "b", ranking[1])
	assert.Nil(t, credit[0])
	assert.Nil(t, credit[1])
}

func TestMultileave_LengthBound(t *testing.T) {
	m := New(2, 5, false)
	rankings := map[int64][]string{
		10: {"a", "b", "c"},
		20: {"b", "d", "e"},
	}

	ranking, _ := m.Multileave(rankings)
	assert.LessOrEqual(t, len(ranking), 2)

	total := 0
	for _, items := range rankings {
		total += len(items)
	}
	assert.LessOrEqual(t, len(ranking), total)
}

func TestMultileave_EmptyInput(t *testing.T) {
	m := New(10, 5, false)
	ranking, credit := m.Multileave(map[int64][]string{})
	assert.Empty(t, ranking)
	assert.Empty(t, credit)
}

func TestMultileave_RoundStructure(t *testing.T) {
	m := New(100, 5, false)
	rankings := map[int64][]string{
		10: {"a1", "a2", "a3", "a4", "a5", "a6", "a7", "a8", "a9", "a10"},
		20: {"b1", "b2", "b3", "b4", "b5", "b6", "b7", "b8", "b9", "b10"},
		30: {"c1", "c2", "c3", "c4", "c5", "c6", "c7", "c8", "c9", "c10"},
	}

	_, credit := m.Multileave(rankings)

	window := 3
	for i := 0; i+window <= len(credit); i++ {
		seen := make(map[int64]struct{})
		for _, c := range credit[i : i+window] {
			if c == nil {
				continue
			}
			_, dup := seen[*c]
			assert.False(t, dup, "system %d appears twice in window starting at %d", *c, i)
			seen[*c] = struct{}{}
		}
	}
}

func TestSelectSystems_FairSelection(t *testing.T) {
	m := New(3, 3, false)
	systems := []int64{1, 2, 3, 4, 5}

	counts := make(map[int64]int)
	const invocations = 1000
	for i := 0; i < invocations; i++ {
		for _, s := range m.SelectSystems(systems) {
			counts[s]++
		}
	}

	expected := float64(invocations*3) / float64(len(systems))
	tolerance := expected * 0.05

	for _, s := range systems {
		c := float64(counts[s])
		assert.InDelta(t, expected, c, tolerance, "system %d selected %f times, expected ~%f", s, c, expected)
	}
}

func TestSelectSystems_FewerThanK(t *testing.T) {
	m := New(3, 5, false)
	systems := []int64{1, 2}
	selected := m.SelectSystems(systems)
	assert.Len(t, selected, 2)
}
