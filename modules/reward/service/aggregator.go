// Package service implements the reward aggregator (spec.md §4.6), ported
// from the reference implementation's evaluation_service.py
// (get_article_interleaving_reward / get_topic_interleaving_reward /
// get_normalized_rewards / aggregate_data).
package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/iai-group/arxivdigest-go/internal/config"
	ledgerPorts "github.com/iai-group/arxivdigest-go/modules/ledger/ports"
)

// AggregationMode selects the bucket size used by Aggregate.
type AggregationMode string

const (
	ModeDay   AggregationMode = "day"
	ModeWeek  AggregationMode = "week"
	ModeMonth AggregationMode = "month"
)

// SystemReport is one system's normalized-reward history over a report's
// aggregation buckets. Impressions[i] is the number of interleavings the
// system appeared in during bucket Labels[i]; NormalizedRewards[i] holds
// that bucket's per-interleaving reward shares (one entry per
// interleaving the system took part in).
type SystemReport struct {
	SystemID          int64
	Labels            []string
	Impressions       []int
	NormalizedRewards [][]float64
}

// Report is a multi-system reward report for one aggregation mode.
type Report struct {
	Mode    AggregationMode
	Systems []SystemReport
}

// Aggregator computes per-system interleaving rewards from raw feedback
// and normalizes them into a comparable [0,1] share per interleaving.
type Aggregator struct {
	store   ledgerPorts.LedgerStore
	weights config.EvaluationConfig
}

// NewAggregator creates a new reward aggregator.
func NewAggregator(store ledgerPorts.LedgerStore, weights config.EvaluationConfig) *Aggregator {
	return &Aggregator{store: store, weights: weights}
}

// ArticleReward implements get_article_interleaving_reward +
// get_normalized_rewards + aggregate_data for the article feedback path.
// If systemID is nil, every system observed in the window is reported.
// The window is always fetched unscoped: normalization needs every
// system that took part in each interleaving, even when the caller only
// wants one system's report, else the per-interleaving share would be
// computed against a truncated denominator (P11/S5).
func (a *Aggregator) ArticleReward(ctx context.Context, start, end time.Time, systemID *int64, mode AggregationMode) (*Report, error) {
	rows, err := a.store.FetchFeedbackWindow(ctx, start, end, nil)
	if err != nil {
		return nil, err
	}

	scores := map[time.Time]map[int64]map[int64]float64{}
	for _, row := range rows {
		score := 0.0
		if row.ClickedEmail != nil {
			score += a.weights.ClickedEmailWeight
		}
		if row.ClickedWeb != nil {
			score += a.weights.ClickedWebWeight
		}
		if row.Saved != nil {
			score += a.weights.SavedWeight
		}

		date := truncateDay(row.InterleavedAt)
		byUser, ok := scores[date]
		if !ok {
			byUser = map[int64]map[int64]float64{}
			scores[date] = byUser
		}
		bySystem, ok := byUser[row.UserID]
		if !ok {
			bySystem = map[int64]float64{}
			byUser[row.UserID] = bySystem
		}
		bySystem[row.SystemID] += score
	}

	return a.buildReport(scores, start, end, systemID, mode), nil
}

// TopicReward implements get_topic_interleaving_reward + normalization +
// aggregation for the topic feedback path. Like ArticleReward, the window
// is always fetched unscoped so normalization sees every system in each
// interleaving regardless of the report's requested scope.
func (a *Aggregator) TopicReward(ctx context.Context, start, end time.Time, systemID *int64, mode AggregationMode) (*Report, error) {
	rows, err := a.store.FetchTopicFeedbackWindow(ctx, start, end, nil)
	if err != nil {
		return nil, err
	}

	scores := map[time.Time]map[int64]map[int64]float64{}
	for _, row := range rows {
		score := a.weights.StateWeights[string(row.State)]

		date := truncateDay(row.Impression.InterleavingBatch)
		byUser, ok := scores[date]
		if !ok {
			byUser = map[int64]map[int64]float64{}
			scores[date] = byUser
		}
		bySystem, ok := byUser[row.Impression.UserID]
		if !ok {
			bySystem = map[int64]float64{}
			byUser[row.Impression.UserID] = bySystem
		}
		bySystem[row.Impression.SystemID] += score
	}

	return a.buildReport(scores, start, end, systemID, mode), nil
}

// buildReport normalizes per-(date,user) system scores into a per-system
// share and aggregates into Report buckets.
func (a *Aggregator) buildReport(scores map[time.Time]map[int64]map[int64]float64, start, end time.Time, systemID *int64, mode AggregationMode) *Report {
	systems := map[int64]bool{}
	if systemID != nil {
		systems[*systemID] = true
	} else {
		for _, byUser := range scores {
			for _, bySystem := range byUser {
				for sys := range bySystem {
					systems[sys] = true
				}
			}
		}
	}

	dates := dateRange(start, end)
	for _, d := range dates {
		if _, ok := scores[d]; !ok {
			scores[d] = map[int64]map[int64]float64{}
		}
	}

	sysIDs := make([]int64, 0, len(systems))
	for s := range systems {
		sysIDs = append(sysIDs, s)
	}
	sort.Slice(sysIDs, func(i, j int) bool { return sysIDs[i] < sysIDs[j] })

	report := &Report{Mode: mode}
	for _, sys := range sysIDs {
		impressionsByDate := map[time.Time]int{}
		normalizedByDate := map[time.Time][]float64{}

		for date, byUser := range scores {
			impressionsByDate[date] = 0
			normalizedByDate[date] = []float64{}
			for _, bySystem := range byUser {
				if _, ok := bySystem[sys]; !ok {
					continue
				}
				impressionsByDate[date]++
				total := 0.0
				for _, v := range bySystem {
					total += v
				}
				if total != 0 {
					normalizedByDate[date] = append(normalizedByDate[date], bySystem[sys]/total)
				} else {
					normalizedByDate[date] = append(normalizedByDate[date], 0)
				}
			}
		}

		labels, impressions := aggregateInts(impressionsByDate, mode)
		_, normalized := aggregateFloatLists(normalizedByDate, mode)

		report.Systems = append(report.Systems, SystemReport{
			SystemID:          sys,
			Labels:            labels,
			Impressions:       impressions,
			NormalizedRewards: normalized,
		})
	}

	return report
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// dateRange enumerates every calendar day in [start, end], inclusive,
// mirroring the reference implementation's date_range helper.
func dateRange(start, end time.Time) []time.Time {
	var out []time.Time
	for d := truncateDay(start); !d.After(truncateDay(end)); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}

func bucketLabel(date time.Time, mode AggregationMode) string {
	switch mode {
	case ModeMonth:
		return date.Format("January 2006")
	case ModeWeek:
		_, week := date.ISOWeek()
		return fmt.Sprintf("Week %d %d", week, date.Year())
	default:
		return date.Format("2006-01-02")
	}
}

// aggregateInts mirrors aggregate_data(data, mode, sum_result=True) for
// integer-valued series.
func aggregateInts(data map[time.Time]int, mode AggregationMode) ([]string, []int) {
	dates := sortedDates(data)
	var labels []string
	var results []int
	var oldLabel string
	var result int
	first := true

	for _, date := range dates {
		label := bucketLabel(date, mode)
		if first {
			oldLabel = label
			first = false
		}
		if label != oldLabel {
			labels = append(labels, oldLabel)
			results = append(results, result)
			result = 0
			oldLabel = label
		}
		result += data[date]
	}
	if !first {
		labels = append(labels, oldLabel)
		results = append(results, result)
	}
	return labels, results
}

// aggregateFloatLists mirrors aggregate_data(data, mode, sum_result=False):
// each bucket collects every individual value, not a single sum.
func aggregateFloatLists(data map[time.Time][]float64, mode AggregationMode) ([]string, [][]float64) {
	dates := sortedDates(data)
	var labels []string
	var results [][]float64
	var oldLabel string
	var result []float64
	first := true

	for _, date := range dates {
		label := bucketLabel(date, mode)
		if first {
			oldLabel = label
			first = false
		}
		if label != oldLabel {
			labels = append(labels, oldLabel)
			results = append(results, result)
			result = nil
			oldLabel = label
		}
		result = append(result, data[date]...)
	}
	if !first {
		labels = append(labels, oldLabel)
		results = append(results, result)
	}
	return labels, results
}

func sortedDates[V any](data map[time.Time]V) []time.Time {
	dates := make([]time.Time, 0, len(data))
	for d := range data {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}
