// Package service implements the interleaving scheduler (spec.md §4.3):
// the batch job that fuses candidate rankings into Impression rows. It
// mirrors the paging and skip-logging behaviour of the reference
// implementation's multileave_articles.py.
package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/iai-group/arxivdigest-go/internal/config"
	"github.com/iai-group/arxivdigest-go/internal/platform/logger"
	ledgerModel "github.com/iai-group/arxivdigest-go/modules/ledger/model"
	"github.com/iai-group/arxivdigest-go/modules/ledger/ports"
	"github.com/iai-group/arxivdigest-go/modules/multileave/service"
)

// dailyLocker guards a calendar-day batch run against concurrent
// execution across scheduler replicas. Satisfied by
// internal/platform/redis.DailyLock; nil disables the optimisation.
type dailyLocker interface {
	Acquire(ctx context.Context, key string, now time.Time) (bool, error)
}

// ArticleScheduler runs the article interleaving batch (C3). It is
// invoked by an external scheduler at most once per calendar day per
// deployment; idempotence across re-runs comes entirely from the ledger
// store's last_recommended_on filter (spec.md §4.1, P7) -- the optional
// Redis lock below only avoids redundant concurrent work, it is never
// the correctness guarantee.
type ArticleScheduler struct {
	store ports.LedgerStore
	cfg   config.InterleaveConfig
	log   *logger.Logger
	lock  dailyLocker
}

// NewArticleScheduler creates a new article scheduler.
func NewArticleScheduler(store ports.LedgerStore, cfg config.InterleaveConfig, log *logger.Logger) *ArticleScheduler {
	return &ArticleScheduler{store: store, cfg: cfg, log: log}
}

// WithDailyLock attaches a distributed lock used to skip this run when
// another replica has already claimed today's batch.
func (s *ArticleScheduler) WithDailyLock(lock dailyLocker) *ArticleScheduler {
	s.lock = lock
	return s
}

type articlePage struct {
	users      []ledgerModel.User
	candidates map[int64]map[int64][]ledgerModel.CandidateArticle
}

// RunArticles implements spec.md §4.3 steps 1-3: capture now once,
// construct one Multileaver for the whole run, page over users, and
// insert impressions one transaction per page. Page I/O for page N+1 is
// pipelined with the CPU-bound multileave work of page N per §5.
func (s *ArticleScheduler) RunArticles(ctx context.Context) error {
	now := time.Now().UTC()

	if s.lock != nil {
		won, err := s.lock.Acquire(ctx, "batch:articles", now)
		if err != nil {
			return err
		}
		if !won {
			s.log.Info("article scheduler: skipped, another replica already claimed today's run")
			return nil
		}
	}

	ml := service.New(s.cfg.RecommendationsPerUser, s.cfg.SystemsMultileavedPerUser, s.cfg.CommonPrefix)

	total, err := s.store.CountUsers(ctx)
	if err != nil {
		return err
	}

	pageSize := s.cfg.UsersPerBatch
	if pageSize <= 0 {
		pageSize = 1
	}

	numPages := (total + pageSize - 1) / pageSize
	if numPages == 0 {
		s.log.Info("article scheduler: no users registered")
		return nil
	}

	pages := make(chan articlePage, 1)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(pages)
		for page := 0; page < numPages; page++ {
			offset := page * pageSize

			users, err := s.store.PageUsers(gctx, pageSize, offset)
			if err != nil {
				return err
			}

			candidates, err := s.store.FetchCandidateArticles(gctx, userIDs(users))
			if err != nil {
				return err
			}

			select {
			case pages <- articlePage{users: users, candidates: candidates}:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for page := range pages {
		if err := s.processPage(ctx, ml, now, page); err != nil {
			return err
		}

		if err := ctx.Err(); err != nil {
			return err
		}
	}

	return g.Wait()
}

func (s *ArticleScheduler) processPage(ctx context.Context, ml *service.Multileaver, now time.Time, page articlePage) error {
	var rows []ledgerModel.ArticleImpression

	for _, user := range page.users {
		bySystem := page.candidates[user.ID]
		if len(bySystem) == 0 {
			s.log.Info("article scheduler: user skipped (no recommendations)", zap.Int64("user_id", user.ID))
			continue
		}

		systems := make([]int64, 0, len(bySystem))
		for sysID := range bySystem {
			systems = append(systems, sysID)
		}
		selected := ml.SelectSystems(systems)
		selectedSet := make(map[int64]struct{}, len(selected))
		for _, sysID := range selected {
			selectedSet[sysID] = struct{}{}
		}

		explanations := make(map[string]map[int64]string)
		rankings := make(map[int64][]string)
		for sysID, candidates := range bySystem {
			if _, ok := selectedSet[sysID]; !ok {
				continue
			}
			items := make([]string, 0, len(candidates))
			for _, c := range candidates {
				items = append(items, c.ArticleID)
				if explanations[c.ArticleID] == nil {
					explanations[c.ArticleID] = make(map[int64]string)
				}
				explanations[c.ArticleID][sysID] = c.Explanation
			}
			rankings[sysID] = items
		}

		fused, credit := ml.Multileave(rankings)

		for i, articleID := range fused {
			sysID := credit[i]
			if sysID == nil {
				continue
			}
			rows = append(rows, ledgerModel.ArticleImpression{
				UserID:        user.ID,
				ArticleID:     articleID,
				SystemID:      *sysID,
				PositionScore: s.cfg.RecommendationsPerUser - i,
				Explanation:   explanations[articleID][*sysID],
				InterleavedAt: now,
			})
		}
	}

	return s.store.InsertArticleImpressions(ctx, rows)
}

func userIDs(users []ledgerModel.User) []int64 {
	ids := make([]int64, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	return ids
}
