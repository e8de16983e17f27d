// Package service implements the digest dispatcher (spec.md §4.4), ported
// from the reference implementation's digest_mail.py cadence-gating logic.
package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iai-group/arxivdigest-go/internal/config"
	"github.com/iai-group/arxivdigest-go/internal/platform/logger"
	"github.com/iai-group/arxivdigest-go/modules/digest/ports"
	ledgerModel "github.com/iai-group/arxivdigest-go/modules/ledger/model"
	ledgerPorts "github.com/iai-group/arxivdigest-go/modules/ledger/ports"
)

// dailyLocker guards a calendar-day batch run against concurrent
// execution across scheduler replicas. Satisfied by
// internal/platform/redis.DailyLock; nil disables the optimisation.
type dailyLocker interface {
	Acquire(ctx context.Context, key string, now time.Time) (bool, error)
}

// Dispatcher runs the digest batch (C4): per user-page, it builds a
// renderable artifact from unsent impressions, hands it to the mail
// collaborator, and stamps traces atomically on success.
type Dispatcher struct {
	store    ledgerPorts.LedgerStore
	mailer   ports.Mailer
	archiver ports.Archiver
	cfg      config.EmailConfig
	log      *logger.Logger
	lock     dailyLocker
}

// NewDispatcher creates a new digest dispatcher.
func NewDispatcher(store ledgerPorts.LedgerStore, mailer ports.Mailer, archiver ports.Archiver, cfg config.EmailConfig, log *logger.Logger) *Dispatcher {
	return &Dispatcher{store: store, mailer: mailer, archiver: archiver, cfg: cfg, log: log}
}

// WithDailyLock attaches a distributed lock used to skip this run when
// another replica has already claimed today's digest batch.
func (d *Dispatcher) WithDailyLock(lock dailyLocker) *Dispatcher {
	d.lock = lock
	return d
}

// TryAcquireDailyRun claims today's digest batch for this process. It
// must be called once before paging begins, not per page; callers that
// skip it (lock is nil) always proceed. Returns false if another replica
// already claimed today's run.
func (d *Dispatcher) TryAcquireDailyRun(ctx context.Context, now time.Time) (bool, error) {
	if d.lock == nil {
		return true, nil
	}
	return d.lock.Acquire(ctx, "batch:digest", now)
}

// Run implements spec.md §4.4 for one page of users.
func (d *Dispatcher) Run(ctx context.Context, now time.Time, users []ledgerModel.User) error {
	userIDs := make([]int64, len(users))
	byID := make(map[int64]ledgerModel.User, len(users))
	for i, u := range users {
		userIDs[i] = u.ID
		byID[u.ID] = u
	}

	digest, err := d.store.FetchUnsentDigest(ctx, userIDs)
	if err != nil {
		return err
	}

	var stamps []ledgerModel.TraceStamp

	for userID, byDate := range digest {
		user := byID[userID]

		gated := d.gateByCadence(now, byDate, user.NotificationInterval)
		if gated == nil {
			continue
		}

		topN := make(map[time.Time][]ledgerModel.DigestArticle, len(gated))
		anyArticles := false
		for date, articles := range gated {
			sort.Slice(articles, func(i, j int) bool {
				return articles[i].PositionScore > articles[j].PositionScore
			})
			if len(articles) > d.cfg.ArticlesPerDateInEmail {
				articles = articles[:d.cfg.ArticlesPerDateInEmail]
			}
			if len(articles) > 0 {
				anyArticles = true
			}
			topN[date] = articles
		}

		if !anyArticles {
			continue
		}

		artifact, rowStamps := d.buildArtifact(user, topN)

		if err := d.mailer.Send(ctx, artifact); err != nil {
			d.log.Warn("digest dispatcher: mail send failed, user will be retried next batch",
				zap.Int64("user_id", userID), zap.Error(err))
			sentry.WithScope(func(scope *sentry.Scope) {
				scope.SetLevel(sentry.LevelWarning)
				scope.SetTag("user_id", fmt.Sprintf("%d", userID))
				sentry.CaptureException(err)
			})
			continue
		}

		if d.archiver != nil {
			date := now.Format("2006-01-02")
			if err := d.archiver.Archive(ctx, date, userID, artifact); err != nil {
				d.log.Warn("digest dispatcher: archive failed", zap.Int64("user_id", userID), zap.Error(err))
			}
		}

		stamps = append(stamps, rowStamps...)
	}

	return d.store.StampTraces(ctx, stamps)
}

// gateByCadence implements spec.md §4.4 step c: daily keeps only today's
// group, weekly keeps everything but only on the configured weekday,
// off drops the user entirely.
func (d *Dispatcher) gateByCadence(now time.Time, byDate map[time.Time][]ledgerModel.DigestArticle, interval ledgerModel.NotificationInterval) map[time.Time][]ledgerModel.DigestArticle {
	switch interval {
	case ledgerModel.NotificationOff:
		return nil

	case ledgerModel.NotificationDaily:
		today := now.Truncate(24 * time.Hour)
		for date, articles := range byDate {
			if sameDate(date, today) {
				return map[time.Time][]ledgerModel.DigestArticle{date: articles}
			}
		}
		return nil

	case ledgerModel.NotificationWeekly:
		if int(now.Weekday()) != d.cfg.DigestWeekday {
			return nil
		}
		return byDate

	default:
		return nil
	}
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func (d *Dispatcher) buildArtifact(user ledgerModel.User, byDate map[time.Time][]ledgerModel.DigestArticle) (ports.MailArtifact, []ledgerModel.TraceStamp) {
	dates := make([]time.Time, 0, len(byDate))
	for date := range byDate {
		dates = append(dates, date)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	var days []ports.DayGroup
	var stamps []ledgerModel.TraceStamp

	for i, date := range dates {
		var entries []ports.ArticleEntry
		for _, article := range byDate[date] {
			clickTrace := uuid.New().String()
			saveTrace := uuid.New().String()

			entries = append(entries, ports.ArticleEntry{
				Title:       article.ArticleID,
				Explanation: article.Explanation,
				ReadLink:    fmt.Sprintf("%s/mail/read/%d/%s/%s", d.cfg.BaseURL, user.ID, article.ArticleID, clickTrace),
				SaveLink:    fmt.Sprintf("%s/mail/save/%d/%s/%s", d.cfg.BaseURL, user.ID, article.ArticleID, saveTrace),
			})

			stamps = append(stamps, ledgerModel.TraceStamp{
				UserID:     user.ID,
				ArticleID:  article.ArticleID,
				ClickTrace: clickTrace,
				SaveTrace:  saveTrace,
			})
		}

		days = append(days, ports.DayGroup{
			DayLabel: date.Format("Monday, Jan 2"),
			DayIndex: i,
			Articles: entries,
		})
	}

	artifact := ports.MailArtifact{
		ToAddress:    user.ContactAddress,
		Subject:      "Your arXiv digest",
		TemplateName: "digest",
		Name:         user.ContactAddress,
		Days:         days,
		Link:         fmt.Sprintf("%s/mail/unsubscribe/%s", d.cfg.BaseURL, user.UnsubscribeTrace),
	}

	return artifact, stamps
}

// HandleUnsubscribe sets the user's cadence to off and rotates the trace.
func (d *Dispatcher) HandleUnsubscribe(ctx context.Context, trace string) error {
	return d.store.Unsubscribe(ctx, trace)
}
