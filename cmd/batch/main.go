// Command batch runs one scheduled batch cycle of the evaluation core and
// exits, for invocation by an external scheduler (cron, k8s CronJob). It
// mirrors the teacher's two-binary layout (cmd/api + cmd/seed): the API
// process stays always-on, this one runs to completion once per
// invocation, per spec.md §5's two scheduling classes.
//
// Usage:
//
//	batch articles
//	batch digest
//	batch reward -start=2024-01-01T00:00:00Z -end=2024-01-08T00:00:00Z [-system=3] [-mode=week] [-kind=article]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/iai-group/arxivdigest-go/internal/config"
	"github.com/iai-group/arxivdigest-go/internal/platform/logger"
	"github.com/iai-group/arxivdigest-go/internal/platform/mailer"
	"github.com/iai-group/arxivdigest-go/internal/platform/postgres"
	"github.com/iai-group/arxivdigest-go/internal/platform/redis"
	"github.com/iai-group/arxivdigest-go/internal/platform/storage"

	digestService "github.com/iai-group/arxivdigest-go/modules/digest/service"
	ledgerRepo "github.com/iai-group/arxivdigest-go/modules/ledger/repository"
	rewardService "github.com/iai-group/arxivdigest-go/modules/reward/service"
	scheduleService "github.com/iai-group/arxivdigest-go/modules/schedule/service"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: batch <articles|digest|reward> [flags]")
		os.Exit(2)
	}
	subcommand := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	appLogger, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
		}); err != nil {
			appLogger.Warn("failed to initialize Sentry", zap.Error(err))
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	ctx := context.Background()

	pgClient, err := postgres.New(ctx, cfg.Database)
	if err != nil {
		fatal(appLogger, err, "failed to connect to PostgreSQL")
	}
	defer pgClient.Close()

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		fatal(appLogger, err, "failed to connect to Redis")
	}
	defer redisClient.Close()
	dailyLock := redis.NewDailyLock(redisClient, 23*time.Hour)

	ledgerStore := ledgerRepo.NewStore(pgClient.Pool)

	switch subcommand {
	case "articles":
		scheduler := scheduleService.NewArticleScheduler(ledgerStore, cfg.Interleave, appLogger).
			WithDailyLock(dailyLock)
		if err := scheduler.RunArticles(ctx); err != nil {
			fatal(appLogger, err, "article batch failed")
		}
		appLogger.Info("article batch complete")

	case "digest":
		runDigestBatch(ctx, appLogger, ledgerStore, cfg, dailyLock)

	case "reward":
		if err := runRewardReport(ctx, ledgerStore, cfg, os.Args[2:]); err != nil {
			fatal(appLogger, err, "reward report failed")
		}

	default:
		fmt.Fprintf(os.Stderr, "unknown subcommand %q (want articles|digest|reward)\n", subcommand)
		os.Exit(2)
	}
}

func runDigestBatch(ctx context.Context, appLogger *logger.Logger, ledgerStore *ledgerRepo.Store, cfg *config.Config, dailyLock *redis.DailyLock) {
	var mailCollaborator *mailer.ResendMailer
	if cfg.Email.ResendAPIKey != "" {
		mailCollaborator = mailer.NewResendMailer(cfg.Email)
	}

	var digestArchiver *storage.DigestArchiver
	if cfg.S3.Endpoint != "" && cfg.S3.Bucket != "" {
		s3Client, err := storage.NewS3Client(cfg.S3)
		if err != nil {
			appLogger.Warn("failed to initialize S3 client, digest archival will be disabled", zap.Error(err))
		} else {
			digestArchiver = storage.NewDigestArchiver(s3Client)
		}
	}

	dispatcher := digestService.NewDispatcher(ledgerStore, mailCollaborator, digestArchiver, cfg.Email, appLogger).
		WithDailyLock(dailyLock)

	now := time.Now().UTC()
	won, err := dispatcher.TryAcquireDailyRun(ctx, now)
	if err != nil {
		fatal(appLogger, err, "digest batch lock acquisition failed")
	}
	if !won {
		appLogger.Info("digest batch skipped, another replica already claimed today's run")
		return
	}

	offset := 0
	pageSize := cfg.Interleave.UsersPerBatch
	if pageSize <= 0 {
		pageSize = 500
	}
	for {
		users, err := ledgerStore.PageUsers(ctx, pageSize, offset)
		if err != nil {
			fatal(appLogger, err, "digest batch: failed to page users")
		}
		if len(users) == 0 {
			break
		}
		if err := dispatcher.Run(ctx, now, users); err != nil {
			fatal(appLogger, err, "digest batch: dispatch run failed")
		}
		offset += len(users)
	}

	appLogger.Info("digest batch complete")
}

func runRewardReport(ctx context.Context, ledgerStore *ledgerRepo.Store, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("reward", flag.ExitOnError)
	startRaw := fs.String("start", "", "window start, RFC3339")
	endRaw := fs.String("end", "", "window end, RFC3339")
	systemRaw := fs.String("system", "", "optional system id")
	mode := fs.String("mode", "day", "day|week|month")
	kind := fs.String("kind", "article", "article|topic")
	if err := fs.Parse(args); err != nil {
		return err
	}

	start, err := time.Parse(time.RFC3339, *startRaw)
	if err != nil {
		return fmt.Errorf("invalid -start: %w", err)
	}
	end, err := time.Parse(time.RFC3339, *endRaw)
	if err != nil {
		return fmt.Errorf("invalid -end: %w", err)
	}

	var systemID *int64
	if *systemRaw != "" {
		id, err := strconv.ParseInt(*systemRaw, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid -system: %w", err)
		}
		systemID = &id
	}

	aggregator := rewardService.NewAggregator(ledgerStore, cfg.Evaluation)

	var report *rewardService.Report
	if *kind == "topic" {
		report, err = aggregator.TopicReward(ctx, start, end, systemID, rewardService.AggregationMode(*mode))
	} else {
		report, err = aggregator.ArticleReward(ctx, start, end, systemID, rewardService.AggregationMode(*mode))
	}
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func fatal(appLogger *logger.Logger, err error, msg string) {
	sentry.CaptureException(err)
	appLogger.Fatal(msg, zap.Error(err))
}
