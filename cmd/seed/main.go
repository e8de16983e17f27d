// Command seed populates a fresh database with a small, realistic dataset
// for local development: a handful of users, three competing recommender
// systems, a week of articles, and candidate rankings for both the
// article and topic paths.
package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

func daysAgo(d int) time.Time {
	return time.Now().UTC().AddDate(0, 0, -d)
}

func randBetween(min, max int) int {
	return min + rand.Intn(max-min+1)
}

func pick[T any](items []T) T {
	return items[rand.Intn(len(items))]
}

func hashPassword(pw string) string {
	h, err := bcrypt.GenerateFromPassword([]byte(pw), 12)
	if err != nil {
		log.Fatalf("bcrypt: %v", err)
	}
	return string(h)
}

func main() {
	_ = godotenv.Load()

	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		envOr("DB_HOST", "localhost"),
		envOr("DB_PORT", "5432"),
		envOr("DB_USER", "arxivdigest"),
		envOr("DB_PASSWORD", "arxivdigest"),
		envOr("DB_NAME", "arxivdigest"),
		envOr("DB_SSL_MODE", "disable"),
	)

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("ping: %v", err)
	}
	fmt.Println("connected to database")

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("begin tx: %v", err)
	}
	defer tx.Rollback(ctx)

	const operatorEmail = "operator@arxivdigest.dev"
	_, _ = tx.Exec(ctx, `DELETE FROM operators WHERE email = $1`, operatorEmail)
	_, _ = tx.Exec(ctx, `DELETE FROM users WHERE contact_address LIKE 'seed-%@arxivdigest.dev'`)
	fmt.Println("cleaned previous seed data")

	// ── operator account ─────────────────────────────────────────────────
	operatorID := ""
	err = tx.QueryRow(ctx,
		`INSERT INTO operators (email, name, password_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $4) RETURNING id`,
		operatorEmail, "Seed Operator", hashPassword("password123"), time.Now().UTC(),
	).Scan(&operatorID)
	must(err, "create operator")
	fmt.Printf("created operator: %s / password123\n", operatorEmail)

	// ── users ─────────────────────────────────────────────────────────────
	type seedUser struct {
		id                   int64
		address              string
		notificationInterval int
		topics               []string
		categories           []string
	}

	topicPool := []string{"information retrieval", "recommender systems", "natural language processing", "machine learning", "distributed systems"}
	categoryPool := []string{"cs.IR", "cs.CL", "cs.LG", "cs.DC", "cs.AI"}

	var users []seedUser
	for i := 0; i < 8; i++ {
		address := fmt.Sprintf("seed-%d@arxivdigest.dev", i)
		interval := pick([]int{0, 1, 2})
		topics := []string{pick(topicPool), pick(topicPool)}
		categories := []string{pick(categoryPool)}

		var id int64
		err = tx.QueryRow(ctx,
			`INSERT INTO users (contact_address, notification_interval, topics, categories, registered_at)
			 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			address, interval, topics, categories, daysAgo(randBetween(10, 90)),
		).Scan(&id)
		must(err, "create user "+address)
		users = append(users, seedUser{id, address, interval, topics, categories})
	}
	fmt.Printf("created %d users\n", len(users))

	// ── systems ───────────────────────────────────────────────────────────
	type seedSystem struct {
		id          int64
		displayName string
	}

	systemDefs := []string{"BM25 Baseline", "Neural Reranker", "Hybrid Ensemble"}
	var systems []seedSystem
	for _, name := range systemDefs {
		var id int64
		err = tx.QueryRow(ctx,
			`INSERT INTO systems (owner_user_id, display_name) VALUES ($1, $2) RETURNING id`,
			users[0].id, name,
		).Scan(&id)
		must(err, "create system "+name)
		systems = append(systems, seedSystem{id, name})
	}
	fmt.Printf("created %d systems\n", len(systems))

	// ── articles ──────────────────────────────────────────────────────────
	type seedArticle struct {
		id, title string
	}

	var articles []seedArticle
	for i := 0; i < 20; i++ {
		id := fmt.Sprintf("2401.%05d", 10000+i)
		title := fmt.Sprintf("A Study of Recommendation Quality, Part %d", i+1)
		abstract := "We investigate online evaluation techniques for recommender systems using interleaved comparisons."
		datestamp := daysAgo(randBetween(0, 6))
		authors := []string{"A. Researcher", "B. Scientist"}
		categories := []string{pick(categoryPool)}

		_, err = tx.Exec(ctx,
			`INSERT INTO articles (id, title, abstract, datestamp, authors, categories)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			id, title, abstract, datestamp, authors, categories,
		)
		must(err, "create article "+id)
		articles = append(articles, seedArticle{id, title})
	}
	fmt.Printf("created %d articles\n", len(articles))

	// ── candidate article rankings ───────────────────────────────────────
	rankingCount := 0
	for _, u := range users {
		for _, sys := range systems {
			perm := rand.Perm(len(articles))
			n := randBetween(5, 10)
			for rank, idx := range perm[:n] {
				score := 1.0 - float64(rank)*0.05
				_, err = tx.Exec(ctx,
					`INSERT INTO candidate_rankings (user_id, article_id, system_id, score, explanation, submitted_at)
					 VALUES ($1, $2, $3, $4, $5, $6)
					 ON CONFLICT (user_id, article_id, system_id) DO NOTHING`,
					u.id, articles[idx].id, sys.id, score,
					fmt.Sprintf("recommended by %s", sys.displayName), daysAgo(randBetween(0, 2)),
				)
				must(err, "create candidate ranking")
				rankingCount++
			}
		}
	}
	fmt.Printf("created %d candidate article rankings\n", rankingCount)

	// ── candidate topic rankings ─────────────────────────────────────────
	topicRankingCount := 0
	for _, u := range users {
		for _, sys := range systems {
			perm := rand.Perm(len(topicPool))
			n := randBetween(2, 4)
			for rank, idx := range perm[:n] {
				score := 1.0 - float64(rank)*0.1
				_, err = tx.Exec(ctx,
					`INSERT INTO candidate_topic_rankings (user_id, topic, system_id, score, explanation, submitted_at)
					 VALUES ($1, $2, $3, $4, $5, $6)
					 ON CONFLICT (user_id, topic, system_id) DO NOTHING`,
					u.id, topicPool[idx], sys.id, score,
					fmt.Sprintf("suggested by %s", sys.displayName), daysAgo(randBetween(0, 2)),
				)
				must(err, "create candidate topic ranking")
				topicRankingCount++
			}
		}
	}
	fmt.Printf("created %d candidate topic rankings\n", topicRankingCount)

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("commit: %v", err)
	}

	fmt.Println("\nseed completed successfully")
	fmt.Printf("  operator login: %s / password123\n", operatorEmail)
}

func must(err error, msg string) {
	if err != nil {
		log.Fatalf("%s: %v", msg, err)
	}
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
