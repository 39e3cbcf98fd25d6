package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"challenge-quiz-service/internal/app"
	"challenge-quiz-service/internal/config"
	"challenge-quiz-service/internal/domain"
	"challenge-quiz-service/internal/infra/memory"
	pgstore "challenge-quiz-service/internal/infra/postgres"
	rediscache "challenge-quiz-service/internal/infra/redis"
	transport "challenge-quiz-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

// store is what the service needs from a backing store.
type store interface {
	app.AnswerRepository
	app.CatalogRepository
	app.QuestionRepository
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var backing store
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		backing = pgstore.NewStore(pool)
	} else {
		mem := memory.NewStore()
		if err := seedDemoData(ctx, mem); err != nil {
			return err
		}
		log.Printf("no postgres configured, using seeded in-memory store")
		backing = mem
	}

	poolTTL := config.TTLDuration(cfg.Quiz.PoolTTL, 10*time.Minute)
	var questionPool app.QuestionPool
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		questionPool = rediscache.NewQuestionPoolCache(redisClient, backing, config.TTLDuration(cfg.Redis.TTL, poolTTL))
	} else {
		questionPool = memory.NewQuestionPoolCache(backing, poolTTL)
	}

	service := app.NewQuizService(backing, backing, questionPool, app.Options{
		DefaultLimit: config.IntOr(cfg.Quiz.DefaultLimit, 5),
		MinDegree:    config.IntOr(cfg.Quiz.MinDegree, 1),
		MaxDegree:    config.IntOr(cfg.Quiz.MaxDegree, 3),
	})

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transport.NewRouter(service),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiz service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// seedDemoData gives the in-memory store one group, one author and a few questions
// so the service is usable without a database.
func seedDemoData(ctx context.Context, s *memory.Store) error {
	now := time.Now()
	group := domain.Group{ID: "00000000-0000-4000-8000-000000000001", Name: "arithmetic", CreatedAt: now, UpdatedAt: now}
	author := domain.User{
		ID:          "00000000-0000-4000-8000-000000000002",
		Name:        "admin",
		MailAddress: "admin@example.com",
		Authority:   true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.CreateGroup(ctx, group); err != nil {
		return err
	}
	if err := s.CreateUser(ctx, author); err != nil {
		return err
	}

	choices := func(c ...string) []*string {
		out := make([]*string, 4)
		for i := range c {
			out[i] = &c[i]
		}
		return out
	}
	demo := []struct {
		text    string
		correct string
		degree  int
		choices []*string
	}{
		{"What is 2 + 2?", "4", 1, choices("3", "4", "5", "6")},
		{"What is 3 * 3?", "9", 1, choices("6", "8", "9", "12")},
		{"What is 10 - 7?", "3", 1, choices("2", "3", "4", "7")},
		{"What is 12 / 4?", "3", 2, choices("2", "3", "4", "6")},
		{"What is 7 * 8?", "56", 2, choices("48", "54", "56", "64")},
	}
	for _, d := range demo {
		_, err := s.CreateQuestion(ctx, domain.Question{
			GroupID:   group.ID,
			UserID:    author.ID,
			Type:      domain.QuestionSelect,
			Degree:    d.degree,
			Text:      d.text,
			Correct:   d.correct,
			Choice1:   d.choices[0],
			Choice2:   d.choices[1],
			Choice3:   d.choices[2],
			Choice4:   d.choices[3],
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return err
		}
	}
	return nil
}
