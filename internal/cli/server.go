package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cert-quiz-service/internal/app"
	"cert-quiz-service/internal/config"
	"cert-quiz-service/internal/infra/memory"
	pgstore "cert-quiz-service/internal/infra/postgres"
	redisrepo "cert-quiz-service/internal/infra/redis"
	transport "cert-quiz-service/internal/transport/http"
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

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var loader memory.QuestionLoader = memory.NewStaticQuestionLoader(sampleQuestions())
	if pool != nil {
		loader = pgstore.NewQuestionLoader(pool)
	}

	questionTTL := config.TTLDuration(cfg.Questions.TTL, 10*time.Minute)
	var questionRepo app.QuestionRepository
	if redisClient != nil {
		questionRepo = redisrepo.NewQuestionRepository(redisClient, loader, questionTTL)
	} else {
		questionRepo = memory.NewQuestionRepository(loader, questionTTL)
	}

	var resultStore app.ResultStore
	if pool != nil {
		resultStore = pgstore.NewResultStore(pool)
	} else {
		resultStore = memory.NewResultStore()
	}

	retention := config.TTLDuration(cfg.Sessions.Retention, 90*24*time.Hour)
	feed := app.NewProgressFeed()
	service := app.NewQuizService(questionRepo, resultStore, feed, retention)
	handler := transport.NewHandler(service)
	wsHandler := transport.NewWSHandler(service, feed)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	handler.Register(mux)
	mux.HandleFunc("/ws/progress", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	sweepInterval := config.TTLDuration(cfg.Sessions.SweepInterval, time.Hour)
	sweeperCtx, stopSweeper := context.WithCancel(ctx)
	defer stopSweeper()
	go runRetentionSweeper(sweeperCtx, service, sweepInterval)

	go func() {
		log.Printf("starting cert quiz service on :%s", finalPort)
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

// runRetentionSweeper purges expired quiz sessions on a fixed interval,
// standing in for storage-level TTL.
func runRetentionSweeper(ctx context.Context, service *app.QuizService, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			purged, err := service.PurgeExpiredSessions(ctx)
			if err != nil {
				log.Printf("retention sweep failed: %v", err)
				continue
			}
			if purged > 0 {
				log.Printf("retention sweep removed %d expired sessions", purged)
			}
		case <-ctx.Done():
			return
		}
	}
}
