// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"dealflow-workers/internal/common/aws"
	"dealflow-workers/internal/common/camunda"
	"dealflow-workers/internal/common/config"
	"dealflow-workers/internal/common/database"
	"dealflow-workers/internal/common/logger"
	"dealflow-workers/internal/common/metrics"
	"dealflow-workers/internal/common/observability"

	// Matching workers (6)
	adf "dealflow-workers/internal/workers/matching/assemble-deal-feed"
	cms "dealflow-workers/internal/workers/matching/calculate-match-score"
	cpr "dealflow-workers/internal/workers/matching/check-pitch-readiness"
	gm "dealflow-workers/internal/workers/matching/generate-matches"
	pff "dealflow-workers/internal/workers/matching/parse-feed-filters"
	ums "dealflow-workers/internal/workers/matching/update-match-status"

	// Engagement workers (2)
	fi "dealflow-workers/internal/workers/engagement/fetch-inbox"
	smn "dealflow-workers/internal/workers/engagement/send-match-notification"

	// Analytics workers (1)
	ctk "dealflow-workers/internal/workers/analytics/compute-traction-kpis"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", "console")
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...")

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	var camundaClient *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		camundaClient, err = camunda.NewClient(cfg.Camunda.BrokerAddress)
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zeebeClient := camundaClient.GetClient()
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init AWS notification clients (only when a channel is on) ---
	var emailSender smn.EmailSender
	var smsSender smn.SMSSender
	if cfg.Notifications.Email.Enabled {
		sesClient, err := aws.NewSESClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("ses client failed", zap.Error(err))
		}
		emailSender = sesClient
	}
	if cfg.Notifications.SMS.Enabled {
		snsClient, err := aws.NewSNSClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("sns client failed", zap.Error(err))
		}
		smsSender = snsClient
	}

	// --- Register Workers ---

	// --- 1. Matching Workers (6) ---
	if cfg.Workers[cms.TaskType].Enabled {
		handler := cms.NewHandler(
			&cms.Config{
				CacheTTL:          time.Duration(cfg.Matching.ScoreCacheTTL) * time.Second,
				Timeout:           time.Duration(cfg.Workers[cms.TaskType].Timeout) * time.Millisecond,
				DefaultPitchScore: cfg.Matching.DefaultPitchScore,
			},
			pg.DB, redis.Client, log,
		)
		startWorker(zeebeClient, cms.TaskType, cfg.Workers[cms.TaskType], handler.Handle, zapLog, obs)
	}

	if cfg.Workers[adf.TaskType].Enabled {
		handler := adf.NewHandler(
			&adf.Config{
				MinScore:        cfg.Matching.FeedMinScore,
				Limit:           cfg.Matching.FeedLimit,
				TractionPeriods: 2,
				DeckScoreTTL:    time.Duration(cfg.Matching.ProfileCacheTTL) * time.Second,
				Timeout:         time.Duration(cfg.Workers[adf.TaskType].Timeout) * time.Millisecond,
			},
			pg.DB, redis.Client, log,
		)
		startWorker(zeebeClient, adf.TaskType, cfg.Workers[adf.TaskType], handler.Handle, zapLog, obs)
	}

	if cfg.Workers[gm.TaskType].Enabled {
		handler := gm.NewHandler(
			&gm.Config{
				MinScore: cfg.Matching.GenerateMinScore,
				Timeout:  time.Duration(cfg.Workers[gm.TaskType].Timeout) * time.Millisecond,
			},
			pg.DB, log,
		)
		startWorker(zeebeClient, gm.TaskType, cfg.Workers[gm.TaskType], handler.Handle, zapLog, obs)
	}

	if cfg.Workers[ums.TaskType].Enabled {
		handler := ums.NewHandler(
			&ums.Config{
				Timeout: time.Duration(cfg.Workers[ums.TaskType].Timeout) * time.Millisecond,
			},
			pg.DB, log,
		)
		startWorker(zeebeClient, ums.TaskType, cfg.Workers[ums.TaskType], handler.Handle, zapLog, obs)
	}

	if cfg.Workers[pff.TaskType].Enabled {
		handler := pff.NewHandler(
			&pff.Config{
				MaxLimit: cfg.Matching.FeedLimit,
				Timeout:  time.Duration(cfg.Workers[pff.TaskType].Timeout) * time.Millisecond,
			},
			log,
		)
		startWorker(zeebeClient, pff.TaskType, cfg.Workers[pff.TaskType], handler.Handle, zapLog, obs)
	}

	if cfg.Workers[cpr.TaskType].Enabled {
		handler := cpr.NewHandler(
			&cpr.Config{
				ReadyThreshold: 80,
				GoodThreshold:  50,
				Timeout:        time.Duration(cfg.Workers[cpr.TaskType].Timeout) * time.Millisecond,
			},
			pg.DB, log,
		)
		startWorker(zeebeClient, cpr.TaskType, cfg.Workers[cpr.TaskType], handler.Handle, zapLog, obs)
	}

	// --- 2. Engagement Workers (2) ---
	if cfg.Workers[fi.TaskType].Enabled {
		handler := fi.NewHandler(
			&fi.Config{
				Timeout: time.Duration(cfg.Workers[fi.TaskType].Timeout) * time.Millisecond,
			},
			pg.DB, log,
		)
		startWorker(zeebeClient, fi.TaskType, cfg.Workers[fi.TaskType], handler.Handle, zapLog, obs)
	}

	if cfg.Workers[smn.TaskType].Enabled {
		handler := smn.NewHandler(
			&smn.Config{
				EmailEnabled: cfg.Notifications.Email.Enabled,
				FromEmail:    cfg.Notifications.Email.FromEmail,
				SMSEnabled:   cfg.Notifications.SMS.Enabled,
				SMSMinScore:  cfg.Notifications.SMS.MinMatchScore,
				Timeout:      time.Duration(cfg.Workers[smn.TaskType].Timeout) * time.Millisecond,
			},
			emailSender, smsSender, log,
		)
		startWorker(zeebeClient, smn.TaskType, cfg.Workers[smn.TaskType], handler.Handle, zapLog, obs)
	}

	// --- 3. Analytics Workers (1) ---
	if cfg.Workers[ctk.TaskType].Enabled {
		handler := ctk.NewHandler(
			&ctk.Config{
				Periods: cfg.Matching.TractionMonths,
				Timeout: time.Duration(cfg.Workers[ctk.TaskType].Timeout) * time.Millisecond,
			},
			pg.DB, log,
		)
		startWorker(zeebeClient, ctk.TaskType, cfg.Workers[ctk.TaskType], handler.Handle, zapLog, obs)
	}

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if err := camundaClient.HealthCheck(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{
					"status": "not ready",
					"error":  err.Error(),
					"time":   time.Now().Format(time.RFC3339),
				})
				return
			}
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ready",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := http.ListenAndServe(":8080", nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")

	if err := camundaClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func startWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handlerFunc func(worker.JobClient, entities.Job), log *zap.Logger, obs *observability.Observability) {
	if !wcfg.Enabled {
		log.Info("worker disabled", zap.String("taskType", taskType))
		return
	}

	timed := func(jc worker.JobClient, job entities.Job) {
		start := time.Now()
		metrics.WorkerJobsActive.WithLabelValues(taskType).Inc()
		defer metrics.WorkerJobsActive.WithLabelValues(taskType).Dec()

		handlerFunc(jc, job)

		metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(time.Since(start).Seconds())
		obs.RecordJobProcessed(context.Background(), taskType)
		obs.RecordJobDuration(context.Background(), time.Since(start), taskType)
	}

	client.NewJobWorker().
		JobType(taskType).
		Handler(timed).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(time.Duration(wcfg.Timeout) * time.Millisecond).
		Open()

	log.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", wcfg.MaxJobsActive),
		zap.Int("timeout_ms", wcfg.Timeout),
	)
}
