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

	"opportunity-workers/internal/common/config"
	"opportunity-workers/internal/common/database"
	"opportunity-workers/internal/common/geo"
	"opportunity-workers/internal/common/logger"
	"opportunity-workers/internal/common/observability"
	"opportunity-workers/pkg/registry"

	chi "opportunity-workers/internal/workers/eligibility/calculate-household-income"
	ves "opportunity-workers/internal/workers/eligibility/validate-exam-scores"
	vqs "opportunity-workers/internal/workers/eligibility/validate-quota-selection"

	ars "opportunity-workers/internal/workers/registration/advance-registration-step"
	lrp "opportunity-workers/internal/workers/registration/load-registration-progress"
	ses "opportunity-workers/internal/workers/registration/save-exam-scores"
	spp "opportunity-workers/internal/workers/registration/save-preference-profile"

	bmr "opportunity-workers/internal/workers/matching/build-match-request"
	mop "opportunity-workers/internal/workers/matching/match-opportunities"

	scn "opportunity-workers/internal/workers/communication/send-completion-notification"
)

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
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	// The registry is advisory: handlers validate their own input, this only
	// flags payloads drifting from the published schemas.
	activityReg, err := registry.LoadRegistry(cfg.Registry.Path)
	if err != nil {
		zapLog.Warn("activity registry unavailable, schema checks disabled",
			zap.String("path", cfg.Registry.Path),
			zap.Error(err),
		)
		activityReg = nil
	} else {
		zapLog.Info("Activity registry loaded",
			zap.String("path", cfg.Registry.Path),
			zap.Int("activities", len(activityReg.Activities)),
		)
	}

	ctx := context.Background()

	var zeebeClient zbc.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebeClient, err = zbc.NewClient(&zbc.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

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

	locator := geo.NewLocator(cfg.Geolocation)
	completionPublisher := ars.NewZeebePublisher(zeebeClient)

	zapLog.Info("All external service clients initialized")

	if cfg.Workers[chi.TaskType].Enabled {
		handler := chi.NewHandler(
			&chi.Config{
				MinimumWage: cfg.Eligibility.MinimumWage,
				Timeout:     config.GetDuration(cfg.Workers[chi.TaskType].Timeout),
			},
			log,
		)
		startWorker(zeebeClient, chi.TaskType, cfg.Workers[chi.TaskType], handler.Handle, activityReg, obs, zapLog)
	}

	if cfg.Workers[ves.TaskType].Enabled {
		handler := ves.NewHandler(
			&ves.Config{
				Timeout: config.GetDuration(cfg.Workers[ves.TaskType].Timeout),
			},
			log,
		)
		startWorker(zeebeClient, ves.TaskType, cfg.Workers[ves.TaskType], handler.Handle, activityReg, obs, zapLog)
	}

	if cfg.Workers[vqs.TaskType].Enabled {
		handler := vqs.NewHandler(
			&vqs.Config{
				Timeout: config.GetDuration(cfg.Workers[vqs.TaskType].Timeout),
			},
			log,
		)
		startWorker(zeebeClient, vqs.TaskType, cfg.Workers[vqs.TaskType], handler.Handle, activityReg, obs, zapLog)
	}

	if cfg.Workers[lrp.TaskType].Enabled {
		handler := lrp.NewHandler(
			&lrp.Config{
				Timeout: config.GetDuration(cfg.Workers[lrp.TaskType].Timeout),
			},
			pg.DB, log,
		)
		startWorker(zeebeClient, lrp.TaskType, cfg.Workers[lrp.TaskType], handler.Handle, activityReg, obs, zapLog)
	}

	if cfg.Workers[ars.TaskType].Enabled {
		handler := ars.NewHandler(
			&ars.Config{
				LockTTL:     30 * time.Second,
				MinimumWage: cfg.Eligibility.MinimumWage,
				Timeout:     config.GetDuration(cfg.Workers[ars.TaskType].Timeout),
			},
			pg.DB, redis.Client, locator, completionPublisher, log,
		)
		startWorker(zeebeClient, ars.TaskType, cfg.Workers[ars.TaskType], handler.Handle, activityReg, obs, zapLog)
	}

	if cfg.Workers[ses.TaskType].Enabled {
		handler := ses.NewHandler(
			&ses.Config{
				Timeout: config.GetDuration(cfg.Workers[ses.TaskType].Timeout),
			},
			pg.DB, log,
		)
		startWorker(zeebeClient, ses.TaskType, cfg.Workers[ses.TaskType], handler.Handle, activityReg, obs, zapLog)
	}

	if cfg.Workers[spp.TaskType].Enabled {
		handler := spp.NewHandler(
			&spp.Config{
				Timeout: config.GetDuration(cfg.Workers[spp.TaskType].Timeout),
			},
			pg.DB, log,
		)
		startWorker(zeebeClient, spp.TaskType, cfg.Workers[spp.TaskType], handler.Handle, activityReg, obs, zapLog)
	}

	if cfg.Workers[bmr.TaskType].Enabled {
		handler := bmr.NewHandler(
			&bmr.Config{
				DefaultPageSize: cfg.Matching.DefaultPageSize,
				MaxPageSize:     cfg.Matching.MaxPageSize,
				Timeout:         config.GetDuration(cfg.Workers[bmr.TaskType].Timeout),
			},
			pg.DB, log,
		)
		startWorker(zeebeClient, bmr.TaskType, cfg.Workers[bmr.TaskType], handler.Handle, activityReg, obs, zapLog)
	}

	if cfg.Workers[mop.TaskType].Enabled {
		handler := mop.NewHandler(
			&mop.Config{
				CacheTTL: time.Duration(cfg.Matching.CacheTTL) * time.Second,
				Timeout:  config.GetDuration(cfg.Workers[mop.TaskType].Timeout),
			},
			pg.DB, redis.Client, log,
		)
		startWorker(zeebeClient, mop.TaskType, cfg.Workers[mop.TaskType], handler.Handle, activityReg, obs, zapLog)
	}

	if cfg.Workers[scn.TaskType].Enabled {
		handler, err := scn.NewHandler(
			&scn.Config{
				EmailEnabled: cfg.Notifications.Email.Enabled,
				SMSEnabled:   cfg.Notifications.SMS.Enabled,
				FromEmail:    cfg.Notifications.Email.FromEmail,
				SMSSenderID:  cfg.Notifications.SMS.SenderID,
				AWSRegion:    cfg.Notifications.AWS.Region,
				Timeout:      config.GetDuration(cfg.Workers[scn.TaskType].Timeout),
			},
			log,
		)
		if err != nil {
			zapLog.Fatal("failed to create send-completion-notification handler", zap.Error(err))
		}
		startWorker(zeebeClient, scn.TaskType, cfg.Workers[scn.TaskType], handler.Handle, activityReg, obs, zapLog)
	}

	zapLog.Info("All 10 workers registered successfully")

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

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	closeWithTimeout(shutdownCtx, zeebeClient.Close, zapLog)

	zapLog.Info("Worker manager stopped gracefully")
}

// closeWithTimeout runs close in the background and gives up when ctx
// expires, so a hung gateway connection cannot stall shutdown.
func closeWithTimeout(ctx context.Context, close func() error, log *zap.Logger) {
	closed := make(chan error, 1)
	go func() {
		closed <- close()
	}()

	select {
	case err := <-closed:
		if err != nil {
			log.Error("Error closing Zeebe client", zap.Error(err))
		}
	case <-ctx.Done():
		log.Warn("Zeebe client close timed out", zap.Error(ctx.Err()))
	}
}

func startWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handlerFunc func(worker.JobClient, entities.Job), reg *registry.ActivityRegistry, obs *observability.Observability, log *zap.Logger) {
	if !wcfg.Enabled {
		log.Info("worker disabled", zap.String("taskType", taskType))
		return
	}

	instrumented := func(jobClient worker.JobClient, job entities.Job) {
		if reg != nil {
			if vars, err := job.GetVariablesAsMap(); err == nil {
				if verr := reg.ValidateInput(taskType, vars); verr != nil {
					log.Warn("job variables do not match the registered input schema",
						zap.String("taskType", taskType),
						zap.Int64("jobKey", job.GetKey()),
						zap.Error(verr),
					)
				}
			}
		}

		start := time.Now()
		handlerFunc(jobClient, job)
		obs.RecordJob(context.Background(), taskType, time.Since(start))
	}

	client.NewJobWorker().
		JobType(taskType).
		Handler(instrumented).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(time.Duration(wcfg.Timeout) * time.Millisecond).
		Open()

	log.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", wcfg.MaxJobsActive),
		zap.Int("timeout_ms", wcfg.Timeout),
	)
}
