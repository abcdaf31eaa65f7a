package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"skillgap-backend/internal/bootstrap"
	"skillgap-backend/internal/queue"
	"skillgap-backend/internal/shared/config"
	"skillgap-backend/internal/shared/telemetry"
	"skillgap-backend/internal/workerproc"
)

const (
	defaultWorkerConcurrency  = 4
	defaultShutdownTimeoutSec = 30
	defaultStaleAgeMinutes    = 30
	staleSweepInterval        = 5 * time.Minute
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.BuildWorker(cfg)
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}

	receiver, err := queue.NewSQSClient(ctx)
	if err != nil {
		log.Fatalf("queue: %v", err)
	}

	concurrency := envInt("SG_WORKER_CONCURRENCY", defaultWorkerConcurrency)
	if concurrency < 1 {
		concurrency = 1
	}
	shutdownTimeout := time.Duration(envInt("SG_SHUTDOWN_TIMEOUT_SECONDS", defaultShutdownTimeoutSec)) * time.Second
	staleAge := time.Duration(envInt("SG_STALE_AGE_MINUTES", defaultStaleAgeMinutes)) * time.Minute

	go reapLoop(ctx, app, staleAge)

	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	log.Printf("worker started concurrency=%d stale_age=%s", concurrency, staleAge)

pollLoop:
	for {
		select {
		case <-ctx.Done():
			break pollLoop
		default:
		}

		deliveries, err := receiver.Receive(ctx, 10)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				break pollLoop
			}
			telemetry.Error("worker.receive", map[string]any{"error": err.Error()})
			time.Sleep(time.Second)
			continue
		}

		for _, d := range deliveries {
			select {
			case <-ctx.Done():
				break pollLoop
			case sem <- struct{}{}:
			}
			wg.Add(1)
			go func(d queue.Delivery) {
				defer wg.Done()
				defer func() { <-sem }()
				handleDelivery(ctx, app, receiver, d)
			}(d)
		}
	}

	log.Printf("shutdown requested, waiting up to %s for in-flight jobs", shutdownTimeout)
	waitDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(waitDone)
	}()
	select {
	case <-waitDone:
	case <-time.After(shutdownTimeout):
		log.Printf("shutdown timeout reached; exiting with in-flight jobs")
	}
}

// handleDelivery processes one message and acks it. Both terminal outcomes
// ack: Process records failures durably, so redelivery would only repeat
// work. Unparseable payloads are acked too, after logging their meta, since
// redelivering them cannot help.
func handleDelivery(ctx context.Context, app *bootstrap.App, receiver queue.Receiver, d queue.Delivery) {
	// Detach from the poll context so shutdown drains rather than cancels.
	runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Minute)
	defer cancel()

	job, meta, err := workerproc.ParseJob(d.Body)
	if err != nil {
		telemetry.Error("worker.message.drop", map[string]any{
			"error":    err.Error(),
			"body_len": meta.BodyLen,
			"body_sha": meta.BodySHA,
		})
		ack(runCtx, receiver, d, "")
		return
	}

	res := app.HandleJob(runCtx, job)
	fields := map[string]any{
		"request_id":  job.RequestID,
		"employee_id": job.EmployeeID,
		"success":     res.Success,
	}
	if res.ErrorCode != "" {
		fields["error_code"] = res.ErrorCode
	}
	telemetry.Info("worker.job.done", fields)

	ack(runCtx, receiver, d, job.RequestID)
}

func ack(ctx context.Context, receiver queue.Receiver, d queue.Delivery, requestID string) {
	if err := receiver.Ack(ctx, d); err != nil {
		fields := map[string]any{"error": err.Error()}
		if requestID != "" {
			fields["request_id"] = requestID
		}
		telemetry.Error("worker.ack", fields)
	}
}

// reapLoop periodically fails requests abandoned by crashed workers.
func reapLoop(ctx context.Context, app *bootstrap.App, staleAge time.Duration) {
	ticker := time.NewTicker(staleSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		n, err := app.AnalysisService.FailStale(ctx, staleAge, 100)
		if err != nil {
			telemetry.Error("worker.reap", map[string]any{"error": err.Error()})
			continue
		}
		if n > 0 {
			telemetry.Warn("worker.reap.done", map[string]any{"reaped": n})
		}
	}
}

func envInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("invalid %s=%q, using %d", key, raw, def)
		return def
	}
	return v
}
