package main

import (
	"context"
	"testing"

	"skillgap-backend/internal/analysis"
	"skillgap-backend/internal/bootstrap"
	"skillgap-backend/internal/queue"
)

type fakeReceiver struct {
	acked []queue.Delivery
}

func (f *fakeReceiver) Receive(ctx context.Context, max int) ([]queue.Delivery, error) {
	return nil, nil
}

func (f *fakeReceiver) Ack(ctx context.Context, d queue.Delivery) error {
	f.acked = append(f.acked, d)
	return nil
}

func TestHandleDeliveryAcksMalformedBody(t *testing.T) {
	r := &fakeReceiver{}
	app := &bootstrap.App{AnalysisService: &analysis.Service{}}

	handleDelivery(context.Background(), app, r, queue.Delivery{Body: "not json", Receipt: "r1"})

	if len(r.acked) != 1 || r.acked[0].Receipt != "r1" {
		t.Fatalf("malformed message must be acked once, got %+v", r.acked)
	}
}

func TestHandleDeliveryAcksEmptyBody(t *testing.T) {
	r := &fakeReceiver{}
	app := &bootstrap.App{AnalysisService: &analysis.Service{}}

	handleDelivery(context.Background(), app, r, queue.Delivery{Body: "  ", Receipt: "r2"})

	if len(r.acked) != 1 || r.acked[0].Receipt != "r2" {
		t.Fatalf("empty message must be acked once, got %+v", r.acked)
	}
}

func TestHandleDeliveryRunsAndAcksValidJob(t *testing.T) {
	r := &fakeReceiver{}
	app := &bootstrap.App{AnalysisService: &analysis.Service{Repo: analysis.NewMemoryRepo()}}

	body, err := queue.EncodeJob(queue.AnalysisJob{RequestID: "req-1", EmployeeID: "emp-1", FilePath: "k"})
	if err != nil {
		t.Fatalf("EncodeJob: %v", err)
	}
	handleDelivery(context.Background(), app, r, queue.Delivery{Body: string(body), Receipt: "r3"})

	if len(r.acked) != 1 || r.acked[0].Receipt != "r3" {
		t.Fatalf("handled message must be acked once, got %+v", r.acked)
	}
}

func TestEnvIntDefaults(t *testing.T) {
	t.Setenv("SG_TEST_ENV_INT", "")
	if got := envInt("SG_TEST_ENV_INT", 7); got != 7 {
		t.Fatalf("expected default 7, got %d", got)
	}

	t.Setenv("SG_TEST_ENV_INT", "12")
	if got := envInt("SG_TEST_ENV_INT", 7); got != 12 {
		t.Fatalf("expected 12, got %d", got)
	}

	t.Setenv("SG_TEST_ENV_INT", "not-a-number")
	if got := envInt("SG_TEST_ENV_INT", 7); got != 7 {
		t.Fatalf("expected fallback 7 for garbage, got %d", got)
	}
}
