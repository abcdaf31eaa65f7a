// Package workerproc holds the queue-message handling logic shared by the
// analysis worker binary and its tests.
package workerproc

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"skillgap-backend/internal/analysis"
	"skillgap-backend/internal/queue"
)

// MessageMeta captures details useful for logging and diagnostics.
type MessageMeta struct {
	BodyLen int
	BodySHA string
}

// ComputeMeta returns the body length and SHA-256 hash.
func ComputeMeta(body string) MessageMeta {
	if body == "" {
		return MessageMeta{}
	}
	sum := sha256.Sum256([]byte(body))
	return MessageMeta{BodyLen: len(body), BodySHA: hex.EncodeToString(sum[:])}
}

// ErrEmptyBody indicates an empty queue payload.
type ErrEmptyBody struct {
	Meta MessageMeta
}

func (e ErrEmptyBody) Error() string { return "empty message body" }

// ErrDecode indicates a payload that is not a valid analysis job. Messages
// failing this way are unrecoverable and should be deleted, not retried.
type ErrDecode struct {
	Meta MessageMeta
	Err  error
}

func (e ErrDecode) Error() string {
	if e.Err == nil {
		return "decode message"
	}
	return "decode message: " + e.Err.Error()
}

// ParseJob validates and decodes the queue payload.
func ParseJob(body string) (queue.AnalysisJob, MessageMeta, error) {
	meta := ComputeMeta(body)
	if strings.TrimSpace(body) == "" {
		return queue.AnalysisJob{}, meta, ErrEmptyBody{Meta: meta}
	}
	job, err := queue.DecodeJob([]byte(body))
	if err != nil {
		return queue.AnalysisJob{}, meta, ErrDecode{Meta: meta, Err: err}
	}
	return job, meta, nil
}

// Handle runs the analysis for one job. The returned result is terminal
// either way; queue-level retry only matters when Handle never returns.
func Handle(ctx context.Context, svc *analysis.Service, job queue.AnalysisJob) analysis.Result {
	return svc.Process(ctx, job.RequestID, analysis.DocumentHints{
		MimeType: job.MimeType,
		FileName: job.FileName,
	})
}
