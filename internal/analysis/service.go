package analysis

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"skillgap-backend/internal/employees"
	"skillgap-backend/internal/extract"
	"skillgap-backend/internal/gap"
	"skillgap-backend/internal/llm"
	"skillgap-backend/internal/positions"
	"skillgap-backend/internal/profiles"
	"skillgap-backend/internal/queue"
	"skillgap-backend/internal/shared/metrics"
	"skillgap-backend/internal/shared/storage/object"
	"skillgap-backend/internal/shared/telemetry"
)

// Service orchestrates the analysis pipeline.
type Service struct {
	Repo        Repo
	Metrics     MetricsRepo
	Employees   employees.Repo
	Positions   positions.Repo
	Profiles    profiles.Repo
	Store       object.ObjectStore
	LLM         llm.Client
	RetryPolicy llm.RetryPolicy
	Queue       queue.Client

	// now is swappable in tests.
	now func() time.Time
}

func (s *Service) clock() time.Time {
	if s.now != nil {
		return s.now().UTC()
	}
	return time.Now().UTC()
}

// StartInput describes one analysis to run.
type StartInput struct {
	EmployeeID string
	FilePath   string
	Source     string
	// MimeType and FileName are extraction hints; when empty they are
	// derived from FilePath.
	MimeType string
	FileName string
}

// Result is the terminal outcome of one analysis run.
type Result struct {
	RequestID       string `json:"requestId"`
	Success         bool   `json:"success"`
	MatchScore      *int   `json:"matchScore,omitempty"`
	SkillsExtracted *int   `json:"skillsExtracted,omitempty"`
	ErrorCode       string `json:"errorCode,omitempty"`
	ErrorMessage    string `json:"errorMessage,omitempty"`
}

// Start registers a new analysis request and hands it off for asynchronous
// completion: to the job queue when one is configured, otherwise to a
// background goroutine. An employee with a non-terminal request gets that
// request back instead of a duplicate.
func (s *Service) Start(ctx context.Context, in StartInput) (Request, bool, error) {
	if err := validateStart(in); err != nil {
		return Request{}, false, err
	}

	if active, err := s.Repo.GetActiveForEmployee(ctx, in.EmployeeID); err == nil {
		return active, false, nil
	} else if !errors.Is(err, ErrNotFound) {
		return Request{}, false, err
	}

	req, err := s.createRequest(ctx, in)
	if err != nil {
		return Request{}, false, err
	}

	if s.Queue != nil {
		msg := queue.AnalysisJob{
			RequestID:  req.ID,
			EmployeeID: req.EmployeeID,
			FilePath:   req.FilePath,
			Source:     req.Source,
			MimeType:   in.MimeType,
			FileName:   in.FileName,
		}
		if err := s.Queue.Enqueue(ctx, msg); err != nil {
			// The row stays pending; the stale reaper will fail it if no
			// worker ever picks it up.
			telemetry.Error("analysis.enqueue_failed", map[string]any{
				"request_id":  req.ID,
				"employee_id": req.EmployeeID,
				"error":       sanitizeError(err),
			})
			return Request{}, false, fmt.Errorf("enqueue analysis job: %w", err)
		}
		return req, true, nil
	}

	go func(ctx context.Context) {
		_ = s.Process(ctx, req.ID, DocumentHints{MimeType: in.MimeType, FileName: in.FileName})
	}(backgroundWithRequestID(ctx))

	return req, true, nil
}

// Run executes one analysis synchronously and returns its terminal result.
// Used by the worker and anywhere a caller wants to wait for the outcome.
func (s *Service) Run(ctx context.Context, in StartInput) (Result, error) {
	if err := validateStart(in); err != nil {
		return Result{}, err
	}
	req, err := s.createRequest(ctx, in)
	if err != nil {
		return Result{}, err
	}
	return s.Process(ctx, req.ID, DocumentHints{MimeType: in.MimeType, FileName: in.FileName}), nil
}

func validateStart(in StartInput) error {
	if strings.TrimSpace(in.EmployeeID) == "" {
		return errors.New("employeeID is required")
	}
	if strings.TrimSpace(in.FilePath) == "" {
		return errors.New("filePath is required")
	}
	return nil
}

func (s *Service) createRequest(ctx context.Context, in StartInput) (Request, error) {
	now := s.clock()
	req := Request{
		ID:         uuid.NewString(),
		EmployeeID: in.EmployeeID,
		FilePath:   in.FilePath,
		Source:     in.Source,
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.Repo.Create(ctx, req); err != nil {
		return Request{}, fmt.Errorf("create analysis request: %w", err)
	}
	return req, nil
}

// DocumentHints are optional extraction hints carried alongside a request.
type DocumentHints struct {
	MimeType string
	FileName string
}

// Process runs the pipeline for an already-created request. Re-processing a
// terminal request is a no-op that reports its stored outcome, which makes
// queue redelivery harmless.
func (s *Service) Process(ctx context.Context, requestID string, hints DocumentHints) Result {
	req, err := s.Repo.GetByID(ctx, requestID)
	if err != nil {
		return Result{RequestID: requestID, ErrorCode: ErrorCodeInternal, ErrorMessage: sanitizeError(err)}
	}
	if Terminal(req.Status) {
		return s.terminalResult(ctx, req)
	}

	metrics.IncAnalysisStarted()
	started := s.clock()
	telemetry.Info("analysis.started", map[string]any{
		"request_id":  req.ID,
		"employee_id": req.EmployeeID,
	})

	if err := s.Repo.UpdateStatus(ctx, req.ID, StatusExtracting, StatusUpdate{StartedAt: &started}); err != nil {
		return s.fail(ctx, req, started, 0, ErrorCodePersistence, err)
	}

	text, err := s.extractText(ctx, req, hints)
	if err != nil {
		return s.fail(ctx, req, started, 0, "", err)
	}
	cvChars := len(text)
	metrics.ObserveCVTextChars(float64(cvChars))

	position, err := s.resolvePosition(ctx, req.EmployeeID)
	if err != nil {
		code := ErrorCodePersistence
		if errors.Is(err, employees.ErrNotFound) {
			code = ErrorCodeValidation
		}
		return s.fail(ctx, req, started, cvChars, code, err)
	}

	if err := s.Repo.UpdateStatus(ctx, req.ID, StatusAnalyzing, StatusUpdate{}); err != nil {
		return s.fail(ctx, req, started, cvChars, ErrorCodePersistence, err)
	}

	result, err := s.extractSkills(ctx, req, text, position)
	if err != nil {
		return s.fail(ctx, req, started, cvChars, "", err)
	}

	reconciled := gap.Reconcile(result.Skills, position.Requirements)

	profile := profiles.Profile{
		EmployeeID:      req.EmployeeID,
		ExtractedSkills: result.Skills,
		MatchScore:      reconciled.MatchScore,
		SkillGaps:       reconciled.Gaps,
		Summary:         result.Summary,
		FitAssessment:   result.FitAssessment,
		AnalyzedAt:      s.clock(),
	}
	if err := s.Profiles.Upsert(ctx, profile); err != nil {
		return s.fail(ctx, req, started, cvChars, ErrorCodePersistence, err)
	}

	completed := s.clock()
	if err := s.Repo.UpdateStatus(ctx, req.ID, StatusCompleted, StatusUpdate{CompletedAt: &completed}); err != nil {
		return s.fail(ctx, req, started, cvChars, ErrorCodePersistence, err)
	}

	skillCount := len(result.Skills)
	durationMS := completed.Sub(started).Milliseconds()
	metrics.IncAnalysisCompleted()
	metrics.ObserveAnalysisDurationMs(float64(durationMS))
	s.recordRun(ctx, RunMetrics{
		RequestID:       req.ID,
		EmployeeID:      req.EmployeeID,
		Status:          StatusCompleted,
		DurationMS:      durationMS,
		CVChars:         cvChars,
		SkillsExtracted: &skillCount,
		MatchScore:      reconciled.MatchScore,
		RecordedAt:      completed,
	})
	telemetry.Info("analysis.completed", map[string]any{
		"request_id":  req.ID,
		"employee_id": req.EmployeeID,
		"duration_ms": durationMS,
		"skills":      skillCount,
		"match_score": derefOrNil(reconciled.MatchScore),
	})

	return Result{
		RequestID:       req.ID,
		Success:         true,
		MatchScore:      reconciled.MatchScore,
		SkillsExtracted: &skillCount,
	}
}

func (s *Service) extractText(ctx context.Context, req Request, hints DocumentHints) (string, error) {
	data, err := s.fetchDocument(ctx, req)
	if err != nil {
		return "", err
	}

	mimeType := hints.MimeType
	fileName := hints.FileName
	if fileName == "" && req.Source != SourceInline {
		fileName = filepath.Base(req.FilePath)
	}
	if mimeType == "" && fileName != "" {
		mimeType = mime.TypeByExtension(filepath.Ext(fileName))
	}
	return extract.Text(data, mimeType, fileName)
}

// fetchDocument resolves the request's FilePath to raw bytes: a base64
// payload for inline requests, an object store key otherwise.
func (s *Service) fetchDocument(ctx context.Context, req Request) ([]byte, error) {
	if req.Source == SourceInline {
		data, err := base64.StdEncoding.DecodeString(req.FilePath)
		if err != nil {
			return nil, errFetch(fmt.Errorf("decode inline payload: %w", err))
		}
		return data, nil
	}

	rc, err := s.Store.Open(ctx, req.FilePath)
	if err != nil {
		return nil, errFetch(err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, errFetch(err)
	}
	return data, nil
}

// fetchError wraps store failures so the classifier can name them.
type fetchError struct{ err error }

func (e *fetchError) Error() string { return "fetch document: " + e.err.Error() }
func (e *fetchError) Unwrap() error { return e.err }

func errFetch(err error) error { return &fetchError{err: err} }

func (s *Service) resolvePosition(ctx context.Context, employeeID string) (positions.Position, error) {
	emp, err := s.Employees.GetByID(ctx, employeeID)
	if err != nil {
		return positions.Position{}, err
	}
	if emp.PositionID == "" {
		// No position on file: extraction still runs, scoring is skipped.
		return positions.Position{}, nil
	}
	pos, err := s.Positions.GetByID(ctx, emp.PositionID)
	if errors.Is(err, positions.ErrNotFound) {
		return positions.Position{}, nil
	}
	return pos, err
}

func (s *Service) extractSkills(ctx context.Context, req Request, text string, position positions.Position) (ModelResult, error) {
	if s.LLM == nil {
		return ModelResult{}, ErrLLMNotConfigured
	}

	var required, nice []llm.RequiredSkill
	for _, r := range position.Requirements {
		rs := llm.RequiredSkill{Name: r.Name, RequiredLevel: r.RequiredLevel}
		if r.NiceToHave {
			nice = append(nice, rs)
		} else {
			required = append(required, rs)
		}
	}

	client := newRetryingLLM(s.LLM, s.policy(), requestIDFromContext(ctx))
	raw, err := client.ExtractSkills(ctx, llm.ExtractInput{
		CVText:           text,
		PositionTitle:    position.Title,
		RequiredSkills:   required,
		NiceToHaveSkills: nice,
	})
	if err != nil {
		return ModelResult{}, err
	}
	return parseModelResult(raw)
}

func (s *Service) policy() llm.RetryPolicy {
	if s.RetryPolicy.MaxAttempts > 0 {
		return s.RetryPolicy
	}
	return llm.DefaultRetryPolicy()
}

func (s *Service) fail(ctx context.Context, req Request, started time.Time, cvChars int, code string, err error) Result {
	if code == "" {
		code = classifyError(err)
	}
	msg := sanitizeError(err)
	completed := s.clock()

	if uerr := s.Repo.UpdateStatus(ctx, req.ID, StatusFailed, StatusUpdate{
		ErrorCode:    code,
		ErrorMessage: msg,
		CompletedAt:  &completed,
	}); uerr != nil && !errors.Is(uerr, ErrAlreadyTerminal) {
		telemetry.Error("analysis.fail_update", map[string]any{
			"request_id": req.ID,
			"error":      sanitizeError(uerr),
		})
	}

	metrics.IncAnalysisFailed()
	s.recordRun(ctx, RunMetrics{
		RequestID:  req.ID,
		EmployeeID: req.EmployeeID,
		Status:     StatusFailed,
		ErrorCode:  code,
		DurationMS: completed.Sub(started).Milliseconds(),
		CVChars:    cvChars,
		RecordedAt: completed,
	})
	telemetry.Error("analysis.failed", map[string]any{
		"request_id":  req.ID,
		"employee_id": req.EmployeeID,
		"error_code":  code,
		"error":       msg,
	})

	return Result{RequestID: req.ID, ErrorCode: code, ErrorMessage: msg}
}

func (s *Service) recordRun(ctx context.Context, m RunMetrics) {
	if s.Metrics == nil {
		return
	}
	if err := s.Metrics.Record(ctx, m); err != nil {
		telemetry.Warn("analysis.metrics_record", map[string]any{
			"request_id": m.RequestID,
			"error":      sanitizeError(err),
		})
	}
}

// terminalResult reconstructs a Result from a finished request.
func (s *Service) terminalResult(ctx context.Context, req Request) Result {
	res := Result{
		RequestID:    req.ID,
		Success:      req.Status == StatusCompleted,
		ErrorCode:    req.ErrorCode,
		ErrorMessage: req.ErrorMessage,
	}
	if !res.Success {
		return res
	}
	if profile, err := s.Profiles.GetByEmployee(ctx, req.EmployeeID); err == nil {
		res.MatchScore = profile.MatchScore
		count := len(profile.ExtractedSkills)
		res.SkillsExtracted = &count
	}
	return res
}

// Get returns a request by ID.
func (s *Service) Get(ctx context.Context, requestID string) (Request, error) {
	if requestID == "" {
		return Request{}, errors.New("requestID is required")
	}
	return s.Repo.GetByID(ctx, requestID)
}

// List returns an employee's requests, newest first.
func (s *Service) List(ctx context.Context, employeeID string, limit, offset int) ([]Request, error) {
	if employeeID == "" {
		return nil, errors.New("employeeID is required")
	}
	return s.Repo.ListByEmployee(ctx, employeeID, limit, offset)
}

// Profile returns the employee's current skills profile.
func (s *Service) Profile(ctx context.Context, employeeID string) (profiles.Profile, error) {
	if employeeID == "" {
		return profiles.Profile{}, errors.New("employeeID is required")
	}
	return s.Profiles.GetByEmployee(ctx, employeeID)
}

// FailStale fails non-terminal requests untouched for longer than maxAge.
// Run periodically so crashed workers cannot strand requests forever.
func (s *Service) FailStale(ctx context.Context, maxAge time.Duration, limit int) (int, error) {
	cutoff := s.clock().Add(-maxAge)
	stale, err := s.Repo.ListStale(ctx, cutoff, limit)
	if err != nil {
		return 0, err
	}

	failed := 0
	for _, req := range stale {
		completed := s.clock()
		err := s.Repo.UpdateStatus(ctx, req.ID, StatusFailed, StatusUpdate{
			ErrorCode:    ErrorCodeInternal,
			ErrorMessage: "analysis abandoned: no progress before deadline",
			CompletedAt:  &completed,
		})
		if err != nil {
			if errors.Is(err, ErrAlreadyTerminal) {
				continue
			}
			return failed, err
		}
		failed++
		metrics.IncAnalysisFailed()
		telemetry.Warn("analysis.reaped", map[string]any{
			"request_id":  req.ID,
			"employee_id": req.EmployeeID,
			"stale_since": req.UpdatedAt,
		})
	}
	return failed, nil
}

func derefOrNil(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
