package analysis

import (
	"context"
	"encoding/json"

	"skillgap-backend/internal/llm"
	"skillgap-backend/internal/shared/metrics"
	"skillgap-backend/internal/shared/telemetry"
)

// retryingLLM wraps the model client with the shared retry policy and logs
// each re-attempt tagged with the owning request.
type retryingLLM struct {
	base      llm.Client
	policy    llm.RetryPolicy
	requestID string
}

func newRetryingLLM(base llm.Client, policy llm.RetryPolicy, requestID string) llm.Client {
	if base == nil {
		return nil
	}
	return retryingLLM{base: base, policy: policy, requestID: requestID}
}

func (r retryingLLM) ExtractSkills(ctx context.Context, in llm.ExtractInput) (json.RawMessage, error) {
	var raw json.RawMessage
	err := r.policy.Do(ctx, func(ctx context.Context) error {
		var callErr error
		raw, callErr = r.base.ExtractSkills(ctx, in)
		return callErr
	}, func(attempt int, err error) {
		metrics.IncLLMRetry()
		telemetry.Warn("llm.retry", map[string]any{
			"request_id": r.requestID,
			"attempt":    attempt,
			"error":      sanitizeError(err),
		})
	})
	if err != nil {
		return nil, err
	}
	return raw, nil
}

var _ llm.Client = retryingLLM{}
