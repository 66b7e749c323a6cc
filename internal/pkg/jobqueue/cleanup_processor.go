package jobqueue

import (
	"context"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2/log"
	"github.com/wishclip/wishclip/internal/pkg/checkout"
)

// processRemoteCleanupJob deletes the ephemeral provider resources of a
// fulfilled checkout: the hosted checkout session and, when the session row
// still references one, the dynamic plan. Both deletes are idempotent on
// the provider side (404 counts as done), so retries and duplicate webhooks
// are safe here.
func (q *Queue) processRemoteCleanupJob(ctx context.Context, job *Job) error {
	payload, err := RemoteCleanupJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid remote cleanup payload: %w", err)
	}

	apiKey := q.deps.Secrets.Resolve(checkout.SecretAPIKey)
	if apiKey == "" {
		// Without credentials there's nothing a retry could do; the stale
		// plan is a hygiene problem, not a correctness one.
		log.Warnf("[JobQueue] skipping remote cleanup for %s: whop not configured", payload.CheckoutSessionID)
		return nil
	}
	client := q.deps.NewClient(apiKey, q.deps.Secrets.Resolve(checkout.SecretCompanyID))

	var failures []string

	// A placeholder id means the hosted session was never created; only the
	// plan needs deleting then.
	if payload.CheckoutSessionID != "" && !strings.HasPrefix(payload.CheckoutSessionID, "plan_") {
		if err := client.DeleteCheckoutSession(ctx, payload.CheckoutSessionID); err != nil {
			failures = append(failures, fmt.Sprintf("checkout session %s: %v", payload.CheckoutSessionID, err))
		}
	}

	if payload.PlanID != "" {
		if err := client.DeletePlan(ctx, payload.PlanID); err != nil {
			failures = append(failures, fmt.Sprintf("plan %s: %v", payload.PlanID, err))
		}
	}

	if len(failures) > 0 {
		return fmt.Errorf("remote cleanup incomplete: %s", strings.Join(failures, "; "))
	}
	return nil
}
