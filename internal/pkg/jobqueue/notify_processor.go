package jobqueue

import (
	"context"
	"fmt"
)

// processOrderNotifyJob fires the notifyOrderCreated collaborator for a
// freshly created order. Failures are retried by the queue; a permanently
// failed notification is logged and dropped, never surfaced to the buyer or
// the payment provider.
func (q *Queue) processOrderNotifyJob(ctx context.Context, job *Job) error {
	payload, err := OrderNotifyJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid order notify payload: %w", err)
	}
	if q.deps.Notifier == nil {
		return nil
	}
	return q.deps.Notifier.NotifyOrderCreated(ctx, payload.Notification)
}
