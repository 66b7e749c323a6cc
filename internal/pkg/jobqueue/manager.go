package jobqueue

import (
	"sync"

	"github.com/gofiber/fiber/v2/log"
	"github.com/wishclip/wishclip/internal/pkg/notify"
)

// Manager manages the global job queue used for the pipeline's
// fire-and-forget side calls. It deliberately runs no session-expiry
// ticker: expires_at on checkout sessions is advisory metadata.
type Manager struct {
	queue   *Queue
	mu      sync.Mutex
	running bool
}

var (
	globalManager *Manager
	managerOnce   sync.Once
	managerDeps   Deps
)

// Configure sets the collaborators the global manager will use. Must be
// called before GetManager.
func Configure(deps Deps) {
	managerDeps = deps
}

// GetManager returns the global job queue manager (singleton)
func GetManager() *Manager {
	managerOnce.Do(func() {
		globalManager = &Manager{
			queue: NewQueue(3, managerDeps),
		}
	})
	return globalManager
}

// GetQueue returns the managed job queue
func (m *Manager) GetQueue() *Queue {
	return m.queue
}

// Start starts the job queue workers
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}
	m.running = true
	log.Info("[JobQueue Manager] Starting job queue")
	m.queue.Start()
}

// Stop stops the job queue workers
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}
	m.running = false
	log.Info("[JobQueue Manager] Stopping job queue...")
	m.queue.Stop()
}

// EnqueueRemoteCleanup schedules deletion of a checkout's ephemeral
// provider resources. Satisfies checkout.BackgroundEnqueuer.
func (m *Manager) EnqueueRemoteCleanup(checkoutSessionID, planID string) error {
	payload := RemoteCleanupJobPayload{
		CheckoutSessionID: checkoutSessionID,
		PlanID:            planID,
	}
	_, err := m.queue.EnqueueJob(JobTypeRemoteCleanup, payload.ToMap())
	return err
}

// EnqueueOrderNotification schedules the notifyOrderCreated call-out.
// Satisfies checkout.BackgroundEnqueuer.
func (m *Manager) EnqueueOrderNotification(n notify.OrderNotification) error {
	payload := OrderNotifyJobPayload{Notification: n}
	_, err := m.queue.EnqueueJob(JobTypeOrderNotify, payload.ToMap())
	return err
}
