package sweeper

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/SylvanToken/AirDropWeb-sub006/internal/completion"
	"github.com/SylvanToken/AirDropWeb-sub006/pkg/config"
	"github.com/SylvanToken/AirDropWeb-sub006/pkg/eventbus"
)

var (
	sweepRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sweeper_runs_total",
			Help: "Total number of sweep runs by job",
		},
		[]string{"job"},
	)

	sweepProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sweeper_processed_total",
			Help: "Total number of rows processed by sweep job",
		},
		[]string{"job"},
	)

	sweepErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sweeper_errors_total",
			Help: "Total number of row-level errors by sweep job",
		},
		[]string{"job"},
	)
)

// autoApproveBatchSize bounds a single auto-approval run so a cron
// invocation stays well under typical gateway timeouts
const autoApproveBatchSize = 500

// promoteQuery promotes a single due completion and credits the user's
// points in one statement. The WHERE clause re-checks the pending state
// so a concurrent manual review cannot cause a double credit.
const promoteQuery = `
	WITH promoted AS (
		UPDATE completions
		SET status = 'auto_approved',
		    verification_status = 'verified',
		    points_awarded = $2,
		    reviewed_at = NOW(),
		    updated_at = NOW()
		WHERE id = $1 AND status = 'pending' AND needs_review = false
		RETURNING user_id
	)
	UPDATE users u
	SET total_points = total_points + $2, updated_at = NOW()
	FROM promoted p
	WHERE u.id = p.user_id`

// StaleRejection identifies a completion rejected by the stale sweep.
type StaleRejection struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"user_id"`
	TaskID uuid.UUID `json:"task_id"`
}

// MarkExpiredResult summarizes a mark-expired run.
type MarkExpiredResult struct {
	ExpiredTasksCount        int `json:"expired_tasks_count"`
	MissedCompletionsCreated int `json:"missed_completions_created"`
}

// Worker runs the background sweeps over completions and tasks.
type Worker struct {
	db         Database
	logger     *zap.Logger
	bus        EventPublisher
	staleAfter time.Duration
}

// NewWorker creates a sweeper worker. bus may be nil when the event bus
// is disabled.
func NewWorker(db Database, logger *zap.Logger, bus EventPublisher, cfg config.PolicyConfig) *Worker {
	return &Worker{
		db:         db,
		logger:     logger,
		bus:        bus,
		staleAfter: time.Duration(cfg.StalePendingHours) * time.Hour,
	}
}

// RunAutoApprove promotes pending completions whose auto-approval time
// has passed. Each promotion credits the task's points to the user
// atomically; rows that fail are logged and skipped so one bad row
// cannot stall the sweep. Returns the number of completions approved.
func (w *Worker) RunAutoApprove(ctx context.Context) (int, error) {
	sweepRunsTotal.WithLabelValues("auto_approve").Inc()

	rows, err := w.db.Query(ctx, `
		SELECT c.id, c.user_id, c.task_id, t.points
		FROM completions c
		JOIN tasks t ON t.id = c.task_id
		WHERE c.status = 'pending'
		  AND c.needs_review = false
		  AND c.auto_approve_at IS NOT NULL
		  AND c.auto_approve_at <= NOW()
		ORDER BY c.auto_approve_at
		LIMIT $1`, autoApproveBatchSize)
	if err != nil {
		return 0, fmt.Errorf("querying due completions: %w", err)
	}
	defer rows.Close()

	type dueRow struct {
		id     uuid.UUID
		userID uuid.UUID
		taskID uuid.UUID
		points int
	}

	var due []dueRow
	for rows.Next() {
		var r dueRow
		if err := rows.Scan(&r.id, &r.userID, &r.taskID, &r.points); err != nil {
			return 0, fmt.Errorf("scanning due completion: %w", err)
		}
		due = append(due, r)
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("reading due completions: %w", err)
	}

	approved := 0
	for _, r := range due {
		tag, err := w.db.Exec(ctx, promoteQuery, r.id, r.points)
		if err != nil {
			sweepErrorsTotal.WithLabelValues("auto_approve").Inc()
			w.logger.Error("Failed to auto-approve completion",
				zap.String("completion_id", r.id.String()),
				zap.Error(err))
			continue
		}
		if tag.RowsAffected() == 0 {
			// Already reviewed between the select and the update.
			continue
		}
		approved++
		sweepProcessedTotal.WithLabelValues("auto_approve").Inc()
		w.publishAutoApproved(ctx, r.id, r.userID, r.taskID, r.points)
	}

	w.logger.Info("Auto-approval sweep completed",
		zap.Int("due", len(due)),
		zap.Int("approved", approved))
	return approved, nil
}

// RunStaleReject rejects pending completions older than the configured
// stale window. Returns the rejected completions so the caller can
// report them.
func (w *Worker) RunStaleReject(ctx context.Context) ([]StaleRejection, error) {
	sweepRunsTotal.WithLabelValues("stale_reject").Inc()

	interval := fmt.Sprintf("%d hours", int(w.staleAfter.Hours()))
	rows, err := w.db.Query(ctx, `
		UPDATE completions
		SET status = 'rejected',
		    verification_status = 'rejected',
		    rejection_reason = $1,
		    missed_at = NOW(),
		    updated_at = NOW()
		WHERE status = 'pending' AND completed_at < NOW() - $2::interval
		RETURNING id, user_id, task_id`,
		completion.StaleRejectionReason, interval)
	if err != nil {
		return nil, fmt.Errorf("rejecting stale completions: %w", err)
	}
	defer rows.Close()

	var rejected []StaleRejection
	for rows.Next() {
		var r StaleRejection
		if err := rows.Scan(&r.ID, &r.UserID, &r.TaskID); err != nil {
			return nil, fmt.Errorf("scanning rejected completion: %w", err)
		}
		rejected = append(rejected, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading rejected completions: %w", err)
	}

	for _, r := range rejected {
		sweepProcessedTotal.WithLabelValues("stale_reject").Inc()
		w.publishRejected(ctx, r)
	}

	w.logger.Info("Stale rejection sweep completed", zap.Int("rejected", len(rejected)))
	return rejected, nil
}

// RunMarkExpired deactivates tasks past their expiry and records an
// expired completion for every active user who never completed them.
// The insert is idempotent through the dedupe key, so re-running the
// sweep never produces duplicate records.
func (w *Worker) RunMarkExpired(ctx context.Context) (MarkExpiredResult, error) {
	sweepRunsTotal.WithLabelValues("mark_expired").Inc()

	var result MarkExpiredResult

	rows, err := w.db.Query(ctx, `
		SELECT id, expires_at
		FROM tasks
		WHERE is_active = true AND expires_at IS NOT NULL AND expires_at <= NOW()`)
	if err != nil {
		return result, fmt.Errorf("querying expired tasks: %w", err)
	}
	defer rows.Close()

	type expiredTask struct {
		id        uuid.UUID
		expiresAt time.Time
	}

	var expired []expiredTask
	for rows.Next() {
		var t expiredTask
		if err := rows.Scan(&t.id, &t.expiresAt); err != nil {
			return result, fmt.Errorf("scanning expired task: %w", err)
		}
		expired = append(expired, t)
	}
	if err := rows.Err(); err != nil {
		return result, fmt.Errorf("reading expired tasks: %w", err)
	}
	result.ExpiredTasksCount = len(expired)

	for _, t := range expired {
		created, err := w.recordMissedCompletions(ctx, t.id, t.expiresAt)
		if err != nil {
			sweepErrorsTotal.WithLabelValues("mark_expired").Inc()
			w.logger.Error("Failed to record missed completions",
				zap.String("task_id", t.id.String()),
				zap.Error(err))
			continue
		}
		result.MissedCompletionsCreated += created

		if _, err := w.db.Exec(ctx,
			`UPDATE tasks SET is_active = false, updated_at = NOW() WHERE id = $1`,
			t.id); err != nil {
			sweepErrorsTotal.WithLabelValues("mark_expired").Inc()
			w.logger.Error("Failed to deactivate expired task",
				zap.String("task_id", t.id.String()),
				zap.Error(err))
		}
	}

	w.logger.Info("Mark-expired sweep completed",
		zap.Int("expired_tasks", result.ExpiredTasksCount),
		zap.Int("missed_completions", result.MissedCompletionsCreated))
	return result, nil
}

// recordMissedCompletions inserts an expired completion for every active
// user without a record for the task.
func (w *Worker) recordMissedCompletions(ctx context.Context, taskID uuid.UUID, expiredAt time.Time) (int, error) {
	rows, err := w.db.Query(ctx, `
		SELECT u.id
		FROM users u
		WHERE u.is_active = true
		  AND NOT EXISTS (
			SELECT 1 FROM completions c
			WHERE c.user_id = u.id AND c.task_id = $1
		  )`, taskID)
	if err != nil {
		return 0, fmt.Errorf("querying users without completion: %w", err)
	}
	defer rows.Close()

	var userIDs []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return 0, fmt.Errorf("scanning user id: %w", err)
		}
		userIDs = append(userIDs, id)
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("reading user ids: %w", err)
	}

	created := 0
	for _, userID := range userIDs {
		dedupeKey := completion.DedupeKey(userID, taskID, false, expiredAt)
		tag, err := w.db.Exec(ctx, `
			INSERT INTO completions (
				id, user_id, task_id, completed_at, points_awarded,
				status, verification_status, fraud_score, needs_review,
				missed_at, dedupe_key, created_at, updated_at
			) VALUES ($1, $2, $3, $4, 0, 'expired', 'unverified', 0, false, $4, $5, NOW(), NOW())
			ON CONFLICT (dedupe_key) DO NOTHING`,
			uuid.New(), userID, taskID, expiredAt, dedupeKey)
		if err != nil {
			sweepErrorsTotal.WithLabelValues("mark_expired").Inc()
			w.logger.Error("Failed to insert expired completion",
				zap.String("user_id", userID.String()),
				zap.String("task_id", taskID.String()),
				zap.Error(err))
			continue
		}
		if tag.RowsAffected() > 0 {
			created++
			sweepProcessedTotal.WithLabelValues("mark_expired").Inc()
		}
	}
	return created, nil
}

func (w *Worker) publishAutoApproved(ctx context.Context, completionID, userID, taskID uuid.UUID, points int) {
	if w.bus == nil {
		return
	}
	data := eventbus.CompletionAutoApprovedData{
		CompletionID:  completionID,
		UserID:        userID,
		TaskID:        taskID,
		PointsAwarded: points,
		ApprovedAt:    time.Now().UTC(),
	}
	if err := w.bus.Publish(ctx, eventbus.SubjectCompletionAutoApproved, data); err != nil {
		w.logger.Warn("Failed to publish auto-approval event",
			zap.String("completion_id", completionID.String()),
			zap.Error(err))
	}
}

func (w *Worker) publishRejected(ctx context.Context, r StaleRejection) {
	if w.bus == nil {
		return
	}
	data := eventbus.CompletionReviewedData{
		CompletionID: r.ID,
		UserID:       r.UserID,
		TaskID:       r.TaskID,
		Action:       "reject",
		ReviewedAt:   time.Now().UTC(),
	}
	if err := w.bus.Publish(ctx, eventbus.SubjectCompletionRejected, data); err != nil {
		w.logger.Warn("Failed to publish stale rejection event",
			zap.String("completion_id", r.ID.String()),
			zap.Error(err))
	}
}
