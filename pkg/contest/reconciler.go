package contest

import (
	"context"
	"time"

	"github.com/framefest/platform/pkg/common/logger"
	"github.com/framefest/platform/pkg/common/models"
	"github.com/framefest/platform/pkg/observability/metrics"
)

// Reconciler corrects contests whose persisted status lags behind the phase
// the clock already implies. It is convergence-only: the single correction it
// performs is active/voting -> ended once end_date has passed. Draft contests
// are left alone because the draft override must keep winning in ResolvePhase.
type Reconciler struct {
	store Store
}

func NewReconciler(store Store) *Reconciler {
	return &Reconciler{store: store}
}

func stale(c models.Contest, now time.Time) bool {
	if c.Status == StatusEnded || c.Status == StatusDraft {
		return false
	}
	return now.After(c.EndDate)
}

// Sweep writes status=ended for every stale contest in the slice. Errors are
// logged and skipped; the returned count covers successful corrections only.
func (r *Reconciler) Sweep(ctx context.Context, contests []models.Contest, now time.Time) int {
	corrected := 0
	for _, c := range contests {
		if !stale(c, now) {
			continue
		}
		if err := r.store.UpdateStatus(ctx, c.ID, StatusEnded); err != nil {
			logger.Log.WithError(err).WithField("contest_id", c.ID).Warn("failed to reconcile contest status")
			continue
		}
		logger.Log.WithFields(map[string]interface{}{
			"contest_id": c.ID,
			"old_status": c.Status,
		}).Info("contest status reconciled to ended")
		metrics.ObserveReconciled()
		corrected++
	}
	return corrected
}

// SweepAsync runs Sweep on a detached context so the triggering read never
// blocks on the correction.
func (r *Reconciler) SweepAsync(contests []models.Contest) {
	now := time.Now().UTC()

	var targets []models.Contest
	for _, c := range contests {
		if stale(c, now) {
			targets = append(targets, c)
		}
	}
	if len(targets) == 0 {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		r.Sweep(ctx, targets, now)
	}()
}
