package contracts

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/lamnguyendev/talentbridge-backend/internal/documents"
	"github.com/lamnguyendev/talentbridge-backend/pkg/db"
	"github.com/lamnguyendev/talentbridge-backend/pkg/db/models"
	"github.com/lamnguyendev/talentbridge-backend/pkg/enums"
	"github.com/lamnguyendev/talentbridge-backend/pkg/logger"
	"github.com/lamnguyendev/talentbridge-backend/pkg/metrics"
)

// Warning is a cascade step that failed without failing the rejection itself.
type Warning struct {
	Step string
	Err  error
}

func (w Warning) Error() string {
	return fmt.Sprintf("%s: %v", w.Step, w.Err)
}

// CascadeCoordinator re-synchronizes the partner-side record and both sides'
// documents after a client rejection. The rejection is the authoritative,
// user-intended action; everything here is best effort and independently
// fallible. A later step failing never rolls back an earlier one.
type CascadeCoordinator struct {
	repo    Repository
	docs    documents.Repository
	logg    *logger.Logger
	metrics *metrics.TransitionMetrics
}

// NewCascadeCoordinator wires the coordinator used after reject transitions.
func NewCascadeCoordinator(repo Repository, docs documents.Repository, logg *logger.Logger, m *metrics.TransitionMetrics) *CascadeCoordinator {
	return &CascadeCoordinator{repo: repo, docs: docs, logg: logg, metrics: m}
}

// CleanupAfterRejection deletes the rejected record's documents, rejects the
// linked record if a backend-side cascade has not already done so, and deletes
// its documents too. Returns the collected warnings.
func (c *CascadeCoordinator) CleanupAfterRejection(ctx context.Context, rejected *models.ContractPayment, reason string) []Warning {
	var warnings []Warning
	warn := func(step string, err error) {
		warnings = append(warnings, Warning{Step: step, Err: err})
		c.metrics.IncCascadeWarning()
	}

	if err := c.docs.DeleteByContractPayment(ctx, rejected.ID); err != nil {
		warn("delete rejected-side documents", err)
	}

	linked, err := c.repo.GetLinked(ctx, rejected)
	switch {
	case err != nil && db.IsNotFound(err):
		warn("locate linked contract payment", err)
	case err != nil:
		warn("load linked contract payment", err)
	default:
		// Already Draft means the backend cascade won the race; that is
		// success, not an error.
		if linked.ContractStatus != enums.ContractStatusDraft {
			linked.ContractStatus = enums.ContractStatusDraft
			linked.RejectionReason = &reason
			if err := c.repo.Update(ctx, linked); err != nil {
				warn("reject linked contract payment", err)
			}
		}
		if err := c.docs.DeleteByContractPayment(ctx, linked.ID); err != nil {
			warn("delete linked-side documents", err)
		}
	}

	if len(warnings) > 0 && c.logg != nil {
		errs := make([]error, 0, len(warnings))
		for _, w := range warnings {
			errs = append(errs, w)
		}
		logCtx := c.logg.WithContractPaymentID(ctx, rejected.ID.String())
		logCtx = c.logg.WithTransition(logCtx, TransitionReject)
		c.logg.Warn(c.logg.WithField(logCtx, "cascade_warnings", multierr.Combine(errs...).Error()),
			"rejection cascade completed with warnings")
	}

	return warnings
}
