package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/lamnguyendev/talentbridge-backend/internal/contracts"
	"github.com/lamnguyendev/talentbridge-backend/pkg/db"
	"github.com/lamnguyendev/talentbridge-backend/pkg/db/models"
	"github.com/lamnguyendev/talentbridge-backend/pkg/enums"
	pkgerrors "github.com/lamnguyendev/talentbridge-backend/pkg/errors"
	"github.com/lamnguyendev/talentbridge-backend/pkg/logger"
	"github.com/lamnguyendev/talentbridge-backend/pkg/metrics"
)

const transitionRecordPayment = "record_payment"

// Service applies received amounts against invoiced contract payments.
// Overpayment is never accepted; the paid total can only grow toward the
// actual amount and the record flips to Paid on exact settlement.
type Service interface {
	Record(ctx context.Context, cmd contracts.PaymentCommand) (*models.ContractPayment, error)
}

type service struct {
	repo    contracts.Repository
	logg    *logger.Logger
	metrics *metrics.TransitionMetrics
	now     func() time.Time
}

// NewService builds the payment recorder.
func NewService(repo contracts.Repository, logg *logger.Logger, m *metrics.TransitionMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("contract payment repository required")
	}
	return &service{repo: repo, logg: logg, metrics: m, now: time.Now}, nil
}

func (s *service) Record(ctx context.Context, cmd contracts.PaymentCommand) (*models.ContractPayment, error) {
	start := s.now()
	cp, err := s.record(ctx, cmd)
	s.metrics.ObserveDuration(transitionRecordPayment, s.now().Sub(start))
	if err != nil {
		s.metrics.IncFailure(transitionRecordPayment)
		return nil, err
	}
	s.metrics.IncSuccess(transitionRecordPayment)
	return cp, nil
}

func (s *service) record(ctx context.Context, cmd contracts.PaymentCommand) (*models.ContractPayment, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	cp, err := s.repo.Get(ctx, cmd.ContractPaymentID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "contract payment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading contract payment")
	}

	if cp.PaymentStatus != enums.PaymentStatusInvoiced && cp.PaymentStatus != enums.PaymentStatusPartiallyPaid {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("%s is not allowed from payment status %s", transitionRecordPayment, cp.PaymentStatus))
	}
	if cp.InvoiceDate == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "contract payment has no invoice date")
	}
	if dateOnly(cmd.PaymentDate).Before(dateOnly(*cp.InvoiceDate)) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("payment date %s precedes invoice date %s",
				dateOnly(cmd.PaymentDate).Format("2006-01-02"),
				dateOnly(*cp.InvoiceDate).Format("2006-01-02")))
	}

	remaining := cp.RemainingBalance()
	if cmd.ReceivedAmount.GreaterThan(remaining) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("received amount %s exceeds remaining balance %s",
				cmd.ReceivedAmount, remaining))
	}

	paymentDate := cmd.PaymentDate
	cp.TotalPaidAmount = cp.TotalPaidAmount.Add(cmd.ReceivedAmount)
	cp.LastPaymentDate = &paymentDate
	if cp.TotalPaidAmount.Equal(cp.ActualAmountVND) {
		cp.PaymentStatus = enums.PaymentStatusPaid
		cp.IsFinished = true
	} else {
		cp.PaymentStatus = enums.PaymentStatusPartiallyPaid
	}

	if err := s.repo.Update(ctx, cp); err != nil {
		if db.IsWriteConflict(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "recording payment")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording payment")
	}
	return cp, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
