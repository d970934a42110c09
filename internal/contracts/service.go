package contracts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/lamnguyendev/talentbridge-backend/internal/billing"
	"github.com/lamnguyendev/talentbridge-backend/internal/documents"
	"github.com/lamnguyendev/talentbridge-backend/pkg/db"
	"github.com/lamnguyendev/talentbridge-backend/pkg/db/models"
	"github.com/lamnguyendev/talentbridge-backend/pkg/enums"
	pkgerrors "github.com/lamnguyendev/talentbridge-backend/pkg/errors"
	"github.com/lamnguyendev/talentbridge-backend/pkg/logger"
	"github.com/lamnguyendev/talentbridge-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

const (
	TransitionSubmit       = "submit"
	TransitionRequestInfo  = "request_more_information"
	TransitionVerify       = "verify"
	TransitionApprove      = "approve"
	TransitionReject       = "reject"
	TransitionStartBilling = "start_billing"
	TransitionAcceptance   = "create_acceptance"
)

// Service validates and executes contract payment status transitions. It is
// the only writer of contract payment fields; every mutation happens through
// one of its transitions.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*models.ContractPayment, error)
	ListByProjectPeriod(ctx context.Context, projectPeriodID uuid.UUID) ([]models.ContractPayment, error)
	Submit(ctx context.Context, cmd SubmitCommand) (*models.ContractPayment, error)
	RequestMoreInformation(ctx context.Context, cmd RequestInfoCommand) (*models.ContractPayment, error)
	Verify(ctx context.Context, cmd VerifyCommand) (*models.ContractPayment, error)
	Approve(ctx context.Context, cmd ApproveCommand) (*models.ContractPayment, error)
	Reject(ctx context.Context, cmd RejectCommand) (*RejectResult, error)
	StartBilling(ctx context.Context, cmd StartBillingCommand) (*models.ContractPayment, error)
	RecordAcceptance(ctx context.Context, cmd AcceptanceCommand) (*models.ContractPayment, error)
}

type service struct {
	repo    Repository
	docs    documents.Repository
	tx      txRunner
	cascade *CascadeCoordinator
	logg    *logger.Logger
	metrics *metrics.TransitionMetrics
	now     func() time.Time
}

// NewService builds the contract payment state machine with its dependencies.
func NewService(
	repo Repository,
	docs documents.Repository,
	tx txRunner,
	logg *logger.Logger,
	m *metrics.TransitionMetrics,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("contract payment repository required")
	}
	if docs == nil {
		return nil, fmt.Errorf("document repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:    repo,
		docs:    docs,
		tx:      tx,
		cascade: NewCascadeCoordinator(repo, docs, logg, m),
		logg:    logg,
		metrics: m,
		now:     time.Now,
	}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.ContractPayment, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "contract payment id is required")
	}
	cp, err := s.repo.Get(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "contract payment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading contract payment")
	}
	return cp, nil
}

func (s *service) ListByProjectPeriod(ctx context.Context, projectPeriodID uuid.UUID) ([]models.ContractPayment, error) {
	if projectPeriodID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "project period id is required")
	}
	cps, err := s.repo.ListByProjectPeriod(ctx, projectPeriodID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing contract payments")
	}
	return cps, nil
}

func (s *service) Submit(ctx context.Context, cmd SubmitCommand) (*models.ContractPayment, error) {
	start := s.now()
	cp, err := s.submit(ctx, cmd)
	s.finish(TransitionSubmit, start, err)
	return cp, err
}

func (s *service) submit(ctx context.Context, cmd SubmitCommand) (*models.ContractPayment, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	cp, err := s.Get(ctx, cmd.ContractPaymentID)
	if err != nil {
		return nil, err
	}
	if cp.ContractStatus != enums.ContractStatusDraft && cp.ContractStatus != enums.ContractStatusNeedMoreInformation {
		return nil, transitionDisallowed(TransitionSubmit, cp.ContractStatus)
	}

	planned, err := billing.PlanAmount(billing.Input{
		Method:          cmd.CalculationMethod,
		UnitPrice:       cmd.UnitPriceForeign,
		ExchangeRate:    cmd.ExchangeRate,
		PercentageValue: cmd.PercentageValue,
		FixedAmount:     cmd.FixedAmount,
	})
	if err != nil {
		return nil, err
	}

	cp.UnitPriceForeign = cmd.UnitPriceForeign
	cp.CurrencyCode = strings.TrimSpace(cmd.CurrencyCode)
	cp.ExchangeRate = cmd.ExchangeRate
	cp.CalculationMethod = cmd.CalculationMethod
	cp.PercentageValue = cmd.PercentageValue
	cp.FixedAmount = cmd.FixedAmount
	if cmd.StandardHours.GreaterThan(decimal.Zero) {
		cp.StandardHours = cmd.StandardHours
	}
	cp.PlannedAmountVND = planned
	cp.ContractStatus = enums.ContractStatusSubmitted
	if notes := strings.TrimSpace(cmd.Notes); notes != "" {
		cp.Notes = &notes
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Update(ctx, cp); err != nil {
			return err
		}
		return s.docs.WithTx(tx).Create(ctx, &models.ContractDocument{
			ContractPaymentID: cp.ID,
			Kind:              enums.DocumentKindContract,
			FileReference:     strings.TrimSpace(cmd.ContractFileReference),
		})
	})
	if err != nil {
		return nil, classifyWriteError(err, "submitting contract payment")
	}
	return cp, nil
}

func (s *service) RequestMoreInformation(ctx context.Context, cmd RequestInfoCommand) (*models.ContractPayment, error) {
	start := s.now()
	cp, err := s.requestMoreInformation(ctx, cmd)
	s.finish(TransitionRequestInfo, start, err)
	return cp, err
}

func (s *service) requestMoreInformation(ctx context.Context, cmd RequestInfoCommand) (*models.ContractPayment, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	cp, err := s.Get(ctx, cmd.ContractPaymentID)
	if err != nil {
		return nil, err
	}
	if cp.ContractStatus != enums.ContractStatusDraft {
		return nil, transitionDisallowed(TransitionRequestInfo, cp.ContractStatus)
	}

	notes := strings.TrimSpace(cmd.Notes)
	cp.ContractStatus = enums.ContractStatusNeedMoreInformation
	cp.Notes = &notes

	if err := s.repo.Update(ctx, cp); err != nil {
		return nil, classifyWriteError(err, "requesting more information")
	}
	return cp, nil
}

func (s *service) Verify(ctx context.Context, cmd VerifyCommand) (*models.ContractPayment, error) {
	start := s.now()
	cp, err := s.verify(ctx, cmd)
	s.finish(TransitionVerify, start, err)
	return cp, err
}

func (s *service) verify(ctx context.Context, cmd VerifyCommand) (*models.ContractPayment, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	cp, err := s.Get(ctx, cmd.ContractPaymentID)
	if err != nil {
		return nil, err
	}
	// A second verify call fails rather than silently succeeding.
	if cp.ContractStatus != enums.ContractStatusSubmitted {
		return nil, transitionDisallowed(TransitionVerify, cp.ContractStatus)
	}

	hasContract, err := s.hasDocumentKind(ctx, cp.ID, enums.DocumentKindContract)
	if err != nil {
		return nil, err
	}
	if !hasContract {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "verification requires the supporting contract document")
	}

	cp.ContractStatus = enums.ContractStatusVerified
	if err := s.repo.Update(ctx, cp); err != nil {
		return nil, classifyWriteError(err, "verifying contract payment")
	}
	return cp, nil
}

func (s *service) Approve(ctx context.Context, cmd ApproveCommand) (*models.ContractPayment, error) {
	start := s.now()
	cp, err := s.approve(ctx, cmd)
	s.finish(TransitionApprove, start, err)
	return cp, err
}

func (s *service) approve(ctx context.Context, cmd ApproveCommand) (*models.ContractPayment, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	cp, err := s.Get(ctx, cmd.ContractPaymentID)
	if err != nil {
		return nil, err
	}
	if cp.ContractStatus != enums.ContractStatusVerified {
		return nil, transitionDisallowed(TransitionApprove, cp.ContractStatus)
	}

	cp.ContractStatus = enums.ContractStatusApproved
	if err := s.repo.Update(ctx, cp); err != nil {
		return nil, classifyWriteError(err, "approving contract payment")
	}
	return cp, nil
}

// RejectResult pairs the authoritative client-side rejection with the
// best-effort warnings collected while cleaning up the partner side.
type RejectResult struct {
	ContractPayment *models.ContractPayment
	Warnings        []Warning
}

func (s *service) Reject(ctx context.Context, cmd RejectCommand) (*RejectResult, error) {
	start := s.now()
	result, err := s.reject(ctx, cmd)
	s.finish(TransitionReject, start, err)
	return result, err
}

func (s *service) reject(ctx context.Context, cmd RejectCommand) (*RejectResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	cp, err := s.Get(ctx, cmd.ContractPaymentID)
	if err != nil {
		return nil, err
	}
	if cp.ContractStatus != enums.ContractStatusSubmitted && cp.ContractStatus != enums.ContractStatusVerified {
		return nil, transitionDisallowed(TransitionReject, cp.ContractStatus)
	}

	reason := strings.TrimSpace(cmd.Reason)
	cp.ContractStatus = enums.ContractStatusDraft
	cp.RejectionReason = &reason

	// The primary rejection must land before any cleanup; cascade failures
	// never undo it.
	if err := s.repo.Update(ctx, cp); err != nil {
		return nil, classifyWriteError(err, "rejecting contract payment")
	}

	warnings := s.cascade.CleanupAfterRejection(ctx, cp, reason)
	return &RejectResult{ContractPayment: cp, Warnings: warnings}, nil
}

func (s *service) StartBilling(ctx context.Context, cmd StartBillingCommand) (*models.ContractPayment, error) {
	start := s.now()
	cp, err := s.startBilling(ctx, cmd)
	s.finish(TransitionStartBilling, start, err)
	return cp, err
}

func (s *service) startBilling(ctx context.Context, cmd StartBillingCommand) (*models.ContractPayment, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	cp, err := s.Get(ctx, cmd.ContractPaymentID)
	if err != nil {
		return nil, err
	}
	if cp.ContractStatus != enums.ContractStatusApproved {
		return nil, transitionDisallowed(TransitionStartBilling, cp.ContractStatus)
	}
	if cp.PaymentStatus != enums.PaymentStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("billing already started (payment status %s)", cp.PaymentStatus))
	}

	// A client billing obligation cannot start without its sourcing
	// obligation approved, and vice versa.
	linked, err := s.repo.GetLinked(ctx, cp)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "linked contract payment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading linked contract payment")
	}
	if linked.ContractStatus != enums.ContractStatusApproved {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("linked %s contract payment must be Approved, is %s", linked.Side, linked.ContractStatus))
	}

	breakdown, err := billing.Compute(billing.Input{
		Method:           cp.CalculationMethod,
		BillableHours:    cmd.BillableHours,
		UnitPrice:        cp.UnitPriceForeign,
		ExchangeRate:     cp.ExchangeRate,
		StandardHours:    cp.StandardHours,
		PercentageValue:  cp.PercentageValue,
		FixedAmount:      cp.FixedAmount,
		PlannedAmountVND: cp.PlannedAmountVND,
	})
	if err != nil {
		return nil, err
	}

	cp.ReportedHours = cmd.ReportedHours
	cp.BillableHours = cmd.BillableHours
	cp.ManMonthCoefficient = breakdown.ManMonthCoefficient
	cp.ActualAmountVND = breakdown.ActualAmountVND
	cp.PaymentStatus = enums.PaymentStatusProcessing

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Update(ctx, cp); err != nil {
			return err
		}
		return s.docs.WithTx(tx).Create(ctx, &models.ContractDocument{
			ContractPaymentID: cp.ID,
			Kind:              enums.DocumentKindTimesheet,
			FileReference:     strings.TrimSpace(cmd.TimesheetFileReference),
		})
	})
	if err != nil {
		// Includes the race where the partner was rejected between the
		// precondition check and this write: the caller re-validates.
		return nil, classifyWriteError(err, "starting billing")
	}
	return cp, nil
}

func (s *service) RecordAcceptance(ctx context.Context, cmd AcceptanceCommand) (*models.ContractPayment, error) {
	start := s.now()
	cp, err := s.recordAcceptance(ctx, cmd)
	s.finish(TransitionAcceptance, start, err)
	return cp, err
}

func (s *service) recordAcceptance(ctx context.Context, cmd AcceptanceCommand) (*models.ContractPayment, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	cp, err := s.Get(ctx, cmd.ContractPaymentID)
	if err != nil {
		return nil, err
	}
	if cp.PaymentStatus != enums.PaymentStatusProcessing {
		return nil, transitionDisallowed(TransitionAcceptance, cp.PaymentStatus)
	}
	if cp.BillableHours.LessThanOrEqual(decimal.Zero) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "acceptance requires billable hours")
	}
	if cp.HasAcceptance() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "acceptance already recorded")
	}

	acceptedAt := s.now()
	cp.AcceptanceAt = &acceptedAt

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Update(ctx, cp); err != nil {
			return err
		}
		return s.docs.WithTx(tx).Create(ctx, &models.ContractDocument{
			ContractPaymentID: cp.ID,
			Kind:              enums.DocumentKindAcceptance,
			FileReference:     strings.TrimSpace(cmd.AcceptanceFileReference),
		})
	})
	if err != nil {
		return nil, classifyWriteError(err, "recording acceptance")
	}
	return cp, nil
}

func (s *service) hasDocumentKind(ctx context.Context, contractPaymentID uuid.UUID, kind enums.DocumentKind) (bool, error) {
	docs, err := s.docs.ListByContractPayment(ctx, contractPaymentID)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing documents")
	}
	for _, doc := range docs {
		if doc.Kind == kind {
			return true, nil
		}
	}
	return false, nil
}

func (s *service) finish(transition string, start time.Time, err error) {
	s.metrics.ObserveDuration(transition, s.now().Sub(start))
	if err != nil {
		s.metrics.IncFailure(transition)
		return
	}
	s.metrics.IncSuccess(transition)
}

func transitionDisallowed(transition string, status fmt.Stringer) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeStateConflict,
		fmt.Sprintf("%s is not allowed from status %s", transition, status))
}

// classifyWriteError maps store failures onto the error taxonomy: transient
// write conflicts become retryable CodeConflict, everything else is terminal.
func classifyWriteError(err error, action string) error {
	if err == nil {
		return nil
	}
	if typed := pkgerrors.As(err); typed != nil {
		return err
	}
	if db.IsWriteConflict(err) {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, action)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, action)
}
