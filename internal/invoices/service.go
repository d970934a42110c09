package invoices

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/lamnguyendev/talentbridge-backend/internal/contracts"
	"github.com/lamnguyendev/talentbridge-backend/internal/documents"
	"github.com/lamnguyendev/talentbridge-backend/pkg/config"
	"github.com/lamnguyendev/talentbridge-backend/pkg/db"
	"github.com/lamnguyendev/talentbridge-backend/pkg/db/models"
	"github.com/lamnguyendev/talentbridge-backend/pkg/enums"
	pkgerrors "github.com/lamnguyendev/talentbridge-backend/pkg/errors"
	"github.com/lamnguyendev/talentbridge-backend/pkg/logger"
	"github.com/lamnguyendev/talentbridge-backend/pkg/metrics"
	"github.com/lamnguyendev/talentbridge-backend/pkg/retry"
	"github.com/lamnguyendev/talentbridge-backend/pkg/storage/gcs"
)

const transitionRecordInvoice = "record_invoice"

const invoiceNumberConstraint = "uq_contract_payments_invoice_number"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service records issued invoices against contract payments. Recording is
// retried on write conflicts because invoicing races with concurrent
// transitions on the same record; each attempt re-reads and re-validates.
type Service interface {
	Record(ctx context.Context, cmd contracts.InvoiceCommand, file io.Reader) (*models.ContractPayment, error)
}

type service struct {
	repo     contracts.Repository
	docs     documents.Repository
	tx       txRunner
	uploader gcs.Uploader
	policy   retry.Policy
	logg     *logger.Logger
	metrics  *metrics.TransitionMetrics
	now      func() time.Time
}

// NewService builds the invoice recorder.
func NewService(
	repo contracts.Repository,
	docs documents.Repository,
	tx txRunner,
	uploader gcs.Uploader,
	cfg config.InvoiceConfig,
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
	if uploader == nil {
		return nil, fmt.Errorf("uploader required")
	}
	return &service{
		repo:     repo,
		docs:     docs,
		tx:       tx,
		uploader: uploader,
		policy:   retry.Policy{MaxAttempts: cfg.MaxAttempts, InitialBackoff: cfg.InitialBackoff},
		logg:     logg,
		metrics:  m,
		now:      time.Now,
	}, nil
}

func (s *service) Record(ctx context.Context, cmd contracts.InvoiceCommand, file io.Reader) (*models.ContractPayment, error) {
	start := s.now()
	cp, err := s.record(ctx, cmd, file)
	s.metrics.ObserveDuration(transitionRecordInvoice, s.now().Sub(start))
	if err != nil {
		s.metrics.IncFailure(transitionRecordInvoice)
		return nil, err
	}
	s.metrics.IncSuccess(transitionRecordInvoice)
	return cp, nil
}

func (s *service) record(ctx context.Context, cmd contracts.InvoiceCommand, file io.Reader) (*models.ContractPayment, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	if file == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invoice file is required")
	}

	// The file is uploaded once; the retried section only touches the
	// database, so an eventual failure does not multiply stored objects.
	objectName := fmt.Sprintf("invoices/%s/%s", cmd.ContractPaymentID, strings.TrimSpace(cmd.InvoiceFileName))
	fileRef, err := s.uploader.Upload(ctx, objectName, cmd.InvoiceContentType, file)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "uploading invoice file")
	}

	var cp *models.ContractPayment
	err = retry.Do(ctx, s.policy, s.shouldRetry, func(ctx context.Context) error {
		fresh, attemptErr := s.attempt(ctx, cmd, fileRef)
		if attemptErr != nil {
			if s.logg != nil && s.shouldRetry(attemptErr) {
				logCtx := s.logg.WithContractPaymentID(ctx, cmd.ContractPaymentID.String())
				s.logg.Warn(s.logg.WithTransition(logCtx, transitionRecordInvoice),
					"invoice write conflicted, retrying")
			}
			return attemptErr
		}
		cp = fresh
		return nil
	})
	if err != nil {
		return nil, s.classify(err)
	}
	return cp, nil
}

// attempt is one full read-validate-write cycle. Validation runs against a
// fresh read every time so a retry after a conflicting transition fails
// cleanly instead of overwriting newer state.
func (s *service) attempt(ctx context.Context, cmd contracts.InvoiceCommand, fileRef string) (*models.ContractPayment, error) {
	cp, err := s.repo.Get(ctx, cmd.ContractPaymentID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "contract payment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading contract payment")
	}

	if cp.PaymentStatus != enums.PaymentStatusProcessing {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("%s is not allowed from payment status %s", transitionRecordInvoice, cp.PaymentStatus))
	}
	if !cp.HasAcceptance() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invoicing requires a recorded acceptance")
	}

	number := strings.TrimSpace(cmd.InvoiceNumber)
	taken, err := s.repo.InvoiceNumberExists(ctx, number, cp.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking invoice number uniqueness")
	}
	if taken {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("invoice number %s is already in use", number))
	}
	if err := validateInvoiceDate(cmd.InvoiceDate, cp.PeriodStart, cp.PeriodEnd); err != nil {
		return nil, err
	}

	invoiceDate := cmd.InvoiceDate
	cp.InvoiceNumber = &number
	cp.InvoiceDate = &invoiceDate
	cp.PaymentStatus = enums.PaymentStatusInvoiced

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Update(ctx, cp); err != nil {
			return err
		}
		return s.docs.WithTx(tx).Create(ctx, &models.ContractDocument{
			ContractPaymentID: cp.ID,
			Kind:              enums.DocumentKindInvoice,
			FileReference:     fileRef,
		})
	})
	if err != nil {
		if db.IsUniqueViolation(err, invoiceNumberConstraint) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("invoice number %s is already in use", number))
		}
		return nil, err
	}
	return cp, nil
}

// Only write conflicts are worth another attempt; validation and state
// failures are deterministic.
func (s *service) shouldRetry(err error) bool {
	if typed := pkgerrors.As(err); typed != nil {
		return typed.Code() == pkgerrors.CodeConflict
	}
	return db.IsWriteConflict(err)
}

func (s *service) classify(err error) error {
	if typed := pkgerrors.As(err); typed != nil {
		return err
	}
	if db.IsWriteConflict(err) {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "recording invoice")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording invoice")
}

// validateInvoiceDate checks the calendar date alone, ignoring time of day
// and zone offsets on the stored period bounds.
func validateInvoiceDate(invoiceDate, periodStart, periodEnd time.Time) error {
	d := dateOnly(invoiceDate)
	if d.Before(dateOnly(periodStart)) || d.After(dateOnly(periodEnd)) {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("invoice date %s is outside the contract period %s to %s",
				d.Format("2006-01-02"),
				dateOnly(periodStart).Format("2006-01-02"),
				dateOnly(periodEnd).Format("2006-01-02")))
	}
	return nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
