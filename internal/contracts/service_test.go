package contracts

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/lamnguyendev/talentbridge-backend/internal/documents"
	"github.com/lamnguyendev/talentbridge-backend/pkg/db/models"
	"github.com/lamnguyendev/talentbridge-backend/pkg/enums"
	pkgerrors "github.com/lamnguyendev/talentbridge-backend/pkg/errors"
)

type fakeContractRepo struct {
	byID      map[uuid.UUID]*models.ContractPayment
	updateFn  func(ctx context.Context, cp *models.ContractPayment) error
	updated   []*models.ContractPayment
	linkedErr error
}

func newFakeContractRepo() *fakeContractRepo {
	return &fakeContractRepo{byID: map[uuid.UUID]*models.ContractPayment{}}
}

func (f *fakeContractRepo) add(cp *models.ContractPayment) {
	f.byID[cp.ID] = cp
}

func (f *fakeContractRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeContractRepo) Get(ctx context.Context, id uuid.UUID) (*models.ContractPayment, error) {
	cp, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *cp
	return &clone, nil
}

func (f *fakeContractRepo) GetLinked(ctx context.Context, cp *models.ContractPayment) (*models.ContractPayment, error) {
	if f.linkedErr != nil {
		return nil, f.linkedErr
	}
	for _, candidate := range f.byID {
		if candidate.ProjectPeriodID == cp.ProjectPeriodID &&
			candidate.TalentAssignmentID == cp.TalentAssignmentID &&
			candidate.Side == cp.Side.Opposite() {
			clone := *candidate
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeContractRepo) ListByProjectPeriod(ctx context.Context, projectPeriodID uuid.UUID) ([]models.ContractPayment, error) {
	var out []models.ContractPayment
	for _, cp := range f.byID {
		if cp.ProjectPeriodID == projectPeriodID {
			out = append(out, *cp)
		}
	}
	return out, nil
}

func (f *fakeContractRepo) Update(ctx context.Context, cp *models.ContractPayment) error {
	if f.updateFn != nil {
		if err := f.updateFn(ctx, cp); err != nil {
			return err
		}
	}
	cp.Version++
	clone := *cp
	f.byID[cp.ID] = &clone
	f.updated = append(f.updated, &clone)
	return nil
}

func (f *fakeContractRepo) InvoiceNumberExists(ctx context.Context, invoiceNumber string, excludeID uuid.UUID) (bool, error) {
	for _, cp := range f.byID {
		if cp.ID == excludeID {
			continue
		}
		if cp.InvoiceNumber != nil && *cp.InvoiceNumber == invoiceNumber {
			return true, nil
		}
	}
	return false, nil
}

type fakeDocsRepo struct {
	docs        []models.ContractDocument
	createErr   error
	deleteAllFn func(ctx context.Context, contractPaymentID uuid.UUID) error
}

func (f *fakeDocsRepo) WithTx(tx *gorm.DB) documents.Repository { return f }

func (f *fakeDocsRepo) Create(ctx context.Context, doc *models.ContractDocument) error {
	if f.createErr != nil {
		return f.createErr
	}
	doc.ID = uuid.New()
	f.docs = append(f.docs, *doc)
	return nil
}

func (f *fakeDocsRepo) Delete(ctx context.Context, id uuid.UUID) error {
	for i, doc := range f.docs {
		if doc.ID == id {
			f.docs = append(f.docs[:i], f.docs[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeDocsRepo) ListByContractPayment(ctx context.Context, contractPaymentID uuid.UUID) ([]models.ContractDocument, error) {
	var out []models.ContractDocument
	for _, doc := range f.docs {
		if doc.ContractPaymentID == contractPaymentID {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (f *fakeDocsRepo) DeleteByContractPayment(ctx context.Context, contractPaymentID uuid.UUID) error {
	if f.deleteAllFn != nil {
		return f.deleteAllFn(ctx, contractPaymentID)
	}
	var kept []models.ContractDocument
	for _, doc := range f.docs {
		if doc.ContractPaymentID != contractPaymentID {
			kept = append(kept, doc)
		}
	}
	f.docs = kept
	return nil
}

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func newTestService(t *testing.T) (Service, *fakeContractRepo, *fakeDocsRepo) {
	t.Helper()
	repo := newFakeContractRepo()
	docs := &fakeDocsRepo{}
	svc, err := NewService(repo, docs, fakeTxRunner{}, nil, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, repo, docs
}

func draftContract(side enums.ContractSide, periodID, assignmentID uuid.UUID) *models.ContractPayment {
	return &models.ContractPayment{
		ID:                 uuid.New(),
		ContractNumber:     "CP-" + uuid.NewString()[:8],
		Side:               side,
		ProjectPeriodID:    periodID,
		TalentAssignmentID: assignmentID,
		PeriodStart:        time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:          time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
		ContractStatus:     enums.ContractStatusDraft,
		PaymentStatus:      enums.PaymentStatusPending,
		StandardHours:      decimal.NewFromInt(160),
		Version:            1,
	}
}

func percentageSubmit(id uuid.UUID) SubmitCommand {
	return SubmitCommand{
		ContractPaymentID:     id,
		UnitPriceForeign:      decimal.NewFromInt(3200),
		CurrencyCode:          "USD",
		ExchangeRate:          decimal.NewFromInt(25000),
		CalculationMethod:     enums.CalculationMethodPercentage,
		PercentageValue:       decimal.NewFromInt(100),
		ContractFileReference: "gs://docs/contract.pdf",
	}
}

func expectCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected %s error, got %v", code, err)
	}
	if typed.Code() != code {
		t.Fatalf("expected %s, got %s (%v)", code, typed.Code(), err)
	}
}

func TestSubmitFromDraft(t *testing.T) {
	svc, repo, docs := newTestService(t)
	cp := draftContract(enums.ContractSideClient, uuid.New(), uuid.New())
	repo.add(cp)

	got, err := svc.Submit(context.Background(), percentageSubmit(cp.ID))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if got.ContractStatus != enums.ContractStatusSubmitted {
		t.Fatalf("expected Submitted, got %s", got.ContractStatus)
	}
	// 100% of 3200 at rate 25000.
	if !got.PlannedAmountVND.Equal(decimal.NewFromInt(80_000_000)) {
		t.Fatalf("unexpected planned amount %s", got.PlannedAmountVND)
	}
	if len(docs.docs) != 1 || docs.docs[0].Kind != enums.DocumentKindContract {
		t.Fatalf("expected a contract document, got %+v", docs.docs)
	}
}

func TestSubmitFromNeedMoreInformation(t *testing.T) {
	svc, repo, _ := newTestService(t)
	cp := draftContract(enums.ContractSideClient, uuid.New(), uuid.New())
	cp.ContractStatus = enums.ContractStatusNeedMoreInformation
	repo.add(cp)

	if _, err := svc.Submit(context.Background(), percentageSubmit(cp.ID)); err != nil {
		t.Fatalf("Submit from NeedMoreInformation: %v", err)
	}
}

func TestSubmitDisallowedStatuses(t *testing.T) {
	svc, repo, _ := newTestService(t)
	for _, status := range []enums.ContractStatus{
		enums.ContractStatusSubmitted,
		enums.ContractStatusVerified,
		enums.ContractStatusApproved,
	} {
		cp := draftContract(enums.ContractSideClient, uuid.New(), uuid.New())
		cp.ContractStatus = status
		repo.add(cp)

		_, err := svc.Submit(context.Background(), percentageSubmit(cp.ID))
		expectCode(t, err, pkgerrors.CodeStateConflict)
	}
}

func TestSubmitRequiresSupportingDocument(t *testing.T) {
	svc, repo, _ := newTestService(t)
	cp := draftContract(enums.ContractSideClient, uuid.New(), uuid.New())
	repo.add(cp)

	cmd := percentageSubmit(cp.ID)
	cmd.ContractFileReference = " "
	_, err := svc.Submit(context.Background(), cmd)
	expectCode(t, err, pkgerrors.CodeValidation)

	// Validation failures leave state untouched.
	stored, _ := repo.Get(context.Background(), cp.ID)
	if stored.ContractStatus != enums.ContractStatusDraft {
		t.Fatalf("state mutated on validation failure: %s", stored.ContractStatus)
	}
}

func TestRequestMoreInformation(t *testing.T) {
	svc, repo, _ := newTestService(t)
	cp := draftContract(enums.ContractSideClient, uuid.New(), uuid.New())
	repo.add(cp)

	got, err := svc.RequestMoreInformation(context.Background(), RequestInfoCommand{
		ContractPaymentID: cp.ID,
		Notes:             "missing signed rate card",
	})
	if err != nil {
		t.Fatalf("RequestMoreInformation: %v", err)
	}
	if got.ContractStatus != enums.ContractStatusNeedMoreInformation {
		t.Fatalf("expected NeedMoreInformation, got %s", got.ContractStatus)
	}
	if got.Notes == nil || *got.Notes != "missing signed rate card" {
		t.Fatalf("notes not stored: %v", got.Notes)
	}

	// Not reachable from Submitted.
	cp2 := draftContract(enums.ContractSideClient, uuid.New(), uuid.New())
	cp2.ContractStatus = enums.ContractStatusSubmitted
	repo.add(cp2)
	_, err = svc.RequestMoreInformation(context.Background(), RequestInfoCommand{ContractPaymentID: cp2.ID, Notes: "n"})
	expectCode(t, err, pkgerrors.CodeStateConflict)
}

func TestVerifyRequiresContractDocument(t *testing.T) {
	svc, repo, _ := newTestService(t)
	cp := draftContract(enums.ContractSideClient, uuid.New(), uuid.New())
	cp.ContractStatus = enums.ContractStatusSubmitted
	repo.add(cp)

	_, err := svc.Verify(context.Background(), VerifyCommand{ContractPaymentID: cp.ID})
	expectCode(t, err, pkgerrors.CodeValidation)
}

func TestVerifyTwiceFails(t *testing.T) {
	svc, repo, docs := newTestService(t)
	cp := draftContract(enums.ContractSideClient, uuid.New(), uuid.New())
	cp.ContractStatus = enums.ContractStatusSubmitted
	repo.add(cp)
	docs.docs = append(docs.docs, models.ContractDocument{
		ID:                uuid.New(),
		ContractPaymentID: cp.ID,
		Kind:              enums.DocumentKindContract,
	})

	if _, err := svc.Verify(context.Background(), VerifyCommand{ContractPaymentID: cp.ID}); err != nil {
		t.Fatalf("first Verify: %v", err)
	}
	_, err := svc.Verify(context.Background(), VerifyCommand{ContractPaymentID: cp.ID})
	expectCode(t, err, pkgerrors.CodeStateConflict)
}

func TestApproveRequiresVerified(t *testing.T) {
	svc, repo, _ := newTestService(t)
	cp := draftContract(enums.ContractSideClient, uuid.New(), uuid.New())
	cp.ContractStatus = enums.ContractStatusVerified
	repo.add(cp)

	got, err := svc.Approve(context.Background(), ApproveCommand{ContractPaymentID: cp.ID})
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if got.ContractStatus != enums.ContractStatusApproved {
		t.Fatalf("expected Approved, got %s", got.ContractStatus)
	}

	_, err = svc.Approve(context.Background(), ApproveCommand{ContractPaymentID: cp.ID})
	expectCode(t, err, pkgerrors.CodeStateConflict)
}

func TestGetNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Get(context.Background(), uuid.New())
	expectCode(t, err, pkgerrors.CodeNotFound)
}

func TestStaleVersionSurfacesAsConflict(t *testing.T) {
	svc, repo, _ := newTestService(t)
	cp := draftContract(enums.ContractSideClient, uuid.New(), uuid.New())
	cp.ContractStatus = enums.ContractStatusVerified
	repo.add(cp)
	repo.updateFn = func(ctx context.Context, cp *models.ContractPayment) error {
		return ErrStaleVersion
	}

	_, err := svc.Approve(context.Background(), ApproveCommand{ContractPaymentID: cp.ID})
	expectCode(t, err, pkgerrors.CodeConflict)
}
