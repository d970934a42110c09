package documents

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lamnguyendev/talentbridge-backend/pkg/db/models"
	"github.com/lamnguyendev/talentbridge-backend/pkg/enums"
	pkgerrors "github.com/lamnguyendev/talentbridge-backend/pkg/errors"
)

type fakeRepository struct {
	createFn     func(ctx context.Context, doc *models.ContractDocument) error
	listFn       func(ctx context.Context, contractPaymentID uuid.UUID) ([]models.ContractDocument, error)
	deleteFn     func(ctx context.Context, id uuid.UUID) error
	deleteByCPFn func(ctx context.Context, contractPaymentID uuid.UUID) error
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) Create(ctx context.Context, doc *models.ContractDocument) error {
	if f.createFn != nil {
		return f.createFn(ctx, doc)
	}
	return nil
}

func (f *fakeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

func (f *fakeRepository) ListByContractPayment(ctx context.Context, contractPaymentID uuid.UUID) ([]models.ContractDocument, error) {
	if f.listFn != nil {
		return f.listFn(ctx, contractPaymentID)
	}
	return nil, nil
}

func (f *fakeRepository) DeleteByContractPayment(ctx context.Context, contractPaymentID uuid.UUID) error {
	if f.deleteByCPFn != nil {
		return f.deleteByCPFn(ctx, contractPaymentID)
	}
	return nil
}

func TestCreateValidation(t *testing.T) {
	svc, err := NewService(&fakeRepository{})
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	tests := []struct {
		name  string
		input CreateInput
	}{
		{name: "missing contract payment", input: CreateInput{Kind: enums.DocumentKindContract, FileReference: "gs://b/o"}},
		{name: "invalid kind", input: CreateInput{ContractPaymentID: uuid.New(), Kind: enums.DocumentKind("receipt"), FileReference: "gs://b/o"}},
		{name: "blank file reference", input: CreateInput{ContractPaymentID: uuid.New(), Kind: enums.DocumentKindContract, FileReference: "  "}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.input)
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCreateStoresTrimmedFields(t *testing.T) {
	repo := &fakeRepository{}
	svc, _ := NewService(repo)

	var created *models.ContractDocument
	repo.createFn = func(ctx context.Context, doc *models.ContractDocument) error {
		created = doc
		return nil
	}

	cpID := uuid.New()
	doc, err := svc.Create(context.Background(), CreateInput{
		ContractPaymentID: cpID,
		Kind:              enums.DocumentKindInvoice,
		FileReference:     " gs://bucket/invoice.pdf ",
		Description:       " October invoice ",
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if created == nil || doc != created {
		t.Fatal("expected the created record to be returned")
	}
	if created.FileReference != "gs://bucket/invoice.pdf" {
		t.Fatalf("file reference not trimmed: %q", created.FileReference)
	}
	if created.Description == nil || *created.Description != "October invoice" {
		t.Fatalf("description not trimmed: %v", created.Description)
	}
	if created.ContractPaymentID != cpID || created.Kind != enums.DocumentKindInvoice {
		t.Fatalf("unexpected record: %+v", created)
	}
}

func TestHasKind(t *testing.T) {
	repo := &fakeRepository{}
	svc, _ := NewService(repo)

	cpID := uuid.New()
	repo.listFn = func(ctx context.Context, id uuid.UUID) ([]models.ContractDocument, error) {
		return []models.ContractDocument{
			{ContractPaymentID: id, Kind: enums.DocumentKindContract},
			{ContractPaymentID: id, Kind: enums.DocumentKindTimesheet},
		}, nil
	}

	ok, err := svc.HasKind(context.Background(), cpID, enums.DocumentKindTimesheet)
	if err != nil || !ok {
		t.Fatalf("expected timesheet found, ok=%v err=%v", ok, err)
	}
	ok, err = svc.HasKind(context.Background(), cpID, enums.DocumentKindAcceptance)
	if err != nil || ok {
		t.Fatalf("expected acceptance missing, ok=%v err=%v", ok, err)
	}
}

func TestRepoErrorsWrapAsDependency(t *testing.T) {
	repo := &fakeRepository{}
	svc, _ := NewService(repo)

	boom := errors.New("connection reset")
	repo.deleteByCPFn = func(ctx context.Context, id uuid.UUID) error { return boom }

	err := svc.DeleteByContractPayment(context.Background(), uuid.New())
	if !errors.Is(err, boom) {
		t.Fatalf("expected cause to be preserved, got %v", err)
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}
