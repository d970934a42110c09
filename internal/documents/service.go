package documents

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/lamnguyendev/talentbridge-backend/pkg/db/models"
	"github.com/lamnguyendev/talentbridge-backend/pkg/enums"
	pkgerrors "github.com/lamnguyendev/talentbridge-backend/pkg/errors"
)

// Service is the document collaborator: it records which uploaded artifacts
// belong to which contract payment. Storage of the file bytes themselves is
// someone else's problem.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.ContractDocument, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListByContractPayment(ctx context.Context, contractPaymentID uuid.UUID) ([]models.ContractDocument, error)
	DeleteByContractPayment(ctx context.Context, contractPaymentID uuid.UUID) error
	HasKind(ctx context.Context, contractPaymentID uuid.UUID, kind enums.DocumentKind) (bool, error)
}

type service struct {
	repo Repository
}

// CreateInput captures the data a document record requires.
type CreateInput struct {
	ContractPaymentID uuid.UUID
	Kind              enums.DocumentKind
	FileReference     string
	Description       string
}

// NewService wires a document service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("document repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.ContractDocument, error) {
	if input.ContractPaymentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "contract payment id is required")
	}
	if !input.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid document kind %q", input.Kind))
	}
	fileRef := strings.TrimSpace(input.FileReference)
	if fileRef == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file reference is required")
	}

	doc := &models.ContractDocument{
		ContractPaymentID: input.ContractPaymentID,
		Kind:              input.Kind,
		FileReference:     fileRef,
	}
	if desc := strings.TrimSpace(input.Description); desc != "" {
		doc.Description = &desc
	}

	if err := s.repo.Create(ctx, doc); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating document record")
	}
	return doc, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "document id is required")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deleting document record")
	}
	return nil
}

func (s *service) ListByContractPayment(ctx context.Context, contractPaymentID uuid.UUID) ([]models.ContractDocument, error) {
	if contractPaymentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "contract payment id is required")
	}
	docs, err := s.repo.ListByContractPayment(ctx, contractPaymentID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing document records")
	}
	return docs, nil
}

func (s *service) DeleteByContractPayment(ctx context.Context, contractPaymentID uuid.UUID) error {
	if contractPaymentID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "contract payment id is required")
	}
	if err := s.repo.DeleteByContractPayment(ctx, contractPaymentID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deleting document records")
	}
	return nil
}

func (s *service) HasKind(ctx context.Context, contractPaymentID uuid.UUID, kind enums.DocumentKind) (bool, error) {
	docs, err := s.ListByContractPayment(ctx, contractPaymentID)
	if err != nil {
		return false, err
	}
	for _, doc := range docs {
		if doc.Kind == kind {
			return true, nil
		}
	}
	return false, nil
}
