package documents

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lamnguyendev/talentbridge-backend/pkg/db/models"
)

// Repository manages persistence for contract documents.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, doc *models.ContractDocument) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByContractPayment(ctx context.Context, contractPaymentID uuid.UUID) ([]models.ContractDocument, error)
	DeleteByContractPayment(ctx context.Context, contractPaymentID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a document repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, doc *models.ContractDocument) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.ContractDocument{}).Error
}

func (r *repository) ListByContractPayment(ctx context.Context, contractPaymentID uuid.UUID) ([]models.ContractDocument, error) {
	var docs []models.ContractDocument
	if err := r.db.WithContext(ctx).
		Where("contract_payment_id = ?", contractPaymentID).
		Order("created_at ASC").
		Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *repository) DeleteByContractPayment(ctx context.Context, contractPaymentID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("contract_payment_id = ?", contractPaymentID).
		Delete(&models.ContractDocument{}).Error
}
