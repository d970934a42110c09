package contracts

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lamnguyendev/talentbridge-backend/pkg/db/models"
)

// ErrStaleVersion surfaces when an optimistic update matched zero rows: the
// record changed between our read and our write. pkg/db classifies it as a
// write conflict.
var ErrStaleVersion = errors.New("stale contract payment version")

// Repository manages persistence for contract payments.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Get(ctx context.Context, id uuid.UUID) (*models.ContractPayment, error)
	GetLinked(ctx context.Context, cp *models.ContractPayment) (*models.ContractPayment, error)
	ListByProjectPeriod(ctx context.Context, projectPeriodID uuid.UUID) ([]models.ContractPayment, error)
	Update(ctx context.Context, cp *models.ContractPayment) error
	InvoiceNumberExists(ctx context.Context, invoiceNumber string, excludeID uuid.UUID) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a contract payment repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*models.ContractPayment, error) {
	var cp models.ContractPayment
	if err := r.db.WithContext(ctx).First(&cp, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &cp, nil
}

// GetLinked fetches the opposite-side record sharing the
// (project period, talent assignment) pair.
func (r *repository) GetLinked(ctx context.Context, cp *models.ContractPayment) (*models.ContractPayment, error) {
	var linked models.ContractPayment
	err := r.db.WithContext(ctx).
		Where("project_period_id = ? AND talent_assignment_id = ? AND side = ?",
			cp.ProjectPeriodID, cp.TalentAssignmentID, cp.Side.Opposite()).
		First(&linked).Error
	if err != nil {
		return nil, err
	}
	return &linked, nil
}

func (r *repository) ListByProjectPeriod(ctx context.Context, projectPeriodID uuid.UUID) ([]models.ContractPayment, error) {
	var cps []models.ContractPayment
	if err := r.db.WithContext(ctx).
		Where("project_period_id = ?", projectPeriodID).
		Order("created_at ASC").
		Find(&cps).Error; err != nil {
		return nil, err
	}
	return cps, nil
}

// Update writes the full record guarded by its version; a zero-row match
// means another writer got there first.
func (r *repository) Update(ctx context.Context, cp *models.ContractPayment) error {
	currentVersion := cp.Version
	cp.Version = currentVersion + 1

	res := r.db.WithContext(ctx).
		Model(cp).
		Where("version = ?", currentVersion).
		Select("*").
		Omit("id", "created_at").
		Updates(cp)
	if res.Error != nil {
		cp.Version = currentVersion
		return res.Error
	}
	if res.RowsAffected == 0 {
		cp.Version = currentVersion
		return ErrStaleVersion
	}
	return nil
}

func (r *repository) InvoiceNumberExists(ctx context.Context, invoiceNumber string, excludeID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ContractPayment{}).
		Where("invoice_number = ? AND id <> ?", invoiceNumber, excludeID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
