package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/lamnguyendev/talentbridge-backend/pkg/enums"
)

// ContractDocument references an uploaded artifact attached to a contract
// payment. The file itself lives in object storage; FileReference is the
// opaque handle returned by the storage collaborator.
type ContractDocument struct {
	ID                uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ContractPaymentID uuid.UUID          `gorm:"column:contract_payment_id;type:uuid;not null;index"`
	Kind              enums.DocumentKind `gorm:"column:kind;type:document_kind;not null"`
	FileReference     string             `gorm:"column:file_reference;not null"`
	Description       *string            `gorm:"column:description"`
	CreatedAt         time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
