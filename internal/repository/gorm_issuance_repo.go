package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/weiawesome/wes-idgen/pkg/log"
)

// IssuanceModel is the GORM model for the id_issuances table. ID is filled
// by the database.UseIDGenerator callback.
type IssuanceModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement:false"`
	Kind      string    `gorm:"type:varchar(16);index;not null"`
	Count     int       `gorm:"not null"`
	FirstID   string    `gorm:"type:varchar(64);not null"`
	LastID    string    `gorm:"type:varchar(64);not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// TableName specifies the table name for IssuanceModel.
func (IssuanceModel) TableName() string {
	return "id_issuances"
}

func (m *IssuanceModel) toDomain() *Issuance {
	return &Issuance{
		ID:        m.ID,
		Kind:      m.Kind,
		Count:     m.Count,
		FirstID:   m.FirstID,
		LastID:    m.LastID,
		CreatedAt: m.CreatedAt,
	}
}

// GormIssuanceRepository implements IssuanceRepository using GORM.
type GormIssuanceRepository struct {
	db *gorm.DB
}

// NewGormIssuanceRepository creates a new GORM-based issuance repository.
func NewGormIssuanceRepository(db *gorm.DB) *GormIssuanceRepository {
	return &GormIssuanceRepository{db: db}
}

// Record stores issuance and copies the assigned ID and timestamp back.
func (r *GormIssuanceRepository) Record(ctx context.Context, issuance *Issuance) error {
	l := log.Ctx(ctx)

	model := &IssuanceModel{
		Kind:    issuance.Kind,
		Count:   issuance.Count,
		FirstID: issuance.FirstID,
		LastID:  issuance.LastID,
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		l.Error().Err(err).Str(log.FieldIDKind, issuance.Kind).Msg("failed to record issuance")
		return err
	}

	issuance.ID = model.ID
	issuance.CreatedAt = model.CreatedAt
	l.Debug().Int64(log.FieldID, model.ID).Int(log.FieldIDCount, model.Count).Msg("issuance recorded")
	return nil
}

// ListRecent returns the newest issuances first.
func (r *GormIssuanceRepository) ListRecent(ctx context.Context, limit int) ([]*Issuance, error) {
	var models []IssuanceModel
	err := r.db.WithContext(ctx).
		Order("id DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	issuances := make([]*Issuance, 0, len(models))
	for i := range models {
		issuances = append(issuances, models[i].toDomain())
	}
	return issuances, nil
}
