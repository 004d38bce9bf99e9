package contactrepo

import (
	"context"
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	domain "framelink-support/internal/domain/contact"
	"framelink-support/internal/infrastructure/database/entities"
	"framelink-support/internal/utils/platformerrors"
)

// Repository appends contact records.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, record *domain.Record) error {
	citations := record.Citations
	if citations == nil {
		citations = []domain.Citation{}
	}
	raw, err := json.Marshal(citations)
	if err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeInternal,
			"failed to encode citations", err, "")
	}

	entity := entities.Contact{
		ID:        record.ID,
		Username:  optional(record.Username),
		Subject:   optional(record.Subject),
		Question:  record.Question,
		Answer:    record.Answer,
		Citations: datatypes.JSON(raw),
		Source:    string(record.Source),
		Date:      record.Date,
		CreatedAt: record.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&entity).Error; err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to create contact record", err, "")
	}
	return nil
}

// get loads a record by id, or nil when absent.
func (r *Repository) get(ctx context.Context, id string) (*domain.Record, error) {
	var rows []entities.Contact
	if err := r.db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&rows).Error; err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to get contact record", err, "")
	}
	if len(rows) == 0 {
		return nil, nil
	}
	row := rows[0]
	record := &domain.Record{
		ID:        row.ID,
		Question:  row.Question,
		Answer:    row.Answer,
		Source:    domain.Source(row.Source),
		Date:      row.Date,
		CreatedAt: row.CreatedAt,
	}
	if row.Username != nil {
		record.Username = *row.Username
	}
	if row.Subject != nil {
		record.Subject = *row.Subject
	}
	if len(row.Citations) > 0 {
		_ = json.Unmarshal(row.Citations, &record.Citations)
	}
	return record, nil
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
