package uploadrepo

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	domain "framelink-support/internal/domain/upload"
	"framelink-support/internal/infrastructure/database/entities"
	"framelink-support/internal/utils/platformerrors"
)

// Repository handles uploaded file persistence.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, file *domain.UploadedFile) error {
	meta, err := json.Marshal(file.MetadataCache)
	if err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeInternal,
			"failed to encode metadata cache", err, "")
	}
	entity := entities.UploadedFile{
		ID:               file.ID,
		OpenAIFileID:     file.RemoteFileID,
		Filename:         file.Filename,
		OriginalFilename: file.OriginalFilename,
		FileSize:         file.FileSize,
		FileType:         file.FileType,
		Purpose:          file.Purpose,
		Status:           file.Status,
		Bytes:            file.Bytes,
		ArchiveKey:       file.ArchiveKey,
		MetadataCache:    datatypes.JSON(meta),
		CreatedAt:        file.CreatedAt,
		UploadedAt:       file.UploadedAt,
	}
	if err := r.db.WithContext(ctx).Create(&entity).Error; err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to create uploaded file", err, "")
	}
	return nil
}

func (r *Repository) List(ctx context.Context, limit int) ([]*domain.UploadedFile, error) {
	var rows []entities.UploadedFile
	err := r.db.WithContext(ctx).
		Order("uploaded_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to list uploaded files", err, "")
	}
	return mapEntities(rows), nil
}

func (r *Repository) ListRemoteFileIDs(ctx context.Context, limit int) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&entities.UploadedFile{}).
		Order("uploaded_at DESC").
		Order("id DESC").
		Limit(limit).
		Pluck("openai_file_id", &ids).Error
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to list remote file ids", err, "")
	}
	return ids, nil
}

func (r *Repository) FindByRemoteFileIDs(ctx context.Context, remoteIDs []string) ([]*domain.UploadedFile, error) {
	if len(remoteIDs) == 0 {
		return nil, nil
	}
	var rows []entities.UploadedFile
	if err := r.db.WithContext(ctx).Where("openai_file_id IN ?", remoteIDs).Find(&rows).Error; err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to find uploaded files", err, "")
	}
	return mapEntities(rows), nil
}

func (r *Repository) GetByRemoteFileID(ctx context.Context, remoteID string) (*domain.UploadedFile, error) {
	var row entities.UploadedFile
	err := r.db.WithContext(ctx).Where("openai_file_id = ?", remoteID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to get uploaded file", err, "")
	}
	file := mapEntity(row)
	return &file, nil
}

func (r *Repository) DeleteByRemoteFileID(ctx context.Context, remoteID string) (int64, error) {
	result := r.db.WithContext(ctx).Where("openai_file_id = ?", remoteID).Delete(&entities.UploadedFile{})
	if result.Error != nil {
		return 0, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to delete uploaded file", result.Error, "")
	}
	return result.RowsAffected, nil
}

func mapEntities(rows []entities.UploadedFile) []*domain.UploadedFile {
	files := make([]*domain.UploadedFile, 0, len(rows))
	for _, row := range rows {
		file := mapEntity(row)
		files = append(files, &file)
	}
	return files
}

func mapEntity(row entities.UploadedFile) domain.UploadedFile {
	file := domain.UploadedFile{
		ID:               row.ID,
		RemoteFileID:     row.OpenAIFileID,
		Filename:         row.Filename,
		OriginalFilename: row.OriginalFilename,
		FileSize:         row.FileSize,
		FileType:         row.FileType,
		Purpose:          row.Purpose,
		Status:           row.Status,
		Bytes:            row.Bytes,
		ArchiveKey:       row.ArchiveKey,
		CreatedAt:        row.CreatedAt,
		UploadedAt:       row.UploadedAt,
	}
	if len(row.MetadataCache) > 0 {
		_ = json.Unmarshal(row.MetadataCache, &file.MetadataCache)
	}
	return file
}
