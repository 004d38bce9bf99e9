package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"framelink-support/internal/config"
	"framelink-support/internal/infrastructure/metrics"
	"framelink-support/internal/infrastructure/observability"
	"framelink-support/internal/utils/platformerrors"
	"framelink-support/internal/utils/recordid"
)

const (
	PurposeAssistants = "assistants"
	StatusUploaded    = "uploaded"
	StatusProcessed   = "processed"
)

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Service orchestrates document uploads to the remote file store.
type Service struct {
	cfg     *config.Config
	repo    Repository
	remote  RemoteStore
	archive Archive
	log     zerolog.Logger
}

// NewService wires the upload service. archive may be nil.
func NewService(cfg *config.Config, repo Repository, remote RemoteStore, archive Archive, log zerolog.Logger) *Service {
	return &Service{
		cfg:     cfg,
		repo:    repo,
		remote:  remote,
		archive: archive,
		log:     log.With().Str("component", "upload-service").Logger(),
	}
}

// Upload validates the file, forwards it to the remote store and records it locally.
func (s *Service) Upload(ctx context.Context, in FileUpload) (*UploadedFile, error) {
	ctx, span := observability.StartUploadSpan(ctx, "create", attribute.String("upload.filename", in.Filename))
	defer span.End()

	if !s.remote.Configured() {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeUnavailable,
			"OpenAI API key not configured", nil, "")
	}
	if in.Body == nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"No file provided", nil, "")
	}

	limit := s.cfg.UploadMaxBytes
	tooLarge := platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
		fmt.Sprintf("File size exceeds %s limit", FormatLimit(limit)), nil, "")
	if in.Size > limit {
		metrics.RecordUpload(metricContentType(in.ContentType), "rejected", 0)
		return nil, tooLarge
	}

	data, err := io.ReadAll(io.LimitReader(in.Body, limit+1))
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"Failed to read uploaded file", err, "")
	}
	if int64(len(data)) > limit {
		metrics.RecordUpload(metricContentType(in.ContentType), "rejected", 0)
		return nil, tooLarge
	}

	contentType := ResolveContentType(in.ContentType, in.Filename, data)
	span.SetAttributes(attribute.String("upload.content_type", contentType), attribute.Int("upload.bytes", len(data)))
	if !IsAllowedType(contentType) {
		metrics.RecordUpload(metricContentType(contentType), "rejected", 0)
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			unsupportedTypeMessage(contentType), nil, "")
	}

	remoteFile, err := s.remote.UploadFile(ctx, in.Filename, data)
	if err != nil {
		observability.RecordError(span, err)
		metrics.RecordUpload(metricContentType(contentType), "failed", 0)
		return nil, s.remoteUploadError(ctx, err)
	}
	observability.AddStatusTransition(span, "received", remoteFile.Status)

	now := time.Now().UTC()
	size := int64(len(data))
	record := &UploadedFile{
		ID:               recordid.New(recordid.PrefixUpload),
		RemoteFileID:     remoteFile.ID,
		Filename:         firstNonEmpty(remoteFile.Filename, in.Filename),
		OriginalFilename: in.Filename,
		FileSize:         size,
		FileType:         contentType,
		Purpose:          firstNonEmpty(remoteFile.Purpose, PurposeAssistants),
		Status:           firstNonEmpty(remoteFile.Status, StatusUploaded),
		Bytes:            remoteFile.Bytes,
		MetadataCache:    BuildMetadataCache(in.Filename, contentType, size),
		CreatedAt:        now,
		UploadedAt:       now,
	}
	if !remoteFile.CreatedAt.IsZero() {
		record.CreatedAt = remoteFile.CreatedAt.UTC()
	}
	if record.Bytes == 0 {
		record.Bytes = size
	}

	if s.archive != nil {
		key := archiveKey(record.ID, in.Filename)
		if err := s.archive.Put(ctx, key, bytes.NewReader(data), size, contentType); err != nil {
			metrics.RecordArchiveOperation("put", "failed")
			s.log.Warn().Err(err).Str("file_id", record.ID).Msg("archive copy failed")
		} else {
			metrics.RecordArchiveOperation("put", "success")
			record.ArchiveKey = key
		}
	}

	if err := s.repo.Create(ctx, record); err != nil {
		observability.RecordError(span, err)
		metrics.RecordUpload(metricContentType(contentType), "failed", 0)
		if delErr := s.remote.DeleteFile(ctx, remoteFile.ID); delErr != nil {
			s.log.Warn().Err(delErr).Str("openai_file_id", remoteFile.ID).Msg("failed to remove orphaned remote file")
		}
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "Failed to upload file")
	}

	metrics.RecordUpload(metricContentType(contentType), "success", size)
	s.log.Info().
		Str("file_id", record.ID).
		Str("openai_file_id", record.RemoteFileID).
		Str("file_type", contentType).
		Int64("bytes", size).
		Msg("file uploaded")

	return record, nil
}

// List returns the most recent uploads, newest first.
func (s *Service) List(ctx context.Context) ([]*UploadedFile, error) {
	ctx, span := observability.StartUploadSpan(ctx, "list")
	defer span.End()

	files, err := s.repo.List(ctx, s.cfg.UploadListLimit)
	if err != nil {
		observability.RecordError(span, err)
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "Failed to fetch files")
	}
	return files, nil
}

// Delete removes a file from the remote store, then its local record.
// Remote failures are logged and do not block local deletion.
func (s *Service) Delete(ctx context.Context, fileID, remoteFileID string) (int64, error) {
	ctx, span := observability.StartUploadSpan(ctx, "delete",
		attribute.String("upload.file_id", fileID),
		attribute.String("upload.openai_file_id", remoteFileID),
	)
	defer span.End()

	fileID = strings.TrimSpace(fileID)
	remoteFileID = strings.TrimSpace(remoteFileID)
	if fileID == "" || remoteFileID == "" {
		return 0, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"File ID and OpenAI File ID are required", nil, "")
	}

	existing, err := s.repo.GetByRemoteFileID(ctx, remoteFileID)
	if err != nil {
		observability.RecordError(span, err)
		return 0, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "Failed to delete file")
	}

	if s.remote.Configured() {
		if err := s.remote.DeleteFile(ctx, remoteFileID); err != nil {
			s.log.Warn().Err(err).Str("openai_file_id", remoteFileID).Msg("failed to delete remote file, continuing with local delete")
		}
	}

	deleted, err := s.repo.DeleteByRemoteFileID(ctx, remoteFileID)
	if err != nil {
		observability.RecordError(span, err)
		return 0, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "Failed to delete file")
	}
	if deleted == 0 {
		return 0, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound,
			"File not found in database", nil, "")
	}

	if s.archive != nil && existing != nil && existing.ArchiveKey != "" {
		if err := s.archive.Delete(ctx, existing.ArchiveKey); err != nil {
			metrics.RecordArchiveOperation("delete", "failed")
			s.log.Warn().Err(err).Str("archive_key", existing.ArchiveKey).Msg("archive delete failed")
		} else {
			metrics.RecordArchiveOperation("delete", "success")
		}
	}

	s.log.Info().Str("openai_file_id", remoteFileID).Int64("deleted_count", deleted).Msg("file deleted")
	return deleted, nil
}

// RecentRemoteFileIDs returns remote ids of the most recent uploads for question attachments.
func (s *Service) RecentRemoteFileIDs(ctx context.Context, limit int) ([]string, error) {
	ids, err := s.repo.ListRemoteFileIDs(ctx, limit)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "Failed to load uploaded files")
	}
	return ids, nil
}

// FilenamesByRemoteID resolves local filenames for remote file ids.
func (s *Service) FilenamesByRemoteID(ctx context.Context, remoteIDs []string) (map[string]string, error) {
	if len(remoteIDs) == 0 {
		return map[string]string{}, nil
	}
	files, err := s.repo.FindByRemoteFileIDs(ctx, remoteIDs)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(files))
	for _, f := range files {
		names[f.RemoteFileID] = f.OriginalFilename
	}
	return names, nil
}

func (s *Service) remoteUploadError(ctx context.Context, err error) error {
	switch {
	case platformerrors.IsErrorType(err, platformerrors.ErrorTypeRateLimited):
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeRateLimited,
			"Rate limit exceeded. Please try again later.", err, "")
	case platformerrors.IsErrorType(err, platformerrors.ErrorTypePayloadTooLarge):
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypePayloadTooLarge,
			"File too large for OpenAI API", err, "")
	default:
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal,
			"Failed to upload file to OpenAI", err, "")
	}
}

func archiveKey(id, filename string) string {
	name := unsafeKeyChars.ReplaceAllString(filepath.Base(filename), "_")
	if name == "" || name == "." || name == "_" {
		name = "file"
	}
	return fmt.Sprintf("uploads/%s/%s", id, name)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
