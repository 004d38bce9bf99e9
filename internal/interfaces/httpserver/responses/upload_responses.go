package responses

import (
	"time"

	"framelink-support/internal/domain/upload"
)

// UploadCreatedResponse is returned by POST /api/upload.
// MongoID carries the local record id; the key name is kept for existing page scripts.
type UploadCreatedResponse struct {
	Message  string `json:"message"`
	FileID   string `json:"file_id"`
	Filename string `json:"filename"`
	MongoID  string `json:"mongo_id"`
	Status   string `json:"status"`
	Bytes    int64  `json:"bytes"`
}

// FileItem is one row of GET /api/upload.
type FileItem struct {
	ID               string               `json:"id"`
	OpenAIFileID     string               `json:"openai_file_id"`
	Filename         string               `json:"filename"`
	OriginalFilename string               `json:"original_filename"`
	FileSize         int64                `json:"file_size"`
	FileType         string               `json:"file_type"`
	Status           string               `json:"status"`
	UploadedAt       time.Time            `json:"uploaded_at"`
	Bytes            int64                `json:"bytes"`
	MetadataCache    upload.MetadataCache `json:"metadata_cache"`
}

// FileListResponse is returned by GET /api/upload.
type FileListResponse struct {
	Files []FileItem `json:"files"`
}

// DeleteFileResponse is returned by DELETE /api/upload.
type DeleteFileResponse struct {
	Message      string `json:"message"`
	DeletedCount int64  `json:"deleted_count"`
}

func NewUploadCreatedResponse(file *upload.UploadedFile) UploadCreatedResponse {
	return UploadCreatedResponse{
		Message:  "File uploaded successfully",
		FileID:   file.RemoteFileID,
		Filename: file.Filename,
		MongoID:  file.ID,
		Status:   file.Status,
		Bytes:    file.Bytes,
	}
}

func NewFileListResponse(files []*upload.UploadedFile) FileListResponse {
	items := make([]FileItem, 0, len(files))
	for _, f := range files {
		items = append(items, FileItem{
			ID:               f.ID,
			OpenAIFileID:     f.RemoteFileID,
			Filename:         f.Filename,
			OriginalFilename: f.OriginalFilename,
			FileSize:         f.FileSize,
			FileType:         f.FileType,
			Status:           f.Status,
			UploadedAt:       f.UploadedAt,
			Bytes:            f.Bytes,
			MetadataCache:    f.MetadataCache,
		})
	}
	return FileListResponse{Files: items}
}
