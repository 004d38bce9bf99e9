package upload

import (
	"context"
	"io"
	"time"
)

// UploadedFile is the local record of a document forwarded to the remote file store.
type UploadedFile struct {
	ID               string        `json:"id"`
	RemoteFileID     string        `json:"openai_file_id"`
	Filename         string        `json:"filename"`
	OriginalFilename string        `json:"original_filename"`
	FileSize         int64         `json:"file_size"`
	FileType         string        `json:"file_type"`
	Purpose          string        `json:"purpose"`
	Status           string        `json:"status"`
	Bytes            int64         `json:"bytes"`
	ArchiveKey       string        `json:"-"`
	MetadataCache    MetadataCache `json:"metadata_cache"`
	CreatedAt        time.Time     `json:"created_at"`
	UploadedAt       time.Time     `json:"uploaded_at"`
}

// MetadataCache holds display values precomputed at upload time.
type MetadataCache struct {
	DisplayName       string `json:"display_name"`
	SizeFormatted     string `json:"size_formatted"`
	TypeDisplay       string `json:"type_display"`
	SearchableContent string `json:"searchable_content"`
}

// FileUpload is a single incoming file. Size may be -1 when unknown.
type FileUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// RemoteFile describes the object created by the remote file store.
type RemoteFile struct {
	ID        string
	Filename  string
	Purpose   string
	Status    string
	Bytes     int64
	CreatedAt time.Time
}

// Repository defines persistence operations needed by the service.
type Repository interface {
	Create(ctx context.Context, file *UploadedFile) error
	List(ctx context.Context, limit int) ([]*UploadedFile, error)
	ListRemoteFileIDs(ctx context.Context, limit int) ([]string, error)
	FindByRemoteFileIDs(ctx context.Context, remoteIDs []string) ([]*UploadedFile, error)
	GetByRemoteFileID(ctx context.Context, remoteID string) (*UploadedFile, error)
	DeleteByRemoteFileID(ctx context.Context, remoteID string) (int64, error)
}

// RemoteStore forwards documents to the conversational API for retrieval use.
type RemoteStore interface {
	Configured() bool
	UploadFile(ctx context.Context, filename string, data []byte) (*RemoteFile, error)
	DeleteFile(ctx context.Context, remoteID string) error
}

// Archive keeps a copy of the original bytes. Optional.
type Archive interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
}
