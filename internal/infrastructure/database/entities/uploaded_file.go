package entities

import (
	"time"

	"gorm.io/datatypes"
)

// UploadedFile is the persisted record of a document sent to the remote file store.
type UploadedFile struct {
	ID               string `gorm:"type:varchar(40);primaryKey"`
	OpenAIFileID     string `gorm:"column:openai_file_id;type:varchar(64);uniqueIndex;not null"`
	Filename         string `gorm:"type:varchar(255);not null"`
	OriginalFilename string `gorm:"type:varchar(255);not null"`
	FileSize         int64  `gorm:"not null"`
	FileType         string `gorm:"type:varchar(128);not null"`
	Purpose          string `gorm:"type:varchar(32)"`
	Status           string `gorm:"type:varchar(32)"`
	Bytes            int64
	ArchiveKey       string `gorm:"type:varchar(512)"`
	MetadataCache    datatypes.JSON
	CreatedAt        time.Time
	UploadedAt       time.Time `gorm:"index"`
}

func (UploadedFile) TableName() string {
	return "uploaded_files"
}
