package openaiclient

import (
	"context"
	"time"

	"github.com/sashabaranov/go-openai"

	"framelink-support/internal/domain/upload"
)

// UploadFile sends a document to the Files API for assistant retrieval.
func (c *Client) UploadFile(ctx context.Context, filename string, data []byte) (*upload.RemoteFile, error) {
	file, err := c.api.CreateFileBytes(ctx, openai.FileBytesRequest{
		Name:    filename,
		Bytes:   data,
		Purpose: openai.PurposeAssistants,
	})
	if err != nil {
		return nil, mapError(ctx, err, "failed to upload file to OpenAI")
	}

	remote := &upload.RemoteFile{
		ID:       file.ID,
		Filename: file.FileName,
		Purpose:  file.Purpose,
		Status:   file.Status,
		Bytes:    int64(file.Bytes),
	}
	if file.CreatedAt > 0 {
		remote.CreatedAt = time.Unix(file.CreatedAt, 0).UTC()
	}
	c.log.Debug().Str("openai_file_id", file.ID).Int("bytes", file.Bytes).Msg("file uploaded to OpenAI")
	return remote, nil
}

// DeleteFile removes a document from the Files API.
func (c *Client) DeleteFile(ctx context.Context, remoteID string) error {
	if err := c.api.DeleteFile(ctx, remoteID); err != nil {
		return mapError(ctx, err, "failed to delete file from OpenAI")
	}
	return nil
}
