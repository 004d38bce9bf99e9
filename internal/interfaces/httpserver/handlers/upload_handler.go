package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"framelink-support/internal/config"
	"framelink-support/internal/domain/upload"
	"framelink-support/internal/interfaces/httpserver/requests"
	"framelink-support/internal/interfaces/httpserver/responses"
	"framelink-support/internal/utils/platformerrors"
)

// multipartOverhead leaves room for boundaries and headers around the file part.
const multipartOverhead = 1 << 20

// UploadService is the upload behaviour the handler depends on.
type UploadService interface {
	Upload(ctx context.Context, in upload.FileUpload) (*upload.UploadedFile, error)
	List(ctx context.Context) ([]*upload.UploadedFile, error)
	Delete(ctx context.Context, fileID, remoteFileID string) (int64, error)
}

// UploadHandler exposes document upload endpoints.
type UploadHandler struct {
	cfg      *config.Config
	service  UploadService
	validate *validator.Validate
	log      zerolog.Logger
}

func NewUploadHandler(cfg *config.Config, service UploadService, log zerolog.Logger) *UploadHandler {
	return &UploadHandler{
		cfg:      cfg,
		service:  service,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      log.With().Str("handler", "upload").Logger(),
	}
}

// Create godoc
// @Summary      Upload a document
// @Description  Forwards a document to the assistant file store and records it locally.
// @Tags         upload
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Document"
// @Success      201   {object}  responses.UploadCreatedResponse
// @Failure      400   {object}  responses.ErrorResponse
// @Failure      413   {object}  responses.ErrorResponse
// @Failure      429   {object}  responses.ErrorResponse
// @Router       /api/upload [post]
func (h *UploadHandler) Create(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.cfg.UploadMaxBytes+multipartOverhead)

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			responses.HandleNewError(c, platformerrors.ErrorTypeValidation,
				"File size exceeds "+upload.FormatLimit(h.cfg.UploadMaxBytes)+" limit")
			return
		}
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "No file provided")
		return
	}

	file, err := header.Open()
	if err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "No file provided")
		return
	}
	defer file.Close()

	record, err := h.service.Upload(c.Request.Context(), upload.FileUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		h.log.Warn().Err(err).Str("filename", header.Filename).Msg("upload failed")
		responses.HandleError(c, err, "Failed to upload file")
		return
	}

	c.JSON(http.StatusCreated, responses.NewUploadCreatedResponse(record))
}

// List godoc
// @Summary      List uploaded documents
// @Tags         upload
// @Produce      json
// @Success      200  {object}  responses.FileListResponse
// @Router       /api/upload [get]
func (h *UploadHandler) List(c *gin.Context) {
	files, err := h.service.List(c.Request.Context())
	if err != nil {
		responses.HandleError(c, err, "Failed to fetch files")
		return
	}
	c.JSON(http.StatusOK, responses.NewFileListResponse(files))
}

// Delete godoc
// @Summary      Delete an uploaded document
// @Tags         upload
// @Produce      json
// @Param        fileId        query  string  true  "Local record id"
// @Param        openaiFileId  query  string  true  "Remote file id"
// @Success      200  {object}  responses.DeleteFileResponse
// @Failure      400  {object}  responses.ErrorResponse
// @Failure      404  {object}  responses.ErrorResponse
// @Router       /api/upload [delete]
func (h *UploadHandler) Delete(c *gin.Context) {
	var query requests.DeleteFileQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "File ID and OpenAI File ID are required")
		return
	}
	query.Normalize()
	if err := h.validate.Struct(query); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "File ID and OpenAI File ID are required")
		return
	}

	count, err := h.service.Delete(c.Request.Context(), query.FileID, query.OpenAIFileID)
	if err != nil {
		responses.HandleError(c, err, "Failed to delete file")
		return
	}

	c.JSON(http.StatusOK, responses.DeleteFileResponse{
		Message:      "File deleted successfully",
		DeletedCount: count,
	})
}
