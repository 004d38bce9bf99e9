package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"framelink-support/internal/domain/contact"
	"framelink-support/internal/interfaces/httpserver/middlewares"
	"framelink-support/internal/interfaces/httpserver/requests"
	"framelink-support/internal/interfaces/httpserver/responses"
	"framelink-support/internal/utils/platformerrors"
)

const (
	dataPrefix = "data: "
	frameEnd   = "\n\n"
)

// ContactService is the question answering behaviour the handler depends on.
type ContactService interface {
	Streaming() bool
	Stream(ctx context.Context, req contact.Request) (<-chan contact.Event, error)
	Ask(ctx context.Context, req contact.Request) (*contact.Answer, error)
}

// ContactHandler exposes the support question endpoint.
type ContactHandler struct {
	service  ContactService
	validate *validator.Validate
	log      zerolog.Logger
}

func NewContactHandler(service ContactService, log zerolog.Logger) *ContactHandler {
	return &ContactHandler{
		service:  service,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      log.With().Str("handler", "contact").Logger(),
	}
}

// Ask godoc
// @Summary      Ask a support question
// @Description  Streams the answer as server-sent events, or returns it as JSON when streaming is disabled.
// @Tags         contact
// @Accept       json
// @Produce      json
// @Produce      text/event-stream
// @Param        request  body      requests.ContactRequest  true  "Question"
// @Success      201      {object}  responses.ContactResponse
// @Failure      400      {object}  responses.ErrorResponse
// @Failure      503      {object}  responses.ErrorResponse
// @Router       /api/contact [post]
func (h *ContactHandler) Ask(c *gin.Context) {
	var body requests.ContactRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "Invalid request body")
		return
	}
	body.Normalize()
	if err := h.validate.Struct(body); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "Question is required")
		return
	}
	req := contact.Request{Username: body.Username, Subject: body.Subject, Question: body.Question}

	if !h.service.Streaming() {
		answer, err := h.service.Ask(c.Request.Context(), req)
		if err != nil {
			responses.HandleError(c, err, "Failed to answer question")
			return
		}
		c.JSON(http.StatusCreated, responses.NewContactResponse(answer))
		return
	}

	events, err := h.service.Stream(c.Request.Context(), req)
	if err != nil {
		responses.HandleError(c, err, "Failed to answer question")
		return
	}

	flusher, _ := middlewares.PrepareSSE(c)
	c.Status(http.StatusOK)
	c.Writer.WriteHeaderNow()
	if flusher != nil {
		flusher.Flush()
	}

	for ev := range events {
		frame, ok := responses.NewStreamFrame(ev)
		if !ok {
			h.log.Debug().Str("reason", ev.Reason).Msg("assistant failed, fallback follows")
			continue
		}
		if err := h.writeSSEData(c, frame, flusher); err != nil {
			h.log.Warn().Err(err).Msg("client stream write failed")
			return
		}
	}
}

func (h *ContactHandler) writeSSEData(c *gin.Context, frame any, flusher http.Flusher) error {
	payload, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	if _, err := c.Writer.Write([]byte(dataPrefix + string(payload) + frameEnd)); err != nil {
		return err
	}
	if flusher != nil {
		flusher.Flush()
	}
	return nil
}
