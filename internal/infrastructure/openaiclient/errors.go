package openaiclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
	"resty.dev/v3"

	"framelink-support/internal/domain/assistant"
	"framelink-support/internal/utils/platformerrors"
)

func errorTypeForStatus(status int) platformerrors.ErrorType {
	switch status {
	case http.StatusTooManyRequests:
		return platformerrors.ErrorTypeRateLimited
	case http.StatusRequestEntityTooLarge:
		return platformerrors.ErrorTypePayloadTooLarge
	case http.StatusNotFound:
		return platformerrors.ErrorTypeNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return platformerrors.ErrorTypeValidation
	default:
		return platformerrors.ErrorTypeExternal
	}
}

// statusOf extracts the HTTP status from go-openai errors, or 0.
func statusOf(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}

// mapError converts a go-openai error into a platform error keyed by HTTP status.
func mapError(ctx context.Context, err error, message string) error {
	if err == nil {
		return nil
	}
	status := statusOf(err)
	if status == 0 {
		return platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, message, err, "")
	}
	return platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, errorTypeForStatus(status),
		fmt.Sprintf("%s (status %d)", message, status), err, "")
}

// errorFromResponse reads an error body from a raw resty response.
func errorFromResponse(ctx context.Context, resp *resty.Response, message string) error {
	status := 0
	body := ""
	if resp != nil {
		status = resp.StatusCode()
		if resp.RawResponse != nil && resp.RawResponse.Body != nil {
			defer resp.RawResponse.Body.Close()
			raw, _ := io.ReadAll(io.LimitReader(resp.RawResponse.Body, 64*1024))
			body = strings.TrimSpace(string(raw))
		}
	}

	var cause error
	if status == http.StatusNotFound && strings.Contains(strings.ToLower(body), "assistant") {
		cause = assistant.ErrAssistantNotFound
	}
	if body != "" {
		message = fmt.Sprintf("%s: %s", message, body)
	}
	return platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, errorTypeForStatus(status), message, cause, "")
}
