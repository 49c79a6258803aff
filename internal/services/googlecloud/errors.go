package googlecloud

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"equalmedia/internal/services"
)

// Service display names used as error prefixes.
const (
	ServiceSpeechToText = "Speech-to-Text"
	ServiceTextToSpeech = "Text-to-Speech"
)

// ErrMissingAPIKey is returned before any network activity when no key is configured.
var ErrMissingAPIKey = fmt.Errorf("%w: Google Cloud API key is not configured", services.ErrConfiguration)

// APIError is a non-2xx response from a Google speech API.
type APIError struct {
	Service    string
	StatusCode int
	// Status is the canonical Google status, e.g. PERMISSION_DENIED, when the body carried one.
	Status  string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error: %s", e.Service, e.Message)
}

// Is classifies API errors as external API failures.
func (e *APIError) Is(target error) bool {
	return target == services.ErrExternalAPI
}

type errorEnvelope struct {
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func newAPIError(service string, statusCode int, body []byte) *APIError {
	apiErr := &APIError{Service: service, StatusCode: statusCode}
	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil {
		apiErr.Status = envelope.Error.Status
		apiErr.Message = strings.TrimSpace(envelope.Error.Message)
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(statusCode)
	}
	if apiErr.Message == "" {
		apiErr.Message = fmt.Sprintf("HTTP %d", statusCode)
	}
	return apiErr
}

// AsAPIError unwraps err into an *APIError when possible.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
