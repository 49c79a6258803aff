package ipc

import (
	"equalmedia/internal/avatar"
	"equalmedia/internal/captions"
	"equalmedia/internal/config"
	"equalmedia/internal/daemon"
	"equalmedia/internal/document"
	"equalmedia/internal/narration"
)

// ServiceName is the RPC service name registered by the server.
const ServiceName = "Sandbox"

// InsertResponse reports the outcome of any insertion call.
type InsertResponse struct {
	Summary document.InsertSummary `json:"summary"`
}

// CreateRectangleRequest draws the demo rectangle.
type CreateRectangleRequest struct {
	RequestID string `json:"request_id,omitempty"`
}

// AddCaptionsRequest inserts timed captions.
type AddCaptionsRequest struct {
	RequestID string             `json:"request_id,omitempty"`
	Captions  []captions.Caption `json:"captions"`
}

// AddNarrationRequest inserts a narration indicator.
type AddNarrationRequest struct {
	RequestID string                   `json:"request_id,omitempty"`
	Narration narration.AudioNarration `json:"narration"`
}

// AddAvatarRequest inserts an avatar placeholder. Config may be nil.
type AddAvatarRequest struct {
	RequestID string                    `json:"request_id,omitempty"`
	Avatar    avatar.SignLanguageAvatar `json:"avatar"`
	Config    *avatar.Config            `json:"config,omitempty"`
}

// ExtractTextRequest asks for the document text.
type ExtractTextRequest struct {
	RequestID string `json:"request_id,omitempty"`
}

// ExtractTextResponse carries the extracted text fragments.
type ExtractTextResponse struct {
	Texts []string `json:"texts"`
}

// DocumentRequest fetches a scene snapshot.
type DocumentRequest struct{}

// DocumentResponse is the scene snapshot.
type DocumentResponse = daemon.Snapshot

// SetAPIConfigRequest merges credentials into the daemon's store.
type SetAPIConfigRequest struct {
	RequestID string                 `json:"request_id,omitempty"`
	Config    config.APIConfigUpdate `json:"config"`
}

// SetAPIConfigResponse returns the merged credentials with the key redacted.
type SetAPIConfigResponse struct {
	Config config.APIConfig `json:"config"`
}

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// StatusResponse is the daemon status.
type StatusResponse = daemon.Status
