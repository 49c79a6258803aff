package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"equalmedia/internal/avatar"
	"equalmedia/internal/config"
	"equalmedia/internal/logging"
	"equalmedia/internal/panels"
	"equalmedia/internal/services"
	"equalmedia/internal/services/googlecloud"
)

// Synchronous speech:recognize rejects content over 10 MB.
const maxAudioBytes = 10 << 20

const maxJSONBytes = 1 << 20

// RequestIDHeader carries the correlation ID in and out of the HTTP API.
const RequestIDHeader = "X-Request-ID"

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

// NarrationBody is the POST /api/narration payload.
type NarrationBody struct {
	Text         string `json:"text"`
	FromDocument bool   `json:"fromDocument,omitempty"`
	LanguageCode string `json:"languageCode,omitempty"`
	VoiceName    string `json:"voiceName,omitempty"`
	SkipInsert   bool   `json:"skipInsert,omitempty"`
}

// AvatarBody is the POST /api/avatar payload.
type AvatarBody struct {
	SourceText   string        `json:"sourceText"`
	FromDocument bool          `json:"fromDocument,omitempty"`
	Position     *avatar.Point `json:"position,omitempty"`
	Size         *avatar.Size  `json:"size,omitempty"`
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) *apiServer {
	if cfg == nil || d == nil {
		return nil
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	srv := &apiServer{
		bind:   bind,
		logger: logging.NewComponentLogger(logger, "api-server"),
		daemon: d,
	}
	srv.server = &http.Server{
		Handler:           srv.routes(cfg.Paths.APIToken),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.RequestTimeout() + 30*time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

func (s *apiServer) routes(token string) http.Handler {
	mux := http.NewServeMux()
	handle := func(pattern string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, withRequestID(authMiddleware(token, h)))
	}
	handle("/api/status", s.handleStatus)
	handle("/api/document", s.handleDocument)
	handle("/api/document/text", s.handleDocumentText)
	handle("/api/captions", s.handleCaptions)
	handle("/api/narration", s.handleNarration)
	handle("/api/avatar", s.handleAvatar)
	handle("/api/config", s.handleConfig)
	return mux
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) address() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, s.daemon.Status(r.Context()))
}

func (s *apiServer) handleDocument(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, s.daemon.Document())
}

func (s *apiServer) handleDocumentText(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	texts, err := s.daemon.proxy.ExtractTextFromDocument(r.Context())
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"texts": texts})
}

func (s *apiServer) handleCaptions(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxAudioBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("audio exceeds %d bytes", maxAudioBytes))
			return
		}
		writeError(w, http.StatusBadRequest, "read audio: "+err.Error())
		return
	}
	if len(data) == 0 {
		writeError(w, http.StatusBadRequest, "audio body is required")
		return
	}
	query := r.URL.Query()
	result, err := s.daemon.captions.Generate(r.Context(), panels.CaptionsRequest{
		Audio:        googlecloud.Audio{Data: data, MIMEType: r.Header.Get("Content-Type")},
		LanguageCode: query.Get("language"),
		SkipInsert:   parseBool(query.Get("skip_insert")),
	})
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *apiServer) handleNarration(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var body NarrationBody
	if !decodeBody(w, r, &body) {
		return
	}
	result, err := s.daemon.narration.Generate(r.Context(), panels.NarrationRequest{
		Text:         body.Text,
		FromDocument: body.FromDocument,
		LanguageCode: body.LanguageCode,
		VoiceName:    body.VoiceName,
		SkipInsert:   body.SkipInsert,
	})
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *apiServer) handleAvatar(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var body AvatarBody
	if !decodeBody(w, r, &body) {
		return
	}
	var cfg *avatar.Config
	if body.Position != nil || body.Size != nil {
		cfg = &avatar.Config{Position: body.Position, Size: body.Size}
	}
	result, err := s.daemon.avatar.Add(r.Context(), panels.AvatarRequest{
		Text:         body.SourceText,
		FromDocument: body.FromDocument,
		Config:       cfg,
	})
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *apiServer) handleConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.daemon.creds.Get().Redacted())
	case http.MethodPut:
		var body config.APIConfigUpdate
		if !decodeBody(w, r, &body) {
			return
		}
		merged := s.daemon.SetAPIConfig(r.Context(), body)
		writeJSON(w, http.StatusOK, merged.Redacted())
	default:
		w.Header().Set("Allow", "GET, PUT")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// writeFailure maps classified errors onto HTTP statuses.
func (s *apiServer) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	status := services.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("api request failed",
			logging.String("path", r.URL.Path),
			logging.Int("status", status),
			logging.Error(err),
			logging.String(logging.FieldEventType, "api_request_failed"),
		)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	return false
}

func decodeBody(w http.ResponseWriter, r *http.Request, out any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func parseBool(value string) bool {
	value = strings.TrimSpace(value)
	return value == "1" || strings.EqualFold(value, "true")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
