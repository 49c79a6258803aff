package panels

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"equalmedia/internal/avatar"
	"equalmedia/internal/captions"
	"equalmedia/internal/document"
	"equalmedia/internal/logging"
	"equalmedia/internal/narration"
	"equalmedia/internal/services"
	"equalmedia/internal/services/googlecloud"
)

// DocumentAPI is the sandbox surface the panels drive. *document.Proxy
// satisfies it in-process and *ipc.Client across the socket.
type DocumentAPI interface {
	AddCaptionsToDocument(ctx context.Context, caps []captions.Caption) (document.InsertSummary, error)
	AddAudioNarrationToDocument(ctx context.Context, n narration.AudioNarration) (document.InsertSummary, error)
	AddSignLanguageAvatarToDocument(ctx context.Context, a avatar.SignLanguageAvatar, cfg *avatar.Config) (document.InsertSummary, error)
	ExtractTextFromDocument(ctx context.Context) ([]string, error)
}

// Transcriber converts audio into captions.
type Transcriber interface {
	Transcribe(ctx context.Context, audio googlecloud.Audio, languageCode string) ([]captions.Caption, error)
}

// Synthesizer converts text into narration.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, languageCode, voiceName string) (narration.AudioNarration, error)
}

var (
	// ErrBusy is returned when a panel is asked to generate while a previous
	// request is still running.
	ErrBusy = fmt.Errorf("%w: generation already in progress", services.ErrConflict)

	// ErrNoSourceText is returned when narration or avatar input is blank.
	ErrNoSourceText = fmt.Errorf("%w: please extract text from document or enter text manually", services.ErrValidation)
)

// guard admits one generation at a time.
type guard struct {
	busy atomic.Bool
}

func (g *guard) acquire() error {
	if !g.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	return nil
}

func (g *guard) release() {
	g.busy.Store(false)
}

// Busy reports whether a generation is in flight.
func (g *guard) Busy() bool {
	return g.busy.Load()
}

// extractText joins every text fragment found in the document with a space.
func extractText(ctx context.Context, doc DocumentAPI) (string, error) {
	if doc == nil {
		return "", services.Wrap(services.ErrConfiguration, "panels", "extract text", "no document attached", nil)
	}
	texts, err := doc.ExtractTextFromDocument(ctx)
	if err != nil {
		return "", fmt.Errorf("extract text from document: %w", err)
	}
	return strings.Join(texts, " "), nil
}

// begin stamps ctx with a request ID and feature and returns a scoped logger.
func begin(ctx context.Context, logger *slog.Logger, feature string) (context.Context, string, *slog.Logger) {
	ctx, id := services.EnsureRequestID(ctx)
	ctx = services.WithFeature(ctx, feature)
	return ctx, id, logging.WithContext(ctx, logger)
}

func panelLogger(logger *slog.Logger, name string) *slog.Logger {
	if logger == nil {
		logger = logging.NewNop()
	}
	return logging.NewComponentLogger(logger, name)
}
