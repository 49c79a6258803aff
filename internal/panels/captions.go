package panels

import (
	"context"
	"fmt"
	"log/slog"

	"equalmedia/internal/captions"
	"equalmedia/internal/document"
	"equalmedia/internal/logging"
	"equalmedia/internal/services"
	"equalmedia/internal/services/googlecloud"
)

// CaptionsRequest describes one caption generation.
type CaptionsRequest struct {
	Audio        googlecloud.Audio
	LanguageCode string
	// SkipInsert returns the captions without touching the document.
	SkipInsert bool
}

// CaptionsResult is the outcome of Generate or Insert.
type CaptionsResult struct {
	RequestID string                  `json:"requestId"`
	Captions  []captions.Caption      `json:"captions"`
	Summary   *document.InsertSummary `json:"summary,omitempty"`
}

// CaptionsPanel transcribes audio and places the captions in the document.
type CaptionsPanel struct {
	guard
	speech Transcriber
	doc    DocumentAPI
	logger *slog.Logger
}

// NewCaptionsPanel wires a panel to its speech service and document.
func NewCaptionsPanel(speech Transcriber, doc DocumentAPI, logger *slog.Logger) *CaptionsPanel {
	return &CaptionsPanel{speech: speech, doc: doc, logger: panelLogger(logger, "captions-panel")}
}

// Generate transcribes req.Audio and, unless SkipInsert is set, adds the
// captions to the document. Only one Generate runs at a time.
func (p *CaptionsPanel) Generate(ctx context.Context, req CaptionsRequest) (CaptionsResult, error) {
	ctx, id, logger := begin(ctx, p.logger, services.FeatureCaptions)
	result := CaptionsResult{RequestID: id}
	if p.speech == nil {
		return result, services.Wrap(services.ErrConfiguration, "captions", "generate", "no speech service attached", nil)
	}
	if err := p.acquire(); err != nil {
		return result, err
	}
	defer p.release()

	logger.Info("generating captions",
		logging.String("mime_type", req.Audio.MIMEType),
		logging.Int("audio_bytes", len(req.Audio.Data)),
	)
	caps, err := p.speech.Transcribe(ctx, req.Audio, req.LanguageCode)
	if err != nil {
		logging.WarnWithContext(logger, "caption generation failed", "captions_generate_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "no captions were added"),
		)
		return result, fmt.Errorf("generate captions: %w", err)
	}
	result.Captions = caps
	if req.SkipInsert {
		return result, nil
	}
	return p.insert(ctx, logger, result)
}

// Insert adds already-timed captions, for example from an imported SRT file.
func (p *CaptionsPanel) Insert(ctx context.Context, caps []captions.Caption) (CaptionsResult, error) {
	ctx, id, logger := begin(ctx, p.logger, services.FeatureCaptions)
	if err := p.acquire(); err != nil {
		return CaptionsResult{RequestID: id}, err
	}
	defer p.release()
	return p.insert(ctx, logger, CaptionsResult{RequestID: id, Captions: caps})
}

func (p *CaptionsPanel) insert(ctx context.Context, logger *slog.Logger, result CaptionsResult) (CaptionsResult, error) {
	if p.doc == nil {
		return result, services.Wrap(services.ErrConfiguration, "captions", "insert", "no document attached", nil)
	}
	summary, err := p.doc.AddCaptionsToDocument(ctx, result.Captions)
	if err != nil {
		return result, fmt.Errorf("add captions to document: %w", err)
	}
	result.Summary = &summary
	start, end := captions.Span(result.Captions)
	logger.Info("captions ready",
		logging.Int("captions", len(result.Captions)),
		logging.Float64("span_start_seconds", start),
		logging.Float64("span_end_seconds", end),
		logging.Int("inserted", summary.Inserted),
		logging.Int("skipped", summary.Failed()),
	)
	return result, nil
}
