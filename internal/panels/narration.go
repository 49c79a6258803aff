package panels

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"equalmedia/internal/document"
	"equalmedia/internal/logging"
	"equalmedia/internal/narration"
	"equalmedia/internal/services"
)

// NarrationRequest describes one narration generation. When FromDocument is
// set the document text replaces Text.
type NarrationRequest struct {
	Text         string
	FromDocument bool
	LanguageCode string
	VoiceName    string
	SkipInsert   bool
}

// NarrationResult is the outcome of Generate.
type NarrationResult struct {
	RequestID string                   `json:"requestId"`
	Narration narration.AudioNarration `json:"narration"`
	Summary   *document.InsertSummary  `json:"summary,omitempty"`
}

// NarrationPanel synthesizes speech from text and marks it in the document.
type NarrationPanel struct {
	guard
	tts    Synthesizer
	doc    DocumentAPI
	logger *slog.Logger
}

// NewNarrationPanel wires a panel to its speech service and document.
func NewNarrationPanel(tts Synthesizer, doc DocumentAPI, logger *slog.Logger) *NarrationPanel {
	return &NarrationPanel{tts: tts, doc: doc, logger: panelLogger(logger, "narration-panel")}
}

// ExtractText returns the document's text joined by spaces.
func (p *NarrationPanel) ExtractText(ctx context.Context) (string, error) {
	return extractText(services.WithFeature(ctx, services.FeatureNarration), p.doc)
}

// Generate synthesizes narration for the request text and, unless SkipInsert
// is set, adds the narration indicator to the document.
func (p *NarrationPanel) Generate(ctx context.Context, req NarrationRequest) (NarrationResult, error) {
	ctx, id, logger := begin(ctx, p.logger, services.FeatureNarration)
	result := NarrationResult{RequestID: id}

	text := req.Text
	if req.FromDocument {
		extracted, err := extractText(ctx, p.doc)
		if err != nil {
			return result, err
		}
		text = extracted
	}
	if strings.TrimSpace(text) == "" {
		return result, ErrNoSourceText
	}
	if p.tts == nil {
		return result, services.Wrap(services.ErrConfiguration, "narration", "generate", "no speech service attached", nil)
	}
	if err := p.acquire(); err != nil {
		return result, err
	}
	defer p.release()

	n, err := p.tts.Synthesize(ctx, text, req.LanguageCode, req.VoiceName)
	if err != nil {
		logging.WarnWithContext(logger, "narration generation failed", "narration_generate_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "no narration was added"),
		)
		return result, fmt.Errorf("generate narration: %w", err)
	}
	result.Narration = n
	if req.SkipInsert {
		return result, nil
	}
	if p.doc == nil {
		return result, services.Wrap(services.ErrConfiguration, "narration", "insert", "no document attached", nil)
	}
	summary, err := p.doc.AddAudioNarrationToDocument(ctx, n)
	if err != nil {
		return result, fmt.Errorf("add narration to document: %w", err)
	}
	result.Summary = &summary
	logger.Info("narration ready",
		logging.Float64("duration_seconds", n.Duration),
		logging.String("size", n.Size()),
	)
	return result, nil
}
