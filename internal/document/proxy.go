package document

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"equalmedia/internal/avatar"
	"equalmedia/internal/captions"
	"equalmedia/internal/logging"
	"equalmedia/internal/narration"
	"equalmedia/internal/services"
)

// Fixed colors and geometry for the rendered placeholders.
var (
	rectangleColor = Color{Red: 0.32, Green: 0.34, Blue: 0.89, Alpha: 1}
	narrationColor = Color{Red: 0.2, Green: 0.6, Blue: 0.8, Alpha: 1}
	avatarColor    = Color{Red: 0.9, Green: 0.7, Blue: 0.4, Alpha: 1}
)

const (
	captionX       = 10.0
	captionTop     = 50.0
	captionSpacing = 30.0
)

// Failure describes one element that could not be inserted.
type Failure struct {
	Index   int    `json:"index"`
	Element string `json:"element"`
	Message string `json:"message"`
}

// InsertSummary aggregates the outcome of a best-effort insertion.
type InsertSummary struct {
	Requested int       `json:"requested"`
	Inserted  int       `json:"inserted"`
	Failures  []Failure `json:"failures,omitempty"`
}

// Failed reports the number of items that were skipped.
func (s InsertSummary) Failed() int {
	return len(s.Failures)
}

// State is what the proxy last received for each feature.
type State struct {
	Captions  []captions.Caption         `json:"captions"`
	Narration *narration.AudioNarration  `json:"narration,omitempty"`
	Avatar    *avatar.SignLanguageAvatar `json:"avatar,omitempty"`
}

// Proxy renders accessibility payloads into a document through an Editor.
type Proxy struct {
	editor   Editor
	logger   *slog.Logger
	defaults avatar.Placement

	mu    sync.Mutex
	state State
}

// ProxyOption customizes a Proxy.
type ProxyOption func(*Proxy)

// WithAvatarDefaults sets the placement used when an avatar config omits
// position or size.
func WithAvatarDefaults(p avatar.Placement) ProxyOption {
	return func(px *Proxy) {
		px.defaults = p
	}
}

// NewProxy wraps editor. A nil logger discards output.
func NewProxy(editor Editor, logger *slog.Logger, opts ...ProxyOption) *Proxy {
	if logger == nil {
		logger = logging.NewNop()
	}
	p := &Proxy{
		editor:   editor,
		logger:   logging.NewComponentLogger(logger, "document"),
		defaults: avatar.DefaultPlacement,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CreateRectangle draws the demo rectangle at the top-left of the document.
func (p *Proxy) CreateRectangle(ctx context.Context) (InsertSummary, error) {
	summary := InsertSummary{Requested: 1}
	parent, err := p.parent()
	if err != nil {
		return summary, err
	}
	if err := p.drawRectangle(parent, 10, 10, 240, 180, rectangleColor); err != nil {
		return summary, services.Wrap(services.ErrTransient, "document", "create rectangle", "", err)
	}
	summary.Inserted = 1
	logging.WithContext(ctx, p.logger).Info("rectangle added")
	return summary, nil
}

// AddCaptionsToDocument renders each caption as a "[m:ss-m:ss] text" label,
// stacked downward. A caption that fails is logged and skipped.
func (p *Proxy) AddCaptionsToDocument(ctx context.Context, caps []captions.Caption) (InsertSummary, error) {
	ctx = services.WithFeature(ctx, services.FeatureCaptions)
	logger := logging.WithContext(ctx, p.logger)

	summary := InsertSummary{Requested: len(caps)}
	parent, err := p.parent()
	if err != nil {
		logging.ErrorWithContext(logger, "add captions failed", "captions_insert_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check that a document is open"),
		)
		return summary, err
	}

	p.mu.Lock()
	p.state.Captions = append([]captions.Caption(nil), caps...)
	p.mu.Unlock()

	for i, c := range caps {
		y := captionTop + float64(i)*captionSpacing
		if err := p.drawText(parent, c.Label(), captionX, y); err != nil {
			p.recordFailure(logger, &summary, i, "caption", err)
			continue
		}
		summary.Inserted++
	}
	logger.Info("captions added",
		logging.Int("requested", summary.Requested),
		logging.Int("inserted", summary.Inserted),
	)
	return summary, nil
}

// AddAudioNarrationToDocument draws an indicator rectangle with a duration
// label. The audio itself is not embedded.
func (p *Proxy) AddAudioNarrationToDocument(ctx context.Context, n narration.AudioNarration) (InsertSummary, error) {
	ctx = services.WithFeature(ctx, services.FeatureNarration)
	logger := logging.WithContext(ctx, p.logger)

	summary := InsertSummary{Requested: 2}
	parent, err := p.parent()
	if err != nil {
		return summary, err
	}

	stored := n.WithoutAudio()
	p.mu.Lock()
	p.state.Narration = &stored
	p.mu.Unlock()
	if err := p.drawRectangle(parent, 10, 100, 200, 50, narrationColor); err != nil {
		logging.ErrorWithContext(logger, "narration indicator failed", "narration_insert_failed", logging.Error(err))
		return summary, services.Wrap(services.ErrTransient, "document", "add narration", "indicator", err)
	}
	summary.Inserted++

	if err := p.drawText(parent, n.Label(), 15, 115); err != nil {
		p.recordFailure(logger, &summary, 1, "narration label", err)
	} else {
		summary.Inserted++
	}
	logger.Info("audio narration added", logging.Float64("duration_seconds", n.Duration))
	return summary, nil
}

// AddSignLanguageAvatarToDocument draws the avatar placeholder. cfg may be nil.
func (p *Proxy) AddSignLanguageAvatarToDocument(ctx context.Context, a avatar.SignLanguageAvatar, cfg *avatar.Config) (InsertSummary, error) {
	ctx = services.WithFeature(ctx, services.FeatureAvatar)
	logger := logging.WithContext(ctx, p.logger)

	summary := InsertSummary{Requested: 2}
	parent, err := p.parent()
	if err != nil {
		return summary, err
	}

	stored := a
	p.mu.Lock()
	p.state.Avatar = &stored
	p.mu.Unlock()
	place := avatar.Resolve(cfg, p.defaults)
	if place.Size.Width <= 0 || place.Size.Height <= 0 {
		return summary, services.Wrap(services.ErrValidation, "document", "add avatar",
			fmt.Sprintf("size %gx%g must be positive", place.Size.Width, place.Size.Height), nil)
	}
	if err := p.drawRectangle(parent, place.Position.X, place.Position.Y, place.Size.Width, place.Size.Height, avatarColor); err != nil {
		logging.ErrorWithContext(logger, "avatar placeholder failed", "avatar_insert_failed", logging.Error(err))
		return summary, services.Wrap(services.ErrTransient, "document", "add avatar", "placeholder", err)
	}
	summary.Inserted++

	if err := p.drawText(parent, avatar.PlaceholderLabel, place.Label.X, place.Label.Y); err != nil {
		p.recordFailure(logger, &summary, 1, "avatar label", err)
	} else {
		summary.Inserted++
	}
	logger.Info("sign language avatar placeholder added",
		logging.Float64("x", place.Position.X),
		logging.Float64("y", place.Position.Y),
	)
	return summary, nil
}

// ExtractTextFromDocument is not supported by the host surface and always
// returns an empty slice.
func (p *Proxy) ExtractTextFromDocument(ctx context.Context) ([]string, error) {
	ctx = services.WithFeature(ctx, services.FeatureDocument)
	logging.WithContext(ctx, p.logger).Debug("text extraction requested; not supported")
	return []string{}, nil
}

// State returns a copy of the last payloads received.
func (p *Proxy) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := State{Captions: append([]captions.Caption(nil), p.state.Captions...)}
	if p.state.Narration != nil {
		n := *p.state.Narration
		out.Narration = &n
	}
	if p.state.Avatar != nil {
		a := *p.state.Avatar
		out.Avatar = &a
	}
	return out
}

func (p *Proxy) parent() (Container, error) {
	if p.editor == nil {
		return nil, services.Wrap(services.ErrConfiguration, "document", "insertion parent", "no editor attached", nil)
	}
	parent, err := p.editor.InsertionParent()
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "document", "insertion parent", "", err)
	}
	if parent == nil {
		return nil, services.Wrap(services.ErrNotFound, "document", "insertion parent", "no insertion parent", nil)
	}
	return parent, nil
}

func (p *Proxy) drawRectangle(parent Container, x, y, w, h float64, color Color) error {
	rect, err := p.editor.CreateRectangle()
	if err != nil {
		return err
	}
	rect.Width = w
	rect.Height = h
	rect.Translate(x, y)
	fill, err := p.editor.MakeColorFill(color)
	if err != nil {
		return err
	}
	rect.Fill = fill
	return parent.Append(rect)
}

func (p *Proxy) drawText(parent Container, text string, x, y float64) error {
	el, err := p.editor.CreateText()
	if err != nil {
		return err
	}
	el.Text = text
	el.Translate(x, y)
	return parent.Append(el)
}

func (p *Proxy) recordFailure(logger *slog.Logger, summary *InsertSummary, index int, element string, err error) {
	summary.Failures = append(summary.Failures, Failure{Index: index, Element: element, Message: err.Error()})
	logging.WarnWithContext(logger, "element insertion skipped", "document_item_skipped",
		logging.Int("index", index),
		logging.String("element", element),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "remaining items are still inserted"),
		logging.String(logging.FieldImpact, "document is missing one element"),
	)
}
