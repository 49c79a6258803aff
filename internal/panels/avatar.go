package panels

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"equalmedia/internal/avatar"
	"equalmedia/internal/document"
	"equalmedia/internal/logging"
	"equalmedia/internal/services"
)

// DefaultAvatarConfig is the placement the avatar panel requests when the
// caller does not pick one.
func DefaultAvatarConfig() *avatar.Config {
	return &avatar.Config{
		Position: &avatar.Point{X: 10, Y: 10},
		Size:     &avatar.Size{Width: 200, Height: 200},
	}
}

// AvatarRequest describes one avatar placement.
type AvatarRequest struct {
	Text         string
	FromDocument bool
	Config       *avatar.Config
}

// AvatarResult is the outcome of Add.
type AvatarResult struct {
	RequestID string                    `json:"requestId"`
	Avatar    avatar.SignLanguageAvatar `json:"avatar"`
	Summary   document.InsertSummary    `json:"summary"`
}

// AvatarPanel places the sign-language avatar placeholder.
type AvatarPanel struct {
	guard
	doc    DocumentAPI
	logger *slog.Logger
}

// NewAvatarPanel wires a panel to its document.
func NewAvatarPanel(doc DocumentAPI, logger *slog.Logger) *AvatarPanel {
	return &AvatarPanel{doc: doc, logger: panelLogger(logger, "avatar-panel")}
}

// ExtractText returns the document's text joined by spaces.
func (p *AvatarPanel) ExtractText(ctx context.Context) (string, error) {
	return extractText(services.WithFeature(ctx, services.FeatureAvatar), p.doc)
}

// Add inserts a placeholder avatar for the request text.
func (p *AvatarPanel) Add(ctx context.Context, req AvatarRequest) (AvatarResult, error) {
	ctx, id, logger := begin(ctx, p.logger, services.FeatureAvatar)
	result := AvatarResult{RequestID: id}

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
	if p.doc == nil {
		return result, services.Wrap(services.ErrConfiguration, "avatar", "add", "no document attached", nil)
	}
	if err := p.acquire(); err != nil {
		return result, err
	}
	defer p.release()

	cfg := req.Config
	if cfg == nil {
		cfg = DefaultAvatarConfig()
	}
	result.Avatar = avatar.NewPlaceholder(text)
	summary, err := p.doc.AddSignLanguageAvatarToDocument(ctx, result.Avatar, cfg)
	if err != nil {
		return result, fmt.Errorf("add sign language avatar: %w", err)
	}
	result.Summary = summary
	logger.Info("avatar placeholder ready", logging.Int("inserted", summary.Inserted))
	return result, nil
}
