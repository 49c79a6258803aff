package avatar

import "strings"

// PlaceholderLabel is the text drawn on every avatar placeholder.
const PlaceholderLabel = "Sign Language Avatar (Placeholder)"

// Point is a document position.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is a document extent.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// SignLanguageAvatar is a stand-in for a future sign-language rendering.
// AvatarURL is reserved and currently always empty.
type SignLanguageAvatar struct {
	AvatarURL     string `json:"avatarUrl,omitempty"`
	SourceText    string `json:"sourceText"`
	IsPlaceholder bool   `json:"isPlaceholder"`
}

// Config optionally overrides where the placeholder is drawn.
type Config struct {
	Position *Point `json:"position,omitempty"`
	Size     *Size  `json:"size,omitempty"`
}

// Placement is a resolved rectangle plus its label anchor.
type Placement struct {
	Position Point
	Size     Size
	Label    Point
}

// DefaultPlacement is used when a Config omits position or size.
var DefaultPlacement = Placement{
	Position: Point{X: 10, Y: 200},
	Size:     Size{Width: 200, Height: 200},
}

// NewPlaceholder builds the placeholder avatar for sourceText.
func NewPlaceholder(sourceText string) SignLanguageAvatar {
	return SignLanguageAvatar{SourceText: strings.TrimSpace(sourceText), IsPlaceholder: true}
}

// Resolve fills the omitted parts of cfg from defaults and anchors the label
// ten points in from the left edge, ten points above the vertical midpoint.
func Resolve(cfg *Config, defaults Placement) Placement {
	p := Placement{Position: defaults.Position, Size: defaults.Size}
	if cfg != nil {
		if cfg.Position != nil {
			p.Position = *cfg.Position
		}
		if cfg.Size != nil {
			p.Size = *cfg.Size
		}
	}
	p.Label = Point{X: p.Position.X + 10, Y: p.Position.Y + p.Size.Height/2 - 10}
	return p
}
