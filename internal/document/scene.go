package document

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Kind distinguishes scene nodes.
type Kind string

const (
	KindRectangle Kind = "rectangle"
	KindText      Kind = "text"
)

// ErrSceneFull is returned by Append once the scene reaches its capacity.
var ErrSceneFull = errors.New("scene is full")

// Color is an RGBA color with components in [0,1].
type Color struct {
	Red   float64 `json:"red"`
	Green float64 `json:"green"`
	Blue  float64 `json:"blue"`
	Alpha float64 `json:"alpha"`
}

// Element is a node in the document.
type Element struct {
	ID     string  `json:"id"`
	Kind   Kind    `json:"kind"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	Fill   *Color  `json:"fill,omitempty"`
	Text   string  `json:"text,omitempty"`
}

// Translate moves the element to (x, y).
func (e *Element) Translate(x, y float64) {
	e.X = x
	e.Y = y
}

// Container accepts new child elements.
type Container interface {
	Append(el *Element) error
}

// Editor is the host document surface the proxy draws on.
type Editor interface {
	CreateRectangle() (*Element, error)
	CreateText() (*Element, error)
	MakeColorFill(c Color) (*Color, error)
	InsertionParent() (Container, error)
}

// Scene is an in-memory document. It is safe for concurrent use.
type Scene struct {
	mu       sync.RWMutex
	elements []Element
	capacity int
	newID    func() string
}

// SceneOption customizes a Scene.
type SceneOption func(*Scene)

// WithCapacity limits the number of elements; zero means unlimited.
func WithCapacity(n int) SceneOption {
	return func(s *Scene) {
		if n >= 0 {
			s.capacity = n
		}
	}
}

// WithIDGenerator overrides element ID generation.
func WithIDGenerator(fn func() string) SceneOption {
	return func(s *Scene) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// NewScene returns an empty scene.
func NewScene(opts ...SceneOption) *Scene {
	s := &Scene{newID: uuid.NewString}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scene) CreateRectangle() (*Element, error) {
	return &Element{ID: s.newID(), Kind: KindRectangle}, nil
}

func (s *Scene) CreateText() (*Element, error) {
	return &Element{ID: s.newID(), Kind: KindText}, nil
}

func (s *Scene) MakeColorFill(c Color) (*Color, error) {
	for _, v := range []float64{c.Red, c.Green, c.Blue, c.Alpha} {
		if v < 0 || v > 1 {
			return nil, fmt.Errorf("color component %v out of range", v)
		}
	}
	fill := c
	return &fill, nil
}

// InsertionParent returns the scene itself; it is the only container.
func (s *Scene) InsertionParent() (Container, error) {
	return s, nil
}

// Append stores a copy of el.
func (s *Scene) Append(el *Element) error {
	if el == nil {
		return errors.New("nil element")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.capacity > 0 && len(s.elements) >= s.capacity {
		return ErrSceneFull
	}
	stored := *el
	if stored.ID == "" {
		stored.ID = s.newID()
	}
	if el.Fill != nil {
		fill := *el.Fill
		stored.Fill = &fill
	}
	s.elements = append(s.elements, stored)
	return nil
}

// Elements returns a snapshot in insertion order.
func (s *Scene) Elements() []Element {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Element, len(s.elements))
	for i, el := range s.elements {
		out[i] = el
		if el.Fill != nil {
			fill := *el.Fill
			out[i].Fill = &fill
		}
	}
	return out
}

// Len reports the number of elements.
func (s *Scene) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.elements)
}
