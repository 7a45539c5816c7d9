package scene

import "errors"

// LayerType determines a layer's default player visibility.
type LayerType string

const (
	LayerBackground LayerType = "background"
	LayerPlayer     LayerType = "player"
	LayerCustom     LayerType = "custom"
)

// DrawingType is the shape of a vector drawing.
type DrawingType string

const (
	DrawingFree      DrawingType = "free"
	DrawingLine      DrawingType = "line"
	DrawingRectangle DrawingType = "rectangle"
	DrawingCircle    DrawingType = "circle"
)

// IsValidDrawingType reports whether t is a known drawing type.
func IsValidDrawingType(t DrawingType) bool {
	switch t {
	case DrawingFree, DrawingLine, DrawingRectangle, DrawingCircle:
		return true
	}
	return false
}

// TextStyle is the font style of a text element.
type TextStyle string

const (
	StyleNormal     TextStyle = "normal"
	StyleBold       TextStyle = "bold"
	StyleItalic     TextStyle = "italic"
	StyleBoldItalic TextStyle = "bold-italic"
)

// IsValidTextStyle reports whether s is a known text style.
func IsValidTextStyle(s TextStyle) bool {
	switch s {
	case StyleNormal, StyleBold, StyleItalic, StyleBoldItalic:
		return true
	}
	return false
}

// Scene is a named canvas. Active marks the single scene currently
// presented to players; the background/foreground references point at two
// of the scene's own layers.
type Scene struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	ThumbnailPath     string `json:"thumbnail_path,omitempty"`
	Active            bool   `json:"active"`
	OwnerID           int64  `json:"owner_id"`
	BackgroundLayerID *int64 `json:"background_layer_id,omitempty"`
	ForegroundLayerID *int64 `json:"foreground_layer_id,omitempty"`
}

// Layer is a z-ordered grouping of visual elements within a scene.
// Lower order_index draws first.
type Layer struct {
	ID         int64     `json:"id"`
	SceneID    int64     `json:"scene_id"`
	Name       string    `json:"name"`
	OrderIndex int       `json:"order_index"`
	Type       LayerType `json:"type"`
	Visible    bool      `json:"visible"`
}

// Token is a positioned, scaled, rotated image reference on a layer.
// Metadata is a schema-less string-keyed map (recognised keys today:
// "name"); unknown keys round-trip untouched.
type Token struct {
	ID        int64          `json:"id"`
	LayerID   int64          `json:"layer_id"`
	ImagePath string         `json:"image_path"`
	X         float64        `json:"x"`
	Y         float64        `json:"y"`
	Scale     float64        `json:"scale"`
	Rotation  float64        `json:"rotation"`
	ZIndex    int            `json:"z_index"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Point is a single coordinate in a drawing's point sequence.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Drawing is a vector shape on a layer.
type Drawing struct {
	ID          int64       `json:"id"`
	LayerID     int64       `json:"layer_id"`
	Type        DrawingType `json:"type"`
	Points      []Point     `json:"points"`
	Color       string      `json:"color"`
	StrokeWidth float64     `json:"stroke_width"`
}

// TextElement is positioned text on a layer.
type TextElement struct {
	ID       int64     `json:"id"`
	LayerID  int64     `json:"layer_id"`
	X        float64   `json:"x"`
	Y        float64   `json:"y"`
	Text     string    `json:"text"`
	FontSize int       `json:"font_size"`
	Color    string    `json:"color"`
	Style    TextStyle `json:"style"`
}

// LayerDetail is a layer together with its child elements. The child
// slices are always present in JSON (possibly empty) so filtered views
// are distinguishable from absent data only by being empty.
type LayerDetail struct {
	Layer
	Tokens       []Token       `json:"tokens"`
	Drawings     []Drawing     `json:"drawings"`
	TextElements []TextElement `json:"text_elements"`
}

// SceneDetail is a scene with its full layer stack.
type SceneDetail struct {
	Scene
	Layers []LayerDetail `json:"layers"`
}

// TokenMove is a partial position update for a token. Nil Rotation/Scale
// leave the stored values untouched.
type TokenMove struct {
	TokenID  int64    `json:"token_id"`
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	Rotation *float64 `json:"rotation,omitempty"`
	Scale    *float64 `json:"scale,omitempty"`
}

// Sentinel errors for scene operations.
var (
	ErrSceneNotFound = errors.New("scene not found")
	ErrLayerNotFound = errors.New("layer not found")
	ErrTokenNotFound = errors.New("token not found")
	ErrInvalidScene  = errors.New("invalid scene")
)
