package media

import (
	"fmt"
	"strings"
)

// Transform is a fixed delivery transformation applied to a public id when
// the display URL is built.
type Transform struct {
	Format     string
	Crop       string
	Background string
	Width      int
	Height     int
}

var (
	// ChatTransform is used for images that arrive through the chat webhook.
	ChatTransform = Transform{Format: "jpg", Crop: "fill", Width: 100, Height: 150}
	// ManualTransform is used for images added through the web form.
	ManualTransform = Transform{Format: "jpg", Crop: "fill", Width: 300, Height: 300}
	// ListTransform is used by the JSON listing consumed by the slideshow page.
	ListTransform = Transform{Format: "jpg", Crop: "pad", Background: "black", Width: 300, Height: 300}
)

// String renders the transformation segment, e.g. "c_pad,b_black,h_300,w_300".
func (t Transform) String() string {
	parts := make([]string, 0, 4)
	if t.Crop != "" {
		parts = append(parts, "c_"+t.Crop)
	}
	if t.Background != "" {
		parts = append(parts, "b_"+t.Background)
	}
	if t.Height > 0 {
		parts = append(parts, fmt.Sprintf("h_%d", t.Height))
	}
	if t.Width > 0 {
		parts = append(parts, fmt.Sprintf("w_%d", t.Width))
	}
	return strings.Join(parts, ",")
}
