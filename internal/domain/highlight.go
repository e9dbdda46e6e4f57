package domain

import "strings"

// Scaled is a rectangle in viewport pixels recorded at a reference viewport
// size (Width x Height). It converts to any other zoom level by scaling with
// the ratio of the target viewport to the reference one.
type Scaled struct {
	X1         float64 `json:"x1"`
	Y1         float64 `json:"y1"`
	X2         float64 `json:"x2"`
	Y2         float64 `json:"y2"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	PageNumber int     `json:"pageNumber,omitempty"`
}

// ToViewport converts the rectangle into a viewport of the given size.
func (s Scaled) ToViewport(vp Viewport) ViewportRect {
	sx, sy := 1.0, 1.0
	if s.Width > 0 {
		sx = vp.Width / s.Width
	}
	if s.Height > 0 {
		sy = vp.Height / s.Height
	}
	return ViewportRect{
		Left:   s.X1 * sx,
		Top:    s.Y1 * sy,
		Width:  (s.X2 - s.X1) * sx,
		Height: (s.Y2 - s.Y1) * sy,
	}
}

// Position is the geometry of a highlight. Area highlights only carry a
// bounding rect; text highlights carry one rect per selected text run.
type Position struct {
	BoundingRect      Scaled   `json:"boundingRect"`
	Rects             []Scaled `json:"rects"`
	PageNumber        int      `json:"pageNumber"`
	UsePdfCoordinates bool     `json:"usePdfCoordinates,omitempty"`
}

func (p Position) clone() Position {
	out := p
	if p.Rects != nil {
		out.Rects = make([]Scaled, len(p.Rects))
		copy(out.Rects, p.Rects)
	}
	return out
}

// Content holds either the extracted text of a text selection or a PNG data
// URL of an area selection, never both.
type Content struct {
	Text  string `json:"text,omitempty"`
	Image string `json:"image,omitempty"`
}

// IsImage reports whether the content came from an area selection.
func (c Content) IsImage() bool {
	return c.Image != ""
}

// Comment is the user annotation attached to a highlight. Empty text means
// nothing is shown.
type Comment struct {
	Text  string `json:"text"`
	Emoji string `json:"emoji"`
}

// NewHighlight is a completed selection that has not been stored yet.
type NewHighlight struct {
	Position Position `json:"position"`
	Content  Content  `json:"content"`
	Comment  Comment  `json:"comment"`
}

// Validate checks the content and page invariants of a raw selection.
func (n NewHighlight) Validate() error {
	if err := n.Content.Validate(); err != nil {
		return err
	}
	return validatePage(n.Position.PageNumber)
}

// Validate checks that exactly one of text or image is set.
func (c Content) Validate() error {
	hasText := strings.TrimSpace(c.Text) != ""
	hasImage := c.Image != ""
	if hasText == hasImage {
		return &ValidationError{Field: "content", Message: "exactly one of text or image is required"}
	}
	return nil
}

func validatePage(page int) error {
	if page < 1 {
		return &ValidationError{Field: "position.pageNumber", Message: "must be a 1-based page number"}
	}
	return nil
}

// Highlight is a stored annotation. The ID is assigned by the store and
// never changes.
type Highlight struct {
	ID       string   `json:"id"`
	Position Position `json:"position"`
	Content  Content  `json:"content"`
	Comment  Comment  `json:"comment"`
}

// Clone returns a deep copy of the highlight.
func (h Highlight) Clone() Highlight {
	out := h
	out.Position = h.Position.clone()
	return out
}

// CloneHighlights deep-copies a collection, keeping its order.
func CloneHighlights(in []Highlight) []Highlight {
	out := make([]Highlight, len(in))
	for i, h := range in {
		out[i] = h.Clone()
	}
	return out
}

// PositionPatch lists the position fields an update replaces. Nil fields
// keep their previous value.
type PositionPatch struct {
	BoundingRect      *Scaled   `json:"boundingRect,omitempty"`
	Rects             *[]Scaled `json:"rects,omitempty"`
	PageNumber        *int      `json:"pageNumber,omitempty"`
	UsePdfCoordinates *bool     `json:"usePdfCoordinates,omitempty"`
}

// Apply merges the patch over p; patch fields win.
func (pp PositionPatch) Apply(p Position) Position {
	out := p.clone()
	if pp.BoundingRect != nil {
		out.BoundingRect = *pp.BoundingRect
	}
	if pp.Rects != nil {
		out.Rects = make([]Scaled, len(*pp.Rects))
		copy(out.Rects, *pp.Rects)
	}
	if pp.PageNumber != nil {
		out.PageNumber = *pp.PageNumber
	}
	if pp.UsePdfCoordinates != nil {
		out.UsePdfCoordinates = *pp.UsePdfCoordinates
	}
	return out
}

// Validate rejects a page number that no page can have.
func (pp PositionPatch) Validate() error {
	if pp.PageNumber != nil {
		return validatePage(*pp.PageNumber)
	}
	return nil
}

// IsEmpty reports whether the patch changes nothing.
func (pp PositionPatch) IsEmpty() bool {
	return pp.BoundingRect == nil && pp.Rects == nil && pp.PageNumber == nil && pp.UsePdfCoordinates == nil
}

// ContentPatch lists the content fields an update replaces.
type ContentPatch struct {
	Text  *string `json:"text,omitempty"`
	Image *string `json:"image,omitempty"`
}

// Apply merges the patch over c. Content stays single-kinded: when the patch
// sets only one kind, the other kind is dropped.
func (cp ContentPatch) Apply(c Content) Content {
	out := c
	if cp.Text != nil {
		out.Text = *cp.Text
		if cp.Image == nil && out.Text != "" {
			out.Image = ""
		}
	}
	if cp.Image != nil {
		out.Image = *cp.Image
		if cp.Text == nil && out.Image != "" {
			out.Text = ""
		}
	}
	return out
}

// IsEmpty reports whether the patch changes nothing.
func (cp ContentPatch) IsEmpty() bool {
	return cp.Text == nil && cp.Image == nil
}
