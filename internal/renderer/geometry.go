package renderer

import (
	"pdf-highlighter/internal/domain"

	"seehuhn.de/go/geom/rect"
)

// UnionRects returns the bounding rect of the text runs, expressed at the
// reference size of the first run.
func UnionRects(runs []domain.Scaled) domain.Scaled {
	if len(runs) == 0 {
		return domain.Scaled{}
	}
	ref := runs[0]
	box := toRect(ref, ref)
	for _, run := range runs[1:] {
		r := toRect(run, ref)
		box.Extend(r)
	}
	return domain.Scaled{
		X1:         box.LLx,
		Y1:         box.LLy,
		X2:         box.URx,
		Y2:         box.URy,
		Width:      ref.Width,
		Height:     ref.Height,
		PageNumber: ref.PageNumber,
	}
}

// toRect converts s into the reference viewport of ref. Viewport y grows
// downwards, so the "lower" corner is the top-left one.
func toRect(s, ref domain.Scaled) rect.Rect {
	sx, sy := 1.0, 1.0
	if s.Width > 0 && ref.Width > 0 {
		sx = ref.Width / s.Width
	}
	if s.Height > 0 && ref.Height > 0 {
		sy = ref.Height / s.Height
	}
	return rect.Rect{
		LLx: min(s.X1, s.X2) * sx,
		LLy: min(s.Y1, s.Y2) * sy,
		URx: max(s.X1, s.X2) * sx,
		URy: max(s.Y1, s.Y2) * sy,
	}
}
