package render

import (
	"bytes"
	"fmt"

	"github.com/sceneplan/sceneplan/pkg/track"
)

// DefaultScale is the default pixel density in pixels per scene unit.
const DefaultScale = 80.0

// kindFills maps object kinds to fill colors. Unknown kinds fall back
// to grey.
var kindFills = map[track.Kind]string{
	track.KindTitle:    "#4e79a7",
	track.KindText:     "#59a14f",
	track.KindEquation: "#f28e2b",
	track.KindShape:    "#e15759",
	track.KindDiagram:  "#b07aa1",
	track.KindLabel:    "#76b7b2",
	track.KindImage:    "#edc948",
}

const defaultFill = "#bab0ac"

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	at       float64
	snapshot bool
	showGrid bool
	scale    float64
}

// WithTime restricts the snapshot to objects active at the instant.
func WithTime(t float64) SVGOption {
	return func(r *svgRenderer) {
		r.at = t
		r.snapshot = true
	}
}

// WithGrid overlays the 3x3 region boundaries.
func WithGrid() SVGOption { return func(r *svgRenderer) { r.showGrid = true } }

// WithScale sets the pixel density in pixels per scene unit.
func WithScale(s float64) SVGOption { return func(r *svgRenderer) { r.scale = s } }

// RenderSVG draws the tracker's objects on the canvas. Without
// WithTime every tracked object is drawn; the storyboard then shows
// the union of all windows.
func RenderSVG(tr *track.Tracker, opts ...SVGOption) []byte {
	r := svgRenderer{scale: DefaultScale}
	for _, opt := range opts {
		opt(&r)
	}

	canvas := tr.Canvas()
	pxW := canvas.Width * r.scale
	pxH := canvas.Height * r.scale

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		pxW, pxH, pxW, pxH)
	fmt.Fprintf(&buf, `  <rect x="0" y="0" width="%.1f" height="%.1f" fill="#ffffff" stroke="#333333"/>`+"\n", pxW, pxH)

	if r.showGrid {
		renderRegionGrid(&buf, pxW, pxH)
	}

	objects := tr.Timeline()
	for _, obj := range objects {
		if r.snapshot && !obj.ActiveAt(r.at) {
			continue
		}
		renderObject(&buf, &r, canvasTransform{canvas.Width, canvas.Height, r.scale}, obj)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// canvasTransform maps scene coordinates (center origin, y up) to
// pixel coordinates (top-left origin, y down).
type canvasTransform struct {
	width, height, scale float64
}

func (t canvasTransform) px(x float64) float64 { return (x + t.width/2) * t.scale }
func (t canvasTransform) py(y float64) float64 { return (t.height/2 - y) * t.scale }

func renderObject(buf *bytes.Buffer, r *svgRenderer, t canvasTransform, obj *track.Object) {
	fill, ok := kindFills[obj.Kind]
	if !ok {
		fill = defaultFill
	}

	x := t.px(obj.Box.XMin)
	y := t.py(obj.Box.YMax)
	w := obj.Box.Width() * t.scale
	h := obj.Box.Height() * t.scale

	fmt.Fprintf(buf, `  <g id="obj-%s">`+"\n", obj.ID)
	fmt.Fprintf(buf, `    <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" fill-opacity="0.75" stroke="#333333" rx="3"/>`+"\n",
		x, y, w, h, fill)
	fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" font-size="%.0f" text-anchor="middle" dominant-baseline="middle" fill="#1a1a1a">%s</text>`+"\n",
		x+w/2, y+h/2, labelSize(r.scale, h), escapeText(obj.ID))
	if !r.snapshot {
		fmt.Fprintf(buf, `    <title>%s [%s] t=[%g,%g)</title>`+"\n",
			escapeText(obj.ID), obj.Kind, obj.Window.Start, obj.Window.End)
	}
	buf.WriteString("  </g>\n")
}

func renderRegionGrid(buf *bytes.Buffer, pxW, pxH float64) {
	buf.WriteString(`  <g stroke="#cccccc" stroke-dasharray="6,4">` + "\n")
	for i := 1; i <= 2; i++ {
		x := pxW * float64(i) / 3
		y := pxH * float64(i) / 3
		fmt.Fprintf(buf, `    <line x1="%.1f" y1="0" x2="%.1f" y2="%.1f"/>`+"\n", x, x, pxH)
		fmt.Fprintf(buf, `    <line x1="0" y1="%.1f" x2="%.1f" y2="%.1f"/>`+"\n", y, pxW, y)
	}
	buf.WriteString("  </g>\n")
}

func labelSize(scale, boxHeightPx float64) float64 {
	size := scale * 0.18
	if size > boxHeightPx*0.6 {
		size = boxHeightPx * 0.6
	}
	if size < 8 {
		size = 8
	}
	return size
}

func escapeText(s string) string {
	var buf bytes.Buffer
	for _, r := range s {
		switch r {
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '&':
			buf.WriteString("&amp;")
		default:
			buf.WriteRune(r)
		}
	}
	return buf.String()
}
