package render

import (
	"bytes"
	"image/color"

	"github.com/fogleman/gg"

	"github.com/sceneplan/sceneplan/pkg/track"
)

// kindColors are the raster equivalents of kindFills.
var kindColors = map[track.Kind]color.NRGBA{
	track.KindTitle:    {0x4e, 0x79, 0xa7, 0xff},
	track.KindText:     {0x59, 0xa1, 0x4f, 0xff},
	track.KindEquation: {0xf2, 0x8e, 0x2b, 0xff},
	track.KindShape:    {0xe1, 0x57, 0x59, 0xff},
	track.KindDiagram:  {0xb0, 0x7a, 0xa1, 0xff},
	track.KindLabel:    {0x76, 0xb7, 0xb2, 0xff},
	track.KindImage:    {0xed, 0xc9, 0x48, 0xff},
}

var defaultColor = color.NRGBA{0xba, 0xb0, 0xac, 0xff}

// RenderPNG rasterizes the same snapshot RenderSVG produces.
func RenderPNG(tr *track.Tracker, opts ...SVGOption) ([]byte, error) {
	r := svgRenderer{scale: DefaultScale}
	for _, opt := range opts {
		opt(&r)
	}

	canvas := tr.Canvas()
	t := canvasTransform{canvas.Width, canvas.Height, r.scale}
	pxW := int(canvas.Width * r.scale)
	pxH := int(canvas.Height * r.scale)

	dc := gg.NewContext(pxW, pxH)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	if r.showGrid {
		dc.SetColor(color.NRGBA{0xcc, 0xcc, 0xcc, 0xff})
		dc.SetLineWidth(1)
		dc.SetDash(6, 4)
		for i := 1; i <= 2; i++ {
			x := float64(pxW) * float64(i) / 3
			y := float64(pxH) * float64(i) / 3
			dc.DrawLine(x, 0, x, float64(pxH))
			dc.DrawLine(0, y, float64(pxW), y)
		}
		dc.Stroke()
		dc.SetDash()
	}

	for _, obj := range tr.Timeline() {
		if r.snapshot && !obj.ActiveAt(r.at) {
			continue
		}
		fill, ok := kindColors[obj.Kind]
		if !ok {
			fill = defaultColor
		}
		x := t.px(obj.Box.XMin)
		y := t.py(obj.Box.YMax)
		w := obj.Box.Width() * r.scale
		h := obj.Box.Height() * r.scale

		fill.A = 0xc0
		dc.SetColor(fill)
		dc.DrawRoundedRectangle(x, y, w, h, 3)
		dc.FillPreserve()
		dc.SetRGB(0.2, 0.2, 0.2)
		dc.SetLineWidth(1.5)
		dc.Stroke()

		dc.SetRGB(0.1, 0.1, 0.1)
		dc.DrawStringAnchored(obj.ID, x+w/2, y+h/2, 0.5, 0.5)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
