// Package preview rasterises render states into debug frames. It stands in
// for the real scene renderer: every scene is a flat panel (or a backdrop
// still) composited with the transition blend, with cue and emphasis
// overlays drawn on top.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"sort"

	"github.com/skip2/go-qrcode"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ivlev/narracomp/internal/composition"
	"github.com/ivlev/narracomp/internal/cue"
	"github.com/ivlev/narracomp/internal/effects"
	"github.com/ivlev/narracomp/internal/highlight"
	"github.com/ivlev/narracomp/internal/sequencer"
	"github.com/ivlev/narracomp/internal/system"
)

const (
	margin     = 8
	lineHeight = 15
	barWidth   = 48
)

var (
	background = color.RGBA{0x10, 0x10, 0x14, 0xff}
	textColor  = color.RGBA{0xf0, 0xf0, 0xf0, 0xff}
	emphColor  = color.RGBA{0xff, 0xc8, 0x2e, 0xff}
	cueColor   = color.RGBA{0x4c, 0xd9, 0x64, 0xff}
	mountColor = color.RGBA{0x70, 0x70, 0x70, 0xff}
)

var palette = []color.RGBA{
	{0x1f, 0x4e, 0x79, 0xff},
	{0x7a, 0x2e, 0x4b, 0xff},
	{0x2e, 0x6b, 0x3a, 0xff},
	{0x6b, 0x4f, 0x1f, 0xff},
	{0x3d, 0x2e, 0x7a, 0xff},
	{0x1f, 0x6b, 0x6b, 0xff},
	{0x7a, 0x3d, 0x1f, 0xff},
	{0x4b, 0x4b, 0x5a, 0xff},
}

func sceneColor(index int) color.RGBA {
	return palette[index%len(palette)]
}

// Renderer draws render states at a fixed raster size. It is safe for
// concurrent use.
type Renderer struct {
	CompositionID string
	Width         int
	Height        int
	QR            bool

	// Backdrops replace the flat panel of a scene, keyed by scene id and
	// already scaled to Width x Height.
	Backdrops map[string]image.Image

	pool *system.ImagePool
	face font.Face
}

func NewRenderer(compositionID string, width, height int, pool *system.ImagePool) *Renderer {
	if pool == nil {
		pool = system.NewImagePool()
	}
	return &Renderer{
		CompositionID: compositionID,
		Width:         width,
		Height:        height,
		pool:          pool,
		face:          basicfont.Face7x13,
	}
}

// Render rasterises st into a pooled buffer. Hand it back with Release.
func (r *Renderer) Render(st composition.RenderState) *image.RGBA {
	bounds := image.Rect(0, 0, r.Width, r.Height)
	img := r.pool.Get(bounds)
	draw.Draw(img, bounds, image.NewUniform(background), image.Point{}, draw.Src)

	if !st.Visible {
		r.label(img, margin, margin+lineHeight, textColor, fmt.Sprintf("frame %d: no scene", st.Frame))
		r.stamp(img, st.Frame)
		return img
	}

	sel := st.Scene
	r.drawScene(img, sel.Primary, st.Blend.OutgoingOpacity, st.Blend.OutgoingOffset, st.Entrance)
	if sel.Transitioning {
		r.drawScene(img, sel.Incoming, st.Blend.IncomingOpacity, st.Blend.IncomingOffset, 1)
	}

	header := fmt.Sprintf("frame %d  t=%.2fs", st.Frame, st.Time)
	if sel.Transitioning {
		header += fmt.Sprintf("  %s %.0f%%", sel.Style, sel.Progress*100)
	}
	r.label(img, margin, r.Height-margin-lineHeight*(len(st.Cues)+1), textColor, header)

	r.drawEmphasis(img, st.Emphasis)
	r.drawCues(img, st.Cues)
	r.stamp(img, st.Frame)
	return img
}

// Release returns a buffer obtained from Render.
func (r *Renderer) Release(img *image.RGBA) {
	r.pool.Put(img)
}

// drawScene composites one scene panel. entrance slides its label in from the
// left as it goes from 0 to 1.
func (r *Renderer) drawScene(img *image.RGBA, slot sequencer.Slot, opacity float64, off effects.Offset, entrance float64) {
	if opacity <= 0 {
		return
	}
	bounds := img.Bounds()
	shift := image.Pt(int(off.X*float64(r.Width)), int(off.Y*float64(r.Height)))
	dr := bounds.Add(shift).Intersect(bounds)
	if dr.Empty() {
		return
	}

	var src image.Image = image.NewUniform(sceneColor(slot.Index))
	sp := image.Point{}
	if bd, ok := r.Backdrops[slot.ID]; ok {
		src = bd
		sp = bd.Bounds().Min.Add(dr.Min.Sub(shift))
	}

	if opacity >= 1 {
		draw.Draw(img, dr, src, sp, draw.Over)
	} else {
		mask := image.NewUniform(color.Alpha{A: uint8(opacity*255 + 0.5)})
		draw.DrawMask(img, dr, src, sp, mask, image.Point{}, draw.Over)
	}

	if opacity >= 0.5 {
		lag := int((1 - entrance) * barWidth)
		r.label(img, shift.X+margin-lag, shift.Y+margin+lineHeight,
			textColor, fmt.Sprintf("%s [%d]", slot.ID, slot.LocalFrame))
	}
}

func (r *Renderer) drawEmphasis(img *image.RGBA, states map[string]highlight.State) {
	ids := make([]string, 0, len(states))
	for id := range states {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	y := margin + 3*lineHeight
	for _, id := range ids {
		s := states[id]
		col := textColor
		if s.Emphasized {
			col = emphColor
		}
		r.label(img, margin, y, col, id)
		w := int(barWidth * s.Scale)
		fill(img, image.Rect(margin, y+3, margin+w, y+6), col)
		y += lineHeight
	}
}

func (r *Renderer) drawCues(img *image.RGBA, cues []cue.Active) {
	y := r.Height - margin - lineHeight*len(cues)
	for _, c := range cues {
		col := cueColor
		text := fmt.Sprintf("%s %+d gain %.2f", c.ID, c.Offset, c.Gain)
		if c.Premounted() {
			col = mountColor
			text = fmt.Sprintf("%s mounted, starts in %d", c.ID, -c.Offset)
		}
		x := margin + 2*barWidth
		fill(img, image.Rect(margin, y-8, margin+int(2*barWidth*c.Gain), y-4), col)
		r.label(img, x+margin, y, col, text)
		y += lineHeight
	}
}

// stamp draws a QR code carrying "<composition>#<frame>" in the top right
// corner so an exported still can be traced back to its frame.
func (r *Renderer) stamp(img *image.RGBA, frame int) {
	if !r.QR {
		return
	}
	q, err := qrcode.New(fmt.Sprintf("%s#%d", r.CompositionID, frame), qrcode.Low)
	if err != nil {
		return
	}
	code := q.Image(min(r.Width, r.Height) / 5)
	cb := code.Bounds()
	at := image.Pt(r.Width-margin-cb.Dx(), margin)
	draw.Draw(img, image.Rectangle{Min: at, Max: at.Add(cb.Size())}, code, cb.Min, draw.Src)
}

func (r *Renderer) label(img *image.RGBA, x, y int, col color.Color, text string) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: r.face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

func fill(img *image.RGBA, rect image.Rectangle, col color.Color) {
	draw.Draw(img, rect.Intersect(img.Bounds()), image.NewUniform(col), image.Point{}, draw.Src)
}
