package preview

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"sort"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/image/font/basicfont"
)

// ContactSheet collects scaled thumbnails of rendered frames and lays them
// out in a grid ordered by frame number.
type ContactSheet struct {
	ThumbWidth int
	Columns    int

	mu     sync.Mutex
	thumbs map[int]*image.RGBA
}

func NewContactSheet(thumbWidth, columns int) *ContactSheet {
	return &ContactSheet{
		ThumbWidth: max(thumbWidth, 16),
		Columns:    max(columns, 1),
		thumbs:     make(map[int]*image.RGBA),
	}
}

// Add stores a thumbnail of img. img may be reused by the caller afterwards.
func (s *ContactSheet) Add(frame int, img image.Image) {
	b := img.Bounds()
	h := max(s.ThumbWidth*b.Dy()/max(b.Dx(), 1), 1)
	thumb := scaleTo(img, s.ThumbWidth, h, draw.ApproxBiLinear)

	s.mu.Lock()
	s.thumbs[frame] = thumb
	s.mu.Unlock()
}

func (s *ContactSheet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.thumbs)
}

// Image composes the grid. It returns nil when no thumbnail was added.
func (s *ContactSheet) Image() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.thumbs) == 0 {
		return nil
	}

	frames := make([]int, 0, len(s.thumbs))
	for f := range s.thumbs {
		frames = append(frames, f)
	}
	sort.Ints(frames)

	th := s.thumbs[frames[0]].Bounds().Dy()
	cellW, cellH := s.ThumbWidth+margin, th+margin+lineHeight
	cols := min(s.Columns, len(frames))
	rows := (len(frames) + cols - 1) / cols

	sheet := image.NewRGBA(image.Rect(0, 0, cols*cellW+margin, rows*cellH+margin))
	draw.Draw(sheet, sheet.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	r := &Renderer{face: basicfont.Face7x13}
	for i, f := range frames {
		x := margin + (i%cols)*cellW
		y := margin + (i/cols)*cellH
		thumb := s.thumbs[f]
		draw.Draw(sheet, thumb.Bounds().Add(image.Pt(x, y)), thumb, image.Point{}, draw.Src)
		r.label(sheet, x, y+thumb.Bounds().Dy()+lineHeight-3, textColor, fmt.Sprintf("#%d", f))
	}
	return sheet
}

// Save writes the grid as PNG.
func (s *ContactSheet) Save(path string) error {
	img := s.Image()
	if img == nil {
		return fmt.Errorf("contact sheet is empty")
	}
	return writePNG(path, img)
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
