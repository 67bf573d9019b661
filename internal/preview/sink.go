package preview

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/ivlev/narracomp/internal/composition"
)

// PNGSink writes one preview PNG per render state and feeds the optional
// contact sheet.
type PNGSink struct {
	Dir      string
	Renderer *Renderer
	Sheet    *ContactSheet
}

// FramePath is where the preview of frame is written.
func (s *PNGSink) FramePath(frame int) string {
	return filepath.Join(s.Dir, fmt.Sprintf("frame_%06d.png", frame))
}

func (s *PNGSink) WriteFrame(ctx context.Context, st composition.RenderState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	img := s.Renderer.Render(st)
	defer s.Renderer.Release(img)

	if s.Sheet != nil {
		s.Sheet.Add(st.Frame, img)
	}
	return writePNG(s.FramePath(st.Frame), img)
}
