package preview

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
)

var backdropExtensions = []string{".png", ".jpg", ".jpeg"}

// LoadBackdrops reads scene stills named after their scene id (opening.png,
// intro.jpg, ...) from dir and scales each one to width x height.
func LoadBackdrops(dir string, width, height int) (map[string]image.Image, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	backdrops := make(map[string]image.Image)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if !isBackdrop(ext) {
			continue
		}
		img, err := decodeImage(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		id := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		backdrops[id] = scaleTo(img, width, height, draw.CatmullRom)
	}
	return backdrops, nil
}

func isBackdrop(ext string) bool {
	for _, e := range backdropExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

func scaleTo(src image.Image, width, height int, scaler draw.Scaler) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	scaler.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}
