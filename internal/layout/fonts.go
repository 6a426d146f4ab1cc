package layout

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// TypeSpec is the font and size for one style.
type TypeSpec struct {
	Family     string // "regular", "bold" or "mono"
	Size       float64
	LineHeight float64 // multiple of Size
}

// Typography maps styles to type specs for one breakpoint.
type Typography map[Style]TypeSpec

// DefaultTypography returns the type scale for desktop or compact layouts.
func DefaultTypography(compact bool) Typography {
	heading, body := 40.0, 18.0
	if compact {
		heading, body = 28, 16
	}
	return Typography{
		StyleHeading:        {Family: "bold", Size: heading, LineHeight: 1.2},
		StyleGreeting:       {Family: "bold", Size: heading, LineHeight: 1.2},
		StyleSectionHeading: {Family: "mono", Size: 14, LineHeight: 1.6},
		StyleParagraph:      {Family: "regular", Size: body, LineHeight: 1.5},
		StyleLink:           {Family: "regular", Size: body + 2, LineHeight: 1.6},
		StyleNumber:         {Family: "mono", Size: body + 2, LineHeight: 1.6},
	}
}

type faceKey struct {
	family string
	size   float64
}

// FontSet loads font families in the background and hands out cached
// faces once they are ready. Measuring before the fonts are loaded would
// produce positions that shift later, so callers wait on Ready.
type FontSet struct {
	ready chan struct{}
	err   error

	families map[string]*opentype.Font

	mu    sync.Mutex
	faces map[faceKey]font.Face
}

// LoadFonts starts loading the Go font families. If regularPath names a
// readable font file it replaces the regular family.
func LoadFonts(regularPath string) *FontSet {
	fs := &FontSet{
		ready: make(chan struct{}),
		faces: make(map[faceKey]font.Face),
	}
	go fs.load(regularPath)
	return fs
}

func (fs *FontSet) load(regularPath string) {
	defer close(fs.ready)

	sources := map[string][]byte{
		"regular": goregular.TTF,
		"bold":    gobold.TTF,
		"mono":    gomono.TTF,
	}
	if regularPath != "" {
		data, err := os.ReadFile(regularPath)
		if err != nil {
			log.Printf("⚠️ Failed to read font file %s, using Go Regular: %v", regularPath, err)
		} else {
			sources["regular"] = data
		}
	}

	families := make(map[string]*opentype.Font, len(sources))
	for name, data := range sources {
		parsed, err := opentype.Parse(data)
		if err != nil {
			fs.err = fmt.Errorf("parse %s font: %w", name, err)
			return
		}
		families[name] = parsed
	}
	fs.families = families
}

// Ready is closed once loading has finished, successfully or not.
func (fs *FontSet) Ready() <-chan struct{} {
	return fs.ready
}

// Loaded reports whether fonts are ready without blocking.
func (fs *FontSet) Loaded() bool {
	select {
	case <-fs.ready:
		return fs.err == nil
	default:
		return false
	}
}

// Wait blocks until the fonts are loaded or ctx is done.
func (fs *FontSet) Wait(ctx context.Context) error {
	select {
	case <-fs.ready:
		return fs.err
	case <-ctx.Done():
		return fmt.Errorf("%w: fonts: %v", ErrNotReady, ctx.Err())
	}
}

// Face returns a cached face for a type size and family.
func (fs *FontSet) Face(ts TypeSpec) (font.Face, error) {
	if !fs.Loaded() {
		return nil, fmt.Errorf("%w: fonts not loaded", ErrNotReady)
	}

	key := faceKey{family: ts.Family, size: ts.Size}
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if face, ok := fs.faces[key]; ok {
		return face, nil
	}
	f, ok := fs.families[ts.Family]
	if !ok {
		return nil, fmt.Errorf("unknown font family %q", ts.Family)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    ts.Size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s face at %v: %w", ts.Family, ts.Size, err)
	}
	fs.faces[key] = face
	return face, nil
}
