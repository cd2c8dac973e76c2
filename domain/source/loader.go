package source

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/dustin/go-humanize"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/image/draw"
)

// ErrEmptyPath is returned when Load is called without a path.
var ErrEmptyPath = errors.New("empty image path")

// ErrUnsupportedFormat is returned for files the loader will not decode.
var ErrUnsupportedFormat = errors.New("unsupported image format")

var supportedExt = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".bmp": true, ".tif": true, ".tiff": true}

type cacheKey struct {
	path    string
	size    int64
	modNano int64
}

// Loader decodes image files into RGBA rasters and memoizes them by file
// identity, so re-selecting an unchanged reference is free. Returned images
// are shared and must be treated as read-only.
type Loader struct {
	logger *slog.Logger
	cache  *lru.Cache[cacheKey, *image.RGBA]
}

// NewLoader constructs a loader caching up to size decoded images.
func NewLoader(logger *slog.Logger, size int) (*Loader, error) {
	if size <= 0 {
		size = 1
	}
	cache, err := lru.New[cacheKey, *image.RGBA](size)
	if err != nil {
		return nil, fmt.Errorf("image cache: %w", err)
	}
	return &Loader{logger: logger, cache: cache}, nil
}

// Supported reports whether path has an extension the loader decodes.
func Supported(path string) bool {
	return supportedExt[strings.ToLower(filepath.Ext(path))]
}

// Load decodes path, applying EXIF orientation.
func (l *Loader) Load(path string) (*image.RGBA, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	if !Supported(path) {
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	key := cacheKey{path: filepath.Clean(path), size: fi.Size(), modNano: fi.ModTime().UnixNano()}
	if img, ok := l.cache.Get(key); ok {
		return img, nil
	}
	decoded, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	img := ToRGBA(decoded)
	l.cache.Add(key, img)
	if l.logger != nil {
		l.logger.Debug("image decoded",
			"path", path,
			"width", img.Rect.Dx(),
			"height", img.Rect.Dy(),
			"file", humanize.Bytes(uint64(fi.Size())),
			"raster", humanize.Bytes(uint64(len(img.Pix))),
		)
	}
	return img, nil
}

// Forget drops every cached decode of path.
func (l *Loader) Forget(path string) {
	clean := filepath.Clean(path)
	for _, k := range l.cache.Keys() {
		if k.path == clean {
			l.cache.Remove(k)
		}
	}
}

// Len reports the number of cached images.
func (l *Loader) Len() int { return l.cache.Len() }

// ToRGBA returns img as a zero-origin *image.RGBA, converting when needed.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Rect, img, b.Min, draw.Src)
	return dst
}
