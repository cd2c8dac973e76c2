package output

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/soocke/pixel-diff-go/domain/command"
)

// UnknownBranch is used when the project is not a git checkout.
const UnknownBranch = "UNKNOWN"

const maxCollisions = 10000

// FileFactory creates uniquely named output files grouped by git branch:
//
//	<root>/<branch>/<subdir>/<yyMMdd-HHmmss>[-tag][-n].<ext>
type FileFactory struct {
	logger     *slog.Logger
	root       string
	projectDir string
	run        command.Runner
	now        func() time.Time
}

// NewFileFactory constructs a factory writing below root. The branch is read
// from the git repository at projectDir.
func NewFileFactory(logger *slog.Logger, run command.Runner, root, projectDir string) *FileFactory {
	if run == nil {
		run = command.Exec{}
	}
	return &FileFactory{logger: logger, root: root, projectDir: projectDir, run: run, now: time.Now}
}

// Branch returns the current git branch name or UnknownBranch.
func (f *FileFactory) Branch(ctx context.Context) string {
	out, err := f.run.Output(ctx, f.projectDir, "git", "symbolic-ref", "--short", "HEAD")
	if err != nil {
		if f.logger != nil {
			f.logger.Debug("git branch unavailable", "error", err)
		}
		return UnknownBranch
	}
	branch := strings.TrimSpace(string(out))
	if branch == "" {
		return UnknownBranch
	}
	return sanitize(branch)
}

// Create reserves a new empty file and returns its path. tag may be empty.
func (f *FileFactory) Create(ctx context.Context, subdir, ext, tag string) (string, error) {
	dir := filepath.Join(f.root, f.Branch(ctx), subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	base := f.now().Format("060102-150405")
	if tag != "" {
		base += "-" + sanitize(tag)
	}
	ext = strings.TrimPrefix(ext, ".")
	for i := 0; i < maxCollisions; i++ {
		name := base + "." + ext
		if i > 0 {
			name = fmt.Sprintf("%s-%d.%s", base, i, ext)
		}
		path := filepath.Join(dir, name)
		fh, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", err
		}
		return path, fh.Close()
	}
	return "", fmt.Errorf("no free name for %s in %s", base, dir)
}

// SavePNG creates a new output file and encodes img into it.
func (f *FileFactory) SavePNG(ctx context.Context, subdir, tag string, img image.Image) (string, error) {
	if img == nil {
		return "", errors.New("no image to save")
	}
	path, err := f.Create(ctx, subdir, "png", tag)
	if err != nil {
		return "", err
	}
	if err := WritePNG(path, img); err != nil {
		os.Remove(path)
		return "", err
	}
	if f.logger != nil {
		f.logger.Info("output saved", "path", path)
	}
	return path, nil
}

// WritePNG encodes img to path, replacing any existing file.
func WritePNG(path string, img image.Image) error {
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(fh, img); err != nil {
		fh.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return fh.Close()
}

// sanitize keeps a branch or tag usable as a single path element.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, s)
}
