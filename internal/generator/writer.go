package generator

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/buildgen-dev/buildgen/internal/config"
	"github.com/buildgen-dev/buildgen/pkg/log"
)

// Writer writes generated files below Dir. Files whose content did not change
// are left alone so native build tools do not rebuild needlessly.
type Writer struct {
	Dir    string
	Config *config.Config
}

// NewWriter returns a Writer for the output directory of platform.
func NewWriter(cfg *config.Config, platform string) *Writer {
	return &Writer{Dir: cfg.OutputDir(platform), Config: cfg}
}

// Write writes files and returns how many of them were created or updated.
// When the config disables writes nothing is touched and every file is
// reported as it would have been written.
func (w *Writer) Write(files []*OutputFile) (int, error) {
	written := 0
	for _, f := range files {
		path := filepath.Join(w.Dir, filepath.FromSlash(f.Path))

		existing, err := os.ReadFile(path)
		if err == nil && bytes.Equal(existing, f.Content) {
			log.Debug().Str("path", path).Msg("unchanged")
			continue
		}

		if !w.Config.IsWritable() {
			log.Info().Msgf("would write %s", path)
			written++
			continue
		}

		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return written, fmt.Errorf("failed to create directory for %s: %w", path, err)
		}
		if err := os.WriteFile(path, f.Content, 0644); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", path, err)
		}
		log.Debug().Str("path", path).Msg("written")
		written++
	}
	return written, nil
}
