package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// Dirs holds the data directories of a run
type Dirs struct {
	Downloads  string
	Extracted  string
	Translated string
	Output     string
}

// NewDirs lays the data directories out under root
func NewDirs(root string) Dirs {
	return Dirs{
		Downloads:  filepath.Join(root, "downloads"),
		Extracted:  filepath.Join(root, "extracted_text"),
		Translated: filepath.Join(root, "translated_text"),
		Output:     filepath.Join(root, "output"),
	}
}

// Ensure creates every directory
func (d Dirs) Ensure() error {
	for _, dir := range []string{d.Downloads, d.Extracted, d.Translated, d.Output} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// Env is built once at process start and passed to the pipeline
type Env struct {
	Dirs Dirs
	Log  *logrus.Logger
}

// Ensure creates the data directories
func (e *Env) Ensure() error {
	return e.Dirs.Ensure()
}
