// Package report defines the capability interfaces implemented once per
// output artifact (QC report, fit grid, fit result, clone trees), replacing
// type-switch dispatch on the caller side.
package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Summarizer renders a short human-readable digest of an artifact.
type Summarizer interface {
	Summarize() string
}

// Exporter writes the artifact's machine-readable form (TSV or JSON) to w.
type Exporter interface {
	Export(w io.Writer) error
}

// Artifact is an output that can both summarize and export itself.
type Artifact interface {
	Summarizer
	Exporter
}

// Named pairs an artifact with the file name it is written to.
type Named struct {
	Name     string
	Artifact Artifact
}

// WriteSummaries prints one "name: summary" line per artifact.
func WriteSummaries(w io.Writer, items []Named) error {
	for _, it := range items {
		if _, err := fmt.Fprintf(w, "%s: %s\n", it.Name, it.Artifact.Summarize()); err != nil {
			return err
		}
	}
	return nil
}

// WriteDir exports every artifact to dir/<name>, creating dir if needed.
// All artifacts are attempted; the errors are joined.
func WriteDir(dir string, items []Named) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	var errs []error
	for _, it := range items {
		if err := writeFile(filepath.Join(dir, it.Name), it.Artifact); err != nil {
			errs = append(errs, fmt.Errorf("report: %s: %w", it.Name, err))
		}
	}
	return errors.Join(errs...)
}

func writeFile(path string, a Exporter) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return a.Export(f)
}
