// Package store reads and writes the on-disk array blobs the pipeline
// exchanges with feature extraction: NumPy .npy files holding 2D float
// matrices (precomputed mel spectrograms, attention alignments).
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"

	"github.com/Max1Denysov/sova-tts-engine/datasets"
)

// FeatureStore loads precomputed mel matrices keyed by the manifest's audio
// reference, which in from-disk mode names the .npy file directly.
type FeatureStore struct {
	Dir string
}

// LoadMatrix reads the feature blob for ref.
func (s *FeatureStore) LoadMatrix(ref string) (datasets.Matrix, error) {
	return ReadMatrix(filepath.Join(s.Dir, ref))
}

// AlignmentStore loads attention-alignment matrices. Alignments live under
// two sibling directories, one for the original spelling and one for the
// stressed spelling, keyed by the audio reference with its extension
// replaced by .npy.
type AlignmentStore struct {
	OriginalDir string
	StressedDir string
}

// LoadAlignment reads the alignment blob for ref from the requested variant.
func (s *AlignmentStore) LoadAlignment(ref string, stressed bool) (datasets.Matrix, error) {
	dir := s.OriginalDir
	if stressed {
		dir = s.StressedDir
	}
	name := strings.TrimSuffix(ref, filepath.Ext(ref)) + ".npy"
	return ReadMatrix(filepath.Join(dir, name))
}

// ReadMatrix reads a 2D float32 or float64 .npy file into a Matrix.
func ReadMatrix(path string) (datasets.Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return datasets.Matrix{}, fmt.Errorf("store: open %q: %w", path, err)
	}
	defer f.Close()

	r, err := npyio.NewReader(f)
	if err != nil {
		return datasets.Matrix{}, fmt.Errorf("store: read header of %q: %w", path, err)
	}
	shape := r.Header.Descr.Shape
	if len(shape) != 2 {
		return datasets.Matrix{}, fmt.Errorf("store: %q has %d dimensions, expected 2", path, len(shape))
	}

	m := datasets.NewMatrix(shape[0], shape[1])
	dtype := r.Header.Descr.Type
	switch {
	case strings.HasSuffix(dtype, "f4"):
		var raw []float32
		if err := r.Read(&raw); err != nil {
			return datasets.Matrix{}, fmt.Errorf("store: read %q: %w", path, err)
		}
		copy(m.Data, raw)
	case strings.HasSuffix(dtype, "f8"):
		var raw []float64
		if err := r.Read(&raw); err != nil {
			return datasets.Matrix{}, fmt.Errorf("store: read %q: %w", path, err)
		}
		for i, v := range raw {
			m.Data[i] = float32(v)
		}
	default:
		return datasets.Matrix{}, fmt.Errorf("store: %q has unsupported dtype %q", path, dtype)
	}
	return m, nil
}

// WriteMatrix writes a Matrix as a 2D .npy file, creating parent directories
// as needed.
func WriteMatrix(path string, m datasets.Matrix) error {
	if m.IsEmpty() {
		return fmt.Errorf("store: refusing to write empty matrix to %q", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("store: create directory for %q: %w", path, err)
	}

	data := make([]float64, len(m.Data))
	for i, v := range m.Data {
		data[i] = float64(v)
	}
	dense := mat.NewDense(m.Rows, m.Cols, data)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("store: create %q: %w", path, err)
	}
	if err := npyio.Write(f, dense); err != nil {
		f.Close()
		return fmt.Errorf("store: write %q: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("store: close %q: %w", path, err)
	}
	return nil
}
