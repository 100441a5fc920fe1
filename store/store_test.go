package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sbinet/npyio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Max1Denysov/sova-tts-engine/datasets"
)

func TestWriteReadMatrix_Roundtrip(t *testing.T) {
	m := datasets.NewMatrix(3, 4)
	for i := range m.Data {
		m.Data[i] = float32(i) * 0.25
	}

	path := filepath.Join(t.TempDir(), "mel", "a1.npy")
	require.NoError(t, WriteMatrix(path, m))

	got, err := ReadMatrix(path)
	require.NoError(t, err)

	assert.Equal(t, 3, got.Rows)
	assert.Equal(t, 4, got.Cols)
	for i := range m.Data {
		assert.InDelta(t, m.Data[i], got.Data[i], 1e-6, "element %d", i)
	}
}

func TestReadMatrix_Float32(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f32.npy")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, npyio.Write(f, [2][2]float32{{1, 2}, {3, 4}}))
	require.NoError(t, f.Close())

	got, err := ReadMatrix(path)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Rows)
	assert.Equal(t, 2, got.Cols)
	assert.Equal(t, []float32{1, 2, 3, 4}, got.Data)
}

func TestReadMatrix_RejectsWrongRank(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vec.npy")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, npyio.Write(f, []float32{1, 2, 3}))
	require.NoError(t, f.Close())

	_, err = ReadMatrix(path)
	assert.Error(t, err)
}

func TestReadMatrix_MissingFile(t *testing.T) {
	_, err := ReadMatrix(filepath.Join(t.TempDir(), "nope.npy"))
	assert.Error(t, err)
}

func TestWriteMatrix_RejectsEmpty(t *testing.T) {
	err := WriteMatrix(filepath.Join(t.TempDir(), "x.npy"), datasets.Matrix{})
	assert.Error(t, err)
}

func TestAlignmentStore_PathSelection(t *testing.T) {
	root := t.TempDir()
	origDir := filepath.Join(root, "orig")
	stressedDir := filepath.Join(root, "stressed")

	orig, err := datasets.MatrixFromRows([][]float32{{1}})
	require.NoError(t, err)
	stressed, err := datasets.MatrixFromRows([][]float32{{2}})
	require.NoError(t, err)
	require.NoError(t, WriteMatrix(filepath.Join(origDir, "a1.npy"), orig))
	require.NoError(t, WriteMatrix(filepath.Join(stressedDir, "a1.npy"), stressed))

	s := &AlignmentStore{OriginalDir: origDir, StressedDir: stressedDir}

	// The .wav extension is swapped for .npy.
	got, err := s.LoadAlignment("a1.wav", false)
	require.NoError(t, err)
	assert.Equal(t, float32(1), got.Data[0])

	got, err = s.LoadAlignment("a1.wav", true)
	require.NoError(t, err)
	assert.Equal(t, float32(2), got.Data[0])
}

func TestFeatureStore_UsesRefDirectly(t *testing.T) {
	dir := t.TempDir()
	m, err := datasets.MatrixFromRows([][]float32{{5, 6}})
	require.NoError(t, err)
	require.NoError(t, WriteMatrix(filepath.Join(dir, "a1.npy"), m))

	s := &FeatureStore{Dir: dir}
	got, err := s.LoadMatrix("a1.npy")
	require.NoError(t, err)
	assert.Equal(t, []float32{5, 6}, got.Data)
}
