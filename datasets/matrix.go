package datasets

import "fmt"

// Matrix is a dense row-major float32 matrix. Mel spectrograms are stored as
// [channels × frames], alignment targets as [frames × symbols]. The flat
// backing slice keeps batches cheap to assemble and trivial to hand over to
// tensor constructors.
type Matrix struct {
	Rows int
	Cols int
	Data []float32
}

// NewMatrix allocates a zero-filled rows×cols matrix.
func NewMatrix(rows, cols int) Matrix {
	return Matrix{Rows: rows, Cols: cols, Data: make([]float32, rows*cols)}
}

// MatrixFromRows builds a Matrix from a slice of equally sized rows.
func MatrixFromRows(rows [][]float32) (Matrix, error) {
	if len(rows) == 0 {
		return Matrix{}, fmt.Errorf("matrix: no rows")
	}
	cols := len(rows[0])
	m := NewMatrix(len(rows), cols)
	for i, r := range rows {
		if len(r) != cols {
			return Matrix{}, fmt.Errorf("matrix: row %d has %d columns, expected %d", i, len(r), cols)
		}
		copy(m.Data[i*cols:], r)
	}
	return m, nil
}

// At returns the element at (r, c). No bounds checks beyond the slice's own.
func (m Matrix) At(r, c int) float32 {
	return m.Data[r*m.Cols+c]
}

// Set stores v at (r, c).
func (m Matrix) Set(r, c int, v float32) {
	m.Data[r*m.Cols+c] = v
}

// Row returns the backing slice for row r. The slice aliases m.Data.
func (m Matrix) Row(r int) []float32 {
	return m.Data[r*m.Cols : (r+1)*m.Cols]
}

// Shape returns (rows, cols).
func (m Matrix) Shape() (int, int) {
	return m.Rows, m.Cols
}

// IsEmpty reports whether the matrix holds no data.
func (m Matrix) IsEmpty() bool {
	return m.Rows == 0 || m.Cols == 0
}
