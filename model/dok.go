package model

import "gonum.org/v1/gonum/mat"

// DOK is a dictionary-of-keys sparse builder for stoichiometric matrices.
// Coefficients are set individually while parsing a model description and
// the result is converted to a dense matrix once complete.
type DOK struct {
	rows, cols int

	data map[index]float64
}

type index struct {
	row, col int
}

// NewDOK creates an empty r×c sparse builder.
func NewDOK(r, c int) *DOK {
	return &DOK{
		rows: r,
		cols: c,
		data: make(map[index]float64),
	}
}

// Dims returns the dimensions of the matrix.
func (d *DOK) Dims() (r, c int) {
	return d.rows, d.cols
}

// At returns the coefficient at (i, j), zero if unset.
func (d *DOK) At(i, j int) float64 {
	d.check(i, j)
	return d.data[index{i, j}]
}

// Set stores the coefficient at (i, j). Setting zero removes the entry.
func (d *DOK) Set(i, j int, v float64) {
	d.check(i, j)
	if v == 0 {
		delete(d.data, index{i, j})
		return
	}
	d.data[index{i, j}] = v
}

// NNZ returns the number of stored non-zero coefficients.
func (d *DOK) NNZ() int {
	return len(d.data)
}

// MulVec computes dst += D·x without densifying.
func (d *DOK) MulVec(dst, x []float64) {
	if d.cols != len(x) || d.rows != len(dst) {
		panic("model: dimension mismatch")
	}
	for ij, v := range d.data {
		dst[ij.row] += v * x[ij.col]
	}
}

// ToDense converts the builder to a dense matrix.
func (d *DOK) ToDense() *mat.Dense {
	m := mat.NewDense(d.rows, d.cols, nil)
	for ij, v := range d.data {
		m.Set(ij.row, ij.col, v)
	}

	return m
}

func (d *DOK) check(i, j int) {
	if i < 0 || d.rows <= i {
		panic("model: row index out of range")
	}
	if j < 0 || d.cols <= j {
		panic("model: column index out of range")
	}
}
