package batch

import (
	"fmt"
	"math"
	"os"

	"github.com/cespare/xxhash/v2"
	"gonum.org/v1/gonum/mat"

	"github.com/achrlab/polyrun/compress"
	"github.com/achrlab/polyrun/errs"
)

// Reader loads numbered sample batches written by a Writer with the same
// base path. The header tells the reader everything it needs, so no options
// are required.
type Reader struct {
	base string
}

// NewReader creates a batch reader for the given base path.
func NewReader(base string) *Reader {
	return &Reader{base: base}
}

// Path returns the file path for the given batch index.
func (r *Reader) Path(index int) string {
	return fmt.Sprintf("%s_%d", r.base, index)
}

// Read loads one batch and returns it as a reactions × points matrix.
func (r *Reader) Read(index int) (*mat.Dense, error) {
	points, err := ReadMatrix(r.Path(index))
	if err != nil {
		return nil, fmt.Errorf("batch %d: %w", index, err)
	}

	return points, nil
}

// ReadMatrix loads a point matrix from any file in the batch format.
func ReadMatrix(path string) (*mat.Dense, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	h, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}

	payload := data[HeaderSize:]
	if uint32(len(payload)) != h.PayloadLen {
		return nil, fmt.Errorf("%w: payload is %d bytes, header says %d",
			errs.ErrInvalidBatchHeader, len(payload), h.PayloadLen)
	}
	if xxhash.Sum64(payload) != h.Checksum {
		return nil, errs.ErrBatchChecksum
	}

	codec, err := compress.GetCodec(h.Compression)
	if err != nil {
		return nil, err
	}
	raw, err := codec.Decompress(payload)
	if err != nil {
		return nil, fmt.Errorf("decompress payload: %w", err)
	}

	// The expected size is compared without multiplying the header fields,
	// so oversized rows/cols values cannot overflow int on 32-bit platforms
	// and slip past the check.
	nVals := uint64(h.Rows) * uint64(h.Cols)
	if len(raw)%8 != 0 || uint64(len(raw)/8) != nVals {
		return nil, fmt.Errorf("%w: decompressed payload is %d bytes for a %dx%d matrix",
			errs.ErrInvalidBatchHeader, len(raw), h.Rows, h.Cols)
	}
	rows, cols := int(h.Rows), int(h.Cols)

	engine := h.Engine()
	points := mat.NewDense(rows, cols, nil)
	off := 0
	for c := 0; c < cols; c++ {
		for r := 0; r < rows; r++ {
			points.Set(r, c, math.Float64frombits(engine.Uint64(raw[off:off+8])))
			off += 8
		}
	}

	return points, nil
}
