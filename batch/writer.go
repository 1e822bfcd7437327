package batch

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"gonum.org/v1/gonum/mat"

	"github.com/achrlab/polyrun/compress"
	"github.com/achrlab/polyrun/endian"
	"github.com/achrlab/polyrun/format"
	"github.com/achrlab/polyrun/internal/options"
	"github.com/achrlab/polyrun/internal/pool"
)

// Writer persists numbered sample batches under a common base path.
// Batch index i is written to "<base>_<i>".
type Writer struct {
	base        string
	compression format.CompressionType
	codec       compress.Codec
	bigEndian   bool
}

// WriterOption configures a Writer.
type WriterOption = options.Option[*Writer]

// WithCompression selects the payload compression codec.
func WithCompression(c format.CompressionType) WriterOption {
	return options.New(func(w *Writer) error {
		codec, err := compress.GetCodec(c)
		if err != nil {
			return err
		}
		w.compression = c
		w.codec = codec

		return nil
	})
}

// WithBigEndian stores payloads in big-endian byte order. Little-endian is
// the default.
func WithBigEndian() WriterOption {
	return options.NoError(func(w *Writer) {
		w.bigEndian = true
	})
}

// NewWriter creates a batch writer for the given base path.
func NewWriter(base string, opts ...WriterOption) (*Writer, error) {
	w := &Writer{
		base:        base,
		compression: format.CompressionNone,
		codec:       compress.NewNoOpCodec(),
	}
	if err := options.Apply(w, opts...); err != nil {
		return nil, err
	}

	return w, nil
}

// Path returns the file path for the given batch index.
func (w *Writer) Path(index int) string {
	return fmt.Sprintf("%s_%d", w.base, index)
}

// Write persists one batch atomically, overwriting any existing file for the
// same index.
func (w *Writer) Write(index int, points *mat.Dense) error {
	if err := writeMatrix(w.Path(index), uint32(index), points, w.compression, w.codec, w.bigEndian); err != nil {
		return fmt.Errorf("batch %d: %w", index, err)
	}

	return nil
}

// WriteMatrix persists a point matrix to an arbitrary path in the batch file
// format, e.g. a warmup checkpoint. The index field is stored as zero.
func WriteMatrix(path string, points *mat.Dense, compression format.CompressionType) error {
	codec, err := compress.GetCodec(compression)
	if err != nil {
		return err
	}

	return writeMatrix(path, 0, points, compression, codec, false)
}

func writeMatrix(path string, index uint32, points *mat.Dense, compression format.CompressionType, codec compress.Codec, bigEndian bool) error {
	rows, cols := points.Dims()
	if rows == 0 || cols == 0 {
		return fmt.Errorf("refusing to write empty %dx%d batch", rows, cols)
	}

	h := NewHeader()
	if bigEndian {
		h.WithBigEndian()
	}
	h.Compression = compression
	h.Rows = uint32(rows)
	h.Cols = uint32(cols)
	h.Index = index

	// The raw buffer stays alive until atomicWrite returns: the no-op codec
	// hands the same slice back as the payload.
	raw := pool.GetPayloadBuffer()
	defer pool.PutPayloadBuffer(raw)
	raw.B = encodePayload(raw.B, points, h.Engine())

	payload, err := codec.Compress(raw.B)
	if err != nil {
		return fmt.Errorf("compress payload: %w", err)
	}

	h.PayloadLen = uint32(len(payload))
	h.Checksum = xxhash.Sum64(payload)

	return atomicWrite(path, h.Bytes(), payload)
}

// encodePayload serializes a matrix column by column into buf: all reaction
// fluxes of point 0, then point 1, and so on.
func encodePayload(buf []byte, points *mat.Dense, engine endian.EndianEngine) []byte {
	rows, cols := points.Dims()

	for c := 0; c < cols; c++ {
		for r := 0; r < rows; r++ {
			buf = engine.AppendUint64(buf, math.Float64bits(points.At(r, c)))
		}
	}

	return buf
}

// atomicWrite writes header+payload to a temporary file in the target
// directory and renames it over the final path, so readers never observe a
// partially written batch.
func atomicWrite(path string, header, payload []byte) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	if _, err := tmp.Write(header); err != nil {
		cleanup()
		return fmt.Errorf("write header: %w", err)
	}
	if _, err := tmp.Write(payload); err != nil {
		cleanup()
		return fmt.Errorf("write payload: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename into place: %w", err)
	}

	return nil
}
