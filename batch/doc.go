// Package batch persists fixed-size batches of sample points, one file per
// batch.
//
// A batch file is a 32-byte header followed by a payload: the reactions ×
// points matrix in column-major float64 order, optionally compressed. The
// header carries a magic number, the byte order, the compression codec, the
// matrix dimensions, the batch index, and an xxHash64 checksum of the stored
// payload, so a truncated or foreign file is always rejected on read.
//
// Files are written atomically: the payload goes to a temporary file in the
// destination directory which is renamed over the final name only after a
// successful write, so a crash never leaves a truncated batch that parses.
package batch
