// Package errs defines the sentinel errors shared across polyrun packages.
//
// All fatal conditions surface as one of these sentinels (possibly wrapped
// with stage context via fmt.Errorf and %w), so callers can classify
// failures with errors.Is without parsing messages.
package errs

import "errors"

var (
	// ErrInfeasibleModel indicates that no flux vector satisfies the model
	// constraints, detected while generating warmup points.
	ErrInfeasibleModel = errors.New("model constraints are infeasible")

	// ErrEmptyPolytope indicates that model reduction removed every reaction
	// or proved the feasible region empty.
	ErrEmptyPolytope = errors.New("reduced model has an empty feasible region")

	// ErrInvalidConfig indicates an invalid sampling configuration, e.g.
	// requesting more returned points than the stored batches can supply.
	ErrInvalidConfig = errors.New("invalid sampling configuration")

	// ErrUnsupportedSampler indicates an unknown sampler name was requested.
	ErrUnsupportedSampler = errors.New("unsupported sampler")

	// ErrInvalidModel indicates mismatched matrix/vector dimensions or
	// lower bounds exceeding upper bounds.
	ErrInvalidModel = errors.New("invalid model definition")

	// ErrInvalidBatchHeader indicates a batch file header that is truncated
	// or carries an unknown magic number.
	ErrInvalidBatchHeader = errors.New("invalid batch file header")

	// ErrBatchChecksum indicates a batch payload whose checksum does not
	// match the header, i.e. a corrupted or foreign file.
	ErrBatchChecksum = errors.New("batch payload checksum mismatch")

	// ErrBatchShape indicates a batch whose row count does not match the
	// reduced model it is being assembled against.
	ErrBatchShape = errors.New("batch dimensions do not match model")

	// ErrUnboundedObjective indicates an LP whose objective is unbounded on
	// the feasible region. Cannot occur for validated models, whose bounds
	// are finite; it points at a misbehaving custom optimizer.
	ErrUnboundedObjective = errors.New("objective is unbounded")

	// ErrNoChord indicates the walker found no feasible chord through its
	// starting point, which means the polytope degenerated to a point or the
	// start is infeasible.
	ErrNoChord = errors.New("no feasible chord through starting point")
)
