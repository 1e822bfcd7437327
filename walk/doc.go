// Package walk implements the artificially-centered hit-and-run walker, the
// sampling engine of polyrun.
//
// Each chain keeps a current point and a running center (the mean of every
// point visited so far, seeded with the warmup centroid). A step draws a
// random warmup point, takes the direction from the center through it,
// clips the chord to the flux bounds, and jumps to a uniformly random point
// on the chord. Directions are differences of feasible points, so they lie
// in the null space of S and the equality constraints hold by construction;
// accumulated floating-point drift is removed by periodic least-squares
// reprojection onto S·x = b.
//
// Every stepsPerPoint steps the current point is recorded, and every
// pointsPerFile recorded points one batch file is flushed through the batch
// package. Chains writing different files are independent, so the walker
// can optionally deal the batch files round-robin to concurrent chains with
// separate RNG streams.
package walk
