// Package model defines the constraint-based metabolic model whose flux
// space is sampled: a stoichiometric matrix S, flux bounds lb/ub, and a
// right-hand side b. The feasible region {x : S·x = b, lb ≤ x ≤ ub} is the
// polytope every other package operates on.
//
// Stoichiometric matrices are sparse in practice, so models are usually
// assembled through the DOK builder and converted to a dense matrix once all
// coefficients are in place.
package model
