// Package qp solves strictly convex quadratic programs with the dual
// active-set method of Goldfarb and Idnani.
//
// # Problem Form
//
// [Solve] minimizes
//
//	½·xᵀDx + dᵀx
//
// subject to
//
//	Aᵀx = b   for the first Meq columns of A
//	Aᵀx ≥ b   for the remaining columns
//
// where D is symmetric positive definite. Each column of A is one
// constraint; A has one row per variable.
//
// # Method
//
// The solver starts from the unconstrained minimum -D⁻¹d and repeatedly adds
// the most violated constraint to an active set, dropping constraints whose
// multipliers would turn negative. It works on the Cholesky factor of D
// (from gonum) and keeps the factorization of the active set current with
// Givens rotations, so no system is refactored from scratch.
//
// Equality constraints are added first. Linearly dependent equalities are
// reported as [perrors.ErrCodeQPInfeasible], as is any inequality that can
// not be satisfied together with the active set. An iteration bound
// guarantees that every call terminates.
//
// # Indexing
//
// All vectors and constraint indices are 0-based. [Result.Active] lists the
// constraints in the final active set by column index of A.
//
// The package has no knowledge of pedigrees; the layout engine builds its
// problems in package align.
package qp
