// Package pedigree provides the family-relationship graph consumed by the
// layout engine.
//
// # Overview
//
// A [Pedigree] is an arena of individuals addressed by stable integer
// handles. Each individual has an opaque ID, a sex, and father and mother
// handles into the same arena. A founder has no recorded parents and uses
// [NoParent] for both. Every "pointer" in the model is a plain index, never a
// Go reference, so merges and renumbering downstream are explicit integer
// rewrites.
//
// # Basic Usage
//
//	p, err := pedigree.New(
//	    []string{"dad", "mom", "kid"},
//	    []int{pedigree.NoParent, pedigree.NoParent, 0},
//	    []int{pedigree.NoParent, pedigree.NoParent, 1},
//	    []pedigree.Sex{pedigree.Male, pedigree.Female, pedigree.Female},
//	)
//
// [New] validates the arena: parent handles must be in range, fathers must
// be male and mothers female, and nobody may be their own parent. Deeper
// structural checks (ancestor cycles) belong to the depth assigner in
// package depth, which detects them while computing generations.
//
// # Relations
//
// Special pairwise relations are recorded as [Relation] values. Codes 1-3
// mark twins of known or unknown zygosity; code 4 marks a marriage that
// should be drawn even when the couple has no children in the pedigree.
//
// # Concurrency
//
// A Pedigree is not modified by any function in this module after it is
// built, so a single value may be shared by concurrent layout requests.
package pedigree
