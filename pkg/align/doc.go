// Package align computes the left-to-right arrangement of a pedigree
// drawing, one row per generation.
//
// # Overview
//
// The alignment is built bottom-up from per-generation slot arrays
// ([Arrays]). Each slot holds an individual handle, a horizontal position, a
// family pointer to the couple above that produced it, and a flag marking a
// marriage to the slot on its right.
//
// Three operations compose the layout recursively:
//
//   - [Subtree] places one individual next to every not-yet-placed spouse and
//     hangs each couple's children underneath.
//   - [Siblings] lays out a set of siblings in hint order and merges their
//     subtrees left to right.
//   - [Merge] concatenates two slot arrays level by level, collapsing the
//     slot where the right block starts with the individual the left block
//     ends with. This is how intermarriage is drawn: the shared person
//     appears once, linked to both families.
//
// [Align] is the entry point. It validates the pedigree and hints, assigns
// generation depths, seeds the marriage accumulator, lays out every founding
// line, and finishes the result with spouse, consanguinity and twin marks.
// In packed mode [Refine] then spaces the slots by solving a quadratic
// program that keeps spouses together and parents over their children.
//
// # Family Pointers
//
// Fam values are 1-based slot numbers into the row above: a value k means the
// slot's parents occupy slots k and k+1 (1-based) of the previous level. Zero
// means the slot is not connected to parents in this drawing, which is how
// marry-ins and repeated appearances are represented. Every merge shifts the
// right block's pointers by the number of slots the left block contributes.
//
// # Marriage Accumulator
//
// Marriages waiting to be drawn are carried in a [SpouseList]. Each
// subtree removes the marriages it draws and hands the remainder on, so a
// couple is drawn exactly once no matter how many paths reach it. The list
// is an explicit value, never shared state.
package align
