// Package io reads pedigree files and writes finished layouts.
//
// # Overview
//
// The layout engine works on integer handles. Files name individuals by
// string identifiers instead, so this package resolves identifiers to
// handles on the way in and back to identifiers on the way out. Two input
// formats carry the same data:
//
//   - JSON, for files produced by other tools
//   - TOML, for pedigrees written by hand
//
// # JSON Format
//
//	{
//	  "individuals": [
//	    {"id": "grandpa", "sex": "male"},
//	    {"id": "grandma", "sex": "female"},
//	    {"id": "dad", "father": "grandpa", "mother": "grandma", "sex": "m"}
//	  ],
//	  "relations": [
//	    {"id1": "a", "id2": "b", "code": "mz-twin"}
//	  ],
//	  "hints": {
//	    "order": ["grandma", "grandpa"],
//	    "spouse": [{"left": "grandma", "right": "grandpa", "anchor": "left"}]
//	  }
//	}
//
// An individual without father and mother is a founder. Sex accepts the
// spellings understood by [pedigree.ParseSex]. Relation codes are
// "mz-twin", "dz-twin", "twin" and "spouse".
//
// # TOML Format
//
// The same document with one table per entry:
//
//	[[individual]]
//	id = "grandpa"
//	sex = "male"
//
//	[[individual]]
//	id = "dad"
//	father = "grandpa"
//	mother = "grandma"
//	sex = "male"
//
//	[hints]
//	order = ["grandma", "grandpa"]
//
// # Hints
//
// The order hint lists identifiers from left to right. Individuals it does
// not mention keep their file order after the listed ones. Spouse hints
// name the partner drawn on the left and on the right and may anchor the
// couple to either partner's family.
//
// # Import
//
// Use [ReadFile] to read a file by path, dispatching on the .json or .toml
// extension, or [ReadJSON] and [ReadTOML] to read from any io.Reader. The
// returned pedigree has been validated; the hints are checked later by the
// layout itself against the sexes of the pedigree.
//
// # Export
//
// [WriteLayoutJSON] and [ExportLayout] write a finished layout with every
// slot labelled by identifier. [WriteJSON] writes a pedigree back in the
// input format.
package io
