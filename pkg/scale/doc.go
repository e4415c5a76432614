// Package scale converts a pedigree layout into drawing dimensions.
//
// A layout places individuals on an abstract grid: generations are rows
// numbered from zero and horizontal positions are slot units. [Compute]
// fits that grid into a plot of a given width and height and returns the
// symbol size together with the horizontal and vertical scale factors a
// renderer needs:
//
//	params, err := scale.Compute(layout, 800, 600, scale.DefaultOptions())
//	x := params.HScale * pos      // slot units to plot units
//	y := params.VScale * float64(lev)
//
// Symbols are kept square in plot units. BoxWidth and BoxHeight give the
// same symbol in slot and generation units, which is what a renderer
// working in layout coordinates draws with.
package scale
