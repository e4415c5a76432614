package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/pedigree/pkg/pedigree"
	"github.com/matzehuels/pedigree/pkg/pedigree/depth"
	"github.com/matzehuels/pedigree/pkg/pipeline"
)

// =============================================================================
// Palette & Styles
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - headings and numbers
	colorGreen  = lipgloss.Color("35")  // Green - success, cache hits
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - commands
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - labels
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

var (
	// StyleTitle for headings and table headers.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values such as paths and identifiers.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for counts and generation numbers.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)
	styleKey      = lipgloss.NewStyle().Foreground(colorGray).Width(12)
	styleCommand  = lipgloss.NewStyle().Foreground(colorBlue)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Status Lines
// =============================================================================

func status(icon lipgloss.Style, glyph, msg string) {
	fmt.Println(icon.Render(glyph) + " " + msg)
}

func printSuccess(format string, args ...any) {
	status(styleIconSuccess, iconSuccess, fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	status(styleIconError, iconError, fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	status(styleIconWarning, iconWarning, StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	status(styleIconInfo, iconInfo, fmt.Sprintf(format, args...))
}

// printDetail prints an indented, muted line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a written output path.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	fmt.Println(styleKey.Render(key) + " " + StyleValue.Render(value))
}

// printNextStep prints a suggested follow-up command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// =============================================================================
// Layout Summaries
// =============================================================================

// statsLine joins the layout statistics into one muted line, ending with
// whether the layout came from the cache.
func statsLine(stats pipeline.Stats, cached bool) string {
	var parts []string
	if stats.Individuals > 0 {
		parts = append(parts, fmt.Sprintf("%d individuals", stats.Individuals))
	}
	if stats.Generations > 0 {
		parts = append(parts, fmt.Sprintf("%d generations", stats.Generations))
	}
	if stats.Slots > stats.Individuals {
		parts = append(parts, fmt.Sprintf("%d repeated", stats.Slots-stats.Individuals))
	}
	if cached {
		parts = append(parts, styleCached.Render(iconCached))
	} else {
		parts = append(parts, styleComputed.Render(iconFresh))
	}

	for i, part := range parts {
		parts[i] = StyleDim.Render(part)
	}
	return "  " + strings.Join(parts, StyleDim.Render(" · "))
}

func printStats(stats pipeline.Stats, cached bool) {
	fmt.Println(statsLine(stats, cached))
}

// generationTable renders one row per generation listing its members.
func generationTable(p *pedigree.Pedigree, level []int) string {
	var rows [][]string
	for lev, members := range depth.Rows(level) {
		names := make([]string, len(members))
		for k, i := range members {
			if names[k] = p.ID(i); names[k] == "" {
				names[k] = strconv.Itoa(i + 1)
			}
		}
		rows = append(rows, []string{
			strconv.Itoa(lev),
			strconv.Itoa(len(members)),
			strings.Join(names, " "),
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers("GEN", "COUNT", "INDIVIDUALS").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == table.HeaderRow:
				return style.Inherit(StyleTitle)
			case col < 2:
				return style.Inherit(StyleNumber)
			}
			return style.Inherit(StyleValue)
		}).
		String()
}
