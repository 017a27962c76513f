package ui

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/Kodestorel007/fun-kanban/internal/api"
	"github.com/Kodestorel007/fun-kanban/internal/colors"
)

// Sprint color functions for building styled strings.
var (
	Bold        = color.New(color.Bold).SprintFunc()
	Dim         = color.New(color.Faint).SprintFunc()
	Cyan        = color.New(color.FgCyan).SprintFunc()
	Green       = color.New(color.FgGreen).SprintFunc()
	Red         = color.New(color.FgRed).SprintFunc()
	Yellow      = color.New(color.FgYellow).SprintFunc()
	Magenta     = color.New(color.FgMagenta).SprintFunc()
	BoldCyan    = color.New(color.Bold, color.FgCyan).SprintFunc()
	BoldGreen   = color.New(color.Bold, color.FgGreen).SprintFunc()
	BoldRed     = color.New(color.Bold, color.FgRed).SprintFunc()
	BoldYellow  = color.New(color.Bold, color.FgYellow).SprintFunc()
	BoldMagenta = color.New(color.Bold, color.FgMagenta).SprintFunc()
	BoldWhite   = color.New(color.Bold, color.FgWhite).SprintFunc()
)

// PrintLogo renders the colored Fun Kanban logo to stderr.
func PrintLogo() {
	w := os.Stderr
	frame := color.New(color.FgCyan)
	cards := color.New(color.FgYellow)
	sep := color.New(color.FgCyan)
	brand := color.New(color.Bold, color.FgMagenta)
	tag := color.New(color.Faint)

	fmt.Fprintln(w)
	frame.Fprintln(w, "   +---------------------------+")
	cards.Fprintln(w, "   |  [=] [=]   [=]   [=] [=]  |")
	sep.Fprintln(w, "   |===========================|")
	brand.Fprintln(w, "   |   F U N   K A N B A N     |")
	sep.Fprintln(w, "   |===========================|")
	cards.Fprintln(w, "   |  [=]   [=] [=]   [=]      |")
	frame.Fprintln(w, "   +---------------------------+")
	tag.Fprintln(w, "   📋 Boards from the terminal")
	fmt.Fprintln(w)
}

// PriorityDot returns the colored indicator for a task priority.
func PriorityDot(priority string) string {
	switch priority {
	case api.PriorityHigh:
		return Red("●")
	case api.PriorityMedium:
		return Yellow("●")
	default:
		return Green("●")
	}
}

// swatchFuncs maps each palette pair to the nearest terminal color.
var swatchFuncs = []func(a ...interface{}) string{
	BoldGreen,   // Green
	color.New(color.Bold, color.FgBlue).SprintFunc(), // Blue
	BoldMagenta, // Purple
	color.New(color.Bold, color.FgHiMagenta).SprintFunc(), // Pink
	BoldYellow, // Yellow
	BoldRed,    // Red
	BoldCyan,   // Teal
	color.New(color.Bold, color.FgHiBlue).SprintFunc(), // Indigo
	color.New(color.Bold, color.FgHiRed).SprintFunc(),  // Rose
}

// Swatch renders s in the terminal color nearest the stored accent color.
// An empty color gets the default pair; custom colors fall back to bold
// white since they carry no terminal mapping.
func Swatch(stored string, s string) string {
	idx := colors.PairIndex(stored)
	if idx == colors.NotFound {
		if stored != "" {
			return BoldWhite(s)
		}
		idx = 0
	}
	return swatchFuncs[idx](s)
}

// Badge returns the inline marker for blocked/on-hold tasks, or "".
func Badge(t api.Task) string {
	switch {
	case t.Blocked:
		return BoldRed("[blocked]")
	case t.OnHold:
		return BoldYellow("[on hold]")
	default:
		return ""
	}
}

// BridgeIcon maps a bridge status to its indicator.
func BridgeIcon(status string) string {
	switch status {
	case "online":
		return Green("●")
	case "offline":
		return Red("●")
	default:
		return Dim("◌")
	}
}
