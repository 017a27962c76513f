// Package colors implements the theme-aware color-pair scheme used for
// workspace and project accents. Each standard color is a pair with a
// dark-mode and a light-mode hex variant; the dark variant is the canonical
// storage form. Colors outside the table are "custom": stored verbatim and
// never adapted across theme switches.
package colors

// Theme selects which variant of a pair is displayed.
type Theme string

const (
	Dark  Theme = "dark"
	Light Theme = "light"
)

// Pair holds the two display variants of one standard color.
type Pair struct {
	Name  string
	Dark  string
	Light string
}

// Pairs is the fixed palette. Order matters: the pair index is the identity
// of a standard color, and index 0 is the default.
var Pairs = [9]Pair{
	{Name: "Green", Dark: "#22c55e", Light: "#059669"},
	{Name: "Blue", Dark: "#3b82f6", Light: "#1d4ed8"},
	{Name: "Purple", Dark: "#a855f7", Light: "#7c3aed"},
	{Name: "Pink", Dark: "#f472b6", Light: "#be185d"},
	{Name: "Yellow", Dark: "#fbbf24", Light: "#b45309"},
	{Name: "Red", Dark: "#ef4444", Light: "#b91c1c"},
	{Name: "Teal", Dark: "#2dd4bf", Light: "#0d9488"},
	{Name: "Indigo", Dark: "#6366f1", Light: "#4338ca"},
	{Name: "Rose", Dark: "#fb7185", Light: "#9f1239"},
}

// NotFound is returned by PairIndex for custom colors.
const NotFound = -1

// PairIndex returns the palette position whose dark or light variant equals
// color, or NotFound for custom colors.
func PairIndex(color string) int {
	for i, p := range Pairs {
		if p.Dark == color || p.Light == color {
			return i
		}
	}
	return NotFound
}

// IsStandard reports whether color is a variant of any palette pair.
func IsStandard(color string) bool {
	return PairIndex(color) != NotFound
}

// Display resolves a stored color to the variant for the given theme.
// Empty input falls back to the default pair; custom colors pass through
// unchanged in either theme.
func Display(stored string, theme Theme) string {
	if stored == "" {
		return DefaultColor(theme)
	}
	idx := PairIndex(stored)
	if idx == NotFound {
		return stored
	}
	return variant(Pairs[idx], theme)
}

// NormalizeForStorage maps either variant of a standard color to its dark
// (canonical) form. Custom colors are stored as-is, so they do not adapt
// when the theme switches.
func NormalizeForStorage(color string) string {
	idx := PairIndex(color)
	if idx == NotFound {
		return color
	}
	return Pairs[idx].Dark
}

// Equivalent reports whether two colors are the same pair or bit-identical.
func Equivalent(a, b string) bool {
	if a == b {
		return true
	}
	i, j := PairIndex(a), PairIndex(b)
	return i != NotFound && i == j
}

// ThemeColors returns all palette variants for one theme, in pair order.
func ThemeColors(theme Theme) []string {
	out := make([]string, len(Pairs))
	for i, p := range Pairs {
		out[i] = variant(p, theme)
	}
	return out
}

// DefaultColor is the first pair's variant for the given theme.
func DefaultColor(theme Theme) string {
	return variant(Pairs[0], theme)
}

func variant(p Pair, theme Theme) string {
	if theme == Light {
		return p.Light
	}
	return p.Dark
}
