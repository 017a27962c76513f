package colors

import "testing"

func TestDisplayRoundTrip_AllPairs(t *testing.T) {
	for i, p := range Pairs {
		for _, theme := range []Theme{Dark, Light} {
			want := p.Dark
			if theme == Light {
				want = p.Light
			}
			// Normalizing either variant then displaying must land on the
			// theme-correct variant of the same pair.
			for _, in := range []string{p.Dark, p.Light} {
				got := Display(NormalizeForStorage(in), theme)
				if got != want {
					t.Errorf("pair %d (%s): Display(Normalize(%s), %s) = %s, want %s",
						i, p.Name, in, theme, got, want)
				}
			}
		}
	}
}

func TestCustomColorsNeverAdapt(t *testing.T) {
	custom := []string{"#123456", "#abcdef", "rebeccapurple", ""}
	for _, c := range custom[:3] {
		if got := NormalizeForStorage(c); got != c {
			t.Errorf("NormalizeForStorage(%s) = %s, want unchanged", c, got)
		}
		if got := Display(c, Dark); got != c {
			t.Errorf("Display(%s, dark) = %s, want unchanged", c, got)
		}
		if got := Display(c, Light); got != c {
			t.Errorf("Display(%s, light) = %s, want unchanged", c, got)
		}
	}
}

func TestDisplayEmptyFallsBackToDefault(t *testing.T) {
	if got := Display("", Dark); got != Pairs[0].Dark {
		t.Errorf("Display(empty, dark) = %s, want %s", got, Pairs[0].Dark)
	}
	if got := Display("", Light); got != Pairs[0].Light {
		t.Errorf("Display(empty, light) = %s, want %s", got, Pairs[0].Light)
	}
}

func TestPairIndex(t *testing.T) {
	if idx := PairIndex("#3b82f6"); idx != 1 {
		t.Errorf("PairIndex(blue dark) = %d, want 1", idx)
	}
	if idx := PairIndex("#1d4ed8"); idx != 1 {
		t.Errorf("PairIndex(blue light) = %d, want 1", idx)
	}
	if idx := PairIndex("#000000"); idx != NotFound {
		t.Errorf("PairIndex(custom) = %d, want NotFound", idx)
	}
}

func TestEquivalent(t *testing.T) {
	// Reflexive, including for custom colors.
	for _, c := range []string{"#22c55e", "#deadbe"} {
		if !Equivalent(c, c) {
			t.Errorf("Equivalent(%s, %s) = false, want true", c, c)
		}
	}

	// Both variants of one pair are equivalent, symmetrically.
	if !Equivalent("#22c55e", "#059669") || !Equivalent("#059669", "#22c55e") {
		t.Error("dark and light variants of Green should be equivalent")
	}

	// Different pairs are not.
	if Equivalent("#22c55e", "#3b82f6") {
		t.Error("Green and Blue should not be equivalent")
	}

	// Distinct custom colors are never equivalent, even if visually close.
	if Equivalent("#123456", "#123457") {
		t.Error("distinct custom colors should not be equivalent")
	}
}

func TestThemeColors(t *testing.T) {
	dark := ThemeColors(Dark)
	light := ThemeColors(Light)
	if len(dark) != len(Pairs) || len(light) != len(Pairs) {
		t.Fatalf("expected %d colors per theme", len(Pairs))
	}
	for i := range Pairs {
		if dark[i] != Pairs[i].Dark || light[i] != Pairs[i].Light {
			t.Errorf("ThemeColors mismatch at %d", i)
		}
	}
}
