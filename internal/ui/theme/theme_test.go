package theme

import "testing"

func TestGetTheme(t *testing.T) {
	for _, name := range Names() {
		if got := GetTheme(name).Name; got != name {
			t.Errorf("GetTheme(%q).Name = %q", name, got)
		}
	}

	if got := GetTheme("catppuccin").Name; got != "catppuccin-mocha" {
		t.Errorf("expected alias to resolve to catppuccin-mocha, got %q", got)
	}
	if got := GetTheme("unknown").Name; got != "default" {
		t.Errorf("expected fallback to default, got %q", got)
	}
}
