package overlay

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestNewStyles(t *testing.T) {
	styles := New()
	if styles == nil {
		t.Fatal("New() returned nil")
	}

	tests := []struct {
		name  string
		style lipgloss.Style
	}{
		{"Title", styles.Title},
		{"MenuItem", styles.MenuItem},
		{"MenuKey", styles.MenuKey},
		{"MenuHeader", styles.MenuHeader},
		{"Path", styles.Path},
		{"Footer", styles.Footer},
		{"Error", styles.Error},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rendered := tt.style.Render("test")
			if rendered == "" {
				t.Errorf("%s style rendered empty string", tt.name)
			}
		})
	}
}

func TestFrameStyleHasBorder(t *testing.T) {
	styles := New()

	if styles.Frame.GetBorderStyle() != lipgloss.RoundedBorder() {
		t.Error("Frame should use a rounded border")
	}

	// A 4x2 interior renders as a 6x4 box.
	box := styles.Frame.Width(4).Height(2).Render("")
	if w, h := lipgloss.Size(box); w != 6 || h != 4 {
		t.Errorf("expected 6x4 frame, got %dx%d", w, h)
	}
}
