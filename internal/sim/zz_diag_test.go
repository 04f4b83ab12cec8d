package sim

import (
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"plantops-sim/internal/config"
)

func TestZZDiagWrap(t *testing.T) {
	cfg := &config.SimulationConfig{SiteID: "plant-a"}
	m := newTUIModel(cfg)
	mi, _ := m.Update(tea.WindowSizeMsg{Width: 20, Height: 30})
	m = mi.(tuiModel)
	t.Logf("after WindowSizeMsg: vp.Width=%d vp.Height=%d headerHeight=%d height=%d", m.vp.Width, m.vp.Height, m.headerHeight, m.height)
	long := "one two three four five six"
	mi, _ = m.Update(logMsg{line: long})
	m = mi.(tuiModel)
	view := m.vp.View()
	lines := strings.Split(view, "\n")
	t.Logf("numLines=%d", len(lines))
	for i, l := range lines {
		if i > 5 {
			break
		}
		t.Logf("line[%d] = %q", i, l)
	}
	t.Logf("trimmed line1 empty? %v", len(lines) >= 2 && strings.TrimSpace(lines[1]) == "")
	fmt.Println("ok")
}
