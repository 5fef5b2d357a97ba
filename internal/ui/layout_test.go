package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"github.com/nhle/questlog/internal/settings"
)

func TestLayout_ContentHeight(t *testing.T) {
	l := NewLayout(80, 24)
	assert.Equal(t, 22, l.ContentHeight())
	assert.Equal(t, 80, l.ContentWidth())
}

func TestLayout_MainWidth(t *testing.T) {
	l := NewLayout(80, 24)
	assert.Equal(t, 80-2-30-4, l.MainWidth(settings.Position{Left: 2, Width: 30}))
	assert.Equal(t, 0, l.MainWidth(settings.Position{Left: 10, Width: 100}))
}

func TestLayout_RenderPanelsClipsToContent(t *testing.T) {
	l := NewLayout(20, 6)
	tracker := strings.Repeat("x", 30) + "\n" + strings.Repeat("y\n", 10)
	out := l.RenderPanels(tracker, settings.Position{Left: 1, Top: 1}, "")

	assert.LessOrEqual(t, lipgloss.Height(out), l.ContentHeight())
	assert.LessOrEqual(t, lipgloss.Width(out), l.ContentWidth())
}
