package components

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestSparklineKeepsWindow(t *testing.T) {
	s := NewSparkline(3, 1, "latency", lipgloss.NewStyle())
	for _, v := range []uint64{1, 8, 2, 4} {
		s.Add(v)
	}

	assert.Equal(t, []uint64{8, 2, 4}, s.Data)
	assert.EqualValues(t, 8, s.Max)
}

func TestSparklineView(t *testing.T) {
	s := NewSparkline(4, 1, "latency", lipgloss.NewStyle())
	s.Add(0)
	s.Add(8)

	view := s.View()
	assert.Contains(t, view, "latency  8")
	assert.Contains(t, view, "█")
}
