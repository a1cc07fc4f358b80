package components

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
)

var levels = []string{" ", "▁", "▂", "▃", "▄", "▅", "▆", "▇", "█"}

// Sparkline is a one-row chart over a sliding window of the most recent
// Width samples. Bars are scaled to the window maximum.
type Sparkline struct {
	Data   []uint64
	Width  int
	Height int
	Max    uint64
	Style  lipgloss.Style
	Label  string
}

func NewSparkline(width, height int, label string, style lipgloss.Style) Sparkline {
	return Sparkline{
		Width:  width,
		Height: height,
		Label:  label,
		Style:  style,
		Data:   make([]uint64, 0, width),
	}
}

func (s *Sparkline) Add(val uint64) {
	s.Data = append(s.Data, val)
	if s.Width > 0 && len(s.Data) > s.Width {
		s.Data = s.Data[len(s.Data)-s.Width:]
	}

	s.Max = 0
	for _, v := range s.Data {
		s.Max = max(s.Max, v)
	}
}

// Last returns the newest sample, or 0 when empty.
func (s Sparkline) Last() uint64 {
	if len(s.Data) == 0 {
		return 0
	}
	return s.Data[len(s.Data)-1]
}

func (s Sparkline) View() string {
	if s.Width <= 0 {
		return ""
	}

	var graph strings.Builder
	for _, v := range s.Data {
		graph.WriteString(bar(v, s.Max))
	}
	if pad := s.Width - utf8.RuneCountInString(graph.String()); pad > 0 {
		graph.WriteString(strings.Repeat(" ", pad))
	}

	label := fmt.Sprintf("%s  %d", s.Label, s.Last())
	return s.Style.Render(label) + "\n" + s.Style.Render(graph.String())
}

func bar(v, peak uint64) string {
	if peak == 0 || v == 0 {
		return levels[0]
	}
	idx := int(float64(v) / float64(peak) * float64(len(levels)-1))
	return levels[max(1, min(idx, len(levels)-1))]
}
