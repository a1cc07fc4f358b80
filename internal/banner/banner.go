package banner

import (
	"github.com/charmbracelet/lipgloss"

	"steadybench/internal/tui/styles"
)

const ascii = `
   _____ __                 __         ____                  __
  / ___// /____  ____ _____/ /_  __   / __ )___  ____  _____/ /_
  \__ \/ __/ _ \/ __ '/ __  / / / /  / __  / _ \/ __ \/ ___/ __ \
 ___/ / /_/  __/ /_/ / /_/ / /_/ /  / /_/ /  __/ / / / /__/ / / /
/____/\__/\___/\__,_/\__,_/\__, /  /_____/\___/_/ /_/\___/_/ /_/
                          /____/`

// Tagline is printed under the banner in command help.
const Tagline = "Repeatable workload benchmarks with per-call timing."

func GetString() string {
	renderer := lipgloss.DefaultRenderer()

	style := renderer.NewStyle().
		Foreground(styles.ColorBanner).
		Bold(true)

	return "\n" + style.Render(ascii) + "\n" + styles.Subtle.Render(Tagline) + "\n"
}
