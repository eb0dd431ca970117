package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/theirongolddev/ascendia/internal/pet"
)

// Theme colors (Flexoki Dark)
var (
	ColorBg        = lipgloss.Color("#100F0F")
	ColorSurface   = lipgloss.Color("#1C1B1A")
	ColorBorder    = lipgloss.Color("#282726")
	ColorTextDim   = lipgloss.Color("#575653")
	ColorTextMuted = lipgloss.Color("#6F6E69")
	ColorText      = lipgloss.Color("#FFFCF0")
	ColorAccent    = lipgloss.Color("#3AA99F")
	ColorGreen     = lipgloss.Color("#879A39")
	ColorOrange    = lipgloss.Color("#DA702C")
	ColorRed       = lipgloss.Color("#D14D41")
	ColorBlue      = lipgloss.Color("#4385BE")
	ColorPurple    = lipgloss.Color("#8B7EC8")
	ColorYellow    = lipgloss.Color("#D0A215")
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	valueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	mutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	goodStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	treatStyle = lipgloss.NewStyle().
			Foreground(ColorYellow)

	warnStyle = lipgloss.NewStyle().
			Foreground(ColorOrange)

	badStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	dimStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)
)

// DisableColor forces plain output, for NO_COLOR and non-terminal writers.
func DisableColor() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// Table represents a bordered text table for CLI output.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Widths  []int // optional column widths, auto-calculated if nil
}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	width := 55
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(width).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(titleStyle.Render(title))
}

// RenderTable renders a bordered table with headers and rows.
func RenderTable(t Table) string {
	if len(t.Rows) == 0 && len(t.Headers) == 0 {
		return ""
	}

	// Calculate column widths
	numCols := len(t.Headers)
	if numCols == 0 && len(t.Rows) > 0 {
		numCols = len(t.Rows[0])
	}

	widths := make([]int, numCols)
	if t.Widths != nil {
		copy(widths, t.Widths)
	} else {
		for i, h := range t.Headers {
			if len(h) > widths[i] {
				widths[i] = len(h)
			}
		}
		for _, row := range t.Rows {
			for i, cell := range row {
				if i < numCols && len(cell) > widths[i] {
					widths[i] = len(cell)
				}
			}
		}
	}

	var b strings.Builder

	// Title above table if present
	if t.Title != "" {
		b.WriteString("  ")
		b.WriteString(headerStyle.Render(t.Title))
		b.WriteString("\n")
	}

	totalWidth := 1 // left border
	for _, w := range widths {
		totalWidth += w + 3 // padding + separator
	}

	// Top border
	b.WriteString(dimStyle.Render("╭"))
	for i, w := range widths {
		b.WriteString(dimStyle.Render(strings.Repeat("─", w+2)))
		if i < numCols-1 {
			b.WriteString(dimStyle.Render("┬"))
		}
	}
	b.WriteString(dimStyle.Render("╮"))
	b.WriteString("\n")

	// Header row
	if len(t.Headers) > 0 {
		b.WriteString(dimStyle.Render("│"))
		for i, h := range t.Headers {
			w := widths[i]
			padded := fmt.Sprintf(" %-*s ", w, h)
			b.WriteString(headerStyle.Render(padded))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString(dimStyle.Render("│"))
		b.WriteString("\n")

		// Header separator
		b.WriteString(dimStyle.Render("├"))
		for i, w := range widths {
			b.WriteString(dimStyle.Render(strings.Repeat("─", w+2)))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render("┼"))
			}
		}
		b.WriteString(dimStyle.Render("┤"))
		b.WriteString("\n")
	}

	// Data rows
	for _, row := range t.Rows {
		if len(row) == 1 && row[0] == "---" {
			// Separator row
			b.WriteString(dimStyle.Render("├"))
			for i, w := range widths {
				b.WriteString(dimStyle.Render(strings.Repeat("─", w+2)))
				if i < numCols-1 {
					b.WriteString(dimStyle.Render("┼"))
				}
			}
			b.WriteString(dimStyle.Render("┤"))
			b.WriteString("\n")
			continue
		}

		b.WriteString(dimStyle.Render("│"))
		for i := 0; i < numCols; i++ {
			w := widths[i]
			cell := ""
			if i < len(row) {
				cell = row[i]
			}

			// Right-align numeric columns (all except first)
			var padded string
			if i == 0 {
				padded = fmt.Sprintf(" %-*s ", w, cell)
			} else {
				padded = fmt.Sprintf(" %*s ", w, cell)
			}
			b.WriteString(valueStyle.Render(padded))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString(dimStyle.Render("│"))
		b.WriteString("\n")
	}

	// Bottom border
	b.WriteString(dimStyle.Render("╰"))
	for i, w := range widths {
		b.WriteString(dimStyle.Render(strings.Repeat("─", w+2)))
		if i < numCols-1 {
			b.WriteString(dimStyle.Render("┴"))
		}
	}
	b.WriteString(dimStyle.Render("╯"))
	b.WriteString("\n")

	return b.String()
}


// RenderProgressBar renders a simple text progress bar for a 0-100 value.
func RenderProgressBar(pct float64, width int) string {
	if width <= 0 {
		return ""
	}
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}

	filled := int(pct / 100 * float64(width))
	if filled > width {
		filled = width
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// statStyle colors a stat by how healthy it is.
func statStyle(v int) lipgloss.Style {
	switch {
	case v < 30:
		return badStyle
	case v < 60:
		return warnStyle
	default:
		return goodStyle
	}
}

// RenderStatBar renders one labeled stat line, e.g. "Hunger    ████░░ 80".
func RenderStatBar(label string, value, width int) string {
	bar := RenderProgressBar(float64(value), width)
	return fmt.Sprintf("  %s %s %s",
		mutedStyle.Render(fmt.Sprintf("%-10s", label)),
		statStyle(value).Render(bar),
		valueStyle.Render(fmt.Sprintf("%3d", value)),
	)
}

// RenderPetCard renders the full pet summary printed by the status command.
func RenderPetCard(p pet.Profile, now time.Time) string {
	var b strings.Builder

	b.WriteString(RenderTitle(fmt.Sprintf("%s  %s", Avatar(p), p.Name)))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "  %s %s %s %s\n",
		headerStyle.Render(string(p.Stage)),
		dimStyle.Render("·"),
		valueStyle.Render(string(p.Type)),
		mutedStyle.Render("("+pet.Mood(p)+")"))

	prog := pet.StageProgress(p)
	if prog.Final {
		fmt.Fprintf(&b, "  %s %s\n",
			mutedStyle.Render(fmt.Sprintf("%-10s", "XP")),
			valueStyle.Render(FormatNumber(int64(p.XP))+" (final stage)"))
	} else {
		next, _ := pet.NextStage(p.Stage)
		fmt.Fprintf(&b, "  %s %s %s\n",
			mutedStyle.Render(fmt.Sprintf("%-10s", "XP")),
			headerStyle.Render(RenderProgressBar(prog.Percent, 20)),
			valueStyle.Render(fmt.Sprintf("%s/%s to %s",
				FormatNumber(int64(p.XP)), FormatNumber(int64(prog.Next)), next)))
	}
	b.WriteString("\n")

	b.WriteString(RenderStatBar("Hunger", p.Hunger, 20) + "\n")
	b.WriteString(RenderStatBar("Happiness", p.Happiness, 20) + "\n")
	b.WriteString(RenderStatBar("Energy", p.Energy, 20) + "\n")
	b.WriteString("\n")

	rows := []struct{ label, value string }{
		{"Treats", treatStyle.Render(FormatNumber(int64(p.Treats)))},
		{"Streak", valueStyle.Render(FormatStreak(p.ConsecutiveLoginDays))},
		{"Goals", valueStyle.Render(fmt.Sprintf("%d set, %d completed", p.GoalsSet, p.GoalsCompleted))},
		{"Last fed", valueStyle.Render(FormatAgo(p.LastFed, now))},
		{"Last seen", valueStyle.Render(FormatAgo(p.LastInteraction, now))},
	}
	for _, r := range rows {
		fmt.Fprintf(&b, "  %s %s\n", mutedStyle.Render(fmt.Sprintf("%-10s", r.label)), r.value)
	}

	return b.String()
}

// RenderToast renders a notification as a single line.
func RenderToast(n pet.Notification) string {
	mark := goodStyle.Render("✓")
	title := headerStyle.Render(n.Title)
	if n.Severity == pet.SeverityDestructive {
		mark = badStyle.Render("✗")
		title = badStyle.Bold(true).Render(n.Title)
	}
	if n.Description == "" {
		return fmt.Sprintf("%s %s", mark, title)
	}
	return fmt.Sprintf("%s %s %s", mark, title, mutedStyle.Render(n.Description))
}

// RenderRules renders the financial event reaction table.
func RenderRules() string {
	t := Table{
		Title:   "Financial Events",
		Headers: []string{"Event", "Treats", "XP", "Happiness", "Energy"},
	}
	for _, ev := range pet.Events {
		r := pet.Rules[ev]
		t.Rows = append(t.Rows, []string{
			string(ev),
			FormatSigned(r.Treats),
			FormatSigned(r.XP),
			FormatSigned(r.Happiness),
			FormatSigned(r.Energy),
		})
	}
	return RenderTable(t)
}
