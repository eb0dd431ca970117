// Package tui provides the interactive Bubble Tea dashboard for ascendia.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/ascendia/internal/cli"
	"github.com/theirongolddev/ascendia/internal/pet"
	"github.com/theirongolddev/ascendia/internal/tui/components"
	"github.com/theirongolddev/ascendia/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Notifications buffers engine notifications until the dashboard shows
// them. It implements pet.Sink and never blocks the engine.
type Notifications chan pet.Notification

// NewNotifications returns a buffered notification channel.
func NewNotifications() Notifications {
	return make(Notifications, 32)
}

// Notify implements pet.Sink. Notifications are dropped when the buffer is full.
func (n Notifications) Notify(note pet.Notification) {
	select {
	case n <- note:
	default:
	}
}

// Options configures the dashboard.
type Options struct {
	Engine        *pet.Engine
	Notes         Notifications
	DecayEnabled  bool
	DecayInterval time.Duration
	NeedSetup     bool
	Now           func() time.Time
}

// LoadedMsg is sent when the engine finishes loading the profile.
type LoadedMsg struct {
	Status pet.LoadStatus
}

// ProfileMsg is sent after an action so the view picks up the latest profile.
type ProfileMsg struct{}

// NoteMsg delivers one engine notification.
type NoteMsg struct {
	Note pet.Notification
}

type decayMsg struct{}

type clockMsg struct{}

type toast struct {
	note    pet.Notification
	expires time.Time
}

type formKind int

const (
	formNone formKind = iota
	formSetup
	formRename
	formType
)

// formValues is heap-allocated so huh keeps writing to the same fields
// while the App value is copied between updates.
type formValues struct {
	name    string
	petType string
	theme   string
}

// App is the root Bubble Tea model.
type App struct {
	engine *pet.Engine
	notes  Notifications
	ctx    context.Context
	now    func() time.Time

	decayEnabled  bool
	decayInterval time.Duration

	// Data
	profile    pet.Profile
	loaded     bool
	loadStatus pet.LoadStatus

	// UI state
	width    int
	height   int
	showHelp bool
	toasts   []toast
	spinner  spinner.Model

	// Forms (huh)
	form      *huh.Form
	formKind  formKind
	formVals  *formValues
	needSetup bool
	setupErr  error
}

const (
	minTerminalWidth = 60
	maxContentWidth  = 100
	minContentHeight = 5

	// TrainXP is the XP granted by one training session.
	TrainXP = 20

	toastTTL  = 4 * time.Second
	maxToasts = 4
)

// NewApp creates a new TUI app model.
func NewApp(opts Options) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.DecayInterval < time.Second {
		opts.DecayInterval = time.Minute
	}
	if opts.Notes == nil {
		opts.Notes = NewNotifications()
	}

	return App{
		engine:        opts.Engine,
		notes:         opts.Notes,
		ctx:           context.Background(),
		now:           opts.Now,
		decayEnabled:  opts.DecayEnabled,
		decayInterval: opts.DecayInterval,
		needSetup:     opts.NeedSetup,
		spinner:       sp,
		formVals:      &formValues{},
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		loadCmd(a.ctx, a.engine),
		waitForNote(a.notes),
		a.spinner.Tick,
		clockCmd(),
	)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Forward to the active form
		if a.form != nil {
			a.form = a.form.WithWidth(a.formWidth()).WithHeight(msg.Height)
		}
		return a, nil

	case tea.KeyMsg:
		key := msg.String()

		// Global: quit
		if key == "ctrl+c" {
			return a, tea.Quit
		}

		if !a.loaded {
			return a, nil
		}

		// Active form intercepts all keys
		if a.form != nil {
			return a.updateForm(msg)
		}

		// Help toggle
		if key == "?" {
			a.showHelp = !a.showHelp
			return a, nil
		}

		// Dismiss help
		if a.showHelp {
			a.showHelp = false
			return a, nil
		}

		switch key {
		case "q":
			return a, tea.Quit
		case "f":
			return a, a.act(func(ctx context.Context, e *pet.Engine) { e.FeedPet(ctx, 1) })
		case "p":
			return a, a.act(func(ctx context.Context, e *pet.Engine) { e.Play(ctx) })
		case "x":
			return a, a.act(func(ctx context.Context, e *pet.Engine) { e.GainXP(ctx, TrainXP, false) })
		case "r":
			return a.openForm(formRename)
		case "t":
			return a.openForm(formType)
		}
		return a, nil

	case LoadedMsg:
		a.loaded = true
		a.loadStatus = msg.Status
		a.refreshProfile()

		cmds := []tea.Cmd{}
		if a.decayEnabled {
			cmds = append(cmds, decayCmd(a.decayInterval))
		}

		// Activate first-run setup after the pet loads
		if a.needSetup {
			next, cmd := a.openForm(formSetup)
			return next, tea.Batch(append(cmds, cmd)...)
		}
		return a, tea.Batch(cmds...)

	case ProfileMsg:
		a.refreshProfile()
		return a, nil

	case NoteMsg:
		a.toasts = append(a.toasts, toast{note: msg.Note, expires: a.now().Add(toastTTL)})
		if len(a.toasts) > maxToasts {
			a.toasts = a.toasts[len(a.toasts)-maxToasts:]
		}
		return a, waitForNote(a.notes)

	case decayMsg:
		return a, tea.Batch(
			a.act(func(ctx context.Context, e *pet.Engine) { e.Decay(ctx) }),
			decayCmd(a.decayInterval),
		)

	case clockMsg:
		a.pruneToasts()
		return a, clockCmd()

	case spinner.TickMsg:
		if !a.loaded {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	// Forms also receive their own internal messages.
	if a.form != nil {
		return a.updateForm(msg)
	}
	return a, nil
}

func (a *App) refreshProfile() {
	if p, ok := a.engine.Profile(); ok {
		a.profile = p
	}
}

func (a *App) pruneToasts() {
	now := a.now()
	n := 0
	for _, t := range a.toasts {
		if now.Before(t.expires) {
			a.toasts[n] = t
			n++
		}
	}
	a.toasts = a.toasts[:n]
}

// act runs an engine action off the UI goroutine and refreshes afterwards.
func (a App) act(fn func(context.Context, *pet.Engine)) tea.Cmd {
	ctx, engine := a.ctx, a.engine
	return func() tea.Msg {
		fn(ctx, engine)
		return ProfileMsg{}
	}
}

func (a App) contentWidth() int {
	cw := a.width
	if cw > maxContentWidth {
		cw = maxContentWidth
	}
	return cw
}

func (a App) formWidth() int {
	w := a.contentWidth() - 8
	if w < 30 {
		w = 30
	}
	return w
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}

	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}

	if !a.loaded {
		return a.viewLoading()
	}

	if a.form != nil {
		return a.viewForm()
	}

	if a.showHelp {
		return a.viewHelp()
	}

	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := a.height
	if h < 5 {
		h = 5
	}

	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  ascendia needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)

	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)

	logoStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Background(t.Surface).
		Bold(true)

	subtitleStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ ascendia"))
	b.WriteString(subtitleStyle.Render(" · Financial Companion"))
	b.WriteString("\n\n")
	b.WriteString(a.spinner.View())
	b.WriteString(subtitleStyle.Render(" Waking up your pet..."))

	card := cardStyle.Render(b.String())

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewForm() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(1, 2)

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(a.form.View()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)

	titleStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Background(t.Surface).
		Bold(true)

	keyStyle := lipgloss.NewStyle().
		Foreground(t.Cyan).
		Background(t.Surface).
		Bold(true)

	descStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface)

	dimStyle := lipgloss.NewStyle().
		Foreground(t.TextDim).
		Background(t.Surface)

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n\n")

	bindings := []struct{ key, desc string }{
		{"f", "Feed (1 treat)"},
		{"p", "Play (-10 energy, +15 happiness)"},
		{"x", fmt.Sprintf("Train (+%d XP)", TrainXP)},
		{"r", "Rename your pet"},
		{"t", "Change species"},
		{"?", "Toggle help"},
		{"q", "Quit"},
	}
	for _, bind := range bindings {
		fmt.Fprintf(&b, "  %s  %s\n",
			keyStyle.Render(fmt.Sprintf("%-6s", bind.key)),
			descStyle.Render(bind.desc))
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	// 1. Header
	headerStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Background(t.Surface).
		Bold(true).
		Width(w).
		Padding(0, 1)
	header := headerStyle.Render("◈ ascendia · " + a.profile.Name)

	// 2. Status bar
	statusBar := components.RenderStatusBar(w, "[f]eed [p]lay [x]train [r]ename [t]ype [?]help [q]uit", a.statusText())

	// 3. Content zone
	headerH := lipgloss.Height(header)
	statusH := lipgloss.Height(statusBar)
	contentH := h - headerH - statusH
	if contentH < minContentHeight {
		contentH = minContentHeight
	}

	content := a.renderPet(cw)
	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) statusText() string {
	if a.setupErr != nil {
		return "config not saved: " + a.setupErr.Error()
	}
	switch a.loadStatus {
	case pet.LoadDefaulted:
		return "saved pet unreadable, started fresh"
	case pet.LoadUnavailable:
		return "store unreadable, changes will not be saved"
	}
	if a.decayEnabled {
		return "last seen " + cli.FormatAgo(a.profile.LastInteraction, a.now())
	}
	return ""
}

func (a App) renderPet(cw int) string {
	t := theme.Active
	p := a.profile
	inner := components.CardInnerWidth(cw)

	// Identity card
	avatarStyle := lipgloss.NewStyle().Bold(true)
	nameStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Bold(true)
	metaStyle := lipgloss.NewStyle().Foreground(t.TextMuted)

	var id strings.Builder
	id.WriteString(avatarStyle.Render(cli.Avatar(p)))
	id.WriteString("  ")
	id.WriteString(nameStyle.Render(p.Name))
	id.WriteString("\n")
	id.WriteString(metaStyle.Render(fmt.Sprintf("%s %s · feeling %s", p.Stage, p.Type, pet.Mood(p))))
	id.WriteString("\n\n")

	prog := pet.StageProgress(p)
	caption := fmt.Sprintf("%s XP (final stage)", cli.FormatNumber(int64(p.XP)))
	if !prog.Final {
		next, _ := pet.NextStage(p.Stage)
		caption = fmt.Sprintf("%s/%s XP to %s", cli.FormatNumber(int64(p.XP)), cli.FormatNumber(int64(prog.Next)), next)
	}
	barW := inner - lipgloss.Width(caption) - 2
	if barW < 10 {
		barW = 10
	}
	id.WriteString(components.XPBar(prog.Percent, caption, barW))

	identity := components.ContentCard("Companion", id.String(), cw)

	// Stats card
	statW := inner - 16
	if statW < 10 {
		statW = 10
	}
	stats := strings.Join([]string{
		components.StatBar("Hunger", p.Hunger, t.Hunger, 10, statW),
		components.StatBar("Happiness", p.Happiness, t.Happiness, 10, statW),
		components.StatBar("Energy", p.Energy, t.Energy, 10, statW),
	}, "\n")
	statsCard := components.ContentCard("Stats", stats, cw)

	// Metrics row
	metrics := components.MetricCardRow([]components.Metric{
		{Label: "Treats", Value: cli.FormatNumber(int64(p.Treats)), Color: t.Treat},
		{Label: "Streak", Value: cli.FormatStreak(p.ConsecutiveLoginDays)},
		{Label: "Goals", Value: fmt.Sprintf("%d / %d", p.GoalsCompleted, p.GoalsSet), Hint: "done / set"},
		{Label: "Last fed", Value: cli.FormatAgo(p.LastFed, a.now())},
	}, cw)

	parts := []string{identity, statsCard, metrics}
	if len(a.toasts) > 0 {
		parts = append(parts, a.renderToasts(cw))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (a App) renderToasts(cw int) string {
	t := theme.Active
	infoStyle := lipgloss.NewStyle().Foreground(t.Green).Bold(true)
	badStyle := lipgloss.NewStyle().Foreground(t.Red).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted)

	var lines []string
	for i := len(a.toasts) - 1; i >= 0; i-- {
		n := a.toasts[i].note
		title := infoStyle.Render("✓ " + n.Title)
		if n.Severity == pet.SeverityDestructive {
			title = badStyle.Render("✗ " + n.Title)
		}
		lines = append(lines, truncStr(title+" "+descStyle.Render(n.Description), cw-4))
	}
	return components.ContentCard("", strings.Join(lines, "\n"), cw)
}

// ─── Commands ───────────────────────────────────────────────────

func loadCmd(ctx context.Context, engine *pet.Engine) tea.Cmd {
	return func() tea.Msg {
		return LoadedMsg{Status: engine.Init(ctx)}
	}
}

// waitForNote blocks until the engine emits the next notification.
func waitForNote(notes Notifications) tea.Cmd {
	return func() tea.Msg {
		return NoteMsg{Note: <-notes}
	}
}

func decayCmd(every time.Duration) tea.Cmd {
	return tea.Tick(every, func(time.Time) tea.Msg {
		return decayMsg{}
	})
}

func clockCmd() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return clockMsg{}
	})
}

// ─── Helpers ────────────────────────────────────────────────────

// truncStr cuts a styled string to limit cells without splitting escape codes.
func truncStr(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	return ansi.Truncate(s, limit, "…")
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	padding := strings.Repeat("\n", h-len(lines))
	return s + padding
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")

	var result strings.Builder
	for i, line := range lines {
		placed := lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
		result.WriteString(placed)
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}
