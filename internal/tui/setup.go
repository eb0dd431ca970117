package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/theirongolddev/ascendia/internal/config"
	"github.com/theirongolddev/ascendia/internal/pet"
	"github.com/theirongolddev/ascendia/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// NewSetupForm builds the first-run form: pet name, species and color theme.
// It is shared with the `ascendia setup` command.
func NewSetupForm(name, petType, themeName *string) *huh.Form {
	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, t := range theme.All {
		themeOpts = append(themeOpts, huh.NewOption(t.Name, t.Name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to ascendia!").
				Description("Your financial companion grows as you reach your money goals.\nLet's meet your pet."),
			nameInput(name),
			typeSelect(petType),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(themeName),
		),
	).WithTheme(huh.ThemeDracula()).WithShowHelp(false)
}

func nameInput(name *string) *huh.Input {
	return huh.NewInput().
		Title("Pet name").
		Placeholder(pet.DefaultName).
		CharLimit(32).
		Value(name).
		Validate(func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New("a name is required")
			}
			return nil
		})
}

func typeSelect(petType *string) *huh.Select[string] {
	opts := make([]huh.Option[string], 0, len(pet.Types))
	for _, t := range pet.Types {
		opts = append(opts, huh.NewOption(string(t), string(t)))
	}
	return huh.NewSelect[string]().
		Title("Species").
		Options(opts...).
		Value(petType)
}

// openForm shows one of the dashboard forms, prefilled from the current pet.
func (a App) openForm(kind formKind) (tea.Model, tea.Cmd) {
	vals := &formValues{
		name:    a.profile.Name,
		petType: string(a.profile.Type),
		theme:   theme.Active.Name,
	}

	var form *huh.Form
	switch kind {
	case formSetup:
		form = NewSetupForm(&vals.name, &vals.petType, &vals.theme)
	case formRename:
		form = huh.NewForm(huh.NewGroup(nameInput(&vals.name))).
			WithTheme(huh.ThemeDracula()).WithShowHelp(false)
	case formType:
		form = huh.NewForm(huh.NewGroup(typeSelect(&vals.petType))).
			WithTheme(huh.ThemeDracula()).WithShowHelp(false)
	default:
		return a, nil
	}
	if a.width > 0 {
		form = form.WithWidth(a.formWidth()).WithHeight(a.height)
	}

	a.form = form
	a.formKind = kind
	a.formVals = vals
	return a, form.Init()
}

func (a App) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" && a.formKind != formSetup {
		a.closeForm()
		return a, nil
	}

	form, cmd := a.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.form = f
	}

	switch a.form.State {
	case huh.StateCompleted:
		apply := a.applyForm()
		a.closeForm()
		return a, apply
	case huh.StateAborted:
		a.closeForm()
		return a, nil
	}
	return a, cmd
}

func (a *App) closeForm() {
	if a.formKind == formSetup {
		a.needSetup = false
	}
	a.form = nil
	a.formKind = formNone
}

// applyForm turns the submitted values into engine actions.
func (a *App) applyForm() tea.Cmd {
	vals := *a.formVals
	switch a.formKind {
	case formSetup:
		a.setupErr = saveSetupConfig(vals.theme)
		return a.act(func(ctx context.Context, e *pet.Engine) {
			e.RenamePet(ctx, vals.name)
			e.SetPetType(ctx, pet.Type(vals.petType))
		})
	case formRename:
		return a.act(func(ctx context.Context, e *pet.Engine) { e.RenamePet(ctx, vals.name) })
	case formType:
		return a.act(func(ctx context.Context, e *pet.Engine) { e.SetPetType(ctx, pet.Type(vals.petType)) })
	}
	return nil
}

// saveSetupConfig activates the chosen theme and persists it.
func saveSetupConfig(themeName string) error {
	cfg, _ := config.Load()
	cfg.Appearance.Theme = themeName
	theme.SetActive(themeName)
	return config.Save(cfg)
}
