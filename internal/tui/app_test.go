package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/theirongolddev/ascendia/internal/pet"
	"github.com/theirongolddev/ascendia/internal/store"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func loadedApp(t *testing.T) App {
	t.Helper()
	notes := NewNotifications()
	engine := pet.NewEngine(pet.Config{
		Store: store.NewMemory(),
		Sink:  notes,
		Now:   func() time.Time { return testNow },
	})
	a := NewApp(Options{Engine: engine, Notes: notes, Now: func() time.Time { return testNow }})

	m, _ := a.Update(loadCmd(context.Background(), engine)())
	m, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m.(App)
}

func press(t *testing.T, a App, key string) App {
	t.Helper()
	m, cmd := a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)})
	a = m.(App)
	if cmd != nil {
		if msg := cmd(); msg != nil {
			m, _ = a.Update(msg)
			a = m.(App)
		}
	}
	return a
}

func TestLoadedShowsPet(t *testing.T) {
	a := loadedApp(t)
	if !a.loaded {
		t.Fatal("app not loaded")
	}
	if a.profile.Name != pet.DefaultName {
		t.Fatalf("profile name = %q", a.profile.Name)
	}
	view := a.View()
	for _, want := range []string{pet.DefaultName, "Hatchling", "Hunger", "Treats"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestFeedKeyUpdatesProfile(t *testing.T) {
	a := loadedApp(t)
	before := a.profile.Treats

	a = press(t, a, "f")
	if a.profile.Treats != before-1 {
		t.Fatalf("Treats = %d, want %d", a.profile.Treats, before-1)
	}
}

func TestTrainKeyGrantsXP(t *testing.T) {
	a := loadedApp(t)
	a = press(t, a, "x")
	if a.profile.XP != TrainXP {
		t.Fatalf("XP = %d, want %d", a.profile.XP, TrainXP)
	}
}

func TestNotificationsBecomeToasts(t *testing.T) {
	a := loadedApp(t)

	m, _ := a.Update(waitForNote(a.notes)())
	a = m.(App)
	if len(a.toasts) != 1 || a.toasts[0].note.Title != "Daily Login Bonus!" {
		t.Fatalf("toasts = %+v, want the login bonus", a.toasts)
	}
	if !strings.Contains(a.View(), "Daily Login Bonus!") {
		t.Fatal("toast not rendered")
	}
}

func TestToastsExpire(t *testing.T) {
	now := testNow
	a := loadedApp(t)
	a.now = func() time.Time { return now }
	a.toasts = []toast{{note: pet.Notification{Title: "old"}, expires: now.Add(-time.Second)}}

	m, _ := a.Update(clockMsg{})
	if got := len(m.(App).toasts); got != 0 {
		t.Fatalf("toasts after expiry = %d, want 0", got)
	}
}

func TestRenameFormOpensAndEscCloses(t *testing.T) {
	a := loadedApp(t)

	m, _ := a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	a = m.(App)
	if a.form == nil || a.formKind != formRename {
		t.Fatal("rename form not open")
	}
	if a.formVals.name != pet.DefaultName {
		t.Fatalf("form prefilled with %q", a.formVals.name)
	}

	m, _ = a.Update(tea.KeyMsg{Type: tea.KeyEsc})
	a = m.(App)
	if a.form != nil {
		t.Fatal("esc did not close the form")
	}
}

func TestHelpToggle(t *testing.T) {
	a := loadedApp(t)
	a = press(t, a, "?")
	if !a.showHelp || !strings.Contains(a.View(), "Keyboard Shortcuts") {
		t.Fatal("help not shown")
	}
	a = press(t, a, "j")
	if a.showHelp {
		t.Fatal("help not dismissed")
	}
}

func TestKeysIgnoredBeforeLoad(t *testing.T) {
	engine := pet.NewEngine(pet.Config{Store: store.NewMemory()})
	a := NewApp(Options{Engine: engine})

	m, cmd := a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("f")})
	if cmd != nil || m.(App).loaded {
		t.Fatal("key handled before load")
	}
}
