// Package tray provides the system tray interface for toggling live
// expression detection.
package tray

import (
	"strings"
	"sync"

	"github.com/getlantern/systray"
)

// moodLimit caps the mood line so long interpretations do not stretch
// the menu.
const moodLimit = 60

// Callbacks are the actions the menu drives. Nil entries are ignored.
type Callbacks struct {
	Toggle    func(enabled bool)
	Dashboard func()
	Quit      func()
}

// Tray is the system tray application.
type Tray struct {
	callbacks Callbacks

	mu      sync.RWMutex
	enabled bool

	menuToggle     *systray.MenuItem
	menuExpression *systray.MenuItem
	menuMood       *systray.MenuItem
}

// New creates a Tray with detection enabled by default.
func New(callbacks Callbacks) *Tray {
	return &Tray{
		callbacks: callbacks,
		enabled:   true,
	}
}

// Run starts the system tray. Blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, func() {})
}

func (t *Tray) onReady() {
	systray.SetTitle("Emoticon")
	systray.SetTooltip("Emoticon expression detection")

	t.menuToggle = systray.AddMenuItem("● Detecting", "Toggle expression detection")
	systray.AddSeparator()

	t.menuExpression = systray.AddMenuItem("Expression: none", "Last detected expression")
	t.menuExpression.Disable()
	t.menuMood = systray.AddMenuItem("Mood: none", "Last interpretation")
	t.menuMood.Disable()
	systray.AddSeparator()

	menuDashboard := systray.AddMenuItem("Open Dashboard...", "Open the dashboard in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Emoticon")

	go t.clickLoop(menuDashboard, menuQuit)
}

func (t *Tray) clickLoop(dashboard, quit *systray.MenuItem) {
	for {
		select {
		case <-t.menuToggle.ClickedCh:
			enabled := t.flipEnabled()
			if t.callbacks.Toggle != nil {
				t.callbacks.Toggle(enabled)
			}
		case <-dashboard.ClickedCh:
			if t.callbacks.Dashboard != nil {
				t.callbacks.Dashboard()
			}
		case <-quit.ClickedCh:
			if t.callbacks.Quit != nil {
				t.callbacks.Quit()
			}
			systray.Quit()
			return
		}
	}
}

// flipEnabled toggles the enabled state and updates the menu title,
// returning the new state.
func (t *Tray) flipEnabled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.enabled = !t.enabled
	if t.enabled {
		t.menuToggle.SetTitle("● Detecting")
	} else {
		t.menuToggle.SetTitle("○ Paused")
	}
	return t.enabled
}

// SetExpression updates the last-expression display.
func (t *Tray) SetExpression(gestures []string) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuExpression == nil {
		return
	}
	label := "none"
	if len(gestures) > 0 {
		label = strings.Join(gestures, ", ")
	}
	t.menuExpression.SetTitle("Expression: " + label)
}

// SetMood updates the last-interpretation display.
func (t *Tray) SetMood(text string) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuMood == nil {
		return
	}
	if text == "" {
		text = "none"
	} else if len(text) > moodLimit {
		text = text[:moodLimit-3] + "..."
	}
	t.menuMood.SetTitle("Mood: " + text)
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}
