// Package runningapp wires the running text widget, text feeds, and the
// configuration layer together into the RunningText desktop window.
package runningapp

import (
	"context"
	"image/color"
	"log"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/edward-ap/runningtext/internal/config"
	"github.com/edward-ap/runningtext/internal/feed"
	"github.com/edward-ap/runningtext/internal/marquee"
	"github.com/edward-ap/runningtext/internal/ui"
)

const (
	// spacingStep is how far +/- move the gap between repetitions.
	spacingStep = 4
	// saveDelay debounces config writes from the speed slider.
	saveDelay = 400 * time.Millisecond
)

var (
	tickerBgColor = color.NRGBA{0x00, 0x99, 0xFF, 0x40}
	tickerBgFlash = color.NRGBA{0x00, 0xCC, 0xFF, 0x60}
	darkBg        = color.NRGBA{0x1a, 0x1a, 0x1a, 0xFF}
)

// App owns the fyne application, the main window, and its widgets.
type App struct {
	fa     fyne.App
	w      fyne.Window
	config *config.Config

	playBtn  *widget.Button
	ind      *ui.PlayIndicator
	text     *ui.RunningText
	tickerBg *canvas.Rectangle
	speed    *widget.Slider

	shortcutCatcher *shortcutCatcher
	saveTimer       *time.Timer

	stopFeed context.CancelFunc
}

// NewApp builds the window for cfg. A nil cfg loads the default config file.
func NewApp(cfg *config.Config) *App {
	if cfg == nil {
		var err error
		if cfg, err = config.Load(); err != nil {
			log.Println("config load error:", err)
			cfg = config.Default()
		}
	}

	return newApp(app.NewWithID(config.AppID), cfg)
}

func newApp(fa fyne.App, cfg *config.Config) *App {
	fa.Settings().SetTheme(theme.DarkTheme())
	if AppIcon != nil {
		fa.SetIcon(AppIcon)
	}
	w := fa.NewWindow("RunningText")
	w.SetMaster()
	w.SetPadded(false)
	if AppIcon != nil {
		w.SetIcon(AppIcon)
	}

	a := &App{fa: fa, w: w, config: cfg}
	a.buildUI()
	a.startFeed()

	w.SetCloseIntercept(func() {
		a.captureState()
		_ = a.config.Save()
		if a.stopFeed != nil {
			a.stopFeed()
		}
		a.text.Close()
		w.Close()
		fa.Quit()
	})

	w.Canvas().SetOnTypedKey(a.handleShortcutKey)

	if !cfg.Paused {
		a.setPlaying(true)
	}
	return a
}

// Run enters the fyne event loop.
func (a *App) Run() {
	a.w.ShowAndRun()
}

func (a *App) buildUI() {
	bar := a.buildControlBar()
	a.w.SetContent(bar)
	a.ensureShortcutFocus()

	ui.CallOnMain(func() {
		targetW := float32(a.config.WindowW)
		if targetW < config.MinWindowWidth {
			targetW = config.MinWindowWidth
		}
		a.w.Resize(fyne.NewSize(targetW, bar.MinSize().Height))
	})
}

// buildControlBar lays out the strip: play button on the left, indicator and
// running text in the middle, speed slider on the right.
func (a *App) buildControlBar() fyne.CanvasObject {
	if a.shortcutCatcher == nil {
		a.shortcutCatcher = newShortcutCatcher(a.handleShortcutKey)
	}

	a.playBtn = widget.NewButtonWithIcon("", theme.MediaPlayIcon(), a.togglePlay)
	a.playBtn.Importance = widget.LowImportance
	playBg := canvas.NewRectangle(darkBg)
	playBg.SetMinSize(fyne.NewSize(36, 1))
	leftBlock := container.NewHBox(
		container.NewStack(playBg, container.NewCenter(a.playBtn)),
		widget.NewSeparator(),
	)

	a.text = ui.NewRunningText(a.config.Text)
	a.text.SetSpeed(a.config.Speed)
	a.text.SetSpacing(a.config.Spacing)
	a.text.SetTextSize(a.config.TextSize)
	a.text.SetOverflowOnly(a.config.OverflowOnly)
	a.text.OnError = a.reportTextError

	a.ind = ui.NewPlayIndicator(14)
	gap := canvas.NewRectangle(color.Transparent)
	gap.SetMinSize(fyne.NewSize(6, 1))
	centerRow := container.NewBorder(nil, nil,
		container.NewHBox(a.ind.CanvasObject(), gap), nil,
		a.text,
	)

	a.tickerBg = canvas.NewRectangle(tickerBgColor)
	centerContent := container.NewStack(
		container.NewPadded(a.tickerBg),
		container.NewPadded(centerRow),
	)

	a.speed = widget.NewSlider(0, config.MaxSpeed)
	a.speed.Step = 1
	a.speed.Value = float64(a.config.Speed)
	a.speed.OnChanged = func(v float64) {
		a.text.SetSpeed(float32(v))
		a.config.Speed = float32(v)
		a.scheduleSave()
	}
	speedBox := container.New(
		layout.NewGridWrapLayout(fyne.NewSize(110, a.speed.MinSize().Height)),
		a.speed,
	)
	rightBg := canvas.NewRectangle(darkBg)
	rightBlock := container.NewStack(
		rightBg,
		container.NewPadded(container.NewHBox(widget.NewIcon(theme.MediaFastForwardIcon()), speedBox)),
	)

	top := container.NewBorder(nil, nil, leftBlock, rightBlock, centerContent)

	a.shortcutCatcher.Resize(fyne.NewSize(1, 1))
	a.shortcutCatcher.Move(fyne.NewPos(-5, -5))
	return container.NewStack(top, container.NewPadded(a.shortcutCatcher))
}

// ensureShortcutFocus keeps the invisible shortcut catcher focused so key
// handling works even after the slider was dragged.
func (a *App) ensureShortcutFocus() {
	if a.w == nil || a.shortcutCatcher == nil {
		return
	}
	ui.CallOnMain(func() { a.w.Canvas().Focus(a.shortcutCatcher) })
}

// handleShortcutKey centralizes keyboard shortcuts regardless of which widget
// currently owns focus.
func (a *App) handleShortcutKey(ke *fyne.KeyEvent) {
	if ke == nil {
		return
	}
	switch ke.Name {
	case fyne.KeySpace:
		a.togglePlay()
	case fyne.KeyUp:
		a.changeSpeed(+1)
	case fyne.KeyDown:
		a.changeSpeed(-1)
	case fyne.KeyPlus, fyne.KeyEqual:
		a.changeSpacing(+spacingStep)
	case fyne.KeyMinus:
		a.changeSpacing(-spacingStep)
	}
}

func (a *App) togglePlay() {
	a.setPlaying(!a.text.PlayRequested())
	a.ensureShortcutFocus()
}

func (a *App) setPlaying(on bool) {
	if on {
		a.text.Resume()
		a.playBtn.SetIcon(theme.MediaPauseIcon())
	} else {
		a.text.Pause()
		a.playBtn.SetIcon(theme.MediaPlayIcon())
	}
	a.ind.SetActive(on)
	a.config.Paused = !on
}

// changeSpeed moves the slider, which in turn updates the text and config.
func (a *App) changeSpeed(delta float64) {
	v := a.speed.Value + delta
	if v < a.speed.Min {
		v = a.speed.Min
	}
	if v > a.speed.Max {
		v = a.speed.Max
	}
	a.speed.SetValue(v)
}

func (a *App) changeSpacing(delta float32) {
	s := a.text.Spacing() + delta
	if s < 0 {
		s = 0
	}
	a.text.SetSpacing(s)
	a.config.Spacing = s
	a.scheduleSave()
}

func (a *App) scheduleSave() {
	if a.saveTimer != nil {
		a.saveTimer.Stop()
	}
	a.saveTimer = time.AfterFunc(saveDelay, func() { _ = a.config.Save() })
}

// captureState copies window and widget state into the config before it is
// saved on close.
func (a *App) captureState() {
	if a.saveTimer != nil {
		a.saveTimer.Stop()
	}
	a.config.WindowW = int(a.w.Canvas().Size().Width)
	a.config.Speed = a.text.Speed()
	a.config.Spacing = a.text.Spacing()
}

// reportTextError runs inside the draw pass, so UI updates are posted.
func (a *App) reportTextError(err error) {
	log.Println("running text:", err)
	if !marquee.IsConfigError(err) {
		return
	}
	ui.CallOnMain(func() {
		a.playBtn.SetIcon(theme.MediaPlayIcon())
		a.ind.SetActive(false)
		dialog.ShowError(err, a.w)
	})
}

// startFeed follows the configured text source, if any.
func (a *App) startFeed() {
	src, err := feed.Parse(a.config.Source, nil, log.Default())
	if err != nil {
		log.Println("feed:", err)
		return
	}
	if src == nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.stopFeed = cancel
	go func() {
		err := src.Watch(ctx, func(text string) {
			ui.CallOnMain(func() { a.UpdateText(text) })
		})
		if err != nil && ctx.Err() == nil {
			log.Println("feed stopped:", err)
		}
	}()
}

// UpdateText replaces the running text and briefly flashes the background.
func (a *App) UpdateText(text string) {
	a.text.SetText(text)
	if a.tickerBg == nil {
		return
	}
	a.tickerBg.FillColor = tickerBgFlash
	a.tickerBg.Refresh()
	time.AfterFunc(180*time.Millisecond, func() {
		ui.CallOnMain(func() {
			a.tickerBg.FillColor = tickerBgColor
			a.tickerBg.Refresh()
		})
	})
}

type shortcutCatcher struct {
	widget.BaseWidget
	onKey func(*fyne.KeyEvent)
}

func newShortcutCatcher(handler func(*fyne.KeyEvent)) *shortcutCatcher {
	c := &shortcutCatcher{onKey: handler}
	c.ExtendBaseWidget(c)
	return c
}

func (s *shortcutCatcher) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(color.Transparent)
	rect.SetMinSize(fyne.NewSize(1, 1))
	return widget.NewSimpleRenderer(rect)
}

func (s *shortcutCatcher) MinSize() fyne.Size { return fyne.NewSize(1, 1) }

func (s *shortcutCatcher) Resize(fyne.Size) { s.BaseWidget.Resize(fyne.NewSize(1, 1)) }

func (s *shortcutCatcher) FocusGained() {}

func (s *shortcutCatcher) FocusLost() {}

func (s *shortcutCatcher) TypedKey(ev *fyne.KeyEvent) {
	if s.onKey != nil {
		s.onKey(ev)
	}
}

func (s *shortcutCatcher) TypedRune(rune) {}
