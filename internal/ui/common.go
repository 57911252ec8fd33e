// Package ui contains the running text widget and the small fyne widgets and
// helpers shared across the app.
package ui

import "fyne.io/fyne/v2"

// CallOnMain runs f on the UI thread when the active driver can schedule it
// there, and inline otherwise (no app yet, test driver).
func CallOnMain(f func()) {
	if f == nil {
		return
	}
	var drv fyne.Driver
	if a := fyne.CurrentApp(); a != nil {
		drv = a.Driver()
	}
	switch d := drv.(type) {
	case interface{ RunOnMain(func()) }:
		d.RunOnMain(f)
	case interface{ CallOnMain(func()) }:
		d.CallOnMain(f)
	default:
		f()
	}
}

// currentScale is the app's UI scale, 1 when no app or setting exists.
func currentScale() float32 {
	a := fyne.CurrentApp()
	if a == nil || a.Settings() == nil {
		return 1
	}
	if sc := a.Settings().Scale(); sc > 0 {
		return sc
	}
	return 1
}

// overflowEpsilon absorbs rounding between measured and laid out widths.
const overflowEpsilon float32 = 0.5

// textOverflows reports whether text of textWidth is wider than the viewport.
func textOverflows(textWidth, viewportWidth float32) bool {
	if textWidth <= 0 {
		return false
	}
	return textWidth-max(viewportWidth, 0) > overflowEpsilon
}
