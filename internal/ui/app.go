package ui

import (
	"fmt"
	"io"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"scratchview/internal/export"
	"scratchview/internal/logx"
)

// AppID identifies the application to Fyne preferences and storage.
const AppID = "io.scratchview"

// NewApp creates the Fyne application.
func NewApp() fyne.App {
	return app.NewWithID(AppID)
}

// Options configures the main window.
type Options struct {
	Title string
	// ShareLink is shown with a copy button when the surface is hosted.
	ShareLink string
	// OnReset replaces the view's own Reset, e.g. to broadcast it.
	OnReset func()
}

// Window is the main window: toolbar, scratch view and a status line.
type Window struct {
	fyne.Window
	view   *ScratchView
	status *widget.Label
}

// NewWindow lays out view in a new window of a.
func NewWindow(a fyne.App, view *ScratchView, opts Options) *Window {
	title := opts.Title
	if title == "" {
		title = "Scratch View"
	}
	w := &Window{
		Window: a.NewWindow(title),
		view:   view,
		status: widget.NewLabel("Ready"),
	}
	w.Resize(fyne.NewSize(1024, 768))

	tb := NewToolbar(view, ToolbarActions{Reset: opts.OnReset, Export: w.showExport})

	bottom := fyne.CanvasObject(w.status)
	if opts.ShareLink != "" {
		link := opts.ShareLink
		copyBtn := widget.NewButtonWithIcon("Copy link", theme.ContentCopyIcon(), func() {
			w.Clipboard().SetContent(link)
			w.SetStatus("Link copied")
		})
		bottom = container.NewBorder(nil, nil, nil, container.NewHBox(widget.NewLabel(link), copyBtn), w.status)
	}

	w.SetContent(container.NewBorder(tb, bottom, nil, nil, view))
	return w
}

// SetStatus updates the status line. Safe to call from any goroutine.
func (w *Window) SetStatus(text string) {
	fyne.Do(func() { w.status.SetText(text) })
}

// Status returns the text of the status line.
func (w *Window) Status() string { return w.status.Text }

func (w *Window) showExport() {
	d := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, w)
			return
		}
		if wc == nil {
			return
		}
		defer wc.Close()
		if err := w.writeSnapshot(wc, wc.URI().Name()); err != nil {
			dialog.ShowError(err, w)
			return
		}
		w.SetStatus("Exported " + wc.URI().Name())
	}, w)
	d.SetFileName("scratch.png")
	d.SetFilter(storage.NewExtensionFileFilter([]string{".png", ".pdf"}))
	d.Show()
}

// writeSnapshot encodes what the view shows, as PDF for .pdf names and
// PNG otherwise.
func (w *Window) writeSnapshot(out io.Writer, name string) error {
	img := w.view.Surface().Snapshot()
	var err error
	if export.IsPDF(name) {
		err = export.PDF(out, img)
	} else {
		err = export.PNG(out, img)
	}
	if err != nil {
		return fmt.Errorf("export %s: %w", name, err)
	}
	logx.Logger().Info("snapshot exported", "name", name, "size", img.Bounds().Size())
	return nil
}
