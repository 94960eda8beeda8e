package main

import (
	"cmp"
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"fyne.io/fyne/v2"

	"scratchview/internal/assets"
	"scratchview/internal/config"
	"scratchview/internal/logx"
	"scratchview/internal/share"
	"scratchview/internal/ui"
)

func main() {
	configPath := flag.String("config", "scratchview.toml", "settings file")
	join := flag.String("join", "", "share link of a host to join")
	browse := flag.Bool("browse", false, "list hosts sharing on the LAN and exit")
	flag.Parse()

	// A share link passed on its own, e.g. by the OS URL handler, joins too.
	if *join == "" && flag.NArg() > 0 && strings.HasPrefix(flag.Arg(0), share.LinkScheme) {
		*join = flag.Arg(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logx.SetLogger(logx.New(os.Stderr, cfg.LogLevel))

	if *browse {
		runBrowse(cfg)
		return
	}

	a := ui.NewApp()
	view := newView(cfg)
	switch {
	case *join != "":
		runClient(a, view, *join)
	case cfg.Share.Enabled:
		runHost(a, view, cfg)
	default:
		ui.NewWindow(a, view, ui.Options{}).ShowAndRun()
	}
	shutdown(*configPath, cfg, view)
}

// shutdown runs after the window closes. Stroke settings changed from the
// toolbar are written back to the config file.
func shutdown(path string, cfg config.Config, view *ui.ScratchView) {
	requests, repaints := view.Scheduler().Stats()
	logx.Logger().Debug("redraw stats", "requests", requests, "repaints", repaints)

	updated := cfg.WithPaint(view.Surface().StrokePaint())
	if updated == cfg {
		return
	}
	if err := updated.Save(path); err != nil {
		logx.Logger().Warn("settings not saved", "path", path, "err", err)
		return
	}
	logx.Logger().Info("settings saved", "path", path)
}

func newView(cfg config.Config) *ui.ScratchView {
	resolver := assets.Chain{assets.Builtin{}, assets.Dir(cfg.AssetDir)}
	view := ui.NewScratchView(resolver)
	view.SetPaint(cfg.Paint())
	view.Surface().SetMaxRetainedStrokes(cfg.MaxRetainedStrokes)
	// Failures are logged by the surface; the view stays usable without images.
	_ = view.SetFrontImageSource(cfg.FrontImage)
	_ = view.SetBackImageSource(cfg.BackImage)
	return view
}

func runHost(a fyne.App, view *ui.ScratchView, cfg config.Config) {
	log := logx.Logger()
	log.Info("starting as host")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var session *share.Session
	hub := share.NewHub(func(m share.Message) {
		fyne.Do(func() { session.Receive(m) })
	})
	session = share.NewSession(view, hub.Broadcast)
	view.OnTouch = session.Local

	l, err := share.Listen(cfg.Share.Port)
	if err != nil {
		log.Error("sharing disabled", "err", err)
		ui.NewWindow(a, view, ui.Options{}).ShowAndRun()
		return
	}
	port := l.Addr().(*net.TCPAddr).Port
	go func() {
		if err := share.Serve(ctx, l, hub); err != nil {
			log.Error("share host stopped", "err", err)
		}
	}()

	if cfg.Share.Advertise {
		srv, err := share.Advertise(cmp.Or(cfg.Share.Service, share.DefaultService), port)
		if err != nil {
			log.Warn("not advertising on the LAN", "err", err)
		} else {
			defer srv.Shutdown()
		}
	}

	link := share.Link(share.OutgoingIP(), port)
	log.Info("share link", "link", link)
	win := ui.NewWindow(a, view, ui.Options{
		Title:     "Scratch View (host)",
		ShareLink: link,
		OnReset:   session.LocalReset,
	})
	win.ShowAndRun()
}

func runClient(a fyne.App, view *ui.ScratchView, link string) {
	log := logx.Logger()
	log.Info("starting as client")
	addr, err := share.ParseLink(link)
	if err != nil {
		log.Error("cannot join", "err", err)
		os.Exit(1)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var client atomic.Pointer[share.Client]
	session := share.NewSession(view, func(m share.Message) {
		if c := client.Load(); c != nil {
			c.Send(m)
		}
	})
	view.OnTouch = session.Local
	win := ui.NewWindow(a, view, ui.Options{
		Title:   "Scratch View (joined)",
		OnReset: session.LocalReset,
	})

	go func() {
		dialCtx, stop := context.WithTimeout(ctx, 10*time.Second)
		c, err := share.Dial(dialCtx, addr)
		stop()
		if err != nil {
			win.SetStatus(fmt.Sprintf("Connection failed: %v", err))
			return
		}
		client.Store(c)
		win.SetStatus("Connected to " + addr)
		log.Info("connected to host", "addr", addr)

		err = c.Run(func(m share.Message) {
			fyne.Do(func() { session.Receive(m) })
		})
		client.Store(nil)
		if err != nil {
			win.SetStatus(fmt.Sprintf("Disconnected from host: %v", err))
			return
		}
		win.SetStatus("Disconnected from host")
	}()

	win.ShowAndRun()
	if c := client.Load(); c != nil {
		c.Close()
	}
}

func runBrowse(cfg config.Config) {
	found := 0
	err := share.Browse(cmp.Or(cfg.Share.Service, share.DefaultService), 3*time.Second, func(addr string) {
		found++
		fmt.Println(share.LinkScheme + addr)
	})
	if err != nil {
		logx.Logger().Error("browse failed", "err", err)
		os.Exit(1)
	}
	if found == 0 {
		fmt.Fprintln(os.Stderr, "no hosts found")
	}
}
