// Tabular radar client: the same ingestion pipeline as the map display,
// rendered as a sortable aircraft table for terminals without mouse
// support or sane Unicode fonts.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"skyportal/internal/tracker"
	"skyportal/pkg/adsb"
	"skyportal/pkg/config"
	"skyportal/pkg/geo"
)

// The table client watches the same fixed geographic frame as the map
// display panel.
const panelAspect = 4.0 / 3.0

// App owns the tview widgets and the refresh loop. The controller is only
// ever touched from the refresh goroutine; the UI thread works on the
// snapshot handed over via QueueUpdateDraw.
type App struct {
	cfg  *config.Config
	ctrl *tracker.Controller

	tviewApp *tview.Application
	table    *tview.Table
	detail   *tview.TextView
	status   *tview.TextView

	// snapshot of the last rendered set, owned by the UI thread.
	snapshot []adsb.AircraftState

	refreshChan chan struct{}
	stopChan    chan struct{}
}

func main() {
	configPath := flag.String("config", "configs/config.json", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("%v", err)
	}

	logFile, err := os.OpenFile("skyportal-radar.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer logFile.Close()
	log.SetOutput(logFile)

	box, err := geo.BuildBoundingBox(cfg.Map.CenterLat, cfg.Map.CenterLon, cfg.Map.GridWidthMiles, panelAspect)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid map configuration: %v\n", err)
		os.Exit(1)
	}

	ctrl, err := tracker.NewFromConfig(cfg, box)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	app := &App{
		cfg:         cfg,
		ctrl:        ctrl,
		refreshChan: make(chan struct{}, 1),
		stopChan:    make(chan struct{}),
	}
	app.setupUI()

	go app.refreshLoop()

	if err := app.tviewApp.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running radar client: %v\n", err)
		os.Exit(1)
	}
	close(app.stopChan)
}

func (a *App) setupUI() {
	a.tviewApp = tview.NewApplication()

	a.table = tview.NewTable().
		SetSelectable(true, false).
		SetFixed(1, 0)
	a.table.SetBorder(true).SetTitle(" Aircraft ")
	a.table.SetSelectedFunc(func(row, col int) {
		a.showDetail(row)
	})
	a.table.SetSelectionChangedFunc(func(row, col int) {
		a.showDetail(row)
	})

	a.detail = tview.NewTextView().SetDynamicColors(true)
	a.detail.SetBorder(true).SetTitle(" Detail ")

	a.status = tview.NewTextView().SetDynamicColors(true)
	a.status.SetText("[yellow]Waiting for first refresh...")

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.table, 0, 4, true).
		AddItem(a.detail, 5, 0, false).
		AddItem(a.status, 1, 0, false)

	a.tviewApp.SetRoot(layout, true).EnableMouse(true)
	a.tviewApp.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Rune() {
		case 'q':
			a.tviewApp.Stop()
			return nil
		case 'r':
			// Hand the request to the refresh goroutine; the controller is
			// never touched from the UI thread.
			select {
			case a.refreshChan <- struct{}{}:
			default:
			}
			return nil
		}
		if event.Key() == tcell.KeyCtrlC {
			a.tviewApp.Stop()
			return nil
		}
		return event
	})
}

// refreshLoop drives the poll cadence. The first cycle fires immediately so
// the table fills without waiting out a full interval.
func (a *App) refreshLoop() {
	ticker := time.NewTicker(a.ctrl.Interval())
	defer ticker.Stop()

	a.refresh()
	for {
		select {
		case <-a.stopChan:
			return
		case <-ticker.C:
			a.refresh()
		case <-a.refreshChan:
			a.refresh()
		}
	}
}

func (a *App) refresh() {
	a.ctrl.Refresh(context.Background())

	// Snapshot before handing off to the UI thread.
	aircraft := a.ctrl.Aircraft()
	apiTime := a.ctrl.APITime()
	stale := a.ctrl.LastError() != nil
	canDraw := a.ctrl.CanDraw()

	a.tviewApp.QueueUpdateDraw(func() {
		if !canDraw {
			a.status.SetText("[yellow]No aircraft to draw, keeping previous table")
			return
		}
		a.snapshot = aircraft
		a.populateTable(aircraft)
		if stale {
			a.status.SetText(fmt.Sprintf("[orange]%d aircraft · STALE, last good update %s", len(aircraft), apiTime.Local().Format("15:04:05")))
		} else {
			a.status.SetText(fmt.Sprintf("[green]%d aircraft · updated %s", len(aircraft), apiTime.Local().Format("15:04:05")))
		}
	})
}

func (a *App) populateTable(aircraft []adsb.AircraftState) {
	a.table.Clear()

	headers := []string{"ID", "Callsign", "Category", "Lat", "Lon", "Track", "Alt (m)", "Speed (m/s)"}
	for col, h := range headers {
		a.table.SetCell(0, col, tview.NewTableCell(h).
			SetTextColor(tcell.ColorYellow).
			SetSelectable(false))
	}

	for i, ac := range aircraft {
		row := i + 1
		a.table.SetCell(row, 0, tview.NewTableCell(ac.ICAO))
		a.table.SetCell(row, 1, tview.NewTableCell(strOr(ac.Callsign, "-")))
		a.table.SetCell(row, 2, tview.NewTableCell(ac.Category.String()))
		a.table.SetCell(row, 3, tview.NewTableCell(fmtOpt(ac.Lat, "%.3f")))
		a.table.SetCell(row, 4, tview.NewTableCell(fmtOpt(ac.Lon, "%.3f")))
		a.table.SetCell(row, 5, tview.NewTableCell(fmtOpt(ac.Track, "%03.0f")))
		a.table.SetCell(row, 6, tview.NewTableCell(fmtOpt(ac.GeoAltitudeM, "%.0f")))
		a.table.SetCell(row, 7, tview.NewTableCell(fmtOpt(ac.GroundSpeedMPS, "%.0f")))
	}
}

func (a *App) showDetail(row int) {
	idx := row - 1
	if idx < 0 || idx >= len(a.snapshot) {
		a.detail.SetText("")
		return
	}
	ac := a.snapshot[idx]

	text := fmt.Sprintf("[white]%s[-]  %s\n", ac.Label(), ac.Category)
	if ac.Plottable() {
		text += fmt.Sprintf("Position: %.4f, %.4f  Track: %03.0f°\n", *ac.Lat, *ac.Lon, *ac.Track)
	} else {
		text += "No track information\n"
	}
	if ac.VerticalRateMPS != nil {
		text += fmt.Sprintf("Vertical rate: %+.1f m/s\n", *ac.VerticalRateMPS)
	}
	if ac.OnGround {
		text += "[orange]On ground\n"
	}
	a.detail.SetText(text)
}

func strOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}

func fmtOpt(v *float64, format string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v)
}
