package main

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"skyportal/internal/tracker"
	"skyportal/internal/ui"
	"skyportal/pkg/adsb"
	"skyportal/pkg/config"
	"skyportal/pkg/geo"
)

// Map viewport dimensions. The geographic frame is fixed for the session,
// like a hardware display panel; a larger terminal centers the viewport
// rather than stretching the map.
const (
	mapWidth  = 96
	mapHeight = 36

	// Terminal cells are roughly twice as tall as wide; the bounding box
	// is built against the effective pixel proportions.
	cellAspect = 0.5

	// One icon cell of slack beyond each viewport edge before a projected
	// point is culled.
	cullMargin = 1
)

type tickMsg time.Time

// refreshMsg carries one poll result back to the owner loop. The fetch runs
// in a command goroutine so touch input is never starved by a slow network
// call; all state mutation happens in Update.
type refreshMsg struct {
	batch adsb.Batch
	err   error
}

type model struct {
	cfg  *config.Config
	ctrl *tracker.Controller
	box  geo.BoundingBox

	width  int
	height int

	fetching bool
	stats    tracker.Stats

	hits  *ui.HitIndex
	touch *ui.TouchFilter

	selected    *adsb.AircraftState
	mapLines    []string
	offscreen   int
	hasDrawn    bool
	lastUpdated time.Time
}

func newModel(cfg *config.Config) (model, error) {
	aspect := float64(mapWidth) * cellAspect / float64(mapHeight)
	box, err := geo.BuildBoundingBox(cfg.Map.CenterLat, cfg.Map.CenterLon, cfg.Map.GridWidthMiles, aspect)
	if err != nil {
		return model{}, fmt.Errorf("invalid map configuration: %w", err)
	}

	ctrl, err := tracker.NewFromConfig(cfg, box)
	if err != nil {
		return model{}, err
	}

	return model{
		cfg:   cfg,
		ctrl:  ctrl,
		box:   box,
		hits:  &ui.HitIndex{},
		touch: &ui.TouchFilter{},
	}, nil
}

func (m model) Init() tea.Cmd {
	// First refresh fires immediately; the tick cadence takes over after.
	return tea.Batch(m.refreshCmd(), m.tick())
}

func (m model) tick() tea.Cmd {
	return tea.Tick(m.ctrl.Interval(), func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// refreshCmd polls the active source off the event loop. Only one request
// is ever in flight; the fetching flag guards against overlap.
func (m model) refreshCmd() tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		// The request deadline lives in the source's HTTP client; on expiry
		// the in-flight call is abandoned and the failure branch runs.
		batch, err := ctrl.Poll(context.Background())
		return refreshMsg{batch: batch, err: err}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			if !m.fetching {
				m.fetching = true
				return m, m.refreshCmd()
			}
		case "esc":
			m.selected = nil
			m = m.redraw()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		if !m.fetching && m.ctrl.Due(time.Time(msg)) {
			m.fetching = true
			return m, tea.Batch(m.refreshCmd(), m.tick())
		}
		return m, m.tick()

	case refreshMsg:
		m.fetching = false
		m.stats = m.ctrl.Apply(msg.batch, msg.err)
		if m.ctrl.State() == tracker.StateUpdated {
			m.lastUpdated = time.Now()
			m.selected = m.reselect()
		}
		// A failed or empty poll keeps the previous frame on screen;
		// redrawing nothing would just flicker.
		if m.ctrl.CanDraw() {
			m = m.redraw()
		}

	case tea.MouseMsg:
		m = m.handleTouch(msg)
	}

	return m, nil
}

// handleTouch feeds raw mouse samples through the debounce filter and
// resolves accepted presses against the hit index.
func (m model) handleTouch(msg tea.MouseMsg) model {
	var down bool
	switch msg.Action {
	case tea.MouseActionPress, tea.MouseActionMotion:
		down = msg.Button == tea.MouseButtonLeft
	case tea.MouseActionRelease:
		down = false
	default:
		return m
	}

	x, y, press := m.touch.Sample(msg.X, msg.Y, down)
	if !press {
		return m
	}

	// Translate the terminal event into viewport coordinates.
	offX, offY := m.viewportOrigin()
	mapX, mapY := x-offX, y-offY

	if ac, ok := m.hits.Closest(mapX, mapY, m.cfg.Display.TouchThresholdPx); ok {
		m.selected = &ac
	} else {
		m.selected = nil
	}
	return m.redraw()
}

// reselect re-resolves the selected aircraft against a fresh set; selection
// follows the aircraft identity, not its old position.
func (m model) reselect() *adsb.AircraftState {
	if m.selected == nil {
		return nil
	}
	for _, ac := range m.ctrl.Aircraft() {
		if ac.ICAO == m.selected.ICAO {
			return &ac
		}
	}
	return nil
}

// viewportOrigin is the top-left terminal cell of the map viewport: one row
// down for the status bar, horizontally centered when there is room.
func (m model) viewportOrigin() (x, y int) {
	x = 0
	if m.width > mapWidth {
		x = (m.width - mapWidth) / 2
	}
	return x, 1
}
