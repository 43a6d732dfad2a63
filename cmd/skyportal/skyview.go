package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"skyportal/pkg/adsb"
	"skyportal/pkg/geo"
)

var (
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("24")).Padding(0, 1)
	staleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("94")).Padding(0, 1)
	frameStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	centerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	detailStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	selectStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("16")).Background(lipgloss.Color("214")).Bold(true)
	defaultStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("51"))
)

// categoryStyles colors icons by the unified aircraft category, so the
// visual style is independent of which upstream produced the data.
var categoryStyles = map[adsb.Category]lipgloss.Style{
	adsb.CategoryLight:           lipgloss.NewStyle().Foreground(lipgloss.Color("120")),
	adsb.CategorySmall:           lipgloss.NewStyle().Foreground(lipgloss.Color("114")),
	adsb.CategoryLarge:           lipgloss.NewStyle().Foreground(lipgloss.Color("75")),
	adsb.CategoryHighVortexLarge: lipgloss.NewStyle().Foreground(lipgloss.Color("75")),
	adsb.CategoryHeavy:           lipgloss.NewStyle().Foreground(lipgloss.Color("213")),
	adsb.CategoryHighPerformance: lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
	adsb.CategoryRotorcraft:      lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
	adsb.CategoryGlider:          lipgloss.NewStyle().Foreground(lipgloss.Color("159")),
	adsb.CategoryUAV:             lipgloss.NewStyle().Foreground(lipgloss.Color("171")),
}

// rotationGlyphs approximate icon rotation in character cells, one arrow
// per 45 degree arc.
var rotationGlyphs = []rune{'↑', '↗', '→', '↘', '↓', '↙', '←', '↖'}

// plotIcon picks the glyph and style for one plotted aircraft. tileIndex is
// the rotation tile, floor(track / rotation resolution); the glyph is the
// arrow covering the tile's center angle. Rotorcraft keep a fixed glyph,
// matching their dedicated icon sheet on the hardware display.
func plotIcon(category adsb.Category, tileIndex, rotationResolutionDeg int) (rune, lipgloss.Style) {
	style, ok := categoryStyles[category]
	if !ok {
		style = defaultStyle
	}

	if category == adsb.CategoryRotorcraft {
		return 'Y', style
	}

	centerDeg := float64(tileIndex*rotationResolutionDeg) + float64(rotationResolutionDeg)/2
	idx := int(centerDeg/45) % len(rotationGlyphs)
	if idx < 0 {
		idx = 0
	}
	return rotationGlyphs[idx], style
}

// redraw rebuilds the map viewport and the hit index from the current
// aircraft set. The hit index is fully cleared first; it must only ever
// describe the frame that is actually on screen.
func (m model) redraw() model {
	m.hits.Reset()

	type cell struct {
		glyph rune
		style lipgloss.Style
	}
	grid := make([][]*cell, mapHeight)
	for i := range grid {
		grid[i] = make([]*cell, mapWidth)
	}

	// Fixed center marker for orientation.
	cx, cy := geo.Project(m.cfg.Map.CenterLat, m.cfg.Map.CenterLon, m.box, mapWidth, mapHeight)
	if cx >= 0 && cx < mapWidth && cy >= 0 && cy < mapHeight {
		grid[cy][cx] = &cell{glyph: '+', style: centerStyle}
	}

	offscreen := 0
	for _, ac := range m.ctrl.Aircraft() {
		if !ac.Plottable() {
			continue
		}

		x, y := geo.Project(*ac.Lat, *ac.Lon, m.box, mapWidth, mapHeight)
		if !geo.InFrame(x, y, mapWidth, mapHeight, cullMargin) {
			offscreen++
			continue
		}
		x = clamp(x, 0, mapWidth-1)
		y = clamp(y, 0, mapHeight-1)

		tileIndex := int(*ac.Track) / m.cfg.Display.RotationResolutionDeg
		glyph, style := plotIcon(ac.Category, tileIndex, m.cfg.Display.RotationResolutionDeg)
		if m.selected != nil && m.selected.ICAO == ac.ICAO {
			style = selectStyle
		}

		grid[y][x] = &cell{glyph: glyph, style: style}
		m.hits.Register(x, y, ac)
	}
	m.offscreen = offscreen

	lines := make([]string, mapHeight)
	for y, row := range grid {
		var b strings.Builder
		for _, c := range row {
			if c == nil {
				b.WriteByte(' ')
				continue
			}
			b.WriteString(c.style.Render(string(c.glyph)))
		}
		lines[y] = b.String()
	}

	m.mapLines = lines
	m.hasDrawn = true
	return m
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(m.statusBar())
	b.WriteByte('\n')

	offX, _ := m.viewportOrigin()
	pad := strings.Repeat(" ", offX)

	if !m.hasDrawn {
		b.WriteString(pad + hintStyle.Render("Initializing... waiting for first aircraft data"))
		b.WriteByte('\n')
		return b.String()
	}

	for _, line := range m.mapLines {
		b.WriteString(pad)
		b.WriteString(line)
		b.WriteByte('\n')
	}

	b.WriteString(frameStyle.Render(strings.Repeat("─", max(m.width, mapWidth))))
	b.WriteByte('\n')
	b.WriteString(m.detailPanel())

	return b.String()
}

// statusBar summarizes the last refresh: source, aircraft count, skip
// accounting, and staleness. A failed poll keeps the previous data on
// screen but flags the timestamp.
func (m model) statusBar() string {
	style := statusStyle
	state := ""
	if m.ctrl.LastError() != nil {
		style = staleStyle
		state = " [stale]"
	}

	updated := "never"
	if !m.ctrl.APITime().IsZero() {
		updated = m.ctrl.APITime().Local().Format("15:04:05")
	}

	fetching := ""
	if m.fetching {
		fetching = " ⟳"
	}

	return style.Render(fmt.Sprintf(
		"skyportal · %d aircraft · updated %s%s%s · skipped %d no-data %d ground %d low %d off-screen · q quit · r refresh",
		m.hits.Len(), updated, state, fetching,
		m.stats.MissingData, m.stats.OnGround, m.stats.BelowFloor, m.offscreen,
	))
}

// detailPanel renders the touch-selected aircraft, or a usage hint.
func (m model) detailPanel() string {
	if m.selected == nil {
		return hintStyle.Render("Click an aircraft for details")
	}

	ac := m.selected
	parts := []string{ac.Label(), ac.Category.String()}

	if ac.Plottable() {
		parts = append(parts, fmt.Sprintf("%.3f, %.3f", *ac.Lat, *ac.Lon))
		parts = append(parts, fmt.Sprintf("track %03d°", int(*ac.Track)))
	}
	if ac.GeoAltitudeM != nil {
		parts = append(parts, fmt.Sprintf("%dm MSL", int(*ac.GeoAltitudeM)))
	} else if ac.BaroAltitudeM != nil {
		parts = append(parts, fmt.Sprintf("%dm baro", int(*ac.BaroAltitudeM)))
	}
	if ac.GroundSpeedMPS != nil {
		parts = append(parts, fmt.Sprintf("%.0f m/s", *ac.GroundSpeedMPS))
	}
	if ac.VerticalRateMPS != nil && *ac.VerticalRateMPS != 0 {
		arrow := "↑"
		if *ac.VerticalRateMPS < 0 {
			arrow = "↓"
		}
		parts = append(parts, fmt.Sprintf("%s %.1f m/s", arrow, *ac.VerticalRateMPS))
	}
	if ac.OnGround {
		parts = append(parts, "on ground")
	}

	return detailStyle.Render(strings.Join(parts, "  ·  "))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
