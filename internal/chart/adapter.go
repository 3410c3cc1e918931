// Package chart projects the telemetry buffer onto a plot-ready point
// series and renders it as a block-glyph trace for the live pane, with an
// optional fitted-curve expression overlaid in the caption.
package chart

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"yarddeck-tui/internal/gateway"
	"yarddeck-tui/internal/telemetry"
)

// Axis selects which sensor series feeds the y values.
type Axis int

const (
	AxisTemperature Axis = iota
	AxisHumidity
)

func (a Axis) String() string {
	if a == AxisHumidity {
		return "humidity"
	}
	return "temperature"
}

// Toggle flips between the two series.
func (a Axis) Toggle() Axis {
	if a == AxisTemperature {
		return AxisHumidity
	}
	return AxisTemperature
}

// Point is one plot-ready sample.
type Point struct {
	X  float64
	Y  float64
	ID int64
}

// MinFitPoints is the smallest series the curve fitter accepts.
const MinFitPoints = 2

var (
	traceBandBG = lipgloss.Color("#13232C")
	traceLow    = lipgloss.Color("#2B4C5B")

	temperaturePalette = []lipgloss.Color{
		lipgloss.Color("#2B7EA1"),
		lipgloss.Color("#20B6D9"),
		lipgloss.Color("#44E7AE"),
		lipgloss.Color("#D8F26F"),
		lipgloss.Color("#F6AE2D"),
		lipgloss.Color("#FF6B6B"),
	}
	humidityPalette = []lipgloss.Color{
		lipgloss.Color("#1E7E9A"),
		lipgloss.Color("#2DBBD3"),
		lipgloss.Color("#6AE18A"),
		lipgloss.Color("#C8EE63"),
		lipgloss.Color("#F0C74B"),
		lipgloss.Color("#FF8A65"),
	}
)

const traceGlyphsRaw = "▁▂▃▄▅▆▇█"

// Adapter holds the presentation state of the telemetry pane: which series
// is plotted and the fitted expression, when one has been requested.
type Adapter struct {
	axis       Axis
	expression string
}

func NewAdapter() *Adapter {
	return &Adapter{axis: AxisTemperature}
}

func (a *Adapter) Axis() Axis {
	return a.axis
}

func (a *Adapter) ToggleAxis() {
	a.axis = a.axis.Toggle()
}

// SetExpression stores a fitted-curve expression for overlay. An empty
// string clears the overlay.
func (a *Adapter) SetExpression(expression string) {
	a.expression = strings.TrimSpace(expression)
}

func (a *Adapter) Expression() string {
	return a.expression
}

// Points maps the sample buffer onto the active axis.
func (a *Adapter) Points(samples []telemetry.Sample) []Point {
	points := make([]Point, 0, len(samples))
	for _, sample := range samples {
		y := sample.Temperature
		if a.axis == AxisHumidity {
			y = sample.Humidity
		}
		points = append(points, Point{X: sample.Time, Y: y, ID: sample.PointID})
	}
	return points
}

// CanFit reports whether the buffer is large enough to request a fit.
func (a *Adapter) CanFit(samples []telemetry.Sample) bool {
	return len(samples) >= MinFitPoints
}

// FitPayload converts the active series into the curve fitter's wire shape.
func (a *Adapter) FitPayload(samples []telemetry.Sample) []gateway.FitPoint {
	points := a.Points(samples)
	payload := make([]gateway.FitPoint, 0, len(points))
	for _, p := range points {
		payload = append(payload, gateway.FitPoint{p.X, p.Y})
	}
	return payload
}

// Render draws the latest window of the active series as a colored
// block-glyph trace, followed by a caption line with the current value and
// any fitted expression.
func (a *Adapter) Render(samples []telemetry.Sample, width int) string {
	width = maxInt(8, width)
	points := a.Points(samples)

	trace := renderTrace(points, width, a.palette())
	caption := a.caption(points, width)
	return trace + "\n" + caption
}

func (a *Adapter) palette() []lipgloss.Color {
	if a.axis == AxisHumidity {
		return humidityPalette
	}
	return temperaturePalette
}

func (a *Adapter) caption(points []Point, width int) string {
	if len(points) == 0 {
		return truncateText(a.axis.String()+": waiting for samples", width)
	}
	latest := points[len(points)-1]
	unit := "°C"
	if a.axis == AxisHumidity {
		unit = "%"
	}
	caption := fmt.Sprintf("%s %.1f%s | %d pts", a.axis.String(), latest.Y, unit, len(points))
	if a.expression != "" {
		caption += " | fit: " + a.expression
	}
	return truncateText(caption, width)
}

// renderTrace normalizes the window against its own min/max so small
// fluctuations stay visible, then maps each value to a glyph and a
// palette color by level.
func renderTrace(points []Point, width int, palette []lipgloss.Color) string {
	glyphs := []rune(traceGlyphsRaw)
	baseStyle := lipgloss.NewStyle().Foreground(traceLow).Background(traceBandBG)

	cells := make([]string, width)
	for idx := range cells {
		cells[idx] = baseStyle.Render(string(glyphs[0]))
	}
	if len(points) == 0 {
		return strings.Join(cells, "")
	}

	window := points
	if len(window) > width {
		window = window[len(window)-width:]
	}

	low := math.Inf(1)
	high := math.Inf(-1)
	for _, p := range window {
		low = math.Min(low, p.Y)
		high = math.Max(high, p.Y)
	}
	span := high - low
	if span <= 0 {
		span = 1
	}

	styles := make([]lipgloss.Style, len(palette))
	for idx, color := range palette {
		styles[idx] = lipgloss.NewStyle().Foreground(color).Background(traceBandBG)
	}

	start := width - len(window)
	for idx, p := range window {
		level := (p.Y - low) / span
		glyphIdx := clampInt(int(math.Round(level*float64(len(glyphs)-1))), 0, len(glyphs)-1)
		colorIdx := clampInt(int(math.Round(level*float64(len(styles)-1))), 0, len(styles)-1)
		cells[start+idx] = styles[colorIdx].Render(string(glyphs[glyphIdx]))
	}
	return strings.Join(cells, "")
}

func truncateText(raw string, maxLen int) string {
	if maxLen < 4 {
		maxLen = 4
	}
	if len(raw) <= maxLen {
		return raw
	}
	return raw[:maxLen-3] + "..."
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func clampInt(v, low, high int) int {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}
