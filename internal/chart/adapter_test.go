package chart

import (
	"strings"
	"testing"

	"yarddeck-tui/internal/telemetry"
)

func sampleSeries() []telemetry.Sample {
	return []telemetry.Sample{
		{Time: 0, Temperature: 22.0, Humidity: 55.0, PointID: 0},
		{Time: 1, Temperature: 26.5, Humidity: 61.0, PointID: 1},
		{Time: 2, Temperature: 31.0, Humidity: 48.0, PointID: 2},
	}
}

func TestPointsFollowActiveAxis(t *testing.T) {
	t.Parallel()

	a := NewAdapter()
	points := a.Points(sampleSeries())
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}
	if points[1].Y != 26.5 {
		t.Fatalf("temperature axis should plot temperature, got %v", points[1].Y)
	}
	if points[2].X != 2 || points[2].ID != 2 {
		t.Fatalf("unexpected point projection: %+v", points[2])
	}

	a.ToggleAxis()
	points = a.Points(sampleSeries())
	if points[1].Y != 61.0 {
		t.Fatalf("humidity axis should plot humidity, got %v", points[1].Y)
	}
}

func TestToggleAxisRoundTrips(t *testing.T) {
	t.Parallel()

	a := NewAdapter()
	if a.Axis() != AxisTemperature {
		t.Fatalf("expected temperature as the initial axis")
	}
	a.ToggleAxis()
	if a.Axis() != AxisHumidity {
		t.Fatalf("expected humidity after one toggle")
	}
	a.ToggleAxis()
	if a.Axis() != AxisTemperature {
		t.Fatalf("expected temperature after two toggles")
	}
}

func TestCanFitRequiresTwoPoints(t *testing.T) {
	t.Parallel()

	a := NewAdapter()
	if a.CanFit(nil) {
		t.Fatalf("empty buffer must not be fittable")
	}
	if a.CanFit(sampleSeries()[:1]) {
		t.Fatalf("single sample must not be fittable")
	}
	if !a.CanFit(sampleSeries()[:2]) {
		t.Fatalf("two samples must be fittable")
	}
}

func TestFitPayloadUsesActiveAxis(t *testing.T) {
	t.Parallel()

	a := NewAdapter()
	a.ToggleAxis()
	payload := a.FitPayload(sampleSeries())
	if len(payload) != 3 {
		t.Fatalf("expected 3 fit points, got %d", len(payload))
	}
	if payload[0][0] != 0 || payload[0][1] != 55.0 {
		t.Fatalf("unexpected first fit point: %v", payload[0])
	}
}

func TestSetExpressionTrimsAndClears(t *testing.T) {
	t.Parallel()

	a := NewAdapter()
	a.SetExpression("  3*x + 2  ")
	if a.Expression() != "3*x + 2" {
		t.Fatalf("unexpected expression: %q", a.Expression())
	}
	a.SetExpression("   ")
	if a.Expression() != "" {
		t.Fatalf("blank expression should clear the overlay, got %q", a.Expression())
	}
}

func TestRenderCaptionCarriesValueAndFit(t *testing.T) {
	t.Parallel()

	a := NewAdapter()
	a.SetExpression("x^2")
	out := a.Render(sampleSeries(), 60)
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected trace plus caption, got %d lines", len(lines))
	}
	if !strings.Contains(lines[1], "temperature 31.0") {
		t.Fatalf("caption missing latest value: %q", lines[1])
	}
	if !strings.Contains(lines[1], "fit: x^2") {
		t.Fatalf("caption missing fit overlay: %q", lines[1])
	}
}

func TestRenderEmptyBufferShowsWaitingCaption(t *testing.T) {
	t.Parallel()

	a := NewAdapter()
	out := a.Render(nil, 40)
	if !strings.Contains(out, "waiting for samples") {
		t.Fatalf("expected waiting caption, got %q", out)
	}
}
