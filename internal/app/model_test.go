package app

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"yarddeck-tui/internal/chart"
	"yarddeck-tui/internal/gateway"
	"yarddeck-tui/internal/storage"
	"yarddeck-tui/internal/telemetry"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	store, err := storage.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	client := gateway.NewClient("http://127.0.0.1:1")
	stream := telemetry.NewStream("ws://unused", 100, nil)
	return NewModel(client, stream, store, nil)
}

func updateModel(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	next, ok := updated.(Model)
	if !ok {
		t.Fatalf("Update returned %T", updated)
	}
	return next, cmd
}

func TestSignalsLoadedPopulatesForm(t *testing.T) {
	t.Parallel()

	m := newTestModel(t)
	response := &gateway.SignalsResponse{
		Signals:       testSignals(),
		CuringMethods: map[string]string{"0": "water", "1": "steam", "2": "chemical"},
	}
	m, _ = updateModel(t, m, signalsLoadedMsg{response: response})

	if m.form.FieldCount() != 3 {
		t.Fatalf("expected 3 form fields, got %d", m.form.FieldCount())
	}
	if !strings.Contains(m.statusText, "Loaded 3 signals") {
		t.Fatalf("unexpected status: %q", m.statusText)
	}
	if m.curingMethods["2"] != "chemical" {
		t.Fatalf("curing methods not stored: %+v", m.curingMethods)
	}
}

func TestStaleScenarioResultIsIgnored(t *testing.T) {
	t.Parallel()

	m := newTestModel(t)
	m.requestSeq = 2
	m.requestInFlight = true

	m, cmd := updateModel(t, m, scenarioResultMsg{
		requestID: 1,
		mode:      ModeEvaluate,
		rows:      []string{"stale answer"},
	})
	if cmd != nil {
		t.Fatalf("stale result must not schedule work")
	}
	if !m.requestInFlight {
		t.Fatalf("stale result must not settle the in-flight request")
	}
	if strings.Contains(m.results.View(), "stale answer") {
		t.Fatalf("stale result must not reach the results pane")
	}
}

func TestFreshScenarioResultRendersSavesAndReloadsHistory(t *testing.T) {
	t.Parallel()

	m := newTestModel(t)
	m.requestSeq = 3
	m.requestInFlight = true

	m, cmd := updateModel(t, m, scenarioResultMsg{
		requestID: 3,
		mode:      ModeEvaluate,
		rows:      []string{"fresh answer"},
		scenario:  gateway.ScenarioValues{"temperature": 25},
		raw: map[string]any{"results": []any{
			map[string]any{"curing_method": "water", "predicted_days": 18.0, "predicted_cost": 240000.0},
		}},
	})
	if m.requestInFlight {
		t.Fatalf("fresh result should settle the request")
	}
	if !strings.Contains(m.results.View(), "fresh answer") {
		t.Fatalf("results pane missing fresh answer: %q", m.results.View())
	}
	if cmd == nil {
		t.Fatalf("fresh result should persist a bundle")
	}

	savedMsg, ok := cmd().(bundleSavedMsg)
	if !ok {
		t.Fatalf("expected bundleSavedMsg from save command")
	}
	if savedMsg.err != nil {
		t.Fatalf("save failed: %v", savedMsg.err)
	}
	if savedMsg.summary.BestMethod != "water" {
		t.Fatalf("unexpected saved headline: %+v", savedMsg.summary)
	}

	m, cmd = updateModel(t, m, savedMsg)
	if cmd == nil {
		t.Fatalf("bundle save should trigger a history reload")
	}
	historyMsg, ok := cmd().(historyLoadedMsg)
	if !ok {
		t.Fatalf("expected historyLoadedMsg from reload command")
	}
	if len(historyMsg.items) != 1 {
		t.Fatalf("expected one saved bundle, got %d", len(historyMsg.items))
	}

	m, _ = updateModel(t, m, historyMsg)
	if !strings.Contains(m.history.View(), "evaluate") {
		t.Fatalf("history pane missing saved run: %q", m.history.View())
	}
}

func TestModeAndAxisKeys(t *testing.T) {
	t.Parallel()

	m := newTestModel(t)
	m.form.SetSignals(testSignals())

	m, _ = updateModel(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})
	if m.form.Mode() != ModePredictTime {
		t.Fatalf("ctrl+t should cycle the mode, got %v", m.form.Mode())
	}

	m, _ = updateModel(t, m, tea.KeyMsg{Type: tea.KeyCtrlG})
	if m.chart.Axis() != chart.AxisHumidity {
		t.Fatalf("ctrl+g should toggle the telemetry axis, got %v", m.chart.Axis())
	}
}

func TestSubmitScenarioRejectsInvalidForm(t *testing.T) {
	t.Parallel()

	m := newTestModel(t)
	m.form.SetSignals(testSignals())
	m.form.inputs[0].SetValue("lots")

	m, cmd := updateModel(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	if cmd != nil {
		t.Fatalf("invalid form must not launch a request")
	}
	if m.requestInFlight {
		t.Fatalf("invalid form must not mark a request in flight")
	}
	if !strings.Contains(m.errorText, "num_elements") {
		t.Fatalf("error should name the bad signal, got %q", m.errorText)
	}
}

func TestSubmitScenarioBumpsRequestSeq(t *testing.T) {
	t.Parallel()

	m := newTestModel(t)
	m.form.SetSignals(testSignals())

	m, cmd := updateModel(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	if cmd == nil {
		t.Fatalf("valid form should launch a request")
	}
	if m.requestSeq != 1 || !m.requestInFlight {
		t.Fatalf("expected request 1 in flight, got seq=%d inFlight=%v", m.requestSeq, m.requestInFlight)
	}

	m, _ = updateModel(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	if m.requestSeq != 2 {
		t.Fatalf("each submit must take a fresh request id, got %d", m.requestSeq)
	}
}

func TestFitRequiresEnoughTelemetry(t *testing.T) {
	t.Parallel()

	m := newTestModel(t)
	m, cmd := updateModel(t, m, tea.KeyMsg{Type: tea.KeyCtrlF})
	if cmd != nil {
		t.Fatalf("fit with an empty buffer must not launch a request")
	}
	if !strings.Contains(m.errorText, "telemetry points") {
		t.Fatalf("expected fit precondition error, got %q", m.errorText)
	}
}

func TestStreamClosedUpdatesStatus(t *testing.T) {
	t.Parallel()

	m := newTestModel(t)
	m, cmd := updateModel(t, m, streamStateMsg{state: telemetry.StateOpen, ok: true})
	if m.streamState != telemetry.StateOpen {
		t.Fatalf("expected open state, got %v", m.streamState)
	}
	if cmd == nil {
		t.Fatalf("state message should re-arm the state listener")
	}

	m, _ = updateModel(t, m, streamStateMsg{state: telemetry.StateClosed, ok: true})
	if m.streamState != telemetry.StateClosed {
		t.Fatalf("expected closed state, got %v", m.streamState)
	}
	if !strings.Contains(m.statusText, "closed") {
		t.Fatalf("status should report the closed stream, got %q", m.statusText)
	}
}

func TestSampleBatchReArmsListener(t *testing.T) {
	t.Parallel()

	m := newTestModel(t)
	m, cmd := updateModel(t, m, sampleBatchMsg{samples: []telemetry.Sample{{PointID: 0}}, ok: true})
	if cmd == nil {
		t.Fatalf("sample batch should re-arm the sample listener")
	}

	_, cmd = updateModel(t, m, sampleBatchMsg{ok: false})
	if cmd != nil {
		t.Fatalf("closed sample channel must not re-arm the listener")
	}
}

func TestHistoryEnterLoadsSavedBundle(t *testing.T) {
	t.Parallel()

	m := newTestModel(t)
	summary, err := m.store.SaveScenario("evaluate", gateway.ScenarioValues{"temperature": 30}, map[string]any{
		"results": []any{
			map[string]any{"curing_method": "steam", "predicted_days": 9.0, "predicted_cost": 310000.0},
		},
	})
	if err != nil {
		t.Fatalf("SaveScenario: %v", err)
	}
	m.historyItems = []storage.ScenarioSummary{summary}
	m.historyCursor = 0
	m.focusPane = paneHistory

	m, cmd := updateModel(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatalf("enter on a history row should load the bundle")
	}
	loadedMsg, ok := cmd().(bundleLoadedMsg)
	if !ok {
		t.Fatalf("expected bundleLoadedMsg from load command")
	}
	if loadedMsg.err != nil {
		t.Fatalf("bundle load failed: %v", loadedMsg.err)
	}

	m, _ = updateModel(t, m, loadedMsg)
	view := m.results.View()
	if !strings.Contains(view, "Saved scenario: evaluate") {
		t.Fatalf("results pane missing reloaded bundle: %q", view)
	}
	if !strings.Contains(view, "temperature") {
		t.Fatalf("reloaded bundle should list signal values: %q", view)
	}
}

func TestPaneCyclingMovesFocus(t *testing.T) {
	t.Parallel()

	m := newTestModel(t)
	if m.focusPane != paneScenario {
		t.Fatalf("scenario pane should start focused")
	}
	m, _ = updateModel(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.focusPane != paneTelemetry {
		t.Fatalf("tab should advance focus, got %v", m.focusPane)
	}
	m, _ = updateModel(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.focusPane != paneScenario {
		t.Fatalf("shift+tab should move focus back, got %v", m.focusPane)
	}
}
