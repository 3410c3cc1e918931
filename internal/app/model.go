// Package app is the terminal console: a scenario form against the yard
// backend, a live sensor telemetry pane, and browsers for saved scenarios
// and yard records.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"yarddeck-tui/internal/chart"
	"yarddeck-tui/internal/gateway"
	"yarddeck-tui/internal/storage"
	"yarddeck-tui/internal/telemetry"
)

var (
	chromeBG      = lipgloss.Color("#05090C")
	panelBorder   = lipgloss.Color("#2D6A80")
	accentPrimary = lipgloss.Color("#50E3C2")
	accentWarm    = lipgloss.Color("#F6AE2D")
	mutedText     = lipgloss.Color("#8CA1AE")
	warningText   = lipgloss.Color("#FF6B6B")
)

var (
	headerStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Bold(true).
			Foreground(accentPrimary)

	statusStyle = lipgloss.NewStyle().
			Foreground(accentWarm).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(warningText).
			Bold(true)

	connOpenStyle = lipgloss.NewStyle().
			Foreground(accentPrimary)

	connClosedStyle = lipgloss.NewStyle().
			Foreground(warningText)

	connPendingStyle = lipgloss.NewStyle().
				Foreground(mutedText)

	panelTitleStyle = lipgloss.NewStyle().
			Foreground(accentPrimary).
			Bold(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(panelBorder).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(mutedText)
)

type signalsLoadedMsg struct {
	response *gateway.SignalsResponse
	err      error
}

type healthMsg struct {
	err error
}

type scenarioResultMsg struct {
	requestID int64
	mode      Mode
	rows      []string
	scenario  gateway.ScenarioValues
	raw       map[string]any
	err       error
}

type sensitivityResultMsg struct {
	requestID int64
	rows      []string
	err       error
}

type fitResultMsg struct {
	requestID  int64
	expression string
	err        error
}

type sampleBatchMsg struct {
	samples []telemetry.Sample
	ok      bool
}

type streamStateMsg struct {
	state telemetry.State
	ok    bool
}

type projectsLoadedMsg struct {
	projects []gateway.Project
	err      error
}

type equipmentLoadedMsg struct {
	equipment []gateway.Equipment
	err       error
}

type historyLoadedMsg struct {
	items []storage.ScenarioSummary
	err   error
}

type bundleSavedMsg struct {
	summary storage.ScenarioSummary
	err     error
}

type bundleLoadedMsg struct {
	bundle *storage.ScenarioBundle
	err    error
}

type focusPane int

const (
	paneScenario focusPane = iota
	paneTelemetry
	paneResults
	paneProjects
	paneHistory
)

const requestTimeout = 10 * time.Second

type Model struct {
	client *gateway.Client
	stream *telemetry.Stream
	store  *storage.Store
	logger *zap.Logger

	ready  bool
	width  int
	height int

	form    *Form
	chart   *chart.Adapter
	results viewport.Model
	records viewport.Model
	history viewport.Model
	spinner spinner.Model

	focusPane focusPane
	showHelp  bool

	statusText string
	errorText  string

	// requestSeq gates stale scenario answers: only the newest in-flight
	// request may touch the results pane.
	requestSeq      int64
	requestInFlight bool

	curingMethods map[string]string

	samples     []telemetry.Sample
	streamState telemetry.State

	projects      []gateway.Project
	equipment     []gateway.Equipment
	projectCursor int

	historyItems  []storage.ScenarioSummary
	historyCursor int

	scenarioW  int
	scenarioH  int
	telemetryW int
	telemetryH int
	resultsW   int
	resultsH   int
	recordsW   int
	recordsH   int
	historyW   int
	historyH   int
}

func NewModel(client *gateway.Client, stream *telemetry.Stream, store *storage.Store, logger *zap.Logger) Model {
	if logger == nil {
		logger = zap.NewNop()
	}

	results := viewport.New(60, 16)
	results.SetContent("No scenario yet. Press ctrl+r to run the active mode.")

	records := viewport.New(50, 14)
	records.SetContent("Loading yard records...")

	history := viewport.New(50, 14)
	history.SetContent("No saved scenarios yet.")

	spin := spinner.New()
	spin.Spinner = spinner.MiniDot
	spin.Style = lipgloss.NewStyle().Foreground(accentWarm)

	form := NewForm()
	form.Focus()

	return Model{
		client:      client,
		stream:      stream,
		store:       store,
		logger:      logger,
		form:        form,
		chart:       chart.NewAdapter(),
		results:     results,
		records:     records,
		history:     history,
		spinner:     spin,
		focusPane:   paneScenario,
		showHelp:    true,
		statusText:  "Loading signals from backend...",
		streamState: telemetry.StateConnecting,
		scenarioW:   64,
		scenarioH:   20,
		telemetryW:  56,
		telemetryH:  8,
		resultsW:    64,
		resultsH:    16,
		recordsW:    56,
		recordsH:    12,
		historyW:    56,
		historyH:    10,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		loadSignalsCmd(m.client),
		checkHealthCmd(m.client),
		loadProjectsCmd(m.client),
		loadEquipmentCmd(m.client),
		loadHistoryCmd(m.store),
		waitForSamplesCmd(m.stream.Samples()),
		waitForStreamStateCmd(m.stream.States()),
	)
}

func loadSignalsCmd(client *gateway.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		response, err := client.Signals(ctx)
		return signalsLoadedMsg{response: response, err: err}
	}
}

func checkHealthCmd(client *gateway.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return healthMsg{err: client.Health(ctx)}
	}
}

func runScenarioCmd(client *gateway.Client, requestID int64, mode Mode, values gateway.ScenarioValues, aux float64, methods map[string]string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		msg := scenarioResultMsg{requestID: requestID, mode: mode, scenario: values}
		switch mode {
		case ModePredictTime:
			response, err := client.PredictTime(ctx, values, aux)
			if err != nil {
				msg.err = err
				return msg
			}
			msg.rows = renderPredictTimeRows(response, methods)
			msg.raw = toRawMap(response)
		case ModePredictCost:
			response, err := client.PredictCost(ctx, values, aux)
			if err != nil {
				msg.err = err
				return msg
			}
			msg.rows = renderPredictCostRows(response, methods)
			msg.raw = toRawMap(response)
		default:
			response, err := client.Evaluate(ctx, values)
			if err != nil {
				msg.err = err
				return msg
			}
			msg.rows = renderEvaluateRows(response, methods)
			msg.raw = toRawMap(response)
		}
		return msg
	}
}

func runSensitivityCmd(client *gateway.Client, requestID int64, signal string, values gateway.ScenarioValues) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		response, err := client.Sensitivity(ctx, signal, values, 0)
		if err != nil {
			return sensitivityResultMsg{requestID: requestID, err: err}
		}
		return sensitivityResultMsg{requestID: requestID, rows: renderSensitivityRows(response)}
	}
}

func fitCurveCmd(client *gateway.Client, requestID int64, points []gateway.FitPoint) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		expression, err := client.FitCurve(ctx, points, "polynomial", 2)
		return fitResultMsg{requestID: requestID, expression: expression, err: err}
	}
}

func loadProjectsCmd(client *gateway.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		projects, err := client.ListProjects(ctx)
		return projectsLoadedMsg{projects: projects, err: err}
	}
}

func loadEquipmentCmd(client *gateway.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		equipment, err := client.ListEquipment(ctx)
		return equipmentLoadedMsg{equipment: equipment, err: err}
	}
}

func loadHistoryCmd(store *storage.Store) tea.Cmd {
	return func() tea.Msg {
		items, err := store.List(200)
		return historyLoadedMsg{items: items, err: err}
	}
}

func saveScenarioCmd(store *storage.Store, mode Mode, scenario gateway.ScenarioValues, raw map[string]any) tea.Cmd {
	return func() tea.Msg {
		summary, err := store.SaveScenario(mode.String(), scenario, raw)
		return bundleSavedMsg{summary: summary, err: err}
	}
}

func loadBundleCmd(store *storage.Store, directory string) tea.Cmd {
	return func() tea.Msg {
		bundle, err := store.LoadBundle(directory)
		return bundleLoadedMsg{bundle: bundle, err: err}
	}
}

// waitForSamplesCmd blocks on the sample channel, then drains whatever
// else is immediately available so a fast sensor bridge does not schedule
// one Update per frame.
func waitForSamplesCmd(ch <-chan telemetry.Sample) tea.Cmd {
	return func() tea.Msg {
		sample, ok := <-ch
		if !ok {
			return sampleBatchMsg{ok: false}
		}
		samples := make([]telemetry.Sample, 0, 64)
		samples = append(samples, sample)
		for len(samples) < 64 {
			select {
			case next, ok := <-ch:
				if !ok {
					return sampleBatchMsg{samples: samples, ok: true}
				}
				samples = append(samples, next)
			default:
				return sampleBatchMsg{samples: samples, ok: true}
			}
		}
		return sampleBatchMsg{samples: samples, ok: true}
	}
}

func waitForStreamStateCmd(ch <-chan telemetry.State) tea.Cmd {
	return func() tea.Msg {
		state, ok := <-ch
		return streamStateMsg{state: state, ok: ok}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resizePanels()
		return m, nil

	case spinner.TickMsg:
		if !m.requestInFlight {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)

	case signalsLoadedMsg:
		if msg.err != nil {
			m.errorText = "Failed to load signals: " + msg.err.Error()
			m.statusText = "Backend unreachable. ctrl+h retries the health check."
			return m, nil
		}
		m.form.SetSignals(msg.response.Signals)
		m.curingMethods = msg.response.CuringMethods
		m.errorText = ""
		m.statusText = fmt.Sprintf("Loaded %d signals. Tune the scenario and press ctrl+r.", len(msg.response.Signals))
		return m, nil

	case healthMsg:
		if msg.err != nil {
			m.errorText = "Backend health check failed: " + msg.err.Error()
			return m, nil
		}
		if strings.HasPrefix(m.statusText, "Loading signals") {
			m.statusText = "Backend healthy. Loading signals..."
		}
		return m, nil

	case scenarioResultMsg:
		if msg.requestID != m.requestSeq {
			// A newer request superseded this answer.
			return m, nil
		}
		m.requestInFlight = false
		if msg.err != nil {
			m.logger.Debug("scenario request failed", zap.Int64("request_id", msg.requestID), zap.Error(msg.err))
			m.errorText = "Scenario request failed: " + msg.err.Error()
			m.statusText = "No result."
			return m, nil
		}
		m.errorText = ""
		m.statusText = msg.mode.Label() + " complete."
		m.results.SetContent(strings.Join(msg.rows, "\n"))
		m.results.GotoTop()
		return m, saveScenarioCmd(m.store, msg.mode, msg.scenario, msg.raw)

	case sensitivityResultMsg:
		if msg.requestID != m.requestSeq {
			return m, nil
		}
		m.requestInFlight = false
		if msg.err != nil {
			m.errorText = "Sensitivity sweep failed: " + msg.err.Error()
			return m, nil
		}
		m.errorText = ""
		m.statusText = "Sensitivity sweep complete."
		m.results.SetContent(strings.Join(msg.rows, "\n"))
		m.results.GotoTop()
		return m, nil

	case fitResultMsg:
		if msg.requestID != m.requestSeq {
			return m, nil
		}
		m.requestInFlight = false
		if msg.err != nil {
			m.errorText = "Curve fit failed: " + msg.err.Error()
			return m, nil
		}
		m.errorText = ""
		m.chart.SetExpression(msg.expression)
		m.statusText = "Fitted curve: " + msg.expression
		return m, nil

	case sampleBatchMsg:
		if !msg.ok {
			// Channel closed: the stream is finished for this session.
			return m, nil
		}
		m.samples = m.stream.Snapshot()
		return m, waitForSamplesCmd(m.stream.Samples())

	case streamStateMsg:
		if !msg.ok {
			return m, nil
		}
		m.streamState = msg.state
		m.logger.Debug("sensor stream state", zap.String("state", msg.state.String()))
		if msg.state == telemetry.StateClosed {
			m.statusText = "Sensor stream closed. Restart the console to reconnect."
		}
		return m, waitForStreamStateCmd(m.stream.States())

	case projectsLoadedMsg:
		if msg.err != nil {
			m.errorText = "Failed to load projects: " + msg.err.Error()
			return m, nil
		}
		m.projects = msg.projects
		if m.projectCursor >= len(m.projects) {
			m.projectCursor = maxInt(0, len(m.projects)-1)
		}
		m.refreshRecordsView()
		return m, nil

	case equipmentLoadedMsg:
		if msg.err != nil {
			m.errorText = "Failed to load equipment: " + msg.err.Error()
			return m, nil
		}
		m.equipment = msg.equipment
		m.refreshRecordsView()
		return m, nil

	case historyLoadedMsg:
		if msg.err != nil {
			m.errorText = "Failed to load scenario history: " + msg.err.Error()
			return m, nil
		}
		m.historyItems = msg.items
		if m.historyCursor >= len(m.historyItems) {
			m.historyCursor = maxInt(0, len(m.historyItems)-1)
		}
		m.refreshHistoryView()
		return m, nil

	case bundleSavedMsg:
		if msg.err != nil {
			m.errorText = "Failed to save scenario bundle: " + msg.err.Error()
			return m, nil
		}
		return m, loadHistoryCmd(m.store)

	case bundleLoadedMsg:
		if msg.err != nil {
			m.errorText = "Failed to load scenario bundle: " + msg.err.Error()
			return m, nil
		}
		m.errorText = ""
		m.statusText = "Loaded saved scenario from " + msg.bundle.Summary.SavedAt
		m.results.SetContent(strings.Join(renderBundleRows(msg.bundle), "\n"))
		m.results.GotoTop()
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "q":
		if m.focusPane != paneScenario {
			return m, tea.Quit
		}

	case "tab":
		m.focusPane = nextFocusPane(m.focusPane)
		m.applyFocusState()
		return m, nil

	case "shift+tab":
		m.focusPane = prevFocusPane(m.focusPane)
		m.applyFocusState()
		return m, nil

	case "up", "down":
		return m.handleCursorKey(msg)

	case "enter":
		if m.focusPane == paneHistory && m.historyCursor < len(m.historyItems) {
			return m, loadBundleCmd(m.store, m.historyItems[m.historyCursor].Directory)
		}

	case "ctrl+t":
		m.form.CycleMode()
		m.statusText = "Mode: " + m.form.Mode().Label()
		return m, nil

	case "ctrl+g":
		m.chart.ToggleAxis()
		m.statusText = "Telemetry axis: " + m.chart.Axis().String()
		return m, nil

	case "ctrl+r":
		return m.submitScenario()

	case "ctrl+y":
		return m.submitSensitivity()

	case "ctrl+f":
		return m.submitFit()

	case "ctrl+p":
		m.statusText = "Refreshing yard records..."
		return m, tea.Batch(loadProjectsCmd(m.client), loadEquipmentCmd(m.client))

	case "ctrl+h":
		m.statusText = "Checking backend health..."
		return m, tea.Batch(checkHealthCmd(m.client), loadSignalsCmd(m.client))
	}

	if m.focusPane == paneScenario {
		m.form.Update(msg)
	}
	return m, nil
}

func (m Model) handleCursorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	delta := 1
	if msg.String() == "up" {
		delta = -1
	}
	switch m.focusPane {
	case paneScenario:
		m.form.MoveCursor(delta)
	case paneTelemetry:
		// The trace always follows the newest window.
	case paneResults:
		var cmd tea.Cmd
		m.results, cmd = m.results.Update(msg)
		return m, cmd
	case paneProjects:
		if len(m.projects) > 0 {
			m.projectCursor = clampInt(m.projectCursor+delta, 0, len(m.projects)-1)
			m.refreshRecordsView()
		}
	case paneHistory:
		if len(m.historyItems) > 0 {
			m.historyCursor = clampInt(m.historyCursor+delta, 0, len(m.historyItems)-1)
			m.refreshHistoryView()
		}
	}
	return m, nil
}

func (m Model) submitScenario() (tea.Model, tea.Cmd) {
	values, err := m.form.Values()
	if err != nil {
		m.errorText = "Scenario invalid: " + err.Error()
		return m, nil
	}
	aux, err := m.form.Aux()
	if err != nil {
		m.errorText = "Scenario invalid: " + err.Error()
		return m, nil
	}

	m.requestSeq++
	m.requestInFlight = true
	m.errorText = ""
	m.statusText = "Running " + m.form.Mode().Label() + "..."
	return m, tea.Batch(
		runScenarioCmd(m.client, m.requestSeq, m.form.Mode(), values, aux, m.curingMethods),
		m.spinner.Tick,
	)
}

func (m Model) submitSensitivity() (tea.Model, tea.Cmd) {
	signal, ok := m.form.CursorSignal()
	if !ok {
		m.errorText = "Move the cursor onto a signal to sweep it."
		return m, nil
	}
	values, err := m.form.Values()
	if err != nil {
		m.errorText = "Scenario invalid: " + err.Error()
		return m, nil
	}

	m.requestSeq++
	m.requestInFlight = true
	m.errorText = ""
	m.statusText = "Sweeping " + signal.Name + "..."
	return m, tea.Batch(
		runSensitivityCmd(m.client, m.requestSeq, signal.Name, values),
		m.spinner.Tick,
	)
}

func (m Model) submitFit() (tea.Model, tea.Cmd) {
	samples := m.stream.Snapshot()
	if !m.chart.CanFit(samples) {
		m.errorText = fmt.Sprintf("Need at least %d telemetry points to fit a curve.", chart.MinFitPoints)
		return m, nil
	}

	m.requestSeq++
	m.requestInFlight = true
	m.errorText = ""
	m.statusText = "Fitting " + m.chart.Axis().String() + " curve..."
	return m, tea.Batch(
		fitCurveCmd(m.client, m.requestSeq, m.chart.FitPayload(samples)),
		m.spinner.Tick,
	)
}

func (m *Model) applyFocusState() {
	if m.focusPane == paneScenario {
		m.form.Focus()
		return
	}
	m.form.Blur()
}

func nextFocusPane(current focusPane) focusPane {
	switch current {
	case paneScenario:
		return paneTelemetry
	case paneTelemetry:
		return paneResults
	case paneResults:
		return paneProjects
	case paneProjects:
		return paneHistory
	default:
		return paneScenario
	}
}

func prevFocusPane(current focusPane) focusPane {
	switch current {
	case paneScenario:
		return paneHistory
	case paneTelemetry:
		return paneScenario
	case paneResults:
		return paneTelemetry
	case paneProjects:
		return paneResults
	default:
		return paneProjects
	}
}

func (m *Model) refreshRecordsView() {
	m.records.SetContent(strings.Join(renderProjectRows(m.projects, m.equipment, m.projectCursor), "\n"))
}

func (m *Model) refreshHistoryView() {
	m.history.SetContent(strings.Join(renderHistoryRows(m.historyItems, m.historyCursor), "\n"))
}

func (m *Model) resizePanels() {
	if m.width <= 0 || m.height <= 0 {
		return
	}

	usableW := maxInt(60, m.width-6)
	leftW := usableW * 11 / 20
	rightW := usableW - leftW

	m.scenarioW = leftW
	m.resultsW = leftW
	m.telemetryW = rightW
	m.recordsW = rightW
	m.historyW = rightW

	innerH := maxInt(20, m.height-8)
	m.scenarioH = innerH * 11 / 20
	m.resultsH = innerH - m.scenarioH
	m.telemetryH = 6
	m.recordsH = maxInt(4, (innerH-m.telemetryH)*3/5)
	m.historyH = maxInt(4, innerH-m.telemetryH-m.recordsH)

	m.results.Width = maxInt(20, m.resultsW-4)
	m.results.Height = maxInt(3, m.resultsH-1)
	m.records.Width = maxInt(20, m.recordsW-4)
	m.records.Height = maxInt(3, m.recordsH-1)
	m.history.Width = maxInt(20, m.historyW-4)
	m.history.Height = maxInt(3, m.historyH-1)
}

func (m Model) View() string {
	if !m.ready {
		return "Booting yarddeck-tui..."
	}

	innerWidth := maxInt(40, m.width-2)
	innerHeight := maxInt(12, m.height-2)

	header := headerStyle.Render("Yard Deck Console")

	statusPrefix := "*"
	if m.requestInFlight {
		statusPrefix = m.spinner.View()
	}
	statusBody := strings.TrimSpace(m.statusText)
	if statusBody == "" {
		statusBody = "Ready"
	}
	statusLine := statusStyle.Render(statusPrefix+" "+statusBody) + "  " + m.renderConnBadge()
	if strings.TrimSpace(m.errorText) != "" {
		statusLine = errorStyle.Render(m.errorText) + "  " + m.renderConnBadge()
	}

	scenarioPanel := renderPanel(
		"Scenario",
		fitTextHeight(strings.Join(m.form.Rows(), "\n"), maxInt(3, m.scenarioH-1)),
		m.scenarioW,
		m.scenarioH,
		m.focusPane == paneScenario,
	)
	resultsPanel := renderPanel(
		"Results",
		m.results.View(),
		m.resultsW,
		m.resultsH,
		m.focusPane == paneResults,
	)
	telemetryPanel := renderPanel(
		"Live Telemetry",
		m.chart.Render(m.samples, maxInt(20, m.telemetryW-4)),
		m.telemetryW,
		m.telemetryH,
		m.focusPane == paneTelemetry,
	)
	recordsPanel := renderPanel(
		"Projects & Equipment",
		m.records.View(),
		m.recordsW,
		m.recordsH,
		m.focusPane == paneProjects,
	)
	historyPanel := renderPanel(
		"Scenario History",
		m.history.View(),
		m.historyW,
		m.historyH,
		m.focusPane == paneHistory,
	)

	leftColumn := lipgloss.JoinVertical(lipgloss.Left, scenarioPanel, resultsPanel)
	rightColumn := lipgloss.JoinVertical(lipgloss.Left, telemetryPanel, recordsPanel, historyPanel)
	body := lipgloss.JoinHorizontal(lipgloss.Top, leftColumn, rightColumn)

	parts := []string{header, statusLine, body}
	if m.showHelp {
		parts = append(parts, helpStyle.Render("ctrl+r run | ctrl+t mode | ctrl+y sweep signal | ctrl+f fit curve | ctrl+g axis | ctrl+p refresh records | tab cycle panes | enter load history | ctrl+c quit"))
	}

	rendered := strings.Join(parts, "\n")
	rendered = fitTextHeight(rendered, innerHeight)
	return lipgloss.NewStyle().
		Background(chromeBG).
		Foreground(lipgloss.Color("#E8F0F2")).
		Width(innerWidth).
		Height(innerHeight).
		Padding(0, 1).
		Render(rendered)
}

func (m Model) renderConnBadge() string {
	label := "stream: " + m.streamState.String()
	switch m.streamState {
	case telemetry.StateOpen:
		return connOpenStyle.Render(label)
	case telemetry.StateClosed:
		return connClosedStyle.Render(label)
	default:
		return connPendingStyle.Render(label)
	}
}

// renderBundleRows shows a reloaded scenario: the headline, then the signal
// values that produced it.
func renderBundleRows(bundle *storage.ScenarioBundle) []string {
	rows := []string{
		"Saved scenario: " + bundle.Summary.Mode,
		"Saved at: " + bundle.Summary.SavedAt,
	}
	if bundle.Summary.BestMethod != "" {
		rows = append(rows, fmt.Sprintf("Best: %s %s / %s",
			bundle.Summary.BestMethod,
			formatDays(bundle.Summary.BestDays),
			formatRupees(bundle.Summary.BestCost)))
	}
	rows = append(rows, "", "Signal values:")
	for _, name := range sortedScenarioKeys(bundle.Scenario) {
		rows = append(rows, fmt.Sprintf("  %-22s %g", name, bundle.Scenario[name]))
	}
	return rows
}

func sortedScenarioKeys(values gateway.ScenarioValues) []string {
	keys := make([]string, 0, len(values))
	for name := range values {
		keys = append(keys, name)
	}
	sort.Strings(keys)
	return keys
}

// toRawMap flattens a typed response into the generic map the bundle
// store persists.
func toRawMap(value any) map[string]any {
	blob, err := json.Marshal(value)
	if err != nil {
		return map[string]any{}
	}
	var out map[string]any
	if err := json.Unmarshal(blob, &out); err != nil {
		return map[string]any{}
	}
	return out
}

func renderPanel(title, body string, width, height int, focused bool) string {
	borderColor := panelBorder
	if focused {
		borderColor = accentWarm
	}
	style := panelStyle.
		BorderForeground(borderColor).
		Width(width).
		Height(height)

	titleLine := panelTitleStyle.Render(title)
	return style.Render(titleLine + "\n" + body)
}

func fitTextHeight(text string, height int) string {
	if height <= 0 {
		return ""
	}
	lines := strings.Split(text, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
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
