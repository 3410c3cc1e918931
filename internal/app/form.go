package app

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"yarddeck-tui/internal/gateway"
)

// Mode is the active scenario question. Cycling modes keeps the signal
// values the operator already typed.
type Mode int

const (
	ModeEvaluate Mode = iota
	ModePredictTime
	ModePredictCost
)

func (m Mode) String() string {
	switch m {
	case ModePredictTime:
		return "predict_time"
	case ModePredictCost:
		return "predict_cost"
	default:
		return "evaluate"
	}
}

func (m Mode) Label() string {
	switch m {
	case ModePredictTime:
		return "Predict Time (given budget)"
	case ModePredictCost:
		return "Predict Cost (given deadline)"
	default:
		return "Evaluate"
	}
}

// AuxKey names the extra payload field the mode needs, empty for evaluate.
func (m Mode) AuxKey() string {
	switch m {
	case ModePredictTime:
		return "budget"
	case ModePredictCost:
		return "days"
	default:
		return ""
	}
}

func (m Mode) Next() Mode {
	switch m {
	case ModeEvaluate:
		return ModePredictTime
	case ModePredictTime:
		return ModePredictCost
	default:
		return ModeEvaluate
	}
}

const (
	defaultBudgetText = "200000"
	defaultDaysText   = "30"
)

// Form is the scenario input controller: one text field per declared
// signal, seeded at the signal minimum, plus an auxiliary target field
// that only participates in the predict modes.
type Form struct {
	signals []gateway.SignalInfo
	inputs  []textinput.Model
	aux     textinput.Model
	mode    Mode
	cursor  int
	focused bool
}

func NewForm() *Form {
	aux := textinput.New()
	aux.Prompt = ""
	aux.CharLimit = 32
	aux.Width = 14
	aux.SetValue(defaultBudgetText)
	return &Form{mode: ModeEvaluate, aux: aux}
}

// SetSignals rebuilds the fields from the backend's declared signals.
// Each field starts at the signal minimum.
func (f *Form) SetSignals(signals []gateway.SignalInfo) {
	f.signals = append([]gateway.SignalInfo(nil), signals...)
	f.inputs = make([]textinput.Model, len(f.signals))
	for i, signal := range f.signals {
		input := textinput.New()
		input.Prompt = ""
		input.CharLimit = 32
		input.Width = 14
		input.SetValue(formatSignalValue(signal, signal.Min))
		f.inputs[i] = input
	}
	if f.cursor >= len(f.inputs) {
		f.cursor = 0
	}
	f.applyCursorFocus()
}

func (f *Form) Mode() Mode {
	return f.mode
}

// CycleMode advances to the next mode. Signal values are preserved; the
// auxiliary field is reseeded only when its meaning changes.
func (f *Form) CycleMode() {
	previous := f.mode.AuxKey()
	f.mode = f.mode.Next()
	next := f.mode.AuxKey()
	if next != "" && next != previous {
		switch f.mode {
		case ModePredictTime:
			f.aux.SetValue(defaultBudgetText)
		case ModePredictCost:
			f.aux.SetValue(defaultDaysText)
		}
	}
	f.applyCursorFocus()
}

// HasAux reports whether the auxiliary field participates in the payload.
func (f *Form) HasAux() bool {
	return f.mode.AuxKey() != ""
}

// FieldCount includes the auxiliary row when the mode uses it.
func (f *Form) FieldCount() int {
	n := len(f.inputs)
	if f.HasAux() {
		n++
	}
	return n
}

func (f *Form) Cursor() int {
	return f.cursor
}

// CursorSignal is the signal under the cursor, used to pick the
// sensitivity sweep target. The auxiliary row has no signal.
func (f *Form) CursorSignal() (gateway.SignalInfo, bool) {
	if f.cursor < 0 || f.cursor >= len(f.signals) {
		return gateway.SignalInfo{}, false
	}
	return f.signals[f.cursor], true
}

func (f *Form) MoveCursor(delta int) {
	count := f.FieldCount()
	if count == 0 {
		return
	}
	f.cursor = (f.cursor + delta + count) % count
	f.applyCursorFocus()
}

// Focus routes keystrokes to the field under the cursor.
func (f *Form) Focus() {
	f.focused = true
	f.applyCursorFocus()
}

func (f *Form) Blur() {
	f.focused = false
	f.applyCursorFocus()
}

func (f *Form) applyCursorFocus() {
	for i := range f.inputs {
		if f.focused && i == f.cursor {
			f.inputs[i].Focus()
		} else {
			f.inputs[i].Blur()
		}
	}
	if f.focused && f.HasAux() && f.cursor == len(f.inputs) {
		f.aux.Focus()
	} else {
		f.aux.Blur()
	}
}

// Update forwards a message to the focused field.
func (f *Form) Update(msg tea.Msg) {
	if !f.focused {
		return
	}
	if f.cursor < len(f.inputs) {
		f.inputs[f.cursor], _ = f.inputs[f.cursor].Update(msg)
		return
	}
	if f.HasAux() {
		f.aux, _ = f.aux.Update(msg)
	}
}

// Values parses every signal field, clamping into the declared bounds.
// Integer signals are rounded. A field that does not parse as a number is
// a validation error naming the signal.
func (f *Form) Values() (gateway.ScenarioValues, error) {
	values := make(gateway.ScenarioValues, len(f.signals))
	for i, signal := range f.signals {
		raw := strings.TrimSpace(f.inputs[i].Value())
		if raw == "" {
			values[signal.Name] = signal.Min
			continue
		}
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("signal %s: %q is not a number", signal.Name, raw)
		}
		values[signal.Name] = clampSignalValue(signal, parsed)
	}
	return values, nil
}

// Aux parses the auxiliary target for the predict modes.
func (f *Form) Aux() (float64, error) {
	if !f.HasAux() {
		return 0, nil
	}
	raw := strings.TrimSpace(f.aux.Value())
	if raw == "" {
		return 0, fmt.Errorf("%s is required", f.mode.AuxKey())
	}
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a number", f.mode.AuxKey(), raw)
	}
	if parsed < 0 {
		return 0, fmt.Errorf("%s must not be negative", f.mode.AuxKey())
	}
	return parsed, nil
}

// Rows renders the form body, one "name value" line per field with the
// cursor marked and bounds as a hint.
func (f *Form) Rows() []string {
	rows := make([]string, 0, f.FieldCount()+2)
	rows = append(rows, "Mode: "+f.mode.Label(), "")
	for i, signal := range f.signals {
		marker := "  "
		if i == f.cursor {
			marker = "> "
		}
		rows = append(rows, fmt.Sprintf("%s%-22s %s  [%s..%s]",
			marker,
			signal.Name,
			f.inputs[i].View(),
			formatSignalValue(signal, signal.Min),
			formatSignalValue(signal, signal.Max),
		))
	}
	if f.HasAux() {
		marker := "  "
		if f.cursor == len(f.inputs) {
			marker = "> "
		}
		rows = append(rows, fmt.Sprintf("%s%-22s %s", marker, f.mode.AuxKey(), f.aux.View()))
	}
	return rows
}

func clampSignalValue(signal gateway.SignalInfo, value float64) float64 {
	if signal.Max > signal.Min {
		value = math.Min(math.Max(value, signal.Min), signal.Max)
	}
	if strings.EqualFold(signal.Type, "int") {
		value = math.Round(value)
	}
	return value
}

func formatSignalValue(signal gateway.SignalInfo, value float64) string {
	if strings.EqualFold(signal.Type, "int") {
		return strconv.FormatInt(int64(math.Round(value)), 10)
	}
	return strconv.FormatFloat(value, 'g', -1, 64)
}
