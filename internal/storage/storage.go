// Package storage persists scenario runs as on-disk JSON bundles so an
// operator can review earlier predictions after the session ends.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"yarddeck-tui/internal/gateway"
)

type Store struct {
	rootDir      string
	scenariosDir string
}

// ScenarioSummary is the list-view row for one saved run. The headline
// fields come from the cheapest curing method in the result.
type ScenarioSummary struct {
	Mode       string  `json:"mode"`
	SavedAt    string  `json:"saved_at"`
	BestMethod string  `json:"best_method"`
	BestDays   float64 `json:"best_days"`
	BestCost   float64 `json:"best_cost"`
	Directory  string  `json:"directory"`
}

// ScenarioBundle is the full saved run: the summary, the signal values the
// operator submitted, and the raw backend result.
type ScenarioBundle struct {
	Summary  ScenarioSummary        `json:"summary"`
	Scenario gateway.ScenarioValues `json:"scenario"`
	Result   map[string]any         `json:"result"`
}

func NewStore(rootDir string) (*Store, error) {
	scenariosDir := filepath.Join(rootDir, "scenarios")
	if err := os.MkdirAll(scenariosDir, 0o755); err != nil {
		return nil, fmt.Errorf("create scenarios dir: %w", err)
	}
	return &Store{rootDir: rootDir, scenariosDir: scenariosDir}, nil
}

func (s *Store) ScenariosDir() string {
	return s.scenariosDir
}

func (s *Store) SaveScenario(mode string, scenario gateway.ScenarioValues, result map[string]any) (ScenarioSummary, error) {
	mode = strings.TrimSpace(mode)
	if mode == "" {
		mode = "evaluate"
	}
	if scenario == nil {
		scenario = gateway.ScenarioValues{}
	}
	if result == nil {
		result = map[string]any{}
	}

	now := time.Now().UTC()
	stamp := now.Format("20060102-150405.000")
	dirName := fmt.Sprintf("%s-%s", stamp, sanitizeMode(mode))
	dirPath := filepath.Join(s.scenariosDir, dirName)
	if err := os.MkdirAll(dirPath, 0o755); err != nil {
		return ScenarioSummary{}, fmt.Errorf("create scenario bundle dir: %w", err)
	}

	summary := ScenarioSummary{
		Mode:      mode,
		SavedAt:   now.Format(time.RFC3339),
		Directory: dirPath,
	}
	summary.BestMethod, summary.BestDays, summary.BestCost = cheapestResult(result)

	if err := writeJSON(filepath.Join(dirPath, "summary.json"), summary); err != nil {
		return ScenarioSummary{}, err
	}
	if err := writeJSON(filepath.Join(dirPath, "scenario.json"), scenario); err != nil {
		return ScenarioSummary{}, err
	}
	if err := writeJSON(filepath.Join(dirPath, "result.json"), result); err != nil {
		return ScenarioSummary{}, err
	}

	bundle := ScenarioBundle{
		Summary:  summary,
		Scenario: scenario,
		Result:   result,
	}
	if err := writeJSON(filepath.Join(dirPath, "bundle.json"), bundle); err != nil {
		return ScenarioSummary{}, err
	}
	return summary, nil
}

func (s *Store) List(limit int) ([]ScenarioSummary, error) {
	entries, err := os.ReadDir(s.scenariosDir)
	if err != nil {
		return nil, fmt.Errorf("read scenarios dir: %w", err)
	}

	summaries := make([]ScenarioSummary, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		summaryPath := filepath.Join(s.scenariosDir, entry.Name(), "summary.json")
		blob, err := os.ReadFile(summaryPath)
		if err != nil {
			continue
		}
		var summary ScenarioSummary
		if err := json.Unmarshal(blob, &summary); err != nil {
			continue
		}
		if summary.Directory == "" {
			summary.Directory = filepath.Join(s.scenariosDir, entry.Name())
		}
		summaries = append(summaries, summary)
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].SavedAt > summaries[j].SavedAt
	})

	if limit > 0 && len(summaries) > limit {
		summaries = summaries[:limit]
	}
	return summaries, nil
}

func (s *Store) LoadBundle(directory string) (*ScenarioBundle, error) {
	dir := strings.TrimSpace(directory)
	if dir == "" {
		return nil, fmt.Errorf("directory is required")
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(s.scenariosDir, dir)
	}

	blob, err := os.ReadFile(filepath.Join(dir, "bundle.json"))
	if err == nil {
		var bundle ScenarioBundle
		if json.Unmarshal(blob, &bundle) == nil {
			if bundle.Summary.Directory == "" {
				bundle.Summary.Directory = dir
			}
			return &bundle, nil
		}
	}

	var summary ScenarioSummary
	if err := readJSON(filepath.Join(dir, "summary.json"), &summary); err != nil {
		return nil, err
	}
	var scenario gateway.ScenarioValues
	if err := readJSON(filepath.Join(dir, "scenario.json"), &scenario); err != nil {
		return nil, err
	}
	var result map[string]any
	if err := readJSON(filepath.Join(dir, "result.json"), &result); err != nil {
		return nil, err
	}

	summary.Directory = dir
	bundle := &ScenarioBundle{
		Summary:  summary,
		Scenario: scenario,
		Result:   result,
	}
	return bundle, nil
}

// cheapestResult scans result["results"] for the curing method with the
// lowest predicted cost. Missing or oddly shaped results leave the
// headline fields zeroed.
func cheapestResult(result map[string]any) (string, float64, float64) {
	rows, ok := result["results"].([]any)
	if !ok {
		return "", 0, 0
	}
	bestMethod := ""
	bestDays := 0.0
	bestCost := 0.0
	for _, row := range rows {
		entry, ok := row.(map[string]any)
		if !ok {
			continue
		}
		cost := asFloat(entry["predicted_cost"])
		if bestMethod == "" || cost < bestCost {
			bestMethod = asString(entry["curing_method"])
			bestDays = asFloat(entry["predicted_days"])
			bestCost = cost
		}
	}
	return bestMethod, bestDays, bestCost
}

func sanitizeMode(mode string) string {
	var b strings.Builder
	for _, r := range mode {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return b.String()
}

func writeJSON(path string, value any) error {
	blob, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json for %s: %w", path, err)
	}
	if err := os.WriteFile(path, blob, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func readJSON(path string, out any) error {
	blob, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(blob, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func asFloat(value any) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		f, _ := v.Float64()
		return f
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f
	default:
		return 0.0
	}
}

func asString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}
