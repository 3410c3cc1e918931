package app

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"yarddeck-tui/internal/gateway"
	"yarddeck-tui/internal/storage"
)

// Rupee amounts use Indian digit grouping, e.g. ₹1,25,000.
var rupeePrinter = message.NewPrinter(language.MustParse("en-IN"))

func formatRupees(amount float64) string {
	return "₹" + rupeePrinter.Sprint(number.Decimal(amount, number.MaxFractionDigits(0)))
}

func formatDays(days float64) string {
	return fmt.Sprintf("%.1f days", days)
}

// Equipment fractions render as whole percents.
func formatEquipPercent(fraction float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(fraction*100)))
}

func formatComplexity(value float64) string {
	return fmt.Sprintf("%.1f", value)
}

// methodLabel resolves a curing method through the backend's label map,
// falling back to the raw key.
func methodLabel(methods map[string]string, key string) string {
	if label, ok := methods[key]; ok && strings.TrimSpace(label) != "" {
		return label
	}
	return key
}

// renderEvaluateRows formats the evaluate answer: per curing method, the
// predicted figures with ground truth alongside.
func renderEvaluateRows(response *gateway.EvaluateResponse, methods map[string]string) []string {
	if response == nil || len(response.Results) == 0 {
		return []string{"No evaluate results."}
	}
	rows := make([]string, 0, len(response.Results)*4+1)
	rows = append(rows, "Evaluate: all curing methods")
	for _, result := range response.Results {
		rows = append(rows,
			"",
			strings.ToUpper(methodLabel(methods, result.CuringMethod)),
			fmt.Sprintf("  predicted   %s / %s", formatDays(result.PredictedDays), formatRupees(result.PredictedCost)),
			fmt.Sprintf("  groundtruth %s / %s", formatDays(result.GroundtruthDays), formatRupees(result.GroundtruthCost)),
		)
	}
	return rows
}

// renderPredictTimeRows formats the budget question: how long each curing
// method would take, with the backend's recommended configuration.
func renderPredictTimeRows(response *gateway.PredictTimeResponse, methods map[string]string) []string {
	if response == nil || len(response.Results) == 0 {
		return []string{"No prediction results."}
	}
	rows := make([]string, 0, len(response.Results)*4+1)
	rows = append(rows, "Predict time for budget "+formatRupees(response.InputBudget))
	rows = append(rows, renderRecommendationRows(response.Results, methods, true)...)
	return rows
}

// renderPredictCostRows formats the deadline question: what each curing
// method would cost inside the given days.
func renderPredictCostRows(response *gateway.PredictCostResponse, methods map[string]string) []string {
	if response == nil || len(response.Results) == 0 {
		return []string{"No prediction results."}
	}
	rows := make([]string, 0, len(response.Results)*4+1)
	rows = append(rows, fmt.Sprintf("Predict cost for deadline %s", formatDays(response.InputDays)))
	rows = append(rows, renderRecommendationRows(response.Results, methods, false)...)
	return rows
}

func renderRecommendationRows(results []gateway.CuringRecommendation, methods map[string]string, timeFirst bool) []string {
	rows := make([]string, 0, len(results)*4)
	for _, result := range results {
		headline := fmt.Sprintf("  %s at %s", formatDays(result.PredictedDays), formatRupees(result.PredictedCost))
		if !timeFirst {
			headline = fmt.Sprintf("  %s within %s", formatRupees(result.PredictedCost), formatDays(result.PredictedDays))
		}
		rows = append(rows,
			"",
			strings.ToUpper(methodLabel(methods, result.CuringMethod)),
			headline,
			fmt.Sprintf("  recommended complexity %s, equipment %s",
				formatComplexity(result.RecommendedComplexity),
				formatEquipPercent(result.RecommendedEquip)),
		)
	}
	return rows
}

// renderSensitivityRows summarizes a sweep: the extremes of each method's
// cost across the sampled signal values, then the point table.
func renderSensitivityRows(response *gateway.SensitivityResponse) []string {
	if response == nil || len(response.Points) == 0 {
		return []string{"No sensitivity points."}
	}
	rows := make([]string, 0, len(response.Points)+4)
	rows = append(rows, fmt.Sprintf("Sensitivity sweep: %s (%d points)", response.Signal, len(response.Points)))
	rows = append(rows, "")
	rows = append(rows, fmt.Sprintf("%12s %18s %18s %18s", "value", "water", "steam", "chemical"))
	for _, point := range response.Points {
		rows = append(rows, fmt.Sprintf("%12.2f %18s %18s %18s",
			point.Value,
			fmt.Sprintf("%.1fd/%s", point.WaterDays, formatRupees(point.WaterCost)),
			fmt.Sprintf("%.1fd/%s", point.SteamDays, formatRupees(point.SteamCost)),
			fmt.Sprintf("%.1fd/%s", point.ChemicalDays, formatRupees(point.ChemicalCost)),
		))
	}
	return rows
}

// renderProjectRows lists projects and the equipment fleet for the browser
// pane. The selected project shows its elements inline.
func renderProjectRows(projects []gateway.Project, equipment []gateway.Equipment, cursor int) []string {
	rows := make([]string, 0, len(projects)+len(equipment)+4)
	rows = append(rows, "Projects")
	if len(projects) == 0 {
		rows = append(rows, "  none yet")
	}
	for i, project := range projects {
		marker := "  "
		if i == cursor {
			marker = "> "
		}
		status := project.Status
		if status == "" {
			status = "planned"
		}
		rows = append(rows, fmt.Sprintf("%s%s [%s] %d elements", marker, project.Name, status, projectElementCount(project)))
		if i == cursor {
			for _, element := range project.Elements {
				rows = append(rows, fmt.Sprintf("    - %s %s (%s)", element.Name, element.Type, element.CuringStatus))
			}
		}
	}
	rows = append(rows, "", "Equipment")
	if len(equipment) == 0 {
		rows = append(rows, "  none yet")
	}
	for _, item := range equipment {
		rows = append(rows, fmt.Sprintf("  %s x%d [%s]", item.Name, item.Quantity, item.Status))
	}
	return rows
}

func projectElementCount(project gateway.Project) int {
	if len(project.Elements) > 0 {
		return len(project.Elements)
	}
	return project.ElementCount
}

// renderHistoryRows lists saved scenario bundles newest-first.
func renderHistoryRows(items []storage.ScenarioSummary, cursor int) []string {
	if len(items) == 0 {
		return []string{"No saved scenarios yet."}
	}
	sorted := append([]storage.ScenarioSummary(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SavedAt > sorted[j].SavedAt
	})
	rows := make([]string, 0, len(sorted))
	for i, item := range sorted {
		marker := "  "
		if i == cursor {
			marker = "> "
		}
		headline := "no result"
		if item.BestMethod != "" {
			headline = fmt.Sprintf("%s %s / %s", item.BestMethod, formatDays(item.BestDays), formatRupees(item.BestCost))
		}
		rows = append(rows, fmt.Sprintf("%s%s  %-12s %s", marker, item.SavedAt, item.Mode, headline))
	}
	return rows
}
