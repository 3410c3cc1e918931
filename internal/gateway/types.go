package gateway

// Wire types mirroring the yard backend's JSON schemas. Scenario signal
// values travel as a name -> number map; the backend validates bounds.

// ScenarioValues maps signal name to the value the operator chose.
type ScenarioValues map[string]float64

// SignalInfo describes one scenario input declared by the backend,
// including the bounds the form must enforce.
type SignalInfo struct {
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
	Description string  `json:"description"`
}

// SignalsResponse is the full form schema: signals plus the curing method
// key -> label map.
type SignalsResponse struct {
	Signals       []SignalInfo      `json:"signals"`
	CuringMethods map[string]string `json:"curing_methods"`
}

// EvaluateResult is one curing method's predicted and ground-truth figures.
type EvaluateResult struct {
	CuringMethod    string  `json:"curing_method"`
	PredictedDays   float64 `json:"predicted_days"`
	PredictedCost   float64 `json:"predicted_cost"`
	GroundtruthDays float64 `json:"groundtruth_days"`
	GroundtruthCost float64 `json:"groundtruth_cost"`
}

// CuringRecommendation is one curing method's prediction plus the scenario
// configuration the backend recommends to hit the requested target.
type CuringRecommendation struct {
	CuringMethod          string  `json:"curing_method"`
	PredictedDays         float64 `json:"predicted_days"`
	PredictedCost         float64 `json:"predicted_cost"`
	RecommendedComplexity float64 `json:"recommended_complexity"`
	RecommendedEquip      float64 `json:"recommended_equip"`
}

type EvaluateResponse struct {
	Results  []EvaluateResult `json:"results"`
	Scenario map[string]any   `json:"scenario"`
}

type PredictTimeResponse struct {
	InputBudget float64                `json:"input_budget"`
	Results     []CuringRecommendation `json:"results"`
	Scenario    map[string]any         `json:"scenario"`
}

type PredictCostResponse struct {
	InputDays float64                `json:"input_days"`
	Results   []CuringRecommendation `json:"results"`
	Scenario  map[string]any         `json:"scenario"`
}

// SensitivityPoint is one sweep sample with days and cost for all three
// curing methods at that signal value.
type SensitivityPoint struct {
	Value        float64 `json:"value"`
	WaterDays    float64 `json:"water_days"`
	WaterCost    float64 `json:"water_cost"`
	SteamDays    float64 `json:"steam_days"`
	SteamCost    float64 `json:"steam_cost"`
	ChemicalDays float64 `json:"chemical_days"`
	ChemicalCost float64 `json:"chemical_cost"`
}

type SensitivityResponse struct {
	Signal   string             `json:"signal"`
	Points   []SensitivityPoint `json:"points"`
	Scenario map[string]any     `json:"scenario"`
}

// Project is a yard project as stored by the backend. Summaries omit the
// element list and carry a count instead.
type Project struct {
	ID           int       `json:"id,omitempty"`
	Name         string    `json:"name"`
	Location     string    `json:"location,omitempty"`
	Description  string    `json:"description,omitempty"`
	Status       string    `json:"status,omitempty"`
	StartDate    string    `json:"start_date,omitempty"`
	EndDate      string    `json:"end_date,omitempty"`
	Supervisor   string    `json:"supervisor,omitempty"`
	CreatedAt    string    `json:"created_at,omitempty"`
	ElementCount int       `json:"element_count,omitempty"`
	Elements     []Element `json:"elements,omitempty"`
}

// Element is one precast piece inside a project.
type Element struct {
	ID                  int     `json:"id,omitempty"`
	ProjectID           int     `json:"project_id,omitempty"`
	Name                string  `json:"name"`
	Type                string  `json:"type,omitempty"`
	Description         string  `json:"description,omitempty"`
	Volume              float64 `json:"volume,omitempty"`
	Grade               string  `json:"grade,omitempty"`
	WaterCementRatio    float64 `json:"water_cement_ratio,omitempty"`
	CuringStatus        string  `json:"curing_status,omitempty"`
	CuringMethod        string  `json:"curing_method,omitempty"`
	EstimatedCuringDays int     `json:"estimated_curing_days,omitempty"`
	EstimatedCost       float64 `json:"estimated_cost,omitempty"`
}

// Equipment is one fleet entry (crane, batching plant, vibrator, ...).
type Equipment struct {
	ID          int    `json:"id,omitempty"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
	Quantity    int    `json:"quantity,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// CuringSuggestion is the backend's rule-based recommendation for an element.
type CuringSuggestion struct {
	Method               string   `json:"method"`
	EstimatedDays        int      `json:"estimated_days"`
	EstimatedCost        float64  `json:"estimated_cost"`
	Notes                string   `json:"notes"`
	EquipmentRecommended []string `json:"equipment_recommended"`
}

// FitPoint is one (x, y) sample sent to the curve fitter as a 2-element array.
type FitPoint [2]float64
