// Package gateway is the console's HTTP client for the yard backend:
// simulation endpoints, the curve fitter, and project/equipment persistence.
// Every call is a single attempt; failures come back as *RequestError.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// RequestError is the single failure shape the UI displays: one
// human-readable message, regardless of whether the transport failed or
// the backend answered with a non-success status.
type RequestError struct {
	Message string
}

func (e *RequestError) Error() string {
	return e.Message
}

type detailBody struct {
	Detail string `json:"detail"`
}

// Client issues JSON requests against one backend API root.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a client for the given API root, e.g.
// "http://localhost:8000/api".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{},
	}
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		blob, err := json.Marshal(payload)
		if err != nil {
			return &RequestError{Message: fmt.Sprintf("marshal request payload: %v", err)}
		}
		body = bytes.NewReader(blob)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &RequestError{Message: fmt.Sprintf("build request: %v", err)}
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &RequestError{Message: fmt.Sprintf("%s %s: %v", method, path, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		blob, _ := io.ReadAll(resp.Body)
		var detail detailBody
		if json.Unmarshal(blob, &detail) == nil && strings.TrimSpace(detail.Detail) != "" {
			return &RequestError{Message: fmt.Sprintf("%s %s: %s", method, path, detail.Detail)}
		}
		return &RequestError{Message: fmt.Sprintf("%s %s failed with status %d", method, path, resp.StatusCode)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &RequestError{Message: fmt.Sprintf("decode %s %s response: %v", method, path, err)}
	}
	return nil
}

// Health checks backend liveness. The endpoint sits above the API prefix.
func (c *Client) Health(ctx context.Context) error {
	root := strings.TrimSuffix(c.baseURL, "/api")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, root+"/health", nil)
	if err != nil {
		return &RequestError{Message: err.Error()}
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &RequestError{Message: fmt.Sprintf("health check: %v", err)}
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return &RequestError{Message: fmt.Sprintf("health endpoint returned %d", resp.StatusCode)}
	}
	return nil
}

// Signals fetches every declared scenario signal with bounds plus the
// curing method labels. The form is built from this response.
func (c *Client) Signals(ctx context.Context) (*SignalsResponse, error) {
	var response SignalsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/precast/signals", nil, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// Evaluate predicts time and cost for all curing methods, with ground
// truth alongside for comparison.
func (c *Client) Evaluate(ctx context.Context, values ScenarioValues) (*EvaluateResponse, error) {
	var response EvaluateResponse
	if err := c.doJSON(ctx, http.MethodPost, "/precast/evaluate", scenarioPayload(values, "", 0), &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// PredictTime answers "given this budget, how long?" per curing method.
func (c *Client) PredictTime(ctx context.Context, values ScenarioValues, budget float64) (*PredictTimeResponse, error) {
	var response PredictTimeResponse
	if err := c.doJSON(ctx, http.MethodPost, "/precast/predict/time", scenarioPayload(values, "budget", budget), &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// PredictCost answers "given this deadline, how much?" per curing method.
func (c *Client) PredictCost(ctx context.Context, values ScenarioValues, days float64) (*PredictCostResponse, error) {
	var response PredictCostResponse
	if err := c.doJSON(ctx, http.MethodPost, "/precast/predict/cost", scenarioPayload(values, "days", days), &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// Sensitivity sweeps one signal across its range, returning days and cost
// for all three curing methods at each point.
func (c *Client) Sensitivity(ctx context.Context, signal string, values ScenarioValues, nPoints int) (*SensitivityResponse, error) {
	signal = strings.TrimSpace(signal)
	if signal == "" {
		return nil, &RequestError{Message: "signal name is required"}
	}
	payload := scenarioPayload(values, "", 0)
	if nPoints > 0 {
		payload["n_points"] = nPoints
	}
	var response SensitivityResponse
	path := "/precast/sensitivity/" + url.PathEscape(signal)
	if err := c.doJSON(ctx, http.MethodPost, path, payload, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

type fitRequest struct {
	Points []FitPoint `json:"points"`
	Method string     `json:"method"`
	Degree int        `json:"degree,omitempty"`
}

type fitResponse struct {
	Function string `json:"function"`
}

// FitCurve sends 2-D points to the approximation backend and returns the
// fitted expression string, e.g. "x^2".
func (c *Client) FitCurve(ctx context.Context, points []FitPoint, method string, degree int) (string, error) {
	if len(points) < 2 {
		return "", &RequestError{Message: "at least two points are required to fit a curve"}
	}
	var response fitResponse
	req := fitRequest{Points: points, Method: method, Degree: degree}
	if err := c.doJSON(ctx, http.MethodPost, "/approximation/fit", req, &response); err != nil {
		return "", err
	}
	if strings.TrimSpace(response.Function) == "" {
		return "", &RequestError{Message: "curve fitter returned an empty expression"}
	}
	return response.Function, nil
}

// scenarioPayload flattens the signal map and, for predict modes, attaches
// the auxiliary target. Evaluate payloads never carry an extra field.
func scenarioPayload(values ScenarioValues, extraKey string, extra float64) map[string]any {
	payload := make(map[string]any, len(values)+1)
	for name, value := range values {
		payload[name] = value
	}
	if extraKey != "" {
		payload[extraKey] = extra
	}
	return payload
}

// ── Projects ────────────────────────────────────────────────

func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	var projects []Project
	if err := c.doJSON(ctx, http.MethodGet, "/projects/", nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (c *Client) CreateProject(ctx context.Context, project Project) (*Project, error) {
	var created Project
	if err := c.doJSON(ctx, http.MethodPost, "/projects/", project, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) GetProject(ctx context.Context, projectID int) (*Project, error) {
	var project Project
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/projects/%d", projectID), nil, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

func (c *Client) UpdateProject(ctx context.Context, projectID int, update Project) (*Project, error) {
	var project Project
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/projects/%d", projectID), update, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

func (c *Client) DeleteProject(ctx context.Context, projectID int) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/projects/%d", projectID), nil, nil)
}

// ── Elements ────────────────────────────────────────────────

func (c *Client) ListElements(ctx context.Context, projectID int) ([]Element, error) {
	var elements []Element
	path := fmt.Sprintf("/projects/%d/elements/", projectID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &elements); err != nil {
		return nil, err
	}
	return elements, nil
}

func (c *Client) CreateElement(ctx context.Context, projectID int, element Element) (*Element, error) {
	var created Element
	path := fmt.Sprintf("/projects/%d/elements/", projectID)
	if err := c.doJSON(ctx, http.MethodPost, path, element, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) DeleteElement(ctx context.Context, projectID, elementID int) error {
	path := fmt.Sprintf("/projects/%d/elements/%d", projectID, elementID)
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) CuringSuggestion(ctx context.Context, projectID, elementID int) (*CuringSuggestion, error) {
	var suggestion CuringSuggestion
	path := fmt.Sprintf("/projects/%d/elements/%d/curing-suggestion", projectID, elementID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &suggestion); err != nil {
		return nil, err
	}
	return &suggestion, nil
}

// ── Equipment ───────────────────────────────────────────────

func (c *Client) ListEquipment(ctx context.Context) ([]Equipment, error) {
	var equipment []Equipment
	if err := c.doJSON(ctx, http.MethodGet, "/equipment/", nil, &equipment); err != nil {
		return nil, err
	}
	return equipment, nil
}

func (c *Client) CreateEquipment(ctx context.Context, item Equipment) (*Equipment, error) {
	var created Equipment
	if err := c.doJSON(ctx, http.MethodPost, "/equipment/", item, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) GetEquipment(ctx context.Context, equipmentID int) (*Equipment, error) {
	var item Equipment
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/equipment/%d", equipmentID), nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Client) UpdateEquipment(ctx context.Context, equipmentID int, update Equipment) (*Equipment, error) {
	var item Equipment
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/equipment/%d", equipmentID), update, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Client) DeleteEquipment(ctx context.Context, equipmentID int) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/equipment/%d", equipmentID), nil, nil)
}
