package http

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"attrition/artifact"
	"attrition/config"
	"attrition/db"
)

func TestMain(m *testing.M) {
	dbPath := "./test.db"
	if err := db.InitDB(dbPath); err != nil {
		os.Exit(1)
	}

	code := m.Run()

	db.CloseDB()
	os.Remove(dbPath)
	os.Exit(code)
}

func newTestApp(t *testing.T) (*App, *http.ServeMux) {
	t.Helper()
	store, err := artifact.NewStore(artifact.Config{Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	app := NewApp(store, t.TempDir(), config.Default().Training, nil)
	mux := http.NewServeMux()
	RegisterHandlers(mux, app)
	return app, mux
}

func TestHealthHandler(t *testing.T) {
	_, mux := newTestApp(t)

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest("GET", "/api/health", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("wrong status: got %d want %d", rr.Code, http.StatusOK)
	}
	if !strings.Contains(rr.Body.String(), `"status":"ok"`) {
		t.Fatalf("unexpected body: %s", rr.Body.String())
	}
}

const employeesCSV = `Age,Department,Attrition
25,Sales,No
30,IT,Yes
35,HR,No
40,Sales,Yes
28,IT,No
45,HR,Yes
33,Sales,No
50,IT,Yes
29,HR,No
38,Sales,No
`

func uploadCSV(t *testing.T, mux *http.ServeMux, filename, content string) map[string]any {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	part.Write([]byte(content))
	writer.Close()

	req := httptest.NewRequest("POST", "/api/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("upload failed: %d %s", rr.Code, rr.Body.String())
	}
	var resp map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return resp
}

func postJSON(t *testing.T, mux *http.ServeMux, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	req := httptest.NewRequest("POST", path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func TestUploadAnalyzePredictFlow(t *testing.T) {
	_, mux := newTestApp(t)

	uploaded := uploadCSV(t, mux, "employees.csv", employeesCSV)
	datasetID, _ := uploaded["dataset_id"].(string)
	if datasetID == "" {
		t.Fatalf("missing dataset_id: %v", uploaded)
	}

	rr := postJSON(t, mux, "/api/analyze", map[string]any{
		"dataset_id":    datasetID,
		"target_column": "Attrition",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("analyze failed: %d %s", rr.Code, rr.Body.String())
	}
	var analyzed struct {
		AnalysisID string `json:"analysis_id"`
		Metrics    struct {
			Accuracy float64 `json:"accuracy"`
			F1       float64 `json:"f1"`
		} `json:"metrics"`
		Artifacts struct {
			NumericFeatures     []string `json:"numeric_features"`
			CategoricalFeatures []string `json:"categorical_features"`
		} `json:"artifacts"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &analyzed); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if analyzed.AnalysisID == "" {
		t.Fatal("missing analysis_id")
	}
	if len(analyzed.Artifacts.NumericFeatures) == 0 || analyzed.Artifacts.NumericFeatures[0] != "Age" {
		t.Fatalf("unexpected numeric features: %v", analyzed.Artifacts.NumericFeatures)
	}
	if len(analyzed.Artifacts.CategoricalFeatures) == 0 || analyzed.Artifacts.CategoricalFeatures[0] != "Department" {
		t.Fatalf("unexpected categorical features: %v", analyzed.Artifacts.CategoricalFeatures)
	}

	// analysis is retrievable
	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest("GET", "/api/analysis/"+analyzed.AnalysisID, nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("get analysis failed: %d", rr.Code)
	}

	// importances use schema-derived names
	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest("GET", "/api/analysis/"+analyzed.AnalysisID+"/importances", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("importances failed: %d %s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "Age") {
		t.Fatalf("expected Age importance: %s", rr.Body.String())
	}

	// predict one record
	rr = postJSON(t, mux, "/api/predict", map[string]any{
		"analysis_id": analyzed.AnalysisID,
		"records":     []map[string]any{{"Age": 30, "Department": "Sales"}},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("predict failed: %d %s", rr.Code, rr.Body.String())
	}
	var predicted struct {
		Predictions []struct {
			Index          int      `json:"index"`
			PredictedLabel int      `json:"predicted_label"`
			Probability    *float64 `json:"probability"`
		} `json:"predictions"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &predicted); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(predicted.Predictions) != 1 {
		t.Fatalf("expected 1 prediction: %s", rr.Body.String())
	}
	p := predicted.Predictions[0]
	if p.PredictedLabel != 0 && p.PredictedLabel != 1 {
		t.Fatalf("label out of {0,1}: %d", p.PredictedLabel)
	}
	if p.Probability == nil || *p.Probability < 0 || *p.Probability > 1 {
		t.Fatalf("probability out of range: %v", p.Probability)
	}

	// at-risk report over the stored dataset
	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest("GET", "/api/at_risk/"+analyzed.AnalysisID+"?threshold=0.5", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("at_risk failed: %d %s", rr.Code, rr.Body.String())
	}
	var atRisk struct {
		TotalEmployees int `json:"total_employees"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &atRisk); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if atRisk.TotalEmployees != 10 {
		t.Fatalf("expected 10 employees, got %d", atRisk.TotalEmployees)
	}
}

func TestAnalyzeMissingTargetColumn(t *testing.T) {
	_, mux := newTestApp(t)
	uploaded := uploadCSV(t, mux, "employees.csv", employeesCSV)
	datasetID, _ := uploaded["dataset_id"].(string)

	rr := postJSON(t, mux, "/api/analyze", map[string]any{
		"dataset_id":    datasetID,
		"target_column": "NoSuchColumn",
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestAnalyzeUnknownDataset(t *testing.T) {
	_, mux := newTestApp(t)
	rr := postJSON(t, mux, "/api/analyze", map[string]any{"dataset_id": "nope"})
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestUploadRejectsNonCSV(t *testing.T) {
	_, mux := newTestApp(t)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, _ := writer.CreateFormFile("file", "employees.xlsx")
	part.Write([]byte("whatever"))
	writer.Close()

	req := httptest.NewRequest("POST", "/api/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestPredictUnknownAnalysis(t *testing.T) {
	_, mux := newTestApp(t)
	rr := postJSON(t, mux, "/api/predict", map[string]any{
		"analysis_id": "nope",
		"records":     []map[string]any{},
	})
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}
