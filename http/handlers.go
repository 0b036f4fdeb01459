package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"attrition/artifact"
	"attrition/dataset"
	"attrition/db"
	"attrition/ml"
	"github.com/google/uuid"
)

// RegisterHandlers mounts the API routes.
func RegisterHandlers(mux *http.ServeMux, app *App) {
	mux.HandleFunc("GET /api/health", handleHealth)
	mux.HandleFunc("POST /api/upload", app.handleUpload)
	mux.HandleFunc("POST /api/analyze", app.handleAnalyze)
	mux.HandleFunc("GET /api/analyses", app.handleAnalyses)
	mux.HandleFunc("GET /api/analysis/{id}", app.handleAnalysis)
	mux.HandleFunc("GET /api/analysis/{id}/importances", app.handleImportances)
	mux.HandleFunc("POST /api/predict", app.handlePredict)
	mux.HandleFunc("GET /api/at_risk/{id}", app.handleAtRisk)
	mux.HandleFunc("GET /api/ws", func(w http.ResponseWriter, r *http.Request) {
		app.Hub.ServeWS(w, r)
	})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) handleUpload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".csv") {
		writeError(w, http.StatusBadRequest, "only CSV files are accepted")
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unable to read upload")
		return
	}

	table, err := dataset.ReadCSV(bytes.NewReader(content))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unable to parse CSV: "+err.Error())
		return
	}

	datasetID := uuid.NewString()
	path := filepath.Join(a.UploadDir, "dataset_"+datasetID+".csv")
	if err := os.MkdirAll(a.UploadDir, 0o755); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := os.WriteFile(path, content, 0o600); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	sample := sampleRows(table, 5)
	rec := db.DatasetRecord{
		ID:         datasetID,
		Filename:   header.Filename,
		Path:       path,
		UploadedAt: time.Now().UTC(),
		Columns:    table.ColumnNames(),
		Sample:     sample,
	}
	if err := db.InsertDataset(rec); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"dataset_id": datasetID,
		"columns":    rec.Columns,
		"sample":     sample,
		"validation": dataset.Validate(table),
	})
}

func (a *App) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.DatasetID == "" {
		writeError(w, http.StatusBadRequest, "dataset_id is required")
		return
	}

	ds, err := db.GetDataset(req.DatasetID)
	if err != nil {
		writeError(w, statusFor(err), "dataset not found")
		return
	}

	a.Hub.Publish(EventAnalysisStarted, map[string]string{"dataset_id": ds.ID})

	result, err := a.runAnalysis(ds, req)
	if err != nil {
		a.Hub.Publish(EventAnalysisFailed, map[string]string{
			"dataset_id": ds.ID,
			"error":      err.Error(),
		})
		writeError(w, statusFor(err), err.Error())
		return
	}

	a.Hub.Publish(EventAnalysisCompleted, map[string]any{
		"dataset_id":  ds.ID,
		"analysis_id": result["analysis_id"],
	})
	writeJSON(w, http.StatusOK, result)
}

func (a *App) handleAnalyses(w http.ResponseWriter, r *http.Request) {
	analyses, err := db.ListAnalyses()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if analyses == nil {
		analyses = []db.AnalysisRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"analyses": analyses})
}

func (a *App) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	rec, err := db.GetAnalysis(r.PathValue("id"))
	if err != nil {
		writeError(w, statusFor(err), "analysis not found")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (a *App) handleImportances(w http.ResponseWriter, r *http.Request) {
	rec, err := db.GetAnalysis(r.PathValue("id"))
	if err != nil {
		writeError(w, statusFor(err), "analysis not found")
		return
	}
	pipeline, err := a.Store.Load(rec.ModelID)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"analysis_id": rec.ID,
		"importances": ml.Importances(pipeline),
	})
}

type predictRequest struct {
	AnalysisID string           `json:"analysis_id"`
	Records    []map[string]any `json:"records"`
}

func (a *App) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.AnalysisID == "" {
		writeError(w, http.StatusBadRequest, "analysis_id is required")
		return
	}

	rec, err := db.GetAnalysis(req.AnalysisID)
	if err != nil {
		writeError(w, statusFor(err), "analysis not found")
		return
	}

	predictions, err := a.Predictor.Predict(rec.ModelID, req.Records)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"predictions": predictions})
}

// atRiskEmployee is one row of the ranked risk report.
type atRiskEmployee struct {
	Index       int               `json:"index"`
	Probability float64           `json:"attrition_probability"`
	RiskLevel   string            `json:"risk_level"`
	Employee    map[string]string `json:"employee_data"`
}

func (a *App) handleAtRisk(w http.ResponseWriter, r *http.Request) {
	rec, err := db.GetAnalysis(r.PathValue("id"))
	if err != nil {
		writeError(w, statusFor(err), "analysis not found")
		return
	}
	ds, err := db.GetDataset(rec.DatasetID)
	if err != nil {
		writeError(w, statusFor(err), "dataset not found")
		return
	}

	threshold := a.TrainingDefaults().RiskThreshold
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil && v > 0 && v <= 1 {
			threshold = v
		}
	}

	table, err := readDatasetFile(ds.Path)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	records := make([]map[string]any, table.NumRows())
	for i := range records {
		records[i] = rowRecord(table, i)
	}
	predictions, err := a.Predictor.Predict(rec.ModelID, records)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	atRisk := make([]atRiskEmployee, 0)
	critical := 0
	for i, p := range predictions {
		if p.Probability == nil || *p.Probability < threshold {
			continue
		}
		level := riskLevel(*p.Probability)
		if level == "Critical" {
			critical++
		}
		atRisk = append(atRisk, atRiskEmployee{
			Index:       p.Index,
			Probability: *p.Probability,
			RiskLevel:   level,
			Employee:    table.Row(i),
		})
	}
	sort.SliceStable(atRisk, func(i, j int) bool {
		return atRisk[i].Probability > atRisk[j].Probability
	})
	if len(atRisk) > 50 {
		atRisk = atRisk[:50]
	}

	total := table.NumRows()
	riskPct := 0.0
	if total > 0 {
		riskPct = float64(len(atRisk)) / float64(total) * 100
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total_employees":   total,
		"at_risk_count":     len(atRisk),
		"critical_count":    critical,
		"risk_percentage":   riskPct,
		"at_risk_employees": atRisk,
	})
}

func riskLevel(probability float64) string {
	switch {
	case probability >= 0.8:
		return "Critical"
	case probability >= 0.6:
		return "High"
	default:
		return "Moderate"
	}
}

func sampleRows(t *dataset.Table, n int) []map[string]string {
	if n > t.NumRows() {
		n = t.NumRows()
	}
	rows := make([]map[string]string, n)
	for i := 0; i < n; i++ {
		rows[i] = t.Row(i)
	}
	return rows
}

func rowRecord(t *dataset.Table, i int) map[string]any {
	row := t.Row(i)
	record := make(map[string]any, len(row))
	for k, v := range row {
		record[k] = v
	}
	return record
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// statusFor maps the core error taxonomy onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ml.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, artifact.ErrNotFound), errors.Is(err, db.ErrNoRecord):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
