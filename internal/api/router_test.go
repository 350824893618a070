package api

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"mime"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Skufu/healthrisk/internal/artifact"
	"github.com/Skufu/healthrisk/internal/report"
	"github.com/Skufu/healthrisk/internal/risk"
)

type fakeDB struct {
	err error
}

func (f fakeDB) Ping(ctx context.Context) error {
	return f.err
}

type identityScaler struct{}

func (identityScaler) Transform(x []float64) ([]float64, error) {
	if len(x) != 13 {
		return nil, artifact.ErrShapeMismatch
	}
	return x, nil
}
func (identityScaler) NumFeatures() int       { return 13 }
func (identityScaler) FeatureNames() []string { return nil }

type fixedModel struct {
	label int
	proba float64
	err   error
}

func (m fixedModel) Predict([]float64) (int, error)          { return m.label, m.err }
func (m fixedModel) PredictProba([]float64) (float64, error) { return m.proba, m.err }
func (fixedModel) NumFeatures() int                          { return 13 }
func (fixedModel) FeatureNames() []string                    { return nil }

type failingRenderer struct{}

func (failingRenderer) Render(report.Report) ([]byte, error) {
	return nil, errors.New("no fonts")
}

func newEngine(t *testing.T, model fixedModel) *risk.Engine {
	t.Helper()
	e, err := risk.NewEngine(
		risk.Classifier{Model: model, Scaler: identityScaler{}},
		risk.Classifier{Model: model, Scaler: identityScaler{}},
	)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return e
}

func newTestRouter(t *testing.T, opts Options) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if opts.Engine == nil {
		opts.Engine = newEngine(t, fixedModel{label: 1, proba: 0.8765})
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC) }
	}
	return NewRouter(opts)
}

func post(router http.Handler, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

const diabetesBody = `{
	"patientName": "Jane Doe",
	"age": 30,
	"gender": "Female",
	"bmi": 25.0,
	"smokingHistory": "never",
	"hypertension": "No",
	"heartDisease": "No",
	"hba1c": 5.5,
	"glucose": 100
}`

const heartBody = `{
	"age": 45,
	"gender": "Male",
	"heightCm": 170,
	"weightKg": 70,
	"systolicBp": 120,
	"diastolicBp": 80,
	"cholesterol": 200,
	"glucose": 100
}`

func TestRouterHealthz(t *testing.T) {
	router := newTestRouter(t, Options{DB: fakeDB{}})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/healthz", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected generated request id")
	}
}

func TestRouterReadyz(t *testing.T) {
	t.Run("db disabled", func(t *testing.T) {
		router := newTestRouter(t, Options{})
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/readyz", nil)
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"db":"disabled"`) {
			t.Fatalf("unexpected response %d: %s", w.Code, w.Body.String())
		}
		if !strings.Contains(w.Body.String(), `"reports":"disabled"`) {
			t.Fatalf("expected reports disabled, got %s", w.Body.String())
		}
	})

	t.Run("db down", func(t *testing.T) {
		router := newTestRouter(t, Options{DB: fakeDB{err: errors.New("connection refused")}})
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/readyz", nil)
		router.ServeHTTP(w, req)
		if w.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", w.Code)
		}
	})
}

// Ensure limitBodySize middleware allows small payloads and blocks large ones.
func TestLimitBodySize(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(limitBodySize(10))
	router.POST("/echo", func(c *gin.Context) {
		_, err := c.GetRawData()
		if err != nil {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "too large"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	t.Run("within limit", func(t *testing.T) {
		w := post(router, "/echo", "12345")
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})

	t.Run("over limit", func(t *testing.T) {
		w := post(router, "/echo", "01234567890")
		if w.Code != http.StatusRequestEntityTooLarge {
			t.Fatalf("expected 413, got %d", w.Code)
		}
	})
}

func TestPredictDiabetes(t *testing.T) {
	router := newTestRouter(t, Options{Renderer: report.NewPDFRenderer()})

	w := post(router, "/api/v1/diabetes/predict", diabetesBody)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var payload struct {
		Disease         string    `json:"disease"`
		Label           int       `json:"label"`
		Probability     float64   `json:"probability"`
		RiskPercent     float64   `json:"riskPercent"`
		Prediction      string    `json:"prediction"`
		Features        []float64 `json:"features"`
		ReportAvailable bool      `json:"reportAvailable"`
		BMI             *float64  `json:"bmi"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if payload.Disease != "diabetes" || payload.Label != 1 || payload.Probability != 0.8765 {
		t.Fatalf("unexpected payload %+v", payload)
	}
	if payload.Prediction != report.HighRisk || !payload.ReportAvailable || payload.BMI != nil {
		t.Fatalf("unexpected payload %+v", payload)
	}
	want := []float64{30, 0, 0, 25, 5.5, 100, 0, 0, 0, 0, 0, 1, 0}
	for i := range want {
		if payload.Features[i] != want[i] {
			t.Fatalf("feature %d: expected %v, got %v", i, want[i], payload.Features[i])
		}
	}
}

func TestPredictHeartDefaultsActive(t *testing.T) {
	router := newTestRouter(t, Options{})

	w := post(router, "/api/v1/heart/predict", heartBody)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var payload struct {
		BMI             float64   `json:"bmi"`
		Features        []float64 `json:"features"`
		ReportAvailable bool      `json:"reportAvailable"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if payload.BMI < 24.2 || payload.BMI > 24.25 {
		t.Fatalf("expected bmi ~24.22, got %v", payload.BMI)
	}
	if payload.Features[2] != 1 || payload.Features[11] != 1 {
		t.Fatalf("expected male code and active default, got %v", payload.Features)
	}
	if payload.ReportAvailable {
		t.Fatal("expected no report without renderer")
	}
}

func TestPredictValidation(t *testing.T) {
	router := newTestRouter(t, Options{})

	w := post(router, "/api/v1/heart/predict", `{
		"age": 45,
		"gender": "Male",
		"heightCm": 170,
		"weightKg": 70,
		"systolicBp": 20,
		"diastolicBp": 80,
		"cholesterol": 200,
		"glucose": 100
	}`)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for validation failure, got %d", w.Code)
	}
	body := strings.ToLower(w.Body.String())
	if !strings.Contains(body, "validation_failed") || !strings.Contains(body, "blood pressure") {
		t.Fatalf("expected validation error response, got %s", w.Body.String())
	}
}

func TestPredictRejectsUnknownCategory(t *testing.T) {
	router := newTestRouter(t, Options{})
	body := strings.Replace(diabetesBody, `"never"`, `"sometimes"`, 1)

	w := post(router, "/api/v1/diabetes/predict", body)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "smokingHistory") {
		t.Fatalf("expected smokingHistory field error, got %s", w.Body.String())
	}
}

func TestPredictHeartRejectsOtherGender(t *testing.T) {
	router := newTestRouter(t, Options{})
	body := strings.Replace(heartBody, `"Male"`, `"Other"`, 1)

	w := post(router, "/api/v1/heart/predict", body)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"field":"gender"`) {
		t.Fatalf("expected gender field error, got %s", w.Body.String())
	}
}

func TestPredictInvalidPayload(t *testing.T) {
	router := newTestRouter(t, Options{})
	w := post(router, "/api/v1/diabetes/predict", `{"age": "thirty"`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestPredictFailureIs500(t *testing.T) {
	engine := newEngine(t, fixedModel{err: artifact.ErrShapeMismatch})
	router := newTestRouter(t, Options{Engine: engine})

	w := post(router, "/api/v1/diabetes/predict", diabetesBody)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "prediction_failed") {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestPredictNaNProbabilityIs500(t *testing.T) {
	engine := newEngine(t, fixedModel{label: 1, proba: math.NaN()})
	router := newTestRouter(t, Options{Engine: engine})

	w := post(router, "/api/v1/diabetes/predict", diabetesBody)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d: %q", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "prediction_failed") {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestDownloadReport(t *testing.T) {
	router := newTestRouter(t, Options{Renderer: report.NewPDFRenderer()})

	w := post(router, "/api/v1/heart/report", heartBody)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("expected application/pdf, got %s", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "Heart_Disease_Report_Unknown.pdf") {
		t.Fatalf("unexpected content disposition %q", cd)
	}
	if !strings.HasPrefix(w.Body.String(), "%PDF-") {
		t.Fatal("expected pdf body")
	}

	w = post(router, "/api/v1/diabetes/report", diabetesBody)
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "Diabetes_Report_Jane_Doe.pdf") {
		t.Fatalf("unexpected content disposition %q", cd)
	}
}

func TestDownloadReportNonASCIIName(t *testing.T) {
	router := newTestRouter(t, Options{Renderer: report.NewPDFRenderer()})
	body := strings.Replace(diabetesBody, `"Jane Doe"`, `"José Núñez"`, 1)

	w := post(router, "/api/v1/diabetes/report", body)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	cd := w.Header().Get("Content-Disposition")
	if !strings.Contains(cd, "filename*=utf-8''") {
		t.Fatalf("expected extended filename parameter, got %q", cd)
	}
	_, params, err := mime.ParseMediaType(cd)
	if err != nil {
		t.Fatalf("parse content disposition: %v", err)
	}
	if params["filename"] != "Diabetes_Report_José_Núñez.pdf" {
		t.Fatalf("unexpected filename %q", params["filename"])
	}
}

func TestDownloadReportUnavailable(t *testing.T) {
	for name, renderer := range map[string]report.Renderer{
		"disabled": nil,
		"failing":  failingRenderer{},
	} {
		t.Run(name, func(t *testing.T) {
			router := newTestRouter(t, Options{Renderer: renderer})
			w := post(router, "/api/v1/diabetes/report", diabetesBody)
			if w.Code != http.StatusNotFound {
				t.Fatalf("expected 404, got %d", w.Code)
			}
			if !strings.Contains(w.Body.String(), "report_unavailable") {
				t.Fatalf("unexpected body: %s", w.Body.String())
			}
		})
	}
}

func TestRouterServesForm(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "index.html"), []byte("<h1>Disease Prediction System</h1>"), 0o600); err != nil {
		t.Fatalf("write index: %v", err)
	}
	router := newTestRouter(t, Options{StaticRoot: root})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Disease Prediction System") {
		t.Fatalf("unexpected response %d: %s", w.Code, w.Body.String())
	}
}
