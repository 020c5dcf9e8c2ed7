package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/diabetesguard/backend/internal/dataset"
	"github.com/diabetesguard/backend/internal/features"
	"github.com/diabetesguard/backend/internal/locate"
	"github.com/diabetesguard/backend/internal/model"
	"github.com/diabetesguard/backend/internal/model/modeltest"
	"github.com/diabetesguard/backend/internal/repository/postgres"
	"github.com/diabetesguard/backend/internal/service"
)

const testCSV = `Age,Gender,BMI,Blood_Pressure,Glucose_Level,Exercise_Hours_Per_Week,Smoking_Status,Alcohol_Consumption_Per_Week,Stress_Level,Diabetes_Diagnosis
30,Male,22.0,110,90,5,Never,0,Low,0
50,Female,31.0,145,140,1,Current,15,High,1
40,Male,,120,100,3,Former,2,Moderate,0
60,Female,28.0,135,150,2,Never,1,Low,1
`

const highRiskJSON = `{"Age":50,"Gender":"Male","BMI":32,"Blood_Pressure":145,"Glucose_Level":130,
"Exercise_Hours_Per_Week":1,"Smoking_Status":"Current","Alcohol_Consumption_Per_Week":15,"Stress_Level":"High"}`

type testEnv struct {
	app        *fiber.App
	prediction *service.PredictionService
}

type envOptions struct {
	noModel   bool
	noDataset bool
}

func setup(t *testing.T, opts envOptions) testEnv {
	t.Helper()
	root := t.TempDir()

	modelDir := filepath.Join(root, "models")
	if !opts.noModel {
		require.NoError(t, os.MkdirAll(modelDir, 0o755))
		modeltest.WriteBundle(t, modelDir, modeltest.Options{})
	}
	models := model.NewCache(func() (*model.Bundle, error) {
		return model.Load(locate.Locator{Kind: "models directory", Candidates: []string{modelDir}})
	})

	csvPath := filepath.Join(root, "diabetes_dataset.csv")
	if !opts.noDataset {
		require.NoError(t, os.WriteFile(csvPath, []byte(testCSV), 0o644))
	}
	loadDataset := func() (*dataset.Dataset, error) {
		return dataset.Find(locate.Locator{Kind: "diabetes_dataset.csv", Candidates: []string{csvPath}})
	}

	log := zap.NewNop()
	predictionSvc := service.NewPredictionService(models, postgres.NewMockRepository(), features.Options{}, log)
	dashboardSvc := service.NewDashboardService(loadDataset, nil, time.Minute, log)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(log)})
	SetupRoutes(app, predictionSvc, dashboardSvc, log)
	t.Cleanup(predictionSvc.WaitBackground)
	return testEnv{app: app, prediction: predictionSvc}
}

func do(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, string) {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func postJSON(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func postForm(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func decode(t *testing.T, body string) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &m), body)
	return m
}

func TestHealthCheck(t *testing.T) {
	env := setup(t, envOptions{})

	resp, body := do(t, env.app, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	m := decode(t, body)
	assert.Equal(t, "degraded", m["status"], "model not loaded yet")

	resp, _ = do(t, env.app, postJSON("/api/v1/predict", highRiskJSON))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, body = do(t, env.app, httptest.NewRequest(http.MethodGet, "/health", nil))
	m = decode(t, body)
	assert.Equal(t, "ok", m["status"])
	assert.Equal(t, true, m["model"].(map[string]any)["loaded"])
}

func TestPredictAPI(t *testing.T) {
	env := setup(t, envOptions{})

	resp, body := do(t, env.app, postJSON("/api/v1/predict", highRiskJSON))
	require.Equal(t, http.StatusOK, resp.StatusCode, body)

	data := decode(t, body)["data"].(map[string]any)
	assert.Equal(t, "Very High", data["risk_level"])
	assert.InDelta(t, 0.75, data["probability"], 1e-9)
	assert.Equal(t, true, data["prediction"])
	assert.Len(t, data["recommendations"], 8)
	assert.NotEmpty(t, data["request_id"])
	assert.Nil(t, data["defaulted_features"])
}

func TestPredictAPIReportsDefaultedFeatures(t *testing.T) {
	env := setup(t, envOptions{})

	resp, body := do(t, env.app, postJSON("/api/v1/predict", `{"Glucose_Level": 90}`))
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	data := decode(t, body)["data"].(map[string]any)
	assert.Len(t, data["defaulted_features"], 8)
	assert.Equal(t, "Low", data["risk_level"])
}

func TestPredictAPIValidation(t *testing.T) {
	env := setup(t, envOptions{})

	resp, body := do(t, env.app, postJSON("/api/v1/predict", `{"BMI": 5, "Age": 40}`))
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	m := decode(t, body)
	assert.Equal(t, true, m["error"])
	assert.Equal(t, "Validation failed", m["message"])
	detail := m["detail"].([]any)
	require.Len(t, detail, 1)
	assert.Equal(t, "BMI", detail[0].(map[string]any)["field"])

	resp, _ = do(t, env.app, postJSON("/api/v1/predict", `{"BMI": "thirty"`))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPredictAPIModelUnavailable(t *testing.T) {
	env := setup(t, envOptions{noModel: true})

	resp, body := do(t, env.app, postJSON("/api/v1/predict", highRiskJSON))
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	m := decode(t, body)
	assert.Equal(t, "Prediction model is unavailable", m["message"])
	probed := m["detail"].(map[string]any)["probed"].([]any)
	assert.Len(t, probed, 1)
}

func TestRecommendationsAPIWorksWithoutModel(t *testing.T) {
	env := setup(t, envOptions{noModel: true})

	resp, body := do(t, env.app, postJSON("/api/v1/recommendations", highRiskJSON))
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	data := decode(t, body)["data"].(map[string]any)
	assert.Len(t, data["recommendations"], 8)
	texts := data["texts"].([]any)
	assert.True(t, strings.HasPrefix(texts[len(texts)-1].(string), "🌟 General Health Tips:"))
}

func TestDashboardAPI(t *testing.T) {
	env := setup(t, envOptions{})

	resp, body := do(t, env.app, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	summary := decode(t, body)["data"].(map[string]any)["summary"].(map[string]any)
	assert.Equal(t, float64(4), summary["records"])
	assert.Equal(t, 50.0, summary["diabetes_rate_percent"])
	assert.Equal(t, true, summary["has_missing_data"])

	resp, body = do(t, env.app, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/distribution/Age?bins=3", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	counts := decode(t, body)["data"].(map[string]any)["counts"].([]any)
	assert.Equal(t, []any{1.0, 1.0, 2.0}, counts)

	resp, _ = do(t, env.app, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/distribution/Height", nil))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = do(t, env.app, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/distribution/Age?bins=0", nil))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = do(t, env.app, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/correlation", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cols := decode(t, body)["data"].(map[string]any)["columns"].([]any)
	assert.Len(t, cols, 7)

	resp, body = do(t, env.app, httptest.NewRequest(http.MethodGet, "/api/v1/reference", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "High Blood Glucose")
}

func TestDashboardExport(t *testing.T) {
	env := setup(t, envOptions{})

	resp, body := do(t, env.app, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/export", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "spreadsheetml")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "diabetes_dashboard.xlsx")
	assert.True(t, strings.HasPrefix(body, "PK"))
}

func TestDashboardAPIDatasetUnavailable(t *testing.T) {
	env := setup(t, envOptions{noDataset: true})

	resp, body := do(t, env.app, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil))
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "Dataset is unavailable", decode(t, body)["message"])
}

func TestRecentPredictions(t *testing.T) {
	env := setup(t, envOptions{})
	for i := 0; i < 3; i++ {
		resp, _ := do(t, env.app, postJSON("/api/v1/predict", highRiskJSON))
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	env.prediction.WaitBackground()

	resp, body := do(t, env.app, httptest.NewRequest(http.MethodGet, "/api/v1/predictions/recent?limit=2", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	m := decode(t, body)
	assert.Equal(t, float64(2), m["count"])
}

func TestHomePage(t *testing.T) {
	env := setup(t, envOptions{})

	resp, body := do(t, env.app, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, body, "45.0 years")
	assert.Contains(t, body, "50.0%")
}

func TestHomePageWithoutDataset(t *testing.T) {
	env := setup(t, envOptions{noDataset: true})

	resp, body := do(t, env.app, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Dataset insights are currently unavailable")
}

func TestPredictPageForm(t *testing.T) {
	env := setup(t, envOptions{})

	resp, body := do(t, env.app, httptest.NewRequest(http.MethodGet, "/predict", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `name="glucose_level"`)
	assert.Contains(t, body, `<option selected>Never</option>`)
	assert.NotContains(t, body, "Risk Assessment")
}

func validForm() url.Values {
	return url.Values{
		"age": {"50"}, "gender": {"Male"}, "bmi": {"32"}, "blood_pressure": {"145"},
		"glucose_level": {"130"}, "exercise_hours": {"1"}, "smoking_status": {"Current"},
		"alcohol": {"15"}, "stress_level": {"High"},
	}
}

func TestPredictPageSubmit(t *testing.T) {
	env := setup(t, envOptions{})

	resp, body := do(t, env.app, postForm("/predict", validForm()))
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Contains(t, body, "Very High Risk")
	assert.Contains(t, body, "75.0%")
	assert.Contains(t, body, `id="rec-weight_management"`)
	assert.Contains(t, body, `id="rec-general_health"`)
}

func TestPredictPageRejectsBadInput(t *testing.T) {
	env := setup(t, envOptions{})

	form := validForm()
	form.Set("age", "abc")
	resp, body := do(t, env.app, postForm("/predict", form))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "Please check your inputs")
	assert.Contains(t, body, `value="abc"`)

	form = validForm()
	form.Set("glucose_level", "900")
	resp, body = do(t, env.app, postForm("/predict", form))
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "GlucoseLevel is out of range")
}

func TestPredictPageModelUnavailable(t *testing.T) {
	env := setup(t, envOptions{noModel: true})

	resp, body := do(t, env.app, postForm("/predict", validForm()))
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, body, "An error occurred while making the prediction")
	assert.NotContains(t, body, "not found in any of", "probed paths are not shown to users")
}

func TestAnalyticsPage(t *testing.T) {
	env := setup(t, envOptions{})

	resp, body := do(t, env.app, httptest.NewRequest(http.MethodGet, "/analytics?feature=BMI", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Distribution of BMI")
	assert.Contains(t, body, "Normal range for BMI: 18.5-24.9")
	assert.Contains(t, body, "BMI: 1 missing values")
	assert.Contains(t, body, "High Blood Glucose")

	resp, body = do(t, env.app, httptest.NewRequest(http.MethodGet, "/analytics?feature=Nope", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Distribution of Age")
}

func TestAnalyticsPageWithoutDataset(t *testing.T) {
	env := setup(t, envOptions{noDataset: true})

	resp, body := do(t, env.app, httptest.NewRequest(http.MethodGet, "/analytics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, body, "The dataset could not be loaded")
}
