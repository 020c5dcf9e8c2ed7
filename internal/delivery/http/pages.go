package http

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"math"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/diabetesguard/backend/internal/dataset"
	"github.com/diabetesguard/backend/internal/domain"
	"github.com/diabetesguard/backend/internal/features"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"home", "predict", "analytics"}

// pageSet holds one template per page, each parsed together with the layout
type pageSet struct {
	pages map[string]*template.Template
}

var templateFuncs = template.FuncMap{
	"percent": func(p float64) string { return fmt.Sprintf("%.1f%%", p*100) },
	"fixed1":  func(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) },
	"fixed2":  func(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) },
	"corrStyle": func(r float64) template.CSS {
		// blue for positive, red for negative
		a := math.Min(math.Abs(r), 1)
		if r >= 0 {
			return template.CSS(fmt.Sprintf("background: rgba(33, 102, 172, %.2f)", a))
		}
		return template.CSS(fmt.Sprintf("background: rgba(178, 24, 43, %.2f)", a))
	},
}

func mustParsePages() *pageSet {
	ps := &pageSet{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		t := template.Must(template.New("layout.html").Funcs(templateFuncs).
			ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html"))
		ps.pages[name] = t
	}
	return ps
}

// render executes a page into a buffer first so a template error never
// leaves a half-written response.
func (h *Handler) render(c *fiber.Ctx, status int, page string, data any) error {
	t, ok := h.pages.pages[page]
	if !ok {
		return fmt.Errorf("http: unknown page %q", page)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("http: render %s: %w", page, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Status(status).Send(buf.Bytes())
}

type homeView struct {
	Active   string
	Summary  domain.DatasetSummary
	HasStats bool
}

// HomePage renders the landing page with dataset insights
func (h *Handler) HomePage(c *fiber.Ctx) error {
	v := homeView{Active: "home"}
	summary, err := h.dashboardSvc.GetSummary(c.Context())
	if err != nil {
		h.log.Warn("dataset insights unavailable", zap.Error(err))
	} else {
		v.Summary, v.HasStats = summary, true
	}
	return h.render(c, fiber.StatusOK, "home", v)
}

type resultView struct {
	Label           string
	Level           string
	Probability     float64
	Width           string
	Recommendations []domain.Recommendation
	Defaulted       []string
	RequestID       string
}

type predictView struct {
	Active   string
	Values   map[string]string
	Genders  []string
	Smoking  []string
	Stress   []string
	Error    string
	Problems []string
	Result   *resultView
}

// form field name -> default value
var formDefaults = map[string]string{
	"age":            "30",
	"gender":         string(domain.GenderMale),
	"bmi":            "25.0",
	"blood_pressure": "120",
	"glucose_level":  "100",
	"exercise_hours": "3.0",
	"smoking_status": string(domain.SmokingNever),
	"alcohol":        "0",
	"stress_level":   string(domain.StressLow),
}

func newPredictView(values map[string]string) predictView {
	return predictView{
		Active:  "predict",
		Values:  values,
		Genders: features.Categories(domain.ColumnGender),
		Smoking: features.Categories(domain.ColumnSmokingStatus),
		Stress:  features.Categories(domain.ColumnStressLevel),
	}
}

// PredictPage renders the empty prediction form
func (h *Handler) PredictPage(c *fiber.Ctx) error {
	values := make(map[string]string, len(formDefaults))
	for k, v := range formDefaults {
		values[k] = v
	}
	return h.render(c, fiber.StatusOK, "predict", newPredictView(values))
}

// PredictSubmit handles the form post and renders the assessment
func (h *Handler) PredictSubmit(c *fiber.Ctx) error {
	values := make(map[string]string, len(formDefaults))
	for k := range formDefaults {
		values[k] = strings.TrimSpace(c.FormValue(k))
	}
	view := newPredictView(values)

	req, err := parseForm(values)
	if err == nil {
		err = h.validate.Struct(req)
	}
	if err != nil {
		e := classify(err)
		view.Error = "Please check your inputs: all values must be numbers within the ranges shown."
		if fields, ok := e.Detail.([]FieldError); ok {
			for _, f := range fields {
				view.Problems = append(view.Problems, fmt.Sprintf("%s is out of range (%s %s)", f.Field, f.Rule, f.Param))
			}
		} else {
			view.Problems = append(view.Problems, e.Message)
		}
		return h.render(c, e.Code, "predict", view)
	}

	resp, err := h.predictionSvc.Predict(c.Context(), req)
	if err != nil {
		e := classify(err)
		h.log.Error("prediction failed", zap.Int("status", e.Code), zap.Error(err))
		view.Error = "An error occurred while making the prediction. Please try again later."
		return h.render(c, e.Code, "predict", view)
	}

	view.Result = &resultView{
		Label:           resp.RiskLevel.Label(),
		Level:           strings.ToLower(strings.ReplaceAll(string(resp.RiskLevel), " ", "-")),
		Probability:     resp.Probability,
		Width:           strconv.FormatFloat(resp.Probability*100, 'f', 1, 64),
		Recommendations: h.predictionSvc.Recommendations(req),
		Defaulted:       resp.DefaultedFeatures,
		RequestID:       resp.RequestID,
	}
	return h.render(c, fiber.StatusOK, "predict", view)
}

// parseForm converts form values to a request. Empty numeric fields stay nil.
func parseForm(values map[string]string) (domain.PredictionRequest, error) {
	req := domain.PredictionRequest{
		Gender:        values["gender"],
		SmokingStatus: values["smoking_status"],
		StressLevel:   values["stress_level"],
	}
	numeric := []struct {
		key    string
		column string
		dst    **float64
	}{
		{"age", domain.ColumnAge, &req.Age},
		{"bmi", domain.ColumnBMI, &req.BMI},
		{"blood_pressure", domain.ColumnBloodPressure, &req.BloodPressure},
		{"glucose_level", domain.ColumnGlucoseLevel, &req.GlucoseLevel},
		{"exercise_hours", domain.ColumnExerciseHours, &req.ExerciseHours},
		{"alcohol", domain.ColumnAlcohol, &req.Alcohol},
	}
	for _, f := range numeric {
		raw := values[f.key]
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return req, &features.MalformedInputError{Column: f.column, Value: raw}
		}
		*f.dst = &v
	}
	return req, nil
}

type bar struct {
	Label  string
	Count  int
	Height string
}

type analyticsView struct {
	Active      string
	Data        domain.DashboardData
	Error       string
	Features    []string
	Feature     string
	Description string
	Normal      string
	Bars        []bar
}

// AnalyticsPage renders the dashboard
func (h *Handler) AnalyticsPage(c *fiber.Ctx) error {
	v := analyticsView{Active: "analytics"}

	data, err := h.dashboardSvc.GetDashboardData(c.Context())
	if err != nil {
		e := classify(err)
		h.log.Error("analytics unavailable", zap.Error(err))
		v.Error = "The dataset could not be loaded. Make sure the dataset file exists, is readable and is not corrupted."
		return h.render(c, e.Code, "analytics", v)
	}
	v.Data = data

	cols, err := h.dashboardSvc.NumericColumns(c.Context())
	if err != nil {
		return err
	}
	v.Features = cols
	v.Feature = c.Query("feature", domain.ColumnAge)
	if !contains(cols, v.Feature) && len(cols) > 0 {
		v.Feature = cols[0]
	}
	v.Description = data.Reference.Descriptions[v.Feature]
	if r, ok := data.Reference.Ranges[v.Feature]; ok {
		v.Normal = r.Normal
	}

	if v.Feature != "" {
		hist, err := h.dashboardSvc.GetDistribution(c.Context(), v.Feature, dataset.DefaultBins)
		if err != nil {
			return err
		}
		v.Bars = toBars(hist)
	}
	return h.render(c, fiber.StatusOK, "analytics", v)
}

func toBars(h domain.Histogram) []bar {
	peak := 0
	for _, n := range h.Counts {
		if n > peak {
			peak = n
		}
	}
	bars := make([]bar, len(h.Counts))
	for i, n := range h.Counts {
		height := 0.0
		if peak > 0 {
			height = float64(n) / float64(peak) * 100
		}
		bars[i] = bar{
			Label:  fmt.Sprintf("%.1f–%.1f", h.Edges[i], h.Edges[i+1]),
			Count:  n,
			Height: strconv.FormatFloat(height, 'f', 1, 64),
		}
	}
	return bars
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
