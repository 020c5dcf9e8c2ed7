package model_test

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diabetesguard/backend/internal/domain"
	"github.com/diabetesguard/backend/internal/locate"
	"github.com/diabetesguard/backend/internal/model"
	"github.com/diabetesguard/backend/internal/model/modeltest"
)

func TestLoadDirDecisionTree(t *testing.T) {
	dir := t.TempDir()
	modeltest.WriteBundle(t, dir, modeltest.Options{})

	b, err := model.LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, modeltest.Columns, b.Columns)
	assert.Equal(t, model.KindDecisionTree, b.Classifier.Kind)
	assert.Nil(t, b.Imputer)
	assert.Equal(t, "diabetes_model", b.Manifest.ModelName)
	assert.Equal(t, 9, b.Width())
}

func TestPredictProbaWalksTree(t *testing.T) {
	dir := t.TempDir()
	modeltest.WriteBundle(t, dir, modeltest.Options{})
	b, err := model.LoadDir(dir)
	require.NoError(t, err)

	cases := []struct {
		name    string
		glucose float64
		bmi     float64
		want    float64
	}{
		{"low glucose", 90, 35, 0.10},
		{"high glucose normal bmi", 150, 24, 0.50},
		{"high glucose high bmi", 150, 33, 0.75},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			x := make([]float64, 9)
			x[2], x[4] = tc.bmi, tc.glucose
			scaled, err := b.Scaler.Transform(x)
			require.NoError(t, err)

			proba, err := b.Classifier.PredictProba(scaled)
			require.NoError(t, err)
			assert.InDelta(t, tc.want, proba[b.Classifier.PositiveIndex()], 1e-9)
			assert.InDelta(t, 1.0, proba[0]+proba[1], 1e-9)
		})
	}
}

func TestPredictProbaAveragesForest(t *testing.T) {
	dir := t.TempDir()
	modeltest.WriteBundle(t, dir, modeltest.Options{Forest: true})
	b, err := model.LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, model.KindRandomForest, b.Classifier.Kind)

	x := make([]float64, 9)
	x[2], x[4] = 33, 150
	scaled, err := b.Scaler.Transform(x)
	require.NoError(t, err)
	proba, err := b.Classifier.PredictProba(scaled)
	require.NoError(t, err)
	assert.InDelta(t, (0.75+0.25)/2, proba[1], 1e-9)
}

func TestPredictProbaRejectsWrongWidth(t *testing.T) {
	dir := t.TempDir()
	modeltest.WriteBundle(t, dir, modeltest.Options{})
	b, err := model.LoadDir(dir)
	require.NoError(t, err)

	_, err = b.Classifier.PredictProba(make([]float64, 3))
	require.Error(t, err)
}

func TestLoadDirWithImputerAndManifest(t *testing.T) {
	dir := t.TempDir()
	modeltest.WriteBundle(t, dir, modeltest.Options{
		Imputer: true,
		Manifest: map[string]any{
			"format_version": "1.2.0",
			"model_name":     "rf-2025-02",
			"age_risk_edges": []float64{18, 35, 50, 65, 90},
		},
	})

	b, err := model.LoadDir(dir)
	require.NoError(t, err)
	require.NotNil(t, b.Imputer)
	assert.Equal(t, "rf-2025-02", b.Manifest.ModelName)
	assert.Equal(t, []float64{18, 35, 50, 65, 90}, b.Manifest.AgeRiskEdges)
	assert.Equal(t, "scaler.json", b.Manifest.Files.Scaler)
}

func TestLoadDirRejectsUnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	modeltest.WriteBundle(t, dir, modeltest.Options{
		Manifest: map[string]any{"format_version": "2.0.0"},
	})

	_, err := model.LoadDir(dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrLoad))
	assert.Contains(t, err.Error(), "not supported")
}

func TestLoadDirMissingScaler(t *testing.T) {
	dir := t.TempDir()
	modeltest.WriteBundle(t, dir, modeltest.Options{Skip: []string{"scaler.json"}})

	_, err := model.LoadDir(dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrArtifactNotFound))
	assert.Contains(t, err.Error(), filepath.Join(dir, "scaler.json"))
}

func TestLoadDirSchemaWidthMismatch(t *testing.T) {
	dir := t.TempDir()
	modeltest.WriteBundle(t, dir, modeltest.Options{Columns: []string{"Age", "BMI"}})

	_, err := model.LoadDir(dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrLoad))
	assert.True(t, errors.Is(err, domain.ErrSchemaMismatch))
}

func TestLoadDirCorruptModel(t *testing.T) {
	dir := t.TempDir()
	modeltest.WriteBundle(t, dir, modeltest.Options{})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "diabetes_model.json"), []byte("{not json"), 0o644))

	_, err := model.LoadDir(dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrLoad))
}

func TestLoadDirRejectsCyclicTree(t *testing.T) {
	dir := t.TempDir()
	modeltest.WriteBundle(t, dir, modeltest.Options{})
	bad := `{"kind":"decision_tree","n_features":9,"classes":[0,1],"estimators":[{"nodes":[
		{"feature":0,"threshold":1,"left":0,"right":1,"value":[0,0]},
		{"feature":-2,"threshold":-2,"left":-1,"right":-1,"value":[1,1]}]}]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "diabetes_model.json"), []byte(bad), 0o644))

	_, err := model.LoadDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out-of-range children")
}

func TestLoadProbesAllCandidates(t *testing.T) {
	root := t.TempDir()
	candidates := []string{filepath.Join(root, "a", "models"), filepath.Join(root, "b", "models")}

	_, err := model.Load(locate.Locator{Kind: "models directory", Candidates: candidates})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrArtifactNotFound))

	var nf *locate.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, candidates, nf.Probed)
}

func TestCacheRetriesUntilFirstSuccess(t *testing.T) {
	dir := t.TempDir()
	calls := 0
	cache := model.NewCache(func() (*model.Bundle, error) {
		calls++
		return model.LoadDir(dir)
	})

	_, err := cache.Get()
	require.Error(t, err)
	assert.False(t, cache.Loaded())

	modeltest.WriteBundle(t, dir, modeltest.Options{})
	first, err := cache.Get()
	require.NoError(t, err)
	assert.True(t, cache.Loaded())

	second, err := cache.Get()
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 2, calls)
}

func TestCacheConcurrentGet(t *testing.T) {
	dir := t.TempDir()
	modeltest.WriteBundle(t, dir, modeltest.Options{})
	cache := model.NewCache(func() (*model.Bundle, error) { return model.LoadDir(dir) })

	var wg sync.WaitGroup
	results := make([]*model.Bundle, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b, err := cache.Get()
			if err == nil {
				results[i] = b
			}
		}(i)
	}
	wg.Wait()

	for _, b := range results {
		assert.Same(t, results[0], b)
	}
}
