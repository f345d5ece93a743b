package handlers

import (
	"fmt"
	"strings"
	"testing"

	"github.com/eaas-dev/eaas-backend/internal/types"
)

func criteriaWithWeights(weights ...float64) []types.Criterion {
	out := make([]types.Criterion, 0, len(weights))
	for i, w := range weights {
		out = append(out, types.Criterion{
			ID:     fmt.Sprintf("crit_%d", i),
			Name:   "criterion",
			Weight: w,
			Scale:  types.CriterionScale{Min: 1, Max: 5},
		})
	}
	return out
}

func TestValidateCriteriaWeights(t *testing.T) {
	tests := []struct {
		name    string
		weights []float64
		wantErr bool
	}{
		{"sums to 100", []float64{40, 30, 20, 10}, false},
		{"sums short", []float64{40, 30, 20, 5}, true},
		{"sums over", []float64{60, 50}, true},
		{"single full weight", []float64{100}, false},
		{"float parts", []float64{33.33, 33.33, 33.34}, false},
		{"negative", []float64{110, -10}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := validateCriteriaWeights(criteriaWithWeights(tc.weights...))
			if (err != nil) != tc.wantErr {
				t.Fatalf("validateCriteriaWeights(%v) err = %v, wantErr %v", tc.weights, err, tc.wantErr)
			}
			if err != nil && !strings.Contains(err.Error(), "100") {
				if !strings.Contains(err.Error(), "negative") {
					t.Fatalf("error does not name the required total: %v", err)
				}
			}
		})
	}
}

func TestValidateExperimentInput(t *testing.T) {
	if err := validateExperimentInput(types.CreateExperimentInput{Name: "ok"}); err != nil {
		t.Fatalf("valid input rejected: %v", err)
	}
	if err := validateExperimentInput(types.CreateExperimentInput{Name: "  "}); err == nil {
		t.Fatal("blank name accepted")
	}
	if err := validateExperimentInput(types.CreateExperimentInput{Name: strings.Repeat("x", 101)}); err == nil {
		t.Fatal("overlong name accepted")
	}
	if err := validateExperimentInput(types.CreateExperimentInput{
		Name:        "ok",
		Description: strings.Repeat("d", 501),
	}); err == nil {
		t.Fatal("overlong description accepted")
	}
}

func TestValidateRubricInput(t *testing.T) {
	valid := types.CreateRubricInput{
		Name:     "Support Quality",
		Category: types.RubricCategoryCustom,
		Criteria: criteriaWithWeights(50, 50),
	}
	if err := validateRubricInput(valid); err != nil {
		t.Fatalf("valid rubric rejected: %v", err)
	}

	noCriteria := valid
	noCriteria.Criteria = nil
	if err := validateRubricInput(noCriteria); err == nil {
		t.Fatal("rubric without criteria accepted")
	}

	unnamed := valid
	unnamed.Criteria = criteriaWithWeights(100)
	unnamed.Criteria[0].Name = ""
	if err := validateRubricInput(unnamed); err == nil {
		t.Fatal("unnamed criterion accepted")
	}
}
