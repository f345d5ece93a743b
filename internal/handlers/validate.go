package handlers

import (
	"fmt"
	"math"
	"strings"

	"github.com/eaas-dev/eaas-backend/internal/types"
)

const (
	maxNameLength        = 100
	maxDescriptionLength = 500
	requiredWeightTotal  = 100.0
)

// Validation lives at the request boundary; the registries store whatever
// they are handed.

func validateExperimentInput(input types.CreateExperimentInput) error {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return fmt.Errorf("experiment name is required")
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("experiment name must be %d characters or fewer", maxNameLength)
	}
	if len(strings.TrimSpace(input.Description)) > maxDescriptionLength {
		return fmt.Errorf("description must be %d characters or fewer", maxDescriptionLength)
	}
	return nil
}

func validateRubricInput(input types.CreateRubricInput) error {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return fmt.Errorf("rubric name is required")
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("rubric name must be %d characters or fewer", maxNameLength)
	}
	if len(input.Criteria) == 0 {
		return fmt.Errorf("at least one criterion is required")
	}
	for _, criterion := range input.Criteria {
		if strings.TrimSpace(criterion.Name) == "" {
			return fmt.Errorf("criterion name is required")
		}
	}
	return validateCriteriaWeights(input.Criteria)
}

// validateCriteriaWeights requires the weights to total exactly 100, within
// float tolerance.
func validateCriteriaWeights(criteria []types.Criterion) error {
	var sum float64
	for _, criterion := range criteria {
		if criterion.Weight < 0 {
			return fmt.Errorf("criterion weights cannot be negative")
		}
		sum += criterion.Weight
	}
	if math.Abs(sum-requiredWeightTotal) > 0.001 {
		return fmt.Errorf("criteria weights must total %v, got %v", requiredWeightTotal, sum)
	}
	return nil
}
