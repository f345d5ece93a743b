package types

import "time"

type ExperimentStatus string

const (
	ExperimentStatusActive    ExperimentStatus = "active"
	ExperimentStatusInactive  ExperimentStatus = "inactive"
	ExperimentStatusCompleted ExperimentStatus = "completed"
)

// Experiment groups evaluation runs against a model/dataset. Timestamps are
// ISO-8601 strings on the wire; updated_at is refreshed on every mutation.
type Experiment struct {
	ID                  string           `json:"id"`
	Name                string           `json:"name"`
	Description         string           `json:"description"`
	Status              ExperimentStatus `json:"status"`
	CreatedAt           string           `json:"created_at"`
	UpdatedAt           string           `json:"updated_at"`
	EvaluationRunsCount int              `json:"evaluation_runs_count"`
}

type CreateExperimentInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ExperimentUpdate carries partial updates; nil fields are left untouched.
type ExperimentUpdate struct {
	Name                *string           `json:"name,omitempty"`
	Description         *string           `json:"description,omitempty"`
	Status              *ExperimentStatus `json:"status,omitempty"`
	EvaluationRunsCount *int              `json:"evaluation_runs_count,omitempty"`
}

func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
