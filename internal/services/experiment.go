package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/eaas-dev/eaas-backend/internal/logger"
	"github.com/eaas-dev/eaas-backend/internal/store"
	"github.com/eaas-dev/eaas-backend/internal/types"
)

const experimentsCollection = "eaas_experiments"

// ExperimentService is the experiment registry. It performs no input
// validation; the request boundary owns that, the registry stores what it is
// given. Not-found is nil/false, never an error.
type ExperimentService interface {
	List(ctx context.Context, userID string) []types.Experiment
	Create(ctx context.Context, userID string, input types.CreateExperimentInput) types.Experiment
	Get(ctx context.Context, userID, id string) *types.Experiment
	Update(ctx context.Context, userID, id string, update types.ExperimentUpdate) *types.Experiment
	Delete(ctx context.Context, userID, id string) bool
	IncrementRunCount(ctx context.Context, userID, id string)
	Export(ctx context.Context, userID string) (string, error)
	Import(ctx context.Context, userID, payload string) bool
	ClearAll(ctx context.Context, userID string) error
}

type experimentService struct {
	kv  store.KV
	log *logger.Logger
	now func() time.Time
}

func NewExperimentService(kv store.KV, log *logger.Logger) ExperimentService {
	return &experimentService{
		kv:  kv,
		log: log.With("service", "ExperimentService"),
		now: time.Now,
	}
}

func (es *experimentService) collection(userID string) *store.Collection[types.Experiment] {
	return store.NewCollection[types.Experiment](es.kv, es.log, store.Key(experimentsCollection, userID), defaultExperiments)
}

func (es *experimentService) List(ctx context.Context, userID string) []types.Experiment {
	return es.collection(userID).Load(ctx)
}

func (es *experimentService) Create(ctx context.Context, userID string, input types.CreateExperimentInput) types.Experiment {
	now := types.Timestamp(es.now())
	exp := types.Experiment{
		ID:                  uuid.NewString(),
		Name:                strings.TrimSpace(input.Name),
		Description:         strings.TrimSpace(input.Description),
		Status:              types.ExperimentStatusActive,
		CreatedAt:           now,
		UpdatedAt:           now,
		EvaluationRunsCount: 0,
	}
	col := es.collection(userID)
	items := col.Load(ctx)
	items = append(items, exp)
	if err := col.Save(ctx, items); err != nil {
		es.log.Warn("Experiment create not persisted", "experiment_id", exp.ID, "error", err)
	}
	return exp
}

func (es *experimentService) Get(ctx context.Context, userID, id string) *types.Experiment {
	for _, exp := range es.collection(userID).Load(ctx) {
		if exp.ID == id {
			found := exp
			return &found
		}
	}
	return nil
}

func (es *experimentService) Update(ctx context.Context, userID, id string, update types.ExperimentUpdate) *types.Experiment {
	col := es.collection(userID)
	items := col.Load(ctx)
	for i := range items {
		if items[i].ID != id {
			continue
		}
		if update.Name != nil {
			items[i].Name = *update.Name
		}
		if update.Description != nil {
			items[i].Description = *update.Description
		}
		if update.Status != nil {
			items[i].Status = *update.Status
		}
		if update.EvaluationRunsCount != nil {
			items[i].EvaluationRunsCount = *update.EvaluationRunsCount
		}
		items[i].UpdatedAt = types.Timestamp(es.now())
		if err := col.Save(ctx, items); err != nil {
			es.log.Warn("Experiment update not persisted", "experiment_id", id, "error", err)
		}
		updated := items[i]
		return &updated
	}
	return nil
}

func (es *experimentService) Delete(ctx context.Context, userID, id string) bool {
	col := es.collection(userID)
	items := col.Load(ctx)
	kept := items[:0]
	for _, exp := range items {
		if exp.ID != id {
			kept = append(kept, exp)
		}
	}
	if len(kept) == len(items) {
		return false
	}
	if err := col.Save(ctx, kept); err != nil {
		es.log.Warn("Experiment delete not persisted", "experiment_id", id, "error", err)
	}
	return true
}

func (es *experimentService) IncrementRunCount(ctx context.Context, userID, id string) {
	exp := es.Get(ctx, userID, id)
	if exp == nil {
		return
	}
	count := exp.EvaluationRunsCount + 1
	es.Update(ctx, userID, id, types.ExperimentUpdate{EvaluationRunsCount: &count})
}

func (es *experimentService) Export(ctx context.Context, userID string) (string, error) {
	raw, err := json.MarshalIndent(es.List(ctx, userID), "", "  ")
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (es *experimentService) Import(ctx context.Context, userID, payload string) bool {
	var items []types.Experiment
	if err := json.Unmarshal([]byte(payload), &items); err != nil {
		es.log.Warn("Experiment import rejected", "error", err)
		return false
	}
	if err := es.collection(userID).Save(ctx, items); err != nil {
		return false
	}
	return true
}

func (es *experimentService) ClearAll(ctx context.Context, userID string) error {
	return es.collection(userID).Clear(ctx)
}
