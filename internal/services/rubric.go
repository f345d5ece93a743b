package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/eaas-dev/eaas-backend/internal/logger"
	"github.com/eaas-dev/eaas-backend/internal/store"
	"github.com/eaas-dev/eaas-backend/internal/types"
)

const rubricsCollection = "eaas_rubrics"

// RubricsService is the rubric registry. Like the experiment registry it
// stores whatever it is given; the weight-sum rule lives at the request
// boundary so any non-form caller can persist an unbalanced rubric.
type RubricsService interface {
	List(ctx context.Context, userID string) []types.Rubric
	Create(ctx context.Context, userID string, input types.CreateRubricInput) types.Rubric
	Get(ctx context.Context, userID, id string) *types.Rubric
	Update(ctx context.Context, userID, id string, update types.RubricUpdate) *types.Rubric
	Delete(ctx context.Context, userID, id string) bool
	Clone(ctx context.Context, userID, id, newName string) *types.Rubric
	IncrementUsage(ctx context.Context, userID, id string)
	GetByCategory(ctx context.Context, userID string, category types.RubricCategory) []types.Rubric
	GetTemplates(ctx context.Context, userID string) []types.Rubric
	GetActive(ctx context.Context, userID string) []types.Rubric
	Export(ctx context.Context, userID string) (string, error)
	Import(ctx context.Context, userID, payload string) bool
	ClearAll(ctx context.Context, userID string) error
}

type rubricsService struct {
	kv  store.KV
	log *logger.Logger
	now func() time.Time
}

func NewRubricsService(kv store.KV, log *logger.Logger) RubricsService {
	return &rubricsService{
		kv:  kv,
		log: log.With("service", "RubricsService"),
		now: time.Now,
	}
}

func (rs *rubricsService) collection(userID string) *store.Collection[types.Rubric] {
	return store.NewCollection[types.Rubric](rs.kv, rs.log, store.Key(rubricsCollection, userID), defaultRubrics)
}

func (rs *rubricsService) List(ctx context.Context, userID string) []types.Rubric {
	return rs.collection(userID).Load(ctx)
}

func (rs *rubricsService) Create(ctx context.Context, userID string, input types.CreateRubricInput) types.Rubric {
	now := types.Timestamp(rs.now())
	rubric := types.Rubric{
		ID:          "rubric_" + uuid.NewString(),
		Name:        input.Name,
		Description: input.Description,
		Category:    input.Category,
		Criteria:    types.CloneCriteria(input.Criteria),
		IsActive:    input.IsActive,
		IsTemplate:  input.IsTemplate,
		CreatedAt:   now,
		UpdatedAt:   now,
		UsageCount:  0,
		CreatedBy:   input.CreatedBy,
	}
	col := rs.collection(userID)
	items := col.Load(ctx)
	items = append(items, rubric)
	if err := col.Save(ctx, items); err != nil {
		rs.log.Warn("Rubric create not persisted", "rubric_id", rubric.ID, "error", err)
	}
	return rubric
}

func (rs *rubricsService) Get(ctx context.Context, userID, id string) *types.Rubric {
	for _, r := range rs.collection(userID).Load(ctx) {
		if r.ID == id {
			found := r
			return &found
		}
	}
	return nil
}

func (rs *rubricsService) Update(ctx context.Context, userID, id string, update types.RubricUpdate) *types.Rubric {
	col := rs.collection(userID)
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
		if update.Category != nil {
			items[i].Category = *update.Category
		}
		if update.Criteria != nil {
			items[i].Criteria = types.CloneCriteria(*update.Criteria)
		}
		if update.IsActive != nil {
			items[i].IsActive = *update.IsActive
		}
		if update.IsTemplate != nil {
			items[i].IsTemplate = *update.IsTemplate
		}
		if update.UsageCount != nil {
			items[i].UsageCount = *update.UsageCount
		}
		items[i].UpdatedAt = types.Timestamp(rs.now())
		if err := col.Save(ctx, items); err != nil {
			rs.log.Warn("Rubric update not persisted", "rubric_id", id, "error", err)
		}
		updated := items[i]
		return &updated
	}
	return nil
}

func (rs *rubricsService) Delete(ctx context.Context, userID, id string) bool {
	col := rs.collection(userID)
	items := col.Load(ctx)
	kept := items[:0]
	for _, r := range items {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(items) {
		return false
	}
	if err := col.Save(ctx, kept); err != nil {
		rs.log.Warn("Rubric delete not persisted", "rubric_id", id, "error", err)
	}
	return true
}

// Clone copies a rubric under a fresh id with usage reset and template flag
// forced off. Criteria are deep-copied so edits to the clone never bleed into
// the source.
func (rs *rubricsService) Clone(ctx context.Context, userID, id, newName string) *types.Rubric {
	original := rs.Get(ctx, userID, id)
	if original == nil {
		return nil
	}
	name := newName
	if name == "" {
		name = original.Name + " (Copy)"
	}
	cloned := rs.Create(ctx, userID, types.CreateRubricInput{
		Name:        name,
		Description: original.Description,
		Category:    original.Category,
		Criteria:    types.CloneCriteria(original.Criteria),
		IsActive:    original.IsActive,
		IsTemplate:  false,
		CreatedBy:   original.CreatedBy,
	})
	return &cloned
}

func (rs *rubricsService) IncrementUsage(ctx context.Context, userID, id string) {
	r := rs.Get(ctx, userID, id)
	if r == nil {
		return
	}
	count := r.UsageCount + 1
	rs.Update(ctx, userID, id, types.RubricUpdate{UsageCount: &count})
}

func (rs *rubricsService) GetByCategory(ctx context.Context, userID string, category types.RubricCategory) []types.Rubric {
	return rs.filter(ctx, userID, func(r types.Rubric) bool { return r.Category == category })
}

func (rs *rubricsService) GetTemplates(ctx context.Context, userID string) []types.Rubric {
	return rs.filter(ctx, userID, func(r types.Rubric) bool { return r.IsTemplate })
}

func (rs *rubricsService) GetActive(ctx context.Context, userID string) []types.Rubric {
	return rs.filter(ctx, userID, func(r types.Rubric) bool { return r.IsActive })
}

func (rs *rubricsService) filter(ctx context.Context, userID string, keep func(types.Rubric) bool) []types.Rubric {
	out := []types.Rubric{}
	for _, r := range rs.List(ctx, userID) {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func (rs *rubricsService) Export(ctx context.Context, userID string) (string, error) {
	raw, err := json.MarshalIndent(rs.List(ctx, userID), "", "  ")
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (rs *rubricsService) Import(ctx context.Context, userID, payload string) bool {
	var items []types.Rubric
	if err := json.Unmarshal([]byte(payload), &items); err != nil {
		rs.log.Warn("Rubric import rejected", "error", err)
		return false
	}
	if err := rs.collection(userID).Save(ctx, items); err != nil {
		return false
	}
	return true
}

func (rs *rubricsService) ClearAll(ctx context.Context, userID string) error {
	return rs.collection(userID).Clear(ctx)
}
