package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/eaas-dev/eaas-backend/internal/logger"
	"github.com/eaas-dev/eaas-backend/internal/store"
	"github.com/eaas-dev/eaas-backend/internal/types"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func newTestExperimentService(t *testing.T) ExperimentService {
	t.Helper()
	return NewExperimentService(store.NewMemoryKV(), testLogger(t))
}

func TestExperimentSeedsOnFirstList(t *testing.T) {
	ctx := context.Background()
	svc := newTestExperimentService(t)

	got := svc.List(ctx, "user-1")
	if len(got) != 2 {
		t.Fatalf("seeded experiment count = %d, want 2", len(got))
	}
	if got[0].ID != "exp_1" || got[1].ID != "exp_2" {
		t.Fatalf("seeded ids = %q, %q; want exp_1, exp_2", got[0].ID, got[1].ID)
	}
	if got[0].EvaluationRunsCount != 3 {
		t.Fatalf("exp_1 runs = %d, want 3", got[0].EvaluationRunsCount)
	}
}

func TestExperimentCreate(t *testing.T) {
	ctx := context.Background()
	svc := newTestExperimentService(t)

	exp := svc.Create(ctx, "user-1", types.CreateExperimentInput{
		Name:        "  Load Test  ",
		Description: "sustained traffic run",
	})

	if exp.Name != "Load Test" {
		t.Fatalf("name = %q, want trimmed %q", exp.Name, "Load Test")
	}
	if exp.Status != types.ExperimentStatusActive {
		t.Fatalf("status = %q, want %q", exp.Status, types.ExperimentStatusActive)
	}
	if exp.EvaluationRunsCount != 0 {
		t.Fatalf("runs = %d, want 0", exp.EvaluationRunsCount)
	}
	if exp.CreatedAt != exp.UpdatedAt {
		t.Fatalf("created_at %q != updated_at %q on create", exp.CreatedAt, exp.UpdatedAt)
	}
	if exp.ID == "" || exp.ID == "exp_1" {
		t.Fatalf("id = %q, want fresh generated id", exp.ID)
	}

	if got := svc.Get(ctx, "user-1", exp.ID); got == nil || got.Name != "Load Test" {
		t.Fatalf("Get after Create = %+v, want persisted experiment", got)
	}
	if got := svc.List(ctx, "user-1"); len(got) != 3 {
		t.Fatalf("list length after create = %d, want 3", len(got))
	}
}

func TestExperimentCreateIDsUnique(t *testing.T) {
	ctx := context.Background()
	svc := newTestExperimentService(t)

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		exp := svc.Create(ctx, "user-1", types.CreateExperimentInput{Name: "dup check"})
		if seen[exp.ID] {
			t.Fatalf("duplicate experiment id %q", exp.ID)
		}
		seen[exp.ID] = true
	}
}

func TestExperimentUpdate(t *testing.T) {
	ctx := context.Background()
	svc := &experimentService{kv: store.NewMemoryKV(), log: testLogger(t), now: time.Now}

	created := svc.Create(ctx, "user-1", types.CreateExperimentInput{Name: "before"})
	svc.now = func() time.Time { return time.Now().Add(time.Hour) }

	name := "after"
	status := types.ExperimentStatusCompleted
	got := svc.Update(ctx, "user-1", created.ID, types.ExperimentUpdate{Name: &name, Status: &status})
	if got == nil {
		t.Fatal("Update returned nil for existing experiment")
	}
	if got.Name != "after" || got.Status != types.ExperimentStatusCompleted {
		t.Fatalf("updated experiment = %+v", got)
	}
	if got.CreatedAt != created.CreatedAt {
		t.Fatalf("created_at changed on update: %q -> %q", created.CreatedAt, got.CreatedAt)
	}
	if got.UpdatedAt == created.UpdatedAt {
		t.Fatal("updated_at not refreshed on update")
	}

	if missing := svc.Update(ctx, "user-1", "no-such-id", types.ExperimentUpdate{Name: &name}); missing != nil {
		t.Fatalf("Update on missing id = %+v, want nil", missing)
	}
}

func TestExperimentDelete(t *testing.T) {
	ctx := context.Background()
	svc := newTestExperimentService(t)

	if !svc.Delete(ctx, "user-1", "exp_1") {
		t.Fatal("Delete existing experiment returned false")
	}
	if svc.Get(ctx, "user-1", "exp_1") != nil {
		t.Fatal("experiment still present after delete")
	}
	if svc.Delete(ctx, "user-1", "exp_1") {
		t.Fatal("Delete of absent experiment returned true")
	}
}

func TestExperimentIncrementRunCount(t *testing.T) {
	ctx := context.Background()
	svc := newTestExperimentService(t)

	svc.IncrementRunCount(ctx, "user-1", "exp_2")
	if got := svc.Get(ctx, "user-1", "exp_2"); got.EvaluationRunsCount != 2 {
		t.Fatalf("runs after increment = %d, want 2", got.EvaluationRunsCount)
	}

	// No-op on unknown id.
	svc.IncrementRunCount(ctx, "user-1", "ghost")
}

func TestExperimentUserIsolation(t *testing.T) {
	ctx := context.Background()
	svc := newTestExperimentService(t)

	svc.Create(ctx, "alice", types.CreateExperimentInput{Name: "alice only"})
	if got := svc.List(ctx, "bob"); len(got) != 2 {
		t.Fatalf("bob sees %d experiments, want untouched seed of 2", len(got))
	}
}

func TestExperimentExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := newTestExperimentService(t)

	svc.Create(ctx, "user-1", types.CreateExperimentInput{Name: "exported"})
	payload, err := svc.Export(ctx, "user-1")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !strings.Contains(payload, "exported") {
		t.Fatalf("export payload missing created experiment: %s", payload)
	}

	other := newTestExperimentService(t)
	if !other.Import(ctx, "user-2", payload) {
		t.Fatal("Import of exported payload failed")
	}
	if got := other.List(ctx, "user-2"); len(got) != 3 {
		t.Fatalf("imported list length = %d, want 3", len(got))
	}

	if other.Import(ctx, "user-2", "{not json") {
		t.Fatal("Import accepted malformed payload")
	}
}

func TestExperimentClearAllReseeds(t *testing.T) {
	ctx := context.Background()
	svc := newTestExperimentService(t)

	svc.Create(ctx, "user-1", types.CreateExperimentInput{Name: "temp"})
	if err := svc.ClearAll(ctx, "user-1"); err != nil {
		t.Fatalf("ClearAll: %v", err)
	}
	if got := svc.List(ctx, "user-1"); len(got) != 2 {
		t.Fatalf("list after clear = %d entries, want reseeded 2", len(got))
	}
}
