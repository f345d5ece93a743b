package services

import (
	"context"
	"strings"
	"testing"

	"github.com/eaas-dev/eaas-backend/internal/store"
)

func newTestUploadService(t *testing.T) UploadService {
	t.Helper()
	return NewUploadService(store.NewMemoryKV(), testLogger(t), newTestLocalBucket(t))
}

func TestUploadStoreAndList(t *testing.T) {
	ctx := context.Background()
	svc := newTestUploadService(t)

	body := "q,expected\nwhat is 2+2,4\n"
	file, err := svc.Store(ctx, "user-1", "eval-set.csv", int64(len(body)), strings.NewReader(body))
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if file.Name != "eval-set.csv" {
		t.Fatalf("name = %q", file.Name)
	}
	if file.SizeBytes != int64(len(body)) {
		t.Fatalf("size = %d, want %d", file.SizeBytes, len(body))
	}
	if !strings.HasPrefix(file.Key, "datasets/user-1/") || !strings.HasSuffix(file.Key, ".csv") {
		t.Fatalf("key = %q", file.Key)
	}
	if file.URL == "" {
		t.Fatal("missing public url")
	}

	files := svc.List(ctx, "user-1")
	if len(files) != 1 || files[0].ID != file.ID {
		t.Fatalf("list = %+v", files)
	}
	if got := svc.List(ctx, "user-2"); len(got) != 0 {
		t.Fatalf("other user sees %d files", len(got))
	}
}

func TestUploadRejectsExtension(t *testing.T) {
	ctx := context.Background()
	svc := newTestUploadService(t)

	for _, name := range []string{"report.pdf", "data.txt", "archive.csv.zip", "noext"} {
		if _, err := svc.Store(ctx, "user-1", name, 10, strings.NewReader("xxxxxxxxxx")); err == nil {
			t.Fatalf("Store accepted %q", name)
		}
	}
}

func TestUploadRejectsOversize(t *testing.T) {
	ctx := context.Background()
	svc := newTestUploadService(t)

	if _, err := svc.Store(ctx, "user-1", "big.csv", MaxDatasetSize+1, strings.NewReader("x")); err == nil {
		t.Fatal("Store accepted declared oversize file")
	}
	if got := svc.List(ctx, "user-1"); len(got) != 0 {
		t.Fatalf("oversize upload left metadata: %+v", got)
	}
}

func TestUploadDelete(t *testing.T) {
	ctx := context.Background()
	svc := newTestUploadService(t)

	file, err := svc.Store(ctx, "user-1", "data.jsonl", 2, strings.NewReader("{}"))
	if err != nil {
		t.Fatalf("Store: %v", err)
	}

	ok, err := svc.Delete(ctx, "user-1", file.ID)
	if err != nil || !ok {
		t.Fatalf("Delete = %v, %v", ok, err)
	}
	if got := svc.List(ctx, "user-1"); len(got) != 0 {
		t.Fatalf("list after delete = %+v", got)
	}

	ok, err = svc.Delete(ctx, "user-1", file.ID)
	if err != nil || ok {
		t.Fatalf("second Delete = %v, %v, want false", ok, err)
	}
}
