package services

import (
	"context"
	"io"
	"strings"
	"testing"
)

func newTestLocalBucket(t *testing.T) BucketService {
	t.Helper()
	bs, err := NewLocalBucketService(testLogger(t), t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("NewLocalBucketService: %v", err)
	}
	return bs
}

func TestLocalBucketRoundTrip(t *testing.T) {
	ctx := context.Background()
	bs := newTestLocalBucket(t)

	if err := bs.Upload(ctx, "datasets/user-1/eval.csv", strings.NewReader("q,expected\n")); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	r, err := bs.Download(ctx, "datasets/user-1/eval.csv")
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	raw, err := io.ReadAll(r)
	_ = r.Close()
	if err != nil {
		t.Fatalf("read object: %v", err)
	}
	if string(raw) != "q,expected\n" {
		t.Fatalf("object content = %q", raw)
	}

	entries, err := bs.List(ctx, "datasets/user-1/")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 || entries[0].Key != "datasets/user-1/eval.csv" {
		t.Fatalf("entries = %+v", entries)
	}
	if entries[0].Size != int64(len("q,expected\n")) {
		t.Fatalf("entry size = %d", entries[0].Size)
	}

	if err := bs.Delete(ctx, "datasets/user-1/eval.csv"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if entries, err = bs.List(ctx, ""); err != nil || len(entries) != 0 {
		t.Fatalf("after delete entries = %+v, err = %v", entries, err)
	}
}

func TestLocalBucketPrefixFilter(t *testing.T) {
	ctx := context.Background()
	bs := newTestLocalBucket(t)

	for _, key := range []string{"datasets/a/one.json", "datasets/b/two.json", "avatars/a.png"} {
		if err := bs.Upload(ctx, key, strings.NewReader("x")); err != nil {
			t.Fatalf("Upload %s: %v", key, err)
		}
	}
	entries, err := bs.List(ctx, "datasets/")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("filtered entries = %+v", entries)
	}
}

func TestLocalBucketRejectsTraversal(t *testing.T) {
	ctx := context.Background()
	bs := newTestLocalBucket(t)

	for _, key := range []string{"../escape.txt", "a/../../escape.txt", ""} {
		if err := bs.Upload(ctx, key, strings.NewReader("x")); err == nil {
			t.Fatalf("Upload accepted key %q", key)
		}
	}
}

func TestLocalBucketPublicURL(t *testing.T) {
	bs := newTestLocalBucket(t)
	if got := bs.PublicURL("datasets/user-1/eval.csv"); got != "/uploads/datasets/user-1/eval.csv" {
		t.Fatalf("PublicURL = %q", got)
	}
}
