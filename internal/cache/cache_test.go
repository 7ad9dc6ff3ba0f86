package cache

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/an0763229796-cpu/AlphaDrop/internal/models"
	"github.com/an0763229796-cpu/AlphaDrop/internal/testutil"
)

func sampleAnalysis() models.ProjectAnalysis {
	return models.ProjectAnalysis{
		ProjectName: "Monad",
		Verdict:     models.Verdict{Score: 9, FinalThoughts: "strong", ActionPlan: []string{"bridge", "swap"}},
		Sources:     []models.Source{{Title: "Monad Home", URI: "https://monad.xyz"}},
	}
}

func TestRoundTripWithinTTL(t *testing.T) {
	c := New[models.ProjectAnalysis](testutil.NewMemoryStore(), "analysis", time.Hour)
	ctx := context.Background()

	want := sampleAnalysis()
	c.Put(ctx, "Monad", want)

	got, ok := c.Get(ctx, "Monad")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestKeyNormalization(t *testing.T) {
	c := New[models.ProjectAnalysis](testutil.NewMemoryStore(), "analysis", time.Hour)
	ctx := context.Background()

	c.Put(ctx, "Monad", sampleAnalysis())
	if _, ok := c.Get(ctx, "monad"); !ok {
		t.Error("lower-case lookup should hit the same entry")
	}
	if _, ok := c.Get(ctx, "  MONAD  "); !ok {
		t.Error("trimmed upper-case lookup should hit the same entry")
	}
}

func TestExpiryTreatedAsAbsent(t *testing.T) {
	store := testutil.NewMemoryStore()
	c := New[models.ProjectAnalysis](store, "analysis", time.Hour)
	ctx := context.Background()

	base := time.Now()
	c.now = func() time.Time { return base }
	c.Put(ctx, "Monad", sampleAnalysis())

	c.now = func() time.Time { return base.Add(59 * time.Minute) }
	if _, ok := c.Get(ctx, "Monad"); !ok {
		t.Error("entry younger than TTL should hit")
	}

	c.now = func() time.Time { return base.Add(time.Hour) }
	if _, ok := c.Get(ctx, "Monad"); ok {
		t.Error("entry at TTL boundary should be absent")
	}

	// Expired entry stays in the store until overwritten.
	if len(store.Keys()) != 1 {
		t.Errorf("store keys = %v, expired entry should not be deleted", store.Keys())
	}
}

func TestReadFailureDegradesToMiss(t *testing.T) {
	store := testutil.NewMemoryStore()
	c := New[models.ProjectAnalysis](store, "analysis", time.Hour)
	ctx := context.Background()

	c.Put(ctx, "Monad", sampleAnalysis())
	store.GetErr = errors.New("store unreachable")
	if _, ok := c.Get(ctx, "Monad"); ok {
		t.Error("read failure must degrade to a miss")
	}
}

func TestWriteFailureSwallowed(t *testing.T) {
	store := testutil.NewMemoryStore()
	store.SetErr = errors.New("store unreachable")
	c := New[models.ProjectAnalysis](store, "analysis", time.Hour)

	// Must not panic or surface an error.
	c.Put(context.Background(), "Monad", sampleAnalysis())
}

func TestCorruptEntryTreatedAsMiss(t *testing.T) {
	store := testutil.NewMemoryStore()
	c := New[models.ProjectAnalysis](store, "analysis", time.Hour)
	ctx := context.Background()

	_ = store.Set(ctx, "analysis:monad", []byte("not json"))
	if _, ok := c.Get(ctx, "Monad"); ok {
		t.Error("corrupt entry must read as a miss")
	}
}

func TestPrefixesSeparateShapes(t *testing.T) {
	store := testutil.NewMemoryStore()
	analyses := New[models.ProjectAnalysis](store, "analysis", time.Hour)
	scans := New[models.QuickScan](store, "scan", time.Hour)
	ctx := context.Background()

	analyses.Put(ctx, "Monad", sampleAnalysis())
	if _, ok := scans.Get(ctx, "Monad"); ok {
		t.Error("scan cache must not see analysis entries for the same name")
	}
}
