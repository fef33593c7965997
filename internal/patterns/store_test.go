package patterns

import (
	"path/filepath"
	"testing"

	"github.com/kwhitfield/quorum/pkg/models"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "quorum.db"))
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_InsertAndCount(t *testing.T) {
	store := testStore(t)

	outcomes := []Outcome{
		{TaskID: "a", Complexity: models.ComplexityMedium, Tier: models.TierDevelopment, Strategy: models.StrategyWeighted, Readiness: 0.8, Ready: true, Iterations: 1},
		{TaskID: "b", Complexity: models.ComplexityMedium, Tier: models.TierProduction, Strategy: models.StrategyQuality, Readiness: 0.9, Ready: true, Iterations: 2},
	}
	for _, o := range outcomes {
		if err := store.Insert(o); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}

	n, err := store.Count()
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 2 {
		t.Errorf("count = %d, want 2", n)
	}
}

func TestStore_MigrateIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quorum.db")
	for i := 0; i < 2; i++ {
		store, err := NewStore(path)
		if err != nil {
			t.Fatalf("open %d: NewStore() error = %v", i, err)
		}
		store.Close()
	}
}

func TestStore_TopStrategies(t *testing.T) {
	store := testStore(t)

	seed := []Outcome{
		{TaskID: "a", Complexity: models.ComplexityComplex, Strategy: models.StrategyWeighted, Readiness: 0.70, Ready: true},
		{TaskID: "b", Complexity: models.ComplexityComplex, Strategy: models.StrategyWeighted, Readiness: 0.80, Ready: true},
		{TaskID: "c", Complexity: models.ComplexityComplex, Strategy: models.StrategyQuality, Readiness: 0.95, Ready: true},
		{TaskID: "d", Complexity: models.ComplexityTrivial, Strategy: models.StrategyMajority, Readiness: 0.99, Ready: true},
	}
	for _, o := range seed {
		o.Tier = models.TierDevelopment
		if err := store.Insert(o); err != nil {
			t.Fatal(err)
		}
	}

	stats, err := store.TopStrategies(models.ComplexityComplex, 5)
	if err != nil {
		t.Fatalf("TopStrategies() error = %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("strategies = %d, want 2 (trivial outcomes excluded)", len(stats))
	}
	if stats[0].Strategy != models.StrategyQuality {
		t.Errorf("best strategy = %s, want quality_weighted", stats[0].Strategy)
	}
	if stats[1].Uses != 2 {
		t.Errorf("weighted uses = %d, want 2", stats[1].Uses)
	}
	if got := stats[1].AvgReadiness; got < 0.74 || got > 0.76 {
		t.Errorf("weighted avg readiness = %v, want 0.75", got)
	}
}

func TestAsyncRecorder_WritesEventually(t *testing.T) {
	store := testStore(t)
	rec := NewAsyncRecorder(store, 4)

	rec.Record(Outcome{TaskID: "x", Complexity: models.ComplexitySimple, Tier: models.TierPrototype, Strategy: models.StrategyMajority, Readiness: 0.6})
	rec.Record(Outcome{TaskID: "y", Complexity: models.ComplexitySimple, Tier: models.TierPrototype, Strategy: models.StrategyMajority, Readiness: 0.7})
	rec.Close()

	n, err := store.Count()
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("count after close = %d, want 2", n)
	}
}

func TestAsyncRecorder_ClosedDropsSilently(t *testing.T) {
	store := testStore(t)
	rec := NewAsyncRecorder(store, 4)
	rec.Close()

	rec.Record(Outcome{TaskID: "late"})
	rec.Close()

	n, err := store.Count()
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("count = %d, want 0 after closed-recorder write", n)
	}
}
