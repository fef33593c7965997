package ensemble

import (
	"math"
	"testing"

	"github.com/kwhitfield/quorum/pkg/models"
)

func TestCrossValidator_Revalidate(t *testing.T) {
	v := NewCrossValidator()
	cfg := models.EnsembleConfig{CrossValidation: true}

	full := models.Artifact{Code: "a", Tests: "b", Documentation: "c", SecurityNotes: "d"}
	contributions := []models.Contribution{
		{ProducerID: "impl", Role: models.RoleImplementer, Artifact: full, Confidence: 0.9, ValidationScore: 0.9},
		{ProducerID: "rev", Role: models.RoleReviewer, Artifact: full, Confidence: 0.8, ValidationScore: 0.8},
	}

	out := v.Revalidate(contributions, cfg)

	if len(out) != len(contributions) {
		t.Fatalf("length changed: %d != %d", len(out), len(contributions))
	}
	// Reviewer passes through unchanged.
	if out[1].ValidationScore != 0.8 {
		t.Errorf("reviewer validation score = %v, want unchanged 0.8", out[1].ValidationScore)
	}
	// Implementer: 0.8*0.9 + 0.2*(0.5*0.8 + 0.5*1.0) = 0.72 + 0.18 = 0.90
	want := 0.90
	if math.Abs(out[0].ValidationScore-want) > 1e-9 {
		t.Errorf("implementer validation score = %v, want %v", out[0].ValidationScore, want)
	}
	// The input slice's confidence fields are untouched.
	if out[0].Confidence != 0.9 {
		t.Errorf("confidence mutated to %v", out[0].Confidence)
	}
}

func TestCrossValidator_NoOpWithoutReviewer(t *testing.T) {
	v := NewCrossValidator()
	cfg := models.EnsembleConfig{CrossValidation: true}
	contributions := []models.Contribution{
		{ProducerID: "impl", Role: models.RoleImplementer, Confidence: 0.9, ValidationScore: 0.42},
	}

	out := v.Revalidate(contributions, cfg)

	if out[0].ValidationScore != 0.42 {
		t.Errorf("validation score = %v, want unchanged 0.42 with no reviewer", out[0].ValidationScore)
	}
}

func TestCrossValidator_NoOpWhenDisabled(t *testing.T) {
	v := NewCrossValidator()
	cfg := models.EnsembleConfig{CrossValidation: false}
	contributions := []models.Contribution{
		{ProducerID: "impl", Role: models.RoleImplementer, Confidence: 0.9, ValidationScore: 0.42},
		{ProducerID: "rev", Role: models.RoleReviewer, Confidence: 0.8, ValidationScore: 0.8},
	}

	out := v.Revalidate(contributions, cfg)

	if out[0].ValidationScore != 0.42 {
		t.Errorf("validation score = %v, want unchanged when cross-validation disabled", out[0].ValidationScore)
	}
}

func TestCrossValidator_Deterministic(t *testing.T) {
	v := NewCrossValidator()
	cfg := models.EnsembleConfig{CrossValidation: true}
	contributions := []models.Contribution{
		{ProducerID: "impl", Role: models.RoleImplementer, Artifact: models.Artifact{Code: "x"}, Confidence: 0.7, ValidationScore: 0.7},
		{ProducerID: "rev", Role: models.RoleReviewer, Confidence: 0.6, ValidationScore: 0.6},
	}

	first := v.Revalidate(contributions, cfg)
	for i := 0; i < 20; i++ {
		again := v.Revalidate(contributions, cfg)
		if again[0].ValidationScore != first[0].ValidationScore {
			t.Fatalf("run %d blend = %v, want deterministic %v", i, again[0].ValidationScore, first[0].ValidationScore)
		}
	}
}

func TestCrossValidator_ScoreStaysInRange(t *testing.T) {
	v := NewCrossValidator()
	cfg := models.EnsembleConfig{CrossValidation: true}
	contributions := []models.Contribution{
		{ProducerID: "impl", Role: models.RoleImplementer, Artifact: models.Artifact{Code: "a", Tests: "b", Documentation: "c", SecurityNotes: "d"}, Confidence: 1.0, ValidationScore: 1.0},
		{ProducerID: "rev", Role: models.RoleReviewer, Confidence: 1.0, ValidationScore: 1.0},
	}

	out := v.Revalidate(contributions, cfg)
	if out[0].ValidationScore < 0 || out[0].ValidationScore > 1 {
		t.Errorf("validation score %v outside [0,1]", out[0].ValidationScore)
	}
}
