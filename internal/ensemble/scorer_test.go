package ensemble

import (
	"strings"
	"testing"

	"github.com/kwhitfield/quorum/pkg/models"
)

func TestConfidenceScorer_RangeProperty(t *testing.T) {
	s := NewConfidenceScorer()

	tests := []struct {
		name     string
		artifact models.Artifact
		security float64
		review   float64
	}{
		{"empty artifact", models.Artifact{}, 0, 0},
		{"unparsable garbage", models.Artifact{Code: "(((]]]}}}\""}, 0, 0},
		{"binary noise", models.Artifact{Code: string([]byte{0, 1, 2, 255})}, 0, 0},
		{"everything maxed", models.Artifact{
			Code:          "def solve(x: int) -> int:\n    # doc\n    try:\n        return x\n    except ValueError:\n        raise\n",
			Tests:         "def test_solve():\n    assert solve(1) == 1\n    assert solve(2) == 2\n    assert solve(3) == 3\n",
			Documentation: "full docs",
			SecurityNotes: "clean",
		}, 1.0, 1.0},
		{"out of range external scores", models.Artifact{Code: "x = 1"}, 5.0, -3.0},
		{"huge nesting", models.Artifact{Code: strings.Repeat("    ", 12) + "x = 1"}, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Score(tt.artifact, tt.security, tt.review)
			if got < 0 || got > 0.99 {
				t.Errorf("Score() = %v, want within [0, 0.99]", got)
			}
		})
	}
}

func TestConfidenceScorer_EmptyCodeScoresLow(t *testing.T) {
	s := NewConfidenceScorer()
	empty := s.Score(models.Artifact{}, 0, 0)
	solid := s.Score(models.Artifact{
		Code:  "def add(a: int, b: int) -> int:\n    # adds two numbers\n    if a is None:\n        raise ValueError\n    return a + b\n",
		Tests: "def test_add():\n    assert add(1, 2) == 3\n    assert add(0, 0) == 0\n    assert add(-1, 1) == 0\n",
	}, 0.8, 0.8)

	if empty >= solid {
		t.Errorf("empty artifact score %v should be below solid artifact score %v", empty, solid)
	}
	if empty > 0.1 {
		t.Errorf("empty artifact score = %v, want near zero", empty)
	}
}

func TestConfidenceScorer_TestsRaiseScore(t *testing.T) {
	s := NewConfidenceScorer()
	code := "def run():\n    return 1\n"

	without := s.Score(models.Artifact{Code: code}, 0, 0)
	with := s.Score(models.Artifact{
		Code:  code,
		Tests: "def test_run():\n    assert run() == 1\n",
	}, 0, 0)

	if with <= without {
		t.Errorf("tests should raise the score: with=%v without=%v", with, without)
	}
}

func TestConfidenceScorer_ExternalScoresContribute(t *testing.T) {
	s := NewConfidenceScorer()
	artifact := models.Artifact{Code: "def f():\n    return 1\n"}

	low := s.Score(artifact, 0, 0)
	high := s.Score(artifact, 1.0, 1.0)

	// Security and review each weigh 10%.
	diff := high - low
	if diff < 0.19 || diff > 0.21 {
		t.Errorf("external factor contribution = %v, want ~0.20", diff)
	}
}

func TestConfidenceScorer_Deterministic(t *testing.T) {
	s := NewConfidenceScorer()
	artifact := models.Artifact{Code: "def f(x):\n    try:\n        return x\n    except TypeError:\n        return None\n", Tests: "def test_f():\n    assert f(1) == 1\n"}

	first := s.Score(artifact, 0.5, 0.5)
	for i := 0; i < 10; i++ {
		if again := s.Score(artifact, 0.5, 0.5); again != first {
			t.Fatalf("run %d score = %v, want %v", i, again, first)
		}
	}
}
