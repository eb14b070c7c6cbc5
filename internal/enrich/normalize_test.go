// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"errors"
	"testing"
)

func TestNormalize(t *testing.T) {
	// Positive null mean 0.375, negative null mean -0.375. The observed
	// 0.5 normalizes to 4/3, and one of the two positive null values
	// reaches that magnitude.
	esnull := []float64{0.5, 0.25, -0.5, -0.25}
	norm, nesnull, err := normalize("pathway", 3, 0.5, esnull)
	if err != nil {
		t.Fatal(err)
	}

	if norm.GeneSetID != "pathway" {
		t.Errorf("GeneSetID = %q, want pathway", norm.GeneSetID)
	}
	if !almostEqual(norm.NES, 4.0/3.0) {
		t.Errorf("NES = %g, want %g", norm.NES, 4.0/3.0)
	}
	if !almostEqual(norm.PValue, 0.5) {
		t.Errorf("p-value = %g, want 0.5", norm.PValue)
	}
	if len(nesnull) != 4 {
		t.Fatalf("normalized null has %d values, want 4", len(nesnull))
	}
	wantNull := []float64{4.0 / 3.0, 2.0 / 3.0, -4.0 / 3.0, -2.0 / 3.0}
	for i, want := range wantNull {
		if !almostEqual(nesnull[i], want) {
			t.Errorf("nesnull[%d] = %g, want %g", i, nesnull[i], want)
		}
	}
}

func TestNormalizeNegativeES(t *testing.T) {
	esnull := []float64{0.5, -0.4, -0.2}
	norm, _, err := normalize("pathway", 2, -0.6, esnull)
	if err != nil {
		t.Fatal(err)
	}
	// Negative mean is -0.3, so NES = -(-0.6)/(-0.3) = -2.
	if !almostEqual(norm.NES, -2.0) {
		t.Errorf("NES = %g, want -2", norm.NES)
	}
	if norm.NES >= 0 {
		t.Error("NES sign flipped")
	}
}

func TestNormalizeDropsZeroNulls(t *testing.T) {
	esnull := []float64{0.5, 0, 0, -0.5}
	_, nesnull, err := normalize("pathway", 2, 0.25, esnull)
	if err != nil {
		t.Fatal(err)
	}
	if len(nesnull) != 2 {
		t.Errorf("normalized null has %d values, want 2 (zeros dropped)", len(nesnull))
	}
}

func TestNormalizeFailures(t *testing.T) {
	tests := []struct {
		name   string
		es     float64
		esnull []float64
	}{
		{"no positive nulls for positive ES", 0.5, []float64{-0.5, -0.25}},
		{"no negative nulls for negative ES", -0.5, []float64{0.5, 0.25}},
		{"zero observed ES", 0, []float64{0.5, -0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := normalize("pathway", 2, tt.es, tt.esnull)
			if !errors.Is(err, ErrDegenerateNull) {
				t.Errorf("error = %v, want ErrDegenerateNull", err)
			}
			var gse *GeneSetError
			if !errors.As(err, &gse) || gse.GeneSetID != "pathway" {
				t.Errorf("error %v is not a *GeneSetError for pathway", err)
			}
		})
	}
}

func TestTailFraction(t *testing.T) {
	pool := []float64{2.0, 1.0, 0.5, -1.5, -0.5}

	tests := []struct {
		name string
		x    float64
		want float64
	}{
		{"positive tail", 1.0, 2.0 / 3.0},
		{"extreme positive", 3.0, 0},
		{"negative tail", -1.0, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tailFraction(pool, tt.x); !almostEqual(got, tt.want) {
				t.Errorf("tailFraction(%g) = %g, want %g", tt.x, got, tt.want)
			}
		})
	}

	if got := tailFraction([]float64{-1, -2}, 0.5); got != 0 {
		t.Errorf("empty same-sign subset: got %g, want 0", got)
	}
}

func TestFDRQValues(t *testing.T) {
	// Pool tail fractions: |v|>=2 is 1/4, |v|>=1 is 2/4. Observed tail
	// fractions: 1/2 and 2/2. Raw q-values 0.5 and 0.5.
	nes := []float64{2.0, 1.0}
	nesnull := [][]float64{{0.5, 1.5}, {2.5, 0.5}}

	q := fdrQValues(nes, nesnull)
	if !almostEqual(q[0], 0.5) || !almostEqual(q[1], 0.5) {
		t.Errorf("q = %v, want [0.5 0.5]", q)
	}
}

func TestFDRQValuesMonotoneWithinSign(t *testing.T) {
	// The raw q for |NES|=1 (0.25) is smaller than the raw q for
	// |NES|=3 (0.5); the step-down pass lifts it to 0.5.
	nes := []float64{3.0, 1.0}
	nesnull := [][]float64{{0.5, 0.5}, {3.5, 0.5}}

	q := fdrQValues(nes, nesnull)
	if !almostEqual(q[0], 0.5) {
		t.Errorf("q[0] = %g, want 0.5", q[0])
	}
	if !almostEqual(q[1], 0.5) {
		t.Errorf("q[1] = %g, want 0.5 after monotone correction", q[1])
	}
}

func TestFDRQValuesClippedToOne(t *testing.T) {
	// For |NES|=3 the pooled tail (3/4) exceeds the observed tail
	// (1/2), a raw ratio of 1.5; it clips to 1 and the step-down pass
	// lifts the other set to 1 as well.
	nes := []float64{1.0, 3.0}
	nesnull := [][]float64{{3.5, 3.5}, {3.5, 0.5}}

	q := fdrQValues(nes, nesnull)
	for i, v := range q {
		if v < 0 || v > 1 {
			t.Errorf("q[%d] = %g, outside [0,1]", i, v)
		}
	}
	if !almostEqual(q[1], 1.0) {
		t.Errorf("q[1] = %g, want 1 (clipped)", q[1])
	}
	if !almostEqual(q[0], 1.0) {
		t.Errorf("q[0] = %g, want 1 after monotone correction", q[0])
	}
}
