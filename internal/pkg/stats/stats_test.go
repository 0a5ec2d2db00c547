package stats

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestMean(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
		ok     bool
	}{
		{"empty", nil, 0, false},
		{"single", []float64{4.2}, 4.2, true},
		{"several", []float64{1, 2, 3, 4}, 2.5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Mean(tt.values)
			if ok != tt.ok {
				t.Fatalf("Mean() ok = %v, want %v", ok, tt.ok)
			}
			if ok && !almostEqual(got, tt.want) {
				t.Errorf("Mean() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestQuantile(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		q      float64
		want   float64
		ok     bool
	}{
		{"empty", nil, 0.5, 0, false},
		{"single", []float64{7}, 0.95, 7, true},
		{"median even", []float64{1, 2, 3, 4}, 0.5, 2.5, true},
		{"median odd", []float64{3, 1, 2}, 0.5, 2, true},
		{"p0 is min", []float64{5, 1, 9}, 0, 1, true},
		{"p100 is max", []float64{5, 1, 9}, 1, 9, true},
		{"interpolated", []float64{10, 20, 30, 40}, 0.25, 17.5, true},
		{"clamped below", []float64{1, 2}, -0.5, 1, true},
		{"clamped above", []float64{1, 2}, 1.5, 2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Quantile(tt.values, tt.q)
			if ok != tt.ok {
				t.Fatalf("Quantile() ok = %v, want %v", ok, tt.ok)
			}
			if ok && !almostEqual(got, tt.want) {
				t.Errorf("Quantile() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestQuantile_Uniform1To100(t *testing.T) {
	values := make([]float64, 100)
	for i := range values {
		values[i] = float64(i + 1)
	}

	p90, ok := Quantile(values, 0.90)
	if !ok {
		t.Fatal("Quantile() ok = false")
	}
	// rank 89.1 between 90 and 91
	if !almostEqual(p90, 90.1) {
		t.Errorf("Quantile(0.90) = %v, want 90.1", p90)
	}

	p95, _ := Quantile(values, 0.95)
	if !almostEqual(p95, 95.05) {
		t.Errorf("Quantile(0.95) = %v, want 95.05", p95)
	}
}

func TestQuantile_DoesNotMutateInput(t *testing.T) {
	values := []float64{3, 1, 2}
	Quantile(values, 0.5)

	if values[0] != 3 || values[1] != 1 || values[2] != 2 {
		t.Errorf("input mutated: %v", values)
	}
}

func TestQuantile_Ordering(t *testing.T) {
	values := []float64{0.3, 1.2, 0.8, 5.0, 2.4, 0.1, 3.3}

	min, _ := Min(values)
	med, _ := Median(values)
	p95, _ := Quantile(values, 0.95)
	max, _ := Max(values)

	if !(min <= med && med <= p95 && p95 <= max) {
		t.Errorf("ordering violated: min=%v median=%v p95=%v max=%v", min, med, p95, max)
	}
}

func TestMinMax(t *testing.T) {
	if _, ok := Min(nil); ok {
		t.Error("Min(nil) ok = true, want false")
	}
	if _, ok := Max(nil); ok {
		t.Error("Max(nil) ok = true, want false")
	}

	values := []float64{2.5, -1, 7, 0}
	if min, _ := Min(values); min != -1 {
		t.Errorf("Min() = %v, want -1", min)
	}
	if max, _ := Max(values); max != 7 {
		t.Errorf("Max() = %v, want 7", max)
	}
}
