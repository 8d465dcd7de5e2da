package scoring

import "testing"

func TestBandFromRaw(t *testing.T) {
	cases := []struct {
		name    string
		correct int
		total   int
		want    float64
	}{
		{"perfect 40", 40, 40, 9},
		{"39 of 40", 39, 40, 9},
		{"30 of 40", 30, 40, 7},
		{"23 of 40", 23, 40, 6},
		{"16 of 40", 16, 40, 5},
		{"zero", 0, 40, 0},
		{"empty section", 0, 0, 0},
		{"short section scales", 13, 13, 9},    // 13/13 scales to 40/40
		{"half of short section", 5, 10, 5.5},  // scales to 20/40
		{"overflow clamps", 50, 40, 9},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := BandFromRaw(tc.correct, tc.total); got != tc.want {
				t.Errorf("BandFromRaw(%d, %d) = %v, want %v", tc.correct, tc.total, got, tc.want)
			}
		})
	}
}

func TestOverall(t *testing.T) {
	cases := []struct {
		name  string
		bands []float64
		want  float64
	}{
		{"single band", []float64{6.5}, 6.5},
		{"exact half", []float64{6, 7}, 6.5},
		{"quarter rounds up", []float64{6, 6.5}, 6.5},       // 6.25 → 6.5
		{"three quarters rounds up", []float64{6.5, 7}, 7},  // 6.75 → 7
		{"whole average", []float64{5, 7}, 6},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Overall(tc.bands)
			if got == nil || *got != tc.want {
				t.Errorf("Overall(%v) = %v, want %v", tc.bands, got, tc.want)
			}
		})
	}
}

func TestOverallEmpty(t *testing.T) {
	if got := Overall(nil); got != nil {
		t.Errorf("Overall(nil) = %v, want nil", *got)
	}
}
