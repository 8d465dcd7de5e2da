// Package scoring converts raw correct-answer counts into IELTS bands.
package scoring

import "math"

// rawBands maps a raw score out of 40 to a band, following the published
// listening conversion table. Index = raw score.
var rawBands = [41]float64{
	0, 1, 2, 2, 2.5, 2.5, 3, 3, 3.5, 3.5, // 0–9
	4, 4, 4, 4.5, 4.5, 4.5, 5, 5, 5.5, 5.5, // 10–19
	5.5, 5.5, 5.5, 6, 6, 6, 6.5, 6.5, 6.5, 6.5, // 20–29
	7, 7, 7.5, 7.5, 7.5, 8, 8, 8.5, 8.5, 9, 9, // 30–40
}

// BandFromRaw converts a correct count over a section total into a band on
// the 0–9 scale. Sections shorter than the standard 40 questions are scaled
// to a 40-question equivalent before lookup.
func BandFromRaw(correct, total int) float64 {
	if total <= 0 || correct <= 0 {
		return 0
	}
	if correct > total {
		correct = total
	}
	scaled := int(math.Round(float64(correct) / float64(total) * 40))
	if scaled > 40 {
		scaled = 40
	}
	return rawBands[scaled]
}

// Overall averages section bands and rounds to the nearest half band, with
// quarters rounding up (6.25 → 6.5, 6.75 → 7), matching the official overall
// band rule. Returns nil when no section has a band yet.
func Overall(bands []float64) *float64 {
	if len(bands) == 0 {
		return nil
	}
	sum := 0.0
	for _, b := range bands {
		sum += b
	}
	avg := sum / float64(len(bands))
	rounded := math.Round(avg*2) / 2
	return &rounded
}
