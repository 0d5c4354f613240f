package dataset

import "gonum.org/v1/gonum/stat"

// Stats summarizes a dataset for quick inspection from the CLI.
type Stats struct {
	Count     int     `json:"count"`
	Positives int     `json:"positives"`
	MeanX1    float64 `json:"meanX1"`
	MeanX2    float64 `json:"meanX2"`
	StdX1     float64 `json:"stdX1"`
	StdX2     float64 `json:"stdX2"`
}

// Summarize computes per-feature mean/stddev and the label balance.
func (s *Set) Summarize() Stats {
	x1 := make([]float64, len(s.Points))
	x2 := make([]float64, len(s.Points))
	positives := 0
	for i, p := range s.Points {
		x1[i] = p.X1
		x2[i] = p.X2
		if p.Y == 1 {
			positives++
		}
	}

	m1, sd1 := stat.MeanStdDev(x1, nil)
	m2, sd2 := stat.MeanStdDev(x2, nil)

	return Stats{
		Count:     len(s.Points),
		Positives: positives,
		MeanX1:    m1,
		MeanX2:    m2,
		StdX1:     sd1,
		StdX2:     sd2,
	}
}
