package session

import "fmt"

// Metrics are rough recognition counters. A known face that was already
// marked counts as a false positive and a face matching no one as a false
// negative; there is no ground truth to do better.
type Metrics struct {
	Total          int `json:"total"`
	TruePositives  int `json:"true_positives"`
	FalsePositives int `json:"false_positives"`
	FalseNegatives int `json:"false_negatives"`
}

// Accuracy is TP / total, in percent.
func (m Metrics) Accuracy() float64 {
	return percent(m.TruePositives, m.Total)
}

// Precision is TP / (TP + FP), in percent.
func (m Metrics) Precision() float64 {
	return percent(m.TruePositives, m.TruePositives+m.FalsePositives)
}

// Recall is TP / (TP + FN), in percent.
func (m Metrics) Recall() float64 {
	return percent(m.TruePositives, m.TruePositives+m.FalseNegatives)
}

func (m Metrics) String() string {
	return fmt.Sprintf("Performance Metrics:\nTotal Faces Processed: %d\nAccuracy: %.2f%%\nPrecision: %.2f%%\nRecall: %.2f%%",
		m.Total, m.Accuracy(), m.Precision(), m.Recall())
}

func percent(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d) * 100
}
