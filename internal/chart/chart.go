package chart

import (
	"fmt"
)

// barColors matches the per-class palette of the original dashboard.
var barColors = []string{"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728"}

// BarChart describes the confidence chart for the frontend to draw.
type BarChart struct {
	Title      string    `json:"title"`
	Labels     []string  `json:"labels"`
	Values     []float64 `json:"values"`
	Text       []string  `json:"text"`
	Colors     []string  `json:"colors"`
	YAxisTitle string    `json:"y_axis_title"`
	YAxisRange [2]int    `json:"y_axis_range"`
}

// Confidence converts a probability vector to percentage bars with fixed
// label order, per-bar colors and a [0,100] y axis. Pure function, no
// validation beyond what the caller guarantees.
func Confidence(labels []string, probs []float64) BarChart {
	values := make([]float64, len(probs))
	text := make([]string, len(probs))
	for i, p := range probs {
		values[i] = p * 100
		text[i] = fmt.Sprintf("%.1f%%", values[i])
	}

	colors := make([]string, len(probs))
	for i := range colors {
		colors[i] = barColors[i%len(barColors)]
	}

	return BarChart{
		Title:      "Prediction Confidence by Class",
		Labels:     labels,
		Values:     values,
		Text:       text,
		Colors:     colors,
		YAxisTitle: "Confidence (%)",
		YAxisRange: [2]int{0, 100},
	}
}
