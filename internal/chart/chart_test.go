package chart

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfidenceChart(t *testing.T) {
	labels := []string{"Glioma", "Meningioma", "No Tumor", "Pituitary"}
	probs := []float64{0.05, 0.7, 0.15, 0.1}

	c := Confidence(labels, probs)

	require.Equal(t, "Prediction Confidence by Class", c.Title)
	require.Equal(t, labels, c.Labels)
	require.Equal(t, []float64{5, 70, 15, 10}, c.Values)
	require.Equal(t, []string{"5.0%", "70.0%", "15.0%", "10.0%"}, c.Text)
	require.Equal(t, []string{"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728"}, c.Colors)
	require.Equal(t, "Confidence (%)", c.YAxisTitle)
	require.Equal(t, [2]int{0, 100}, c.YAxisRange)
}

func TestConfidenceChartRoundsText(t *testing.T) {
	c := Confidence([]string{"a", "b", "c", "d"}, []float64{0.12345, 0.87655, 0, 0})

	require.Equal(t, "12.3%", c.Text[0])
	require.Equal(t, "87.7%", c.Text[1])
	require.Equal(t, "0.0%", c.Text[2])
}
