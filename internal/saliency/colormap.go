package saliency

// jet maps a normalized intensity to the jet color ramp (blue through cyan,
// green and yellow to red), matching the color scale the explanation prompt
// refers to.
func jet(v float64) (uint8, uint8, uint8) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}

	r := clamp01(1.5 - abs(4*v-3))
	g := clamp01(1.5 - abs(4*v-2))
	b := clamp01(1.5 - abs(4*v-1))

	return uint8(r * 255), uint8(g * 255), uint8(b * 255)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
