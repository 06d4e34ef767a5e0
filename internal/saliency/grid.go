package saliency

import (
	"math"
	"sort"
)

// resizeBilinear scales a float grid to rows x cols with pixel-center
// alignment. The gradient grid stays in float space here; quantizing it to
// an 8-bit image before normalization would destroy the percentile step.
func resizeBilinear(grid [][]float64, rows, cols int) [][]float64 {
	inRows := len(grid)
	inCols := len(grid[0])

	out := make([][]float64, rows)
	scaleY := float64(inRows) / float64(rows)
	scaleX := float64(inCols) / float64(cols)

	for y := 0; y < rows; y++ {
		out[y] = make([]float64, cols)
		sy := (float64(y)+0.5)*scaleY - 0.5
		y0 := int(math.Floor(sy))
		fy := sy - float64(y0)
		y1 := y0 + 1
		y0 = clampIndex(y0, inRows)
		y1 = clampIndex(y1, inRows)

		for x := 0; x < cols; x++ {
			sx := (float64(x)+0.5)*scaleX - 0.5
			x0 := int(math.Floor(sx))
			fx := sx - float64(x0)
			x1 := x0 + 1
			x0 = clampIndex(x0, inCols)
			x1 = clampIndex(x1, inCols)

			top := grid[y0][x0]*(1-fx) + grid[y0][x1]*fx
			bottom := grid[y1][x0]*(1-fx) + grid[y1][x1]*fx
			out[y][x] = top*(1-fy) + bottom*fy
		}
	}
	return out
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// circularMask marks the centered disk of radius min(halfH, halfW)-10, the
// region assumed to contain the brain.
func circularMask(rows, cols int) [][]bool {
	cy, cx := rows/2, cols/2
	radius := cy
	if cx < radius {
		radius = cx
	}
	radius -= 10

	mask := make([][]bool, rows)
	for y := 0; y < rows; y++ {
		mask[y] = make([]bool, cols)
		for x := 0; x < cols; x++ {
			dy, dx := y-cy, x-cx
			mask[y][x] = dy*dy+dx*dx <= radius*radius
		}
	}
	return mask
}

// normalizeWithinMask min-max normalizes grid values inside the mask and
// zeroes everything outside it. A constant gradient field (max == min) has
// no signal to rank, so it becomes an all-zero map rather than leaving
// unnormalized values flowing into thresholding.
func normalizeWithinMask(grid [][]float64, mask [][]bool) {
	minV := math.Inf(1)
	maxV := math.Inf(-1)
	for y := range grid {
		for x := range grid[y] {
			if !mask[y][x] {
				grid[y][x] = 0
				continue
			}
			if grid[y][x] < minV {
				minV = grid[y][x]
			}
			if grid[y][x] > maxV {
				maxV = grid[y][x]
			}
		}
	}

	if !(maxV > minV) {
		for y := range grid {
			for x := range grid[y] {
				grid[y][x] = 0
			}
		}
		return
	}

	span := maxV - minV
	for y := range grid {
		for x := range grid[y] {
			if mask[y][x] {
				grid[y][x] = (grid[y][x] - minV) / span
			}
		}
	}
}

// maskedPercentile returns the p-th percentile of the in-mask values using
// linear interpolation between ranks.
func maskedPercentile(grid [][]float64, mask [][]bool, p float64) float64 {
	values := make([]float64, 0, len(grid)*len(grid[0]))
	for y := range grid {
		for x := range grid[y] {
			if mask[y][x] {
				values = append(values, grid[y][x])
			}
		}
	}
	if len(values) == 0 {
		return 0
	}

	sort.Float64s(values)
	rank := p / 100 * float64(len(values)-1)
	lower := int(math.Floor(rank))
	if lower >= len(values)-1 {
		return values[len(values)-1]
	}
	frac := rank - float64(lower)
	return values[lower] + frac*(values[lower+1]-values[lower])
}

func thresholdBelow(grid [][]float64, threshold float64) {
	for y := range grid {
		for x := range grid[y] {
			if grid[y][x] < threshold {
				grid[y][x] = 0
			}
		}
	}
}

// gaussianBlur applies a separable ksize x ksize Gaussian with the sigma
// OpenCV derives from the kernel size, reflecting at the borders.
func gaussianBlur(grid [][]float64, ksize int) [][]float64 {
	sigma := 0.3*((float64(ksize)-1)*0.5-1) + 0.8
	center := ksize / 2

	kernel := make([]float64, ksize)
	sum := 0.0
	for i := range kernel {
		d := float64(i - center)
		kernel[i] = math.Exp(-d * d / (2 * sigma * sigma))
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}

	rows := len(grid)
	cols := len(grid[0])

	horizontal := make([][]float64, rows)
	for y := 0; y < rows; y++ {
		horizontal[y] = make([]float64, cols)
		for x := 0; x < cols; x++ {
			acc := 0.0
			for i, k := range kernel {
				acc += k * grid[y][reflectIndex(x+i-center, cols)]
			}
			horizontal[y][x] = acc
		}
	}

	out := make([][]float64, rows)
	for y := 0; y < rows; y++ {
		out[y] = make([]float64, cols)
		for x := 0; x < cols; x++ {
			acc := 0.0
			for i, k := range kernel {
				acc += k * horizontal[reflectIndex(y+i-center, rows)][x]
			}
			out[y][x] = acc
		}
	}
	return out
}

// reflectIndex mirrors an out-of-range index without repeating the border
// sample (OpenCV's default BORDER_REFLECT_101).
func reflectIndex(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*(n-1) - i
		}
	}
	return i
}
