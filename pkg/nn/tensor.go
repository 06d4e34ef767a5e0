package nn

// Tensor is a dense H*W*C activation volume in HWC layout. Fully connected
// activations use H=1, W=1.
type Tensor struct {
	H, W, C int
	Data    []float64
}

func NewTensor(h, w, c int) *Tensor {
	return &Tensor{
		H:    h,
		W:    w,
		C:    c,
		Data: make([]float64, h*w*c),
	}
}

func (t *Tensor) At(y, x, c int) float64 {
	return t.Data[(y*t.W+x)*t.C+c]
}

func (t *Tensor) Set(y, x, c int, v float64) {
	t.Data[(y*t.W+x)*t.C+c] = v
}

func (t *Tensor) Clone() *Tensor {
	out := NewTensor(t.H, t.W, t.C)
	copy(out.Data, t.Data)
	return out
}

// ChannelMaxAbs collapses the channel dimension by per-pixel maximum of
// absolute values, the reduction used for saliency grids.
func (t *Tensor) ChannelMaxAbs() [][]float64 {
	out := make([][]float64, t.H)
	for y := 0; y < t.H; y++ {
		out[y] = make([]float64, t.W)
		for x := 0; x < t.W; x++ {
			maxAbs := 0.0
			for c := 0; c < t.C; c++ {
				v := t.At(y, x, c)
				if v < 0 {
					v = -v
				}
				if v > maxAbs {
					maxAbs = v
				}
			}
			out[y][x] = maxAbs
		}
	}
	return out
}
