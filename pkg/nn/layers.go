package nn

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Layer is a single inference stage. Forward caches whatever Backward needs
// to push a gradient from the layer's output back to its input, so a layer
// instance serves one request at a time.
type Layer interface {
	Forward(x *Tensor) *Tensor
	Backward(grad *Tensor) *Tensor
}

const (
	ActivationNone = ""
	ActivationReLU = "relu"
)

// Conv2D is a standard 2D convolution, computed as an im2col matrix product.
type Conv2D struct {
	KH, KW     int
	InC, OutC  int
	Stride     int
	SamePad    bool
	Activation string

	// W is laid out [outC][ky*KW*InC + kx*InC + ci], B is [outC].
	W []float64
	B []float64

	inH, inW int
	cols     *mat.Dense
	preMask  []bool
}

func (l *Conv2D) pad() (int, int) {
	if l.SamePad {
		return (l.KH - 1) / 2, (l.KW - 1) / 2
	}
	return 0, 0
}

func (l *Conv2D) outSize(inH, inW int) (int, int) {
	padH, padW := l.pad()
	outH := (inH+2*padH-l.KH)/l.Stride + 1
	outW := (inW+2*padW-l.KW)/l.Stride + 1
	return outH, outW
}

func (l *Conv2D) Forward(x *Tensor) *Tensor {
	if x.C != l.InC {
		panic(fmt.Sprintf("conv2d: expected %d input channels, got %d", l.InC, x.C))
	}

	l.inH, l.inW = x.H, x.W
	padH, padW := l.pad()
	outH, outW := l.outSize(x.H, x.W)
	k := l.KH * l.KW * l.InC
	n := outH * outW

	cols := mat.NewDense(k, n, nil)
	for oy := 0; oy < outH; oy++ {
		for ox := 0; ox < outW; ox++ {
			col := oy*outW + ox
			for ky := 0; ky < l.KH; ky++ {
				iy := oy*l.Stride + ky - padH
				for kx := 0; kx < l.KW; kx++ {
					ix := ox*l.Stride + kx - padW
					base := (ky*l.KW + kx) * l.InC
					if iy < 0 || iy >= x.H || ix < 0 || ix >= x.W {
						continue
					}
					for ci := 0; ci < l.InC; ci++ {
						cols.Set(base+ci, col, x.At(iy, ix, ci))
					}
				}
			}
		}
	}
	l.cols = cols

	weights := mat.NewDense(l.OutC, k, l.W)
	var product mat.Dense
	product.Mul(weights, cols)

	out := NewTensor(outH, outW, l.OutC)
	l.preMask = make([]bool, len(out.Data))
	for o := 0; o < l.OutC; o++ {
		for col := 0; col < n; col++ {
			v := product.At(o, col) + l.B[o]
			idx := col*l.OutC + o
			if l.Activation == ActivationReLU {
				l.preMask[idx] = v > 0
				if v < 0 {
					v = 0
				}
			}
			out.Data[idx] = v
		}
	}
	return out
}

func (l *Conv2D) Backward(grad *Tensor) *Tensor {
	outH, outW := grad.H, grad.W
	n := outH * outW
	k := l.KH * l.KW * l.InC

	dPre := mat.NewDense(l.OutC, n, nil)
	for o := 0; o < l.OutC; o++ {
		for col := 0; col < n; col++ {
			idx := col*l.OutC + o
			g := grad.Data[idx]
			if l.Activation == ActivationReLU && !l.preMask[idx] {
				g = 0
			}
			dPre.Set(o, col, g)
		}
	}

	weights := mat.NewDense(l.OutC, k, l.W)
	var dCols mat.Dense
	dCols.Mul(weights.T(), dPre)

	padH, padW := l.pad()
	dIn := NewTensor(l.inH, l.inW, l.InC)
	for oy := 0; oy < outH; oy++ {
		for ox := 0; ox < outW; ox++ {
			col := oy*outW + ox
			for ky := 0; ky < l.KH; ky++ {
				iy := oy*l.Stride + ky - padH
				for kx := 0; kx < l.KW; kx++ {
					ix := ox*l.Stride + kx - padW
					if iy < 0 || iy >= l.inH || ix < 0 || ix >= l.inW {
						continue
					}
					base := (ky*l.KW + kx) * l.InC
					for ci := 0; ci < l.InC; ci++ {
						dIn.Data[(iy*l.inW+ix)*l.InC+ci] += dCols.At(base+ci, col)
					}
				}
			}
		}
	}
	return dIn
}

// MaxPool2D pools non-overlapping Size x Size windows.
type MaxPool2D struct {
	Size int

	inH, inW, inC int
	argmax        []int
}

func (l *MaxPool2D) Forward(x *Tensor) *Tensor {
	l.inH, l.inW, l.inC = x.H, x.W, x.C
	outH := x.H / l.Size
	outW := x.W / l.Size

	out := NewTensor(outH, outW, x.C)
	l.argmax = make([]int, len(out.Data))
	for oy := 0; oy < outH; oy++ {
		for ox := 0; ox < outW; ox++ {
			for c := 0; c < x.C; c++ {
				best := math.Inf(-1)
				bestIdx := 0
				for py := 0; py < l.Size; py++ {
					for px := 0; px < l.Size; px++ {
						iy := oy*l.Size + py
						ix := ox*l.Size + px
						idx := (iy*x.W+ix)*x.C + c
						if x.Data[idx] > best {
							best = x.Data[idx]
							bestIdx = idx
						}
					}
				}
				outIdx := (oy*outW+ox)*x.C + c
				out.Data[outIdx] = best
				l.argmax[outIdx] = bestIdx
			}
		}
	}
	return out
}

func (l *MaxPool2D) Backward(grad *Tensor) *Tensor {
	dIn := NewTensor(l.inH, l.inW, l.inC)
	for outIdx, inIdx := range l.argmax {
		dIn.Data[inIdx] += grad.Data[outIdx]
	}
	return dIn
}

// Flatten reshapes an H*W*C volume into a 1x1xN vector.
type Flatten struct {
	inH, inW, inC int
}

func (l *Flatten) Forward(x *Tensor) *Tensor {
	l.inH, l.inW, l.inC = x.H, x.W, x.C
	out := NewTensor(1, 1, x.H*x.W*x.C)
	copy(out.Data, x.Data)
	return out
}

func (l *Flatten) Backward(grad *Tensor) *Tensor {
	dIn := NewTensor(l.inH, l.inW, l.inC)
	copy(dIn.Data, grad.Data)
	return dIn
}

// Dense is a fully connected layer over a flattened input.
type Dense struct {
	In, Out    int
	Activation string

	// W is [out][in], B is [out].
	W []float64
	B []float64

	preMask []bool
}

func (l *Dense) Forward(x *Tensor) *Tensor {
	if len(x.Data) != l.In {
		panic(fmt.Sprintf("dense: expected %d inputs, got %d", l.In, len(x.Data)))
	}

	weights := mat.NewDense(l.Out, l.In, l.W)
	in := mat.NewVecDense(l.In, x.Data)
	var product mat.VecDense
	product.MulVec(weights, in)

	out := NewTensor(1, 1, l.Out)
	l.preMask = make([]bool, l.Out)
	for o := 0; o < l.Out; o++ {
		v := product.AtVec(o) + l.B[o]
		if l.Activation == ActivationReLU {
			l.preMask[o] = v > 0
			if v < 0 {
				v = 0
			}
		}
		out.Data[o] = v
	}
	return out
}

func (l *Dense) Backward(grad *Tensor) *Tensor {
	dPre := make([]float64, l.Out)
	for o := 0; o < l.Out; o++ {
		g := grad.Data[o]
		if l.Activation == ActivationReLU && !l.preMask[o] {
			g = 0
		}
		dPre[o] = g
	}

	weights := mat.NewDense(l.Out, l.In, l.W)
	var dIn mat.VecDense
	dIn.MulVec(weights.T(), mat.NewVecDense(l.Out, dPre))

	out := NewTensor(1, 1, l.In)
	for i := 0; i < l.In; i++ {
		out.Data[i] = dIn.AtVec(i)
	}
	return out
}

// Dropout is an inference no-op kept so exported architectures round-trip.
type Dropout struct {
	Rate float64
}

func (l *Dropout) Forward(x *Tensor) *Tensor {
	return x
}

func (l *Dropout) Backward(grad *Tensor) *Tensor {
	return grad
}

// Softmax normalizes the final logits into class probabilities.
type Softmax struct {
	probs []float64
}

func (l *Softmax) Forward(x *Tensor) *Tensor {
	maxLogit := math.Inf(-1)
	for _, v := range x.Data {
		if v > maxLogit {
			maxLogit = v
		}
	}

	out := NewTensor(x.H, x.W, x.C)
	sum := 0.0
	for i, v := range x.Data {
		e := math.Exp(v - maxLogit)
		out.Data[i] = e
		sum += e
	}
	for i := range out.Data {
		out.Data[i] /= sum
	}

	l.probs = make([]float64, len(out.Data))
	copy(l.probs, out.Data)
	return out
}

func (l *Softmax) Backward(grad *Tensor) *Tensor {
	dot := 0.0
	for i, g := range grad.Data {
		dot += g * l.probs[i]
	}

	dIn := NewTensor(grad.H, grad.W, grad.C)
	for i := range grad.Data {
		dIn.Data[i] = l.probs[i] * (grad.Data[i] - dot)
	}
	return dIn
}
