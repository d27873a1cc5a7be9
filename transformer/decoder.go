package transformer

import (
	"gonum.org/v1/gonum/mat"
)

// DecoderLayer is one decoder block: masked self-attention, cross-attention
// against the encoder memory, then feed-forward, each sublayer-wrapped.
type DecoderLayer struct {
	SelfAttn *MultiHeadAttention
	SrcAttn  *MultiHeadAttention
	FF       *PositionwiseFeedForward
	Sub      [3]*SublayerConnection
}

func NewDecoderLayer(dModel int, selfAttn, srcAttn *MultiHeadAttention, ff *PositionwiseFeedForward, dropout float64) *DecoderLayer {
	return &DecoderLayer{
		SelfAttn: selfAttn,
		SrcAttn:  srcAttn,
		FF:       ff,
		Sub: [3]*SublayerConnection{
			NewSublayerConnection(dModel, dropout),
			NewSublayerConnection(dModel, dropout),
			NewSublayerConnection(dModel, dropout),
		},
	}
}

func (l *DecoderLayer) Forward(x, memory, srcMask, tgtMask *mat.Dense, training bool) *mat.Dense {
	x = l.Sub[0].Forward(x, func(y *mat.Dense) *mat.Dense {
		out, _ := l.SelfAttn.Forward(y, y, y, tgtMask, training)
		return out
	}, training)
	x = l.Sub[1].Forward(x, func(y *mat.Dense) *mat.Dense {
		out, _ := l.SrcAttn.Forward(y, memory, memory, srcMask, training)
		return out
	}, training)
	return l.Sub[2].Forward(x, func(y *mat.Dense) *mat.Dense {
		return l.FF.Forward(y, training)
	}, training)
}

func (l *DecoderLayer) Params() []*mat.Dense {
	out := l.SelfAttn.Params()
	out = append(out, l.SrcAttn.Params()...)
	out = append(out, l.FF.Params()...)
	for _, s := range l.Sub {
		out = append(out, s.Params()...)
	}
	return out
}

// Decoder is a stack of N decoder layers with one final normalization.
type Decoder struct {
	Layers []*DecoderLayer
	Norm   *LayerNorm
}

func (d *Decoder) Forward(x, memory, srcMask, tgtMask *mat.Dense, training bool) *mat.Dense {
	for _, l := range d.Layers {
		x = l.Forward(x, memory, srcMask, tgtMask, training)
	}
	return d.Norm.Forward(x)
}

func (d *Decoder) Params() []*mat.Dense {
	var out []*mat.Dense
	for _, l := range d.Layers {
		out = append(out, l.Params()...)
	}
	return append(out, d.Norm.Params()...)
}
