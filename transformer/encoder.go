package transformer

import (
	"gonum.org/v1/gonum/mat"
)

// EncoderLayer is one encoder block: self-attention then feed-forward,
// each wrapped in a SublayerConnection.
type EncoderLayer struct {
	SelfAttn *MultiHeadAttention
	FF       *PositionwiseFeedForward
	Sub      [2]*SublayerConnection
}

func NewEncoderLayer(dModel int, attn *MultiHeadAttention, ff *PositionwiseFeedForward, dropout float64) *EncoderLayer {
	return &EncoderLayer{
		SelfAttn: attn,
		FF:       ff,
		Sub: [2]*SublayerConnection{
			NewSublayerConnection(dModel, dropout),
			NewSublayerConnection(dModel, dropout),
		},
	}
}

func (l *EncoderLayer) Forward(x, mask *mat.Dense, training bool) *mat.Dense {
	x = l.Sub[0].Forward(x, func(y *mat.Dense) *mat.Dense {
		out, _ := l.SelfAttn.Forward(y, y, y, mask, training)
		return out
	}, training)
	return l.Sub[1].Forward(x, func(y *mat.Dense) *mat.Dense {
		return l.FF.Forward(y, training)
	}, training)
}

func (l *EncoderLayer) Params() []*mat.Dense {
	out := l.SelfAttn.Params()
	out = append(out, l.FF.Params()...)
	out = append(out, l.Sub[0].Params()...)
	out = append(out, l.Sub[1].Params()...)
	return out
}

// Encoder is a stack of N encoder layers with one final normalization.
type Encoder struct {
	Layers []*EncoderLayer
	Norm   *LayerNorm
}

func (e *Encoder) Forward(x, mask *mat.Dense, training bool) *mat.Dense {
	for _, l := range e.Layers {
		x = l.Forward(x, mask, training)
	}
	return e.Norm.Forward(x)
}

func (e *Encoder) Params() []*mat.Dense {
	var out []*mat.Dense
	for _, l := range e.Layers {
		out = append(out, l.Params()...)
	}
	return append(out, e.Norm.Params()...)
}

// SourceEncoder bundles the shared embedding, positional encoding and the
// encoder stack into the fully functional encoder used by the evaluation
// and generation paths.
type SourceEncoder struct {
	Embed *Embeddings
	Pos   *PositionalEncoding
	Stack *Encoder
}

// Encode embeds, position-encodes and contextualizes one source sequence.
func (e *SourceEncoder) Encode(src []int, srcMask *mat.Dense, training bool) *mat.Dense {
	x := e.Pos.Forward(e.Embed.Forward(src), training)
	return e.Stack.Forward(x, srcMask, training)
}

func (e *SourceEncoder) Params() []*mat.Dense {
	out := e.Embed.Params()
	return append(out, e.Stack.Params()...)
}
