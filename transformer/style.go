package transformer

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/RoyHirsch/TextualStyleTransfer/utils"
)

// prependRowDropLast inserts row as the first timestep of m and drops m's
// final timestep, keeping the sequence length constant. The final raw
// contextual state is discarded; that approximation is part of the
// style-injection contract, not an oversight to fix here.
func prependRowDropLast(row, m *mat.Dense) *mat.Dense {
	t, d := m.Dims()
	rr, rc := row.Dims()
	if rr != 1 || rc != d {
		panic(fmt.Sprintf("prependRowDropLast: style row must be (1 x %d), got (%d x %d)", d, rr, rc))
	}
	out := mat.NewDense(t, d, nil)
	copy(out.RawRowView(0), row.RawRowView(0))
	for i := 1; i < t; i++ {
		copy(out.RawRowView(i), m.RawRowView(i-1))
	}
	return out
}

// StyleDecoder is the fully functional decoder from context and style. It
// fuses the style embedding into both the encoder memory and the embedded
// target before decoding, so generation is explicitly conditioned on a
// target style, then produces log-probabilities over the vocabulary.
type StyleDecoder struct {
	Stack *Decoder
	Embed *Embeddings // shared with the source stream
	Pos   *PositionalEncoding
	Style *StyleEmbedding
	Gen   *Generator
}

// Forward decodes one sequence.
//
//	encOut: (T x dModel) encoder memory
//	label:  target style in [0, nStyles)
//	tgt:    target token ids, length T
//
// The style vector is prepended to the memory and to the embedded target;
// both streams drop their last timestep to keep shapes constant. Output is
// (T x vocab) log-probabilities.
func (d *StyleDecoder) Forward(encOut *mat.Dense, label int, srcMask *mat.Dense, tgt []int, tgtMask *mat.Dense, training bool) *mat.Dense {
	styleVec := d.Style.Lookup(label)

	memory := prependRowDropLast(styleVec, encOut)

	tgtEmb := d.Pos.Forward(d.Embed.Forward(tgt), training)
	tgtMod := prependRowDropLast(styleVec, tgtEmb)

	dec := d.Stack.Forward(tgtMod, memory, srcMask, tgtMask, training)
	return d.Gen.Forward(dec)
}

func (d *StyleDecoder) Params() []*mat.Dense {
	out := d.Stack.Params()
	out = append(out, d.Style.Params()...)
	out = append(out, d.Gen.Params()...)
	return out
}

// StyleTransformer is the generation/classification variant: the style
// embedding is broadcast-added onto the position-encoded source embedding
// (an additive bias on the representation, not a prepended token) before
// the encoder stack, and the result is projected straight to vocabulary
// logits.
type StyleTransformer struct {
	Embed *Embeddings
	Pos   *PositionalEncoding
	Style *StyleEmbedding
	Stack *Encoder
	Proj  *mat.Dense // (dModel x vocab), plain linear head
}

// Forward maps one source sequence and a target style to (T x vocab)
// logits. The logits are unnormalized; greedy decoding only needs argmax.
func (s *StyleTransformer) Forward(src []int, srcMask *mat.Dense, label int, training bool) *mat.Dense {
	x := s.Pos.Forward(s.Embed.Forward(src), training)
	x = utils.AddRowVec(x, s.Style.Lookup(label))
	enc := s.Stack.Forward(x, srcMask, training)
	return utils.ToDense(utils.Dot(enc, s.Proj))
}

func (s *StyleTransformer) Params() []*mat.Dense {
	out := s.Embed.Params()
	out = append(out, s.Style.Params()...)
	out = append(out, s.Stack.Params()...)
	return append(out, s.Proj)
}
