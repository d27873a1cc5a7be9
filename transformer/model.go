package transformer

import (
	"gonum.org/v1/gonum/mat"

	"github.com/RoyHirsch/TextualStyleTransfer/params"
	"github.com/RoyHirsch/TextualStyleTransfer/utils"
)

// Construction helpers. Every layer gets its own independently initialized
// attention and feed-forward instances; nothing is aliased across layers.

func newEncoderStack(cfg params.ModelConfig) *Encoder {
	layers := make([]*EncoderLayer, cfg.NumLayers)
	for i := range layers {
		layers[i] = NewEncoderLayer(
			cfg.DModel,
			NewMultiHeadAttention(cfg.NumHeads, cfg.DModel, cfg.Dropout),
			NewPositionwiseFeedForward(cfg.DModel, cfg.DFF, cfg.Dropout),
			cfg.Dropout,
		)
	}
	return &Encoder{Layers: layers, Norm: NewLayerNorm(cfg.DModel, 1e-6)}
}

func newDecoderStack(cfg params.ModelConfig) *Decoder {
	layers := make([]*DecoderLayer, cfg.NumLayers)
	for i := range layers {
		layers[i] = NewDecoderLayer(
			cfg.DModel,
			NewMultiHeadAttention(cfg.NumHeads, cfg.DModel, cfg.Dropout),
			NewMultiHeadAttention(cfg.NumHeads, cfg.DModel, cfg.Dropout),
			NewPositionwiseFeedForward(cfg.DModel, cfg.DFF, cfg.Dropout),
			cfg.Dropout,
		)
	}
	return &Decoder{Layers: layers, Norm: NewLayerNorm(cfg.DModel, 1e-6)}
}

// MakeEncoderDecoder constructs the encoder and the style decoder from
// hyperparameters. The token embedding (with its positional encoding) is
// shared between the source and target streams, as in the reference
// architecture; everything else is per-component.
func MakeEncoderDecoder(cfg params.ModelConfig) (*SourceEncoder, *StyleDecoder) {
	embed := NewEmbeddings(cfg.DModel, cfg.VocabSize)
	pos := NewPositionalEncoding(cfg.DModel, cfg.MaxLen, cfg.Dropout)

	enc := &SourceEncoder{
		Embed: embed,
		Pos:   pos,
		Stack: newEncoderStack(cfg),
	}
	dec := &StyleDecoder{
		Stack: newDecoderStack(cfg),
		Embed: embed,
		Pos:   pos,
		Style: NewStyleEmbedding(cfg.NStyles, cfg.DModel),
		Gen:   NewGenerator(cfg.DModel, cfg.VocabSize),
	}
	return enc, dec
}

// NewStyleTransformer constructs the additive-style generation model.
func NewStyleTransformer(cfg params.ModelConfig) *StyleTransformer {
	return &StyleTransformer{
		Embed: NewEmbeddings(cfg.DModel, cfg.VocabSize),
		Pos:   NewPositionalEncoding(cfg.DModel, cfg.MaxLen, cfg.Dropout),
		Style: NewStyleEmbedding(cfg.NStyles, cfg.DModel),
		Stack: newEncoderStack(cfg),
		Proj:  mat.NewDense(cfg.DModel, cfg.VocabSize, utils.XavierArray(cfg.DModel, cfg.VocabSize)),
	}
}
