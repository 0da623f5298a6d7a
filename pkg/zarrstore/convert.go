package zarrstore

import (
	"github.com/polarstore/zarrstore/pkg/engine"
	"github.com/polarstore/zarrstore/pkg/metadata"
)

// engineArrayMetaToWire bridges the engine's array metadata representation
// to the wire-facing metadata package's representation, reconstructing the
// typed FillValue now that DataType is known (mirrors metadata.ParseArray's
// "fill_value is parsed after data_type" ordering).
func engineArrayMetaToWire(m engine.ArrayMetadata) (metadata.ArrayMetadata, error) {
	fillValue, err := metadata.ParseFillValue(metadata.DataType(m.DataType), m.FillValueJSON)
	if err != nil {
		return metadata.ArrayMetadata{}, err
	}

	codecs := make([]metadata.CodecDescriptor, len(m.Codecs))
	for i, c := range m.Codecs {
		codecs[i] = metadata.CodecDescriptor{Name: c.Name, Configuration: c.Configuration}
	}

	var transformers []metadata.StorageTransformerDescriptor
	if len(m.StorageTransformers) > 0 {
		transformers = make([]metadata.StorageTransformerDescriptor, len(m.StorageTransformers))
		for i, t := range m.StorageTransformers {
			transformers[i] = metadata.StorageTransformerDescriptor{Name: t.Name, Configuration: t.Configuration}
		}
	}

	return metadata.ArrayMetadata{
		Shape:               m.Shape,
		DataType:            metadata.DataType(m.DataType),
		ChunkShape:          metadata.ChunkShape(m.ChunkShape),
		ChunkKeyEncoding:    metadata.ChunkKeyEncodingSlash,
		FillValue:           fillValue,
		Codecs:              codecs,
		StorageTransformers: transformers,
		DimensionNames:      m.DimensionNames,
	}, nil
}

// wireArrayMetaToEngine is the inverse bridge, used by Store.Set when
// writing a freshly-parsed (or updated) array metadata payload back to the
// engine.
func wireArrayMetaToEngine(m metadata.ArrayMetadata) engine.ArrayMetadata {
	codecs := make([]engine.CodecDescriptor, len(m.Codecs))
	for i, c := range m.Codecs {
		codecs[i] = engine.CodecDescriptor{Name: c.Name, Configuration: c.Configuration}
	}

	var transformers []engine.CodecDescriptor
	if len(m.StorageTransformers) > 0 {
		transformers = make([]engine.CodecDescriptor, len(m.StorageTransformers))
		for i, t := range m.StorageTransformers {
			transformers[i] = engine.CodecDescriptor{Name: t.Name, Configuration: t.Configuration}
		}
	}

	return engine.ArrayMetadata{
		Shape:               m.Shape,
		DataType:            string(m.DataType),
		ChunkShape:          []uint64(m.ChunkShape),
		FillValueJSON:       m.FillValue.Raw(),
		Codecs:              codecs,
		StorageTransformers: transformers,
		DimensionNames:      m.DimensionNames,
	}
}

// wireAttributesToEngine lifts a parsed metadata payload's attributes into
// the engine's UserAttributes shape. Set always inlines; the adapter never
// chooses to store attributes by reference (that is an engine-side policy,
// §9 Open Questions).
func wireAttributesToEngine(a metadata.UserAttributes) engine.UserAttributes {
	if a == nil {
		return engine.UserAttributes{}
	}
	return engine.UserAttributes{Inline: []byte(a)}
}
