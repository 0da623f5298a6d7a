// Package metadata implements the bidirectional conversion between the
// dataset engine's structured array/group metadata and the Zarr-v3 JSON
// schema (§4.2, §6.1), including the non-obvious name/configuration
// envelope used by chunk_grid and chunk_key_encoding.
package metadata

import (
	"encoding/json"

	"github.com/nuclio/errors"
)

const zarrFormat = 3

// UserAttributes is the free-form JSON object a node may carry. Nil means
// "no attributes" (serializes to JSON null, per §6.1's "attributes:<obj|null>").
type UserAttributes json.RawMessage

// GroupMetadata is a group node's structured metadata.
type GroupMetadata struct {
	Attributes UserAttributes
}

// ArrayMetadata is an array node's structured metadata (§3's
// ZarrArrayMetadata, plus the attributes every node carries).
type ArrayMetadata struct {
	Attributes          UserAttributes
	Shape               []uint64
	DataType            DataType
	ChunkShape          ChunkShape
	ChunkKeyEncoding    ChunkKeyEncoding
	FillValue           FillValue
	Codecs              []CodecDescriptor
	StorageTransformers []StorageTransformerDescriptor
	DimensionNames      []*string // each entry is either a name or nil
}

// wire envelope shared by both node kinds; array fields are flattened into
// the same object rather than nested (§4.2).
type wireEnvelope struct {
	ZarrFormat int             `json:"zarr_format"`
	NodeType   string          `json:"node_type"`
	Attributes json.RawMessage `json:"attributes"`
}

type wireArray struct {
	wireEnvelope
	Shape               []uint64          `json:"shape"`
	DataType            DataType          `json:"data_type"`
	ChunkGrid           json.RawMessage   `json:"chunk_grid"`
	ChunkKeyEncoding    json.RawMessage   `json:"chunk_key_encoding"`
	FillValue           json.RawMessage   `json:"fill_value"`
	Codecs              []CodecDescriptor `json:"codecs"`
	StorageTransformers []CodecDescriptor `json:"storage_transformers,omitempty"`
	DimensionNames      []*string         `json:"dimension_names,omitempty"`
}

// SerializeGroup produces the canonical Zarr-v3 JSON bytes for a group
// node's metadata. Serialization is total: it only emits values produced
// from controlled Go structures, so a failure here is a bug, not a user
// error (§4.2).
func SerializeGroup(m GroupMetadata) []byte {
	env := wireEnvelope{
		ZarrFormat: zarrFormat,
		NodeType:   "group",
		Attributes: attributesOrNull(m.Attributes),
	}
	out, err := json.Marshal(env)
	if err != nil {
		panic(errors.Wrap(err, "bug: GroupMetadata serialization failed"))
	}
	return out
}

// SerializeArray produces the canonical Zarr-v3 JSON bytes for an array
// node's metadata.
func SerializeArray(m ArrayMetadata) []byte {
	chunkGrid, err := m.ChunkShape.marshalEnvelope()
	if err != nil {
		panic(errors.Wrap(err, "bug: ArrayMetadata.ChunkShape serialization failed"))
	}
	chunkKeyEncoding, err := m.ChunkKeyEncoding.marshalEnvelope()
	if err != nil {
		panic(errors.Wrap(err, "bug: ArrayMetadata.ChunkKeyEncoding serialization failed"))
	}

	codecs := m.Codecs
	if codecs == nil {
		codecs = []CodecDescriptor{}
	}

	w := wireArray{
		wireEnvelope: wireEnvelope{
			ZarrFormat: zarrFormat,
			NodeType:   "array",
			Attributes: attributesOrNull(m.Attributes),
		},
		Shape:               m.Shape,
		DataType:            m.DataType,
		ChunkGrid:           chunkGrid,
		ChunkKeyEncoding:     chunkKeyEncoding,
		FillValue:           m.FillValue.Raw(),
		Codecs:              codecs,
		StorageTransformers: m.StorageTransformers,
		DimensionNames:      m.DimensionNames,
	}

	out, err := json.Marshal(w)
	if err != nil {
		panic(errors.Wrap(err, "bug: ArrayMetadata serialization failed"))
	}
	return out
}

func attributesOrNull(a UserAttributes) json.RawMessage {
	if a == nil {
		return json.RawMessage("null")
	}
	return json.RawMessage(a)
}

// ParseGroup parses Zarr-v3 group metadata JSON.
func ParseGroup(data []byte) (GroupMetadata, error) {
	var env wireEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return GroupMetadata{}, errors.Wrap(err, "parse group metadata")
	}
	if env.NodeType != "group" {
		return GroupMetadata{}, errors.Errorf("node_type %q is not \"group\"", env.NodeType)
	}
	return GroupMetadata{Attributes: rawToAttributes(env.Attributes)}, nil
}

// ParseArray parses Zarr-v3 array metadata JSON, reconstructing the typed
// fill value once data_type is known (§4.2).
func ParseArray(data []byte) (ArrayMetadata, error) {
	var w wireArray
	if err := json.Unmarshal(data, &w); err != nil {
		return ArrayMetadata{}, errors.Wrap(err, "parse array metadata")
	}
	if w.NodeType != "array" {
		return ArrayMetadata{}, errors.Errorf("node_type %q is not \"array\"", w.NodeType)
	}

	chunkShape, err := parseChunkShape(w.ChunkGrid)
	if err != nil {
		return ArrayMetadata{}, errors.Wrap(err, "parse chunk_grid")
	}
	chunkKeyEncoding, err := parseChunkKeyEncoding(w.ChunkKeyEncoding)
	if err != nil {
		return ArrayMetadata{}, errors.Wrap(err, "parse chunk_key_encoding")
	}
	fillValue, err := ParseFillValue(w.DataType, w.FillValue)
	if err != nil {
		return ArrayMetadata{}, errors.Wrap(err, "parse fill_value")
	}

	return ArrayMetadata{
		Attributes:          rawToAttributes(w.Attributes),
		Shape:               w.Shape,
		DataType:            w.DataType,
		ChunkShape:          chunkShape,
		ChunkKeyEncoding:    chunkKeyEncoding,
		FillValue:           fillValue,
		Codecs:              w.Codecs,
		StorageTransformers: w.StorageTransformers,
		DimensionNames:      w.DimensionNames,
	}, nil
}

func rawToAttributes(raw json.RawMessage) UserAttributes {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return UserAttributes(raw)
}

// Sniff parses a metadata-key payload by trying array metadata first and
// falling back to group metadata, matching §4.2's sniff-dispatch rule: array
// metadata is a strict superset of group metadata's shape but distinguishable
// by node_type, so attempting array first and falling back is equivalent to
// checking node_type up front and cheaper to express.
func Sniff(data []byte) (array *ArrayMetadata, group *GroupMetadata, err error) {
	if a, aErr := ParseArray(data); aErr == nil {
		return &a, nil, nil
	}

	g, gErr := ParseGroup(data)
	if gErr != nil {
		return nil, nil, errors.Wrap(gErr, "metadata payload is neither valid array nor group metadata")
	}
	return nil, &g, nil
}
