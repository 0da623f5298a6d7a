package metadata

import (
	"encoding/json"

	"github.com/nuclio/errors"
)

// nameConfig is the wire envelope shared by chunk_grid and
// chunk_key_encoding: {"name": "...", "configuration": {...}}.
type nameConfig struct {
	Name          string          `json:"name"`
	Configuration json.RawMessage `json:"configuration"`
}

// ChunkShape is an array's per-dimension chunk extent, one strictly
// positive integer per dimension.
type ChunkShape []uint64

func (s ChunkShape) marshalEnvelope() (json.RawMessage, error) {
	cfg := struct {
		ChunkShape []uint64 `json:"chunk_shape"`
	}{ChunkShape: []uint64(s)}

	config, err := json.Marshal(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "marshal chunk_grid configuration")
	}

	return json.Marshal(nameConfig{Name: "regular", Configuration: config})
}

func parseChunkShape(raw json.RawMessage) (ChunkShape, error) {
	var nc nameConfig
	if err := json.Unmarshal(raw, &nc); err != nil {
		return nil, errors.Wrap(err, "parse chunk_grid envelope")
	}
	if nc.Name != "regular" {
		return nil, errors.Errorf("unsupported chunk_grid name %q, only \"regular\" is recognized", nc.Name)
	}

	var cfg struct {
		ChunkShape []uint64 `json:"chunk_shape"`
	}
	if err := json.Unmarshal(nc.Configuration, &cfg); err != nil {
		return nil, errors.Wrap(err, "parse chunk_grid.configuration.chunk_shape")
	}
	if len(cfg.ChunkShape) == 0 {
		return nil, errors.Errorf("chunk_grid.configuration.chunk_shape must not be empty")
	}
	for _, n := range cfg.ChunkShape {
		if n == 0 {
			return nil, errors.Errorf("chunk_grid.configuration.chunk_shape entries must be strictly positive")
		}
	}

	return ChunkShape(cfg.ChunkShape), nil
}

// ChunkKeyEncoding identifies the separator used between chunk coordinates
// in a key. Only the '/' separator is supported by this adapter (§4.1, §9
// Open Questions).
type ChunkKeyEncoding struct {
	Separator byte
}

// ChunkKeyEncodingSlash is the only supported chunk_key_encoding.
var ChunkKeyEncodingSlash = ChunkKeyEncoding{Separator: '/'}

func (e ChunkKeyEncoding) marshalEnvelope() (json.RawMessage, error) {
	if e.Separator != '/' {
		return nil, errors.Errorf("unsupported chunk_key_encoding separator %q", e.Separator)
	}
	cfg, err := json.Marshal(struct {
		Separator string `json:"separator"`
	}{Separator: "/"})
	if err != nil {
		return nil, errors.Wrap(err, "marshal chunk_key_encoding configuration")
	}
	return json.Marshal(nameConfig{Name: "default", Configuration: cfg})
}

func parseChunkKeyEncoding(raw json.RawMessage) (ChunkKeyEncoding, error) {
	var nc nameConfig
	if err := json.Unmarshal(raw, &nc); err != nil {
		return ChunkKeyEncoding{}, errors.Wrap(err, "parse chunk_key_encoding envelope")
	}
	if nc.Name != "default" {
		return ChunkKeyEncoding{}, errors.Errorf("unsupported chunk_key_encoding name %q, only \"default\" is recognized", nc.Name)
	}

	var cfg struct {
		Separator string `json:"separator"`
	}
	if err := json.Unmarshal(nc.Configuration, &cfg); err != nil {
		return ChunkKeyEncoding{}, errors.Wrap(err, "parse chunk_key_encoding.configuration.separator")
	}
	if cfg.Separator != "/" {
		return ChunkKeyEncoding{}, errors.Errorf("unsupported chunk_key_encoding separator %q, only \"/\" is recognized", cfg.Separator)
	}

	return ChunkKeyEncodingSlash, nil
}

// CodecDescriptor is a data-path filter applied to chunk bytes. The adapter
// is agnostic to codec semantics and round-trips Configuration opaquely.
type CodecDescriptor struct {
	Name          string          `json:"name"`
	Configuration json.RawMessage `json:"configuration,omitempty"`
}

// StorageTransformerDescriptor shares CodecDescriptor's envelope shape.
type StorageTransformerDescriptor = CodecDescriptor
