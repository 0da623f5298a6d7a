// Package config declares the harness/testing-facing configuration records
// a Zarr-v3 store deployment is described by: which storage backend backs
// the dataset engine, and which version of the dataset a Store should open
// (§6.3). None of these types is consumed by pkg/zarrstore itself — the
// engine is constructed and handed to zarrstore.New already wired up — but
// a harness assembling an engine from a config file needs a shared,
// unambiguous record to parse that file into.
package config

import (
	"encoding/json"

	"github.com/nuclio/errors"
)

// StoreConfig is the root configuration record for a Zarr-v3 store
// deployment (§6.3).
type StoreConfig struct {
	Storage StorageConfig `json:"storage"`
	Dataset DatasetConfig `json:"dataset"`
}

// DatasetConfig selects which version of the dataset to open and how large
// a chunk may be before the engine externalizes it instead of inlining it
// alongside its node.
type DatasetConfig struct {
	PreviousVersion           VersionInfo `json:"previous_version"`
	InlineChunkThresholdBytes *uint16     `json:"inline_chunk_threshold_bytes"`
}

// StorageConfig identifies the object storage backend the dataset engine
// persists to. Exactly one of InMemory, LocalFilesystem, Cached is set;
// this is a oneof rather than a Go interface because it round-trips
// through JSON, and a hand-rolled discriminated union over anonymous probe
// fields is the simplest thing that is total over the three cases — a
// schema-validation library would only buy safety the JSON is already
// small enough not to need.
type StorageConfig struct {
	InMemory        *InMemoryStorageConfig
	LocalFilesystem *LocalFilesystemStorageConfig
	Cached          *CachedStorageConfig
}

// InMemoryStorageConfig is the configuration of the in-memory storage
// backend. It carries no fields today; its presence as a named type (as
// opposed to a bare struct{}) leaves room for it to grow one without
// changing StorageConfig's shape.
type InMemoryStorageConfig struct{}

// LocalFilesystemStorageConfig configures the local-filesystem storage
// backend.
type LocalFilesystemStorageConfig struct {
	Root string `json:"root"`
}

// CachedStorageConfig wraps another StorageConfig with an in-memory cache
// bounded by approximate memory use.
type CachedStorageConfig struct {
	ApproxMaxMemoryBytes uint64        `json:"approx_max_memory_bytes"`
	Backend              StorageConfig `json:"backend"`
}

// storageConfigWire mirrors the three probe keys StorageConfig's JSON
// encoding exposes: {"in_memory": {}} | {"local_filesystem": {...}} |
// {"cached": {...}}. Presence, not value, of each key selects the variant.
type storageConfigWire struct {
	InMemory        *InMemoryStorageConfig        `json:"in_memory"`
	LocalFilesystem *LocalFilesystemStorageConfig `json:"local_filesystem"`
	Cached          *CachedStorageConfig          `json:"cached"`
}

// UnmarshalJSON implements the {"in_memory"|"local_filesystem"|"cached": ...}
// oneof (§6.3).
func (c *StorageConfig) UnmarshalJSON(data []byte) error {
	var wire storageConfigWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return errors.Wrap(err, "parse storage config")
	}

	set := 0
	if wire.InMemory != nil {
		set++
	}
	if wire.LocalFilesystem != nil {
		set++
	}
	if wire.Cached != nil {
		set++
	}
	if set != 1 {
		return errors.Errorf("storage config must set exactly one of in_memory, local_filesystem, cached, got %d", set)
	}

	c.InMemory = wire.InMemory
	c.LocalFilesystem = wire.LocalFilesystem
	c.Cached = wire.Cached
	return nil
}

// MarshalJSON re-emits whichever variant is set.
func (c StorageConfig) MarshalJSON() ([]byte, error) {
	return json.Marshal(storageConfigWire{
		InMemory:        c.InMemory,
		LocalFilesystem: c.LocalFilesystem,
		Cached:          c.Cached,
	})
}

// VersionInfo selects which version of a dataset to open (§6.3). Exactly
// one of Empty, StructureID, SnapshotID is set.
type VersionInfo struct {
	Empty       bool
	StructureID string
	SnapshotID  string
}

type versionInfoWire struct {
	Empty       json.RawMessage `json:"empty"`
	StructureID *string         `json:"structure_id"`
	SnapshotID  *string         `json:"snapshot_id"`
}

// UnmarshalJSON implements the {"empty"|"structure_id"|"snapshot_id": ...}
// oneof. structure_id must be 32 hex characters (a 16-byte object
// identifier); snapshot_id is accepted but reserved (not yet supported by
// any engine this adapter talks to).
func (v *VersionInfo) UnmarshalJSON(data []byte) error {
	var wire versionInfoWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return errors.Wrap(err, "parse version info")
	}

	set := 0
	if wire.Empty != nil {
		set++
	}
	if wire.StructureID != nil {
		set++
	}
	if wire.SnapshotID != nil {
		set++
	}
	if set != 1 {
		return errors.Errorf("version info must set exactly one of empty, structure_id, snapshot_id, got %d", set)
	}

	if wire.StructureID != nil {
		if !isHex32(*wire.StructureID) {
			return errors.Errorf("structure_id %q must be exactly 32 hex characters", *wire.StructureID)
		}
		v.StructureID = *wire.StructureID
		return nil
	}

	if wire.SnapshotID != nil {
		v.SnapshotID = *wire.SnapshotID
		return nil
	}

	v.Empty = true
	return nil
}

// MarshalJSON re-emits whichever variant is set.
func (v VersionInfo) MarshalJSON() ([]byte, error) {
	switch {
	case v.StructureID != "":
		return json.Marshal(struct {
			StructureID string `json:"structure_id"`
		}{StructureID: v.StructureID})
	case v.SnapshotID != "":
		return json.Marshal(struct {
			SnapshotID string `json:"snapshot_id"`
		}{SnapshotID: v.SnapshotID})
	default:
		return json.Marshal(struct {
			Empty struct{} `json:"empty"`
		}{})
	}
}

func isHex32(s string) bool {
	if len(s) != 32 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
