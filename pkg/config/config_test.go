package config

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStorageConfig_ParsesEachVariant(t *testing.T) {
	var c StorageConfig
	require.NoError(t, json.Unmarshal([]byte(`{"in_memory":{}}`), &c))
	require.NotNil(t, c.InMemory)
	require.Nil(t, c.LocalFilesystem)
	require.Nil(t, c.Cached)

	require.NoError(t, json.Unmarshal([]byte(`{"local_filesystem":{"root":"/data"}}`), &c))
	require.NotNil(t, c.LocalFilesystem)
	require.Equal(t, "/data", c.LocalFilesystem.Root)

	require.NoError(t, json.Unmarshal([]byte(`{"cached":{"approx_max_memory_bytes":1024,"backend":{"in_memory":{}}}}`), &c))
	require.NotNil(t, c.Cached)
	require.Equal(t, uint64(1024), c.Cached.ApproxMaxMemoryBytes)
	require.NotNil(t, c.Cached.Backend.InMemory)
}

func TestStorageConfig_RejectsZeroOrMultipleVariants(t *testing.T) {
	var c StorageConfig
	require.Error(t, json.Unmarshal([]byte(`{}`), &c))
	require.Error(t, json.Unmarshal([]byte(`{"in_memory":{},"local_filesystem":{"root":"/x"}}`), &c))
}

func TestVersionInfo_ParsesEachVariant(t *testing.T) {
	var v VersionInfo
	require.NoError(t, json.Unmarshal([]byte(`{"empty":{}}`), &v))
	require.True(t, v.Empty)

	require.NoError(t, json.Unmarshal([]byte(`{"structure_id":"0123456789abcdef0123456789abcdef"}`), &v))
	require.Equal(t, "0123456789abcdef0123456789abcdef", v.StructureID)

	require.NoError(t, json.Unmarshal([]byte(`{"snapshot_id":"anything"}`), &v))
	require.Equal(t, "anything", v.SnapshotID)
}

func TestVersionInfo_RejectsBadStructureID(t *testing.T) {
	var v VersionInfo
	require.Error(t, json.Unmarshal([]byte(`{"structure_id":"not-hex"}`), &v))
	require.Error(t, json.Unmarshal([]byte(`{"structure_id":"abcd"}`), &v))
}

func TestVersionInfo_RejectsZeroOrMultipleVariants(t *testing.T) {
	var v VersionInfo
	require.Error(t, json.Unmarshal([]byte(`{}`), &v))
	require.Error(t, json.Unmarshal([]byte(`{"empty":{},"snapshot_id":"x"}`), &v))
}

func TestStoreConfig_ParsesFullRecord(t *testing.T) {
	data := []byte(`{
		"storage": {"local_filesystem": {"root": "/var/data"}},
		"dataset": {"previous_version": {"empty":{}}, "inline_chunk_threshold_bytes": 512}
	}`)
	var cfg StoreConfig
	require.NoError(t, json.Unmarshal(data, &cfg))
	require.Equal(t, "/var/data", cfg.Storage.LocalFilesystem.Root)
	require.True(t, cfg.Dataset.PreviousVersion.Empty)
	require.NotNil(t, cfg.Dataset.InlineChunkThresholdBytes)
	require.Equal(t, uint16(512), *cfg.Dataset.InlineChunkThresholdBytes)
}
