package metadata

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseFillValue_AcceptsMatchingScalarTypes(t *testing.T) {
	cases := []struct {
		dt  DataType
		raw string
	}{
		{DataTypeBool, `true`},
		{DataTypeInt32, `-7`},
		{DataTypeUint8, `255`},
		{DataTypeFloat64, `3.5`},
		{DataTypeComplex64, `[1.0, -1.0]`},
		{DataTypeString, `"hi"`},
		{DataTypeRawBytes, `[1,2,3]`},
	}
	for _, c := range cases {
		_, err := ParseFillValue(c.dt, json.RawMessage(c.raw))
		require.NoError(t, err, "%s: %s", c.dt, c.raw)
	}
}

func TestParseFillValue_RejectsMismatchedScalarTypes(t *testing.T) {
	cases := []struct {
		dt  DataType
		raw string
	}{
		{DataTypeBool, `1`},
		{DataTypeInt32, `1.5`},
		{DataTypeFloat64, `"nan"`},
		{DataTypeComplex128, `1.0`},
		{DataTypeString, `5`},
		{DataTypeRawBytes, `[256]`},
	}
	for _, c := range cases {
		_, err := ParseFillValue(c.dt, json.RawMessage(c.raw))
		require.Error(t, err, "%s: %s", c.dt, c.raw)
	}
}

func TestParseFillValue_RejectsUnknownDataType(t *testing.T) {
	_, err := ParseFillValue(DataType("not-a-type"), json.RawMessage(`0`))
	require.Error(t, err)
}

func TestParseFillValue_RejectsMalformedJSON(t *testing.T) {
	_, err := ParseFillValue(DataTypeInt32, json.RawMessage(`not json`))
	require.Error(t, err)
}

func TestFillValue_RawPreservesOriginalBytes(t *testing.T) {
	fv, err := ParseFillValue(DataTypeInt32, json.RawMessage(`42`))
	require.NoError(t, err)
	require.Equal(t, "42", string(fv.Raw()))
}
