package metadata

import (
	"encoding/json"
	"math"

	"github.com/nuclio/errors"
)

// DataType enumerates the scalar types a Zarr array's fill_value, and
// (opaquely, for everything downstream of this adapter) its chunk bytes,
// are interpreted under. The adapter never decodes chunk bytes itself; it
// only needs DataType to drive fill_value coercion (§4.2).
type DataType string

const (
	DataTypeBool       DataType = "bool"
	DataTypeInt8       DataType = "int8"
	DataTypeInt16      DataType = "int16"
	DataTypeInt32      DataType = "int32"
	DataTypeInt64      DataType = "int64"
	DataTypeUint8      DataType = "uint8"
	DataTypeUint16     DataType = "uint16"
	DataTypeUint32     DataType = "uint32"
	DataTypeUint64     DataType = "uint64"
	DataTypeFloat32    DataType = "float32"
	DataTypeFloat64    DataType = "float64"
	DataTypeComplex64  DataType = "complex64"
	DataTypeComplex128 DataType = "complex128"
	DataTypeRawBytes   DataType = "raw"
	DataTypeString     DataType = "string"
)

func (dt DataType) valid() bool {
	switch dt {
	case DataTypeBool, DataTypeInt8, DataTypeInt16, DataTypeInt32, DataTypeInt64,
		DataTypeUint8, DataTypeUint16, DataTypeUint32, DataTypeUint64,
		DataTypeFloat32, DataTypeFloat64, DataTypeComplex64, DataTypeComplex128,
		DataTypeRawBytes, DataTypeString:
		return true
	default:
		return false
	}
}

// FillValue is the typed default an array's unmaterialized chunk positions
// resolve to. The adapter keeps it as the already-validated raw JSON it was
// parsed from, tagged with the DataType it was validated against, rather
// than decoding it into a native Go numeric type the adapter has no other
// use for.
type FillValue struct {
	DataType DataType
	raw      json.RawMessage
}

// Raw returns the fill value's wire-form JSON.
func (f FillValue) Raw() json.RawMessage {
	return f.raw
}

// ParseFillValue coerces a raw JSON fill_value into a typed FillValue,
// directed by dataType. It fails if raw is not a legal literal for
// dataType; this is the "data-type-directed parse" §4.2 and §7's
// BadMetadata error both describe.
func ParseFillValue(dataType DataType, raw json.RawMessage) (FillValue, error) {
	if !dataType.valid() {
		return FillValue{}, errors.Errorf("unknown data_type %q", dataType)
	}

	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return FillValue{}, errors.Wrap(err, "fill_value is not valid JSON")
	}

	if err := checkFillValueShape(dataType, v); err != nil {
		return FillValue{}, err
	}

	return FillValue{DataType: dataType, raw: append(json.RawMessage(nil), raw...)}, nil
}

// integerBounds holds the inclusive [min, max] fill_value range of each
// integer data type.
var integerBounds = map[DataType][2]float64{
	DataTypeInt8:   {math.MinInt8, math.MaxInt8},
	DataTypeInt16:  {math.MinInt16, math.MaxInt16},
	DataTypeInt32:  {math.MinInt32, math.MaxInt32},
	DataTypeInt64:  {math.MinInt64, math.MaxInt64},
	DataTypeUint8:  {0, math.MaxUint8},
	DataTypeUint16: {0, math.MaxUint16},
	DataTypeUint32: {0, math.MaxUint32},
	DataTypeUint64: {0, math.MaxUint64},
}

func checkFillValueShape(dataType DataType, v interface{}) error {
	switch dataType {
	case DataTypeBool:
		if _, ok := v.(bool); !ok {
			return errors.Errorf("fill_value %v is not a bool, required by data_type %q", v, dataType)
		}
	case DataTypeInt8, DataTypeInt16, DataTypeInt32, DataTypeInt64,
		DataTypeUint8, DataTypeUint16, DataTypeUint32, DataTypeUint64:
		n, ok := v.(float64)
		if !ok || n != float64(int64(n)) {
			return errors.Errorf("fill_value %v is not an integer, required by data_type %q", v, dataType)
		}
		if bounds := integerBounds[dataType]; n < bounds[0] || n > bounds[1] {
			return errors.Errorf("fill_value %v is out of range for data_type %q", v, dataType)
		}
	case DataTypeFloat32, DataTypeFloat64:
		if _, ok := v.(float64); !ok {
			return errors.Errorf("fill_value %v is not a number, required by data_type %q", v, dataType)
		}
	case DataTypeComplex64, DataTypeComplex128:
		arr, ok := v.([]interface{})
		if !ok || len(arr) != 2 {
			return errors.Errorf("fill_value %v is not a [re, im] pair, required by data_type %q", v, dataType)
		}
		for _, part := range arr {
			if _, ok := part.(float64); !ok {
				return errors.Errorf("fill_value %v has a non-numeric component, required by data_type %q", v, dataType)
			}
		}
	case DataTypeString:
		if _, ok := v.(string); !ok {
			return errors.Errorf("fill_value %v is not a string, required by data_type %q", v, dataType)
		}
	case DataTypeRawBytes:
		// Opaque fixed-width bytes arrive as a small integer array on the
		// wire; the adapter validates shape only, never interprets bytes.
		arr, ok := v.([]interface{})
		if !ok {
			return errors.Errorf("fill_value %v is not a byte array, required by data_type %q", v, dataType)
		}
		for _, b := range arr {
			n, ok := b.(float64)
			if !ok || n < 0 || n > 255 || n != float64(int64(n)) {
				return errors.Errorf("fill_value %v has an out-of-range byte, required by data_type %q", v, dataType)
			}
		}
	default:
		return errors.Errorf("unknown data_type %q", dataType)
	}
	return nil
}

func (dt DataType) String() string {
	return string(dt)
}
