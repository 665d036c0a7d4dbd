package onnx

import (
	"errors"
	"fmt"
	"os"

	"google.golang.org/protobuf/encoding/protowire"
)

// ParseFile parses an ONNX model from file.
//
//nolint:gosec // G304: Path is provided by user, file inclusion is intentional for ONNX model loading
func ParseFile(path string) (*ModelProto, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return Parse(data)
}

// Parse parses an ONNX model from bytes.
func Parse(data []byte) (*ModelProto, error) {
	if len(data) == 0 {
		return nil, errors.New("failed to parse model: empty input")
	}
	model := &ModelProto{}
	if err := readModelProto(data, model); err != nil {
		return nil, fmt.Errorf("failed to parse model: %w", err)
	}
	return model, nil
}

// field is one decoded protobuf field. Only varint and length-delimited
// payloads are kept; other wire types are skipped.
type field struct {
	num    protowire.Number
	typ    protowire.Type
	varint uint64
	bytes  []byte
}

// forEachField decodes the fields of a message and calls fn for each.
func forEachField(b []byte, fn func(f field) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		f := field{num: num, typ: typ}
		switch typ {
		case protowire.VarintType:
			f.varint, n = protowire.ConsumeVarint(b)
		case protowire.BytesType:
			f.bytes, n = protowire.ConsumeBytes(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return fmt.Errorf("field %d: %w", num, protowire.ParseError(n))
		}
		b = b[n:]

		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}

// readModelProto reads ModelProto message.
func readModelProto(b []byte, m *ModelProto) error {
	return forEachField(b, func(f field) error {
		switch f.num {
		case 1: // ir_version
			m.IRVersion = int64(f.varint) //nolint:gosec // G115: Protobuf varint fits in int64.
		case 2: // producer_name
			m.ProducerName = string(f.bytes)
		case 3: // producer_version
			m.ProducerVersion = string(f.bytes)
		case 4: // domain
			m.Domain = string(f.bytes)
		case 5: // model_version
			m.ModelVersion = int64(f.varint) //nolint:gosec // G115: Protobuf varint fits in int64.
		case 6: // doc_string
			m.DocString = string(f.bytes)
		case 7: // graph
			m.Graph = &GraphProto{}
			if err := readGraphProto(f.bytes, m.Graph); err != nil {
				return fmt.Errorf("graph: %w", err)
			}
		case 8: // opset_import
			opset := OperatorSetID{}
			if err := readOperatorSetID(f.bytes, &opset); err != nil {
				return fmt.Errorf("opset_import: %w", err)
			}
			m.OpsetImport = append(m.OpsetImport, opset)
		case 14: // metadata_props
			entry := StringStringEntry{}
			if err := readStringStringEntry(f.bytes, &entry); err != nil {
				return fmt.Errorf("metadata_props: %w", err)
			}
			m.MetadataProps = append(m.MetadataProps, entry)
		}
		return nil
	})
}

// readGraphProto reads GraphProto message.
func readGraphProto(b []byte, m *GraphProto) error {
	return forEachField(b, func(f field) error {
		switch f.num {
		case 1: // node
			m.NodeCount++
		case 2: // name
			m.Name = string(f.bytes)
		case 5: // initializer
			name, err := readTensorName(f.bytes)
			if err != nil {
				return fmt.Errorf("initializer: %w", err)
			}
			m.InitializerNames = append(m.InitializerNames, name)
		case 11: // input
			vi := ValueInfoProto{}
			if err := readValueInfoProto(f.bytes, &vi); err != nil {
				return fmt.Errorf("input %d: %w", len(m.Inputs), err)
			}
			m.Inputs = append(m.Inputs, vi)
		case 12: // output
			vi := ValueInfoProto{}
			if err := readValueInfoProto(f.bytes, &vi); err != nil {
				return fmt.Errorf("output %d: %w", len(m.Outputs), err)
			}
			m.Outputs = append(m.Outputs, vi)
		}
		return nil
	})
}

// readTensorName reads only the name of a TensorProto, skipping its data.
func readTensorName(b []byte) (string, error) {
	var name string
	err := forEachField(b, func(f field) error {
		if f.num == 8 { // name
			name = string(f.bytes)
		}
		return nil
	})
	return name, err
}

// readValueInfoProto reads ValueInfoProto message.
func readValueInfoProto(b []byte, m *ValueInfoProto) error {
	return forEachField(b, func(f field) error {
		switch f.num {
		case 1: // name
			m.Name = string(f.bytes)
		case 2: // type
			m.Type = &TypeProto{}
			return readTypeProto(f.bytes, m.Type)
		case 3: // doc_string
			m.DocString = string(f.bytes)
		}
		return nil
	})
}

// readTypeProto reads TypeProto message.
func readTypeProto(b []byte, m *TypeProto) error {
	return forEachField(b, func(f field) error {
		if f.num == 1 { // tensor_type
			m.TensorType = &TensorTypeProto{}
			return readTensorTypeProto(f.bytes, m.TensorType)
		}
		return nil
	})
}

// readTensorTypeProto reads TensorTypeProto message.
func readTensorTypeProto(b []byte, m *TensorTypeProto) error {
	return forEachField(b, func(f field) error {
		switch f.num {
		case 1: // elem_type
			m.ElemType = int32(f.varint) //nolint:gosec // G115: ONNX protobuf varint fits in int32.
		case 2: // shape
			m.Shape = &TensorShapeProto{}
			return readTensorShapeProto(f.bytes, m.Shape)
		}
		return nil
	})
}

// readTensorShapeProto reads TensorShapeProto message.
func readTensorShapeProto(b []byte, m *TensorShapeProto) error {
	return forEachField(b, func(f field) error {
		if f.num == 1 { // dim
			dim := DimensionProto{}
			if err := readDimensionProto(f.bytes, &dim); err != nil {
				return err
			}
			m.Dims = append(m.Dims, dim)
		}
		return nil
	})
}

// readDimensionProto reads DimensionProto message.
func readDimensionProto(b []byte, m *DimensionProto) error {
	return forEachField(b, func(f field) error {
		switch f.num {
		case 1: // dim_value
			m.DimValue = int64(f.varint) //nolint:gosec // G115: Protobuf varint fits in int64.
		case 2: // dim_param
			m.DimParam = string(f.bytes)
		}
		return nil
	})
}

// readOperatorSetID reads OperatorSetID message.
func readOperatorSetID(b []byte, m *OperatorSetID) error {
	return forEachField(b, func(f field) error {
		switch f.num {
		case 1: // domain
			m.Domain = string(f.bytes)
		case 2: // version
			m.Version = int64(f.varint) //nolint:gosec // G115: Protobuf varint fits in int64.
		}
		return nil
	})
}

// readStringStringEntry reads StringStringEntry message.
func readStringStringEntry(b []byte, m *StringStringEntry) error {
	return forEachField(b, func(f field) error {
		switch f.num {
		case 1: // key
			m.Key = string(f.bytes)
		case 2: // value
			m.Value = string(f.bytes)
		}
		return nil
	})
}
