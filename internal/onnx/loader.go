package onnx

// ModelInfo contains basic information about an ONNX model.
type ModelInfo struct {
	IRVersion       int64
	OpsetVersion    int64
	ProducerName    string
	ProducerVersion string
	GraphName       string
	Metadata        map[string]string
	Signature       *Signature
	NodeCount       int
	WeightCount     int
}

// GetModelInfo extracts basic info from an ONNX file.
func GetModelInfo(path string) (*ModelInfo, error) {
	proto, err := ParseFile(path)
	if err != nil {
		return nil, err
	}
	return proto.Info()
}

// Info summarises the parsed model.
func (m *ModelProto) Info() (*ModelInfo, error) {
	sig, err := m.Signature()
	if err != nil {
		return nil, err
	}

	info := &ModelInfo{
		IRVersion:       m.IRVersion,
		ProducerName:    m.ProducerName,
		ProducerVersion: m.ProducerVersion,
		GraphName:       m.Graph.Name,
		Metadata:        make(map[string]string, len(m.MetadataProps)),
		Signature:       sig,
		NodeCount:       m.Graph.NodeCount,
		WeightCount:     len(m.Graph.InitializerNames),
	}

	// Get opset version
	for _, opset := range m.OpsetImport {
		if opset.Domain == "" || opset.Domain == "ai.onnx" {
			info.OpsetVersion = opset.Version
			break
		}
	}

	for _, prop := range m.MetadataProps {
		info.Metadata[prop.Key] = prop.Value
	}

	return info, nil
}
