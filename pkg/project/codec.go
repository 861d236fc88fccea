package project

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/golang/snappy"

	"github.com/dd0wney/cluso-stockflow/pkg/validation"
)

// Encoding selects the byte form of a saved document.
type Encoding int

const (
	// Plain is the JSON text the editor reads and writes.
	Plain Encoding = iota
	// Compressed is the JSON text in a snappy framed stream.
	Compressed
)

func (e Encoding) String() string {
	if e == Compressed {
		return "snappy"
	}
	return "json"
}

// snappy framed streams open with this stream identifier chunk.
var snappyStreamHeader = []byte("\xff\x06\x00\x00sNaPpY")

// DetectEncoding reports how data was encoded.
func DetectEncoding(data []byte) Encoding {
	if bytes.HasPrefix(data, snappyStreamHeader) {
		return Compressed
	}
	return Plain
}

// Encode serialises doc.
func Encode(doc *Document, enc Encoding) ([]byte, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	if enc != Compressed {
		return data, nil
	}

	var buf bytes.Buffer
	w := snappy.NewBufferedWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("failed to compress document: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to compress document: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses a document in either encoding and checks every record.
// Missing headers are filled in; the simulation parameters are left nil when
// absent so callers can tell a saved block from the defaults.
func Decode(data []byte) (*Document, error) {
	if DetectEncoding(data) == Compressed {
		plain, err := io.ReadAll(snappy.NewReader(bytes.NewReader(data)))
		if err != nil {
			return nil, fmt.Errorf("%w: failed to decompress: %v", ErrInvalidDocument, err)
		}
		data = plain
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if doc.Class == "" {
		doc.Class = ModelClass
	}
	if doc.LinkLabelKeysProperty == "" {
		doc.LinkLabelKeysProperty = LabelKeysProperty
	}
	if doc.NodeDataArray == nil {
		doc.NodeDataArray = []NodeData{}
	}
	if doc.LinkDataArray == nil {
		doc.LinkDataArray = []LinkData{}
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate checks the document size and every node and link record.
func (d *Document) Validate() error {
	if d.LinkLabelKeysProperty != LabelKeysProperty {
		return fmt.Errorf("%w: unsupported linkLabelKeysProperty %q", ErrInvalidDocument, d.LinkLabelKeysProperty)
	}
	if err := validation.ValidateDocumentSize(len(d.NodeDataArray), len(d.LinkDataArray)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	for i := range d.NodeDataArray {
		n := &d.NodeDataArray[i]
		rec := validation.NodeRecord{
			Key:      string(n.Key),
			Category: n.Category,
			Label:    n.Label,
			Equation: n.Equation,
		}
		if err := validation.ValidateNodeRecord(&rec); err != nil {
			return fmt.Errorf("%w: node %d: %v", ErrInvalidDocument, i, err)
		}
	}
	for i := range d.LinkDataArray {
		l := &d.LinkDataArray[i]
		rec := validation.LinkRecord{
			Key:       string(l.Key),
			Category:  l.Category,
			From:      string(l.From),
			To:        string(l.To),
			LabelKeys: keyStrings(l.LabelKeys),
		}
		if err := validation.ValidateLinkRecord(&rec); err != nil {
			return fmt.Errorf("%w: link %d: %v", ErrInvalidDocument, i, err)
		}
	}
	return nil
}

func keyStrings(keys []Key) []string {
	if len(keys) == 0 {
		return nil
	}
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = string(k)
	}
	return out
}
