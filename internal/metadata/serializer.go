package metadata

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/surfacegen/genapi/internal/errors"
)

// Format is the encoding of a metadata document
type Format int

const (
	FormatYAML Format = iota
	FormatJSON
)

// FormatFor picks the document format from a file name.
// A trailing .gz is ignored; anything that is not .json is read as YAML.
func FormatFor(path string) Format {
	name := strings.TrimSuffix(strings.ToLower(path), ".gz")
	if filepath.Ext(name) == ".json" {
		return FormatJSON
	}
	return FormatYAML
}

// LoadFile reads, decodes and resolves a metadata document
func LoadFile(path string) (*Assembly, error) {
	doc, err := ReadDocument(path)
	if err != nil {
		return nil, err
	}
	return Load(doc)
}

// ReadDocument reads and decodes a metadata document without resolving it.
// Files ending in .gz are decompressed first.
func ReadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewReadDocument(path, err)
	}
	if strings.HasSuffix(strings.ToLower(path), ".gz") {
		data, err = Decompress(data)
		if err != nil {
			return nil, errors.NewReadDocument(path, err)
		}
	}
	doc, err := Decode(data, FormatFor(path))
	if err != nil {
		return nil, errors.NewDecodeDocument(path, err)
	}
	return doc, nil
}

// Decode parses a document in the given format
func Decode(data []byte, format Format) (*Document, error) {
	var doc Document
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode JSON: %w", err)
		}
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil && err != io.EOF {
			return nil, fmt.Errorf("failed to decode YAML: %w", err)
		}
	}
	return &doc, nil
}

// Encode serializes a document. The output is deterministic for a given document.
func Encode(doc *Document, format Format) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("document cannot be nil")
	}
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode JSON: %w", err)
		}
		return data, nil
	default:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("failed to encode YAML: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("failed to encode YAML: %w", err)
		}
		return buf.Bytes(), nil
	}
}

// WriteDocument encodes doc to path, compressing when the name ends in .gz
func WriteDocument(doc *Document, path string) error {
	data, err := Encode(doc, FormatFor(path))
	if err != nil {
		return err
	}
	if strings.HasSuffix(strings.ToLower(path), ".gz") {
		if data, err = Compress(data); err != nil {
			return err
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write metadata to %s: %w", path, err)
	}
	return nil
}

// Compress compresses data using gzip at the best compression level
func Compress(data []byte) ([]byte, error) {
	if data == nil {
		return nil, fmt.Errorf("data cannot be nil")
	}

	var buf bytes.Buffer
	writer, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip writer: %w", err)
	}
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close() // Ignore close error when write failed
		return nil, fmt.Errorf("failed to compress data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close gzip writer: %w", err)
	}
	return buf.Bytes(), nil
}

// Decompress decompresses gzip-compressed data
func Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("data cannot be empty")
	}

	reader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer func() {
		_ = reader.Close() // Ignore close error - we already have the data
	}()

	decompressed, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress data: %w", err)
	}
	return decompressed, nil
}
