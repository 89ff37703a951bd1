package catalog

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/utafrali/searchapp/internal/domain"
)

// File reads products from a YAML or JSON file.
type File struct {
	path string
}

// NewFile creates a source for the file at path.
func NewFile(path string) *File {
	return &File{path: path}
}

// Name returns "file:<path>".
func (f *File) Name() string {
	return KindFile + ":" + f.path
}

// AllProducts reads and decodes the file on every call.
func (f *File) AllProducts(_ context.Context) ([]domain.Product, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", f.path, err)
	}

	products, err := decodeProducts(data)
	if err != nil {
		return nil, fmt.Errorf("catalog: decode %s: %w", f.path, err)
	}
	return products, nil
}

// decodeProducts accepts a list of products or {"products": [...]}. JSON is
// valid YAML, so both formats go through the YAML decoder.
func decodeProducts(data []byte) ([]domain.Product, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if len(root.Content) == 0 {
		return []domain.Product{}, nil
	}

	switch node := root.Content[0]; node.Kind {
	case yaml.SequenceNode:
		var products []domain.Product
		if err := node.Decode(&products); err != nil {
			return nil, err
		}
		return products, nil
	case yaml.MappingNode:
		var doc document
		if err := node.Decode(&doc); err != nil {
			return nil, err
		}
		if doc.Products == nil {
			return []domain.Product{}, nil
		}
		return doc.Products, nil
	default:
		return nil, fmt.Errorf("expected a list of products or a products key, got %s", node.Tag)
	}
}
