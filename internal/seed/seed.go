// Package seed loads starting catalogs from YAML.
package seed

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mvaleed/bibliotheca/internal/domain"
)

//go:embed books.yaml
var defaultCatalog []byte

type yamlCatalog struct {
	Books []yamlBook `yaml:"books"`
}

type yamlBook struct {
	Identifier string `yaml:"identifier"`
	Title      string `yaml:"title"`
	Author     string `yaml:"author"`
	Year       int    `yaml:"year"`
}

// Load parses a YAML catalog. An empty document yields no books.
func Load(r io.Reader) ([]*domain.Book, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc yamlCatalog
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: decoding seed catalog: %v", domain.ErrInvalidArgument, err)
	}

	books := make([]*domain.Book, 0, len(doc.Books))
	for i, yb := range doc.Books {
		b, err := domain.NewBook(yb.Identifier, yb.Title, yb.Author, yb.Year)
		if err != nil {
			return nil, fmt.Errorf("seed entry %d: %w", i+1, err)
		}
		books = append(books, b)
	}
	return books, nil
}

// LoadFile parses the YAML catalog at path.
func LoadFile(path string) ([]*domain.Book, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening seed file: %w", err)
	}
	defer f.Close()

	return Load(f)
}

// Default returns the embedded sample catalog.
func Default() []*domain.Book {
	books, err := Load(bytes.NewReader(defaultCatalog))
	if err != nil {
		panic(fmt.Sprintf("embedded seed catalog is invalid: %v", err))
	}
	return books
}
