package field

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/gocarina/gocsv"
)

//go:embed catalog.csv
var defaultCatalogCSV []byte

var (
	defaultCatalogOnce sync.Once
	defaultCatalog     *Catalog
)

// catalogRecord is one CSV line of the catalog source. The file has no
// header row; numbering is defined implicitly by record position and the
// leading number field must agree with it.
type catalogRecord struct {
	Number int    `csv:"number"`
	Symbol string `csv:"symbol"`
	Name   string `csv:"name"`
	Color  string `csv:"color"`
}

// Catalog is the static lookup table of numbered tokens. It is immutable
// after loading.
type Catalog struct {
	tokens []Token
}

// LoadCatalog reads a catalog from CSV data: one record per token, fields
// number,symbol,name,hex color, no header row.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	var records []catalogRecord
	if err := gocsv.UnmarshalWithoutHeaders(r, &records); err != nil {
		return nil, fmt.Errorf("parsing catalog CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("catalog is empty")
	}

	tokens := make([]Token, 0, len(records))
	for i, rec := range records {
		if rec.Number != i+1 {
			return nil, fmt.Errorf("catalog record %d is numbered %d; numbering must follow record order", i+1, rec.Number)
		}
		symbol := strings.TrimSpace(rec.Symbol)
		name := strings.TrimSpace(rec.Name)
		if symbol == "" {
			return nil, fmt.Errorf("catalog record %d has an empty symbol", i+1)
		}
		if name == "" {
			return nil, fmt.Errorf("catalog record %d has an empty name", i+1)
		}
		tokens = append(tokens, Token{
			Kind:   KindNumbered,
			Number: rec.Number,
			Symbol: symbol,
			Name:   name,
			Color:  strings.TrimSpace(rec.Color),
		})
	}

	return &Catalog{tokens: tokens}, nil
}

// LoadCatalogFile reads a catalog from a CSV file on disk.
func LoadCatalogFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}
	return LoadCatalog(bytes.NewReader(data))
}

// DefaultCatalog returns the catalog embedded in the binary.
func DefaultCatalog() *Catalog {
	defaultCatalogOnce.Do(func() {
		cat, err := LoadCatalog(bytes.NewReader(defaultCatalogCSV))
		if err != nil {
			// The embedded catalog is part of the build; failing to parse
			// it is a packaging error, not a runtime condition.
			panic(fmt.Sprintf("embedded catalog is invalid: %v", err))
		}
		defaultCatalog = cat
	})
	return defaultCatalog
}

// Lookup returns the numbered token for the given catalog number.
func (c *Catalog) Lookup(number int) (Token, error) {
	if number < 1 {
		return Token{}, fmt.Errorf("%w: catalog number %d < 1", ErrInvalidToken, number)
	}
	if number > len(c.tokens) {
		return Token{}, fmt.Errorf("%w: catalog number %d exceeds largest entry %d", ErrIndexOutOfRange, number, len(c.tokens))
	}
	return c.tokens[number-1], nil
}

// Max returns the token with the largest number in the catalog.
func (c *Catalog) Max() Token {
	return c.tokens[len(c.tokens)-1]
}

// Size returns the number of entries in the catalog.
func (c *Catalog) Size() int {
	return len(c.tokens)
}
