// Package country resolves ISO 3166-1 alpha-2 codes to English display names.
package country

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
	"gopkg.in/yaml.v3"
)

//go:embed official.yaml
var officialYAML []byte

// Table resolves country codes: official name first, then the short English name, then the
// code itself.
type Table struct {
	official map[string]string
	short    display.Namer
}

// NewTable builds a Table from a YAML mapping of code to official name.
func NewTable(officialData []byte) (*Table, error) {
	raw := make(map[string]string)
	if err := yaml.Unmarshal(officialData, &raw); err != nil {
		return nil, fmt.Errorf("parse official names: %w", err)
	}
	official := make(map[string]string, len(raw))
	for code, name := range raw {
		official[normalizeCode(code)] = strings.TrimSpace(name)
	}
	return &Table{
		official: official,
		short:    display.English.Regions(),
	}, nil
}

var (
	defaultTable *Table
	defaultOnce  sync.Once
)

// Default returns the Table built from the embedded official-name data.
func Default() *Table {
	defaultOnce.Do(func() {
		t, err := NewTable(officialYAML)
		if err != nil {
			panic(err)
		}
		defaultTable = t
	})
	return defaultTable
}

// Name resolves code with the default table.
func Name(code string) string {
	return Default().Name(code)
}

// Name returns the official name, falling back to the short name and then to code unchanged.
// An empty code yields "".
func (t *Table) Name(code string) string {
	if strings.TrimSpace(code) == "" {
		return ""
	}
	if name, ok := t.Official(code); ok {
		return name
	}
	if name, ok := t.Short(code); ok {
		return name
	}
	return code
}

// Official returns the table-defined official name for code, if any.
func (t *Table) Official(code string) (string, bool) {
	name, ok := t.official[normalizeCode(code)]
	if !ok || name == "" {
		return "", false
	}
	return name, true
}

// reservedCodes are exceptionally reserved ISO 3166 codes that CLDR names but that are not
// ISO 3166-1 country codes.
var reservedCodes = map[string]bool{
	"AC": true, "CP": true, "DG": true, "EA": true, "EU": true,
	"EZ": true, "IC": true, "TA": true, "UK": true, "UN": true,
}

// Short returns the CLDR English name for code when code is a recognized ISO 3166-1
// country. Deprecated codes that CLDR maps to another region are not recognized.
func (t *Table) Short(code string) (string, bool) {
	norm := normalizeCode(code)
	if reservedCodes[norm] {
		return "", false
	}
	region, err := language.ParseRegion(norm)
	if err != nil || !region.IsCountry() || region.String() != norm {
		return "", false
	}
	name := t.short.Name(region)
	if name == "" {
		return "", false
	}
	return name, true
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
