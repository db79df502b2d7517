package document

import (
	"fmt"
	"strings"

	"github.com/io7m/ironpage-sub000/internal/names"
)

// ParsePairs converts "schema:attribute=raw" strings into values, keeping
// their order. The raw value is everything after the first "=".
//
// Example:
//
//	values, err := ParsePairs([]string{"com.io7m.ironpage.dublin_core:title=Hello"})
func ParsePairs(pairs []string) ([]Value, error) {
	result := make([]Value, 0, len(pairs))

	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("value %q is not in schema:attribute=value format (example: --value com.io7m.ironpage.dublin_core:title=Hello)", pair)
		}
		if key == "" {
			return nil, fmt.Errorf("value has empty name: %q", pair)
		}
		name, err := names.ParseQualifiedName(key)
		if err != nil {
			return nil, fmt.Errorf("value %q: %w", pair, err)
		}
		result = append(result, Value{Name: name, Raw: raw})
	}

	return result, nil
}

// ParseImports parses schema identifiers given on the command line.
func ParseImports(texts []string) ([]names.SchemaIdentifier, error) {
	ids := make([]names.SchemaIdentifier, 0, len(texts))
	for _, text := range texts {
		id, err := names.ParseSchemaIdentifier(text)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return uniqueImports(ids)
}

// uniqueImports drops repeated imports and rejects two versions of one
// schema.
func uniqueImports(ids []names.SchemaIdentifier) ([]names.SchemaIdentifier, error) {
	result := make([]names.SchemaIdentifier, 0, len(ids))
	seen := make(map[names.SchemaName]names.SchemaIdentifier, len(ids))
	for _, id := range ids {
		if previous, dup := seen[id.Name()]; dup {
			if previous == id {
				continue
			}
			return nil, fmt.Errorf("schema %s is imported as both %s and %s", id.Name(), previous, id)
		}
		seen[id.Name()] = id
		result = append(result, id)
	}
	return result, nil
}
