package catalogs

import (
	"bytes"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed items.schema.json
var itemsSchema []byte

// Load reads <configDir>/items.json, validates it and returns a frozen catalog.
// Duplicate ids are logged and skipped; the first definition wins.
func Load(configDir string, logger *log.Logger) (*Catalog, error) {
	raw, err := os.ReadFile(filepath.Join(configDir, "items.json"))
	if err != nil {
		return nil, err
	}
	return Parse(raw, logger)
}

// Parse builds a frozen catalog from the contents of an items.json file.
func Parse(raw []byte, logger *log.Logger) (*Catalog, error) {
	if err := validateItems(raw); err != nil {
		return nil, fmt.Errorf("items.json: %w", err)
	}
	var defs []ItemDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return nil, fmt.Errorf("items.json: %w", err)
	}

	c := New(logger)
	for _, d := range defs {
		if err := c.Register(d); err != nil {
			if errors.Is(err, ErrDuplicateRegistration) {
				continue
			}
			return nil, fmt.Errorf("items.json: %w", err)
		}
	}
	c.Digest = sha256Hex(raw)
	c.Freeze()
	return c, nil
}

func validateItems(raw []byte) error {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("items.schema.json", bytes.NewReader(itemsSchema)); err != nil {
		return err
	}
	schema, err := compiler.Compile("items.schema.json")
	if err != nil {
		return err
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}
	return schema.Validate(doc)
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
