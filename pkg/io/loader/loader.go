// Package loader reads case documents from disk. YAML, JSON and HJSON are
// supported, chosen by file extension; every loaded document passes struct
// validation before it reaches a calculation stage.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hjson/hjson-go/v4"
	"gopkg.in/yaml.v2"

	"dcf_valuation/pkg/core/biometano"
	"dcf_valuation/pkg/models"
)

var validate = validator.New()

// LoadAssumptions reads and validates a generic valuation case document.
func LoadAssumptions(path string) (*models.Assumptions, error) {
	var a models.Assumptions
	if err := load(path, &a); err != nil {
		return nil, err
	}
	if err := validate.Struct(&a); err != nil {
		return nil, fmt.Errorf("invalid assumptions document %s: %w", path, err)
	}
	return &a, nil
}

// LoadBiometanoCase reads and validates a biometano project document,
// filling defaults for omitted conversion and ramp-up parameters.
func LoadBiometanoCase(path string) (*biometano.Case, error) {
	var c biometano.Case
	if err := load(path, &c); err != nil {
		return nil, err
	}
	c.ApplyDefaults()
	if err := validate.Struct(&c); err != nil {
		return nil, fmt.Errorf("invalid biometano document %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func load(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read case document: %w", err)
	}
	return Unmarshal(data, filepath.Ext(path), v)
}

// Unmarshal decodes a case document by format extension.
func Unmarshal(data []byte, ext string, v interface{}) error {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, v); err != nil {
			return fmt.Errorf("parse yaml: %w", err)
		}
	case ".json", ".hjson", "":
		// hjson is a superset of json, one decoder covers both.
		if err := hjson.Unmarshal(data, v); err != nil {
			return fmt.Errorf("parse hjson: %w", err)
		}
	default:
		return fmt.Errorf("unsupported case document format %q", ext)
	}
	return nil
}
