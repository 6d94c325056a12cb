// Copyright 2024 The rbcompat Authors.
// SPDX-License-Identifier: Apache-2.0

package lint

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/rbcompat/rbcompat/pkg/files"
	"gopkg.in/yaml.v3"
)

const (
	SchemaURL       = "https://raw.githubusercontent.com/prefix-dev/recipe-format/main/schema.json"
	SchemaURLEnvVar = "RBCOMPAT_SCHEMA_URL"

	DefaultSchemaTTL = 24 * time.Hour
)

// SchemaCache fetches the recipe schema at most once during its lifetime.
// When diskPath is set the schema is also kept on disk and reused while it
// is younger than TTL.
type SchemaCache struct {
	src      files.Source
	diskPath string
	TTL      time.Duration

	once     sync.Once
	resolved *jsonschema.Resolved
	err      error
}

func NewSchemaCache(src files.Source, diskPath string) *SchemaCache {
	return &SchemaCache{src: src, diskPath: diskPath, TTL: DefaultSchemaTTL}
}

// NewDefaultSchemaCache reads the schema from $RBCOMPAT_SCHEMA_URL (or the
// published recipe schema) and keeps it in the user cache directory.
func NewDefaultSchemaCache() *SchemaCache {
	url := os.Getenv(SchemaURLEnvVar)
	if url == "" {
		url = SchemaURL
	}
	return NewSchemaCache(files.SourceForPath(url), DefaultSchemaPath())
}

func DefaultSchemaPath() string {
	return filepath.Join(xdg.CacheHome, "rbcompat", "schema.json")
}

func (c *SchemaCache) Schema(ctx context.Context) (*jsonschema.Resolved, error) {
	c.once.Do(func() {
		c.resolved, c.err = c.load(ctx)
	})
	return c.resolved, c.err
}

func (c *SchemaCache) load(ctx context.Context) (*jsonschema.Resolved, error) {
	data, err := c.bytes(ctx)
	if err != nil {
		return nil, err
	}

	var schema jsonschema.Schema

	err = json.Unmarshal(data, &schema)
	if err != nil {
		return nil, fmt.Errorf("unmarshaling recipe schema: %w", err)
	}

	resolved, err := schema.Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("resolving recipe schema: %w", err)
	}
	return resolved, nil
}

func (c *SchemaCache) bytes(ctx context.Context) ([]byte, error) {
	if c.diskPath != "" && isFresh(c.diskPath, c.TTL) {
		data, err := os.ReadFile(c.diskPath)
		if err == nil {
			return data, nil
		}
	}

	data, err := files.ReadBytes(ctx, c.src)
	if err != nil {
		return nil, fmt.Errorf("fetching recipe schema from %s: %w", c.src.Description(), err)
	}

	if c.diskPath != "" {
		err = save(c.diskPath, data)
		if err != nil {
			return nil, fmt.Errorf("caching recipe schema: %w", err)
		}
	}
	return data, nil
}

func isFresh(path string, ttl time.Duration) bool {
	fi, err := os.Stat(path)
	if err != nil {
		return false
	}
	return time.Since(fi.ModTime()) < ttl
}

func save(path string, data []byte) error {
	err := os.MkdirAll(filepath.Dir(path), 0700)
	if err != nil {
		return err
	}

	tmp := path + ".tmp"

	err = os.WriteFile(tmp, data, 0600)
	if err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// ValidateRecipe checks recipe YAML against schema. Every failure becomes
// a lint.
func ValidateRecipe(schema *jsonschema.Resolved, data []byte) ([]string, error) {
	instance, err := jsonInstance(data)
	if err != nil {
		return nil, err
	}

	err = schema.Validate(instance)
	if err == nil {
		return nil, nil
	}

	var lints []string
	for _, msg := range strings.Split(err.Error(), "\n") {
		if strings.TrimSpace(msg) != "" {
			lints = append(lints, formatValidationMsg(msg))
		}
	}
	return lints, nil
}

func formatValidationMsg(msg string) string {
	return "In recipe.yaml:\n> " + msg
}

// jsonInstance converts YAML into the value shapes produced by
// encoding/json, which is what the validator expects.
func jsonInstance(data []byte) (interface{}, error) {
	var doc interface{}

	err := yaml.Unmarshal(data, &doc)
	if err != nil {
		return nil, fmt.Errorf("unmarshaling recipe: %w", err)
	}

	jsonBytes, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("converting recipe to JSON: %w", err)
	}

	var instance interface{}

	err = json.Unmarshal(jsonBytes, &instance)
	if err != nil {
		return nil, fmt.Errorf("converting recipe to JSON: %w", err)
	}
	return instance, nil
}
