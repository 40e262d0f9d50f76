package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	errUtils "github.com/cloudposse/pomgraph/errors"
	"github.com/cloudposse/pomgraph/pkg/schema"
)

// storesSection is the part of a config file read without viper. Viper folds
// keys to lower case, and inline descriptors need groupId and artifactId as
// written.
type storesSection struct {
	Stores map[string]schema.StoreConfig `yaml:"stores"`
}

// readStores merges the stores sections of files in order; a later file
// replaces a store of the same name.
func readStores(files []string) (map[string]schema.StoreConfig, error) {
	stores := make(map[string]schema.StoreConfig)
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errUtils.ErrLoadConfig, err)
		}
		var section storesSection
		if err := yaml.Unmarshal(data, &section); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", errUtils.ErrLoadConfig, file, err)
		}
		for name, store := range section.Stores {
			stores[name] = store
		}
	}
	if len(stores) == 0 {
		return nil, nil
	}
	return stores, nil
}
