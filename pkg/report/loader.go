package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/creasty/defaults"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Discover walks a definitions directory and returns every yaml file path
func Discover(dir string) ([]string, error) {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil // missing directory means no definitions
			}
			return err
		}
		if info.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext == ".yaml" || ext == ".yml" {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to discover report definitions in %s: %w", dir, err)
	}

	return files, nil
}

// Load parses and validates one report definition file
func Load(path string) (*Definition, error) {
	content, err := os.ReadFile(path) //nolint:gosec // operator-provided definitions path
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	def := &Definition{}
	if err := defaults.Set(def); err != nil {
		return nil, fmt.Errorf("failed to apply defaults for %s: %w", path, err)
	}
	if err := yaml.Unmarshal(content, def); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if def.Title == "" {
		def.Title = def.ID
	}
	def.SourceFile = path

	if err := def.Validate(); err != nil {
		return nil, err
	}

	return def, nil
}

// LoadDir loads every definition in a directory, keyed by report id.
// Invalid definitions are logged and skipped so one bad file does not take
// down the rest of the catalog.
func LoadDir(dir string, logger logrus.FieldLogger) (map[string]*Definition, error) {
	files, err := Discover(dir)
	if err != nil {
		return nil, err
	}

	definitions := make(map[string]*Definition, len(files))
	for _, file := range files {
		def, loadErr := Load(file)
		if loadErr != nil {
			logger.WithError(loadErr).WithField("file", file).Error("Failed to load report definition")
			continue
		}
		if existing, ok := definitions[def.ID]; ok {
			logger.WithField("id", def.ID).
				WithField("file", file).
				WithField("existing", existing.SourceFile).
				Warn("Duplicate report id, keeping the first definition")
			continue
		}
		definitions[def.ID] = def
	}

	return definitions, nil
}
