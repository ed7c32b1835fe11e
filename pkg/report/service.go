package report

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/finstmt/fsg/pkg/dataset"
)

// Config configures the report definition catalog
type Config struct {
	Dir string `yaml:"dir" default:"reports"`
}

// Validate checks the catalog configuration
func (c *Config) Validate() error {
	if c.Dir == "" {
		return fmt.Errorf("report definitions dir is required")
	}
	return nil
}

// Summary is the catalog view of one report definition
type Summary struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Rows       int    `json:"rows"`
	Variables  int    `json:"variables"`
	LTMEnabled bool   `json:"ltmEnabled"`
}

// Service is the report catalog plus rendering entry point
type Service interface {
	Start(ctx context.Context) error
	Stop() error
	Reload() error
	List() []Summary
	Get(id string) (*Definition, error)
	Render(id string, d *dataset.Dataset) (*Rendered, error)
}

type service struct {
	config   *Config
	log      logrus.FieldLogger
	renderer *Renderer

	mu          sync.RWMutex
	definitions map[string]*Definition
}

// NewService creates the report service
func NewService(cfg *Config, log logrus.FieldLogger) Service {
	return &service{
		config:      cfg,
		log:         log.WithField("component", "report"),
		renderer:    NewRenderer(log),
		definitions: make(map[string]*Definition),
	}
}

// Start loads the definition catalog
func (s *service) Start(_ context.Context) error {
	if err := s.Reload(); err != nil {
		return err
	}

	s.log.WithField("dir", s.config.Dir).
		WithField("reports", len(s.List())).
		Info("Report definitions loaded")

	return nil
}

// Stop releases the catalog
func (s *service) Stop() error {
	return nil
}

// Reload re-reads the definitions directory, replacing the catalog
func (s *service) Reload() error {
	definitions, err := LoadDir(s.config.Dir, s.log)
	if err != nil {
		return fmt.Errorf("failed to load report definitions: %w", err)
	}

	s.mu.Lock()
	s.definitions = definitions
	s.mu.Unlock()

	return nil
}

// List returns catalog summaries sorted by report id
func (s *service) List() []Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]Summary, 0, len(s.definitions))
	for _, def := range s.definitions {
		summaries = append(summaries, Summary{
			ID:         def.ID,
			Title:      def.Title,
			Rows:       len(def.Rows),
			Variables:  len(def.Variables),
			LTMEnabled: def.LTM.Enabled,
		})
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].ID < summaries[j].ID })

	return summaries
}

// Get returns one definition by id
func (s *service) Get(id string) (*Definition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	def, ok := s.definitions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrReportNotFound, id)
	}
	return def, nil
}

// Render generates the named report over a dataset
func (s *service) Render(id string, d *dataset.Dataset) (*Rendered, error) {
	def, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	return s.renderer.Render(def, d)
}
