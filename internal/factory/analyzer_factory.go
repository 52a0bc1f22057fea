package factory

import (
	"fmt"
	"log"
	"sort"

	"Go2NetLoss/internal/config"
	"Go2NetLoss/internal/model"
)

// AnalyzerFactory defines a function that creates an analyzer from the config.
type AnalyzerFactory func(cfg *config.Config) (model.Analyzer, error)

// registry holds the mapping of technique names to their factory functions.
var registry = make(map[string]AnalyzerFactory)

// RegisterAnalyzer registers a new technique with its factory function.
func RegisterAnalyzer(name string, factory AnalyzerFactory) {
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("analyzer '%s' already registered", name))
	}
	registry[name] = factory
}

// Registered returns the names of all registered analyzers, sorted.
func Registered() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Create builds the named analyzers, in the given order.
func Create(cfg *config.Config, names []string) ([]model.Analyzer, error) {
	analyzers := make([]model.Analyzer, 0, len(names))

	for _, name := range names {
		factory, ok := registry[name]
		if !ok {
			return nil, fmt.Errorf("unknown analyzer: '%s'", name)
		}

		analyzer, err := factory(cfg)
		if err != nil {
			return nil, fmt.Errorf("error creating analyzer '%s': %w", name, err)
		}
		log.Printf("Created analyzer '%s' (summary bucket '%s')", name, analyzer.SummaryBucket())

		analyzers = append(analyzers, analyzer)
	}

	return analyzers, nil
}
