package manager

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"Go2NetLoss/internal/model"
)

// Separator joins the fields of every preprocessed file name.
const Separator = "+-+"

// Iteration is one measurement run of a scenario and the files it produced.
type Iteration struct {
	Name   string
	Prefix string
	Inputs model.Inputs
}

// Group is one (network error type, config value) scenario.
type Group struct {
	NetworkErrorType string
	ConfigValue      string
	Iterations       []*Iteration
}

// Key returns the "<type>_<config>" name used for output files.
func (g *Group) Key() string {
	return g.NetworkErrorType + "_" + g.ConfigValue
}

// ParseFileName splits "<type>-<config>-<iteration>+-+<label>+-+<kind>".
func ParseFileName(name string) (prefix, kind string, ok bool) {
	if strings.Count(name, Separator) != 2 {
		return "", "", false
	}
	fields := strings.SplitN(name, Separator, 3)
	return fields[0] + Separator + fields[1], fields[2], true
}

// ParsePrefix extracts the scenario coordinates from a file prefix.
func ParsePrefix(prefix string) (errorType, configValue, iteration string, err error) {
	head, _, _ := strings.Cut(prefix, Separator)
	parts := strings.Split(head, "-")
	if len(parts) < 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", "", "", fmt.Errorf("prefix %q: expected <type>-<config>-<iteration>", prefix)
	}
	return parts[0], parts[1], parts[2], nil
}

// Plan scans dir and groups its input files by scenario. Iterations are kept
// in directory order. Two prefixes resolving to the same iteration of a group
// fail with model.ErrDuplicateIteration before anything is analyzed.
// An empty allow list accepts every network error type.
func Plan(dir string, allow []string) ([]*Group, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory '%s': %w", dir, err)
	}

	known := make(map[string]bool, len(model.KnownKinds))
	for _, k := range model.KnownKinds {
		known[k] = true
	}

	groups := make(map[string]*Group)
	iterations := make(map[string]*Iteration) // group key + "/" + iteration
	var order []*Group

	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		prefix, kind, ok := ParseFileName(entry.Name())
		if !ok {
			continue
		}
		if !known[kind] {
			log.Printf("Ignoring '%s': unknown record kind '%s'", entry.Name(), kind)
			continue
		}
		errorType, configValue, iteration, err := ParsePrefix(prefix)
		if err != nil {
			log.Printf("Ignoring '%s': %v", entry.Name(), err)
			continue
		}
		if len(allow) > 0 && !slices.Contains(allow, errorType) {
			continue
		}

		g, ok := groups[errorType+"_"+configValue]
		if !ok {
			g = &Group{NetworkErrorType: errorType, ConfigValue: configValue}
			groups[g.Key()] = g
			order = append(order, g)
		}

		it, ok := iterations[g.Key()+"/"+iteration]
		switch {
		case !ok:
			it = &Iteration{Name: iteration, Prefix: prefix, Inputs: model.Inputs{}}
			iterations[g.Key()+"/"+iteration] = it
			g.Iterations = append(g.Iterations, it)
		case it.Prefix != prefix:
			return nil, fmt.Errorf("%w: iteration '%s' of scenario '%s' claimed by '%s' and '%s'",
				model.ErrDuplicateIteration, iteration, g.Key(), it.Prefix, prefix)
		}
		it.Inputs[kind] = filepath.Join(dir, entry.Name())
	}

	slices.SortStableFunc(order, func(a, b *Group) int {
		if c := strings.Compare(a.NetworkErrorType, b.NetworkErrorType); c != 0 {
			return c
		}
		return strings.Compare(a.ConfigValue, b.ConfigValue)
	})
	return order, nil
}
