package query

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"Go2NetLoss/internal/model"
	"Go2NetLoss/internal/writer"
)

// FileQuerier reads the result files written by the batch driver.
type FileQuerier struct {
	dir string
}

// NewFileQuerier creates a querier over the result files in dir.
func NewFileQuerier(dir string) *FileQuerier {
	return &FileQuerier{dir: dir}
}

// ListGroups parses every result file in the directory.
func (q *FileQuerier) ListGroups(ctx context.Context) ([]*model.GroupSummary, error) {
	matches, err := filepath.Glob(filepath.Join(q.dir, "results_*_plot.csv"))
	if err != nil {
		return nil, err
	}

	var groups []*model.GroupSummary
	for _, path := range matches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		errorType, configValue, ok := splitFileName(filepath.Base(path))
		if !ok {
			continue
		}
		g, err := readSummary(path, errorType, configValue)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}

	slices.SortFunc(groups, func(a, b *model.GroupSummary) int {
		if c := strings.Compare(a.NetworkErrorType, b.NetworkErrorType); c != 0 {
			return c
		}
		return strings.Compare(a.ConfigValue, b.ConfigValue)
	})
	return groups, nil
}

// GetGroup parses the result file of one scenario.
func (q *FileQuerier) GetGroup(_ context.Context, networkErrorType, configValue string) (*model.GroupSummary, error) {
	name := writer.FileName(networkErrorType, configValue)
	if filepath.Base(name) != name {
		return nil, ErrNotFound
	}
	g, err := readSummary(filepath.Join(q.dir, name), networkErrorType, configValue)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return g, err
}

// splitFileName reverses writer.FileName. The config value is taken to be
// the text after the last underscore.
func splitFileName(name string) (string, string, bool) {
	core, ok := strings.CutPrefix(name, "results_")
	if !ok {
		return "", "", false
	}
	core, ok = strings.CutSuffix(core, "_plot.csv")
	if !ok {
		return "", "", false
	}
	i := strings.LastIndex(core, "_")
	if i <= 0 || i == len(core)-1 {
		return "", "", false
	}
	return core[:i], core[i+1:], true
}

func readSummary(path, networkErrorType, configValue string) (*model.GroupSummary, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse '%s': %w", path, err)
	}

	g := &model.GroupSummary{
		NetworkErrorType: networkErrorType,
		ConfigValue:      configValue,
		CreatedAt:        info.ModTime().UTC(),
	}
	for _, record := range records {
		if len(record) == 0 {
			continue
		}
		technique, ok := model.TechniqueForLabel(record[0])
		if !ok {
			return nil, fmt.Errorf("%w: '%s': unknown row '%s'", model.ErrMalformedRecord, path, record[0])
		}
		row := model.SummaryRow{Label: record[0], Technique: technique}
		for _, field := range record[1:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: '%s': bad value %q", model.ErrMalformedRecord, path, field)
			}
			row.Values = append(row.Values, v)
		}
		g.Rows = append(g.Rows, row)
	}

	if len(g.Rows) > 0 {
		for i := range g.Rows[0].Values {
			g.Iterations = append(g.Iterations, strconv.Itoa(i+1))
		}
	}
	return g, nil
}
