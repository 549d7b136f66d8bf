// Package excel ingests training and held-out tables from spreadsheet or CSV
// files and resolves them into the canonical covariate bundle. The outcome
// column is selected by header name, defaulting to the last column; feature
// types are inferred from the observed values.
package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"gobart/domain/core"
	"gobart/domain/dataset"
	"gobart/ports"
)

// DefaultCategoricalMaxLevels is the distinct-value cutoff below which an
// integer-valued column is treated as categorical.
const DefaultCategoricalMaxLevels = 10

// SourceConfig locates the input files and names the outcome column
type SourceConfig struct {
	TrainPath   string
	HoldoutPath string // empty disables the held-out set

	// OutcomeColumn selects the outcome by header name; empty means the last
	// column of the training table.
	OutcomeColumn string

	// CategoricalMaxLevels overrides the categorical inference cutoff;
	// zero means DefaultCategoricalMaxLevels.
	CategoricalMaxLevels int
}

// Source reads covariate tables from .xlsx or .csv files
type Source struct {
	cfg SourceConfig
}

var _ ports.CovariateSourcePort = (*Source)(nil)

// NewSource creates a file-backed covariate source
func NewSource(cfg SourceConfig) *Source {
	if cfg.CategoricalMaxLevels == 0 {
		cfg.CategoricalMaxLevels = DefaultCategoricalMaxLevels
	}
	return &Source{cfg: cfg}
}

// ResolveTraining reads the training table, splits off the outcome column,
// and infers per-column feature types.
func (s *Source) ResolveTraining(ctx context.Context) (*dataset.CovariateBundle, *dataset.OrdinalOutcome, error) {
	header, records, err := readTable(ctx, s.cfg.TrainPath)
	if err != nil {
		return nil, nil, err
	}
	outcomeCol, err := s.outcomeIndex(header)
	if err != nil {
		return nil, nil, err
	}
	rows := make([][]float64, len(records))
	outcome := make([]int, len(records))
	for i, rec := range records {
		if len(rec) != len(header) {
			return nil, nil, core.NewShapeError(fmt.Sprintf("row %d of %s", i+2, s.cfg.TrainPath), len(rec), len(header))
		}
		row := make([]float64, 0, len(rec)-1)
		for j, cell := range rec {
			v, err := parseCell(cell)
			if err != nil {
				return nil, nil, fmt.Errorf("%s row %d column %q: %w", s.cfg.TrainPath, i+2, header[j], err)
			}
			if j == outcomeCol {
				y := int(v)
				if float64(y) != v || y < 0 {
					return nil, nil, fmt.Errorf("%w: outcome column %q row %d holds %v, want a non-negative integer", core.ErrCategoryRange, header[j], i+2, v)
				}
				outcome[i] = y
				continue
			}
			row = append(row, v)
		}
		rows[i] = row
	}
	out, err := dataset.NewOrdinalOutcome(outcome)
	if err != nil {
		return nil, nil, err
	}
	bundle := dataset.NewCovariateBundle(rows, s.inferTypes(rows))
	return bundle, out, nil
}

// ResolveHoldout reads the held-out table, which carries covariate columns
// only. Returns (nil, nil) when no held-out path is configured.
func (s *Source) ResolveHoldout(ctx context.Context) (*dataset.CovariateBundle, error) {
	if s.cfg.HoldoutPath == "" {
		return nil, nil
	}
	header, records, err := readTable(ctx, s.cfg.HoldoutPath)
	if err != nil {
		return nil, err
	}
	rows := make([][]float64, len(records))
	for i, rec := range records {
		if len(rec) != len(header) {
			return nil, core.NewShapeError(fmt.Sprintf("row %d of %s", i+2, s.cfg.HoldoutPath), len(rec), len(header))
		}
		row := make([]float64, len(rec))
		for j, cell := range rec {
			v, err := parseCell(cell)
			if err != nil {
				return nil, fmt.Errorf("%s row %d column %q: %w", s.cfg.HoldoutPath, i+2, header[j], err)
			}
			row[j] = v
		}
		rows[i] = row
	}
	return dataset.NewCovariateBundle(rows, s.inferTypes(rows)), nil
}

func (s *Source) outcomeIndex(header []string) (int, error) {
	if s.cfg.OutcomeColumn == "" {
		return len(header) - 1, nil
	}
	for j, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), s.cfg.OutcomeColumn) {
			return j, nil
		}
	}
	return 0, fmt.Errorf("%w: outcome column %q not found", core.ErrShapeMismatch, s.cfg.OutcomeColumn)
}

// inferTypes marks a column categorical when every value is integer-valued
// and the distinct count stays under the configured cutoff.
func (s *Source) inferTypes(rows [][]float64) []dataset.FeatureType {
	if len(rows) == 0 {
		return nil
	}
	p := len(rows[0])
	types := make([]dataset.FeatureType, p)
	for j := 0; j < p; j++ {
		distinct := make(map[float64]struct{})
		categorical := true
		for _, row := range rows {
			v := row[j]
			if v != math.Trunc(v) {
				categorical = false
				break
			}
			distinct[v] = struct{}{}
			if len(distinct) > s.cfg.CategoricalMaxLevels {
				categorical = false
				break
			}
		}
		if categorical {
			types[j] = dataset.FeatureCategorical
		} else {
			types[j] = dataset.FeatureContinuous
		}
	}
	return types
}

// readTable loads a header row and data records from an .xlsx or .csv file
func readTable(ctx context.Context, path string) ([]string, [][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	var all [][]string
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		all, err = readWorkbook(path)
	default:
		all, err = readCSV(path)
	}
	if err != nil {
		return nil, nil, err
	}
	if len(all) < 2 {
		return nil, nil, fmt.Errorf("%w: %s has no data rows", core.ErrEmptyCovariates, path)
	}
	return all[0], all[1:], nil
}

func readWorkbook(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: %s has no sheets", core.ErrEmptyCovariates, path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s of %s: %w", sheets[0], path, err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return records, nil
}

func parseCell(cell string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil {
		return 0, fmt.Errorf("not numeric: %q", cell)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("not finite: %q", cell)
	}
	return v, nil
}
