package dataset

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/aouyang1/go-featureselect/errs"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/mat"
)

const (
	ColumnGroup   = "Group"
	ColumnLabel   = "label"
	ColumnNumOtus = "numOtus"
)

var (
	ErrNonNumericValue   = fmt.Errorf("feature value is not numeric: %w", errs.ErrDataFormat)
	ErrMissingValue      = fmt.Errorf("feature value is missing: %w", errs.ErrDataFormat)
	ErrDesignColumns     = fmt.Errorf("design table needs a sample and a label column: %w", errs.ErrDataFormat)
	ErrRowCountMismatch  = fmt.Errorf("feature and design tables have different row counts: %w", errs.ErrDataFormat)
	ErrUnknownSample     = fmt.Errorf("sample not present in design table: %w", errs.ErrDataFormat)
	ErrEmptyFeatureTable = fmt.Errorf("feature table has no rows: %w", errs.ErrDataFormat)
)

// LoadOptions configures how the feature and design tables are read
type LoadOptions struct {
	// Delimiter separating fields. If 0, sniffs tab, comma and semicolon from the first line.
	Delimiter rune

	// DropColumns are metadata columns of the feature table that are not features. Names not
	// present in the table are ignored.
	DropColumns []string

	// Mapping converts design labels into class codes
	Mapping CategoryMapping

	// MatchSamples aligns design labels to feature rows by the sample id in the Group column
	// instead of by row position.
	MatchSamples bool
}

// NewDefaultLoadOptions returns options for a mothur shared file and a two column design file
func NewDefaultLoadOptions() *LoadOptions {
	return &LoadOptions{
		DropColumns: []string{ColumnGroup, ColumnLabel, ColumnNumOtus},
		Mapping:     NewDefaultCategoryMapping(),
	}
}

// Load reads the feature table at sharedPath and the design table at designPath
func Load(sharedPath, designPath string, opt *LoadOptions) (*Dataset, error) {
	shared, err := os.Open(sharedPath)
	if err != nil {
		return nil, fmt.Errorf("unable to open feature table, %w", err)
	}
	defer shared.Close()

	design, err := os.Open(designPath)
	if err != nil {
		return nil, fmt.Errorf("unable to open design table, %w", err)
	}
	defer design.Close()

	return Read(shared, design, opt)
}

// Read parses the feature table and design table, drops the metadata columns and maps every
// design label to its class code.
func Read(shared, design io.Reader, opt *LoadOptions) (*Dataset, error) {
	if opt == nil {
		opt = NewDefaultLoadOptions()
	}
	if opt.Mapping == nil {
		opt.Mapping = NewDefaultCategoryMapping()
	}

	features, groups, x, err := readFeatureTable(shared, opt)
	if err != nil {
		return nil, err
	}
	slog.Info("loaded feature table", "features", len(features), "samples", len(groups))

	sampleIDs, labels, err := readDesignTable(design, opt.Delimiter)
	if err != nil {
		return nil, err
	}

	hasGroups := groupsPresent(groups)
	if opt.MatchSamples {
		if hasGroups {
			labels, err = alignLabels(groups, sampleIDs, labels)
			if err != nil {
				return nil, err
			}
		} else {
			slog.Warn("no sample ids in feature table, aligning design by row", "column", ColumnGroup)
		}
	}
	if len(labels) != len(groups) {
		return nil, fmt.Errorf("feature table has %d rows and design has %d, %w", len(groups), len(labels), ErrRowCountMismatch)
	}

	y, err := MapLabels(labels, opt.Mapping)
	if err != nil {
		return nil, err
	}

	samples := sampleIDs
	if hasGroups {
		samples = groups
	}
	return New(features, samples, x, y)
}

func groupsPresent(groups []string) bool {
	for _, g := range groups {
		if g != "" {
			return true
		}
	}
	return false
}

func readFeatureTable(r io.Reader, opt *LoadOptions) ([]string, []string, *mat.Dense, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("unable to read feature table, %w", err)
	}
	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(data)
	}

	df := dataframe.ReadCSV(
		bytes.NewReader(data),
		dataframe.WithDelimiter(delim),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if err := df.Error(); err != nil {
		return nil, nil, nil, fmt.Errorf("unable to parse feature table, %v: %w", err, errs.ErrDataFormat)
	}
	m := df.Nrow()
	if m == 0 {
		return nil, nil, nil, ErrEmptyFeatureTable
	}

	names := df.Names()
	present := make(map[string]struct{}, len(names))
	for _, name := range names {
		present[name] = struct{}{}
	}

	groups := make([]string, m)
	if _, exists := present[ColumnGroup]; exists {
		copy(groups, df.Col(ColumnGroup).Records())
	}

	var drop []string
	for _, name := range opt.DropColumns {
		if _, exists := present[name]; !exists {
			slog.Debug("metadata column not in feature table, skipping", "column", name)
			continue
		}
		drop = append(drop, name)
	}
	for _, name := range unnamedBlankColumns(data, delim, df) {
		if _, exists := present[name]; exists && !contains(drop, name) {
			slog.Debug("dropping unnamed empty column", "column", name)
			drop = append(drop, name)
		}
	}
	if len(drop) > 0 {
		df = df.Drop(drop)
		if err := df.Error(); err != nil {
			return nil, nil, nil, fmt.Errorf("unable to drop metadata columns, %v: %w", err, errs.ErrDataFormat)
		}
	}

	features := df.Names()
	if len(features) == 0 {
		return features, groups, nil, nil
	}

	x := mat.NewDense(m, len(features), nil)
	for j, name := range features {
		for i, record := range df.Col(name).Records() {
			v, err := strconv.ParseFloat(strings.TrimSpace(record), 64)
			if err != nil {
				return nil, nil, nil, fmt.Errorf("column %s row %d value %q, %w", name, i, record, ErrNonNumericValue)
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, nil, nil, fmt.Errorf("column %s row %d, %w", name, i, ErrMissingValue)
			}
			x.Set(i, j, v)
		}
	}
	return features, groups, x, nil
}

func readDesignTable(r io.Reader, delim rune) ([]string, []string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to read design table, %w", err)
	}
	if delim == 0 {
		delim = sniffDelimiter(data)
	}

	df := dataframe.ReadCSV(
		bytes.NewReader(data),
		dataframe.WithDelimiter(delim),
		dataframe.HasHeader(false),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if err := df.Error(); err != nil {
		return nil, nil, fmt.Errorf("unable to parse design table, %v: %w", err, errs.ErrDataFormat)
	}
	if df.Ncol() < 2 {
		return nil, nil, fmt.Errorf("found %d columns, %w", df.Ncol(), ErrDesignColumns)
	}

	m := df.Nrow()
	sampleIDs := make([]string, m)
	labels := make([]string, m)
	for i := 0; i < m; i++ {
		sampleIDs[i] = strings.TrimSpace(df.Elem(i, 0).String())
		labels[i] = strings.TrimSpace(df.Elem(i, 1).String())
	}
	return sampleIDs, labels, nil
}

func alignLabels(groups, sampleIDs, labels []string) ([]string, error) {
	bySample := make(map[string]string, len(sampleIDs))
	for i, id := range sampleIDs {
		bySample[id] = labels[i]
	}
	aligned := make([]string, len(groups))
	for i, g := range groups {
		label, exists := bySample[g]
		if !exists {
			return nil, fmt.Errorf("sample %q at row %d, %w", g, i, ErrUnknownSample)
		}
		aligned[i] = label
	}
	return aligned, nil
}

// unnamedBlankColumns returns the generated names of columns with an empty header whose every
// cell is blank, as left behind by a trailing delimiter.
func unnamedBlankColumns(data []byte, delim rune, df dataframe.DataFrame) []string {
	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = delim
	header, err := cr.Read()
	if err != nil {
		return nil
	}

	names := df.Names()
	var blank []string
	for j, raw := range header {
		if j >= len(names) || strings.TrimSpace(raw) != "" {
			continue
		}
		empty := true
		for _, record := range df.Col(names[j]).Records() {
			if strings.TrimSpace(record) != "" {
				empty = false
				break
			}
		}
		if empty {
			blank = append(blank, names[j])
		}
	}
	return blank
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

// sniffDelimiter picks the most frequent of tab, comma and semicolon on the first line,
// defaulting to tab.
func sniffDelimiter(data []byte) rune {
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	if !sc.Scan() {
		return '\t'
	}
	line := sc.Text()

	best := '\t'
	bestCnt := strings.Count(line, "\t")
	for _, d := range []rune{',', ';'} {
		if cnt := strings.Count(line, string(d)); cnt > bestCnt {
			best = d
			bestCnt = cnt
		}
	}
	return best
}
