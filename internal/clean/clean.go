package clean

import (
	"context"
	"strings"
	"time"
	"unicode"

	"github.com/graphetl/rdfpipe/internal/dataset"
	"github.com/graphetl/rdfpipe/internal/logging"
)

// CleanFile reads the dataset at inputPath, normalizes it under rules, and
// writes the result to outputPath. The output has the same row count and
// column order as the input; an existing file at outputPath is overwritten.
// It returns the number of rows written.
func CleanFile(ctx context.Context, inputPath, outputPath string, rules Rules) (int, error) {
	log := logging.FromContext(ctx)
	log.Info().
		Str("component", "clean").
		Str("operation", "clean_file").
		Str("input", inputPath).
		Str("output", outputPath).
		Msg("cleaning dataset")

	table, err := dataset.ReadFile(inputPath)
	if err != nil {
		return 0, err
	}

	cleaned := Apply(table, rules)

	if err := dataset.WriteFile(cleaned, outputPath); err != nil {
		return 0, err
	}

	log.Info().
		Str("component", "clean").
		Int("rows", cleaned.NumRows()).
		Msg("dataset cleaned")

	return cleaned.NumRows(), nil
}

// Apply returns a normalized copy of the table. The input table is not
// mutated. Each transformation is idempotent and independent of the others:
// applying the result to Apply again yields an identical table.
func Apply(t *dataset.Table, rules Rules) *dataset.Table {
	dateCols := make([]int, 0, len(rules.DateColumns))
	for _, name := range rules.DateColumns {
		if idx := t.ColumnIndex(name); idx >= 0 {
			dateCols = append(dateCols, idx)
		}
	}
	unitCol := t.ColumnIndex(rules.UnitColumn)
	qualityCol := t.ColumnIndex(rules.QualityColumn)

	propertyCol, propertySrc := -1, -1
	if rules.PropertyColumn != "" && rules.PropertySource != "" {
		propertyCol = t.ColumnIndex(rules.PropertyColumn)
		propertySrc = t.ColumnIndex(rules.PropertySource)
	}

	out := &dataset.Table{
		Header: t.Header,
		Rows:   make([][]string, len(t.Rows)),
	}

	for i, row := range t.Rows {
		cleaned := make([]string, len(row))
		copy(cleaned, row)

		for _, c := range dateCols {
			cleaned[c] = normalizeDate(cleaned[c], rules.DateLayouts)
		}
		if unitCol >= 0 && rules.isNoUnit(cleaned[unitCol]) {
			cleaned[unitCol] = Dimensionless
		}
		if qualityCol >= 0 {
			if label, ok := rules.canonicalQuality(cleaned[qualityCol]); ok {
				cleaned[qualityCol] = label
			}
		}
		if propertyCol >= 0 && propertySrc >= 0 {
			cleaned[propertyCol] = deriveProperty(cleaned[propertySrc])
		}

		out.Rows[i] = cleaned
	}

	return out
}

// normalizeDate rewrites value to the canonical year-month-day form using
// the first layout that parses. A value no layout accepts passes through
// unchanged; bad rows are the operator's responsibility, not a failure.
func normalizeDate(value string, layouts []string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return value
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.Format(DateOutputLayout)
		}
	}
	return value
}

// deriveProperty derives a property label from a register name: digits are
// removed, and any label starting with "Current" collapses to "Current"
// (current registers differ only in phase number).
func deriveProperty(registerName string) string {
	stripped := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return -1
		}
		return r
	}, registerName)

	stripped = strings.TrimSpace(stripped)
	if strings.HasPrefix(stripped, "Current") {
		return "Current"
	}
	return stripped
}
