// Package clean implements the Cleaner stage: per-column string
// normalization over a tabular dataset, driven by explicit lookup tables
// rather than ambient package state.
package clean

import (
	"strings"

	"github.com/graphetl/rdfpipe/internal/config"
)

// Dimensionless is the canonical placeholder for a missing or unit-free
// measurement.
const Dimensionless = "Dimensionless"

// qualityPrefix is a legacy label prefix carried by some source datasets.
// It is stripped before the quality vocabulary lookup.
const qualityPrefix = "Qualità della misura: "

// defaultDateLayouts are the accepted input date representations, tried in
// order. The first layout that parses wins. The canonical output form is
// always DateOutputLayout.
var defaultDateLayouts = []string{
	"2006-01-02 15:04:05.000",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"01/02/2006",
	"2006/01/02",
	"02-01-2006",
	"2006-01-02",
}

// DateOutputLayout is the canonical calendar-date form written by the
// Cleaner: zero-padded, hyphen-separated year-month-day.
const DateOutputLayout = "2006-01-02"

// defaultNoUnitMarkers are matched case-insensitively after trimming.
var defaultNoUnitMarkers = []string{"-", "n/a", "na", "none", "dimensionless"}

// defaultQualityLabels maps lower-cased trimmed quality values to their
// canonical labels.
var defaultQualityLabels = map[string]string{
	"good":      "Good",
	"uncertain": "Uncertain",
	"bad":       "Bad",
	"missing":   "Missing",
}

// Rules holds the Cleaner's lookup tables. A Rules value is immutable once
// built; the Cleaner is a pure function of (table, rules).
type Rules struct {
	// DateColumns lists the columns rewritten to DateOutputLayout.
	DateColumns []string
	// DateLayouts are the accepted input layouts, tried in order.
	DateLayouts []string
	// UnitColumn is the column subject to no-unit normalization.
	UnitColumn string
	// noUnitMarkers is the lower-cased marker set.
	noUnitMarkers map[string]struct{}
	// QualityColumn is the column subject to vocabulary lookup.
	QualityColumn string
	// qualityLabels maps lower-cased values to canonical labels.
	qualityLabels map[string]string
	// PropertyColumn, when set together with PropertySource, is derived
	// from the source column with digits removed.
	PropertyColumn string
	PropertySource string
}

// Defaults returns the documented default rule tables: the date column and
// unit/quality columns of the reference sensor dataset, the seven accepted
// date layouts, and the default marker set and quality vocabulary.
func Defaults() Rules {
	return build(
		[]string{"data_rilevazione"},
		defaultDateLayouts,
		"unit",
		defaultNoUnitMarkers,
		"quality",
		defaultQualityLabels,
		"property",
		"register_name",
	)
}

// FromConfig builds Rules from the optional clean_rules config section.
// Every empty field falls back to its default.
func FromConfig(cr *config.CleanRules) Rules {
	if cr == nil {
		return Defaults()
	}

	d := Defaults()

	dateColumns := cr.DateColumns
	if len(dateColumns) == 0 {
		dateColumns = d.DateColumns
	}
	dateLayouts := cr.DateLayouts
	if len(dateLayouts) == 0 {
		dateLayouts = d.DateLayouts
	}
	unitColumn := cr.UnitColumn
	if unitColumn == "" {
		unitColumn = d.UnitColumn
	}
	markers := cr.NoUnitMarkers
	if len(markers) == 0 {
		markers = defaultNoUnitMarkers
	}
	qualityColumn := cr.QualityColumn
	if qualityColumn == "" {
		qualityColumn = d.QualityColumn
	}
	labels := cr.QualityLabels
	if len(labels) == 0 {
		labels = defaultQualityLabels
	}
	propertyColumn := cr.PropertyColumn
	if propertyColumn == "" {
		propertyColumn = d.PropertyColumn
	}
	propertySource := cr.PropertySource
	if propertySource == "" {
		propertySource = d.PropertySource
	}

	return build(dateColumns, dateLayouts, unitColumn, markers,
		qualityColumn, labels, propertyColumn, propertySource)
}

func build(
	dateColumns, dateLayouts []string,
	unitColumn string, markers []string,
	qualityColumn string, labels map[string]string,
	propertyColumn, propertySource string,
) Rules {
	markerSet := make(map[string]struct{}, len(markers))
	for _, m := range markers {
		markerSet[strings.ToLower(strings.TrimSpace(m))] = struct{}{}
	}

	labelTable := make(map[string]string, len(labels))
	for k, v := range labels {
		labelTable[strings.ToLower(strings.TrimSpace(k))] = v
	}

	return Rules{
		DateColumns:    dateColumns,
		DateLayouts:    dateLayouts,
		UnitColumn:     unitColumn,
		noUnitMarkers:  markerSet,
		QualityColumn:  qualityColumn,
		qualityLabels:  labelTable,
		PropertyColumn: propertyColumn,
		PropertySource: propertySource,
	}
}

// isNoUnit reports whether value is empty or a configured no-unit marker.
// Matching is case-insensitive on the trimmed value.
func (r Rules) isNoUnit(value string) bool {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return true
	}
	_, ok := r.noUnitMarkers[strings.ToLower(trimmed)]
	return ok
}

// canonicalQuality returns the canonical label for value and whether the
// lookup hit. The legacy prefix is stripped before matching.
func (r Rules) canonicalQuality(value string) (string, bool) {
	trimmed := strings.TrimSpace(strings.TrimPrefix(value, qualityPrefix))
	label, ok := r.qualityLabels[strings.ToLower(trimmed)]
	return label, ok
}
