package charts

import (
	"strings"

	"github.com/aristath/seriesplot/internal/domain"
)

const rangeLabelLayout = "2006-01-02 15:04"

// ChartID builds the identifier of a plotted series:
// "<feature> (<range>)" or "<feature>, <reference> (<range>)".
// A series without feature label gets an empty id, which slot allocation rejects.
func ChartID(meta domain.TimeseriesMetadata, referenceLabel, rangeLabel string) string {
	feature := strings.TrimSpace(meta.Feature.Label)
	if feature == "" {
		return ""
	}

	var b strings.Builder
	b.WriteString(feature)
	if referenceLabel != "" {
		b.WriteString(", ")
		b.WriteString(referenceLabel)
	}
	b.WriteString(" (")
	b.WriteString(rangeLabel)
	b.WriteString(")")
	return b.String()
}

// RangeLabel summarizes the time span of a series. The metadata span wins over
// the requested span; without either the phenomenon label is used.
func RangeLabel(meta domain.TimeseriesMetadata, requested *domain.Timespan) string {
	if span, ok := meta.Span(); ok {
		return formatSpan(span)
	}
	if requested != nil {
		return formatSpan(*requested)
	}
	return meta.Phenomenon.Label
}

func formatSpan(span domain.Timespan) string {
	return span.Start.Format(rangeLabelLayout) + " - " + span.End.Format(rangeLabelLayout)
}

// AxisLabel returns "<phenomenon> [<uom>]"
func AxisLabel(meta domain.TimeseriesMetadata) string {
	label := meta.Phenomenon.Label
	if meta.UOM == "" {
		return label
	}
	if label == "" {
		return "[" + meta.UOM + "]"
	}
	return label + " [" + meta.UOM + "]"
}

// ReferenceLabel returns the display label of a reference series,
// falling back to its id when the metadata does not describe it.
func ReferenceLabel(meta domain.TimeseriesMetadata, referenceID string) string {
	if ref, ok := meta.ReferenceValue(referenceID); ok && ref.Label != "" {
		return ref.Label
	}
	return referenceID
}
