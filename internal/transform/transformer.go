package transform

import (
	"math"
	"strconv"
	"strings"

	"consensuscli/pkg/contracts/domain"
)

// DefaultListSeparator joins list-valued fields when Options leaves it empty
const DefaultListSeparator = ";"

const externalOpportunityKey = "externalOpportunity"

// Options controls how records are flattened
type Options struct {
	// ListSeparator joins the demoUuids list into one cell
	ListSeparator string
}

func (o Options) separator() string {
	if o.ListSeparator == "" {
		return DefaultListSeparator
	}
	return o.ListSeparator
}

// ToFullRow flattens one record into the full export row. Every column of
// domain.FullColumns is present in the result.
func ToFullRow(record domain.Record, opts Options) domain.Row {
	ext := record.Object(externalOpportunityKey)

	row := domain.Row{
		domain.ColSendDemoUUID:            clean(record.String(domain.ColSendDemoUUID)),
		domain.ColDemoboardName:           clean(record.String(domain.ColDemoboardName)),
		domain.ColOrganization:            clean(record.String(domain.ColOrganization)),
		domain.ColViewTime:                formatViewTime(record),
		domain.ColTimeLastView:            clean(record.String(domain.ColTimeLastView)),
		domain.ColExternalAccountID:       clean(ext.String(domain.ColExternalAccountID)),
		domain.ColExternalOpportunityID:   clean(ext.String(domain.ColExternalOpportunityID)),
		domain.ColExternalAccountName:     clean(ext.String(domain.ColExternalAccountName)),
		domain.ColExternalOpportunityName: clean(ext.String(domain.ColExternalOpportunityName)),
		domain.ColDemoUUIDs:               demoUUIDs(record, opts.separator()),
	}
	return row
}

// ToSummaryRow selects and renames the six summary columns from a full row
func ToSummaryRow(full domain.Row) domain.Row {
	mapping := domain.SummaryMapping()
	row := make(domain.Row, len(mapping))
	for summaryCol, fullCol := range mapping {
		row[summaryCol] = full[fullCol]
	}
	return row
}

// Records transforms every record, returning full and summary rows in
// record order. Both slices always have len(records) entries.
func Records(records []domain.Record, opts Options) (full []domain.Row, summary []domain.Row) {
	full = make([]domain.Row, len(records))
	summary = make([]domain.Row, len(records))
	for i, record := range records {
		full[i] = ToFullRow(record, opts)
		summary[i] = ToSummaryRow(full[i])
	}
	return full, summary
}

// demoUUIDs joins the demoUuids list, falling back to the scalar demoUuid
// when the list is missing or empty
func demoUUIDs(record domain.Record, sep string) string {
	var ids []string
	for _, id := range record.Strings(domain.ColDemoUUIDs) {
		if id = clean(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return clean(record.String("demoUuid"))
	}
	return strings.Join(ids, sep)
}

// formatViewTime renders viewTime as an integer when it is integral and as a
// plain decimal otherwise. Non-numeric values become empty.
func formatViewTime(record domain.Record) string {
	v, ok := record.Float(domain.ColViewTime)
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// clean trims whitespace and blanks the textual null markers the API emits
func clean(s string) string {
	s = strings.TrimSpace(s)
	switch s {
	case "null", "None", "nan", "NaN":
		return ""
	}
	return s
}
