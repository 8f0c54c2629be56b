package report_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TeoCir/IsekkKran/internal/report"
	"github.com/TeoCir/IsekkKran/internal/types"
)

// line is designation, material card text, quantity, unit.
type line [4]string

func tableOf(lines ...line) *types.Table {
	t := &types.Table{
		Headers: []string{"Betegnelse", "Materialkorttekst", "Målkvantum", "KE", "KE.1"},
	}
	for _, l := range lines {
		t.Rows = append(t.Rows, map[string]string{
			"Betegnelse":        l[0],
			"Materialkorttekst": l[1],
			"Målkvantum":        l[2],
			"KE":                "NOK",
			"KE.1":              l[3],
		})
	}
	return t
}

func build(t *testing.T, opt report.Options, lines ...line) *report.Report {
	t.Helper()
	rep, err := report.BuildReport(tableOf(lines...), opt)
	require.NoError(t, err)
	return rep
}

func decimalOf(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func fractionOrder(rep *report.Report) []string {
	var out []string
	for _, r := range rep.Table.Rows {
		out = append(out, r.Fraction)
	}
	return out
}

func TestBuildReport_EndToEnd(t *testing.T) {
	rep := build(t, report.Options{},
		line{"A", "X", "10", "kg"},
		line{"A", "X", "5", "KG "},
		line{"B", "Y", "3", "st"},
	)

	want := report.DisplayTable{
		Header: []string{"Fraksjon", "KG", "ST"},
		Rows: [][]string{
			{"A", "15", ""},
			{"B", "", "3"},
			{"SUM", "15", "3"},
		},
	}
	if diff := cmp.Diff(want, rep.Display); diff != "" {
		t.Fatalf("display mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"KG", "ST"}, rep.Table.Units)
}

func TestNormalizeUnit(t *testing.T) {
	tests := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"kg", "KG", true},
		{"  st ", "ST", true},
		{"Lt", "LT", true},
		{"", "", false},
		{"   ", "", false},
		{"nan", "", false},
		{"NaN", "", false},
		{"na", "", false},
		{"None", "", false},
		{"null", "", false},
		{"total", "", false},
		{"Sum", "", false},
	}
	for _, tt := range tests {
		got, ok := report.NormalizeUnit(tt.raw)
		assert.Equal(t, tt.want, got, "unit %q", tt.raw)
		assert.Equal(t, tt.ok, ok, "unit %q", tt.raw)
	}
}

func TestUnitOrder(t *testing.T) {
	assert.Equal(t, []string{"KG", "LT", "ST"}, report.UnitOrder([]string{"ST", "KG", "LT"}))
	assert.Equal(t, []string{"LT", "M3", "ST"}, report.UnitOrder([]string{"ST", "M3", "LT"}))
	assert.Equal(t, []string{"KG", "ST"}, report.UnitOrder([]string{"st", "KG", "ST", "total", ""}))
	assert.Empty(t, report.UnitOrder(nil))
}

func TestDeriveFraction(t *testing.T) {
	assert.Equal(t, "Papp", report.DeriveFraction("Kranbil Isekk - Avfallstype", "Papp"))
	assert.Equal(t, "Restavfall", report.DeriveFraction("Restavfall", "Papp"))
	assert.Equal(t, "kranbil isekk - avfallstype",
		report.DeriveFraction("kranbil isekk - avfallstype", "Papp"))
}

func TestBuildReport_KranbilUsesMaterialCardText(t *testing.T) {
	rep := build(t, report.Options{},
		line{"Kranbil Isekk - Avfallstype", "Papp", "1", "KG"},
		line{"Kranbil Isekk - Avfallstype", "papp", "2", "KG"},
		line{"KRANBIL ISEKK - AVFALLSTYPE", "Glass", "3", "KG"},
		line{"Papp", "ignored", "4", "KG"},
	)

	got := map[string]string{}
	for _, r := range rep.Display.Rows {
		got[r[0]] = r[1]
	}
	assert.Equal(t, map[string]string{
		"Papp":                        "5",
		"papp":                        "2",
		"KRANBIL ISEKK - AVFALLSTYPE": "3",
		"SUM":                         "10",
	}, got)
}

func TestBuildReport_GarbageUnitsNeverBecomeColumns(t *testing.T) {
	rep := build(t, report.Options{},
		line{"A", "", "10", "kg"},
		line{"A", "", "99", "total"},
		line{"A", "", "99", "TOTAL"},
		line{"A", "", "99", ""},
		line{"B", "", "99", "NaN"},
		line{"B", "", "99", " sum "},
		line{"B", "", "99", "null"},
	)

	assert.Equal(t, []string{"KG"}, rep.Table.Units)
	assert.Equal(t, []string{"A", "SUM"}, fractionOrder(rep))
	assert.Equal(t, "10", rep.Display.Rows[1][1])
	assert.Equal(t, 6, rep.Stats.DroppedUnitRows)
}

func TestBuildReport_AbsentIsNotZero(t *testing.T) {
	rep := build(t, report.Options{},
		line{"A", "", "2", "KG"},
		line{"A", "", "-2", "KG"},
		line{"B", "", "5", "ST"},
	)

	want := [][]string{
		{"B", "", "5"},
		{"A", "0", ""},
		{"SUM", "0", "5"},
	}
	if diff := cmp.Diff(want, rep.Display.Rows); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildReport_UnparseableQuantities(t *testing.T) {
	rep := build(t, report.Options{},
		line{"A", "", "abc", "KG"},
		line{"A", "", "4", "KG"},
		line{"A", "", "", "KG"},
		line{"B", "", "n/a", "KG"},
		line{"B", "", "3", "ST"},
	)

	m := report.Aggregate(report.SourceRows(tableOf(
		line{"A", "", "abc", "KG"},
		line{"A", "", "4", "KG"},
		line{"B", "", "n/a", "KG"},
	)))
	assert.True(t, m.Cell("A", "KG").Present)
	assert.True(t, m.Cell("A", "KG").Value.Equal(decimalOf(t, "4")))
	assert.False(t, m.Cell("B", "KG").Present, "all-unparseable pair must stay absent")
	assert.Equal(t, 2, m.Stats.UnparsedQuantities)

	want := [][]string{
		{"A", "4", ""},
		{"B", "", "3"},
		{"SUM", "4", "3"},
	}
	if diff := cmp.Diff(want, rep.Display.Rows); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildReport_HugeExponentIsUnparsed(t *testing.T) {
	rep := build(t, report.Options{},
		line{"A", "X", "1e50000000", "kg"},
		line{"A", "X", "0.5", "kg"},
	)

	assert.Equal(t, [][]string{
		{"A", "0.5"},
		{"SUM", "0.5"},
	}, rep.Display.Rows)
	assert.Equal(t, 1, rep.Stats.UnparsedQuantities)
}

func TestBuildReport_Ordering(t *testing.T) {
	rep := build(t, report.Options{},
		line{"Alpha", "", "0", "KG"},
		line{"Alpha", "", "0", "ST"},
		line{"Alpha", "", "7", "LT"},
		line{"Mid", "", "0", "KG"},
		line{"Mid", "", "10", "ST"},
		line{"Zeta", "", "50", "KG"},
	)
	assert.Equal(t, []string{"Zeta", "Mid", "Alpha", "SUM"}, fractionOrder(rep))
}

func TestBuildReport_OrderingTieBreaks(t *testing.T) {
	rep := build(t, report.Options{},
		line{"a-small-kg", "", "5", "KG"},
		line{"b-big-kg-low-st", "", "20", "KG"},
		line{"b-big-kg-low-st", "", "1", "ST"},
		line{"c-big-kg-high-st", "", "20", "KG"},
		line{"c-big-kg-high-st", "", "9", "ST"},
		line{"d-negative-kg", "", "-5", "KG"},
		line{"d-negative-kg", "", "2", "ST"},
		line{"e-st-only", "", "8", "ST"},
		line{"f-lt-only", "", "3", "LT"},
		line{"g-lt-only", "", "1", "LT"},
	)
	assert.Equal(t, []string{
		"c-big-kg-high-st",
		"b-big-kg-low-st",
		"a-small-kg",
		"e-st-only",
		"d-negative-kg",
		"f-lt-only",
		"g-lt-only",
		"SUM",
	}, fractionOrder(rep))
}

func TestBuildReport_OrderingWithoutKGColumn(t *testing.T) {
	rep := build(t, report.Options{},
		line{"a", "", "1", "LT"},
		line{"b", "", "4", "ST"},
		line{"c", "", "9", "ST"},
	)
	assert.Equal(t, []string{"LT", "ST"}, rep.Table.Units)
	assert.Equal(t, []string{"c", "b", "a", "SUM"}, fractionOrder(rep))
}

func TestBuildReport_SumInvariant(t *testing.T) {
	rep := build(t, report.Options{},
		line{"A", "", "1.25", "KG"},
		line{"A", "", "3", "LT"},
		line{"B", "", "2.75", "KG"},
		line{"B", "", "x", "ST"},
		line{"C", "", "-1", "ST"},
		line{"D", "", "0.1", "LT"},
		line{"D", "", "0.2", "LT"},
	)

	sum := rep.Table.SumRow()
	require.True(t, sum.Sum)
	for i := range rep.Table.Units {
		total := decimalOf(t, "0")
		for _, r := range rep.Table.FractionRows() {
			total = total.Add(r.Cells[i].OrZero())
		}
		assert.True(t, sum.Cells[i].Present)
		assert.True(t, total.Equal(sum.Cells[i].Value), "column %s", rep.Table.Units[i])
	}
	assert.Equal(t, []string{"SUM", "4", "3.3", "-1"}, rep.Display.Rows[len(rep.Display.Rows)-1])
}

func TestBuildReport_Idempotent(t *testing.T) {
	lines := []line{
		{"Kranbil Isekk - Avfallstype", "Papp", "3.5", "kg"},
		{"Restavfall", "", "12", "KG"},
		{"Restavfall", "", "1", "st"},
		{"EE-avfall", "", "2", "ST"},
		{"Glass", "", "bad", "LT"},
	}
	flat := report.FlatTextOptions{Delimiter: '\t', IncludeSum: true}
	opt := report.Options{FlatText: &flat}

	first := build(t, opt, lines...)
	second := build(t, opt, lines...)

	assert.Equal(t, first.Display, second.Display)
	assert.Equal(t, first.Export, second.Export)
	assert.Equal(t, first.FlatText, second.FlatText)
}

func TestBuildReport_SchemaError(t *testing.T) {
	table := &types.Table{Headers: []string{"Betegnelse", "Materialkorttekst", "KE"}}

	_, err := report.BuildReport(table, report.Options{})
	require.Error(t, err)

	var schemaErr *report.SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, []string{"Målkvantum", "KE.1"}, schemaErr.Missing)
	assert.Contains(t, err.Error(), "Målkvantum")
}

func TestBuildReport_NoUsableUnits(t *testing.T) {
	_, err := report.BuildReport(tableOf(line{"A", "", "1", "total"}), report.Options{})
	var noUnits *report.NoUsableUnitsError
	require.True(t, errors.As(err, &noUnits))
	assert.Empty(t, noUnits.Found)

	_, err = report.BuildReport(tableOf(line{"A", "", "1", "KG"}), report.Options{Units: []string{"lt"}})
	require.True(t, errors.As(err, &noUnits))
	assert.Equal(t, []string{"KG"}, noUnits.Found)
	assert.Equal(t, []string{"lt"}, noUnits.Requested)
}

func TestBuildReport_UnitFilter(t *testing.T) {
	rep := build(t, report.Options{Units: []string{"st", "total"}},
		line{"A", "", "5", "KG"},
		line{"B", "", "2", "ST"},
	)

	want := [][]string{
		{"B", "2"},
		{"A", ""},
		{"SUM", "2"},
	}
	assert.Equal(t, []string{"ST"}, rep.Table.Units)
	if diff := cmp.Diff(want, rep.Display.Rows); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildReport_EmptyFractionDropped(t *testing.T) {
	rep := build(t, report.Options{},
		line{"", "", "5", "KG"},
		line{"Kranbil Isekk - Avfallstype", "", "5", "KG"},
		line{"A", "", "1", "KG"},
	)
	assert.Equal(t, []string{"A", "SUM"}, fractionOrder(rep))
	assert.Equal(t, 2, rep.Stats.DroppedFractionRows)
}

func TestFormatCell(t *testing.T) {
	tests := []struct {
		name string
		cell report.Cell
		opt  report.FormatOptions
		want string
	}{
		{"absent", report.Absent(), report.FormatOptions{}, ""},
		{"zero", report.PresentValue(decimalOf(t, "0")), report.FormatOptions{}, "0"},
		{"whole", report.PresentValue(decimalOf(t, "15.000")), report.FormatOptions{}, "15"},
		{"negative whole", report.PresentValue(decimalOf(t, "-3")), report.FormatOptions{}, "-3"},
		{"full precision", report.PresentValue(decimalOf(t, "2.345")), report.FormatOptions{}, "2.345"},
		{"fixed zero places", report.PresentValue(decimalOf(t, "2.5")), report.FormatOptions{Fixed: true}, "3"},
		{"fixed two places", report.PresentValue(decimalOf(t, "2.345")), report.FormatOptions{Fixed: true, Decimals: 2}, "2.35"},
		{"fixed keeps whole", report.PresentValue(decimalOf(t, "7")), report.FormatOptions{Fixed: true, Decimals: 2}, "7"},
		{"fixed absent", report.Absent(), report.FormatOptions{Fixed: true, Decimals: 2}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, report.FormatCell(tt.cell, tt.opt))
		})
	}
}

func TestRenderFlatText_MixedRowRule(t *testing.T) {
	flat := report.FlatTextOptions{Delimiter: '\t', IncludeSum: true}
	rep := build(t, report.Options{FlatText: &flat},
		line{"A", "", "5", "KG"},
		line{"B", "", "2", "ST"},
		line{"C", "", "n/a", "KG"},
	)

	want := "Fraksjon\tKG\tST\n" +
		"A\t5\t0\n" +
		"B\t0\t2\n" +
		"C\t\t\n" +
		"SUM\t5\t2\n"
	assert.Equal(t, want, rep.FlatText)

	// Display keeps the blank for the same cells.
	assert.Equal(t, []string{"A", "5", ""}, rep.Display.Rows[0])
}

func TestRenderFlatText_Options(t *testing.T) {
	rep := build(t, report.Options{},
		line{"Papp; kartong", "", "2.345", "KG"},
		line{"Glass", "", "1", "ST"},
	)

	text := report.RenderFlatText(rep.Table, report.FlatTextOptions{
		Delimiter:  ';',
		IncludeSum: false,
		Decimals:   2,
	})
	assert.Equal(t, "Fraksjon;KG;ST\n\"Papp; kartong\";2.35;0\nGlass;0;1\n", text)

	text = report.RenderFlatText(rep.Table, report.FlatTextOptions{Delimiter: '|', IncludeSum: true})
	assert.Equal(t, "Fraksjon|KG|ST\nPapp; kartong|2|0\nGlass|0|1\nSUM|2|1\n", text)
}

func TestRenderFlatText_Quoting(t *testing.T) {
	rep := build(t, report.Options{},
		line{" Papp", "", "3", "KG"},
		line{`Glass 10"`, "", "2", "KG"},
		line{"Metall\tjern", "", "1", "KG"},
	)

	text := report.RenderFlatText(rep.Table, report.FlatTextOptions{Delimiter: '\t'})
	assert.Equal(t, "Fraksjon\tKG\n"+
		" Papp\t3\n"+
		"\"Glass 10\"\"\"\t2\n"+
		"\"Metall\tjern\"\t1\n", text)

	text = report.RenderFlatText(rep.Table, report.FlatTextOptions{Delimiter: ';'})
	assert.Contains(t, text, "Metall\tjern;1\n")
}

func TestParseDelimiter(t *testing.T) {
	for in, want := range map[string]rune{
		"":          '\t',
		"tab":       '\t',
		"\\t":       '\t',
		";":         ';',
		"semicolon": ';',
		",":         ',',
		"COMMA":     ',',
		"|":         '|',
		"pipe":      '|',
	} {
		got, err := report.ParseDelimiter(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := report.ParseDelimiter(":")
	assert.Error(t, err)
}

func TestFlatTextMIME(t *testing.T) {
	assert.Equal(t, "text/csv", report.FlatTextMIME(','))
	assert.Equal(t, "text/csv", report.FlatTextMIME(';'))
	assert.Equal(t, "text/plain", report.FlatTextMIME('\t'))
	assert.Equal(t, "text/plain", report.FlatTextMIME('|'))
	assert.Equal(t, ".csv", report.FlatTextExtension(';'))
	assert.Equal(t, ".txt", report.FlatTextExtension('\t'))
}

func TestExport(t *testing.T) {
	rep := build(t, report.Options{},
		line{"A", "", "2.5", "KG"},
		line{"B", "", "3", "ST"},
	)

	assert.Equal(t, "Fraksjonsoversikt", rep.Export.Name)
	assert.Equal(t, []string{"Fraksjon", "KG", "ST"}, rep.Export.Header)
	want := [][]any{
		{"A", 2.5, nil},
		{"B", nil, int64(3)},
		{"SUM", 2.5, int64(3)},
	}
	if diff := cmp.Diff(want, rep.Export.Rows); diff != "" {
		t.Fatalf("export mismatch (-want +got):\n%s", diff)
	}
}
