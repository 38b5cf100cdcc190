package perfbook

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/seapoint/perfbook/date"
	"github.com/shopspring/decimal"
)

// Record kinds in a sectioned brokerage export. Every record's first two
// fields are (section name, record kind); a Header record declares the
// section's column names, a Data record carries values in declared order.
const (
	recordHeader = "Header"
	recordData   = "Data"
)

// Well-known section names.
const (
	SectionStatement   = "Statement"
	SectionAccounts    = "Accounts"
	SectionPositions   = "Positions"
	SectionDividends   = "Dividends"
	SectionPerformance = "Realized & Unrealized Performance Summary"
	SectionNAV         = "Net Asset Value"
	SectionChangeNAV   = "Change in NAV"
)

// Section is a named table of raw string records sharing one header row.
type Section struct {
	Name    string
	Columns []string
	Rows    [][]string

	index map[string]int // column name -> position
}

func newSection(name string, columns []string) *Section {
	s := &Section{Name: name, Columns: columns, index: make(map[string]int, len(columns))}
	for i, c := range columns {
		s.index[c] = i
	}
	return s
}

// Has reports whether the section declares the given column.
func (s *Section) Has(column string) bool {
	_, ok := s.index[column]
	return ok
}

// Value returns the raw cell at (row, column), or "" when the column is not
// declared. Rows are padded at parse time, so the access never goes out of
// bounds.
func (s *Section) Value(row int, column string) string {
	i, ok := s.index[column]
	if !ok {
		return ""
	}
	return s.Rows[row][i]
}

// FindColumn returns the first declared column whose name contains all the
// given fragments. Brokerages rename columns between export versions, so
// consumers match loosely ("Ending" + "Net Asset Value").
func (s *Section) FindColumn(fragments ...string) (string, bool) {
	for _, c := range s.Columns {
		all := true
		for _, f := range fragments {
			if !strings.Contains(c, f) {
				all = false
				break
			}
		}
		if all {
			return c, true
		}
	}
	return "", false
}

// Statement is a parsed multi-section export: one table per section name.
type Statement struct {
	Sections map[string]*Section
}

// Section returns the named section, or an empty one. Consumers degrade on
// missing sections instead of branching on presence.
func (st *Statement) Section(name string) *Section {
	if s, ok := st.Sections[name]; ok {
		return s
	}
	return newSection(name, nil)
}

// LoadStatement parses the statement file at path. A missing file is the
// one fatal condition of the whole pipeline.
func LoadStatement(path string) (*Statement, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open statement %q: %w", path, err)
	}
	defer f.Close()
	return ParseStatement(f)
}

// ParseStatement reads a sectioned CSV stream into named tables.
//
// The parser is permissive: unknown record kinds are ignored, a data record
// arriving before its section's header is dropped, short rows are padded
// with empty strings and extra trailing fields are cut. Only a broken
// stream is an error.
func ParseStatement(r io.Reader) (*Statement, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	st := &Statement{Sections: make(map[string]*Section)}
	first := true
	for {
		raw, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("could not read statement record: %w", err)
		}
		if first {
			// exports often start with a UTF-8 BOM
			if len(raw) > 0 {
				raw[0] = strings.TrimPrefix(raw[0], "\uFEFF")
			}
			first = false
		}
		if len(raw) < 2 {
			continue
		}
		section := strings.TrimSpace(raw[0])
		kind := strings.TrimSpace(raw[1])
		fields := make([]string, len(raw)-2)
		for i, cell := range raw[2:] {
			fields[i] = strings.TrimSpace(cell)
		}

		switch kind {
		case recordHeader:
			st.Sections[section] = newSection(section, fields)
		case recordData:
			s, ok := st.Sections[section]
			if !ok {
				continue // no header to interpret the record against
			}
			row := make([]string, len(s.Columns))
			copy(row, fields) // pads short rows, cuts extra trailing fields
			s.Rows = append(s.Rows, row)
		}
	}
	return st, nil
}

// StatementMeta carries the identification block of a statement.
type StatementMeta struct {
	Title     string
	Period    string
	Generated string
}

// metaLookup finds the last Field Value for a Field Name, case-insensitively.
func metaLookup(s *Section, field string) string {
	value := ""
	for i := range s.Rows {
		name := strings.TrimSpace(s.Value(i, "Field Name"))
		if strings.EqualFold(name, field) {
			value = strings.TrimSpace(s.Value(i, "Field Value"))
		}
	}
	return value
}

// Metadata extracts title, covered period and generation timestamp from the
// Statement section. Missing fields stay empty.
func (st *Statement) Metadata() StatementMeta {
	s := st.Section(SectionStatement)
	return StatementMeta{
		Title:     metaLookup(s, "Title"),
		Period:    metaLookup(s, "Period"),
		Generated: metaLookup(s, "WhenGenerated"),
	}
}

// AccountName returns the account holder name from the Accounts section,
// or "Total Portfolio" when the statement does not carry one.
func (st *Statement) AccountName() string {
	s := st.Section(SectionAccounts)
	if s.Has("Name") && len(s.Rows) > 0 {
		if name := strings.TrimSpace(s.Value(0, "Name")); name != "" {
			return name
		}
	}
	return "Total Portfolio"
}

// ReportDate returns the date the statement was generated, derived from the
// WhenGenerated timestamp ("2026-01-13, 10:55:58 EST" -> 2026-01-13).
// The zero Date when absent or unparseable.
func (st *Statement) ReportDate() date.Date {
	raw := st.Metadata().Generated
	if raw == "" {
		return date.Date{}
	}
	d, err := date.Parse(raw)
	if err != nil {
		return date.Date{}
	}
	return d
}

// navEnding returns the "Ending Net Asset Value" cell for the first NAV-
// section row whose Asset Class matches the predicate.
func (st *Statement) navEnding(match func(assetClass string) bool) decimal.Decimal {
	s := st.Section(SectionNAV)
	col, ok := s.FindColumn("Ending", "Net Asset Value")
	if !ok {
		return decimal.Zero
	}
	for i := range s.Rows {
		if match(s.Value(i, "Asset Class")) {
			v, _ := ParseAmount(s.Value(i, col))
			return v
		}
	}
	return decimal.Zero
}

// ReportedNAV returns the authoritative account-level ending net asset
// value: the "Total" row of the Net Asset Value section. Zero when the
// section or row is absent.
func (st *Statement) ReportedNAV() decimal.Decimal {
	return st.navEnding(func(ac string) bool {
		return strings.Contains(strings.ToLower(ac), "total")
	})
}

// SettledCash returns the uninvested cash balance reported in the Net
// Asset Value section's Cash row. Zero when absent.
func (st *Statement) SettledCash() decimal.Decimal {
	return st.navEnding(func(ac string) bool {
		return strings.EqualFold(strings.TrimSpace(ac), "Cash")
	})
}
