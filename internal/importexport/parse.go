package importexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/tphakala/gear-tracker/internal/errors"
)

// Row is one data row of a section, keyed by lower-cased column header.
type Row struct {
	Line   int // 1-based line number in the source document
	Values map[string]string
}

// Get returns the trimmed cell of column, empty when absent.
func (r Row) Get(column string) string {
	return strings.TrimSpace(r.Values[column])
}

// Has reports whether the row carries column at all.
func (r Row) Has(column string) bool {
	_, ok := r.Values[column]
	return ok
}

// Section is a parsed CSV section.
type Section struct {
	Name   string
	Line   int // line of the === header
	Header []string
	Rows   []Row
}

// Document is a parsed sectioned CSV file.
type Document struct {
	Sections map[string]*Section
	Order    []string // sections in the order they appeared
	Unknown  []string // section names that are not part of the format
}

// Section returns the named section or nil.
func (d *Document) Section(name string) *Section {
	return d.Sections[NormalizeSectionName(name)]
}

// RowCount returns the number of data rows in the named section.
func (d *Document) RowCount(name string) int {
	if s := d.Section(name); s != nil {
		return len(s.Rows)
	}
	return 0
}

// Metadata returns the first METADATA row, or nil.
func (d *Document) Metadata() map[string]string {
	if s := d.Section(SectionMetadata); s != nil && len(s.Rows) > 0 {
		return s.Rows[0].Values
	}
	return nil
}

// Parse reads a sectioned CSV document. A UTF-8 byte order mark is accepted
// and a record holding invalid UTF-8 rejects the whole document.
// Rows before the first section header are ignored, as are comment rows whose
// first cell starts with '#'. A blank line ends the current section's data.
func Parse(r io.Reader) (*Document, error) {
	reader := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(transform.Nop)))
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = false

	doc := &Document{Sections: make(map[string]*Section)}
	var (
		current *Section
		ended   bool
		endLine int
	)

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, parseError(err)
		}
		for i, cell := range record {
			if !utf8.ValidString(cell) {
				return nil, encodingError(reader, i)
			}
		}
		line, _ := reader.FieldPos(0)
		gap := endLine > 0 && line > endLine+1
		endLine = recordEndLine(reader, record)

		if name, ok := parseSectionHeader(record[0]); ok {
			current = doc.startSection(name, line)
			ended = false
			continue
		}
		if current == nil || strings.HasPrefix(strings.TrimSpace(record[0]), "#") {
			continue
		}
		if gap && current.Header != nil {
			ended = true
		}
		if blankRecord(record) {
			if current.Header != nil {
				ended = true
			}
			continue
		}
		if ended {
			continue
		}
		if current.Header == nil {
			current.Header = normalizeHeader(record)
			continue
		}
		current.Rows = append(current.Rows, newRow(current.Header, record, line))
	}

	for _, name := range doc.Unknown {
		doc.Sections[name].Rows = nil
	}
	return doc, nil
}

func (d *Document) startSection(name string, line int) *Section {
	if s, ok := d.Sections[name]; ok {
		// A repeated section appends to the first one under its own header row.
		s.Header = nil
		return s
	}
	s := &Section{Name: name, Line: line}
	d.Sections[name] = s
	d.Order = append(d.Order, name)
	if !knownSection(name) {
		d.Unknown = append(d.Unknown, name)
	}
	return s
}

// recordEndLine returns the line the record ends on, accounting for quoted
// newlines in its last field.
func recordEndLine(reader *csv.Reader, record []string) int {
	last := len(record) - 1
	line, _ := reader.FieldPos(last)
	return line + strings.Count(record[last], "\n")
}

func blankRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func normalizeHeader(record []string) []string {
	header := make([]string, len(record))
	for i, cell := range record {
		header[i] = strings.ToLower(strings.TrimSpace(cell))
	}
	return header
}

func newRow(header, record []string, line int) Row {
	values := make(map[string]string, len(header))
	for i, column := range header {
		if column == "" {
			continue
		}
		if i < len(record) {
			values[column] = record[i]
		} else {
			values[column] = ""
		}
	}
	return Row{Line: line, Values: values}
}

func encodingError(reader *csv.Reader, field int) error {
	line, column := reader.FieldPos(field)
	return errors.New(fmt.Errorf("%w in field %d", ErrInvalidEncoding, field+1)).
		Component(component).
		Category(errors.CategoryFileParsing).
		Context("row", line).
		Context("column", column).
		Build()
}

func parseError(err error) error {
	builder := errors.New(err).
		Component(component).
		Category(errors.CategoryFileParsing)
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		builder = builder.Context("row", pe.Line).Context("column", pe.Column)
	}
	return builder.Build()
}
