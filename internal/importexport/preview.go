package importexport

import (
	"context"
	"io"

	"github.com/tphakala/gear-tracker/internal/datastore/repository"
	"github.com/tphakala/gear-tracker/internal/logger"
)

// SectionPreview reports what importing a section would touch.
type SectionPreview struct {
	Name       string
	Entity     string
	Rows       int
	Duplicates int // rows whose natural key already exists
}

// Preview is the read-only outcome of checking a document before import.
type Preview struct {
	Metadata        map[string]string
	Sections        []SectionPreview
	Errors          []Issue
	Warnings        []Issue
	UnknownSections []string
}

// CanImport reports whether the document has no error-severity issues.
func (p *Preview) CanImport() bool {
	return len(p.Errors) == 0
}

// TotalRows returns the number of data rows across all entity sections.
func (p *Preview) TotalRows() int {
	n := 0
	for _, s := range p.Sections {
		n += s.Rows
	}
	return n
}

// Preview parses r and reports row counts, duplicates and validation issues
// without writing anything.
func (e *Engine) Preview(ctx context.Context, r io.Reader) (*Preview, error) {
	doc, err := Parse(r)
	if err != nil {
		return nil, err
	}
	return e.PreviewDocument(ctx, doc)
}

// PreviewDocument is Preview for an already parsed document.
func (e *Engine) PreviewDocument(ctx context.Context, doc *Document) (*Preview, error) {
	issues := Validate(doc)
	p := &Preview{
		Metadata:        doc.Metadata(),
		UnknownSections: doc.Unknown,
	}
	p.Errors, p.Warnings = splitIssues(issues)

	repos := repository.New(e.store.DB())
	for _, name := range ImportOrder {
		section := doc.Section(name)
		if section == nil {
			continue
		}
		imp := importers[name]
		sp := SectionPreview{Name: name, Entity: imp.spec().Entity, Rows: len(section.Rows)}
		for _, row := range section.Rows {
			if rowHasErrors(issues, sp.Entity, row.Line) {
				continue
			}
			dup, err := imp.isDuplicate(ctx, repos, row)
			if err != nil {
				return nil, err
			}
			if dup {
				sp.Duplicates++
			}
		}
		p.Sections = append(p.Sections, sp)
	}

	e.log.Debug("preview built",
		logger.Int("rows", p.TotalRows()),
		logger.Int("errors", len(p.Errors)),
		logger.Int("warnings", len(p.Warnings)))
	return p, nil
}
