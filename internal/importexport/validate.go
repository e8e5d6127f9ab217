package importexport

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/tphakala/gear-tracker/internal/datastore/entities"
)

// Severity grades a validation issue. Errors block the row, warnings do not.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// IssueType classifies a validation issue.
type IssueType string

const (
	IssueMissingRequired   IssueType = "missing_required"
	IssueInvalidDate       IssueType = "invalid_date"
	IssueInvalidEnum       IssueType = "invalid_enum"
	IssueInvalidBoolean    IssueType = "invalid_boolean"
	IssueInvalidNumber     IssueType = "invalid_number"
	IssueUnknownSection    IssueType = "unknown_section"
	IssueDuplicateID       IssueType = "duplicate_id"
	IssueDanglingReference IssueType = "dangling_reference"
	IssueStorage           IssueType = "storage"
	IssueStatusAdjusted    IssueType = "status_adjusted"
)

// Issue is a problem found in one row of the document.
type Issue struct {
	Row      int // source line, 0 when not tied to a row
	Entity   string
	Field    string
	Type     IssueType
	Message  string
	Severity Severity
}

func (i Issue) String() string {
	if i.Row > 0 {
		return fmt.Sprintf("line %d: %s.%s: %s", i.Row, i.Entity, i.Field, i.Message)
	}
	return fmt.Sprintf("%s: %s", i.Entity, i.Message)
}

// Validate checks every known section of doc. It never touches the database.
func Validate(doc *Document) []Issue {
	var issues []Issue
	for _, name := range doc.Unknown {
		issues = append(issues, Issue{
			Entity:   name,
			Type:     IssueUnknownSection,
			Message:  fmt.Sprintf("section %q is not recognised and was ignored", name),
			Severity: SeverityWarning,
		})
	}
	for _, spec := range entitySpecs {
		section := doc.Section(spec.Name)
		if section == nil {
			continue
		}
		seen := make(map[string]int)
		for _, row := range section.Rows {
			issues = append(issues, validateRow(spec, row)...)
			if id := row.Get("id"); id != "" {
				if first, dup := seen[id]; dup {
					issues = append(issues, Issue{
						Row:      row.Line,
						Entity:   spec.Entity,
						Field:    "id",
						Type:     IssueDuplicateID,
						Message:  fmt.Sprintf("id %q already used on line %d", id, first),
						Severity: SeverityWarning,
					})
				} else {
					seen[id] = row.Line
				}
			}
		}
	}
	return issues
}

// validateRow checks required fields, dates, booleans, numbers and enums of one row.
func validateRow(spec *SectionSpec, row Row) []Issue {
	var issues []Issue
	add := func(field string, t IssueType, format string, args ...any) {
		issues = append(issues, Issue{
			Row:      row.Line,
			Entity:   spec.Entity,
			Field:    field,
			Type:     t,
			Message:  fmt.Sprintf(format, args...),
			Severity: SeverityError,
		})
	}

	for _, field := range spec.Required {
		if row.Get(field) == "" {
			add(field, IssueMissingRequired, "%s is required", field)
		}
	}

	b := binderFor(spec.model())
	for _, column := range spec.Columns {
		value := row.Get(column)
		if value == "" {
			continue
		}
		if allowed, ok := spec.Enums[column]; ok {
			if !slices.Contains(allowed, strings.ToUpper(value)) {
				add(column, IssueInvalidEnum, "invalid value %q, expected one of %s", value, strings.Join(allowed, ", "))
			}
			continue
		}
		kind, ok := b.kind(column)
		if !ok {
			continue
		}
		switch kind {
		case kindDate:
			if _, err := entities.ParseDate(value); err != nil {
				add(column, IssueInvalidDate, "invalid date %q, expected YYYY-MM-DD", value)
			}
		case kindBool:
			if _, err := parseBool(value); err != nil {
				add(column, IssueInvalidBoolean, "%s", err)
			}
		case kindInt, kindOptionalInt:
			if _, err := strconv.Atoi(value); err != nil {
				add(column, IssueInvalidNumber, "invalid integer %q", value)
			}
		case kindOptionalFloat:
			if _, err := strconv.ParseFloat(value, 64); err != nil {
				add(column, IssueInvalidNumber, "invalid number %q", value)
			}
		}
	}
	return issues
}

// rowHasErrors reports whether any error-severity issue belongs to line.
func rowHasErrors(issues []Issue, entity string, line int) bool {
	for _, i := range issues {
		if i.Row == line && i.Entity == entity && i.Severity == SeverityError {
			return true
		}
	}
	return false
}

func splitIssues(issues []Issue) (errs, warnings []Issue) {
	for _, i := range issues {
		if i.Severity == SeverityError {
			errs = append(errs, i)
		} else {
			warnings = append(warnings, i)
		}
	}
	return errs, warnings
}
