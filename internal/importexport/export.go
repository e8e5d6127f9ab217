package importexport

import (
	"context"
	"encoding/csv"
	"io"
	"time"

	"github.com/tphakala/gear-tracker/internal/datastore/repository"
	"github.com/tphakala/gear-tracker/internal/logger"
)

const (
	byteOrderMark   = "﻿"
	exportDateStamp = "2006-01-02 15:04:05"
)

// Export writes the complete database as a sectioned CSV document: METADATA
// first, then every entity section in a fixed order with deterministic row order.
func (e *Engine) Export(ctx context.Context, w io.Writer) (err error) {
	start := time.Now()
	defer func() { e.recordRun("export", start, err) }()

	if _, err := io.WriteString(w, byteOrderMark); err != nil {
		return writeError(err, SectionMetadata)
	}
	cw := csv.NewWriter(w)

	meta := []string{e.now().UTC().Format(exportDateStamp), e.version, ExportType, "0"}
	if err := writeSection(cw, metadataSpec, [][]string{meta}); err != nil {
		return err
	}

	repos := repository.New(e.store.DB())
	total := 0
	for _, spec := range entitySpecs {
		list, err := exportList(ctx, repos, spec.Name)
		if err != nil {
			return err
		}
		b := binderFor(spec.model())
		rows := make([][]string, 0, len(list))
		for _, entity := range list {
			row := make([]string, len(spec.Columns))
			for i, column := range spec.Columns {
				row[i] = b.get(entity, column)
			}
			rows = append(rows, row)
		}
		if err := writeSection(cw, spec, rows); err != nil {
			return err
		}
		total += len(rows)
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return writeError(err, "")
	}
	e.log.Info("export completed",
		logger.Int("rows", total),
		logger.Duration("elapsed", time.Since(start)))
	return nil
}

// Template writes the section headers and column rows without data. An
// empty entity emits every entity section.
func (e *Engine) Template(w io.Writer, entity string) error {
	specs := entitySpecs
	if entity != "" {
		spec, ok := Spec(entity)
		if !ok {
			return unknownSectionError(entity)
		}
		specs = []*SectionSpec{spec}
	}
	cw := csv.NewWriter(w)
	for _, spec := range specs {
		if err := writeSection(cw, spec, nil); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return writeError(err, "")
	}
	return nil
}

func writeSection(cw *csv.Writer, spec *SectionSpec, rows [][]string) error {
	if err := cw.Write([]string{"=== " + spec.Name + " ==="}); err != nil {
		return writeError(err, spec.Name)
	}
	if err := cw.Write(spec.Columns); err != nil {
		return writeError(err, spec.Name)
	}
	if err := cw.WriteAll(rows); err != nil {
		return writeError(err, spec.Name)
	}
	// blank separator line
	if err := cw.Write(nil); err != nil {
		return writeError(err, spec.Name)
	}
	return nil
}

// exportList loads the rows of a section in export order.
func exportList(ctx context.Context, repos *repository.Repositories, section string) ([]any, error) {
	switch section {
	case SectionFirearms:
		return anySlice(repos.Firearms.List(ctx, repository.FirearmFilter{IncludeTransferred: true}))
	case SectionNFAItems:
		return anySlice(repos.NFAItems.List(ctx, ""))
	case SectionSoftGear:
		return anySlice(repos.SoftGear.List(ctx, ""))
	case SectionAttachments:
		return anySlice(repos.Attachments.List(ctx))
	case SectionConsumables:
		return anySlice(repos.Consumables.List(ctx))
	case SectionReloadBatches:
		return anySlice(repos.ReloadBatches.List(ctx, repository.ReloadBatchFilter{}))
	case SectionLoadouts:
		return anySlice(repos.Loadouts.List(ctx))
	case SectionLoadoutItems:
		return anySlice(repos.Loadouts.ListItems(ctx, ""))
	case SectionLoadoutConsumables:
		return anySlice(repos.Loadouts.ListConsumables(ctx, ""))
	case SectionBorrowers:
		return anySlice(repos.Borrowers.List(ctx))
	default:
		return nil, unknownSectionError(section)
	}
}

func anySlice[T any](list []*T, err error) ([]any, error) {
	if err != nil {
		return nil, err
	}
	out := make([]any, len(list))
	for i, v := range list {
		out[i] = v
	}
	return out, nil
}
