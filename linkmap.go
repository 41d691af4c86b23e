// Package linkmap fuses a linker map file with its linked binary (ELF or
// PE) into an index from file-byte ranges to the object/source file that
// contributed those bytes.
package linkmap

import (
	"bytes"
	"debug/elf"
	"debug/pe"

	"github.com/pkg/errors"

	"github.com/mewrev/linkmap/intervalidx"
	"github.com/mewrev/linkmap/mapfile"
	"github.com/mewrev/linkmap/reconcile"
)

// Index answers "which input object contributed this byte" queries over a
// linked binary. Build one Index per (mapfile, binary) pair; it is
// immutable and safe for concurrent reads once Build returns.
type Index struct {
	intervals *intervalidx.Index
}

// Build parses mapfileText with the dialect-appropriate parser, reconciles
// the result against binary's own section table, and returns a queryable
// Index.
//
// Orchestration:
//  1. Detect the mapfile dialect (mapfile.Detect).
//  2. Parse with the matching parser (ParseGNU, ParseLLVM or ParseMSVC).
//  3. Parse binary as ELF or PE. GNU/LLVM dialects reconcile against ELF;
//     MSVC reconciles against PE. Any other (dialect, binary-kind)
//     combination — including a binary that is neither ELF nor PE — returns
//     ErrUnsupportedBinaryFormat.
//  4. Ingest every subsection that acquired a file offset into the interval
//     index.
func Build(mapfileText string, binary []byte) (*Index, error) {
	sections, dialect, err := parseMapfile(mapfileText)
	if err != nil {
		return nil, err
	}

	switch dialect {
	case mapfile.DialectGNU, mapfile.DialectLLVM:
		elfFile, err := elf.NewFile(bytes.NewReader(binary))
		if err != nil {
			return nil, errors.Wrap(ErrUnsupportedBinaryFormat, err.Error())
		}
		reconcile.ELF(sections, elfFile)
	case mapfile.DialectMSVC:
		peFile, err := pe.NewFile(bytes.NewReader(binary))
		if err != nil {
			return nil, errors.Wrap(ErrUnsupportedBinaryFormat, err.Error())
		}
		reconcile.PE(sections, peFile)
	default:
		return nil, errors.WithStack(ErrUnsupportedBinaryFormat)
	}

	return &Index{intervals: intervalidx.Build(collectIntervals(sections))}, nil
}

// parseMapfile detects the dialect of mapfileText and runs the matching
// parser, returning its sections alongside the detected dialect.
func parseMapfile(mapfileText string) ([]*mapfile.Section, mapfile.Dialect, error) {
	detection := mapfile.Detect(mapfileText)
	switch detection.Dialect {
	case mapfile.DialectGNU:
		return mapfile.ParseGNU(mapfileText), mapfile.DialectGNU, nil
	case mapfile.DialectLLVM:
		return mapfile.ParseLLVM(mapfileText, detection.LLVMGap), mapfile.DialectLLVM, nil
	case mapfile.DialectMSVC:
		sections, err := mapfile.ParseMSVC(mapfileText)
		if err != nil {
			return nil, mapfile.DialectMSVC, err
		}
		return sections, mapfile.DialectMSVC, nil
	default:
		return nil, detection.Dialect, errors.WithStack(ErrUnsupportedBinaryFormat)
	}
}

// collectIntervals flattens every subsection across every section into
// intervalidx.Item values, keeping only those that acquired a file offset.
func collectIntervals(sections []*mapfile.Section) []intervalidx.Item {
	var items []intervalidx.Item
	for _, section := range sections {
		for _, sub := range section.SubSections {
			if sub.StartFileOffset == nil {
				continue
			}
			start := *sub.StartFileOffset
			items = append(items, intervalidx.Item{
				Start: start,
				End:   start + sub.Size,
				Value: sub.Filename,
			})
		}
	}
	return items
}

// QueryRange returns every (start, end, filename) hit whose interval
// overlaps the half-open range [lo, hi).
func (ix *Index) QueryRange(lo, hi uint64) []intervalidx.Hit {
	return ix.intervals.QueryRange(lo, hi)
}

// QueryPoint returns every hit whose interval contains p.
func (ix *Index) QueryPoint(p uint64) []intervalidx.Hit {
	return ix.intervals.QueryPoint(p)
}
