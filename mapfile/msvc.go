package mapfile

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// msvcSymbolRe matches one static-symbol row of an MSVC link mapfile:
//
//	 0001:00000010       ?foo@@YAXXZ        0000000000401010 f a.obj
var msvcSymbolRe = regexp.MustCompile(`^ (?P<section>[0-9a-fA-F]{4}):(?P<offset>[0-9a-fA-F]{8})\s+\S+\s+(?P<vaddr>[0-9a-fA-F]{16})(?: \w)?\s+(?P<origin>.+)$`)

const staticSymbolsAnchor = " Static symbols"

// ParseMSVC reconstructs SubSection ranges for an MSVC link mapfile from its
// flat static-symbol listing.
//
// MSVC mapfiles do not list contributions directly: they list one static
// symbol per line. This parser coalesces runs of consecutive symbols that
// share the same origin object within the same section into a single
// SubSection, on the assumption — true of linker output — that symbols
// appear in monotonic section-offset order within a section. Sections are
// addressed by index (not by name) because this dialect carries no section
// names; index 0 is reserved as a sentinel so that PE reconciliation (C6)
// can recover the 1-based correspondence to the PE section table.
//
// Returns ErrWrongMapfileFormat if the " Static symbols" anchor is missing,
// or if a row that matched the symbol shape carries a malformed hex field.
func ParseMSVC(text string) ([]*Section, error) {
	anchor := strings.Index(text, staticSymbolsAnchor)
	if anchor < 0 {
		return nil, errors.WithStack(ErrWrongMapfileFormat)
	}

	lines := strings.Split(text[anchor:], "\n")
	if len(lines) < 2 {
		return nil, errors.WithStack(ErrWrongMapfileFormat)
	}
	lines = lines[2:] // skip the anchor line and the blank separator.

	var (
		sections            []*Section
		currentFilename     string
		haveCurrentFilename bool
		currentStartOffset  uint64
		currentSectionNb    uint64
		prevSectionOffset   uint64
	)

	ensureSection := func(nb uint64) {
		for uint64(len(sections)) <= nb {
			sections = append(sections, &Section{})
		}
	}

	flush := func(endSectionNb uint64, filename string) {
		ensureSection(endSectionNb)
		size := prevSectionOffset - currentStartOffset + 1
		sections[endSectionNb].SubSections = append(sections[endSectionNb].SubSections, &SubSection{
			StartVAddr: currentStartOffset, // section-relative offset, not a VA; see mapfile.go.
			Size:       size,
			Filename:   filename,
		})
	}

	for _, line := range lines {
		line = strings.TrimRight(line, "\r")
		m := msvcSymbolRe.FindStringSubmatch(line)
		if m == nil {
			warn.Printf("ending MSVC static-symbol scan at non-matching line: %q", line)
			break
		}
		sectionNb, err := strconv.ParseUint(m[msvcSymbolRe.SubexpIndex("section")], 16, 64)
		if err != nil {
			return nil, errors.WithStack(ErrWrongMapfileFormat)
		}
		sectionOffset, err := strconv.ParseUint(m[msvcSymbolRe.SubexpIndex("offset")], 16, 64)
		if err != nil {
			return nil, errors.WithStack(ErrWrongMapfileFormat)
		}
		ensureSection(sectionNb)

		origin := m[msvcSymbolRe.SubexpIndex("origin")]
		filename, _, _ := strings.Cut(origin, ":")

		switch {
		case !haveCurrentFilename:
			haveCurrentFilename = true
			currentFilename = filename
			currentStartOffset = sectionOffset
			currentSectionNb = sectionNb
		case currentFilename != filename || currentSectionNb != sectionNb:
			// A section transition mid-run closes the run at the previous
			// row's offset, not at the new section's boundary.
			flush(currentSectionNb, currentFilename)
			currentFilename = filename
			currentStartOffset = sectionOffset
			currentSectionNb = sectionNb
		}
		prevSectionOffset = sectionOffset
	}

	if haveCurrentFilename {
		flush(currentSectionNb, currentFilename)
	}
	return sections, nil
}
