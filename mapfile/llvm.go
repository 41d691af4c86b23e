package mapfile

import (
	"regexp"
	"strings"
)

// llvmRowRe matches a single data row of an LLVM lld mapfile: four leading
// hex/decimal fields (vma, lma, size, align), a whitespace run whose length
// is classifier-critical, and a trailing name field.
var llvmRowRe = regexp.MustCompile(`^\s*(?P<vma>[0-9a-fA-F]+)\s+(?P<lma>[0-9a-fA-F]+)\s+(?P<size>[0-9a-fA-F]+)\s+(?P<align>[0-9]+)(?P<gap>\s+)(?P<name>.+)$`)

// ParseLLVM extracts sections and subsections from an LLVM lld mapfile.
//
// gap is the literal length of the whitespace run between "Out" and "In" in
// the banner, as measured by Detect. The length of the whitespace run
// between a row's align field and its name field classifies it (whitespace
// at the very start of the row is ignored): 1 means a Section header, 1+3+gap means a
// SubSection, anything else is a symbol row or deeper indentation and is
// skipped. The parser requires the first data row after the banner to be a
// Section; if it isn't (or there is no data at all), it returns no sections.
func ParseLLVM(text string, gap int) []*Section {
	lines := strings.Split(text, "\n")
	if len(lines) > 0 {
		lines = lines[1:] // banner line, already consumed by Detect.
	}

	var sections []*Section
	var current *Section
	seenFirstDataRow := false
	for _, line := range lines {
		line = strings.TrimRight(line, "\r")
		m := llvmRowRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		gapLen := len(m[llvmRowRe.SubexpIndex("gap")])

		if !seenFirstDataRow {
			// The first data row after the banner must be a Section; if it
			// isn't, there is nothing to attach anything to and the parse
			// yields no sections at all.
			seenFirstDataRow = true
			if gapLen != 1 {
				return nil
			}
		}

		switch gapLen {
		case 1:
			if current != nil {
				sections = append(sections, current)
			}
			current = &Section{
				Name:       m[llvmRowRe.SubexpIndex("name")],
				StartVAddr: parseHex(m[llvmRowRe.SubexpIndex("vma")]),
				Size:       parseHex(m[llvmRowRe.SubexpIndex("size")]),
			}
		case 1 + 3 + gap:
			sub := parseLLVMSubSection(m[llvmRowRe.SubexpIndex("name")], parseHex(m[llvmRowRe.SubexpIndex("vma")]), parseHex(m[llvmRowRe.SubexpIndex("size")]))
			if sub != nil {
				current.SubSections = append(current.SubSections, sub)
			}
		default:
			// Symbol row or deeper indentation; skip.
			dbg.Printf("skipping LLVM row with indentation %d: %q", gapLen, line)
		}
	}
	if current != nil {
		sections = append(sections, current)
	}
	return sections
}

// parseLLVMSubSection splits an LLVM subsection name field of the shape
// "filename:(subname)" and strips a trailing "+0xHEX" offset annotation from
// subname, if present. The suffix is only stripped when every character
// after "+0x" is a hex digit, so a name that merely ends in "+0x" followed
// by non-hex text (e.g. "helper+0xZ") is left untouched.
func parseLLVMSubSection(nameField string, vaddr, size uint64) *SubSection {
	nameField = strings.TrimSuffix(nameField, ")")
	filename, subname, ok := strings.Cut(nameField, ":(")
	if !ok {
		return nil
	}
	if plus := strings.LastIndex(subname, "+0x"); plus >= 0 {
		suffix := subname[plus+3:]
		if suffix != "" && isAllHex(suffix) {
			subname = subname[:plus]
		}
	}
	return &SubSection{
		Name:       subname,
		StartVAddr: vaddr,
		Size:       size,
		Filename:   filename,
	}
}

func isAllHex(s string) bool {
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
