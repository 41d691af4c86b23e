package mapfile

import (
	"regexp"
	"strconv"
	"strings"
)

// gnuSectionRe matches a GNU ld section line, flush-left:
//
//	.text           0x00400100      0x20
var gnuSectionRe = regexp.MustCompile(`(?m)^(?P<name>\.[^\s]+)\s+0x(?P<vaddr>[0-9a-fA-F]+)\s+0x(?P<size>[0-9a-fA-F]+)`)

// gnuSubSectionRe matches a GNU ld subsection line. The leading single space
// is what syntactically distinguishes it from a section line.
//
//	 .text.foo      0x00400100      0x10  obj/a.o
var gnuSubSectionRe = regexp.MustCompile(`(?m)^ (?P<name>\.[^\s]+)\s+0x(?P<vaddr>[0-9a-fA-F]+)[ \t]+0x(?P<size>[0-9a-fA-F]+)[ \t]+(?P<file>[^\r\n]+)`)

// ParseGNU extracts sections and subsections from a GNU ld mapfile.
//
// Extraction is a two-pass scan over the same text: all section matches are
// collected with their byte offset in the input, then all subsection matches
// are collected the same way, and each subsection is attributed to the
// section whose match offset is the greatest offset strictly less than the
// subsection's own offset. Subsections appearing before the first section
// header are dropped. Lines that match neither shape are silently skipped —
// GNU mapfiles carry plenty of informational lines this parser ignores.
func ParseGNU(text string) []*Section {
	sectionMatches := gnuSectionRe.FindAllStringSubmatchIndex(text, -1)
	sections := make([]*Section, 0, len(sectionMatches))
	offsets := make([]int, 0, len(sectionMatches))
	for _, m := range sectionMatches {
		sections = append(sections, &Section{
			Name:       submatch(text, m, gnuSectionRe, "name"),
			StartVAddr: parseHex(submatch(text, m, gnuSectionRe, "vaddr")),
			Size:       parseHex(submatch(text, m, gnuSectionRe, "size")),
		})
		offsets = append(offsets, m[0])
	}

	subMatches := gnuSubSectionRe.FindAllStringSubmatchIndex(text, -1)
	for _, m := range subMatches {
		sub := &SubSection{
			Name:       submatch(text, m, gnuSubSectionRe, "name"),
			StartVAddr: parseHex(submatch(text, m, gnuSubSectionRe, "vaddr")),
			Size:       parseHex(submatch(text, m, gnuSubSectionRe, "size")),
			Filename:   strings.TrimRight(submatch(text, m, gnuSubSectionRe, "file"), "\r\n"),
		}
		idx := attributingSection(offsets, m[0])
		if idx < 0 {
			dbg.Printf("dropping subsection %q: no preceding section header", sub.Name)
			continue
		}
		sections[idx].SubSections = append(sections[idx].SubSections, sub)
	}
	return sections
}

// attributingSection returns the index of the last section whose match
// offset is strictly less than ssOffset, or -1 if none qualifies.
func attributingSection(sectionOffsets []int, ssOffset int) int {
	best := -1
	for i, off := range sectionOffsets {
		if off < ssOffset {
			best = i
		} else {
			break
		}
	}
	return best
}

// submatch returns the text captured by the named group in a
// FindAllStringSubmatchIndex match, or "" if the group did not participate.
func submatch(text string, m []int, re *regexp.Regexp, name string) string {
	i := re.SubexpIndex(name)
	if i < 0 || 2*i+1 >= len(m) || m[2*i] < 0 {
		return ""
	}
	return text[m[2*i]:m[2*i+1]]
}

// parseHex parses a hexadecimal field captured by a mapfile regex. A parse
// failure here is a programmer error against the regex contract — the regex
// only captures digit runs — so it is treated as such rather than surfaced
// as a caller-visible error.
func parseHex(s string) uint64 {
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		panic("mapfile: regex matched non-hex digits: " + s)
	}
	return v
}
