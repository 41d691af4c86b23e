package reconcile

import (
	"debug/pe"

	"github.com/mewrev/linkmap/mapfile"
)

// PE fills in StartFileOffset on every SubSection of an MSVC-dialect section
// slice, using f's section table.
//
// MSVC sections are addressed by index (§4.4 of the mapfile parser):
// sections[0] is a reserved sentinel, so sections[i] corresponds to
// f.Sections[i-1]. For every subsection, StartFileOffset is
// PointerToRawData + StartVAddr, where StartVAddr is — per the MSVC
// parser's overloaded use of that field — a section-relative offset, not a
// virtual address.
//
// A Section whose index has no counterpart in f's section table is left
// unresolved; the Section itself never carries a file offset in this
// dialect (PE section headers describe raw-data pointers per section, not
// a per-Section whole-image offset the way ELF's sh_offset does).
func PE(sections []*mapfile.Section, f *pe.File) {
	for i, section := range sections {
		if i == 0 {
			continue // reserved sentinel index.
		}
		idx := i - 1
		if idx >= len(f.Sections) {
			continue
		}
		pointerToRawData := uint64(f.Sections[idx].PointerToRawData)
		for _, sub := range section.SubSections {
			fo := pointerToRawData + sub.StartVAddr
			sub.StartFileOffset = &fo
		}
	}
}
