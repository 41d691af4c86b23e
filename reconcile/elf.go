// Package reconcile translates the virtual-address or section-relative
// information a mapfile parser extracts into absolute file offsets, by
// cross-referencing the linked binary's own section table.
package reconcile

import (
	"debug/elf"

	"github.com/mewrev/linkmap/mapfile"
)

// ELF fills in StartFileOffset on every Section (and its SubSections) that
// can be matched by name against f's section headers.
//
// A Section whose name has no counterpart in f is left without a file
// offset; its subsections are not visited and so never acquire one either,
// per spec: the reconciler does not fail on missing sections, affected
// subsections simply do not appear in the index.
//
// For a matched Section, every SubSection's file offset is its virtual
// address displacement from the Section's own start, added to the
// Section's file offset — sections in an ELF file preserve their internal
// virtual-address layout.
func ELF(sections []*mapfile.Section, f *elf.File) {
	offsetByName := make(map[string]uint64, len(f.Sections))
	for _, sh := range f.Sections {
		offsetByName[sh.Name] = sh.Offset
	}

	for _, section := range sections {
		fileOffset, ok := offsetByName[section.Name]
		if !ok {
			continue
		}
		fo := fileOffset
		section.StartFileOffset = &fo
		for _, sub := range section.SubSections {
			subOffset := fileOffset + (sub.StartVAddr - section.StartVAddr)
			sub.StartFileOffset = &subOffset
		}
	}
}
