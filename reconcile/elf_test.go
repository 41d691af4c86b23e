package reconcile

import (
	"debug/elf"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mewrev/linkmap/mapfile"
)

func TestELFMatchedSection(t *testing.T) {
	sections := []*mapfile.Section{
		{
			Name:       ".text",
			StartVAddr: 0x00400100,
			Size:       0x20,
			SubSections: []*mapfile.SubSection{
				{Name: ".text.foo", StartVAddr: 0x00400100, Size: 0x10, Filename: "obj/a.o"},
				{Name: ".text.bar", StartVAddr: 0x00400110, Size: 0x10, Filename: "obj/b.o"},
			},
		},
	}
	f := &elf.File{
		Sections: []*elf.Section{
			{SectionHeader: elf.SectionHeader{Name: ".text", Offset: 0x1000, Addr: 0x00400100, Size: 0x20}},
		},
	}

	ELF(sections, f)

	require.NotNil(t, sections[0].StartFileOffset)
	assert.Equal(t, uint64(0x1000), *sections[0].StartFileOffset)
	require.NotNil(t, sections[0].SubSections[0].StartFileOffset)
	assert.Equal(t, uint64(0x1000), *sections[0].SubSections[0].StartFileOffset)
	require.NotNil(t, sections[0].SubSections[1].StartFileOffset)
	assert.Equal(t, uint64(0x1010), *sections[0].SubSections[1].StartFileOffset)
}

func TestELFUnmatchedSectionLeftUnresolved(t *testing.T) {
	sections := []*mapfile.Section{
		{
			Name: ".missing",
			SubSections: []*mapfile.SubSection{
				{Name: ".missing.sub", Size: 4, Filename: "obj/a.o"},
			},
		},
	}
	f := &elf.File{Sections: []*elf.Section{
		{SectionHeader: elf.SectionHeader{Name: ".text", Offset: 0x1000}},
	}}

	ELF(sections, f)

	assert.Nil(t, sections[0].StartFileOffset)
	assert.Nil(t, sections[0].SubSections[0].StartFileOffset)
}
