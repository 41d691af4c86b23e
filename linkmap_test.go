package linkmap

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildMinimalELF assembles the smallest ELF64 little-endian image
// debug/elf will parse: a NULL section, a ".text" section holding size
// bytes at the given file offset/virtual address, and a ".shstrtab"
// carrying both names.
func buildMinimalELF(t *testing.T, textOffset, textAddr, textSize uint64) []byte {
	t.Helper()

	const ehdrSize = 64
	const shdrSize = 64

	textData := make([]byte, textSize)
	shstrtab := append([]byte{0}, []byte(".text\x00.shstrtab\x00")...)

	shOff := textOffset + uint64(len(textData)) + uint64(len(shstrtab))
	// Round the section header table start up so it never overlaps data.
	if pad := shOff % 8; pad != 0 {
		shOff += 8 - pad
	}

	var buf bytes.Buffer
	var ident [elf.EI_NIDENT]byte
	copy(ident[:], elf.ELFMAG)
	ident[elf.EI_CLASS] = byte(elf.ELFCLASS64)
	ident[elf.EI_DATA] = byte(elf.ELFDATA2LSB)
	ident[elf.EI_VERSION] = byte(elf.EV_CURRENT)

	hdr := elf.Header64{
		Ident:     ident,
		Type:      uint16(elf.ET_EXEC),
		Machine:   uint16(elf.EM_X86_64),
		Version:   uint32(elf.EV_CURRENT),
		Shoff:     shOff,
		Ehsize:    ehdrSize,
		Shentsize: shdrSize,
		Shnum:     3,
		Shstrndx:  2,
	}
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, hdr))

	buf.Write(make([]byte, int(textOffset)-buf.Len())) // pad up to textOffset.
	buf.Write(textData)
	buf.Write(shstrtab)
	buf.Write(make([]byte, int(shOff)-buf.Len())) // pad up to the section header table.

	sections := []elf.Section64{
		{}, // SHT_NULL, reserved.
		{
			Name: 1, Type: uint32(elf.SHT_PROGBITS), Addr: textAddr,
			Off: textOffset, Size: textSize, Addralign: 1,
		},
		{
			Name: 7, Type: uint32(elf.SHT_STRTAB),
			Off: textOffset + uint64(len(textData)), Size: uint64(len(shstrtab)), Addralign: 1,
		},
	}
	for _, sh := range sections {
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, sh))
	}
	return buf.Bytes()
}

func TestBuildGNUMinimal(t *testing.T) {
	mapfileText := `
.text           0x00400100      0x20
 .text.foo      0x00400100      0x10  obj/a.o
 .text.bar      0x00400110      0x10  obj/b.o
`
	binary := buildMinimalELF(t, 0x1000, 0x00400100, 0x20)

	ix, err := Build(mapfileText, binary)
	require.NoError(t, err)

	hits := ix.QueryPoint(0x100f)
	require.Len(t, hits, 1)
	assert.Equal(t, "obj/a.o", hits[0].Value)
	assert.Equal(t, uint64(0x1000), hits[0].Start)
	assert.Equal(t, uint64(0x1010), hits[0].End)

	assert.Empty(t, ix.QueryPoint(0x2000))
}

func TestBuildGNUQueryRangeSpansBothSubsections(t *testing.T) {
	mapfileText := `
.text           0x00400100      0x20
 .text.foo      0x00400100      0x10  obj/a.o
 .text.bar      0x00400110      0x10  obj/b.o
`
	binary := buildMinimalELF(t, 0x1000, 0x00400100, 0x20)

	ix, err := Build(mapfileText, binary)
	require.NoError(t, err)

	hits := ix.QueryRange(0x1000, 0x1020)
	assert.Len(t, hits, 2)
}

func TestBuildRejectsGarbageBinary(t *testing.T) {
	mapfileText := ".text 0x1000 0x20\n .text.foo 0x1000 0x10 obj/a.o\n"
	_, err := Build(mapfileText, []byte("not a binary at all"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedBinaryFormat)
}

func TestBuildMSVCWithElfBinaryRejected(t *testing.T) {
	mapfileText := "Timestamp is 0 (x)\n\nPreferred load address is 00400000\n\n Static symbols\n\n" +
		" 0001:00000010       ?foo@@YAXXZ        000000000040100f f a.obj\n"
	binary := buildMinimalELF(t, 0x1000, 0x00400100, 0x20)

	_, err := Build(mapfileText, binary)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedBinaryFormat)
}

func TestBuildEmptyGNUMapfileYieldsEmptyIndex(t *testing.T) {
	binary := buildMinimalELF(t, 0x1000, 0x00400100, 0x20)

	ix, err := Build("no sections here at all\n", binary)
	require.NoError(t, err)
	assert.Empty(t, ix.QueryRange(0, 1<<32))
}
