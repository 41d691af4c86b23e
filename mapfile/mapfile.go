// Package mapfile parses linker map files produced by GNU ld, LLVM lld and
// MSVC link, extracting the section/subsection layout that describes which
// input object contributed which bytes of the linked output.
package mapfile

import (
	"log"
	"os"

	"github.com/mewkiz/pkg/term"
	"github.com/pkg/errors"
)

var (
	// dbg is a logger with the "linkmap:" prefix which logs debug messages to
	// standard error.
	dbg = log.New(os.Stderr, term.CyanBold("linkmap:")+" ", 0)
	// warn is a logger with the "linkmap:" prefix which logs warning messages
	// to standard error.
	warn = log.New(os.Stderr, term.RedBold("linkmap:")+" ", 0)
)

// ErrWrongMapfileFormat is returned when a structurally required anchor or
// numeric field is missing or malformed in a dialect that does not tolerate
// partial input (currently only MSVC; GNU and LLVM skip unrecognized lines
// instead of failing).
var ErrWrongMapfileFormat = errors.New("mapfile: input does not conform to the expected mapfile format")

// Section is a top-level linker output section, e.g. ".text" or ".rdata".
//
// Name is empty only for MSVC sections, which are addressed by index rather
// than by name (see Dialect MSVC and the msvc.go parser).
type Section struct {
	// Name of the section.
	Name string
	// StartVAddr is the absolute virtual address of the section (GNU, LLVM).
	// Unused (zero) for MSVC.
	StartVAddr uint64
	// StartFileOffset is filled in by a reconciler; nil until then, and left
	// nil permanently if the section could not be matched in the binary.
	StartFileOffset *uint64
	// Size of the section in bytes.
	Size uint64
	// SubSections contributed to this section, in mapfile encounter order.
	SubSections []*SubSection
}

// SubSection is the set of bytes one input object/archive contributed to a
// parent Section.
type SubSection struct {
	// Name of the subsection; empty for MSVC.
	Name string
	// StartVAddr is dialect-dependent: an absolute virtual address for GNU
	// and LLVM, but a section-relative offset for MSVC (see §4.4/§9 of the
	// originating design notes — the field is deliberately overloaded there).
	StartVAddr uint64
	// StartFileOffset is filled in by a reconciler.
	StartFileOffset *uint64
	// Size of the subsection's contribution in bytes.
	Size uint64
	// Filename of the originating object/archive, possibly including an
	// archive-member suffix such as "libfoo.a(bar.o)".
	Filename string
}

// Dialect identifies which linker produced a map file.
type Dialect uint8

// Supported dialects.
const (
	// DialectGNU is the GNU ld mapfile format.
	DialectGNU Dialect = iota
	// DialectLLVM is the LLVM lld mapfile format.
	DialectLLVM
	// DialectMSVC is the MSVC link mapfile format.
	DialectMSVC
)

func (d Dialect) String() string {
	switch d {
	case DialectGNU:
		return "GNU"
	case DialectLLVM:
		return "LLVM"
	case DialectMSVC:
		return "MSVC"
	default:
		return "unknown"
	}
}
