package mapfile

import (
	"regexp"
	"strings"
)

// llvmHeaderRe matches the LLVM lld column banner, e.g.:
//
//	VMA              LMA     Size Align Out     In      Symbol
//
// The named group "gap" captures the whitespace run between "Out" and "In",
// whose literal length is dialect-critical: it tells the LLVM parser how
// many leading spaces a subsection row carries relative to a section row.
var llvmHeaderRe = regexp.MustCompile(`VMA\s+LMA\s+Size\s+Align\s+Out(?P<gap>\s+)In\s+Symbol`)

// msvcAnchor is the literal banner line that appears near the top of every
// MSVC link mapfile, directly after the linker output name and timestamp.
const msvcAnchor = "Preferred load address is "

// Detection is the result of classifying a mapfile's text.
type Detection struct {
	// Dialect detected.
	Dialect Dialect
	// LLVMGap is the literal length of the whitespace run between "Out" and
	// "In" in the LLVM banner. Only meaningful when Dialect == DialectLLVM.
	LLVMGap int
}

// Detect classifies the given mapfile text as GNU, LLVM or MSVC.
//
// Rules, checked in order:
//  1. A line matching the LLVM "VMA LMA Size Align Out<gap>In Symbol" banner
//     classifies the text as LLVM; the gap's literal width is remembered so
//     the LLVM parser can tell section rows from subsection rows.
//  2. The literal substring "Preferred load address is " classifies the
//     text as MSVC.
//  3. Otherwise, GNU — the GNU format is free-form enough that it is the
//     default.
func Detect(text string) Detection {
	if m := llvmHeaderRe.FindStringSubmatch(text); m != nil {
		gapIdx := llvmHeaderRe.SubexpIndex("gap")
		return Detection{Dialect: DialectLLVM, LLVMGap: len(m[gapIdx])}
	}
	if strings.Contains(text, msvcAnchor) {
		return Detection{Dialect: DialectMSVC}
	}
	return Detection{Dialect: DialectGNU}
}
