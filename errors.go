package linkmap

import (
	"github.com/pkg/errors"

	"github.com/mewrev/linkmap/mapfile"
)

// ErrUnsupportedBinaryFormat is returned when the binary could not be
// parsed as ELF or PE, or when the mapfile's dialect and the binary's
// format are incompatible (e.g. an MSVC mapfile paired with an ELF binary).
var ErrUnsupportedBinaryFormat = errors.New("linkmap: binary format not supported, or incompatible with the mapfile's dialect")

// ErrWrongMapfileFormat is returned when the mapfile is structurally
// malformed in a way its dialect does not tolerate. Re-exported from
// package mapfile so callers need only import this package's errors.
var ErrWrongMapfileFormat = mapfile.ErrWrongMapfileFormat
