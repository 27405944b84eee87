package untar

import "errors"

// Sentinel errors reported while decoding and extracting archives. Call
// sites wrap them with positional context; match them with errors.Is.
var (
	// ErrUnexpectedEOF means the buffer ended before a complete header,
	// file payload, or end-of-archive marker.
	ErrUnexpectedEOF = errors.New("unexpected end of archive")

	// ErrInvalidHeader means a header block is malformed: a non-octal byte
	// in a numeric field, or a corrupt end-of-archive marker.
	ErrInvalidHeader = errors.New("invalid tar header")

	// ErrInvalidChecksum means the stored header checksum does not match
	// the sum recomputed over the block.
	ErrInvalidChecksum = errors.New("invalid header checksum")

	// ErrNumericOverflow means an octal field encodes a value that does
	// not fit in an int64.
	ErrNumericOverflow = errors.New("numeric field overflows int64")

	// ErrUnsafePath means an entry name is empty, contains a NUL byte, or
	// is an absolute path while absolute names are not allowed.
	ErrUnsafePath = errors.New("unsafe entry path")

	// ErrPathEscapes means an entry would be written outside the
	// destination directory.
	ErrPathEscapes = errors.New("entry path escapes destination")

	// ErrUnsupportedType means the entry type cannot be materialized:
	// links, devices, FIFOs, and PAX or GNU extension records.
	ErrUnsupportedType = errors.New("unsupported entry type")

	// ErrShortWrite means a destination file received fewer bytes than the
	// entry declared.
	ErrShortWrite = errors.New("short write to destination file")
)
