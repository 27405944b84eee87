package untar

import (
	"fmt"
	"math"
	"time"
)

// blockSize is the fixed tar block length. Headers occupy one block and
// file payloads are padded to whole blocks.
const blockSize = 512

// Entry type flags as stored in the header typeflag field.
const (
	TypeReg     byte = '0'    // regular file
	TypeRegA    byte = '\x00' // regular file, pre-POSIX archives
	TypeLink    byte = '1'    // hard link
	TypeSymlink byte = '2'    // symbolic link
	TypeChar    byte = '3'    // character device
	TypeBlock   byte = '4'    // block device
	TypeDir     byte = '5'    // directory
	TypeFifo    byte = '6'    // FIFO
	TypeCont    byte = '7'    // reserved

	TypeXHeader       byte = 'x' // PAX extended header
	TypeXGlobalHeader byte = 'g' // PAX global extended header
	TypeGNULongName   byte = 'L' // GNU long name record
	TypeGNULongLink   byte = 'K' // GNU long link record
	TypeGNUSparse     byte = 'S' // GNU sparse file
)

// block is a read-only view of one 512-byte header block. The accessors
// return subslices of the archive buffer at the ustar field offsets;
// nothing is copied.
type block []byte

func (b block) name() []byte     { return b[0:100] }
func (b block) mode() []byte     { return b[100:108] }
func (b block) uid() []byte      { return b[108:116] }
func (b block) gid() []byte      { return b[116:124] }
func (b block) size() []byte     { return b[124:136] }
func (b block) mtime() []byte    { return b[136:148] }
func (b block) chksum() []byte   { return b[148:156] }
func (b block) typeflag() byte   { return b[156] }
func (b block) linkname() []byte { return b[157:257] }
func (b block) magic() []byte    { return b[257:263] }
func (b block) version() []byte  { return b[263:265] }
func (b block) uname() []byte    { return b[265:297] }
func (b block) gname() []byte    { return b[297:329] }
func (b block) devmajor() []byte { return b[329:337] }
func (b block) devminor() []byte { return b[337:345] }
func (b block) prefix() []byte   { return b[345:500] }

// Header is the decoded form of one entry header. Text fields are cut at
// the first NUL; the name joins the ustar prefix field when present.
type Header struct {
	Name     string
	Mode     int64
	Uid      int
	Gid      int
	Size     int64
	ModTime  time.Time
	Typeflag byte
	Linkname string
	Uname    string
	Gname    string
	Devmajor int64
	Devminor int64
}

// IsDir reports whether the entry is a directory.
func (h Header) IsDir() bool {
	return h.Typeflag == TypeDir
}

// isFile reports whether the entry is a regular file. Both the POSIX tag
// and the pre-POSIX NUL tag count.
func (h Header) isFile() bool {
	return h.Typeflag == TypeReg || h.Typeflag == TypeRegA
}

// decodeHeader decodes one header block. Numeric fields are parsed with
// overflow checks; the checksum field is left alone and only inspected by
// verifyChecksum.
func decodeHeader(b block) (Header, error) {
	h := Header{
		Name:     text(b.name()),
		Typeflag: b.typeflag(),
		Linkname: text(b.linkname()),
		Uname:    text(b.uname()),
		Gname:    text(b.gname()),
	}
	if prefix := text(b.prefix()); prefix != "" {
		h.Name = prefix + "/" + h.Name
	}

	numeric := []struct {
		field string
		raw   []byte
		dst   *int64
	}{
		{"mode", b.mode(), &h.Mode},
		{"size", b.size(), &h.Size},
		{"devmajor", b.devmajor(), &h.Devmajor},
		{"devminor", b.devminor(), &h.Devminor},
	}
	for _, n := range numeric {
		v, err := octal(n.raw)
		if err != nil {
			return Header{}, fmt.Errorf("failed to parse %s field: %w", n.field, err)
		}
		*n.dst = v
	}

	uid, err := octal(b.uid())
	if err != nil {
		return Header{}, fmt.Errorf("failed to parse uid field: %w", err)
	}
	h.Uid = int(uid)

	gid, err := octal(b.gid())
	if err != nil {
		return Header{}, fmt.Errorf("failed to parse gid field: %w", err)
	}
	h.Gid = int(gid)

	mtime, err := octal(b.mtime())
	if err != nil {
		return Header{}, fmt.Errorf("failed to parse mtime field: %w", err)
	}
	h.ModTime = time.Unix(mtime, 0)

	return h, nil
}

// text cuts a NUL-padded field at the first NUL byte. Fields that fill
// their whole width carry no terminator.
func text(field []byte) string {
	for i, c := range field {
		if c == 0 {
			field = field[:i]
			break
		}
	}
	return string(field)
}

// octal parses an ASCII octal field. Parsing stops at the first NUL or
// space; any other byte outside '0'..'7' fails the decode. Accumulation is
// checked before each digit so the result can never wrap an int64.
func octal(field []byte) (int64, error) {
	var v int64
	for _, c := range field {
		if c == 0 || c == ' ' {
			break
		}
		if c < '0' || c > '7' {
			return 0, fmt.Errorf("%w: byte %q in octal field", ErrInvalidHeader, c)
		}
		d := int64(c - '0')
		if v > (math.MaxInt64-d)/8 {
			return 0, ErrNumericOverflow
		}
		v = v*8 + d
	}
	return v, nil
}

// checksum recomputes the POSIX header checksum: every block byte summed
// as an unsigned value, with the checksum field itself read as eight
// ASCII spaces.
func checksum(b block) int64 {
	var sum int64
	for i, c := range b[:blockSize] {
		if i >= 148 && i < 156 {
			c = ' '
		}
		sum += int64(c)
	}
	return sum
}

// verifyChecksum compares the stored checksum field against the sum
// recomputed over the block.
func verifyChecksum(b block) error {
	want, err := octal(b.chksum())
	if err != nil {
		return fmt.Errorf("failed to parse checksum field: %w", err)
	}
	if got := checksum(b); got != want {
		return fmt.Errorf("%w: block sums to %#o, header records %#o", ErrInvalidChecksum, got, want)
	}
	return nil
}
