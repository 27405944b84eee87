package untar

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
)

// Options selects which safety checks a Reader relaxes. The zero value
// enables every check.
type Options struct {
	// SkipChecksum disables header checksum verification. The stored
	// checksum field is then never read, so a corrupted checksum alone
	// cannot fail the decode.
	SkipChecksum bool

	// AllowAbsolute permits absolute entry names. Extraction still
	// requires the final path to stay inside the destination directory,
	// so the flag alone cannot place files outside it.
	AllowAbsolute bool
}

// readState tracks where the reader is in its lifecycle.
type readState int

const (
	stateIdle    readState = iota // no pending entry; Next may run
	statePending                  // a decoded entry awaits extraction
	stateEnd                      // end-of-archive marker consumed
	stateFailed                   // an error was recorded; the reader is stuck
)

var zeroBlock [blockSize]byte

// Reader iterates over an in-memory tar archive block by block. Next
// decodes the following entry and Extract materializes the pending one.
// Entries must be extracted in order because each advance depends on the
// previous entry's payload length; after any decode or extraction error
// the reader refuses further work.
type Reader struct {
	data []byte
	opts Options
	log  *slog.Logger

	off   int // next unread block offset; always a multiple of blockSize
	state readState
	hdr   Header
	err   error
}

// NewReader prepares iteration over data, which must hold a complete,
// already decompressed archive. The buffer is only read and may be
// shared. A nil logger falls back to slog.Default().
func NewReader(l *slog.Logger, data []byte, opts Options) *Reader {
	if l == nil {
		l = slog.Default()
	}
	return &Reader{data: data, opts: opts, log: l}
}

// Header returns the most recently decoded entry. It is meaningful only
// after a successful Next and before the matching Extract.
func (r *Reader) Header() Header {
	return r.hdr
}

// Next decodes the next entry header. It returns io.EOF once the
// end-of-archive marker (two all-zero blocks) has been consumed. A
// pending entry must be extracted before Next may be called again; the
// misuse is reported without disturbing the cursor.
func (r *Reader) Next() error {
	switch r.state {
	case statePending:
		return fmt.Errorf("pending entry %q must be extracted before the next one", r.hdr.Name)
	case stateEnd:
		return io.EOF
	case stateFailed:
		return r.err
	}

	b, err := r.readBlock()
	if err != nil {
		return r.fail(err)
	}

	// A leading NUL cannot start an entry name; the block is either the
	// end-of-archive marker or corrupt.
	if b.name()[0] == 0 {
		return r.finish(b)
	}

	if !r.opts.SkipChecksum {
		if err := verifyChecksum(b); err != nil {
			return r.fail(fmt.Errorf("failed to verify header at offset %d: %w", r.off, err))
		}
	}

	hdr, err := decodeHeader(b)
	if err != nil {
		return r.fail(fmt.Errorf("failed to decode header at offset %d: %w", r.off, err))
	}

	r.log.Debug("decoded entry",
		"name", hdr.Name,
		"typeflag", string(hdr.Typeflag),
		"size", hdr.Size,
	)

	r.hdr = hdr
	r.off += blockSize
	r.state = statePending
	return nil
}

// readBlock returns the whole block at the cursor without advancing.
func (r *Reader) readBlock() (block, error) {
	if rest := len(r.data) - r.off; rest < blockSize {
		return nil, fmt.Errorf("%w: %d bytes at offset %d, need a full block", ErrUnexpectedEOF, rest, r.off)
	}
	return block(r.data[r.off : r.off+blockSize]), nil
}

// finish consumes the end-of-archive marker: the zero-led block must be
// all zero and followed by a second all-zero block.
func (r *Reader) finish(first block) error {
	if !bytes.Equal(first, zeroBlock[:]) {
		return r.fail(fmt.Errorf("%w: zero-led block at offset %d is not an end-of-archive marker", ErrInvalidHeader, r.off))
	}
	r.off += blockSize

	second, err := r.readBlock()
	if err != nil {
		return r.fail(err)
	}
	if !bytes.Equal(second, zeroBlock[:]) {
		return r.fail(fmt.Errorf("%w: end-of-archive marker at offset %d is missing its second zero block", ErrInvalidHeader, r.off))
	}
	r.off += blockSize

	r.state = stateEnd
	return io.EOF
}

// fail records err and pins the reader in the failed state. Every later
// Next or Extract returns the same error.
func (r *Reader) fail(err error) error {
	r.state = stateFailed
	r.err = err
	return err
}
