package untar

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Extract materializes the pending entry under destDir and advances the
// reader past its payload. Directories are created with parents as
// needed; regular files are created or truncated and receive exactly the
// declared number of payload bytes. Any other entry type fails with
// ErrUnsupportedType.
//
// A destination file that cannot be opened is logged and skipped rather
// than treated as fatal, so one unwritable path does not abandon the rest
// of an otherwise healthy archive. Every other failure is final.
func (r *Reader) Extract(destDir string) error {
	switch r.state {
	case stateIdle:
		return fmt.Errorf("no pending entry to extract, call Next first")
	case stateEnd:
		return io.EOF
	case stateFailed:
		return r.err
	}

	if err := r.extractEntry(destDir); err != nil {
		return r.fail(err)
	}
	r.state = stateIdle
	return nil
}

func (r *Reader) extractEntry(destDir string) error {
	hdr := r.hdr

	if err := validateName(hdr.Name, r.opts); err != nil {
		return err
	}
	target, err := resolveTarget(destDir, hdr.Name)
	if err != nil {
		return err
	}

	switch {
	case hdr.IsDir():
		if err := os.MkdirAll(target, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", target, err)
		}
		r.log.Debug("created directory", "name", hdr.Name)
	case hdr.isFile():
		if hdr.Size > int64(len(r.data)-r.off) {
			return fmt.Errorf("%w: entry %q declares %d payload bytes, %d remain",
				ErrUnexpectedEOF, hdr.Name, hdr.Size, len(r.data)-r.off)
		}
		if err := r.writeFile(target, hdr); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: typeflag %q for entry %q", ErrUnsupportedType, hdr.Typeflag, hdr.Name)
	}

	return r.advance(hdr.Size)
}

// writeFile creates or truncates target and copies the entry payload into
// it. An open failure is non-fatal: the entry is logged and skipped so
// the remaining archive still extracts.
func (r *Reader) writeFile(target string, hdr Header) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("failed to create parent directory for %q: %w", target, err)
	}

	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		r.log.Warn("skip entry, cannot open destination file",
			"name", hdr.Name,
			"target", target,
			"err", err,
		)
		return nil
	}

	payload := r.data[r.off : r.off+int(hdr.Size)]
	n, err := f.Write(payload)
	if err == nil && n < len(payload) {
		err = io.ErrShortWrite
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("%w: wrote %d of %d bytes to %q: %v", ErrShortWrite, n, hdr.Size, target, err)
	}

	r.log.Debug("extracted file", "name", hdr.Name, "size", hdr.Size)
	return nil
}

// advance moves the cursor past the payload, rounded up to whole blocks.
// Directory entries normally declare a zero size, but the declared value
// is honored either way.
func (r *Reader) advance(size int64) error {
	if size > int64(len(r.data)-r.off) {
		return fmt.Errorf("%w: payload of %d bytes runs past the buffer end", ErrUnexpectedEOF, size)
	}
	blocks := (size + blockSize - 1) / blockSize
	next := int64(r.off) + blocks*blockSize
	if next > int64(len(r.data)) {
		return fmt.Errorf("%w: padding after %d payload bytes runs past the buffer end", ErrUnexpectedEOF, size)
	}
	r.off = int(next)
	return nil
}

// ExtractAll extracts every entry of the archive held in data into
// destDir. It is a convenience loop over NewReader, Next and Extract; the
// stepwise API offers the same checks with per-entry control. The first
// failure aborts extraction, and entries already written stay on disk.
func ExtractAll(l *slog.Logger, data []byte, destDir string, opts Options) error {
	r := NewReader(l, data, opts)

	entries := 0
	for {
		if err := r.Next(); err != nil {
			if err == io.EOF {
				r.log.Info("archive extracted", "entries", entries, "dest", destDir)
				return nil
			}
			return err
		}
		if err := r.Extract(destDir); err != nil {
			return err
		}
		entries++
	}
}
