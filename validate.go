package untar

import (
	"fmt"
	"path/filepath"
	"strings"
)

// validateName rejects entry names that must never reach the filesystem:
// empty names, names with embedded NUL bytes, absolute paths (unless opts
// allows them), and names with a parent-directory component. This is a
// pure string check; resolveTarget re-checks containment on the cleaned
// result, and that second check runs regardless of opts.
func validateName(name string, opts Options) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrUnsafePath)
	}
	if strings.IndexByte(name, 0) >= 0 {
		return fmt.Errorf("%w: name %q contains a NUL byte", ErrUnsafePath, name)
	}
	if isAbs(name) && !opts.AllowAbsolute {
		return fmt.Errorf("%w: absolute name %q", ErrUnsafePath, name)
	}

	// Inspect every path component from the end for a literal "..".
	// Backslash counts as a separator so Windows-style names cannot hide
	// one.
	rest := name
	for rest != "" {
		i := strings.LastIndexAny(rest, `/\`)
		if rest[i+1:] == ".." {
			return fmt.Errorf("%w: name %q has a parent-directory component", ErrPathEscapes, name)
		}
		if i < 0 {
			break
		}
		rest = rest[:i]
	}
	return nil
}

// isAbs recognizes absolute names on any platform: rooted slash or
// backslash paths, Windows drive letters, and UNC prefixes. Entry names
// written on one platform are routinely extracted on another, so this is
// deliberately stricter than filepath.IsAbs.
func isAbs(name string) bool {
	if filepath.IsAbs(name) {
		return true
	}
	if strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) {
		return true
	}
	if len(name) >= 2 && name[1] == ':' {
		c := name[0]
		if ('A' <= c && c <= 'Z') || ('a' <= c && c <= 'z') {
			return true
		}
	}
	return false
}

// insideRoot verifies that target equals root or sits beneath it. Both
// arguments must already be cleaned; root may be relative, "." included.
// The check is lexical: symlinks on disk are not resolved, so the answer
// is about the path string only.
func insideRoot(root, target string) error {
	rel, err := filepath.Rel(root, target)
	if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil
	}
	return fmt.Errorf("%w: %q is outside %q", ErrPathEscapes, target, root)
}

// resolveTarget turns a validated entry name into the on-disk path and
// re-checks containment after joining and cleaning, which collapse dot
// segments and redundant separators the raw name does not show. Absolute
// names (reachable only with AllowAbsolute) are used as given rather than
// joined, so they pass only when they already point inside the
// destination.
func resolveTarget(destDir, name string) (string, error) {
	root := filepath.Clean(destDir)

	var target string
	if isAbs(name) {
		target = filepath.Clean(filepath.FromSlash(name))
	} else {
		target = filepath.Join(root, filepath.FromSlash(name))
	}

	if err := insideRoot(root, target); err != nil {
		return "", err
	}
	return target, nil
}
