package untar

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateName(t *testing.T) {
	var tests = []struct {
		name  string
		entry string
		opts  Options
		err   error
	}{
		{"plain file", "file.txt", Options{}, nil},
		{"nested file", "a/b/c.txt", Options{}, nil},
		{"trailing slash", "a/b/", Options{}, nil},
		{"dot", ".", Options{}, nil},
		{"dots in names are fine", "..a/b..c/d..", Options{}, nil},
		{"hidden file", ".config", Options{}, nil},

		{"empty", "", Options{}, ErrUnsafePath},
		{"embedded nul", "a\x00b", Options{}, ErrUnsafePath},
		{"absolute", "/etc/passwd", Options{}, ErrUnsafePath},
		{"absolute backslash", `\windows\system32`, Options{}, ErrUnsafePath},
		{"drive letter", `C:\windows`, Options{}, ErrUnsafePath},
		{"unc path", `\\server\share`, Options{}, ErrUnsafePath},
		{"absolute allowed", "/etc/passwd", Options{AllowAbsolute: true}, nil},

		{"bare dotdot", "..", Options{}, ErrPathEscapes},
		{"leading dotdot", "../x", Options{}, ErrPathEscapes},
		{"trailing dotdot", "a/..", Options{}, ErrPathEscapes},
		{"inner dotdot", "a/../b", Options{}, ErrPathEscapes},
		{"backslash dotdot", `a\..\b`, Options{}, ErrPathEscapes},
		{"dotdot with trailing slash", "a/../", Options{}, ErrPathEscapes},
		{"dotdot survives allow-absolute", "../x", Options{AllowAbsolute: true}, ErrPathEscapes},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert := assert.New(t)

			err := validateName(tt.entry, tt.opts)
			if tt.err != nil {
				assert.ErrorIs(err, tt.err)
				return
			}
			assert.NoError(err)
		})
	}
}

func TestResolveTarget(t *testing.T) {
	root := filepath.Join("tmp", "dest")

	var tests = []struct {
		name  string
		entry string
		want  string
		err   error
	}{
		{"plain", "a.txt", filepath.Join(root, "a.txt"), nil},
		{"nested", "a/b.txt", filepath.Join(root, "a", "b.txt"), nil},
		{"dot resolves to root", ".", root, nil},
		{"inner dot segments collapse", "a/./b.txt", filepath.Join(root, "a", "b.txt"), nil},
		{"sibling prefix is outside", "../desthere", "", ErrPathEscapes},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert := assert.New(t)

			got, err := resolveTarget(root, tt.entry)
			if tt.err != nil {
				assert.ErrorIs(err, tt.err)
				return
			}
			assert.NoError(err)
			assert.Equal(tt.want, got)
		})
	}
}

func TestResolveTargetWorkingDir(t *testing.T) {
	assert := assert.New(t)

	// "." is the extract command's default destination. Joining an entry
	// onto it cleans away the "./" prefix, and the bare result must still
	// count as inside.
	got, err := resolveTarget(".", "a.txt")
	assert.NoError(err)
	assert.Equal("a.txt", got)

	got, err = resolveTarget(".", "d/f.txt")
	assert.NoError(err)
	assert.Equal(filepath.Join("d", "f.txt"), got)

	_, err = resolveTarget(".", "..")
	assert.ErrorIs(err, ErrPathEscapes)
}

func TestInsideRoot(t *testing.T) {
	assert := assert.New(t)

	root := filepath.Clean(filepath.Join("tmp", "x"))

	assert.NoError(insideRoot(root, root))
	assert.NoError(insideRoot(root, filepath.Join(root, "a")))
	assert.ErrorIs(insideRoot(root, root+"y"), ErrPathEscapes)
	assert.ErrorIs(insideRoot(root, filepath.Clean("/etc")), ErrPathEscapes)

	assert.NoError(insideRoot(".", "."))
	assert.NoError(insideRoot(".", "a"))
	assert.NoError(insideRoot(".", filepath.Join("a", "b")))
	assert.ErrorIs(insideRoot(".", ".."), ErrPathEscapes)
	assert.ErrorIs(insideRoot(".", filepath.Join("..", "y")), ErrPathEscapes)
}

func FuzzValidateName(f *testing.F) {
	for _, seed := range []string{
		"file.txt",
		"a/b/c",
		"",
		"..",
		"../../etc/passwd",
		"a/../b",
		"/abs",
		`C:\x`,
		"a\x00b",
		"..a",
		"a..",
	} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, name string) {
		err := validateName(name, Options{})
		if err != nil {
			if !errors.Is(err, ErrUnsafePath) && !errors.Is(err, ErrPathEscapes) {
				t.Errorf("unexpected error kind for %q: %v", name, err)
			}
			return
		}

		// Whatever validation accepts must never contain a ".." component
		// once separators are normalized.
		for _, part := range strings.Split(strings.ReplaceAll(name, `\`, "/"), "/") {
			if part == ".." {
				t.Errorf("accepted name %q with a parent-directory component", name)
			}
		}
	})
}
