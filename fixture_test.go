package untar

import (
	"bytes"
	"fmt"
)

// Test archives are built by hand so every byte stays under the test's
// control. Field layout follows ustar: zero-padded octal with a NUL
// terminator, checksum rendered as six octal digits, NUL, space.

const testMtime = 1700000000

func buildHeader(name string, size int64, typeflag byte) []byte {
	b := make([]byte, blockSize)
	copy(b[0:], name)
	copy(b[100:], "0000644\x00")
	copy(b[108:], "0001750\x00")
	copy(b[116:], "0001750\x00")
	copy(b[124:], fmt.Sprintf("%011o\x00", size))
	copy(b[136:], fmt.Sprintf("%011o\x00", int64(testMtime)))
	b[156] = typeflag
	copy(b[257:], "ustar\x0000")
	copy(b[265:], "tester")
	copy(b[297:], "tester")
	stampChecksum(b)
	return b
}

// stampChecksum recomputes and writes the checksum field. Call it again
// after mutating any header byte.
func stampChecksum(b []byte) {
	copy(b[148:156], "        ")
	var sum int64
	for _, c := range b {
		sum += int64(c)
	}
	copy(b[148:], fmt.Sprintf("%06o\x00 ", sum))
}

// pad returns content padded with NULs to whole blocks.
func pad(content []byte) []byte {
	n := (len(content) + blockSize - 1) / blockSize * blockSize
	padded := make([]byte, n)
	copy(padded, content)
	return padded
}

// archive concatenates parts and closes with the two-block end marker.
func archive(parts ...[]byte) []byte {
	var buf bytes.Buffer
	for _, p := range parts {
		buf.Write(p)
	}
	buf.Write(make([]byte, 2*blockSize))
	return buf.Bytes()
}

// fileEntry renders a header plus padded payload for a regular file.
func fileEntry(name, content string) []byte {
	return append(buildHeader(name, int64(len(content)), TypeReg), pad([]byte(content))...)
}

// dirEntry renders a directory header.
func dirEntry(name string) []byte {
	return buildHeader(name, 0, TypeDir)
}
