package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/spf13/cobra"
	"github.com/testlabtools/untar"
	"github.com/testlabtools/untar/zstd"
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract ARCHIVE",
	Short: "Extract a (compressed) tar archive into a directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		setup := setupCommand(cmd, args)

		o := untar.Options{
			SkipChecksum:  cmd.Flag("skip-checksum").Value.String() == "true",
			AllowAbsolute: cmd.Flag("allow-absolute").Value.String() == "true",
		}
		dest := cmd.Flag("dest").Value.String()

		return extract(setup, args[0], dest, o)
	},
}

func init() {
	Root.AddCommand(extractCmd)

	extractCmd.Flags().StringP("dest", "C", ".", "directory to extract into")
	extractCmd.Flags().Bool("skip-checksum", false, "skip header checksum verification")
	extractCmd.Flags().Bool("allow-absolute", false, "allow absolute entry paths inside the destination")
}

func extract(s setup, archive, dest string, o untar.Options) error {
	raw, err := os.ReadFile(archive)
	if err != nil {
		return fmt.Errorf("failed to read archive %q: %w", archive, err)
	}

	data, err := decompress(raw)
	if err != nil {
		return fmt.Errorf("failed to decompress archive %q: %w", archive, err)
	}

	s.log.Debug("archive loaded",
		"file", archive,
		"rawSize", len(raw),
		"size", len(data),
	)

	if err := untar.ExtractAll(s.log, data, dest, o); err != nil {
		return fmt.Errorf("failed to extract archive %q: %w", archive, err)
	}

	return nil
}

var (
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	gzipMagic = []byte{0x1f, 0x8b}
)

// decompress unwraps zstd or gzip input, detected by magic bytes. Plain
// tar data passes through untouched.
func decompress(raw []byte) ([]byte, error) {
	switch {
	case bytes.HasPrefix(raw, zstdMagic):
		return zstd.Decompress(raw)
	case bytes.HasPrefix(raw, gzipMagic):
		zr, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer zr.Close()

		data, err := io.ReadAll(zr)
		if err != nil {
			return nil, fmt.Errorf("failed to read gzip content: %w", err)
		}
		return data, nil
	}
	return raw, nil
}
