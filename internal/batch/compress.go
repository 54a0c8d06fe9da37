package batch

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/klauspost/pgzip"
)

// openLog opens a log file, decompressing gzip (.gz) and zstd (.zst)
// exports by extension. The returned function closes the decoder and the file.
func openLog(path string) (io.Reader, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		gr, err := pgzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, nil, fmt.Errorf("gzip: %w", err)
		}
		return gr, func() { gr.Close(); f.Close() }, nil
	case ".zst":
		zr, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, nil, fmt.Errorf("zstd: %w", err)
		}
		return zr, func() { zr.Close(); f.Close() }, nil
	default:
		return f, func() { f.Close() }, nil
	}
}
