package batch

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

// WriteHeights writes one decimal height per line.
func WriteHeights(w io.Writer, heights []int) error {
	bw := bufio.NewWriter(w)
	buf := make([]byte, 0, 20)
	for _, h := range heights {
		buf = strconv.AppendInt(buf[:0], int64(h), 10)
		buf = append(buf, '\n')
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// writeHeightsFile writes heights to a temporary file next to path and
// renames it into place, so path is either untouched or complete.
func writeHeightsFile(path string, heights []int) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = WriteHeights(tmp, heights); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Chmod(0644); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
