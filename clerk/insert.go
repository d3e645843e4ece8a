package clerk

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
)

// InsertEntry writes entry into the file at path so that it starts on line
// lineno, moving that line and everything after it down. A newline is added
// after entry, so an entry that ends with a newline itself, as formatted
// transactions do, is separated from the moved line by an empty line. lineno
// may be one past the last line to append.
//
// The file is replaced atomically through a temporary file in the same
// directory; its permissions are kept.
func InsertEntry(path string, lineno int, entry string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	lines := bytes.SplitAfter(data, []byte("\n"))
	if len(lines) > 0 && len(lines[len(lines)-1]) == 0 {
		lines = lines[:len(lines)-1]
	}
	if lineno < 1 || lineno > len(lines)+1 {
		return fmt.Errorf("line %d is out of range for %s with %d lines", lineno, path, len(lines))
	}

	var buf bytes.Buffer
	buf.Grow(len(data) + len(entry) + 1)
	for _, line := range lines[:lineno-1] {
		buf.Write(line)
	}
	if lineno > 1 && !bytes.HasSuffix(lines[lineno-2], []byte("\n")) {
		buf.WriteByte('\n')
	}
	buf.WriteString(entry)
	buf.WriteByte('\n')
	for _, line := range lines[lineno-1:] {
		buf.Write(line)
	}

	return writeFileAtomic(path, buf.Bytes(), info.Mode().Perm())
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}
