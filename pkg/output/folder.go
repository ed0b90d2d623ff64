package output

import (
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// OutputDir is the folder where RASPA writes one System_i folder per
// system.
const OutputDir = "Output"

// SystemDir returns the folder of the i-th system under root.
func SystemDir(root string, i int) string {
	return path.Join(root, fmt.Sprintf("System_%d", i))
}

// CheckFinished tells whether the report shows a complete run.
func CheckFinished(report string) error {
	if !strings.Contains(report, MarkerStarted) {
		return ErrNotStarted
	}
	if !strings.Contains(report, MarkerFinished) {
		return ErrTimeout
	}
	return nil
}

// ParseFolder parses the report of every system of a retrieved folder.
// order lists the system names; the report of the i-th system is the file of
// Output/System_i. Reports ending with .gz are decompressed.
func ParseFolder(fsys fs.FS, order []string, ncomponents int) (Results, []Warning, error) {
	res := make(Results, len(order))
	var warnings []Warning
	for i, name := range order {
		report, err := ReadReport(fsys, SystemDir(OutputDir, i))
		if err != nil {
			return nil, nil, fmt.Errorf("ReadReport: %w", err)
		}
		if err := CheckFinished(report); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", name, err)
		}

		r, w, err := Parse(strings.NewReader(report), name, ncomponents)
		if err != nil {
			return nil, nil, fmt.Errorf("Parse %s: %w", name, err)
		}
		res[name] = r
		warnings = append(warnings, w...)
	}
	return res, warnings, nil
}

// ReadReport returns the content of the report written in dir. RASPA writes a
// single file per system folder; if there are several, the last one in
// lexical order is read.
func ReadReport(fsys fs.FS, dir string) (string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return "", fmt.Errorf("%s: %w: %v", dir, ErrNoOutputFile, err)
	}

	var file string
	for _, e := range entries {
		if !e.IsDir() {
			file = path.Join(dir, e.Name())
		}
	}
	if file == "" {
		return "", fmt.Errorf("%s: %w", dir, ErrNoOutputFile)
	}

	f, err := fsys.Open(file)
	if err != nil {
		return "", fmt.Errorf("Open: %w", err)
	}
	defer f.Close()

	b, err := ReadAll(f, file)
	if err != nil {
		return "", fmt.Errorf("ReadAll: %w", err)
	}
	return string(b), nil
}

// ReadAll reads r, decompressing it when name ends with .gz.
func ReadAll(r io.Reader, name string) ([]byte, error) {
	if !strings.HasSuffix(name, ".gz") {
		return io.ReadAll(r)
	}
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("gzip.NewReader: %w", err)
	}
	defer zr.Close()
	return io.ReadAll(zr)
}
