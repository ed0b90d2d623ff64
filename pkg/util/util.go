// Package util contains some methods that can be used by every other package.
package util

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml"
)

// Write creates the output file of a workflow. It writes the date, encodes
// each settings structure in TOML as comments and returns the file for the
// results to be appended. It must be closed by the caller.
func Write(path string, settings ...interface{}) (*os.File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(f, "# Date: %v\n", time.Now().Format("2006-01-02 15:04:05 -0700 MST"))

	for _, s := range settings {
		b, err := toml.Marshal(s)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("Marshal: %w", err)
		}
		if len(b) == 0 {
			continue
		}
		for _, line := range strings.Split(strings.TrimRight(string(b), "\n"), "\n") {
			fmt.Fprintf(f, "# %s\n", line)
		}
	}

	f.Write([]byte{'\n'})
	return f, nil
}
