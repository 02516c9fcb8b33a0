// Package archive files confirmed artifacts under <root>/<year>/.
package archive

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// ErrExists is returned when the destination already holds a file.
var ErrExists = errors.New("archived file already exists")

// Error reports a failed move.
type Error struct {
	Src string
	Dst string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("archiving %s to %s: %v", e.Src, e.Dst, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Archiver moves artifacts into the per-year archive.
type Archiver struct {
	root string
}

// New returns an Archiver rooted at root.
func New(root string) *Archiver {
	return &Archiver{root: root}
}

// Dir returns the archive directory for year.
func (a *Archiver) Dir(year int) string {
	return filepath.Join(a.root, strconv.Itoa(year))
}

// Move relocates src into the archive for year and returns the new path.
// An existing destination is replaced only when replace is true.
func (a *Archiver) Move(src string, year int, replace bool) (string, error) {
	dir := a.Dir(year)
	dst := filepath.Join(dir, filepath.Base(src))

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &Error{Src: src, Dst: dst, Err: err}
	}
	if !replace {
		if _, err := os.Stat(dst); err == nil {
			return "", &Error{Src: src, Dst: dst, Err: ErrExists}
		}
	}
	if err := os.Rename(src, dst); err != nil {
		return "", &Error{Src: src, Dst: dst, Err: err}
	}
	return dst, nil
}

// Restore moves an archived file back to its original location.
func (a *Archiver) Restore(dst, src string) error {
	if err := os.Rename(dst, src); err != nil {
		return &Error{Src: dst, Dst: src, Err: err}
	}
	return nil
}
