package stream

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Opener locates and opens the resources named in connection strings.
type Opener interface {
	// Exists reports whether source names an openable resource. A missing
	// resource is (false, nil); an error means existence could not be
	// determined.
	Exists(ctx context.Context, source string) (bool, error)

	// Open opens source for reading from its beginning.
	Open(ctx context.Context, source string) (io.ReadSeekCloser, error)
}

// FileOpener opens regular files. Relative sources are resolved against
// Dir when it is set.
type FileOpener struct {
	Dir string
}

func (o FileOpener) path(source string) string {
	if o.Dir == "" || filepath.IsAbs(source) {
		return source
	}
	return filepath.Join(o.Dir, source)
}

// Exists reports whether source is an existing regular file.
func (o FileOpener) Exists(_ context.Context, source string) (bool, error) {
	info, err := os.Stat(o.path(source))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// Open opens source read-only.
func (o FileOpener) Open(_ context.Context, source string) (io.ReadSeekCloser, error) {
	return os.Open(o.path(source))
}

// Compile-time interface satisfaction check.
var _ Opener = FileOpener{}
