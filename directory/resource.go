package directory

import (
	"io/fs"
	"os"
)

// Resource locates a schema or LDIF file. A zero FS means the OS filesystem;
// any fs.FS (an embed.FS, a fstest.MapFS, ...) can serve bundled fixtures.
type Resource struct {
	FS   fs.FS
	Path string
}

// File locates a resource on the OS filesystem.
func File(path string) Resource {
	return Resource{Path: path}
}

// FSFile locates a resource inside the given filesystem.
func FSFile(fsys fs.FS, path string) Resource {
	return Resource{FS: fsys, Path: path}
}

func (r Resource) String() string {
	return r.Path
}

func (r Resource) read() ([]byte, error) {
	if r.FS != nil {
		return fs.ReadFile(r.FS, r.Path)
	}
	return os.ReadFile(r.Path)
}
