package cmapfix

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// KeyPrefix starts every CMap lookup key.
const KeyPrefix = "to-unicode-"

// Key returns the lookup key for a base font name.
func Key(baseFont string) string { return KeyPrefix + baseFont }

// Origin tells where a CMap source was found.
type Origin int

const (
	Bundled Origin = iota
	Filesystem
)

func (o Origin) String() string {
	if o == Bundled {
		return "bundled"
	}
	return "filesystem"
}

// Location is a CMap source that has been found but not yet opened.
type Location struct {
	Origin Origin
	Key    string
	// Path is the file path for Filesystem locations and the entry name
	// inside the bundled set otherwise.
	Path string

	fsys fs.FS
}

// Open returns a reader over the CMap bytes.
func (l *Location) Open() (io.ReadCloser, error) {
	if l.Origin == Bundled {
		return l.fsys.Open(l.Path)
	}
	return os.Open(l.Path)
}

// Locator finds CMap sources by base font name.
type Locator interface {
	Locate(baseFont string) (*Location, bool)
}

// Resolver looks CMap sources up in a bundled set first, then in a search
// directory on disk.
type Resolver struct {
	bundled fs.FS
	root    string
}

var _ Locator = (*Resolver)(nil)

// NewResolver returns a resolver over bundled (may be nil) and the
// directory searchRoot (may be empty to disable filesystem lookups).
func NewResolver(bundled fs.FS, searchRoot string) *Resolver {
	return &Resolver{bundled: bundled, root: searchRoot}
}

// SearchRoot returns the configured search directory.
func (r *Resolver) SearchRoot() string { return r.root }

// Locate returns the first source for baseFont. A missing source is
// reported by ok == false, never as an error.
func (r *Resolver) Locate(baseFont string) (loc *Location, ok bool) {
	key := Key(baseFont)
	if !singleElement(key) {
		return nil, false
	}

	if r.bundled != nil && fs.ValidPath(key) {
		if info, err := fs.Stat(r.bundled, key); err == nil && info.Mode().IsRegular() {
			return &Location{Origin: Bundled, Key: key, Path: key, fsys: r.bundled}, true
		}
	}

	if r.root != "" {
		path := filepath.Join(r.root, key)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return &Location{Origin: Filesystem, Key: key, Path: path}, true
		}
	}
	return nil, false
}

// singleElement reports whether key names an entry directly inside the
// search root. Keys may hold raw non-UTF-8 bytes, such as GBK font names.
// The key prefix already rules out "." and "..".
func singleElement(key string) bool {
	return !strings.ContainsAny(key, "/\\\x00")
}
