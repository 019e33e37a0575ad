// Package assets serves static files from an ordered list of directory roots.
package assets

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"syscall"

	"github.com/spf13/afero"
)

// IndexFile is served for a directory request that ends in a slash.
const IndexFile = "index.html"

// Root is one served directory.
type Root struct {
	Name string
	Fs   afero.Fs
}

// NewRoot returns a read-only root for dir inside fsys.
// Paths opened through it cannot escape dir.
func NewRoot(fsys afero.Fs, dir string) Root {
	return Root{
		Name: dir,
		Fs:   afero.NewBasePathFs(afero.NewReadOnlyFs(fsys), dir),
	}
}

// OSRoot returns a read-only root for dir on the local disk.
func OSRoot(dir string) Root {
	return NewRoot(afero.NewOsFs(), dir)
}

// OSRoots maps each directory to an OSRoot, keeping order.
func OSRoots(dirs []string) []Root {
	roots := make([]Root, 0, len(dirs))
	for _, dir := range dirs {
		roots = append(roots, OSRoot(dir))
	}
	return roots
}

// Responder answers GET and HEAD requests from the first root holding the
// requested file. Everything else goes to Next.
type Responder struct {
	Roots []Root
	Next  http.Handler
}

// New returns a Responder over roots that falls through to next.
// A nil next answers 404.
func New(roots []Root, next http.Handler) *Responder {
	if next == nil {
		next = http.NotFoundHandler()
	}
	return &Responder{Roots: roots, Next: next}
}

func (rs *Responder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		rs.Next.ServeHTTP(w, r)
		return
	}

	urlPath := cleanPath(r.URL.Path)
	if hasDotSegment(urlPath) {
		rs.Next.ServeHTTP(w, r)
		return
	}
	for _, root := range rs.Roots {
		if rs.tryRoot(w, r, root, urlPath) {
			return
		}
	}
	rs.Next.ServeHTTP(w, r)
}

// tryRoot serves urlPath from root and reports whether a response was written.
func (rs *Responder) tryRoot(w http.ResponseWriter, r *http.Request, root Root, urlPath string) bool {
	info, err := root.Fs.Stat(urlPath)
	if err != nil {
		logMiss(root, urlPath, err)
		return false
	}

	if info.IsDir() {
		if !strings.HasSuffix(r.URL.Path, "/") {
			redirectToSlash(w, r, urlPath)
			return true
		}
		urlPath = path.Join(urlPath, IndexFile)
		info, err = root.Fs.Stat(urlPath)
		if err != nil {
			logMiss(root, urlPath, err)
			return false
		}
		if info.IsDir() {
			return false
		}
	}

	if !info.Mode().IsRegular() {
		return false
	}

	f, err := root.Fs.Open(urlPath)
	if err != nil {
		logMiss(root, urlPath, err)
		return false
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			slog.Warn("Failed to close asset", "root", root.Name, "path", urlPath, "error", cerr)
		}
	}()

	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
	return true
}

// cleanPath normalizes a request path to a rooted, slash-separated form.
func cleanPath(p string) string {
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}

// hasDotSegment reports whether any segment of p names a dotfile.
func hasDotSegment(p string) bool {
	for _, seg := range strings.Split(p, "/") {
		if len(seg) > 1 && seg[0] == '.' {
			return true
		}
	}
	return false
}

// redirectToSlash redirects to the cleaned path so a leading "//" can never
// become a protocol-relative Location.
func redirectToSlash(w http.ResponseWriter, r *http.Request, cleaned string) {
	target := cleaned + "/"
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	http.Redirect(w, r, target, http.StatusMovedPermanently)
}

func logMiss(root Root, urlPath string, err error) {
	// A file used as a directory component is just another miss.
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) {
		return
	}
	slog.Warn("Failed to read asset", "root", root.Name, "path", urlPath, "error", err)
}
