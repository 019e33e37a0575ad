package server

import (
	"net/http"
	"regexp"

	"github.com/klauspost/compress/gzhttp"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
)

var jsMediaType = regexp.MustCompile(`^(application|text)/(x-)?(java|ecma)script$`)

// newMinifier registers the media types minified on the fly.
func newMinifier() *minify.M {
	m := minify.New()
	m.AddFunc("text/html", html.Minify)
	m.AddFunc("text/css", css.Minify)
	m.AddFuncRegexp(jsMediaType, js.Minify)
	return m
}

// wrap applies the optional response middleware, outermost last.
func wrap(h http.Handler, compress, minifyOn bool) http.Handler {
	if minifyOn {
		h = dropRange(newMinifier().Middleware(h))
	}
	if compress {
		h = gzhttp.GzipHandler(h)
	}
	return h
}

// dropRange serves full bodies only. Byte ranges of the source file do not
// line up with the minified output.
func dropRange(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Range") != "" {
			r = r.Clone(r.Context())
			r.Header.Del("Range")
			r.Header.Del("If-Range")
		}
		next.ServeHTTP(w, r)
	})
}
