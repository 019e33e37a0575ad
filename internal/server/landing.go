package server

import (
	"bytes"
	"log/slog"
	"net/http"
	"path"

	"github.com/spf13/afero"
)

// landingHandler serves the fixed landing document from fsys.
// A missing or unreadable document is a server-side failure.
func landingHandler(fsys afero.Fs, name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		info, err := fsys.Stat(name)
		if err != nil || info.IsDir() {
			slog.Error("Failed to send landing document", "path", name, "error", err)
			http.Error(w, "500 - Internal Server Error", http.StatusInternalServerError)
			return
		}

		data, err := afero.ReadFile(fsys, name)
		if err != nil {
			slog.Error("Failed to read landing document", "path", name, "error", err)
			http.Error(w, "500 - Internal Server Error", http.StatusInternalServerError)
			return
		}

		http.ServeContent(w, r, path.Base(name), info.ModTime(), bytes.NewReader(data))
	}
}
