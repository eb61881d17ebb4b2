// Package ui embeds the static pages and assets served by the app.
package ui

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed pages/*.html assets/*
var content embed.FS

// Page serves one of the embedded HTML pages.
func Page(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := content.ReadFile("pages/" + name + ".html")
		if err != nil {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(raw)
	}
}

// Assets returns the embedded asset tree rooted at assets/.
func Assets() http.Handler {
	sub, err := fs.Sub(content, "assets")
	if err != nil {
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}
