package web

import (
	"io/fs"
	"net/http"
)

// RegisterRoutes registers the dashboard and operator page routes on the
// provided mux. Static assets are served from the embedded filesystem.
func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	staticFS, _ := fs.Sub(StaticFS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticFS)))

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFileFS(w, r, staticFS, "index.html")
	})

	mux.HandleFunc("GET /oauth/jobber/callback", h.Callback)
	mux.HandleFunc("GET /oauth/jobber/refresh", h.ManualRefresh)
}
