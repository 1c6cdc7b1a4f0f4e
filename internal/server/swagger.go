package server

//go:generate swag init -g internal/server/server.go -o docs/swagger

// @title addons-code-manager API
// @version 0.1
// @description Compare-session API backing the addons code review UI.
// @BasePath /

import (
	_ "embed"
	"net/http"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

//go:embed openapi.json
var openapiJSON []byte

// mountSwagger serves the swagger UI backed by the embedded OpenAPI
// document.
func (s *Server) mountSwagger(r chi.Router) {
	r.Get("/swagger/doc.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(openapiJSON)
	})
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
}
