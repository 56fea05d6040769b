package apidocs

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

var uiTemplate = template.Must(template.New("swagger-ui").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>{{.Title}}</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js" crossorigin></script>
  <script>
    window.onload = function () {
      window.ui = SwaggerUIBundle({ url: {{.SpecURL}}, dom_id: "#swagger-ui" });
    };
  </script>
</body>
</html>
`))

// Handler serves the OpenAPI document and the Swagger UI page.
type Handler struct {
	spec   []byte
	title  string
	logger *zap.Logger
}

// NewHandler renders doc once and returns a Handler serving it.
func NewHandler(doc *openapi3.T, logger *zap.Logger) (*Handler, error) {
	spec, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshaling openapi document: %w", err)
	}

	title := "API"
	if doc.Info != nil && doc.Info.Title != "" {
		title = doc.Info.Title
	}

	return &Handler{
		spec:   spec,
		title:  title,
		logger: logger,
	}, nil
}

// RegisterRoutes registers the documentation routes on the router.
func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc(SpecPath, h.Spec).Methods(http.MethodGet)
	router.HandleFunc(UIPath, h.UI).Methods(http.MethodGet)
}

// Spec handles GET /v3/api-docs.
func (h *Handler) Spec(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(h.spec); err != nil {
		h.logger.Error("failed to write api docs", zap.Error(err))
	}
}

// UI handles GET /swagger-ui.
func (h *Handler) UI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	data := struct {
		Title   string
		SpecURL string
	}{Title: h.title, SpecURL: SpecPath}

	if err := uiTemplate.Execute(w, data); err != nil {
		h.logger.Error("failed to render swagger ui", zap.Error(err))
	}
}
