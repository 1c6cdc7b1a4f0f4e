package server

import (
	"bytes"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/Happy-Ferret/addons-code-manager/internal/logging"
)

// handleIndex serves the review UI index page with the reviewers token
// injected into <head>, so the browser app can authenticate without a
// separate token round-trip. Without a static dir it reports basic server
// info instead.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	staticDir := s.cfg.AppConfig.StaticDir
	if staticDir == "" {
		writeJSON(w, http.StatusOK, map[string]string{
			"service": "addons-code-manager",
			"docs":    "/swagger/index.html",
		})
		return
	}

	raw, err := os.ReadFile(filepath.Join(staticDir, "index.html"))
	if err != nil {
		s.logger.Warn("reading index.html", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, "index page unavailable")
		return
	}

	page, err := injectToken(raw, s.cfg.AppConfig.AuthToken)
	if err != nil {
		s.logger.Warn("injecting token", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, "index page unavailable")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(page)
}

// injectToken appends a script defining the reviewers token to the page's
// <head>. An empty token leaves the page untouched.
func injectToken(page []byte, token string) ([]byte, error) {
	if token == "" {
		return page, nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse index page: %w", err)
	}

	script := &html.Node{
		Type:     html.ElementNode,
		Data:     "script",
		DataAtom: atom.Script,
	}
	script.AppendChild(&html.Node{
		Type: html.TextNode,
		Data: fmt.Sprintf("window.REVIEWERS_TOKEN = %s;", strconv.Quote(token)),
	})
	doc.Find("head").First().AppendNodes(script)

	out, err := doc.Html()
	if err != nil {
		return nil, fmt.Errorf("render index page: %w", err)
	}
	return []byte(out), nil
}
