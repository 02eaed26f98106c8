package server

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/jacobpatterson1549/prisoners-dilemma/game"
	"github.com/jacobpatterson1549/prisoners-dilemma/server/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type (
	// templateData is inserted into the templates of the site.
	templateData struct {
		Name        string
		ShortName   string
		Description string
		Version     string
		Rules       []string
		GameConfig  game.Config
	}

	// gameToken is written to browsers when they create games.
	gameToken struct {
		GameID game.ID `json:"gameID"`
		Token  string  `json:"token"`
	}
)

const (
	// HeaderContentType is used to set the document type header on http responses.
	HeaderContentType = "Content-Type"
	// HeaderCacheControl is used to tell browsers how long to cache http responses.
	HeaderCacheControl = "Cache-Control"
	// HeaderAcceptEncoding is specified by the browser to tell the server what types of document encoding it can handle.
	HeaderAcceptEncoding = "Accept-Encoding"
	// HeaderContentEncoding is used to tell browsers how the document is encoded.
	HeaderContentEncoding = "Content-Encoding"
	// rootTemplatePath is the name of the template for the root of the site
	rootTemplatePath = "/index.html"
	// gameSocketPath is the endpoint browsers open websockets at.
	gameSocketPath = "/game/socket"
	// accessTokenParam is the query parameter of the game token when opening sockets.
	accessTokenParam = "access_token"
	// operationName names the spans of http requests.
	operationName = "prisoners-dilemma"
)

// newTemplateData configures the structure of variables to insert into templates.
func (cfg Config) newTemplateData() templateData {
	data := templateData{
		Name:        "prisoners-dilemma",
		ShortName:   "dilemma",
		Description: "a two-player, round-based prisoner's dilemma",
		Version:     cfg.Version,
		Rules:       cfg.GameConfig.Rules(),
		GameConfig:  cfg.GameConfig,
	}
	return data
}

// parseTemplate parses the whole template file system to create a template.
func (p Parameters) parseTemplate() (*template.Template, error) {
	t, err := template.ParseFS(p.TemplateFS, "*")
	if err != nil {
		return nil, fmt.Errorf("parsing template file system: %v", err)
	}
	return t, nil
}

// handler creates the handler for all endpoints.  Requests other than socket connections are traced.
func (cfg Config) handler(p Parameters, template *template.Template) http.Handler {
	getHandler := p.getHandler(cfg, template)
	postHandler := p.postHandler()
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case "GET":
			getHandler.ServeHTTP(w, r)
		case "POST":
			postHandler.ServeHTTP(w, r)
		default:
			httpError(w, http.StatusMethodNotAllowed)
		}
	})
	notSocket := func(r *http.Request) bool {
		return r.URL.Path != gameSocketPath
	}
	return otelhttp.NewHandler(h, operationName, otelhttp.WithFilter(notSocket))
}

// getHandler forwards calls to various endpoints.
func (p Parameters) getHandler(cfg Config, template *template.Template) http.Handler {
	cacheMaxAge := fmt.Sprintf("max-age=%d", cfg.CacheSec)
	data := cfg.newTemplateData()
	templateFileHandler := templateHandler(template, data, p.Logger)
	getMux := http.NewServeMux()
	getMux.Handle(rootTemplatePath, fileHandler(templateFileHandler, cacheMaxAge))
	getMux.Handle(gameSocketPath, gameSocketHandler(p.Lobby, p.Tokenizer, p.Logger))
	getMux.Handle("/metrics", promhttp.HandlerFor(p.Gatherer, promhttp.HandlerOpts{}))
	getMux.Handle("/monitor", runtimeMonitor{})
	getMux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	return rootHandler(getMux)
}

// postHandler calls handlers for POST endpoints.
func (p Parameters) postHandler() http.Handler {
	postMux := http.NewServeMux()
	postMux.Handle("/game", createGameHandler(p.Lobby, p.Tokenizer, p.Logger))
	return postMux
}

// rootHandler maps requests for / to /index.html.
func rootHandler(h http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			r.URL.Path = rootTemplatePath
		}
		h.ServeHTTP(w, r)
	}
}

// createGameHandler creates a game and writes a token that allows the browser to play it.
func createGameHandler(lobby Lobby, tokenizer Tokenizer, log log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id, err := lobby.CreateGame(ctx)
		if err != nil {
			log.Printf("create game failure: %v", err)
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		token, err := tokenizer.Create(id)
		if err != nil {
			err = fmt.Errorf("creating token for game %v: %w", id, err)
			writeInternalError(err, log, w)
			return
		}
		gt := gameToken{
			GameID: id,
			Token:  token,
		}
		w.Header().Set(HeaderContentType, "application/json")
		if err := json.NewEncoder(w).Encode(gt); err != nil {
			err = fmt.Errorf("writing game token: %w", err)
			writeInternalError(err, log, w)
			return
		}
	}
}

// gameSocketHandler opens a websocket for the game in the access token of the request.
func gameSocketHandler(lobby Lobby, tokenizer Tokenizer, log log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenString := r.FormValue(accessTokenParam)
		id, err := tokenizer.ReadGameID(tokenString)
		if err != nil {
			log.Printf("reading game token: %v", err)
			httpError(w, http.StatusForbidden)
			return
		}
		ctx := r.Context()
		if err := lobby.AddSocket(ctx, id, w, r); err != nil {
			// the error response has already been written
			log.Printf("websocket error: %v", err)
			return
		}
	}
}

// fileHandler wraps the handling of the file, add cache-control header and gzip compression, if possible.
func fileHandler(h http.Handler, cacheMaxAge string) http.HandlerFunc {
	cacheControl := func(r *http.Request) string {
		switch r.URL.Path {
		case rootTemplatePath:
			return "no-store"
		}
		return cacheMaxAge
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.Header.Get(HeaderAcceptEncoding), "gzip") {
			w2 := gzip.NewWriter(w)
			defer w2.Close()
			w = wrappedResponseWriter{
				Writer:         w2,
				ResponseWriter: w,
			}
			w.Header().Add(HeaderContentEncoding, "gzip")
		}
		w.Header().Set(HeaderCacheControl, cacheControl(r))
		addMimeType(r.URL.Path, w)
		h.ServeHTTP(w, r)
	}
}

// templateHandler servers the file from the data-driven template.  The name is assumed to have a leading slash that is ignored.
// Templates are written a buffer to ensure they execute correctly before they are written to the response
func templateHandler(template *template.Template, data templateData, log log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Path[1:] // ignore leading slash
		var buf bytes.Buffer
		if err := template.ExecuteTemplate(&buf, name, data); err != nil {
			err = fmt.Errorf("rendering template: %v", err)
			writeInternalError(err, log, w)
			return
		}
		w.Write(buf.Bytes())
	}
}

// writeInternalError logs and writes the error as an internal server error (500).
func writeInternalError(err error, log log.Logger, w http.ResponseWriter) {
	log.Printf("server error: %v", err)
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

// httpError writes the error status code.
func httpError(w http.ResponseWriter, statusCode int) {
	http.Error(w, http.StatusText(statusCode), statusCode)
}

// addMimeType adds the applicable mime type to the response.  Files without extensions are assumed to be text
func addMimeType(fileName string, w http.ResponseWriter) {
	if !strings.Contains(fileName, ".") {
		fileName = ".txt"
	}
	extension := filepath.Ext(fileName)
	mimeType := mime.TypeByExtension(extension)
	w.Header().Add(HeaderContentType, mimeType)
}

// wrappedResponseWriter wraps response writing with another writer.
type wrappedResponseWriter struct {
	io.Writer
	http.ResponseWriter
}

// Write delegates the write to the wrapped writer.
func (wrw wrappedResponseWriter) Write(p []byte) (n int, err error) {
	return wrw.Writer.Write(p)
}
