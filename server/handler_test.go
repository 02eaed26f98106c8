package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/jacobpatterson1549/prisoners-dilemma/game"
	"github.com/jacobpatterson1549/prisoners-dilemma/server/log/logtest"
	"github.com/prometheus/client_golang/prometheus"
)

func TestFileHandler(t *testing.T) {
	cacheMaxAge := "max-age=???"
	handleFileHeadersTests := []struct {
		path          string
		wantHeader    http.Header
		requestHeader http.Header
	}{
		{
			path: "/index.html",
			wantHeader: http.Header{
				"Cache-Control": {"no-store"},
				"Content-Type":  {"text/html; charset=utf-8"},
			},
		},
		{
			path: "/index.html",
			requestHeader: http.Header{
				"Accept-Encoding": {"gzip"},
			},
			wantHeader: http.Header{
				"Cache-Control":    {"no-store"},
				"Content-Encoding": {"gzip"},
				"Content-Type":     {"text/html; charset=utf-8"},
			},
		},
		{
			path: "/file.html",
			wantHeader: http.Header{
				"Cache-Control": {cacheMaxAge},
				"Content-Type":  {"text/html; charset=utf-8"},
			},
		},
	}
	for i, test := range handleFileHeadersTests {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("", test.path, nil)
		r.Header = test.requestHeader
		handlerCalled := false
		h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlerCalled = true
		})
		fh := fileHandler(h, cacheMaxAge)
		fh.ServeHTTP(w, r)
		gotHeader := w.Header()
		switch {
		case !handlerCalled:
			t.Errorf("Test %v: wanted handler to be called", i)
		case !reflect.DeepEqual(test.wantHeader, gotHeader):
			t.Errorf("Test %v headers not equal\nwanted: %v\ngot:    %v", i, test.wantHeader, gotHeader)
		}
	}
}

func TestHTTPError(t *testing.T) {
	w := httptest.NewRecorder()
	want := 400
	httpError(w, want)
	got := w.Code
	switch {
	case want != got:
		t.Errorf("wanted error message to contain %v, got %v", want, got)
	case w.Body.Len() <= 1: // ends in \n character
		t.Errorf("wanted status code info for error (%v) in body", want)
	}
}

func TestWriteInternalError(t *testing.T) {
	w := httptest.NewRecorder()
	err := fmt.Errorf("mock error")
	log := logtest.NewLogger()
	want := 500
	writeInternalError(err, log, w)
	got := w.Code
	switch {
	case want != got:
		t.Errorf("wanted error message to contain %v, got %v", want, got)
	case !strings.Contains(w.Body.String(), err.Error()):
		t.Errorf("wanted message in body (%v), but got %v", err.Error(), w.Body.String())
	case !strings.Contains(log.String(), err.Error()):
		t.Errorf("wanted message in log (%v), but got %v", err.Error(), log.String())
	}
}

func TestAddMimeType(t *testing.T) {
	addMimeTypeTests := map[string]string{
		"favicon.svg":   "image/svg+xml",
		"manifest.json": "application/json",
		"LICENSE":       "text/plain; charset=utf-8",
		"any.html":      "text/html; charset=utf-8",
		"/index.html":   "text/html; charset=utf-8",
	}
	for fileName, want := range addMimeTypeTests {
		w := httptest.NewRecorder()
		addMimeType(fileName, w)
		got := w.Header().Get("Content-Type")
		if want != got {
			t.Errorf("when filename = %v, wanted mimeType %v, got %v", fileName, want, got)
		}
	}
}

func TestTemplateHandler(t *testing.T) {
	serveTemplateTests := []struct {
		templateName string
		templateText string
		path         string
		wantCode     int
		wantBody     string
	}{
		{
			templateName: "index.html",
			path:         "/index.html",
			templateText: "stuff",
			wantCode:     200,
			wantBody:     "stuff",
		},
		{
			templateName: "name.html",
			templateText: "template for {{ .Name }}",
			path:         "/name.html",
			wantBody:     "template for prisoners-dilemma",
			wantCode:     200,
		},
		{
			templateName: "rules.html",
			templateText: "{{ range .Rules }}{{ . }}|{{ end }}",
			path:         "/rules.html",
			wantCode:     200,
		},
		{
			templateName: "name.html",
			templateText: "template for {{ .NameINVALID }}",
			path:         "/name.html",
			wantCode:     500,
		},
	}
	cfg := Config{
		Version:    "v1",
		GameConfig: game.DefaultConfig(),
	}
	data := cfg.newTemplateData()
	for i, test := range serveTemplateTests {
		template := template.Must(template.New(test.templateName).Parse(test.templateText))
		r := httptest.NewRequest("", test.path, nil)
		w := httptest.NewRecorder()
		log := logtest.DiscardLogger
		h := templateHandler(template, data, log)
		h.ServeHTTP(w, r)
		gotCode := w.Code
		gotBody := w.Body.String()
		switch {
		case test.wantCode != gotCode:
			t.Errorf("Test %v: status codes not equal: wanted: %v, got:    %v", i, test.wantCode, gotCode)
		case len(test.wantBody) != 0 && test.wantBody != gotBody:
			t.Errorf("Test %v: body not equal:\nwanted: %v\ngot:    %v", i, test.wantBody, gotBody)
		}
	}
}

func TestWrappedResponseWriter(t *testing.T) {
	w := httptest.NewRecorder()
	var buf bytes.Buffer
	w2 := wrappedResponseWriter{
		Writer:         &buf,
		ResponseWriter: w,
	}
	want := "sent to bb"
	w2.Write([]byte(want))
	got := buf.String()
	if want != got {
		t.Errorf("not equal:\nwanted: %v\ngot:    %v", want, got)
	}
}

func TestGetHandler(t *testing.T) {
	checkCode := func(t *testing.T, path string, p Parameters, template *template.Template, wantCode int) {
		t.Helper()
		r := httptest.NewRequest("", path, nil)
		w := httptest.NewRecorder()
		cfg := Config{
			GameConfig: game.DefaultConfig(),
		}
		if p.Logger == nil {
			p.Logger = logtest.DiscardLogger
		}
		if p.Gatherer == nil {
			p.Gatherer = prometheus.NewRegistry()
		}
		h := p.getHandler(cfg, template)
		h.ServeHTTP(w, r)
		if gotCode := w.Code; wantCode != gotCode {
			t.Errorf("codes not equal for GET to %v: status codes not equal: wanted: %v, got: %v", path, wantCode, gotCode)
		}
	}
	t.Run("invalidGetPaths", func(t *testing.T) {
		invalidPaths := []string{"/invalid/get/path", "/game", "/main.wasm"}
		for _, path := range invalidPaths {
			var p Parameters
			checkCode(t, path, p, nil, 404)
		}
	})
	t.Run("rootHandler", func(t *testing.T) {
		template := template.Must(template.New("index.html").Parse("{{ .Description }}"))
		var p Parameters
		checkCode(t, "/", p, template, 200)
		checkCode(t, "/index.html", p, template, 200)
	})
	t.Run("health", func(t *testing.T) {
		var p Parameters
		checkCode(t, "/health", p, nil, 200)
	})
	t.Run("monitor", func(t *testing.T) {
		var p Parameters
		checkCode(t, "/monitor", p, nil, 200)
	})
	t.Run("metrics", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		c := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_total"})
		reg.MustRegister(c)
		p := Parameters{
			Gatherer: reg,
		}
		checkCode(t, "/metrics", p, nil, 200)
	})
	t.Run("gameSocket", func(t *testing.T) {
		p := Parameters{
			Tokenizer: mockTokenizer{
				ReadGameIDFunc: func(tokenString string) (game.ID, error) {
					return 8, nil
				},
			},
			Lobby: mockLobby{
				AddSocketFunc: func(ctx context.Context, gameID game.ID, w http.ResponseWriter, r *http.Request) error {
					return nil
				},
			},
		}
		checkCode(t, "/game/socket?access_token=abc", p, nil, 200)
	})
}

func TestGameSocketHandler(t *testing.T) {
	gameSocketTests := []struct {
		readGameIDErr error
		addSocketErr  error
		wantCode      int
		wantAdd       bool
	}{
		{
			readGameIDErr: errors.New("token expired"),
			wantCode:      403,
		},
		{
			addSocketErr: errors.New("game has reached quota of sockets"),
			wantCode:     200, // written by socket runner
			wantAdd:      true,
		},
		{
			wantCode: 200,
			wantAdd:  true,
		},
	}
	for i, test := range gameSocketTests {
		tokenizer := mockTokenizer{
			ReadGameIDFunc: func(tokenString string) (game.ID, error) {
				if want := "t0k3n"; want != tokenString {
					t.Errorf("Test %v: wanted token %q, got %q", i, want, tokenString)
				}
				return 5, test.readGameIDErr
			},
		}
		added := false
		lobby := mockLobby{
			AddSocketFunc: func(ctx context.Context, gameID game.ID, w http.ResponseWriter, r *http.Request) error {
				added = true
				if gameID != 5 {
					t.Errorf("Test %v: wanted socket for game 5, got %v", i, gameID)
				}
				return test.addSocketErr
			},
		}
		h := gameSocketHandler(lobby, tokenizer, logtest.DiscardLogger)
		r := httptest.NewRequest("GET", "/game/socket?access_token=t0k3n", nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		switch {
		case test.wantCode != w.Code:
			t.Errorf("Test %v: wanted code %v, got %v", i, test.wantCode, w.Code)
		case test.wantAdd != added:
			t.Errorf("Test %v: wanted socket added to be %v", i, test.wantAdd)
		}
	}
}

func TestCreateGameHandler(t *testing.T) {
	createGameTests := []struct {
		createGameErr error
		createErr     error
		wantCode      int
		want          *gameToken
	}{
		{
			createGameErr: errors.New("the maximum number of games have already been created (1)"),
			wantCode:      503,
		},
		{
			createErr: errors.New("signing error"),
			wantCode:  500,
		},
		{
			wantCode: 200,
			want: &gameToken{
				GameID: 6,
				Token:  "token-6",
			},
		},
	}
	for i, test := range createGameTests {
		lobby := mockLobby{
			CreateGameFunc: func(ctx context.Context) (game.ID, error) {
				return 6, test.createGameErr
			},
		}
		tokenizer := mockTokenizer{
			CreateFunc: func(gameID game.ID) (string, error) {
				return fmt.Sprintf("token-%v", gameID), test.createErr
			},
		}
		h := createGameHandler(lobby, tokenizer, logtest.DiscardLogger)
		r := httptest.NewRequest("POST", "/game", nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		switch {
		case test.wantCode != w.Code:
			t.Errorf("Test %v: wanted code %v, got %v", i, test.wantCode, w.Code)
		case test.want != nil:
			var got gameToken
			if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
				t.Errorf("Test %v: decoding game token: %v", i, err)
			}
			if *test.want != got {
				t.Errorf("Test %v: game tokens not equal\nwanted: %v\ngot:    %v", i, *test.want, got)
			}
			if want, got := "application/json", w.Header().Get(HeaderContentType); want != got {
				t.Errorf("Test %v: wanted content type %v, got %v", i, want, got)
			}
		}
	}
}

func TestHandler(t *testing.T) {
	handlerTests := []struct {
		method   string
		path     string
		wantCode int
	}{
		{"GET", "/health", 200},
		{"POST", "/game", 200},
		{"POST", "/health", 404},
		{"DELETE", "/game", 405},
	}
	p := Parameters{
		Logger:   logtest.DiscardLogger,
		Gatherer: prometheus.NewRegistry(),
		Tokenizer: mockTokenizer{
			CreateFunc: func(gameID game.ID) (string, error) {
				return "token", nil
			},
		},
		Lobby: mockLobby{
			CreateGameFunc: func(ctx context.Context) (game.ID, error) {
				return 1, nil
			},
		},
	}
	cfg := Config{
		GameConfig: game.DefaultConfig(),
	}
	h := cfg.handler(p, nil)
	for i, test := range handlerTests {
		r := httptest.NewRequest(test.method, test.path, nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		if test.wantCode != w.Code {
			t.Errorf("Test %v: wanted code %v for %v %v, got %v", i, test.wantCode, test.method, test.path, w.Code)
		}
	}
}
