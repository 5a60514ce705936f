package app

import (
	"os"
	"path/filepath"

	"github.com/cndoit18/codecrafters-http-server-go/core"
	"github.com/cndoit18/codecrafters-http-server-go/core/http"
)

// Register installs the built-in routes on engine. dir is the base
// directory for the /files routes.
func Register(engine *core.Engine, dir string) {
	files := Files{Dir: dir}

	engine.Handle(http.MethodGet, "/", Root{})
	engine.Handle(http.MethodGet, "/echo/{echo}", Echo{})
	engine.Handle(http.MethodGet, "/user-agent", UserAgent{})
	engine.Handle(http.MethodGet, "/files/{file}", FileReader{files})
	engine.Handle(http.MethodPost, "/files/{file}", FileWriter{files})
}

// Root answers 200 with no body
type Root struct{}

func (Root) Handle(*http.Request) (*http.Response, error) {
	return http.NewResponse(http.StatusOK), nil
}

// Echo answers with the {echo} path segment as text
type Echo struct{}

func (Echo) Handle(req *http.Request) (*http.Response, error) {
	resp := http.NewResponse(http.StatusOK)
	resp.SetBody(http.MIMETextPlain, []byte(req.Param("echo")))
	return resp, nil
}

// UserAgent answers with the request's User-Agent header as text
type UserAgent struct{}

func (UserAgent) Handle(req *http.Request) (*http.Response, error) {
	resp := http.NewResponse(http.StatusOK)
	resp.SetBody(http.MIMETextPlain, []byte(req.Header(http.HeaderUserAgent)))
	return resp, nil
}

// Files resolves {file} parameters inside a base directory
type Files struct {
	Dir string
}

// path returns the file named by the request, or false when the name would
// leave Dir
func (f Files) path(req *http.Request) (string, bool) {
	name := req.Param("file")
	if name == "" || name == "." || name == ".." {
		return "", false
	}
	return filepath.Join(f.Dir, name), true
}

// FileReader serves a file from the base directory. Any read failure,
// including a missing file or a directory, answers 404.
type FileReader struct {
	Files
}

func (h FileReader) Handle(req *http.Request) (*http.Response, error) {
	path, ok := h.path(req)
	if !ok {
		return http.NewResponse(http.StatusNotFound), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return http.NewResponse(http.StatusNotFound), nil
	}

	resp := http.NewResponse(http.StatusOK)
	resp.SetBody(http.MIMEOctetStream, data)
	return resp, nil
}

// FileWriter stores the request body in the base directory, creating or
// truncating the file. It answers 201, or 404 when the file cannot be opened.
type FileWriter struct {
	Files
}

func (h FileWriter) Handle(req *http.Request) (*http.Response, error) {
	path, ok := h.path(req)
	if !ok {
		return http.NewResponse(http.StatusNotFound), nil
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return http.NewResponse(http.StatusNotFound), nil
	}
	if _, err := f.Write(req.Body); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, err
	}
	return http.NewResponse(http.StatusCreated), nil
}
