// Package server exposes an endpoint over the JSON protocol spoken by the
// http adapter.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/kndndrj/nvim-dbedit/dbedit/core"
)

const (
	contentTypeJSON = "application/json; charset=utf-8"
	maxRequestSize  = 8 << 20
)

// Logger is satisfied by *zap.SugaredLogger.
type Logger interface {
	Debugw(msg string, keysAndValues ...any)
	Errorw(msg string, keysAndValues ...any)
}

type Server struct {
	endpoint core.Endpoint
	log      Logger
	router   *mux.Router
}

var _ http.Handler = (*Server)(nil)

// New serves endpoint on every path: POST fetches or creates, split by the
// body shape, PUT updates.
func New(endpoint core.Endpoint, logger Logger) *Server {
	s := &Server{
		endpoint: endpoint,
		log:      logger,
		router:   mux.NewRouter(),
	}

	s.router.PathPrefix("/").HandlerFunc(s.handle(s.post)).Methods(http.MethodPost).Name("fetch or create")
	s.router.PathPrefix("/").HandlerFunc(s.handle(s.update)).Methods(http.MethodPut).Name("update")
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Allow", "POST, PUT")
		replyError(w, "method not allowed", http.StatusMethodNotAllowed)
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	s.router.ServeHTTP(w, req)
}

func replyJSON(w http.ResponseWriter, data any, code int) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(data)
}

func replyError(w http.ResponseWriter, msg string, code int) {
	replyJSON(w, map[string]string{"error": msg}, code)
}

// statusOf maps endpoint errors to response codes.
func statusOf(err error) int {
	var (
		serr *syntaxError
		terr *core.TransportError
	)
	switch {
	case errors.As(err, &serr):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrUnknownField), errors.Is(err, core.ErrValidation):
		return http.StatusBadRequest
	case errors.As(err, &terr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

type operation func(req *http.Request, body []byte, fields map[string]json.RawMessage) (op string, resp any, err error)

// handle reads and checks the json body, runs op and replies.
func (s *Server) handle(fn operation) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()

		body, err := io.ReadAll(io.LimitReader(req.Body, maxRequestSize))
		if err != nil {
			replyError(w, err.Error(), http.StatusBadRequest)
			return
		}

		var fields map[string]json.RawMessage
		if err := json.Unmarshal(body, &fields); err != nil {
			replyError(w, "malformed request: "+err.Error(), http.StatusBadRequest)
			return
		}

		op, resp, err := fn(req, body, fields)
		if err != nil {
			code := statusOf(err)
			s.log.Errorw("request failed", "op", op, "status", code, "error", err)
			replyError(w, err.Error(), code)
			return
		}

		s.log.Debugw("request served", "op", op, "duration", time.Since(start))
		replyJSON(w, resp, http.StatusOK)
	}
}

func (s *Server) post(req *http.Request, body []byte, fields map[string]json.RawMessage) (string, any, error) {
	if fields["create"] != nil {
		resp, err := s.create(req, body)
		return "create", resp, err
	}
	resp, err := s.fetch(req, body)
	return "fetch", resp, err
}

// syntaxError marks requests that are valid JSON but not a valid call.
type syntaxError struct {
	msg string
}

func (e *syntaxError) Error() string {
	return e.msg
}

func decode(body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return &syntaxError{msg: "malformed request: " + err.Error()}
	}
	return nil
}

func (s *Server) fetch(req *http.Request, body []byte) (any, error) {
	var fr core.FetchRequest
	if err := decode(body, &fr); err != nil {
		return nil, err
	}
	if fr.Limit <= 0 {
		fr.Limit = core.DefaultLimit
	}
	fr.Offset = max(fr.Offset, 0)

	resp, err := s.endpoint.Fetch(req.Context(), &fr)
	if err != nil {
		return nil, err
	}
	if resp.Data == nil {
		resp.Data = []*core.Record{}
	}
	return resp, nil
}

func (s *Server) create(req *http.Request, body []byte) (any, error) {
	var cr core.CreateRequest
	if err := decode(body, &cr); err != nil {
		return nil, err
	}
	if cr.Create == nil {
		return nil, &syntaxError{msg: "create must be an object"}
	}

	id, err := s.endpoint.Create(req.Context(), cr.Create)
	if err != nil {
		return nil, err
	}
	return &core.CreateResponse{ID: id}, nil
}

func (s *Server) update(req *http.Request, body []byte, _ map[string]json.RawMessage) (string, any, error) {
	const op = "update"

	var ur core.UpdateRequest
	if err := decode(body, &ur); err != nil {
		return op, nil, err
	}
	if ur.ID == "" || ur.FieldName == "" {
		return op, nil, &syntaxError{msg: "id and fieldName are required"}
	}

	if err := s.endpoint.Update(req.Context(), &ur); err != nil {
		return op, nil, err
	}
	return op, map[string]any{"id": ur.ID}, nil
}
