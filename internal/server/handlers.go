package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/leapstack-labs/gast/pkg/cst"
	"github.com/leapstack-labs/gast/pkg/gast"
	"github.com/leapstack-labs/gast/pkg/grammar"
)

// Error classes reported in error responses.
const (
	ClassSyntax   = "syntax"
	ClassContract = "contract"
	ClassRequest  = "request"
	ClassInternal = "internal"
)

type errorResponse struct {
	Error string `json:"error"`
	Class string `json:"class"`
}

// GrammarInfo describes a registered grammar.
type GrammarInfo struct {
	Name       string   `json:"name"`
	Extensions []string `json:"extensions"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok\n")
}

func (s *Server) handleGrammars(w http.ResponseWriter, _ *http.Request) {
	names := grammar.List()
	out := make([]GrammarInfo, 0, len(names))
	for _, name := range names {
		g, _ := grammar.Get(name)
		out = append(out, GrammarInfo{Name: g.Name, Extensions: g.Extensions})
	}
	s.writeJSON(w, http.StatusOK, out)
}

// handleExtract parses the request body and responds with its tree.
// The grammar comes from ?grammar= or, failing that, the extension of ?file=.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	file := q.Get("file")
	if file == "" {
		file = "input"
	}

	var g *grammar.Grammar
	var ok bool
	switch name := q.Get("grammar"); {
	case name != "":
		g, ok = grammar.Get(name)
	case q.Get("file") != "":
		g, ok = grammar.ForFile(file)
	default:
		s.writeError(w, http.StatusBadRequest, ClassRequest, errors.New("grammar or file parameter is required"))
		return
	}
	if !ok {
		s.writeError(w, http.StatusBadRequest, ClassRequest, fmt.Errorf("%w: %s", grammar.ErrUnknownGrammar, q.Get("grammar")+q.Get("file")))
		return
	}

	strict := s.strict
	if v := q.Get("strict"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, ClassRequest, fmt.Errorf("invalid strict value %q", v))
			return
		}
		strict = b
	}

	src, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, ClassRequest,
				fmt.Errorf("body exceeds %d bytes", tooLarge.Limit))
			return
		}
		s.writeError(w, http.StatusBadRequest, ClassRequest, err)
		return
	}

	root, err := g.Extract(r.Context(), file, src, grammar.ExtractOptions{Strict: strict, Logger: s.logger})
	if err != nil {
		status, class := classifyExtractError(err)
		if class == ClassContract {
			s.logger.Error("adapter contract violation", slog.String("file", file), slog.String("error", err.Error()))
		}
		s.writeError(w, status, class, err)
		return
	}

	s.writeJSON(w, http.StatusOK, root)
}

// classifyExtractError maps an extraction failure to a response status.
// Malformed input is the client's fault; a contract violation is a bug in a
// grammar adapter and is reported as a server error.
func classifyExtractError(err error) (int, string) {
	var se *cst.SyntaxError
	switch {
	case errors.As(err, &se):
		return http.StatusUnprocessableEntity, ClassSyntax
	case gast.IsContractViolation(err):
		return http.StatusInternalServerError, ClassContract
	default:
		return http.StatusInternalServerError, ClassInternal
	}
}

// handleEvents streams watch-mode outcomes as server-sent events.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, ClassInternal, errors.New("streaming unsupported"))
		return
	}

	ch := s.notifier.Subscribe()
	defer s.notifier.Unsubscribe(ch)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Status, data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to write response", slog.String("error", err.Error()))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, class string, err error) {
	s.writeJSON(w, status, errorResponse{Error: err.Error(), Class: class})
}
