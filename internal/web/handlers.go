package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/roach88/polls/internal/store"
)

// NoChoiceMessage is shown when a vote names no valid choice.
const NoChoiceMessage = "You didn't select a choice."

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := s.loadIndex(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "index.html", page)
}

func (s *Server) handleDetail(w http.ResponseWriter, r *http.Request) {
	s.renderDetail(w, r, "detail.html", "")
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	s.renderDetail(w, r, "results.html", "")
}

func (s *Server) renderDetail(w http.ResponseWriter, r *http.Request, name, errMsg string) {
	page, err := s.loadDetail(r.Context(), r.PathValue("id"))
	if errors.Is(err, errNotVisible) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	page.ErrorMessage = errMsg
	s.render(w, r, http.StatusOK, name, page)
}

func (s *Server) handleVote(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	// The question must be visible before a vote is even considered.
	if _, err := s.loadDetail(r.Context(), id); err != nil {
		if errors.Is(err, errNotVisible) {
			http.NotFound(w, r)
			return
		}
		s.serverError(w, r, err)
		return
	}

	choiceID := r.PostFormValue("choice")
	if choiceID == "" {
		s.renderDetail(w, r, "detail.html", NoChoiceMessage)
		return
	}

	c, err := s.store.Vote(r.Context(), id, choiceID)
	if errors.Is(err, store.ErrNotFound) {
		s.renderDetail(w, r, "detail.html", NoChoiceMessage)
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	s.logger.Debug("vote recorded", "question", id, "choice", c.ID, "votes", c.Votes)
	http.Redirect(w, r, "/polls/"+id+"/results/", http.StatusSeeOther)
}

func (s *Server) handleAPIIndex(w http.ResponseWriter, r *http.Request) {
	page, err := s.loadIndex(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, page)
}

func (s *Server) handleAPIDetail(w http.ResponseWriter, r *http.Request) {
	page, err := s.loadDetail(r.Context(), r.PathValue("id"))
	if errors.Is(err, errNotVisible) {
		s.writeJSON(w, r, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, page)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.logger.Error("health check failed", "error", err)
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

// render executes a template into a buffer first so a template error can
// still produce a clean 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		s.serverError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
