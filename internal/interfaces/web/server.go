// Package web serves the read-only status dashboard.
package web

import (
	"context"
	"errors"
	"html/template"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/example/visa-watch/internal/application/scheduler"
	"github.com/example/visa-watch/internal/application/usecases"
	"github.com/example/visa-watch/internal/ctxlog"
	"github.com/example/visa-watch/internal/domain/attempt"
)

const recentAttempts = 20

// StatusSource is satisfied by *scheduler.Runner.
type StatusSource interface {
	Status() scheduler.Status
}

type Server struct {
	addr     string
	sessions *SessionManager
	auth     usecases.OperatorAuth
	status   StatusSource
	journal  attempt.Journal
	tmpl     *template.Template
}

func New(addr string, sessions *SessionManager, auth usecases.OperatorAuth, status StatusSource, journal attempt.Journal, tmpl *template.Template) *Server {
	return &Server{addr: addr, sessions: sessions, auth: auth, status: status, journal: journal, tmpl: tmpl}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/login", s.handleLogin)
	mux.HandleFunc("/logout", s.handleLogout)
	mux.HandleFunc("/", s.requireAuth(s.handleHome))
	return logging(mux)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	stop := context.AfterFunc(ctx, func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	})
	defer stop()

	ctxlog.FromContext(ctx).Info("status dashboard listening", "addr", s.addr)
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		ctxlog.FromContext(r.Context()).Debug("http request",
			"method", r.Method, "path", r.URL.Path, "took", time.Since(start))
	})
}

func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := s.sessions.User(r); !ok {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next(w, r)
	}
}

func writeErr(w http.ResponseWriter, err error, code int) {
	w.WriteHeader(code)
	_, _ = w.Write([]byte(err.Error()))
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("content-type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		writeErr(w, err, http.StatusInternalServerError)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("content-type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

type loginData struct {
	Error    string
	Username string
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.render(w, "login.html", loginData{})
	case http.MethodPost:
		_ = r.ParseForm()
		username := strings.TrimSpace(r.FormValue("username"))
		password := r.FormValue("password")
		if err := s.auth.VerifyPassword(username, password); err != nil {
			ctxlog.FromContext(r.Context()).Warn("dashboard login rejected", "username", username)
			w.WriteHeader(http.StatusUnauthorized)
			s.render(w, "login.html", loginData{Error: "Invalid username or password", Username: username})
			return
		}
		if err := s.sessions.SetUser(w, username); err != nil {
			writeErr(w, err, http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/", http.StatusFound)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.Clear(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}

type homeData struct {
	Status       scheduler.Status
	Attempts     []attempt.Attempt
	JournalError string
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	data := homeData{Status: s.status.Status()}
	if s.journal != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		recent, err := s.journal.Recent(ctx, recentAttempts)
		if err != nil {
			data.JournalError = err.Error()
		}
		data.Attempts = recent
	}
	s.render(w, "status.html", data)
}
