// Package mockapi is an in-process fake of the posts API, for testing the contract suite itself
// and for running it without a deployed backend.
//
// It follows the conventions of a json-server backend with json-server-auth: "/posts" is an
// open collection, "/664/posts" is the same collection with writes restricted to logged-in
// users, and "/register" and "/login" hand out bearer tokens.
package mockapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/launchdarkly/posts-contract-tests/framework"
	"github.com/launchdarkly/posts-contract-tests/servicedef"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

const DefaultSeedPosts = 100

// Server is the fake API. It implements http.Handler.
type Server struct {
	store  *Store
	tokens *tokenManager
	logger framework.Logger
	router *chi.Mux
}

type config struct {
	seedPosts int
	secret    []byte
	tokenTTL  time.Duration
	logger    framework.Logger
}

// Option configures a Server.
type Option func(*config)

// WithSeedPosts sets how many posts the server starts with. The default is DefaultSeedPosts.
func WithSeedPosts(n int) Option {
	return func(c *config) { c.seedPosts = n }
}

// WithTokenSecret sets the HS256 key for access tokens. By default a random key is used.
func WithTokenSecret(secret []byte) Option {
	return func(c *config) { c.secret = secret }
}

// WithTokenTTL sets how long access tokens are valid. The default is one hour.
func WithTokenTTL(ttl time.Duration) Option {
	return func(c *config) { c.tokenTTL = ttl }
}

// WithLogger makes the server log every request it handles.
func WithLogger(logger framework.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// New creates a Server.
func New(options ...Option) (*Server, error) {
	c := config{seedPosts: DefaultSeedPosts, logger: framework.NullLogger()}
	for _, o := range options {
		o(&c)
	}
	if c.seedPosts < 0 {
		return nil, fmt.Errorf("number of seed posts cannot be negative")
	}
	tokens, err := newTokenManager(c.secret, c.tokenTTL)
	if err != nil {
		return nil, err
	}
	s := &Server{
		store:  NewStore(c.seedPosts),
		tokens: tokens,
		logger: c.logger,
		router: chi.NewRouter(),
	}
	if s.logger == nil {
		s.logger = framework.NullLogger()
	}

	s.router.Use(chimw.Recoverer)
	s.router.Use(s.logRequests)
	s.router.Post(servicedef.PathRegister, s.handleRegister)
	s.router.Post("/signup", s.handleRegister)
	s.router.Post(servicedef.PathLogin, s.handleLogin)
	s.router.Post("/signin", s.handleLogin)
	s.router.Route(servicedef.PathPosts, s.postRoutes)
	s.router.Route(servicedef.PathOwnedPosts, func(r chi.Router) {
		r.Use(s.requireAuthForWrites)
		s.postRoutes(r)
	})
	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, struct{}{})
	})
	return s, nil
}

func (s *Server) postRoutes(r chi.Router) {
	r.Get("/", s.handleListPosts)
	r.Post("/", s.handleCreatePost)
	r.Get("/{id}", s.handleGetPost)
	r.Put("/{id}", s.handleUpdatePost)
	r.Patch("/{id}", s.handleUpdatePost)
	r.Delete("/{id}", s.handleDeletePost)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Store returns the server's data, so tests can inspect or prepare it directly.
func (s *Server) Store() *Store {
	return s.store
}

// IssueToken creates an access token for a user, as a successful login would.
func (s *Server) IssueToken(userID, email string) (string, error) {
	return s.tokens.issue(userID, email)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Printf("%s %s -> %d (%s)", r.Method, r.URL.RequestURI(), ww.Status(), time.Since(start))
	})
}

// Listener is a running fake API bound to a local port.
type Listener struct {
	URL    string
	server *http.Server
}

// Listen starts serving handler on an automatically chosen port of the loopback interface.
func Listen(handler http.Handler) (*Listener, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("failed to start mock API listener: %w", err)
	}
	l := &Listener{
		URL:    "http://" + ln.Addr().String(),
		server: &http.Server{Handler: handler, ReadHeaderTimeout: 10 * time.Second},
	}
	go func() {
		_ = l.server.Serve(ln)
	}()
	return l, nil
}

// Close stops the listener, waiting briefly for requests in progress.
func (l *Listener) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return l.server.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		data, _ = json.Marshal(err.Error())
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
