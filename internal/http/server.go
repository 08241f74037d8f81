// Package http exposes the ledger over a JSON API: list/item/credit
// writes, reads, and the monthly summary.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"financas/internal/cache"
	"financas/internal/core"
	"financas/internal/log"
	"financas/internal/services"
)

// LedgerWriter is the write side of the API. services.LedgerService
// satisfies it.
type LedgerWriter interface {
	RegisterUser(ctx context.Context, u core.User) error
	CreateList(ctx context.Context, l core.ExpenseList) (string, error)
	DeleteList(ctx context.Context, ownerID, listID string) error
	AddItem(ctx context.Context, ownerID string, it core.Item) (string, error)
	DeleteItem(ctx context.Context, ownerID, listID, itemID string) error
	CreateCredit(ctx context.Context, c core.Credit) (string, error)
	DeleteCredit(ctx context.Context, ownerID, creditID string) error
}

// LedgerReader is the read side. storage.SQLiteRepository satisfies it.
type LedgerReader interface {
	GetList(ctx context.Context, listID string) (core.ExpenseList, error)
	ItemsByList(ctx context.Context, listID string) ([]core.Item, error)
	CreditsByOwner(ctx context.Context, ownerID string) ([]core.Credit, error)
	CreditsByOwnerBetween(ctx context.Context, ownerID string, start, end time.Time) ([]core.Credit, error)
}

// SummaryReader computes monthly aggregates. services.SummaryService
// satisfies it.
type SummaryReader interface {
	MonthSummary(ctx context.Context, ownerID string, w core.MonthWindow) (core.Summary, error)
	MonthLists(ctx context.Context, ownerID string, w core.MonthWindow) ([]services.ListOverview, error)
}

// Ready reports whether the backing store answers. Used by /readyz.
type Ready interface {
	Ping(ctx context.Context) error
}

type Server struct {
	http.Server

	writer  LedgerWriter
	reader  LedgerReader
	summary SummaryReader
	ready   Ready
	logger  *log.Logger
	loc     *time.Location

	rateLimiter  *rateLimiter
	summaryCache *cache.LRU[summaryResponse]
	cacheManager *cache.Manager

	shutdownOnce sync.Once

	// injectable for window-default tests
	now func() time.Time
}

// Options carries the server's collaborators and tunables.
type Options struct {
	Addr      string
	Writer    LedgerWriter
	Reader    LedgerReader
	Summary   SummaryReader
	Ready     Ready
	Logger    *log.Logger
	Location  *time.Location
	CacheSize int
	CacheTTL  time.Duration
}

// NewServer configures routes and the summary cache, returning a
// ready-to-run server.
func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.New(log.Config{Component: log.ComponentHTTP})
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.CacheSize < 1 {
		opts.CacheSize = 256
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 30 * time.Second
	}

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:              opts.Addr,
			Handler:           log.Middleware(opts.Logger)(mux),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		writer:       opts.Writer,
		reader:       opts.Reader,
		summary:      opts.Summary,
		ready:        opts.Ready,
		logger:       opts.Logger,
		loc:          opts.Location,
		rateLimiter:  newRateLimiter(60),
		summaryCache: cache.NewLRU[summaryResponse](opts.CacheSize, opts.CacheTTL),
		cacheManager: cache.NewManager(),
		now:          time.Now,
	}

	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /users", s.guard(s.handleRegisterUser))

	mux.HandleFunc("POST /lists", s.guard(s.handleCreateList))
	mux.HandleFunc("GET /lists", s.guard(s.handleMonthLists))
	mux.HandleFunc("GET /lists/{listID}", s.guard(s.handleGetList))
	mux.HandleFunc("DELETE /lists/{listID}", s.guard(s.handleDeleteList))

	mux.HandleFunc("POST /lists/{listID}/items", s.guard(s.handleAddItem))
	mux.HandleFunc("GET /lists/{listID}/items", s.guard(s.handleListItems))
	mux.HandleFunc("DELETE /lists/{listID}/items/{itemID}", s.guard(s.handleDeleteItem))

	mux.HandleFunc("POST /credits", s.guard(s.handleCreateCredit))
	mux.HandleFunc("GET /credits", s.guard(s.handleListCredits))
	mux.HandleFunc("DELETE /credits/{creditID}", s.guard(s.handleDeleteCredit))

	mux.HandleFunc("GET /summary", s.guard(s.handleSummary))

	return s
}

// guard adds security headers and rate-limits write methods.
func (s *Server) guard(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			s.logger.WarnContext(r.Context(), "rate limit exceeded",
				log.FieldRemoteAddr, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			respondError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		next(w, r)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready.Ping(ctx); err != nil {
			s.logger.ErrorContext(r.Context(), "readiness check failed", log.FieldError, err)
			respondError(w, http.StatusServiceUnavailable, "store unavailable")
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// Shutdown stops background cleanup and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		s.cacheManager.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func (s *Server) summaryCacheKey(ownerID string, w core.MonthWindow) string {
	return ownerID + "|" + w.String()
}

// invalidateSummary drops the cached summary for the windows a write may
// have touched. The TTL covers anything this misses.
func (s *Server) invalidateSummary(ownerID string, windows ...core.MonthWindow) {
	seen := make(map[string]struct{}, len(windows)+1)
	windows = append(windows, core.CurrentMonth(s.now(), s.loc))
	for _, w := range windows {
		key := s.summaryCacheKey(ownerID, w)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		s.summaryCache.Delete(key)
	}
}
