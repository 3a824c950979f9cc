package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/netlens/netlens/pkg/analysis"
	"github.com/netlens/netlens/pkg/auth"
	"github.com/netlens/netlens/pkg/llm"
	"github.com/netlens/netlens/pkg/log"
	"github.com/netlens/netlens/pkg/manager"
	"github.com/netlens/netlens/pkg/metrics"
)

const (
	requestTimeout = 60 * time.Second
	// Multipart uploads are parsed with this much memory before spilling
	// to disk.
	multipartMemory = 10 << 20

	loginPerSecond = 1.0
	loginBurst     = 5

	timeFormat = time.RFC3339
)

// Server is the REST surface binding the manager, the analysis
// controller and the token manager together.
type Server struct {
	mgr      *manager.Manager
	analysis *analysis.Controller
	tokens   *auth.TokenManager
	logins   *loginLimiter
	router   chi.Router
	http     *http.Server

	stopJanitor chan struct{}
}

// NewServer wires a server over the manager and LLM adapter.
func NewServer(mgr *manager.Manager, adapter llm.Adapter) *Server {
	s := &Server{
		mgr:      mgr,
		analysis: analysis.NewController(mgr.Store(), adapter, mgr.EventBroker()),
		tokens:   auth.NewTokenManager(auth.DefaultSessionTTL),
		logins:   newLoginLimiter(loginPerSecond, loginBurst),
	}
	s.router = s.routes()
	return s
}

// Router exposes the handler tree. Used by tests and by Start.
func (s *Server) Router() http.Handler { return s.router }

// Controller exposes the analysis controller for shutdown draining.
func (s *Server) Controller() *analysis.Controller { return s.analysis }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(withMetrics)
	r.Use(withTimeout(requestTimeout))

	// Unauthenticated surface.
	r.Post("/login", s.handleLogin)
	r.Get("/healthz", metrics.HealthHandler())
	r.Get("/readyz", metrics.ReadyHandler())
	r.Get("/version", s.handleVersion)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	// Everything else needs a bearer token.
	r.Group(func(r chi.Router) {
		r.Use(s.withAuth)

		r.Post("/change-password", s.handleChangePassword)
		r.Post("/logout", s.handleLogout)

		r.Route("/users", func(r chi.Router) {
			r.Use(requireAdmin)
			r.Get("/", s.handleListUsers)
			r.Post("/", s.handleCreateUser)
			r.Delete("/{username}", s.handleDeleteUser)
		})

		r.Get("/projects", s.handleListProjects)
		r.Post("/projects", s.handleCreateProject)

		r.Route("/projects/{pid}", func(r chi.Router) {
			r.Use(s.withProjectRole)

			// Read surface, open to every role.
			r.Group(func(r chi.Router) {
				r.Use(requireRead())
				r.Get("/", s.handleGetProject)
				r.Get("/members", s.handleListMembers)
				r.Get("/folders", s.handleListFolders)
				r.Get("/documents", s.handleListDocuments)
				r.Get("/documents/{did}", s.handleGetDocument)
				r.Get("/documents/{did}/preview", s.handlePreviewDocument)
				r.Get("/documents/{did}/download", s.handleDownloadDocument)
				r.Get("/documents/{did}/versions", s.handleListVersions)
				r.Get("/documents/{did}/content", s.handleDocumentContent)
				r.Get("/config-summary", s.handleConfigSummary)
				r.Get("/config-summary/export", s.handleConfigSummaryExport)
				r.Get("/summary-metrics", s.handleSummaryMetrics)
				r.Get("/devices", s.handleListDevices)
				r.Get("/devices/{name}", s.handleGetDevice)
				r.Get("/devices/{name}/configs", s.handleDeviceConfigs)
				r.Get("/devices/{name}/image", s.handleGetDeviceImage)
				r.Get("/analyze/{kind}", s.handleGetProjectArtifact)
				r.Get("/devices/{name}/analyze/{kind}", s.handleGetDeviceArtifact)
				r.Get("/analysis/full", s.handleFullAnalysis)
				r.Get("/topology", s.handleGetTopology)
				r.Get("/network-topology", s.handleNetworkTopology)
				r.Get("/options", s.handleListOptions)
			})

			// Mutating surface for engineers and above.
			r.Group(func(r chi.Router) {
				r.Use(requireUpload())
				r.Post("/documents", s.handleUpload)
				r.Patch("/documents/{did}", s.handlePatchDocument)
				r.Delete("/documents/{did}", s.handleDeleteDocument)
				r.Post("/documents/{did}/move", s.handleMoveDocument)
				r.Post("/documents/{did}/rename", s.handleRenameDocument)
				r.Post("/folders", s.handleCreateFolder)
				r.Patch("/folders/{fid}", s.handlePatchFolder)
				r.Delete("/folders/{fid}", s.handleDeleteFolder)
				r.Put("/devices/{name}/image", s.handlePutDeviceImage)
				r.Post("/analyze/{kind}", s.handleSubmitProjectAnalysis)
				r.Post("/analyze/{kind}/verify", s.handleVerifyProjectAnalysis)
				r.Post("/devices/{name}/analyze/{kind}", s.handleSubmitDeviceAnalysis)
				r.Post("/devices/{name}/analyze/{kind}/verify", s.handleVerifyDeviceAnalysis)
				r.Put("/topology/layout", s.handleSaveLayout)
				r.Post("/options", s.handleAddOption)
			})

			// Management surface.
			r.Group(func(r chi.Router) {
				r.Use(requireManage())
				r.Patch("/", s.handleUpdateProject)
				r.Delete("/", s.handleDeleteProject)
				r.Delete("/devices/{name}", s.handleDeleteDevice)
				r.Post("/members", s.handleAddMember)
				r.Patch("/members/{username}", s.handleUpdateMember)
				r.Delete("/members/{username}", s.handleRemoveMember)
			})
		})
	})

	return r
}

// Start begins serving and blocks until the listener closes.
func (s *Server) Start(addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.stopJanitor = make(chan struct{})
	go s.sessionJanitor()
	metrics.RegisterComponent("api", true, "listening on "+addr)
	log.WithComponent("api").Info().Str("addr", addr).Msg("REST API listening")
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// sessionJanitor drops expired bearer tokens periodically.
func (s *Server) sessionJanitor() {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.tokens.CleanupExpired()
		case <-s.stopJanitor:
			return
		}
	}
}

// Shutdown stops the listener and drains in-flight analysis jobs.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	if s.http != nil {
		err = s.http.Shutdown(ctx)
	}
	if s.stopJanitor != nil {
		close(s.stopJanitor)
	}
	s.analysis.Wait()
	return err
}
