package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"streamgate/internal/logger"
	"streamgate/internal/refresh"
	"streamgate/internal/resolver"
	"streamgate/internal/store"
	"streamgate/internal/xtream"
)

// Server represents the API server
type Server struct {
	router       *gin.Engine
	store        *store.Store
	xtream       *xtream.Service
	resolver     *resolver.Service
	refresher    *refresh.Refresher
	configDir    string
	resolversDir string
	proxyURL     string
	version      string
	logger       *logger.Logger
}

// Dependencies carries the services the server routes to
type Dependencies struct {
	Store        *store.Store
	Xtream       *xtream.Service
	Resolver     *resolver.Service
	Refresher    *refresh.Refresher
	ConfigDir    string
	ResolversDir string
	ProxyURL     string
	Version      string
}

// NewServer creates a new API server instance
func NewServer(deps Dependencies) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	s := &Server{
		router:       router,
		store:        deps.Store,
		xtream:       deps.Xtream,
		resolver:     deps.Resolver,
		refresher:    deps.Refresher,
		configDir:    deps.ConfigDir,
		resolversDir: deps.ResolversDir,
		proxyURL:     deps.ProxyURL,
		version:      deps.Version,
		logger:       logger.AppLogger(),
	}

	router.Use(requestIDMiddleware())
	router.Use(errorHandlerMiddleware())
	router.Use(metricsMiddleware())
	router.Use(gzipMiddleware())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		MaxAge:          12 * time.Hour,
	}))

	s.setupRoutes()

	return s
}

// Router exposes the gin engine, primarily for tests
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run starts the API server on the specified port
func (s *Server) Run(port int) error {
	return s.router.Run(fmt.Sprintf(":%d", port))
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Xtream facade
	s.router.GET("/xtream/:id/player_api.php", s.playerAPI)
	s.router.POST("/xtream/:id/player_api.php", s.playerAPI)
	s.router.GET("/xtream/:id/get.php", s.getPHP)

	// Native Xtream stream paths stay disabled: clients must follow the
	// direct_source links instead.
	s.router.GET("/xtream/:id/live/*any", s.streamsDisabled)
	s.router.GET("/xtream/:id/movie/*any", s.streamsDisabled)
	s.router.GET("/xtream/:id/series/*any", s.streamsDisabled)

	// Resolver endpoints
	s.router.GET("/tv", s.resolveRedirect("tv"))
	s.router.HEAD("/tv", s.resolveRedirect("tv"))
	s.router.POST("/tv", s.resolveJSON("tv"))
	s.router.GET("/video", s.resolveRedirect("video"))
	s.router.HEAD("/video", s.resolveRedirect("video"))
	s.router.POST("/video", s.resolveJSON("video"))
	s.router.GET("/play", s.resolveRedirect("tv"))
	s.router.HEAD("/play", s.resolveRedirect("tv"))
	s.router.GET("/debug/tv", s.resolveDebug("tv"))
	s.router.GET("/debug/video", s.resolveDebug("video"))

	// Converted playlist downloads
	s.router.GET("/lists/:file", s.downloadList)

	admin := s.router.Group("/admin")
	{
		admin.GET("/settings", s.getSettings)
		admin.PUT("/settings", s.putSettings)

		admin.GET("/playlists", s.listPlaylists)
		admin.POST("/playlists", s.createPlaylist)
		admin.PUT("/playlists/:id", s.updatePlaylist)
		admin.DELETE("/playlists/:id", s.deletePlaylist)
		admin.POST("/playlists/:id/refresh", s.refreshPlaylist)

		admin.GET("/xtreams", s.listAccounts)
		admin.POST("/xtreams", s.createAccount)
		admin.PUT("/xtreams/:id", s.updateAccount)
		admin.DELETE("/xtreams/:id", s.deleteAccount)

		admin.POST("/convert", s.convertText)
	}
}

// streamsDisabled rejects the native Xtream stream paths
func (s *Server) streamsDisabled(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"error": "stream endpoints are disabled, follow the direct_source links",
	})
}
