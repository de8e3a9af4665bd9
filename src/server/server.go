package server

import (
	"fmt"
	"net/http"
	"strings"

	"trade-bridge/src/gate"
	"trade-bridge/src/logger"
	"trade-bridge/src/models"
	"trade-bridge/src/stream"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Server
// -----------------------------------------------------------------------------

type Server struct {
	Config *models.MConfig
	Logger *logger.Logger
	engine *gin.Engine

	hub      *stream.Hub
	registry *SessionRegistry
	router   *CommandRouter
	gate     *gate.Gate
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewServer(cfg *models.MConfig, hub *stream.Hub, registry *SessionRegistry, router *CommandRouter, g *gate.Gate, log *logger.Logger) *Server {
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		Config:   cfg,
		Logger:   log,
		engine:   gin.Default(),
		hub:      hub,
		registry: registry,
		router:   router,
		gate:     g,
	}

	// Add CORS Middleware
	s.engine.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Bridge-Secret")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *Server) setupRoutes() {
	// REST API endpoints
	s.engine.GET("/api/health", s.getHealth)
	s.engine.GET("/api/status", s.getStatus)
	s.engine.GET("/api/parameters", s.getParameters)

	// WebSocket endpoint for control clients
	s.engine.GET("/ws", s.handleWebSocket)

	// Bridge push/poll surface for the external terminal process
	if s.Config.Bridge.Enabled {
		ea := s.engine.Group("/api/ea", s.bridgeAuth())
		ea.POST("/update", s.postBridgeUpdate)
		ea.GET("/commands", s.getBridgeCommands)
	}
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	s.Logger.Info("Starting server on %s", addr)
	return s.engine.Run(addr)
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *Server) getHealth(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":      "ok",
		"state":       s.hub.State().State,
		"connections": s.registry.Count(),
	})
}

// -----------------------------------------------------------------------------

func (s *Server) getStatus(c *gin.Context) {
	c.JSON(200, gin.H{
		"symbol":       s.Config.Broker.Symbol,
		"source":       s.Config.Broker.Source,
		"trades_today": s.gate.TradesToday(),
		"parameters":   s.gate.Params().Get(),
	})
}

// -----------------------------------------------------------------------------

func (s *Server) getParameters(c *gin.Context) {
	c.JSON(200, s.gate.Params().Get())
}

// -----------------------------------------------------------------------------
// WebSocket Handler
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	session := newSession(uuid.New().String(), s, conn, s.Config.Stream.SessionQueueSize)
	s.registry.Add(session)
	s.hub.Register(session)
	s.Logger.Info("Session %s connected from %s", session.ID(), c.ClientIP())

	go session.writePump()
	go session.readPump()
}

// -----------------------------------------------------------------------------

// dropSession unwinds everything attached to a closed session.
func (s *Server) dropSession(session *Session) {
	if s.registry.Remove(session.ID()) {
		s.hub.Unregister(session)
	}
}
