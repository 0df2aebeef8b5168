// Package server exposes invoice generation over HTTP.
package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/rezonia/facturx/internal/compiler"
	"github.com/rezonia/facturx/internal/history"
	"github.com/rezonia/facturx/internal/model"
	"github.com/rezonia/facturx/internal/pdf"
	"github.com/rezonia/facturx/internal/zugferd"
)

// Config holds server configuration
type Config struct {
	Address      string
	HistoryFile  string
	Profile      model.Profile
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Debug        bool
}

// Server represents the HTTP API server
type Server struct {
	config   *Config
	router   *gin.Engine
	compiler *compiler.Compiler
	renderer *pdf.Renderer
	store    *history.Store
	log      zerolog.Logger
}

// NewServer creates a new API server
func NewServer(config *Config, log zerolog.Logger) *Server {
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(log))

	s := &Server{
		config:   config,
		router:   router,
		compiler: compiler.New(compiler.WithProfile(config.Profile)),
		renderer: pdf.NewRenderer(),
		store:    history.NewStore(config.HistoryFile),
		log:      log,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/generate/xml", s.handleGenerateXML)
		v1.POST("/generate/pdf", s.handleGeneratePDF)
		v1.POST("/generate/zugferd", s.handleGenerateZUGFeRD)

		v1.GET("/history", s.handleHistory)
		v1.GET("/next-id", s.handleNextID)
	}
}

// Run starts the HTTP server
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:         s.config.Address,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	s.log.Info().Str("addr", s.config.Address).Msg("starting http server")
	return srv.ListenAndServe()
}

// Handler returns the http.Handler for use with custom servers
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// bindInvoice decodes and validates the request payload. A nil invoice
// means the error response has already been written.
func (s *Server) bindInvoice(c *gin.Context) *model.Invoice {
	var req InvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Details: err.Error()})
		return nil
	}

	inv, err := req.Invoice()
	if err != nil {
		var verr *model.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: verr.Message, Details: verr.Field})
			return nil
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return nil
	}
	return inv
}

func (s *Server) handleGenerateXML(c *gin.Context) {
	inv := s.bindInvoice(c)
	if inv == nil {
		return
	}

	result, err := s.compiler.Compile(inv)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "generation failed", Details: err.Error()})
		return
	}
	s.recordHistory(inv)

	for _, w := range result.Warnings {
		s.log.Warn().Str("invoice", inv.ID).Msg(w)
	}

	c.Header("Content-Disposition", "attachment; filename=factur-x.xml")
	c.Data(http.StatusOK, "application/xml", result.XML)
}

func (s *Server) handleGeneratePDF(c *gin.Context) {
	inv := s.bindInvoice(c)
	if inv == nil {
		return
	}

	out, err := s.renderer.Render(inv)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "generation failed", Details: err.Error()})
		return
	}
	s.recordHistory(inv)

	c.Header("Content-Disposition", "attachment; filename="+inv.ID+".pdf")
	c.Data(http.StatusOK, "application/pdf", out)
}

func (s *Server) handleGenerateZUGFeRD(c *gin.Context) {
	inv := s.bindInvoice(c)
	if inv == nil {
		return
	}

	result, err := s.compiler.Compile(inv)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "generation failed", Details: err.Error()})
		return
	}
	pdfData, err := s.renderer.Render(inv)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "generation failed", Details: err.Error()})
		return
	}
	combined, err := zugferd.Attach(pdfData, result.XML)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "generation failed", Details: err.Error()})
		return
	}
	s.recordHistory(inv)

	c.Header("Content-Disposition", "attachment; filename="+inv.ID+"-zugferd.pdf")
	c.Data(http.StatusOK, "application/pdf", combined)
}

func (s *Server) handleHistory(c *gin.Context) {
	h, err := s.store.Load()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "history unavailable", Details: err.Error()})
		return
	}
	c.JSON(http.StatusOK, h)
}

func (s *Server) handleNextID(c *gin.Context) {
	id, err := s.store.NextID()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "counter unavailable", Details: err.Error()})
		return
	}
	c.JSON(http.StatusOK, NextIDResponse{ID: id})
}

// recordHistory persists the parties for prefilling later invoices.
// Failures are logged, never surfaced; the generated document has already
// been produced.
func (s *Server) recordHistory(inv *model.Invoice) {
	if err := s.store.Record(inv); err != nil {
		s.log.Error().Err(err).Str("invoice", inv.ID).Msg("record history")
	}
}
