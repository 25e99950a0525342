// Copyright 2025 UMH Systems GmbH
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package httpapi exposes the payment engine over HTTP. It is a thin host
// adapter: one route per action, plus state, description and event
// retrieval. All domain decisions stay inside the engine.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/united-manufacturing-hub/payment-core/pkg/engine"
	"github.com/united-manufacturing-hub/payment-core/pkg/logger"
)

// ServerConfig configures the HTTP adapter.
type ServerConfig struct {
	// Address is the listen address, e.g. ":8080".
	Address string
	// Debug enables gin debug mode and request logging.
	Debug bool
}

// DefaultServerConfig returns the configuration used when none is given.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Address: ":8080",
	}
}

// Validate checks the configuration.
func (c *ServerConfig) Validate() error {
	if c.Address == "" {
		return errors.New("address must not be empty")
	}

	return nil
}

// Server wraps the HTTP server with lifecycle management.
type Server struct {
	server *http.Server
	logger *zap.SugaredLogger
	engine *engine.Engine
	config *ServerConfig
}

// NewServer creates a new HTTP server around the given engine.
func NewServer(eng *engine.Engine, config *ServerConfig, log *zap.SugaredLogger) (*Server, error) {
	if eng == nil {
		return nil, errors.New("engine must not be nil")
	}

	if config == nil {
		config = DefaultServerConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid server configuration: %w", err)
	}

	if log == nil {
		log = logger.For(logger.ComponentHTTPAPI)
	}

	return &Server{
		engine: eng,
		config: config,
		logger: log,
	}, nil
}

// Start runs the HTTP server until it fails or Stop is called. It blocks.
func (s *Server) Start(ctx context.Context) error {
	if s.config.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.loggingMiddleware())

	s.registerRoutes(router)

	s.server = &http.Server{
		Addr:         s.config.Address,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 65 * time.Second, // above the event await timeout
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Infow("Starting HTTP server",
		"address", s.config.Address,
		"debug", s.config.Debug,
	)

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server failed: %w", err)
	}

	return nil
}

// Stop gracefully stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}

	s.logger.Info("Stopping HTTP server")

	return s.server.Shutdown(ctx)
}

// Router builds the gin engine without starting a listener. Used by tests.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(gin.Recovery())
	s.registerRoutes(router)

	return router
}

func (s *Server) registerRoutes(router *gin.Engine) {
	v1 := router.Group("/v1")
	{
		v1.POST("/actions/:name", s.handleAction)
		v1.GET("/state", s.handleState)
		v1.GET("/description", s.handleDescription)
		v1.GET("/events/next", s.handleEventNext)
		v1.GET("/events/poll", s.handleEventPoll)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// loggingMiddleware provides request logging in debug mode.
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		if s.config.Debug {
			s.logger.Infow("HTTP request",
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"status", c.Writer.Status(),
				"duration", time.Since(start),
			)
		}
	}
}
