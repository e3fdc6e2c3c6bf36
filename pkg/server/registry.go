package server

import (
	"github.com/NeuralTrust/ConsensusSentry/pkg/config"
	handlers "github.com/NeuralTrust/ConsensusSentry/pkg/handlers/http"
	"github.com/NeuralTrust/ConsensusSentry/pkg/middleware"
	"github.com/NeuralTrust/ConsensusSentry/pkg/server/router"
	"github.com/sirupsen/logrus"
)

type (
	RegistryServerDI struct {
		MiddlewareTransport middleware.Transport
		HandlerTransport    handlers.HandlerTransport
		Config              *config.Config
		Logger              *logrus.Logger
	}
	RegistryServer struct {
		*BaseServer
	}
)

// NewRegistryServer builds the registry API. Routes are registered up front
// so the app can be exercised with fiber's Test before Run.
func NewRegistryServer(di RegistryServerDI) *RegistryServer {
	s := &RegistryServer{BaseServer: NewBaseServer(di.Config, di.Logger)}

	if di.MiddlewareTransport.PanicRecoverMiddleware != nil {
		s.Router.Use(di.MiddlewareTransport.PanicRecoverMiddleware.Middleware())
	}
	if di.MiddlewareTransport.CORSMiddleware != nil {
		s.Router.Use(di.MiddlewareTransport.CORSMiddleware.Middleware())
	}
	s.setupHealthCheck()
	s.setupMetricsEndpoint()
	s.WithRouters(router.NewRegistryRouter(&di.MiddlewareTransport, di.HandlerTransport))
	return s
}

func (s *RegistryServer) Run() error {
	addr := s.addr()
	s.Logger.WithField("addr", addr).Info("starting registry server")
	return s.Router.Listen(addr)
}

func (s *RegistryServer) Shutdown() error {
	return s.Router.Shutdown()
}
