package mcp

import (
	"context"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"smartassembly/internal/metrics"
	"smartassembly/internal/resolver"
	"smartassembly/internal/store"
)

const defaultResolveTimeout = 15 * time.Second

type Server struct {
	src     store.Source
	owners  resolver.OwnerLookup
	chainID uint64
	timeout time.Duration
	log     logrus.FieldLogger
	metrics *metrics.Resolver
	mcp     *sdk.Server
}

type Option func(*Server)

// WithResolveTimeout bounds how long get_smart_assembly waits for a complete
// result before answering with what it has.
func WithResolveTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Server) { s.log = log }
}

func WithMetrics(m *metrics.Resolver) Option {
	return func(s *Server) { s.metrics = m }
}

func NewServer(src store.Source, owners resolver.OwnerLookup, chainID uint64, version string, opts ...Option) *Server {
	s := &Server{
		src:     src,
		owners:  owners,
		chainID: chainID,
		timeout: defaultResolveTimeout,
		log:     logrus.StandardLogger(),
		mcp: sdk.NewServer(&sdk.Implementation{
			Name:    "smartassembly",
			Version: version,
		}, nil),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	return s
}

func (s *Server) Run(ctx context.Context, transport sdk.Transport) error {
	return s.mcp.Run(ctx, transport)
}
