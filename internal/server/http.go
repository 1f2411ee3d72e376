package server

import (
	"modqueue/internal/conf"
	"modqueue/internal/service"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware/logging"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	khttp "github.com/go-kratos/kratos/v2/transport/http"
	"github.com/google/wire"
)

// ProviderSet is server providers.
var ProviderSet = wire.NewSet(NewHTTPServer)

// NewHTTPServer creates the HTTP server and registers all routes.
func NewHTTPServer(c *conf.Server, ms *service.ModerationService, as *service.AdminService, logger log.Logger) *khttp.Server {
	opts := []khttp.ServerOption{
		khttp.Middleware(
			recovery.Recovery(),
			logging.Server(logger),
		),
	}
	if c.HTTP.Network != "" {
		opts = append(opts, khttp.Network(c.HTTP.Network))
	}
	if c.HTTP.Addr != "" {
		opts = append(opts, khttp.Address(c.HTTP.Addr))
	}
	if timeout := conf.ParseDuration(c.HTTP.Timeout, 0); timeout > 0 {
		opts = append(opts, khttp.Timeout(timeout))
	}

	srv := khttp.NewServer(opts...)
	registerRoutes(srv, ms, as)
	return srv
}

func registerRoutes(srv *khttp.Server, ms *service.ModerationService, as *service.AdminService) {
	r := srv.Route("/api/v1")

	r.POST("/moderate/text", ms.SubmitText)
	r.POST("/moderate/image", ms.SubmitImage)

	// Static moderation paths must precede the {id} wildcard.
	r.GET("/moderation/failed", as.ListFailed)
	r.DELETE("/moderation/failed/clear", as.ClearFailed)
	r.POST("/moderation/failed/retry", as.RetryFailed)
	r.DELETE("/moderation/failed/{id}/clear", as.ClearFailedByID)
	r.GET("/moderation/all", as.ListAll)
	r.DELETE("/moderation/clear_all", as.ClearAll)
	r.DELETE("/moderation/clear/{id}", as.ClearByID)
	r.GET("/moderation/{id}", ms.GetStatus)

	r.GET("/health", as.Health)
	r.GET("/debug/db", as.DebugDB)
}
