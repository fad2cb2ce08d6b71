package router

import (
	appuser "github.com/oksasatya/go-user-identity/internal/application"
	"github.com/oksasatya/go-user-identity/internal/container"
	"github.com/oksasatya/go-user-identity/internal/infrastructure/cache"
	"github.com/oksasatya/go-user-identity/internal/infrastructure/postal"
	"github.com/oksasatya/go-user-identity/internal/infrastructure/search"
	handlers "github.com/oksasatya/go-user-identity/internal/interface/http"
	"github.com/oksasatya/go-user-identity/internal/router/modules"
)

type UserModuleDeps struct {
	Service *appuser.Service
	Handler *handlers.UserHandler
}

// BuildService assembles the identity service from the container. Optional
// collaborators are attached only when their backend is present.
func BuildService(c *container.Container) *appuser.Service {
	svc := appuser.NewService(c.Store, c.Hasher, c.JWT, c.Logger)
	svc.AppName = c.Config.AppName
	svc.Postal = postal.NewViaCEP(c.Config.ViaCEPBaseURL)
	if c.Redis != nil {
		svc.Cache = cache.NewProfileCache(c.Redis, c.Config.ProfileCacheTTL, c.Logger)
	}
	if c.ES != nil {
		svc.Indexer = search.NewUserIndexer(c.ES, c.Config.ESUsersIndex)
	}
	if c.RabbitPub != nil {
		svc.Mail = c.RabbitPub
	}
	return svc
}

func buildUserDeps(c *container.Container) UserModuleDeps {
	service := BuildService(c)
	return UserModuleDeps{
		Service: service,
		Handler: handlers.NewUserHandler(service, c.Logger),
	}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry, c *container.Container) {
	userDeps := buildUserDeps(c)
	r.Add(modules.NewUserModule(userDeps.Handler, c.JWT))
	if c.Config.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
