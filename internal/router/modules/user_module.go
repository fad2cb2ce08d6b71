package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-user-identity/internal/interface/http"
	"github.com/oksasatya/go-user-identity/internal/interface/middleware"
)

// UserModule wires the identity handlers into routes under /usuario.
// Public: register, login, postal lookup.
// Protected: everything else; the bearer check runs before the handler.
type UserModule struct {
	Handler *handlers.UserHandler
	Tokens  middleware.Authorizer
}

func NewUserModule(h *handlers.UserHandler, tokens middleware.Authorizer) *UserModule {
	return &UserModule{Handler: h, Tokens: tokens}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	users := rg.Group("/usuario")

	users.POST("", m.Handler.Register)
	users.POST("/login", m.Handler.Login)
	users.GET("/endereco/:cep", m.Handler.LookupPostalCode)

	auth := users.Group("")
	auth.Use(middleware.BearerAuth(m.Tokens))
	{
		auth.GET("", m.Handler.GetByEmail)
		auth.DELETE("/:email", m.Handler.DeleteByEmail)
		auth.PUT("", m.Handler.UpdateProfile)
		auth.POST("/endereco", m.Handler.AddAddress)
		auth.PUT("/endereco", m.Handler.UpdateAddress)
		auth.POST("/telefone", m.Handler.AddPhone)
		auth.PUT("/telefone", m.Handler.UpdatePhone)
		auth.GET("/busca", m.Handler.Search)
	}
}
