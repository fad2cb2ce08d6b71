package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	domerrors "github.com/oksasatya/go-user-identity/internal/domain/errors"
	"github.com/oksasatya/go-user-identity/pkg/helpers"
	"github.com/oksasatya/go-user-identity/pkg/response"
)

const CtxUserEmailKey = "userEmail"

// Authorizer returns the subject of a signature-valid, unexpired token.
type Authorizer interface {
	Authorize(token string) (string, error)
}

// BearerAuth validates the "Authorization: Bearer <token>" header and sets
// userEmail (the token subject) in the Gin context on success.
func BearerAuth(tokens Authorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := helpers.StripBearer(c.GetHeader("Authorization"))
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "missing bearer token", nil)
			return
		}
		email, err := tokens.Authorize(token)
		if err != nil {
			msg := "invalid token"
			if domerrors.IsUnauthorized(err) {
				msg = "token expired"
			}
			response.Abort(c, http.StatusUnauthorized, msg, nil)
			return
		}
		c.Set(CtxUserEmailKey, email)
		c.Next()
	}
}
