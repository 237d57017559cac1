package middlewares

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"erdiagram/internal/responses"
	"erdiagram/internal/utils"
)

// SubjectKey holds the token subject in the gin context.
const SubjectKey = "subject"

// Authenticate requires "Authorization: Bearer <token>". The token must
// equal apiToken or be a valid API token signed with jwtSecret. An empty
// apiToken or jwtSecret disables that check.
func Authenticate(apiToken string, jwtSecret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			responses.Abort(c, http.StatusUnauthorized, errors.New("missing Authorization header"), "Unauthorized")
			return
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			responses.Abort(c, http.StatusUnauthorized, errors.New("invalid Authorization format"), "Unauthorized")
			return
		}
		token := parts[1]

		if apiToken != "" && subtle.ConstantTimeCompare([]byte(token), []byte(apiToken)) == 1 {
			c.Set(SubjectKey, "api-token")
			c.Next()
			return
		}

		if len(jwtSecret) > 0 {
			claims, err := utils.VerifyToken(token, jwtSecret)
			if err == nil {
				c.Set(SubjectKey, claims.Subject)
				c.Next()
				return
			}
			responses.Abort(c, http.StatusUnauthorized, err, "Unauthorized")
			return
		}

		responses.Abort(c, http.StatusUnauthorized, errors.New("invalid token"), "Unauthorized")
	}
}
