package middleware

import (
	"context"
	"errors"
	"net/http"

	"anoa.com/welfaredesk/internal/entity"
	"anoa.com/welfaredesk/pkg/credential"
	"anoa.com/welfaredesk/pkg/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AccountFinder loads the account a credential refers to.
type AccountFinder interface {
	FindByID(ctx context.Context, id string) (*entity.Account, error)
}

type AuthMiddleware struct {
	accounts AccountFinder
	creds    *credential.Manager
}

func NewAuthMiddleware(accounts AccountFinder, creds *credential.Manager) *AuthMiddleware {
	return &AuthMiddleware{accounts: accounts, creds: creds}
}

// Authenticate verifies the bearer credential, reloads the account on every
// request and admits it only when its role is in roles. No roles admits any
// authenticated account.
func (m *AuthMiddleware) Authenticate(roles ...entity.Role) gin.HandlerFunc {
	allowed := entity.NewRoleSet(roles...)

	return func(c *gin.Context) {
		raw, err := credential.FromHeader(c.GetHeader("Authorization"))
		if err != nil {
			response.AbortFail(c, http.StatusForbidden, "Token not provided.")
			return
		}

		claims, err := m.creds.Verify(raw)
		if err != nil {
			response.AbortFail(c, http.StatusForbidden, "Invalid or expired token.")
			return
		}

		account, err := m.accounts.FindByID(c.Request.Context(), claims.AccountID())
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				response.AbortFail(c, http.StatusNotFound, "User not found.")
				return
			}
			response.Logger(c).Error("failed to load account", zap.Error(err))
			response.AbortFail(c, http.StatusInternalServerError, "Internal server error.")
			return
		}

		if !allowed.Allows(account.Role) {
			response.AbortFail(c, http.StatusForbidden, "Access denied.")
			return
		}

		c.Set(response.AccountKey, account)
		c.Set(response.AccountIDKey, account.ID)
		c.Next()
	}
}
