// Package accountservice lets a signed-in user erase their own account.
package accountservice

import (
	"context"

	"github.com/database-playground/account-eraser/httpapi"
	"github.com/database-playground/account-eraser/internal/erasure"
	"github.com/gin-gonic/gin"
)

// Eraser erases the account a token belongs to.
type Eraser interface {
	Erase(ctx context.Context, token string) (erasure.Result, error)
}

// AccountService serves the self-service account endpoints.
type AccountService struct {
	eraser Eraser
}

// NewAccountService creates an AccountService backed by eraser.
func NewAccountService(eraser Eraser) *AccountService {
	return &AccountService{
		eraser: eraser,
	}
}

func (s *AccountService) Register(router gin.IRouter) {
	router.POST("/delete-account", s.DeleteAccount)
}

var _ httpapi.Service = (*AccountService)(nil)
