// Package httpkit provides HTTP utilities including identity abstraction.
package httpkit

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Identity represents the authenticated account's identity.
// This interface abstracts identity extraction from the web framework,
// allowing handlers to access account information without depending on Gin.
type Identity interface {
	// AccountID returns the authenticated account's ID. Every resource in
	// the system is scoped to this ID.
	AccountID() uuid.UUID
	// IsAuthenticated returns true if the request carries a valid token.
	IsAuthenticated() bool
}

type identity struct {
	accountID     uuid.UUID
	authenticated bool
}

func (i *identity) AccountID() uuid.UUID  { return i.accountID }
func (i *identity) IsAuthenticated() bool { return i.authenticated }

// GetIdentity extracts the Identity from a Gin context.
// Returns an unauthenticated identity if account info is not present.
func GetIdentity(c *gin.Context) Identity {
	accountID, ok := c.Get(ContextAccountIDKey)
	if !ok {
		return &identity{}
	}

	id, ok := accountID.(uuid.UUID)
	if !ok {
		return &identity{}
	}

	return &identity{accountID: id, authenticated: true}
}

// MustGetIdentity extracts the Identity from a Gin context.
// If the request is not authenticated, it aborts with 401 Unauthorized and returns nil.
func MustGetIdentity(c *gin.Context) Identity {
	id := GetIdentity(c)
	if !id.IsAuthenticated() {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil
	}
	return id
}
