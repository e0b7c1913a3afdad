package model

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Why a session ended
const (
	CloseReasonClient   = "client"
	CloseReasonIdle     = "idle"
	CloseReasonShutdown = "shutdown"
)

type Session struct {
	ID         string
	CreatedAt  time.Time
	LastActive time.Time

	// Set once the session has ended
	ClosedAt     time.Time
	CloseReason  string
	Spins        int
	FinalBalance int64
}

// SessionClaims - access token claims, Subject holds the session ID
type SessionClaims struct {
	jwt.RegisteredClaims
}
