// Package backend checks reachability of the Supabase auth service and reports the current session.
package backend

import (
	"context"
	"errors"
	"strings"

	"github.com/supabase-community/gotrue-go"
	"github.com/supabase-community/gotrue-go/types"
	"go.uber.org/zap"

	"github.com/theimaginaryfoundation/journal-coach/journal/logging"
)

const authPath = "/auth/v1"

// AuthClient is the part of the GoTrue client the probe uses. gotrue.Client satisfies it.
type AuthClient interface {
	HealthCheck() (*types.HealthCheckResponse, error)
	GetUser() (*types.UserResponse, error)
}

// Session is the signed-in state reported by TestConnection.
type Session struct {
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type"`
	User        types.User `json:"user"`
}

// Result is the probe outcome. Session is null when no user is signed in.
type Result struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Session *Session `json:"session"`
}

// NewGoTrueClient points a GoTrue client at <baseURL>/auth/v1 using the anon key, and attaches
// accessToken as the bearer token when one is given.
func NewGoTrueClient(baseURL, anonKey, accessToken string) gotrue.Client {
	c := gotrue.New("", anonKey).WithCustomGoTrueURL(strings.TrimRight(baseURL, "/") + authPath)
	if accessToken != "" {
		c = c.WithToken(accessToken)
	}
	return c
}

type Probe struct {
	client      AuthClient
	accessToken string
	logger      *zap.Logger
}

// NewProbe wraps client. accessToken is the caller's session token; empty means signed out.
func NewProbe(client AuthClient, accessToken string, logger *zap.Logger) *Probe {
	return &Probe{
		client:      client,
		accessToken: accessToken,
		logger:      logging.OrNop(logger),
	}
}

// TestConnection performs one request against the auth service. Without a session it checks
// /health; with one it loads the signed-in user.
func (p *Probe) TestConnection(ctx context.Context) Result {
	session, err := p.currentSession(ctx)
	if err != nil {
		p.logger.Warn("backend connection failed", zap.Error(err))
		return Result{Success: false, Message: "connection error: " + err.Error()}
	}
	return Result{Success: true, Message: "connection successful", Session: session}
}

func (p *Probe) currentSession(ctx context.Context) (*Session, error) {
	if p.client == nil {
		return nil, errors.New("auth client is nil")
	}
	// The GoTrue client takes no context; honour cancellation before the call.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if p.accessToken == "" {
		health, err := p.client.HealthCheck()
		if err != nil {
			return nil, err
		}
		p.logger.Debug("auth service healthy", zap.String("name", health.Name), zap.String("version", health.Version))
		return nil, nil
	}

	user, err := p.client.GetUser()
	if err != nil {
		return nil, err
	}
	return &Session{
		AccessToken: p.accessToken,
		TokenType:   "bearer",
		User:        user.User,
	}, nil
}
