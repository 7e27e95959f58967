package handlers

import (
	"github.com/sirupsen/logrus"
	"github.com/taskhive-dev/taskhive/internal/access"
	"github.com/taskhive-dev/taskhive/internal/auth"
	"github.com/taskhive-dev/taskhive/internal/services"
	"github.com/taskhive-dev/taskhive/internal/store"
	"github.com/taskhive-dev/taskhive/internal/ws"
)

// Deps carries every collaborator a handler needs. Constructed once in
// main and passed down; nothing reaches into package state.
type Deps struct {
	Store    *store.Store
	Eval     *access.Evaluator
	Tokens   *auth.TokenManager
	Hasher   *auth.PasswordHasher
	Notifier *services.Notifier
	Hub      *ws.Hub
	Log      *logrus.Logger
}
