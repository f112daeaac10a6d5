// Package access implements the per-operation authorization gate.
//
// Every guarded operation declares a Requirement. The gate resolves the
// caller from the session handle, compares the caller's role with the
// requirement and only then lets the operation body run. A rejection is
// final for the request.
package access

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// Requirement is the minimum caller a guarded operation accepts.
type Requirement int

const (
	// None admits anyone, anonymous callers included.
	None Requirement = iota
	// LoggedIn admits any resolved account.
	LoggedIn
	// Admin admits accounts whose role is exactly admin.
	Admin
)

func (r Requirement) String() string {
	switch r {
	case None:
		return "none"
	case LoggedIn:
		return "logged_in"
	case Admin:
		return "admin"
	}
	return "unknown"
}

// State is where a guarded request stands in evaluation.
type State int

const (
	Unchecked State = iota
	ResolvingIdentity
	Authorized
	Rejected
)

func (s State) String() string {
	switch s {
	case Unchecked:
		return "unchecked"
	case ResolvingIdentity:
		return "resolving_identity"
	case Authorized:
		return "authorized"
	case Rejected:
		return "rejected"
	}
	return "unknown"
}

// Resolver finds the account bound to a session handle. With
// permitAnonymous it returns (nil, nil) for a handle without a binding.
type Resolver interface {
	ResolveCurrent(ctx context.Context, handle string, permitAnonymous bool) (*models.Account, error)
}

// Decision is the outcome of one evaluation. Caller may be nil for an
// authorized anonymous request.
type Decision struct {
	State  State
	Caller *models.Account
	Err    error
}

type Gate struct {
	resolver Resolver
	logger   logging.Logger
}

func NewGate(resolver Resolver, logger logging.Logger) *Gate {
	return &Gate{resolver: resolver, logger: logger.With("module", "access")}
}

// Evaluate runs the gate for one request.
func (g *Gate) Evaluate(ctx context.Context, handle string, req Requirement) Decision {
	state := ResolvingIdentity

	caller, err := g.resolver.ResolveCurrent(ctx, handle, req == None)
	if err != nil {
		if req != None && !errors.Is(err, common.ErrSystem) {
			err = common.NewNotLoggedInError()
		}
		return g.reject(ctx, req, state, err)
	}

	switch req {
	case None:
	case LoggedIn:
		if caller == nil {
			return g.reject(ctx, req, state, common.NewNotLoggedInError())
		}
	case Admin:
		if caller == nil {
			return g.reject(ctx, req, state, common.NewNotLoggedInError())
		}
		if caller.Role != models.RoleAdmin {
			return g.reject(ctx, req, state, common.NewForbiddenError("insufficient permission"))
		}
	default:
		return g.reject(ctx, req, state, common.NewForbiddenError("insufficient permission"))
	}

	state = Authorized
	g.logger.Debug(ctx, "access granted", "requirement", req.String(), "state", state.String(), "account_id", callerID(caller))
	return Decision{State: state, Caller: caller}
}

// Authorize returns the resolved caller or the rejection error.
func (g *Gate) Authorize(ctx context.Context, handle string, req Requirement) (*models.Account, error) {
	d := g.Evaluate(ctx, handle, req)
	return d.Caller, d.Err
}

// Guard runs fn with the resolved caller once the gate has authorized the
// request. fn never runs for a rejected request.
func Guard[T any](ctx context.Context, g *Gate, handle string, req Requirement, fn func(ctx context.Context, caller *models.Account) (T, error)) (T, error) {
	caller, err := g.Authorize(ctx, handle, req)
	if err != nil {
		var zero T
		return zero, err
	}
	return fn(WithCaller(ctx, caller), caller)
}

func (g *Gate) reject(ctx context.Context, req Requirement, from State, err error) Decision {
	g.logger.Debug(ctx, "access rejected", "requirement", req.String(), "state", from.String(), "reason", common.Reason(err))
	return Decision{State: Rejected, Err: err}
}

func callerID(a *models.Account) int64 {
	if a == nil {
		return 0
	}
	return a.ID
}

type ctxKey struct{}

// WithCaller stores the authorized caller in ctx.
func WithCaller(ctx context.Context, caller *models.Account) context.Context {
	return context.WithValue(ctx, ctxKey{}, caller)
}

// CallerFromContext returns the caller stored by WithCaller. ok is false for
// anonymous requests.
func CallerFromContext(ctx context.Context) (*models.Account, bool) {
	caller, ok := ctx.Value(ctxKey{}).(*models.Account)
	return caller, ok && caller != nil
}
