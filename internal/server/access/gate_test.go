package access

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver struct {
	byHandle map[string]*models.Account
	err      error
	calls    []bool
}

func (f *fakeResolver) ResolveCurrent(ctx context.Context, handle string, permitAnonymous bool) (*models.Account, error) {
	f.calls = append(f.calls, permitAnonymous)
	if f.err != nil {
		return nil, f.err
	}
	if a, ok := f.byHandle[handle]; ok {
		return a, nil
	}
	if permitAnonymous {
		return nil, nil
	}
	return nil, common.NewNotLoggedInError()
}

func newGate() (*Gate, *fakeResolver) {
	r := &fakeResolver{byHandle: map[string]*models.Account{
		"user-h":   {ID: 1, AccountName: "alice1", Role: models.RoleUser},
		"admin-h":  {ID: 2, AccountName: "root01", Role: models.RoleAdmin},
		"banned-h": {ID: 3, AccountName: "troll1", Role: models.RoleBanned},
	}}
	return NewGate(r, logging.Nop{}), r
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name      string
		handle    string
		req       Requirement
		wantState State
		wantErr   error
		wantID    int64
	}{
		{"anonymous none", "", None, Authorized, nil, 0},
		{"user none", "user-h", None, Authorized, nil, 1},
		{"anonymous logged in", "", LoggedIn, Rejected, common.ErrNotLoggedIn, 0},
		{"user logged in", "user-h", LoggedIn, Authorized, nil, 1},
		{"banned logged in", "banned-h", LoggedIn, Authorized, nil, 3},
		{"anonymous admin", "nope", Admin, Rejected, common.ErrNotLoggedIn, 0},
		{"user admin", "user-h", Admin, Rejected, common.ErrForbidden, 0},
		{"banned admin", "banned-h", Admin, Rejected, common.ErrForbidden, 0},
		{"admin admin", "admin-h", Admin, Authorized, nil, 2},
		{"unknown requirement", "admin-h", Requirement(9), Rejected, common.ErrForbidden, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _ := newGate()
			d := g.Evaluate(context.Background(), tt.handle, tt.req)

			assert.Equal(t, tt.wantState, d.State)
			if tt.wantErr != nil {
				require.Error(t, d.Err)
				assert.True(t, errors.Is(d.Err, tt.wantErr), "got %v", d.Err)
				assert.Nil(t, d.Caller)
				return
			}
			require.NoError(t, d.Err)
			if tt.wantID == 0 {
				assert.Nil(t, d.Caller)
			} else {
				assert.Equal(t, tt.wantID, d.Caller.ID)
			}
		})
	}
}

func TestEvaluate_PermitsAnonymityOnlyForNone(t *testing.T) {
	g, r := newGate()
	ctx := context.Background()

	g.Evaluate(ctx, "x", None)
	g.Evaluate(ctx, "x", LoggedIn)
	g.Evaluate(ctx, "x", Admin)

	assert.Equal(t, []bool{true, false, false}, r.calls)
}

func TestEvaluate_ForbiddenReason(t *testing.T) {
	g, _ := newGate()
	_, err := g.Authorize(context.Background(), "user-h", Admin)
	assert.Equal(t, "insufficient permission", common.Reason(err))
}

func TestEvaluate_SystemErrorIsNotMaskedAsNotLoggedIn(t *testing.T) {
	g, r := newGate()
	r.err = common.NewSystemError("login failed, system error", errors.New("db down"))

	_, err := g.Authorize(context.Background(), "user-h", LoggedIn)
	assert.True(t, errors.Is(err, common.ErrSystem))

	_, err = g.Authorize(context.Background(), "user-h", None)
	assert.True(t, errors.Is(err, common.ErrSystem))
}

func TestGuard_BodyRunsOnlyWhenAuthorized(t *testing.T) {
	g, _ := newGate()
	ctx := context.Background()

	mutated := 0
	body := func(ctx context.Context, caller *models.Account) (int64, error) {
		mutated++
		fromCtx, ok := CallerFromContext(ctx)
		require.True(t, ok)
		assert.Same(t, caller, fromCtx)
		return caller.ID, nil
	}

	_, err := Guard(ctx, g, "user-h", Admin, body)
	assert.True(t, errors.Is(err, common.ErrForbidden))
	assert.Equal(t, 0, mutated)

	_, err = Guard(ctx, g, "", LoggedIn, body)
	assert.True(t, errors.Is(err, common.ErrNotLoggedIn))
	assert.Equal(t, 0, mutated)

	id, err := Guard(ctx, g, "admin-h", Admin, body)
	require.NoError(t, err)
	assert.Equal(t, int64(2), id)
	assert.Equal(t, 1, mutated)
}

func TestGuard_AnonymousCallerNotInContext(t *testing.T) {
	g, _ := newGate()

	ok, err := Guard(context.Background(), g, "", None, func(ctx context.Context, caller *models.Account) (bool, error) {
		_, ok := CallerFromContext(ctx)
		return ok, nil
	})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStrings(t *testing.T) {
	assert.Equal(t, "admin", Admin.String())
	assert.Equal(t, "logged_in", LoggedIn.String())
	assert.Equal(t, "none", None.String())
	assert.Equal(t, "unchecked", Unchecked.String())
	assert.Equal(t, "rejected", Rejected.String())
}
