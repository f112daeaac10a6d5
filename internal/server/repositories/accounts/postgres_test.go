package accounts

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var accountColumns = []string{"id", "account_name", "password_digest", "union_id", "mp_open_id",
	"display_name", "avatar_url", "profile", "role", "created_at", "updated_at", "is_delete"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return NewPostgresRepository(db), mock
}

const insertQuery = `(?s)^INSERT\s+INTO\s+accounts\s*\(account_name,.*RETURNING\s+id\s*$`

func TestInsert_Success(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(insertQuery).
		WithArgs("alice1", "digest", "", "", "", "", "", "user", int64(1000), int64(1000)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	a := &models.Account{AccountName: "alice1", PasswordDigest: "digest", Role: models.RoleUser, CreatedAt: 1000, UpdatedAt: 1000}
	id, err := repo.Insert(context.Background(), a)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, int64(42), a.ID)
}

func TestInsert_UniqueViolation(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(insertQuery).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "accounts_account_name_uniq"})

	_, err := repo.Insert(context.Background(), &models.Account{AccountName: "racer1", Role: models.RoleUser})
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrorAlreadyExists))
	assert.Contains(t, err.Error(), "accounts_account_name_uniq")
}

func TestInsert_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(insertQuery).WillReturnError(errors.New("db down"))

	_, err := repo.Insert(context.Background(), &models.Account{AccountName: "alice1"})
	require.Error(t, err)
	assert.Regexp(t, regexp.MustCompile(`db error: .*db down`), err.Error())
	assert.False(t, errors.Is(err, common.ErrorAlreadyExists))
}

func TestFindOne_ByNameAndDigest(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	q := `(?s)^SELECT\s+id,.*FROM\s+accounts\s+WHERE\s+is_delete = 0 AND account_name = \$1 AND password_digest = \$2\s+ORDER BY id LIMIT 1$`
	mock.ExpectQuery(q).
		WithArgs("alice1", "d1").
		WillReturnRows(sqlmock.NewRows(accountColumns).
			AddRow(int64(7), "alice1", "d1", "", "", "Alice", "", "", "admin", int64(10), int64(20), int64(0)))

	got, err := repo.FindOne(context.Background(), models.AccountQuery{AccountName: "alice1", PasswordDigest: "d1"})
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.ID)
	assert.Equal(t, models.RoleAdmin, got.Role)
	assert.Equal(t, int64(20), got.UpdatedAt)
	assert.False(t, got.Deleted)
}

func TestFindByID_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	q := `(?s)^SELECT\s+id,.*WHERE\s+is_delete = 0 AND id = \$1\s+ORDER BY id LIMIT 1$`
	mock.ExpectQuery(q).WithArgs(int64(99)).WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), 99)
	assert.True(t, errors.Is(err, common.ErrorNotFound))
}

func TestFindOne_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)^SELECT\s+id,.*union_id = \$1`).WithArgs("u-1").WillReturnError(errors.New("db err"))

	_, err := repo.FindOne(context.Background(), models.AccountQuery{UnionID: "u-1"})
	require.Error(t, err)
	assert.Regexp(t, `db error: .*db err`, err.Error())
}

func TestCount(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`^SELECT COUNT\(\*\) FROM accounts WHERE is_delete = 0 AND account_name = \$1$`).
		WithArgs("racer").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(1)))

	n, err := repo.Count(context.Background(), models.AccountQuery{AccountName: "racer"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestCount_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`^SELECT COUNT`).WillReturnError(errors.New("db err"))

	_, err := repo.Count(context.Background(), models.AccountQuery{})
	assert.Error(t, err)
}

func TestUpdateByID(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	q := `(?s)^UPDATE\s+accounts\s+SET.*role = COALESCE\(NULLIF\(\$5, ''\), role\).*WHERE id = \$1 AND is_delete = 0\s*$`

	mock.ExpectExec(q).
		WithArgs(int64(3), "", "", "", "ban", "", int64(500)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).
		WithArgs(int64(4), "Bob", "", "", "", "", int64(600)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.UpdateByID(context.Background(), &models.Account{ID: 3, Role: models.RoleBanned, UpdatedAt: 500})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.UpdateByID(context.Background(), &models.Account{ID: 4, DisplayName: "Bob", UpdatedAt: 600})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSoftDeleteByID(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	q := `(?s)^UPDATE\s+accounts\s+SET\s+is_delete = 1\s+WHERE\s+id = \$1 AND is_delete = 0\s*$`
	mock.ExpectExec(q).WithArgs(int64(5)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).WithArgs(int64(6)).WillReturnError(errors.New("db err"))

	ok, err := repo.SoftDeleteByID(context.Background(), 5)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = repo.SoftDeleteByID(context.Background(), 6)
	assert.Error(t, err)
}

func TestList_WithFiltersAndPage(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	q := `(?s)^SELECT\s+id,.*WHERE\s+is_delete = 0 AND role = \$1 AND display_name ILIKE \$2 ESCAPE '\\'\s+ORDER BY id LIMIT \$3 OFFSET \$4$`
	mock.ExpectQuery(q).
		WithArgs("user", "%ali%", 10, 20).
		WillReturnRows(sqlmock.NewRows(accountColumns).
			AddRow(int64(1), "alice1", "d", "", "", "Alice", "", "", "user", int64(1), int64(1), int64(0)).
			AddRow(int64(2), "", "", "u-2", "o-2", "Alina", "http://a/b.png", "", "user", int64(2), int64(2), int64(0)))

	got, err := repo.List(context.Background(), models.AccountQuery{Role: models.RoleUser, DisplayName: "ali"}, models.Page{Limit: 10, Offset: 20})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "u-2", got[1].UnionID)
	assert.Equal(t, "", got[1].AccountName)
}

func TestList_ScanError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)^SELECT\s+id,.*ORDER BY id$`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

	_, err := repo.List(context.Background(), models.AccountQuery{}, models.Page{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error")
}

func TestBuildWhere_DisplayNameMatchesLiterally(t *testing.T) {
	where, args := buildWhere(models.AccountQuery{DisplayName: `50%_off\`})
	assert.Equal(t, `is_delete = 0 AND display_name ILIKE $1 ESCAPE '\'`, where)
	assert.Equal(t, []any{`%50\%\_off\\%`}, args)

	// same literal substring rule as the memory store
	q := models.AccountQuery{DisplayName: "50%_OFF"}
	assert.True(t, q.Matches(&models.Account{DisplayName: "sale 50%_off today"}))
	assert.False(t, q.Matches(&models.Account{DisplayName: "sale 50 off today"}))
}

func TestBuildWhere(t *testing.T) {
	where, args := buildWhere(models.AccountQuery{})
	assert.Equal(t, "is_delete = 0", where)
	assert.Empty(t, args)

	where, args = buildWhere(models.AccountQuery{UnionID: "u", MpOpenID: "o"})
	assert.Equal(t, "is_delete = 0 AND union_id = $1 AND mp_open_id = $2", where)
	assert.Equal(t, []any{"u", "o"}, args)
}
