package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

const selectColumns = `id, COALESCE(account_name, ''), COALESCE(password_digest, ''),
		 COALESCE(union_id, ''), COALESCE(mp_open_id, ''), display_name, avatar_url,
		 profile, role, created_at, updated_at, is_delete`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, a *models.Account) (int64, error) {
	query :=
		`INSERT INTO accounts (account_name, password_digest, union_id, mp_open_id,
		 display_name, avatar_url, profile, role, created_at, updated_at, is_delete)
		 VALUES (NULLIF($1, ''), NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''), $5, $6, $7, $8, $9, $10, 0)
		 RETURNING id
		 `

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		a.AccountName, a.PasswordDigest, a.UnionID, a.MpOpenID,
		a.DisplayName, a.AvatarURL, a.Profile, string(a.Role), a.CreatedAt, a.UpdatedAt).Scan(&id)

	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return 0, fmt.Errorf("%w: %s", common.ErrorAlreadyExists, dbx.ConstraintName(err))
		}
		return 0, fmt.Errorf("db error: %w", err)
	}

	a.ID = id
	return id, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id int64) (*models.Account, error) {
	return r.FindOne(ctx, models.AccountQuery{ID: id})
}

func (r *PostgresRepository) FindOne(ctx context.Context, q models.AccountQuery) (*models.Account, error) {
	where, args := buildWhere(q)
	query := `SELECT ` + selectColumns + ` FROM accounts WHERE ` + where + ` ORDER BY id LIMIT 1`

	a, err := scanAccount(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) Count(ctx context.Context, q models.AccountQuery) (int64, error) {
	where, args := buildWhere(q)
	query := `SELECT COUNT(*) FROM accounts WHERE ` + where

	var n int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) UpdateByID(ctx context.Context, a *models.Account) (bool, error) {
	query :=
		`UPDATE accounts SET
		 display_name = COALESCE(NULLIF($2, ''), display_name),
		 avatar_url = COALESCE(NULLIF($3, ''), avatar_url),
		 profile = COALESCE(NULLIF($4, ''), profile),
		 role = COALESCE(NULLIF($5, ''), role),
		 password_digest = COALESCE(NULLIF($6, ''), password_digest),
		 updated_at = $7
		 WHERE id = $1 AND is_delete = 0
		 `

	res, err := r.db.ExecContext(ctx, query,
		a.ID, a.DisplayName, a.AvatarURL, a.Profile, string(a.Role), a.PasswordDigest, a.UpdatedAt)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return affected(res)
}

func (r *PostgresRepository) SoftDeleteByID(ctx context.Context, id int64) (bool, error) {
	query :=
		`UPDATE accounts SET is_delete = 1
		 WHERE id = $1 AND is_delete = 0
		 `

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return affected(res)
}

func (r *PostgresRepository) List(ctx context.Context, q models.AccountQuery, page models.Page) ([]*models.Account, error) {
	where, args := buildWhere(q)
	query := `SELECT ` + selectColumns + ` FROM accounts WHERE ` + where + ` ORDER BY id`
	if page.Limit > 0 {
		args = append(args, page.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}
	if page.Offset > 0 {
		args = append(args, page.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

// likeEscaper makes a filter match literally inside an ILIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// buildWhere renders q as a parameterised predicate. The soft-delete filter
// is always first.
func buildWhere(q models.AccountQuery) (string, []any) {
	conds := []string{"is_delete = 0"}
	var args []any

	add := func(expr string, v any) {
		args = append(args, v)
		conds = append(conds, strings.Replace(expr, "?", "$"+strconv.Itoa(len(args)), 1))
	}

	if q.ID != 0 {
		add("id = ?", q.ID)
	}
	if q.AccountName != "" {
		add("account_name = ?", q.AccountName)
	}
	if q.PasswordDigest != "" {
		add("password_digest = ?", q.PasswordDigest)
	}
	if q.UnionID != "" {
		add("union_id = ?", q.UnionID)
	}
	if q.MpOpenID != "" {
		add("mp_open_id = ?", q.MpOpenID)
	}
	if q.Role != "" {
		add("role = ?", string(q.Role))
	}
	if q.DisplayName != "" {
		add(`display_name ILIKE ? ESCAPE '\'`, "%"+likeEscaper.Replace(q.DisplayName)+"%")
	}

	return strings.Join(conds, " AND "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*models.Account, error) {
	a := &models.Account{}
	var role string
	var deleted int
	err := row.Scan(&a.ID, &a.AccountName, &a.PasswordDigest, &a.UnionID, &a.MpOpenID,
		&a.DisplayName, &a.AvatarURL, &a.Profile, &role, &a.CreatedAt, &a.UpdatedAt, &deleted)
	if err != nil {
		return nil, err
	}
	a.Role = models.Role(role)
	a.Deleted = deleted != 0
	return a, nil
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}
