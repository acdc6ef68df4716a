package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/fastshift/internal/model"
	"github.com/iliyamo/fastshift/internal/store"
)

const userColumns = `id, email, name, role, created_at, last_logged_in, details`

type UserRepo struct{ db DBTX }

func NewUserRepo(db DBTX) *UserRepo { return &UserRepo{db: db} }

// Insert stores u with a normalized email and returns its ID.
func (r *UserRepo) Insert(ctx context.Context, u *model.User) (string, error) {
	u.Email = normalizeEmail(u.Email)
	details, err := encodeExtra(u.Extra)
	if err != nil {
		return "", err
	}
	id := newID()
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, u.Email, nullString(u.Name), u.Role, u.CreatedAt.UTC(), nullTime(u.LastLoggedIn), details)
	if err != nil {
		if isDuplicate(err) {
			return "", fmt.Errorf("%w: email %s", store.ErrDuplicate, u.Email)
		}
		return "", err
	}
	u.ID = id
	return id, nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ? LIMIT 1`, normalizeEmail(email)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

// TouchLogin records a sign-in.
func (r *UserRepo) TouchLogin(ctx context.Context, email string, at time.Time) (store.UpdateResult, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET last_logged_in = ? WHERE email = ?`, at.UTC(), normalizeEmail(email))
	if err != nil {
		return store.UpdateResult{}, err
	}
	return updated(res)
}

func (r *UserRepo) SetRoleByID(ctx context.Context, id, role string) (store.UpdateResult, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET role = ? WHERE id = ?`, role, id)
	if err != nil {
		return store.UpdateResult{}, err
	}
	return updated(res)
}

func (r *UserRepo) SetRoleByEmail(ctx context.Context, email, role string) (store.UpdateResult, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET role = ? WHERE email = ?`, role, normalizeEmail(email))
	if err != nil {
		return store.UpdateResult{}, err
	}
	return updated(res)
}

// Search matches q as a case-insensitive substring of email or name. LIKE
// wildcards in q are matched literally.
func (r *UserRepo) Search(ctx context.Context, q string, limit int) ([]*model.User, error) {
	pattern := "%" + likeEscaper.Replace(strings.ToLower(q)) + "%"
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE LOWER(email) LIKE ? ESCAPE '!' OR LOWER(name) LIKE ? ESCAPE '!'
		 ORDER BY created_at DESC LIMIT ?`, pattern, pattern, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func scanUser(s rowScanner) (*model.User, error) {
	var (
		u         model.User
		name      sql.NullString
		lastLogin sql.NullTime
		details   sql.NullString
	)
	if err := s.Scan(&u.ID, &u.Email, &name, &u.Role, &u.CreatedAt, &lastLogin, &details); err != nil {
		return nil, err
	}
	extra, err := decodeExtra(details)
	if err != nil {
		return nil, err
	}
	u.Name = name.String
	u.CreatedAt = u.CreatedAt.UTC()
	u.LastLoggedIn = timePtr(lastLogin)
	u.Extra = extra
	return &u, nil
}
