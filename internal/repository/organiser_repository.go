package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/avelier/event-ticketing/internal/model"
	"github.com/avelier/event-ticketing/internal/utils"
)

// OrganiserRepo persists organiser accounts.  Registration also seeds the
// one-to-one settings row so public pages always have a profile to show.
type OrganiserRepo struct{ DB *sql.DB }

func NewOrganiserRepo(db *sql.DB) *OrganiserRepo { return &OrganiserRepo{DB: db} }

var ErrUsernameExists = errors.New("username already exists")

// Create inserts an organiser together with a default settings row and
// returns the new ID.  Both inserts run in one transaction so a failed
// settings insert never leaves an account without a profile.
func (r *OrganiserRepo) Create(ctx context.Context, username, password string, cost int) (uint64, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	res, err := tx.ExecContext(ctx,
		"INSERT INTO organisers (username, password_hash) VALUES (?,?)",
		username, hash)
	if err != nil {
		// MySQL duplicate-key error code for the unique username index
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrUsernameExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	// Default profile mirrors the registration form: name = username,
	// description filled with a placeholder the organiser edits later.
	if _, err = tx.ExecContext(ctx,
		"INSERT INTO organiser_settings (organiser_id, display_name, description) VALUES (?,?,?)",
		uint64(id), username, "My Event Page"); err != nil {
		return 0, err
	}
	if err = tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return uint64(id), nil
}

// GetByUsername fetches an organiser by normalized username.
func (r *OrganiserRepo) GetByUsername(ctx context.Context, username string) (model.Organiser, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	var o model.Organiser
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,username,password_hash,created_at,updated_at FROM organisers WHERE username=? LIMIT 1",
		username).Scan(&o.ID, &o.Username, &o.PasswordHash, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

// GetByID fetches an organiser by id.
func (r *OrganiserRepo) GetByID(ctx context.Context, id uint64) (model.Organiser, error) {
	var o model.Organiser
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,username,password_hash,created_at,updated_at FROM organisers WHERE id=? LIMIT 1",
		id).Scan(&o.ID, &o.Username, &o.PasswordHash, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}
