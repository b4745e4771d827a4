package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/avelier/event-ticketing/internal/model"
)

// SettingsRepo manages the organiser's public profile row.  The row is
// created at registration time by OrganiserRepo, so Get treats a missing
// row as an error rather than synthesizing defaults.
type SettingsRepo struct{ DB *sql.DB }

func NewSettingsRepo(db *sql.DB) *SettingsRepo { return &SettingsRepo{DB: db} }

// ErrSettingsNotFound indicates that no settings row exists for the
// organiser.  With registration seeding the row this only happens for
// unknown organiser IDs.
var ErrSettingsNotFound = errors.New("organiser settings not found")

// Get returns the profile for one organiser.
func (r *SettingsRepo) Get(ctx context.Context, organiserID uint64) (model.OrganiserSettings, error) {
	var s model.OrganiserSettings
	err := r.DB.QueryRowContext(ctx,
		"SELECT organiser_id, display_name, description, updated_at FROM organiser_settings WHERE organiser_id=? LIMIT 1",
		organiserID).Scan(&s.OrganiserID, &s.DisplayName, &s.Description, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return s, ErrSettingsNotFound
		}
		return s, err
	}
	return s, nil
}

// Update overwrites the display name and description.
func (r *SettingsRepo) Update(ctx context.Context, organiserID uint64, displayName, description string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE organiser_settings SET display_name=?, description=? WHERE organiser_id=?",
		displayName, description, organiserID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Either the organiser does not exist or nothing changed; probe
		// to tell the two apart.
		var one int
		if err := r.DB.QueryRowContext(ctx,
			"SELECT 1 FROM organiser_settings WHERE organiser_id=? LIMIT 1", organiserID).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrSettingsNotFound
			}
			return err
		}
	}
	return nil
}
