package dbhelper

import (
	"context"

	"github.com/ray-remotestate/tableqr/models"
)

func (s *Store) GetStaffUserByUsername(ctx context.Context, username string) (*models.StaffUser, error) {
	var u models.StaffUser
	err := s.db.QueryRowContext(ctx, `
		SELECT id, restaurant_id, username, password_hash, role, is_active
		FROM staff_users
		WHERE LOWER(username) = LOWER($1)`, username).
		Scan(&u.ID, &u.RestaurantID, &u.Username, &u.PasswordHash, &u.Role, &u.Active)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *Store) CountStaffUsers(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM staff_users`).Scan(&count)
	return count, err
}

func (t *txStore) InsertStaffUser(ctx context.Context, u *models.StaffUser) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO staff_users (id, restaurant_id, username, password_hash, role, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		u.ID, u.RestaurantID, u.Username, u.PasswordHash, u.Role, u.Active)
	return err
}
