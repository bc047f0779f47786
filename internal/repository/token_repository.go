package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// ErrInvalidRefresh covers unknown, revoked and expired refresh tokens.
var ErrInvalidRefresh = errors.New("invalid refresh token")

// TokenRepo persists and validates refresh tokens by their hash.
type TokenRepo struct {
	DB  *sql.DB
	Now func() time.Time
}

func NewTokenRepo(db *sql.DB) *TokenRepo {
	return &TokenRepo{DB: db, Now: func() time.Time { return time.Now().UTC() }}
}

// StoreRefresh inserts a refresh token hash row.
func (r *TokenRepo) StoreRefresh(ctx context.Context, userID uint64, familyID, tokenHash string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO refresh_tokens (user_id, family_id, token_hash, expires_at) VALUES (?,?,?,?)",
		userID, familyID, tokenHash, exp.UTC())
	return err
}

// ValidateRefresh returns the owner and family of a live token.
func (r *TokenRepo) ValidateRefresh(ctx context.Context, tokenHash string) (userID uint64, familyID string, err error) {
	var expiresAt, revokedAt dbTime
	err = r.DB.QueryRowContext(ctx,
		"SELECT user_id, family_id, expires_at, revoked_at FROM refresh_tokens WHERE token_hash=? LIMIT 1",
		tokenHash).Scan(&userID, &familyID, &expiresAt, &revokedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, "", ErrInvalidRefresh
	}
	if err != nil {
		return 0, "", err
	}
	if revokedAt.Valid || !r.Now().Before(expiresAt.Time) {
		return 0, "", ErrInvalidRefresh
	}
	return userID, familyID, nil
}

// RevokeByHash marks a token as revoked.
func (r *TokenRepo) RevokeByHash(ctx context.Context, tokenHash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=? WHERE token_hash=? AND revoked_at IS NULL",
		r.Now(), tokenHash)
	return err
}

// RevokeFamily revokes every token issued from one login.
func (r *TokenRepo) RevokeFamily(ctx context.Context, familyID string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=? WHERE family_id=? AND revoked_at IS NULL",
		r.Now(), familyID)
	return err
}

// RevokeAllForUser revokes all user's active tokens.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=? WHERE user_id=? AND revoked_at IS NULL",
		r.Now(), userID)
	return err
}
