package db

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

// ErrAccountNotFound is returned when no billing account exists for a user.
var ErrAccountNotFound = errors.New("billing account not found")

// Account links an external user to its gateway customer and subscription.
// SubscriptionStatus is the last status observed on the gateway and is used
// to avoid a remote lookup when the account is loaded again.
type Account struct {
	UserExternalID     string
	CustomerToken      string
	SubscriptionToken  string
	SubscriptionStatus string
	UpdatedAt          time.Time
}

const schema = `
CREATE TABLE IF NOT EXISTS billing_account (
    user_external_id    TEXT PRIMARY KEY,
    customer_token      TEXT NOT NULL DEFAULT '',
    subscription_token  TEXT NOT NULL DEFAULT '',
    subscription_status TEXT NOT NULL DEFAULT '',
    updated_at          TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Store persists billing accounts in Postgres.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// HashUserID hashes every byte of an external id, so distinct ids never share
// an account row. Raw external ids are never stored.
func HashUserID(id string) string {
	sum := sha256.Sum256([]byte(id))
	return hex.EncodeToString(sum[:])
}

// EnsureSchema creates the billing_account table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create billing_account: %w", err)
	}
	return nil
}

// GetAccount returns the account for the user or ErrAccountNotFound.
func (s *Store) GetAccount(ctx context.Context, userExternalID string) (Account, error) {
	acct := Account{UserExternalID: userExternalID}
	err := s.db.QueryRowContext(ctx,
		`SELECT customer_token, subscription_token, subscription_status, updated_at
		   FROM billing_account WHERE user_external_id = $1`,
		HashUserID(userExternalID),
	).Scan(&acct.CustomerToken, &acct.SubscriptionToken, &acct.SubscriptionStatus, &acct.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Account{}, ErrAccountNotFound
	}
	if err != nil {
		return Account{}, fmt.Errorf("select billing_account: %w", err)
	}
	return acct, nil
}

// UpsertAccount inserts the account or overwrites its tokens and status.
func (s *Store) UpsertAccount(ctx context.Context, acct Account) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO billing_account (user_external_id, customer_token, subscription_token, subscription_status, updated_at)
		 VALUES ($1, $2, $3, $4, now())
		 ON CONFLICT (user_external_id) DO UPDATE SET
		     customer_token = EXCLUDED.customer_token,
		     subscription_token = EXCLUDED.subscription_token,
		     subscription_status = EXCLUDED.subscription_status,
		     updated_at = now()`,
		HashUserID(acct.UserExternalID), acct.CustomerToken, acct.SubscriptionToken, acct.SubscriptionStatus,
	)
	if err != nil {
		return fmt.Errorf("upsert billing_account: %w", err)
	}
	return nil
}

// UpdateSubscriptionStatus records the last observed subscription status.
func (s *Store) UpdateSubscriptionStatus(ctx context.Context, userExternalID, status string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE billing_account SET subscription_status = $2, updated_at = now() WHERE user_external_id = $1`,
		HashUserID(userExternalID), status,
	)
	if err != nil {
		return fmt.Errorf("update billing_account status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update billing_account status: %w", err)
	}
	if n == 0 {
		return ErrAccountNotFound
	}
	return nil
}
