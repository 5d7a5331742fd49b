package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vocalearn/backend/internal/dal"
)

func (r *Repository) CreateAccount(ctx context.Context, account dal.Account) error {
	query, args, err := dal.InsertAccountQuery(account).ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	if _, err = r.client.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return dal.ErrDuplicate
		}
		return fmt.Errorf("insert account: %w", err)
	}

	return nil
}

func (r *Repository) FindAccount(ctx context.Context, username string) (*dal.Account, error) {
	query, args, err := dal.FindAccountQuery(username).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var account dal.Account
	row := r.client.QueryRowContext(ctx, query, args...)
	err = row.Scan(&account.Username, &account.PasswordHash, &account.Permission, &account.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, dal.ErrNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}

	return &account, nil
}

func (r *Repository) GetProfile(ctx context.Context, username string) (*dal.Profile, error) {
	query, args, err := dal.GetProfileQuery(username).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var profile dal.Profile
	row := r.client.QueryRowContext(ctx, query, args...)
	err = row.Scan(&profile.Username, &profile.FirstName, &profile.LastName, &profile.Score)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, dal.ErrNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}

	return &profile, nil
}

func (r *Repository) SaveProfile(ctx context.Context, profile dal.Profile) error {
	query, args, err := dal.SaveProfileQuery(profile).ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	if _, err = r.client.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}

	return nil
}
