package repository

import (
	"context"
	"database/sql"

	"bank-ledger-api/logger"
	"bank-ledger-api/model"
)

type UserRepository struct {
	DB querier
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) CreateUser(ctx context.Context, user *model.User) error {
	query := `INSERT INTO users (username, password) VALUES ($1, $2) RETURNING id, created_at`
	if err := r.DB.QueryRowContext(ctx, query, user.Username, user.Password).Scan(&user.ID, &user.CreatedAt); err != nil {
		logger.Log.WithError(err).WithField("username", user.Username).Error("Failed to execute create user query")
		return classify("create user", err)
	}
	return nil
}
