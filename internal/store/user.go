package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"civicgrid.app/core/core/db"
	"civicgrid.app/core/internal/model"
)

type userStore struct {
	q db.Querier
}

const userColumns = `id, name, email, role, expertise, created_at, updated_at`

func (s *userStore) GetByID(ctx context.Context, id int64) (*model.User, error) {
	row := s.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userStore) ListByExpertise(ctx context.Context, category model.Category) ([]model.User, error) {
	rows, err := s.q.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE $1 = ANY(expertise) ORDER BY id`, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

func scanUser(row pgx.Row) (*model.User, error) {
	var user model.User
	var expertise []string

	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Role, &expertise,
		&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}

	for _, c := range expertise {
		user.Expertise = append(user.Expertise, model.Category(c))
	}

	return &user, nil
}
