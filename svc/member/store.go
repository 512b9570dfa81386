package member

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/dmitrymomot/subscriptions/pkg/pg"
)

type Store interface {
	Create(ctx context.Context, db pg.DBTX, name, email string) (Member, error)
	Get(ctx context.Context, db pg.DBTX, id uuid.UUID) (Member, error)
}

// PGStore is the PostgreSQL Store over the members table.
type PGStore struct{}

var _ Store = PGStore{}

func NewStore() PGStore {
	return PGStore{}
}

func (PGStore) Create(ctx context.Context, db pg.DBTX, name, email string) (Member, error) {
	var m Member
	err := db.QueryRow(ctx,
		`INSERT INTO members (name, email) VALUES ($1, $2) RETURNING id, name, email, created_at`,
		name, email).Scan(&m.ID, &m.Name, &m.Email, &m.CreatedAt)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return Member{}, errors.Join(ErrEmailTaken, err)
		}
		return Member{}, errors.Join(ErrFailedToCreate, err)
	}
	return m, nil
}

func (PGStore) Get(ctx context.Context, db pg.DBTX, id uuid.UUID) (Member, error) {
	var m Member
	err := db.QueryRow(ctx,
		`SELECT id, name, email, created_at FROM members WHERE id = $1`,
		id).Scan(&m.ID, &m.Name, &m.Email, &m.CreatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return Member{}, ErrMemberNotFound
		}
		return Member{}, errors.Join(ErrFailedToGet, err)
	}
	return m, nil
}
