package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jensholdgaard/wowtools/internal/clock"
	"github.com/jensholdgaard/wowtools/internal/store"
)

// CharacterRepo implements store.CharacterRepository with sqlx.
type CharacterRepo struct {
	db    *sqlx.DB
	clock clock.Clock
}

// NewCharacterRepo returns a new CharacterRepo.
func NewCharacterRepo(db *sqlx.DB, clk clock.Clock) *CharacterRepo {
	return &CharacterRepo{db: db, clock: clk}
}

func (r *CharacterRepo) Create(ctx context.Context, c *store.Character) error {
	c.CreatedAt = r.clock.Now().UTC()
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO characters (name, race, gender, class, spec, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		c.Name, c.Race, c.Gender, c.Class, c.Spec, c.CreatedAt,
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("creating character %q: %w", c.Name, mapErr(err))
	}
	return nil
}

func (r *CharacterRepo) GetByName(ctx context.Context, name string) (*store.Character, error) {
	var c store.Character
	err := r.db.GetContext(ctx, &c,
		`SELECT id, name, race, gender, class, spec, created_at
		 FROM characters WHERE lower(name) = lower($1)`, name)
	if err != nil {
		return nil, fmt.Errorf("getting character %q: %w", name, mapErr(err))
	}
	return &c, nil
}

func (r *CharacterRepo) List(ctx context.Context) ([]store.Character, error) {
	var chars []store.Character
	err := r.db.SelectContext(ctx, &chars,
		`SELECT id, name, race, gender, class, spec, created_at
		 FROM characters ORDER BY created_at ASC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing characters: %w", err)
	}
	return chars, nil
}

func (r *CharacterRepo) Delete(ctx context.Context, name string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM characters WHERE lower(name) = lower($1)`, name)
	if err != nil {
		return fmt.Errorf("deleting character %q: %w", name, err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("character %q: %w", name, store.ErrNotFound)
	}
	return nil
}
