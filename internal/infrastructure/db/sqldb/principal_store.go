package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/hospitalmgmt/hospital-api/internal/core/domain"
)

// PrincipalStore keeps principals in "principals" and their roles in
// "principal_roles".
type PrincipalStore struct {
	db *bun.DB
}

func NewPrincipalStore(db *bun.DB) *PrincipalStore {
	return &PrincipalStore{db: db}
}

func (s *PrincipalStore) Create(ctx context.Context, p *domain.Principal) (*domain.Principal, error) {
	row := principalRow{
		ID:           p.ID,
		Username:     p.Username,
		PasswordHash: p.PasswordHash,
		CreatedAt:    p.CreatedAt.UTC(),
	}
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	roles := make([]principalRoleRow, 0, len(p.Roles))
	for _, r := range domain.NewRoleSet(p.Roles...) {
		roles = append(roles, principalRoleRow{PrincipalID: row.ID, Role: string(r)})
	}

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().Model((*principalRow)(nil)).Where("username = ?", p.Username).Exists(ctx)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrPrincipalExists
		}
		if _, err := tx.NewInsert().Model(&row).Exec(ctx); err != nil {
			return err
		}
		if len(roles) > 0 {
			if _, err := tx.NewInsert().Model(&roles).Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, domain.ErrPrincipalExists) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("insert principal: %w", err)
	}

	row.Roles = roles
	return row.toDomain()
}

func (s *PrincipalStore) FindByUsername(ctx context.Context, username string) (*domain.Principal, error) {
	var row principalRow
	err := s.db.NewSelect().
		Model(&row).
		Relation("Roles", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("role ASC")
		}).
		Where("?TableAlias.username = ?", username).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrPrincipalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find principal: %w", err)
	}
	return row.toDomain()
}

func (r principalRow) toDomain() (*domain.Principal, error) {
	names := make([]string, 0, len(r.Roles))
	for _, role := range r.Roles {
		names = append(names, role.Role)
	}
	roles, err := domain.ParseRoleSet(names)
	if err != nil {
		return nil, fmt.Errorf("principal %s: %w", r.Username, err)
	}
	return &domain.Principal{
		ID:           r.ID,
		Username:     r.Username,
		PasswordHash: r.PasswordHash,
		Roles:        roles,
		CreatedAt:    r.CreatedAt.UTC(),
	}, nil
}
