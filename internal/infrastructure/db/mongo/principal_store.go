package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/hospitalmgmt/hospital-api/internal/core/domain"
)

type PrincipalStore struct {
	coll *mongo.Collection
}

func NewPrincipalStore(db *mongo.Database) *PrincipalStore {
	return &PrincipalStore{coll: db.Collection(collectionPrincipals)}
}

// mongoPrincipal keeps the principal->role relationship as an embedded array.
type mongoPrincipal struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Username     string             `bson:"username"`
	PasswordHash string             `bson:"password_hash"`
	Roles        []string           `bson:"roles"`
	CreatedAt    time.Time          `bson:"created_at"`
}

func (m mongoPrincipal) toDomain() (*domain.Principal, error) {
	roles, err := domain.ParseRoleSet(m.Roles)
	if err != nil {
		return nil, fmt.Errorf("principal %s: %w", m.Username, err)
	}
	return &domain.Principal{
		ID:           m.ID.Hex(),
		Username:     m.Username,
		PasswordHash: m.PasswordHash,
		Roles:        roles,
		CreatedAt:    m.CreatedAt.UTC(),
	}, nil
}

func (r *PrincipalStore) Create(ctx context.Context, p *domain.Principal) (*domain.Principal, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoPrincipal{
		ID:           primitive.NewObjectID(),
		Username:     p.Username,
		PasswordHash: p.PasswordHash,
		Roles:        p.Roles.Strings(),
		CreatedAt:    p.CreatedAt.UTC(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrPrincipalExists
		}
		return nil, fmt.Errorf("insert principal: %w", err)
	}
	return doc.toDomain()
}

func (r *PrincipalStore) FindByUsername(ctx context.Context, username string) (*domain.Principal, error) {
	var doc mongoPrincipal
	if err := findOne(ctx, r.coll, bson.M{"username": username}, &doc, domain.ErrPrincipalNotFound); err != nil {
		return nil, err
	}
	return doc.toDomain()
}
