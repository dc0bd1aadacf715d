package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hospitalmgmt/hospital-api/internal/core/domain"
)

type DoctorStore struct {
	coll *mongo.Collection
}

func NewDoctorStore(db *mongo.Database) *DoctorStore {
	return &DoctorStore{coll: db.Collection(collectionDoctors)}
}

type mongoDoctor struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Username       string             `bson:"username,omitempty"`
	FullName       string             `bson:"full_name"`
	Specialization string             `bson:"specialization"`
	Department     string             `bson:"department,omitempty"`
	Email          string             `bson:"email,omitempty"`
}

func (m mongoDoctor) toDomain() domain.Doctor {
	return domain.Doctor{
		ID:             m.ID.Hex(),
		Username:       m.Username,
		FullName:       m.FullName,
		Specialization: m.Specialization,
		Department:     m.Department,
		Email:          m.Email,
	}
}

// List returns every doctor ordered by name.
func (r *DoctorStore) List(ctx context.Context) ([]domain.Doctor, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "full_name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []mongoDoctor
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode doctors: %w", err)
	}
	out := make([]domain.Doctor, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *DoctorStore) FindByID(ctx context.Context, id string) (*domain.Doctor, error) {
	oid, err := objectID(id, domain.ErrDoctorNotFound)
	if err != nil {
		return nil, err
	}
	return r.find(ctx, bson.M{"_id": oid})
}

func (r *DoctorStore) FindByUsername(ctx context.Context, username string) (*domain.Doctor, error) {
	if username == "" {
		return nil, domain.ErrDoctorNotFound
	}
	return r.find(ctx, bson.M{"username": username})
}

func (r *DoctorStore) find(ctx context.Context, filter bson.M) (*domain.Doctor, error) {
	var doc mongoDoctor
	if err := findOne(ctx, r.coll, filter, &doc, domain.ErrDoctorNotFound); err != nil {
		return nil, err
	}
	d := doc.toDomain()
	return &d, nil
}

func (r *DoctorStore) Create(ctx context.Context, d *domain.Doctor) (*domain.Doctor, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoDoctor{
		ID:             primitive.NewObjectID(),
		Username:       d.Username,
		FullName:       d.FullName,
		Specialization: d.Specialization,
		Department:     d.Department,
		Email:          d.Email,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%w: doctor username %q already linked", domain.ErrValidation, d.Username)
		}
		return nil, fmt.Errorf("insert doctor: %w", err)
	}
	created := doc.toDomain()
	return &created, nil
}
