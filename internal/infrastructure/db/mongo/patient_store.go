package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hospitalmgmt/hospital-api/internal/core/domain"
)

type PatientStore struct {
	coll *mongo.Collection
}

func NewPatientStore(db *mongo.Database) *PatientStore {
	return &PatientStore{coll: db.Collection(collectionPatients)}
}

type mongoPatient struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Username   string             `bson:"username,omitempty"`
	FullName   string             `bson:"full_name"`
	Email      string             `bson:"email"`
	Phone      string             `bson:"phone,omitempty"`
	Gender     string             `bson:"gender,omitempty"`
	BloodGroup string             `bson:"blood_group,omitempty"`
	BirthDate  time.Time          `bson:"birth_date"`
	CreatedAt  time.Time          `bson:"created_at"`
}

func (m mongoPatient) toDomain() domain.PatientRecord {
	return domain.PatientRecord{
		ID:         m.ID.Hex(),
		Username:   m.Username,
		FullName:   m.FullName,
		Email:      m.Email,
		Phone:      m.Phone,
		Gender:     m.Gender,
		BloodGroup: m.BloodGroup,
		BirthDate:  m.BirthDate.UTC(),
		CreatedAt:  m.CreatedAt.UTC(),
	}
}

// List pages through patients in _id order. ObjectIDs sort by creation, and
// their hex form sorts the same way.
func (r *PatientStore) List(ctx context.Context, page, size int) ([]domain.PatientRecord, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	total, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("count patients: %w", err)
	}
	offset, ok := domain.PageOffset(page, size)
	if !ok || int64(offset) >= total {
		return []domain.PatientRecord{}, total, nil
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(size))

	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list patients: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []mongoPatient
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode patients: %w", err)
	}

	records := make([]domain.PatientRecord, 0, len(docs))
	for _, d := range docs {
		records = append(records, d.toDomain())
	}
	return records, total, nil
}

func (r *PatientStore) FindByID(ctx context.Context, id string) (*domain.PatientRecord, error) {
	oid, err := objectID(id, domain.ErrPatientNotFound)
	if err != nil {
		return nil, err
	}
	return r.find(ctx, bson.M{"_id": oid})
}

func (r *PatientStore) FindByUsername(ctx context.Context, username string) (*domain.PatientRecord, error) {
	if username == "" {
		return nil, domain.ErrPatientNotFound
	}
	return r.find(ctx, bson.M{"username": username})
}

func (r *PatientStore) find(ctx context.Context, filter bson.M) (*domain.PatientRecord, error) {
	var doc mongoPatient
	if err := findOne(ctx, r.coll, filter, &doc, domain.ErrPatientNotFound); err != nil {
		return nil, err
	}
	rec := doc.toDomain()
	return &rec, nil
}

func (r *PatientStore) Create(ctx context.Context, p *domain.PatientRecord) (*domain.PatientRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoPatient{
		ID:         primitive.NewObjectID(),
		Username:   p.Username,
		FullName:   p.FullName,
		Email:      p.Email,
		Phone:      p.Phone,
		Gender:     p.Gender,
		BloodGroup: p.BloodGroup,
		BirthDate:  p.BirthDate.UTC(),
		CreatedAt:  p.CreatedAt.UTC(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%w: patient username %q already linked", domain.ErrValidation, p.Username)
		}
		return nil, fmt.Errorf("insert patient: %w", err)
	}
	rec := doc.toDomain()
	return &rec, nil
}
