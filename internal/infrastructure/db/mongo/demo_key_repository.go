package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pvmanagement/auth-system/internal/core/domain"
)

const demoKeysCollection = "demo_keys"

type DemoKeyRepository struct {
	coll *mongo.Collection
}

func NewDemoKeyRepository(db *mongo.Database) *DemoKeyRepository {
	return &DemoKeyRepository{coll: db.Collection(demoKeysCollection)}
}

type demoKeyDoc struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	KeyID          string             `bson:"key_id"`
	Org            string             `bson:"org"`
	Revoked        bool               `bson:"revoked"`
	ExpiresAt      time.Time          `bson:"expires_at"`
	MaxActivations int                `bson:"max_activations"`
	Activations    int                `bson:"activations"`
	FirstUsedAt    *time.Time         `bson:"first_used_at,omitempty"`
	LastUsedAt     *time.Time         `bson:"last_used_at,omitempty"`
}

// Insert adds a brand-new key row. The unique (key_id, org) index turns a
// concurrent first redemption into domain.ErrDemoKeyExists so the caller can
// recover by re-fetching the winner's row.
func (r *DemoKeyRepository) Insert(ctx context.Context, key *domain.DemoKey) error {
	res, err := r.coll.InsertOne(ctx, toDemoKeyDoc(key))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDemoKeyExists
		}
		return fmt.Errorf("insert demo key: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		key.ID = oid.Hex()
	}
	return nil
}

func (r *DemoKeyRepository) Save(ctx context.Context, key *domain.DemoKey) error {
	_, err := r.coll.ReplaceOne(ctx,
		bson.M{"key_id": key.KeyID, "org": key.Org},
		toDemoKeyDoc(key),
	)
	if err != nil {
		return fmt.Errorf("save demo key: %w", err)
	}
	return nil
}

func (r *DemoKeyRepository) FindByKeyIDAndOrg(ctx context.Context, keyID, org string) (*domain.DemoKey, error) {
	return r.findOne(ctx, bson.M{"key_id": keyID, "org": org})
}

func (r *DemoKeyRepository) FindByKeyID(ctx context.Context, keyID string) (*domain.DemoKey, error) {
	return r.findOne(ctx, bson.M{"key_id": keyID})
}

func (r *DemoKeyRepository) findOne(ctx context.Context, filter bson.M) (*domain.DemoKey, error) {
	var doc demoKeyDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrDemoKeyNotFound
		}
		return nil, fmt.Errorf("find demo key: %w", err)
	}

	return &domain.DemoKey{
		ID:             doc.ID.Hex(),
		KeyID:          doc.KeyID,
		Org:            doc.Org,
		Revoked:        doc.Revoked,
		ExpiresAt:      doc.ExpiresAt,
		MaxActivations: doc.MaxActivations,
		Activations:    doc.Activations,
		FirstUsedAt:    doc.FirstUsedAt,
		LastUsedAt:     doc.LastUsedAt,
	}, nil
}

func toDemoKeyDoc(key *domain.DemoKey) demoKeyDoc {
	return demoKeyDoc{
		KeyID:          key.KeyID,
		Org:            key.Org,
		Revoked:        key.Revoked,
		ExpiresAt:      key.ExpiresAt,
		MaxActivations: key.MaxActivations,
		Activations:    key.Activations,
		FirstUsedAt:    key.FirstUsedAt,
		LastUsedAt:     key.LastUsedAt,
	}
}
