package mongo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pvmanagement/auth-system/internal/core/domain"
)

const usersCollection = "user_accounts"

type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(usersCollection)}
}

type userDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Email        string             `bson:"email"`
	DisplayName  string             `bson:"display_name"`
	PasswordHash string             `bson:"password_hash"`
	DemoOrg      string             `bson:"demo_org,omitempty"`
	Roles        []string           `bson:"roles"`
	CreatedAt    int64              `bson:"created_at"`
	UpdatedAt    int64              `bson:"updated_at"`
}

func (r *UserRepository) Create(ctx context.Context, user *domain.UserAccount) (*domain.UserAccount, error) {
	doc := toUserDoc(user)

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	created := *user
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.ID = oid.Hex()
	}
	created.Email = doc.Email
	return &created, nil
}

func (r *UserRepository) Save(ctx context.Context, user *domain.UserAccount) error {
	user.UpdatedAt = time.Now().UTC()
	doc := toUserDoc(user)
	_, err := r.coll.ReplaceOne(ctx, bson.M{"email": doc.Email}, doc)
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.UserAccount, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(email)})
}

func (r *UserRepository) FindByDemoOrg(ctx context.Context, org string) (*domain.UserAccount, error) {
	return r.findOne(ctx, bson.M{"demo_org": org})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.UserAccount, error) {
	var doc userDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	return &domain.UserAccount{
		ID:           doc.ID.Hex(),
		Email:        doc.Email,
		DisplayName:  doc.DisplayName,
		PasswordHash: doc.PasswordHash,
		DemoOrg:      doc.DemoOrg,
		Roles:        doc.Roles,
		CreatedAt:    unixToTime(doc.CreatedAt),
		UpdatedAt:    unixToTime(doc.UpdatedAt),
	}, nil
}

func toUserDoc(user *domain.UserAccount) userDoc {
	return userDoc{
		Email:        strings.ToLower(user.Email),
		DisplayName:  user.DisplayName,
		PasswordHash: user.PasswordHash,
		DemoOrg:      user.DemoOrg,
		Roles:        user.Roles,
		CreatedAt:    user.CreatedAt.Unix(),
		UpdatedAt:    user.UpdatedAt.Unix(),
	}
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
