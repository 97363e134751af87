package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pvmanagement/auth-system/internal/core/domain"
)

const refreshTokensCollection = "refresh_tokens"

type RefreshTokenRepository struct {
	coll *mongo.Collection
}

func NewRefreshTokenRepository(db *mongo.Database) *RefreshTokenRepository {
	return &RefreshTokenRepository{coll: db.Collection(refreshTokensCollection)}
}

type refreshTokenDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Token     string             `bson:"token"`
	UserEmail string             `bson:"user_email"`
	ExpiresAt time.Time          `bson:"expires_at"`
	Revoked   bool               `bson:"revoked"`
	CreatedAt time.Time          `bson:"created_at"`
}

func (r *RefreshTokenRepository) FindByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	var doc refreshTokenDoc
	if err := r.coll.FindOne(ctx, bson.M{"token": token}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrRefreshTokenNotFound
		}
		return nil, fmt.Errorf("find refresh token: %w", err)
	}

	return &domain.RefreshToken{
		ID:        doc.ID.Hex(),
		Token:     doc.Token,
		UserEmail: doc.UserEmail,
		ExpiresAt: doc.ExpiresAt,
		Revoked:   doc.Revoked,
		CreatedAt: doc.CreatedAt,
	}, nil
}

// Save upserts by token value, covering both the initial insert and the
// revoked-flag update during rotation.
func (r *RefreshTokenRepository) Save(ctx context.Context, token *domain.RefreshToken) error {
	doc := refreshTokenDoc{
		Token:     token.Token,
		UserEmail: token.UserEmail,
		ExpiresAt: token.ExpiresAt,
		Revoked:   token.Revoked,
		CreatedAt: token.CreatedAt,
	}
	_, err := r.coll.ReplaceOne(ctx,
		bson.M{"token": token.Token},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("save refresh token: %w", err)
	}
	return nil
}

func (r *RefreshTokenRepository) Delete(ctx context.Context, token *domain.RefreshToken) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"token": token.Token}); err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	return nil
}

func (r *RefreshTokenRepository) DeleteByUser(ctx context.Context, email string) error {
	if _, err := r.coll.DeleteMany(ctx, bson.M{"user_email": email}); err != nil {
		return fmt.Errorf("delete refresh tokens by user: %w", err)
	}
	return nil
}

func (r *RefreshTokenRepository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, fmt.Errorf("delete expired refresh tokens: %w", err)
	}
	return res.DeletedCount, nil
}
