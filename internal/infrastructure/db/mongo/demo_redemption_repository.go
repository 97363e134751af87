package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pvmanagement/auth-system/internal/core/domain"
)

const demoRedemptionsCollection = "demo_redemptions"

// DemoRedemptionRepository writes the append-only redemption audit log.
type DemoRedemptionRepository struct {
	coll *mongo.Collection
}

func NewDemoRedemptionRepository(db *mongo.Database) *DemoRedemptionRepository {
	return &DemoRedemptionRepository{coll: db.Collection(demoRedemptionsCollection)}
}

type demoRedemptionDoc struct {
	KeyID      string    `bson:"key_id"`
	Org        string    `bson:"org"`
	IP         string    `bson:"ip"`
	UserAgent  string    `bson:"user_agent"`
	RedeemedAt time.Time `bson:"redeemed_at"`
}

func (r *DemoRedemptionRepository) Insert(ctx context.Context, redemption *domain.DemoRedemption) error {
	doc := demoRedemptionDoc{
		KeyID:      redemption.KeyID,
		Org:        redemption.Org,
		IP:         redemption.IP,
		UserAgent:  redemption.UserAgent,
		RedeemedAt: redemption.RedeemedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert demo redemption: %w", err)
	}
	return nil
}
