package orders

import (
	"context"
	"labbridge-service/internal/app/contracts"
	"labbridge-service/internal/app/models"
	"labbridge-service/internal/pkg/constvars"
	"labbridge-service/internal/pkg/exceptions"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// claimLease bounds how long a processing claim is honored. A worker that
// died without releasing its order loses the claim after this window and the
// order becomes claimable again.
const claimLease = 15 * time.Minute

type OrderMongoRepository struct {
	Collection *mongo.Collection
}

func NewOrderMongoRepository(db *mongo.Client, dbName string) contracts.OrderRepository {
	return &OrderMongoRepository{
		Collection: db.Database(dbName).Collection(constvars.MongoCollectionOrders),
	}
}

func (repo *OrderMongoRepository) CreateOrder(ctx context.Context, order *models.Order) (string, error) {
	now := time.Now()
	order.ID = primitive.NewObjectID().Hex()
	order.CreatedAt = now
	order.UpdatedAt = now

	_, err := repo.Collection.InsertOne(ctx, order)
	if err != nil {
		return "", exceptions.ErrMongoDBInsertDocument(err)
	}
	return order.ID, nil
}

func (repo *OrderMongoRepository) FindByID(ctx context.Context, orderID string) (*models.Order, error) {
	var order models.Order
	err := repo.Collection.FindOne(ctx, bson.M{"_id": orderID}).Decode(&order)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	return &order, nil
}

// ClaimNextPending atomically flips the oldest claimable order for portal to
// processing. Claimable means pending, or processing under an expired lease.
// The findAndModify keeps two workers from claiming the same order even if a
// second agent is ever pointed at the same portal.
func (repo *OrderMongoRepository) ClaimNextPending(ctx context.Context, portal string) (*models.Order, error) {
	now := time.Now()
	filter := bson.M{
		"portal": portal,
		"$or": []bson.M{
			{"status": models.OrderStatusPending},
			{
				"status":        models.OrderStatusProcessing,
				"lastClaimedAt": bson.M{"$lt": now.Add(-claimLease)},
			},
		},
	}
	update := bson.M{
		"$set": bson.M{
			"status":        models.OrderStatusProcessing,
			"lastClaimedAt": now,
			"updatedAt":     now,
		},
	}
	opts := options.FindOneAndUpdate().
		SetSort(bson.D{{Key: "createdAt", Value: 1}}).
		SetReturnDocument(options.After)

	var order models.Order
	err := repo.Collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&order)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	return &order, nil
}

func (repo *OrderMongoRepository) UpdateStatus(ctx context.Context, orderID string, status models.OrderStatus, failureReason string) error {
	return repo.updateOne(ctx, orderID, bson.M{
		"$set": bson.M{
			"status":        status,
			"failureReason": failureReason,
			"updatedAt":     time.Now(),
		},
	})
}

func (repo *OrderMongoRepository) MarkPreview(ctx context.Context, orderID string, previewRef string) error {
	return repo.updateOne(ctx, orderID, bson.M{
		"$set": bson.M{
			"status":     models.OrderStatusPreview,
			"previewRef": previewRef,
			"updatedAt":  time.Now(),
		},
	})
}

func (repo *OrderMongoRepository) ApprovePreview(ctx context.Context, orderID string) error {
	return repo.updateOne(ctx, orderID, bson.M{
		"$set": bson.M{
			"status":          models.OrderStatusPending,
			"previewApproved": true,
			"updatedAt":       time.Now(),
		},
	})
}

func (repo *OrderMongoRepository) MarkCompleted(ctx context.Context, orderID string, confirmationID string) error {
	now := time.Now()
	return repo.updateOne(ctx, orderID, bson.M{
		"$set": bson.M{
			"status":         models.OrderStatusCompleted,
			"confirmationId": confirmationID,
			"completedAt":    now,
			"updatedAt":      now,
		},
	})
}

func (repo *OrderMongoRepository) MarkUnverified(ctx context.Context, orderID string) error {
	return repo.updateOne(ctx, orderID, bson.M{
		"$set": bson.M{
			"unverified": true,
			"updatedAt":  time.Now(),
		},
	})
}

func (repo *OrderMongoRepository) MarkEscalated(ctx context.Context, orderID string, documentFallback bool, failureReason string) error {
	now := time.Now()
	return repo.updateOne(ctx, orderID, bson.M{
		"$set": bson.M{
			"status":           models.OrderStatusNeedsManualReview,
			"documentFallback": documentFallback,
			"failureReason":    failureReason,
			"escalatedAt":      now,
			"updatedAt":        now,
		},
	})
}

func (repo *OrderMongoRepository) AppendAuditEntry(ctx context.Context, orderID string, entry models.AuditEntry) error {
	return repo.updateOne(ctx, orderID, bson.M{
		"$push": bson.M{"auditRefs": entry},
		"$set":  bson.M{"updatedAt": time.Now()},
	})
}

func (repo *OrderMongoRepository) IncrementAttempts(ctx context.Context, orderID string) error {
	return repo.updateOne(ctx, orderID, bson.M{
		"$inc": bson.M{"attempts": 1},
		"$set": bson.M{"updatedAt": time.Now()},
	})
}

func (repo *OrderMongoRepository) updateOne(ctx context.Context, orderID string, update bson.M) error {
	_, err := repo.Collection.UpdateOne(ctx, bson.M{"_id": orderID}, update)
	if err != nil {
		return exceptions.ErrMongoDBUpdateDocument(err)
	}
	return nil
}
