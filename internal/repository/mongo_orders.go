package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/senira34/lolipop-wear/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoOrderRepository struct {
	collection *mongo.Collection
}

func NewMongoOrderRepository(db *mongo.Database) *MongoOrderRepository {
	return &MongoOrderRepository{
		collection: db.Collection("orders"),
	}
}

func (m *MongoOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	now := time.Now().UTC()
	if order.ID == "" {
		order.ID = primitive.NewObjectID().Hex()
	}
	order.CreatedAt = now
	order.UpdatedAt = now

	if _, err := m.collection.InsertOne(ctx, order); err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}
	return nil
}

func (m *MongoOrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	var order domain.Order
	err := m.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &order, nil
}

func (m *MongoOrderRepository) List(ctx context.Context) ([]*domain.Order, error) {
	return m.find(ctx, bson.M{})
}

func (m *MongoOrderRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Order, error) {
	return m.find(ctx, bson.M{"user": userID})
}

func (m *MongoOrderRepository) find(ctx context.Context, filter bson.M) ([]*domain.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := m.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find orders: %w", err)
	}
	defer cursor.Close(ctx)

	orders := make([]*domain.Order, 0)
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}
	return orders, nil
}

func (m *MongoOrderRepository) Update(ctx context.Context, id string, mutate func(*domain.Order)) (*domain.Order, error) {
	order, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	mutate(order)

	result, err := m.collection.ReplaceOne(ctx, bson.M{"_id": id}, order)
	if err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	if result.MatchedCount == 0 {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (m *MongoOrderRepository) Delete(ctx context.Context, id string) error {
	result, err := m.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (m *MongoOrderRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "user", Value: 1}, {Key: "created_at", Value: -1}},
		},
	}

	if _, err := m.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}
