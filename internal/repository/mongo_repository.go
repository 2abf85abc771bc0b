package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/go_cart/swiftbuyz/domain"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Amounts are stored as decimal strings; the driver has no codec for decimal.Decimal.
type cartDocument struct {
	Key         string         `bson:"_id"`
	Items       []itemDocument `bson:"items"`
	TotalAmount string         `bson:"total_amount"`
	UpdatedAt   time.Time      `bson:"updated_at"`
}

type itemDocument struct {
	ProductID       string `bson:"product_id"`
	Name            string `bson:"name"`
	UnitPrice       string `bson:"unit_price"`
	DiscountPercent string `bson:"discount_percent"`
	Quantity        int    `bson:"quantity"`
	Stock           int    `bson:"stock,omitempty"`
	Image           string `bson:"image,omitempty"`
}

type mongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) CartRepository {
	return &mongoRepository{
		collection: db.Collection("carts"),
	}
}

func (m *mongoRepository) GetCart(ctx context.Context, key string) (*domain.CartState, error) {
	var doc cartDocument

	err := m.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	return doc.toState()
}

func (m *mongoRepository) UpsertCart(ctx context.Context, key string, state *domain.CartState) error {
	doc := newCartDocument(key, state)
	doc.UpdatedAt = time.Now()

	opts := options.Replace().SetUpsert(true)
	if _, err := m.collection.ReplaceOne(ctx, bson.M{"_id": key}, doc, opts); err != nil {
		return fmt.Errorf("failed to upsert cart: %w", err)
	}

	return nil
}

func (m *mongoRepository) DeleteCart(ctx context.Context, key string) error {
	result, err := m.collection.DeleteOne(ctx, bson.M{"_id": key})
	if err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}

	if result.DeletedCount == 0 {
		return ErrCartNotFound
	}

	return nil
}

func (m *mongoRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "updated_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(90 * 24 * 60 * 60), // 90 days TTL
		},
	}

	if _, err := m.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

func newCartDocument(key string, state *domain.CartState) cartDocument {
	items := make([]itemDocument, 0, len(state.Items))
	for _, item := range state.Items {
		items = append(items, itemDocument{
			ProductID:       item.ProductID,
			Name:            item.Name,
			UnitPrice:       item.UnitPrice.String(),
			DiscountPercent: item.DiscountPercent.String(),
			Quantity:        item.Quantity,
			Stock:           item.Stock,
			Image:           item.Image,
		})
	}
	return cartDocument{
		Key:         key,
		Items:       items,
		TotalAmount: state.TotalAmount.String(),
	}
}

func (d cartDocument) toState() (*domain.CartState, error) {
	state := &domain.CartState{Items: make([]domain.CartLineItem, 0, len(d.Items))}

	total, err := parseAmount(d.TotalAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid total for cart %s: %w", d.Key, err)
	}
	state.TotalAmount = total

	for _, item := range d.Items {
		price, err := parseAmount(item.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("invalid price for product %s: %w", item.ProductID, err)
		}
		discount, err := parseAmount(item.DiscountPercent)
		if err != nil {
			return nil, fmt.Errorf("invalid discount for product %s: %w", item.ProductID, err)
		}
		state.Items = append(state.Items, domain.CartLineItem{
			ProductID:       item.ProductID,
			Name:            item.Name,
			UnitPrice:       price,
			DiscountPercent: discount,
			Quantity:        item.Quantity,
			Stock:           item.Stock,
			Image:           item.Image,
		})
	}
	return state, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
