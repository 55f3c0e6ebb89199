package mongodb

import (
	"context"
	"fmt"
	"time"

	domain "backoffice/catalog/internal/domain/product"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const productCollectionName = "products"

type productDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	ProductCode string             `bson:"productCode"`
	Name        string             `bson:"name"`
	Price       float64            `bson:"price"`
	Owner       string             `bson:"owner"`
	CreatedAt   time.Time          `bson:"createdAt"`
}

func (d productDocument) toDomain() domain.Product {
	return domain.Product{
		DocumentID:  d.ID.Hex(),
		ProductCode: d.ProductCode,
		Name:        d.Name,
		Price:       d.Price,
		Owner:       d.Owner,
		CreatedAt:   d.CreatedAt.UTC(),
	}
}

// ProductStore keeps products as documents in a single collection.
type ProductStore struct {
	collection *mongo.Collection
	nowFunc    func() time.Time
}

var _ domain.DocumentStore = (*ProductStore)(nil)

// NewProductStore binds the products collection of db.
func NewProductStore(db *mongo.Database) *ProductStore {
	return &ProductStore{
		collection: db.Collection(productCollectionName),
		nowFunc:    time.Now,
	}
}

// EnsureIndexes creates the lookup index on productCode, unique when uniqueCodes is set.
func (s *ProductStore) EnsureIndexes(ctx context.Context, uniqueCodes bool) error {
	model := mongo.IndexModel{
		Keys:    bson.D{{Key: "productCode", Value: 1}},
		Options: options.Index().SetUnique(uniqueCodes),
	}
	if _, err := s.collection.Indexes().CreateOne(ctx, model); err != nil {
		return fmt.Errorf("create product index: %w", err)
	}
	return nil
}

// QueryByField returns the documents whose field equals value.
func (s *ProductStore) QueryByField(ctx context.Context, field domain.Field, value string) ([]domain.Product, error) {
	if !field.Valid() {
		return nil, fmt.Errorf("query products: unsupported field %q", field)
	}
	return s.find(ctx, bson.M{field.String(): value})
}

// ListAll returns every document ordered by creation time.
func (s *ProductStore) ListAll(ctx context.Context) ([]domain.Product, error) {
	return s.find(ctx, bson.M{})
}

// Insert stores p and returns it with the generated ObjectID.
func (s *ProductStore) Insert(ctx context.Context, p domain.Product) (domain.Product, error) {
	doc := productDocument{
		ID:          primitive.NewObjectID(),
		ProductCode: p.ProductCode,
		Name:        p.Name,
		Price:       p.Price,
		Owner:       p.Owner,
		CreatedAt:   s.nowFunc().UTC().Truncate(time.Millisecond),
	}
	if _, err := s.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.Product{}, domain.ErrDuplicateCode
		}
		return domain.Product{}, fmt.Errorf("insert product: %w", err)
	}
	return doc.toDomain(), nil
}

// UpdateByID $sets only the fields present in changes.
func (s *ProductStore) UpdateByID(ctx context.Context, id string, changes domain.Changes) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrNotFound
	}
	set := bson.M{}
	if changes.Name != nil {
		set["name"] = *changes.Name
	}
	if changes.Price != nil {
		set["price"] = *changes.Price
	}
	if len(set) == 0 {
		return nil
	}

	result, err := s.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteByID removes the identified document.
func (s *ProductStore) DeleteByID(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrNotFound
	}
	result, err := s.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *ProductStore) find(ctx context.Context, filter bson.M) ([]domain.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []productDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	products := make([]domain.Product, 0, len(docs))
	for _, d := range docs {
		products = append(products, d.toDomain())
	}
	return products, nil
}
