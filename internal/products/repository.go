package products

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

const collectionName = "products"

// Repository is the catalog persistence surface.
type Repository interface {
	FindByID(ctx context.Context, id string) (*Product, error)
	FindAll(ctx context.Context) ([]Product, error)
	FindMultiple(ctx context.Context, ids []string) ([]Product, error)
	Insert(ctx context.Context, product *Product) (string, error)
	Update(ctx context.Context, product *Product) error
	Remove(ctx context.Context, id string) error
}

type repository struct {
	collection *mongo.Collection
}

// NewRepository builds a catalog repository over the provided database.
func NewRepository(db *mongo.Database) Repository {
	return &repository{collection: db.Collection(collectionName)}
}

type productDoc struct {
	ID          bson.ObjectID `bson:"_id,omitempty"`
	Title       string        `bson:"title"`
	Summary     string        `bson:"summary"`
	Price       string        `bson:"price"`
	Description string        `bson:"description"`
	Image       string        `bson:"image,omitempty"`
}

// FindByID loads a single product. A malformed identifier is reported the
// same way as a missing record: not found.
func (r *repository) FindByID(ctx context.Context, id string) (*Product, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "invalid product id")
	}

	var doc productDoc
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	product, err := fromDoc(doc)
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (r *repository) FindAll(ctx context.Context) ([]Product, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return decodeAll(ctx, cursor)
}

// FindMultiple performs the batched existence lookup behind cart price
// reconciliation. Malformed and missing ids are silently absent from the
// result rather than errors.
func (r *repository) FindMultiple(ctx context.Context, ids []string) ([]Product, error) {
	oids := make([]bson.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := bson.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		oids = append(oids, oid)
	}
	if len(oids) == 0 {
		return nil, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}
	return decodeAll(ctx, cursor)
}

func (r *repository) Insert(ctx context.Context, product *Product) (string, error) {
	doc := toDoc(product)
	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert product")
	}
	oid, ok := result.InsertedID.(bson.ObjectID)
	if !ok {
		return "", pkgerrors.New(pkgerrors.CodeInternal, "unexpected inserted id type")
	}
	product.ID = oid.Hex()
	return product.ID, nil
}

// Update overwrites the stored fields of an existing product. When no new
// image filename was supplied the prior image is preserved.
func (r *repository) Update(ctx context.Context, product *Product) error {
	oid, err := bson.ObjectIDFromHex(product.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "invalid product id")
	}

	fields := bson.M{
		"title":       product.Title,
		"summary":     product.Summary,
		"price":       product.Price.StringFixed(2),
		"description": product.Description,
	}
	if product.Image != "" {
		fields["image"] = product.Image
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": fields})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	if result.MatchedCount == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return nil
}

func (r *repository) Remove(ctx context.Context, id string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "invalid product id")
	}
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	if result.DeletedCount == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return nil
}

func decodeAll(ctx context.Context, cursor *mongo.Cursor) ([]Product, error) {
	var docs []productDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode products")
	}
	out := make([]Product, 0, len(docs))
	for _, doc := range docs {
		product, err := fromDoc(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, *product)
	}
	return out, nil
}

func toDoc(product *Product) productDoc {
	return productDoc{
		Title:       product.Title,
		Summary:     product.Summary,
		Price:       product.Price.StringFixed(2),
		Description: product.Description,
		Image:       product.Image,
	}
}

func fromDoc(doc productDoc) (*Product, error) {
	price, err := decimal.NewFromString(doc.Price)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("corrupt price on product %s", doc.ID.Hex()))
	}
	product := &Product{
		ID:          doc.ID.Hex(),
		Title:       doc.Title,
		Summary:     doc.Summary,
		Price:       price,
		Description: doc.Description,
		Image:       doc.Image,
	}
	product.RefreshImageData()
	return product, nil
}
