package orders

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/users"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

const collectionName = "orders"

// Repository is the order persistence surface.
type Repository interface {
	Insert(ctx context.Context, order *Order) (string, error)
	UpdateStatus(ctx context.Context, id, status string) error
	FindAll(ctx context.Context) ([]Order, error)
	FindAllForUser(ctx context.Context, userID string) ([]Order, error)
	FindByID(ctx context.Context, id string) (*Order, error)
}

type repository struct {
	collection *mongo.Collection
}

// NewRepository builds an order repository over the provided database.
func NewRepository(db *mongo.Database) Repository {
	return &repository{collection: db.Collection(collectionName)}
}

type orderDoc struct {
	ID          bson.ObjectID   `bson:"_id,omitempty"`
	UserData    userSnapshotDoc `bson:"userData"`
	ProductData cart.Doc        `bson:"productData"`
	Status      string          `bson:"status"`
	Date        time.Time       `bson:"date"`
}

type userSnapshotDoc struct {
	ID      bson.ObjectID `bson:"_id"`
	Email   string        `bson:"email"`
	Name    string        `bson:"name"`
	Address users.Address `bson:"address"`
}

// Insert stores a new order with the current timestamp. Status defaults to
// pending when unset.
func (r *repository) Insert(ctx context.Context, order *Order) (string, error) {
	uid, err := bson.ObjectIDFromHex(order.User.ID)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id on order")
	}
	if order.Status == "" {
		order.Status = StatusPending
	}
	order.CreatedAt = time.Now().UTC()

	doc := orderDoc{
		UserData: userSnapshotDoc{
			ID:      uid,
			Email:   order.User.Email,
			Name:    order.User.Name,
			Address: order.User.Address,
		},
		ProductData: order.Cart.ToDoc(),
		Status:      order.Status,
		Date:        order.CreatedAt,
	}

	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert order")
	}
	oid, ok := result.InsertedID.(bson.ObjectID)
	if !ok {
		return "", pkgerrors.New(pkgerrors.CodeInternal, "unexpected inserted id type")
	}
	order.ID = oid.Hex()
	return order.ID, nil
}

// UpdateStatus rewrites only the status field of an existing order.
func (r *repository) UpdateStatus(ctx context.Context, id, status string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "invalid order id")
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	if result.MatchedCount == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return nil
}

// FindAll lists every order, newest first.
func (r *repository) FindAll(ctx context.Context) ([]Order, error) {
	return r.find(ctx, bson.M{})
}

// FindAllForUser lists one user's orders, newest first.
func (r *repository) FindAllForUser(ctx context.Context, userID string) ([]Order, error) {
	uid, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "invalid user id")
	}
	return r.find(ctx, bson.M{"userData._id": uid})
}

func (r *repository) FindByID(ctx context.Context, id string) (*Order, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "invalid order id")
	}

	var doc orderDoc
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return fromOrderDoc(doc)
}

func (r *repository) find(ctx context.Context, filter bson.M) ([]Order, error) {
	opts := options.Find().SetSort(bson.M{"_id": -1})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	var docs []orderDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode orders")
	}

	out := make([]Order, 0, len(docs))
	for _, doc := range docs {
		order, err := fromOrderDoc(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, *order)
	}
	return out, nil
}

func fromOrderDoc(doc orderDoc) (*Order, error) {
	restored, err := cart.FromDoc(doc.ProductData)
	if err != nil {
		return nil, err
	}
	return &Order{
		ID: doc.ID.Hex(),
		User: users.User{
			ID:      doc.UserData.ID.Hex(),
			Email:   doc.UserData.Email,
			Name:    doc.UserData.Name,
			Address: doc.UserData.Address,
		},
		Cart:      *restored,
		Status:    doc.Status,
		CreatedAt: doc.Date,
	}, nil
}
