package users

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

const collectionName = "users"

// Repository is the account persistence surface.
type Repository interface {
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Insert(ctx context.Context, user *User) (string, error)
}

type repository struct {
	collection *mongo.Collection
}

// NewRepository builds a user repository over the provided database.
func NewRepository(db *mongo.Database) Repository {
	return &repository{collection: db.Collection(collectionName)}
}

type userDoc struct {
	ID       bson.ObjectID `bson:"_id,omitempty"`
	Email    string        `bson:"email"`
	Password string        `bson:"password,omitempty"`
	Name     string        `bson:"name"`
	Address  Address       `bson:"address"`
	IsAdmin  bool          `bson:"isAdmin,omitempty"`
}

// FindByID loads a user without the password hash. The projection keeps the
// hash out of the driver resultset entirely.
func (r *repository) FindByID(ctx context.Context, id string) (*User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "invalid user id")
	}

	opts := options.FindOne().SetProjection(bson.M{"password": 0})

	var doc userDoc
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return fromUserDoc(doc), nil
}

// FindByEmail loads a user including the password hash, for login.
func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	var doc userDoc
	if err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return fromUserDoc(doc), nil
}

// Insert stores a new account. The unique index on email turns races into a
// duplicate-key error, reported as a conflict.
func (r *repository) Insert(ctx context.Context, user *User) (string, error) {
	doc := userDoc{
		Email:    user.Email,
		Password: user.PasswordHash,
		Name:     user.Name,
		Address:  user.Address,
		IsAdmin:  user.IsAdmin,
	}
	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", pkgerrors.Wrap(pkgerrors.CodeConflict, err, "email already registered")
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert user")
	}
	oid, ok := result.InsertedID.(bson.ObjectID)
	if !ok {
		return "", pkgerrors.New(pkgerrors.CodeInternal, "unexpected inserted id type")
	}
	user.ID = oid.Hex()
	return user.ID, nil
}

func fromUserDoc(doc userDoc) *User {
	return &User{
		ID:           doc.ID.Hex(),
		Email:        doc.Email,
		PasswordHash: doc.Password,
		Name:         doc.Name,
		Address:      doc.Address,
		IsAdmin:      doc.IsAdmin,
	}
}
