package session

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/angelmondragon/storefront-backend/internal/cart"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

const collectionName = "sessions"

// ErrNotFound reports a session id with no backing document. The cookie is
// stale or forged; callers start a fresh session.
var ErrNotFound = errors.New("session not found")

// Store persists sessions between requests.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, session *Session) error
	Delete(ctx context.Context, id string) error
}

type mongoStore struct {
	collection *mongo.Collection
}

// NewMongoStore builds a session store over the sessions collection. The
// TTL index on expiresAt reaps abandoned sessions server-side.
func NewMongoStore(db *mongo.Database) Store {
	return &mongoStore{collection: db.Collection(collectionName)}
}

type sessionDoc struct {
	ID        string    `bson:"_id"`
	UID       string    `bson:"uid,omitempty"`
	IsAdmin   bool      `bson:"isAdmin,omitempty"`
	Cart      *cart.Doc `bson:"cart,omitempty"`
	Flashed   *flashDoc `bson:"flashedData,omitempty"`
	CSRFToken string    `bson:"csrfToken"`
	ExpiresAt time.Time `bson:"expiresAt"`
	CreatedAt time.Time `bson:"createdAt"`
}

type flashDoc struct {
	Message string            `bson:"message"`
	Fields  map[string]string `bson:"fields,omitempty"`
}

func (s *mongoStore) Get(ctx context.Context, id string) (*Session, error) {
	var doc sessionDoc
	if err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load session")
	}
	return fromSessionDoc(doc)
}

// Save upserts the whole session document. Concurrent requests on one
// session race last-writer-wins.
func (s *mongoStore) Save(ctx context.Context, session *Session) error {
	doc, err := toSessionDoc(session)
	if err != nil {
		return err
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.collection.ReplaceOne(ctx, bson.M{"_id": session.ID}, doc, opts); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save session")
	}
	return nil
}

func (s *mongoStore) Delete(ctx context.Context, id string) error {
	if _, err := s.collection.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete session")
	}
	return nil
}

func toSessionDoc(session *Session) (sessionDoc, error) {
	doc := sessionDoc{
		ID:        session.ID,
		UID:       session.UID,
		IsAdmin:   session.IsAdmin,
		CSRFToken: session.CSRFToken,
		ExpiresAt: session.ExpiresAt,
		CreatedAt: session.CreatedAt,
	}
	if session.Cart != nil {
		cartDoc := session.Cart.ToDoc()
		doc.Cart = &cartDoc
	}
	if session.Flash != nil {
		doc.Flashed = &flashDoc{Message: session.Flash.Message, Fields: session.Flash.Fields}
	}
	return doc, nil
}

func fromSessionDoc(doc sessionDoc) (*Session, error) {
	session := &Session{
		ID:        doc.ID,
		UID:       doc.UID,
		IsAdmin:   doc.IsAdmin,
		CSRFToken: doc.CSRFToken,
		ExpiresAt: doc.ExpiresAt,
		CreatedAt: doc.CreatedAt,
	}
	if doc.Cart != nil {
		restored, err := cart.FromDoc(*doc.Cart)
		if err != nil {
			return nil, err
		}
		session.Cart = restored
	}
	if doc.Flashed != nil {
		session.Flash = &FlashData{Message: doc.Flashed.Message, Fields: doc.Flashed.Fields}
	}
	return session, nil
}
