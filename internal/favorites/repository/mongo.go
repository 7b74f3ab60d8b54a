package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonor84/nodeimages/internal/favorites"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepo stores one document per user in a collection with a unique
// index on "user". Adds are conditional updates, so an entry is pushed only
// when the user's record does not already hold its url.
type MongoRepo struct {
	col *mongo.Collection
}

func NewMongoRepo(col *mongo.Collection) *MongoRepo {
	return &MongoRepo{col: col}
}

// EnsureIndexes creates the unique index on user.
func (m *MongoRepo) EnsureIndexes(ctx context.Context) error {
	idx := mongo.IndexModel{Keys: bson.D{{Key: "user", Value: 1}}, Options: options.Index().SetUnique(true)}
	_, err := m.col.Indexes().CreateOne(ctx, idx)
	return err
}

func (m *MongoRepo) List(ctx context.Context, userID string) ([]favorites.Favorite, error) {
	var rec favorites.UserFavorites
	err := m.col.FindOne(ctx, bson.M{"user": userID}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return []favorites.Favorite{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", favorites.ErrRead, err)
	}
	if rec.FavoriteImages == nil {
		return []favorites.Favorite{}, nil
	}
	return rec.FavoriteImages, nil
}

// Add pushes f only when the user's record has no entry with the same url.
// The first write is an upsert. It fails on the unique index either when the
// record already holds the url or when a concurrent add created the record
// first; a plain update with the same filter tells the two apart.
func (m *MongoRepo) Add(ctx context.Context, userID, displayName string, f favorites.Favorite) error {
	f.User = userID
	filter := bson.M{"user": userID, "favoriteImages.url": bson.M{"$ne": f.URL}}
	update := bson.M{
		"$push":        bson.M{"favoriteImages": f},
		"$setOnInsert": bson.M{"name": displayName},
	}
	_, err := m.col.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	switch {
	case err == nil:
		return nil
	case !mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", favorites.ErrWrite, err)
	}

	res, err := m.col.UpdateOne(ctx, filter, bson.M{"$push": bson.M{"favoriteImages": f}})
	if err != nil {
		return fmt.Errorf("%w: %v", favorites.ErrWrite, err)
	}
	if res.MatchedCount == 0 {
		return favorites.ErrDuplicate
	}
	return nil
}

func (m *MongoRepo) Records(ctx context.Context) ([]favorites.UserFavorites, error) {
	cur, err := m.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", favorites.ErrRead, err)
	}
	defer cur.Close(ctx)
	out := []favorites.UserFavorites{}
	for cur.Next(ctx) {
		var rec favorites.UserFavorites
		if err := cur.Decode(&rec); err != nil {
			return nil, fmt.Errorf("%w: %v", favorites.ErrRead, err)
		}
		out = append(out, rec)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", favorites.ErrRead, err)
	}
	return out, nil
}
