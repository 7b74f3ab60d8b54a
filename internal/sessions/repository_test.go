package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestMongoRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("create", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		repo := NewMongoRepository(mt.Coll)
		now := time.Now().UTC()
		require.NoError(mt, repo.Create(ctx, &Session{ID: "s1", UserID: "github|1", CreatedAt: now, ExpiresAt: now.Add(time.Hour)}))
	})

	mt.Run("get", func(mt *mtest.T) {
		exp := time.Now().UTC().Add(time.Hour).Truncate(time.Millisecond)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "nodeimages.sessions", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "s1"},
			{Key: "userId", Value: "github|1"},
			{Key: "displayName", Value: "octo"},
			{Key: "provider", Value: "github"},
			{Key: "expiresAt", Value: exp},
		}))
		got, err := NewMongoRepository(mt.Coll).Get(ctx, "s1")
		require.NoError(mt, err)
		require.NotNil(mt, got)
		require.Equal(mt, "github|1", got.UserID)
		require.Equal(mt, "octo", got.DisplayName)
		require.True(mt, exp.Equal(got.ExpiresAt))
	})

	mt.Run("get missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "nodeimages.sessions", mtest.FirstBatch))
		got, err := NewMongoRepository(mt.Coll).Get(ctx, "nope")
		require.NoError(mt, err)
		require.Nil(mt, got)
	})

	mt.Run("delete", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))
		require.NoError(mt, NewMongoRepository(mt.Coll).Delete(ctx, "s1"))
	})
}
