package dataaccess

import (
	"context"
	"testing"

	"github.com/lfmcord/staffmail/pkg/entities"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestGuildDal_StaffMailConfig(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	const ns = mongoDatabase + "." + guildCollection

	mt.Run("Configured", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "id", Value: "G1"},
			{Key: "staff_mail", Value: bson.D{
				{Key: "enabled", Value: true},
				{Key: "category_id", Value: "parent"},
				{Key: "role_id", Value: "role"},
				{Key: "log_channel_id", Value: "log"},
			}},
		}))

		cfg, err := NewGuildDal(testLogger(), mt.DB).StaffMailConfig(context.Background(), "G1")
		require.NoError(mt, err)
		require.Equal(mt, &entities.StaffMailConfig{
			Enabled:      true,
			CategoryID:   "parent",
			RoleID:       "role",
			LogChannelID: "log",
		}, cfg)
	})

	mt.Run("Unknown", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		cfg, err := NewGuildDal(testLogger(), mt.DB).StaffMailConfig(context.Background(), "G2")
		require.NoError(mt, err)
		require.Nil(mt, cfg)
	})
}

func TestGuildDal_SaveGuild(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("Upserted", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		err := NewGuildDal(testLogger(), mt.DB).SaveGuild(context.Background(), &entities.Guild{
			ID:        "G1",
			StaffMail: entities.StaffMailConfig{Enabled: true, CategoryID: "parent"},
		})
		require.NoError(mt, err)
	})
}
