package redis_a_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	redis_a "github.com/ammerola/lot-allocator/internal/adapters/redis_adapter"
	"github.com/ammerola/lot-allocator/internal/core/domain"
	"github.com/ammerola/lot-allocator/test/helpers"
	"github.com/ammerola/lot-allocator/test/mocks"
)

func TestCachedLotMetadata_ReadThrough(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	inner := mocks.NewMockLotMetadataProvider(ctrl)
	cache, _ := newCache(t)

	tenant := uuid.New()
	before := time.Date(2024, 3, 17, 0, 0, 0, 0, time.UTC)
	lot := helpers.CreateTestLot(func(l *domain.Lot) { l.TenantID = tenant })

	inner.EXPECT().
		FindActiveExpiringBefore(gomock.Any(), tenant, before).
		Return([]domain.Lot{lot}, nil).
		Times(1)

	cached := redis_a.NewCachedLotMetadata(inner, cache, time.Minute, helpers.TestLogger())

	for i := 0; i < 3; i++ {
		lots, err := cached.FindActiveExpiringBefore(ctx, tenant, before)
		require.NoError(t, err)
		require.Len(t, lots, 1)
		assert.Equal(t, lot.ID, lots[0].ID)
		assert.Equal(t, lot.LotNo, lots[0].LotNo)
		require.NotNil(t, lots[0].ExpiryDate)
		assert.True(t, lot.ExpiryDate.Equal(*lots[0].ExpiryDate))
	}
}

func TestCachedLotMetadata_Invalidate(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	inner := mocks.NewMockLotMetadataProvider(ctrl)
	cache, _ := newCache(t)

	tenant := uuid.New()
	before := time.Date(2024, 3, 17, 0, 0, 0, 0, time.UTC)

	inner.EXPECT().FindActiveExpiringBefore(gomock.Any(), tenant, before).Return(nil, nil).Times(2)

	cached := redis_a.NewCachedLotMetadata(inner, cache, time.Minute, helpers.TestLogger())

	_, err := cached.FindActiveExpiringBefore(ctx, tenant, before)
	require.NoError(t, err)

	require.NoError(t, cached.Invalidate(ctx, tenant))

	_, err = cached.FindActiveExpiringBefore(ctx, tenant, before)
	require.NoError(t, err)
}

func TestCachedLotMetadata_Errors(t *testing.T) {
	ctx := context.Background()
	tenant := uuid.New()
	before := time.Date(2024, 3, 17, 0, 0, 0, 0, time.UTC)

	t.Run("provider_error_is_returned_unwrapped", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		inner := mocks.NewMockLotMetadataProvider(ctrl)
		cache, _ := newCache(t)
		boom := errors.New("db down")

		inner.EXPECT().FindActiveExpiringBefore(gomock.Any(), tenant, before).Return(nil, boom)

		cached := redis_a.NewCachedLotMetadata(inner, cache, time.Minute, helpers.TestLogger())
		lots, err := cached.FindActiveExpiringBefore(ctx, tenant, before)
		assert.Nil(t, lots)
		assert.Equal(t, boom, err)
	})

	t.Run("redis_outage_falls_through", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		inner := mocks.NewMockLotMetadataProvider(ctrl)
		cache, mr := newCache(t)
		mr.Close()

		inner.EXPECT().
			FindActiveExpiringBefore(gomock.Any(), tenant, before).
			Return([]domain.Lot{helpers.CreateTestLot()}, nil).
			Times(1)

		cached := redis_a.NewCachedLotMetadata(inner, cache, time.Minute, helpers.TestLogger())
		lots, err := cached.FindActiveExpiringBefore(ctx, tenant, before)
		require.NoError(t, err)
		assert.Len(t, lots, 1)
	})
}
