package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainErrors "github.com/polkiloo/gopherfood/internal/domain/errors"
	"github.com/polkiloo/gopherfood/internal/domain/model"
)

func TestShippingUseCase(t *testing.T) {
	f := newFixture(t)

	_, err := f.shipping.GetDefault(context.Background(), customerID)
	require.True(t, errors.Is(err, domainErrors.ErrNotFound))

	_, err = f.shipping.SetDefault(context.Background(), customerID, model.ShippingAddress{Phone: "1", City: "Hanoi"})
	require.True(t, errors.Is(err, domainErrors.ErrValidation))

	info, err := f.shipping.SetDefault(context.Background(), customerID, model.ShippingAddress{
		Phone:       " +84900000001 ",
		AddressLine: "1 Main St ",
		City:        " Hanoi",
		Note:        " ring twice ",
	})
	require.NoError(t, err)
	assert.Equal(t, "+84900000001", info.Phone)
	assert.Equal(t, "ring twice", info.Note)

	got, err := f.shipping.GetDefault(context.Background(), customerID)
	require.NoError(t, err)
	assert.Equal(t, info.ShippingAddress, got.ShippingAddress)
	assert.False(t, got.UpdatedAt.IsZero())
}
