package usecase

import (
	"context"
	"errors"
	"strings"

	domainErrors "github.com/polkiloo/gopherfood/internal/domain/errors"
	"github.com/polkiloo/gopherfood/internal/domain/model"
	"github.com/polkiloo/gopherfood/internal/domain/repository"
)

// ShippingUseCase manages users' default delivery addresses.
type ShippingUseCase struct {
	store repository.Store
}

// NewShippingUseCase constructs ShippingUseCase.
func NewShippingUseCase(store repository.Store) *ShippingUseCase {
	return &ShippingUseCase{store: store}
}

// GetDefault returns the stored default address of the user.
func (u *ShippingUseCase) GetDefault(ctx context.Context, userID int64) (*model.ShippingInfo, error) {
	return u.store.Shipping().Get(ctx, userID)
}

// SetDefault replaces the user's default address. Phone, address line and city are required.
func (u *ShippingUseCase) SetDefault(ctx context.Context, userID int64, address model.ShippingAddress) (*model.ShippingInfo, error) {
	address = model.ShippingAddress{
		Phone:       strings.TrimSpace(address.Phone),
		AddressLine: strings.TrimSpace(address.AddressLine),
		City:        strings.TrimSpace(address.City),
		Note:        strings.TrimSpace(address.Note),
	}
	if !address.Complete() {
		return nil, domainErrors.Validation("phone, address line and city are required")
	}
	info := &model.ShippingInfo{UserID: userID, ShippingAddress: address}
	if err := u.store.Shipping().Upsert(ctx, info); err != nil {
		return nil, err
	}
	return info, nil
}

// resolve stores a supplied address as the new default and returns the default to snapshot.
func (u *ShippingUseCase) resolve(ctx context.Context, userID int64, supplied model.ShippingAddress) (model.ShippingAddress, error) {
	if !supplied.IsZero() {
		info, err := u.SetDefault(ctx, userID, supplied)
		if err != nil {
			return model.ShippingAddress{}, err
		}
		return info.ShippingAddress, nil
	}
	info, err := u.GetDefault(ctx, userID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return model.ShippingAddress{}, domainErrors.Validation("shipping address required")
		}
		return model.ShippingAddress{}, err
	}
	return info.ShippingAddress, nil
}
