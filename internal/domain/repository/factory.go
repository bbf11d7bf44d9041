package repository

import "context"

// Factory describes access to different domain repositories.
type Factory interface {
	Users() UserRepository
	Products() ProductRepository
	Orders() OrderRepository
	Promotions() PromotionRepository
	Payments() PaymentRepository
	Shipping() ShippingRepository
	Carts() CartRepository
}

// Transactor runs fn inside one atomic unit. Repositories reached through the
// context passed to fn take part in it; nested calls join the outer unit.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Store is the persistence boundary consumed by use cases.
type Store interface {
	Factory
	Transactor
}
