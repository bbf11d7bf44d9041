package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/gopherfood/internal/adapter/mail"
	"github.com/polkiloo/gopherfood/internal/adapter/notify"
	"github.com/polkiloo/gopherfood/internal/adapter/payment"
	"github.com/polkiloo/gopherfood/internal/app"
	"github.com/polkiloo/gopherfood/internal/config"
	"github.com/polkiloo/gopherfood/internal/logger"
	"github.com/polkiloo/gopherfood/internal/metrics"
	"github.com/polkiloo/gopherfood/internal/pkg/auth"
	"github.com/polkiloo/gopherfood/internal/server/http/middleware"
	"github.com/polkiloo/gopherfood/internal/server/http/router"
	"github.com/polkiloo/gopherfood/internal/storage/postgres"
	"github.com/polkiloo/gopherfood/internal/usecase"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		auth.Module,
		postgres.Module,
		metrics.Module,
		notify.Module,
		mail.Module,
		payment.Module,
		usecase.Module,
		middleware.Module,
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
