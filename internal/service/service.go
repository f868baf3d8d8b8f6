// Package service implements the store's use cases on top of units of work.
// Every exported operation returns a result.Result or result.Status; store
// faults are logged here and surface only as opaque InternalError failures.
package service

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/jbweber/homelab/gamestore/internal/logging"
	"github.com/jbweber/homelab/gamestore/internal/metrics"
	"github.com/jbweber/homelab/gamestore/internal/repository"
	"github.com/jbweber/homelab/gamestore/internal/result"
)

// UnitOfWorkFactory creates one unit of work per operation.
type UnitOfWorkFactory interface {
	New() *repository.UnitOfWork
}

// base carries what every service shares.
type base struct {
	uows    UnitOfWorkFactory
	logger  *log.Entry
	metrics *metrics.StoreMetrics
}

func newBase(uows UnitOfWorkFactory, logger *log.Entry, m *metrics.StoreMetrics, component string) base {
	if logger == nil {
		logger = logging.Discard()
	}
	return base{uows: uows, logger: logger.WithField("component", component), metrics: m}
}

// withUnitOfWork runs fn against a fresh unit of work and closes it afterwards.
func withUnitOfWork[T any](ctx context.Context, b base, fn func(ctx context.Context, uow *repository.UnitOfWork) result.Result[T]) result.Result[T] {
	uow := b.uows.New()
	defer func() {
		if err := uow.Close(); err != nil {
			b.logger.WithError(err).Warn("failed to close unit of work")
		}
	}()
	return fn(ctx, uow)
}

func withUnitOfWorkStatus(ctx context.Context, b base, fn func(ctx context.Context, uow *repository.UnitOfWork) result.Status) result.Status {
	r := withUnitOfWork(ctx, b, func(ctx context.Context, uow *repository.UnitOfWork) result.Result[struct{}] {
		return result.FromStatus(fn(ctx, uow), struct{}{})
	})
	return r.Status()
}

// fail records a business failure and returns it.
func fail[T any](b base, op, message string, errType result.ErrorType) result.Result[T] {
	b.metrics.RecordServiceFailure(op, errType.String())
	b.logger.WithFields(log.Fields{"operation": op, "category": errType.String()}).Warn(message)
	return result.Fail[T](message, errType)
}

// internalError logs err with context and hides it behind message.
func internalError[T any](b base, op string, err error, message string, fields log.Fields) result.Result[T] {
	b.metrics.RecordServiceFailure(op, result.InternalError.String())
	b.logger.WithFields(fields).WithField("operation", op).WithError(err).Error(message)
	return result.Fail[T](message, result.InternalError)
}

func failStatus(b base, op, message string, errType result.ErrorType) result.Status {
	return fail[struct{}](b, op, message, errType).Status()
}

func internalStatus(b base, op string, err error, message string, fields log.Fields) result.Status {
	return internalError[struct{}](b, op, err, message, fields).Status()
}
