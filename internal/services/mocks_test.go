package services

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/localpros/backend/internal/notify"
	"github.com/localpros/backend/internal/processor"
)

type MockProcessor struct {
	mock.Mock
}

func (m *MockProcessor) CreateCheckoutSession(ctx context.Context, params processor.CheckoutParams) (*processor.CheckoutSession, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*processor.CheckoutSession), args.Error(1)
}

func (m *MockProcessor) CreateRefund(ctx context.Context, paymentRef string, amount int64) (*processor.Refund, error) {
	args := m.Called(ctx, paymentRef, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*processor.Refund), args.Error(1)
}

func (m *MockProcessor) CreatePayout(ctx context.Context, accountRef string, amount int64, currency string) (*processor.Payout, error) {
	args := m.Called(ctx, accountRef, amount, currency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*processor.Payout), args.Error(1)
}

func (m *MockProcessor) ListPayouts(ctx context.Context, since time.Time) ([]processor.Payout, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]processor.Payout), args.Error(1)
}

func (m *MockProcessor) ListPayoutTransactions(ctx context.Context, payoutID string) ([]string, error) {
	args := m.Called(ctx, payoutID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, n notify.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotifier) Close() error {
	args := m.Called()
	return args.Error(0)
}
