package payrun

import (
	"time"

	"github.com/google/uuid"

	cryptoutil "payrun/internal/platform/crypto"
)

type Service struct {
	store            StoreAPI
	populator        Populator
	reconciler       Reconciler
	retry            RetryQueue
	crypto           *cryptoutil.Service
	payslipDir       string
	populateTimeout  time.Duration
	reconcileTimeout time.Duration
	now              func() time.Time
	newID            func() string
}

type Option func(*Service)

func WithPopulator(p Populator) Option {
	return func(s *Service) { s.populator = p }
}

func WithReconciler(r Reconciler) Option {
	return func(s *Service) { s.reconciler = r }
}

func WithRetryQueue(q RetryQueue) Option {
	return func(s *Service) { s.retry = q }
}

func WithTimeouts(populate, reconcile time.Duration) Option {
	return func(s *Service) {
		if populate > 0 {
			s.populateTimeout = populate
		}
		if reconcile > 0 {
			s.reconcileTimeout = reconcile
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithCrypto(c *cryptoutil.Service) Option {
	return func(s *Service) { s.crypto = c }
}

func WithPayslipDir(dir string) Option {
	return func(s *Service) {
		if dir != "" {
			s.payslipDir = dir
		}
	}
}

func NewService(store StoreAPI, opts ...Option) *Service {
	s := &Service{
		store:            store,
		payslipDir:       "storage/payslips",
		populateTimeout:  30 * time.Second,
		reconcileTimeout: 10 * time.Second,
		now:              time.Now,
		newID:            uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.populator == nil {
		s.populator = NewChargePopulator(store)
	}
	if s.reconciler == nil {
		s.reconciler = NewChargeReconciler(store)
	}
	return s
}
