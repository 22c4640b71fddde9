package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/telepesa/ledger/internal/domain"
)

// LedgerUseCase applies credits, debits and transfers to account balances.
type LedgerUseCase struct {
	accountRepo AccountRepository
	retrier     Retrier
	recorder    MovementRecorder
	metrics     LedgerMetrics
	logger      zerolog.Logger
	now         func() time.Time
	newRef      func() string
	timeout     time.Duration
}

// LedgerOption configures a LedgerUseCase.
type LedgerOption func(*LedgerUseCase)

// WithMovementRecorder sets the collaborator notified after each commit.
func WithMovementRecorder(r MovementRecorder) LedgerOption {
	return func(uc *LedgerUseCase) { uc.recorder = r }
}

// WithLedgerMetrics sets the metrics sink.
func WithLedgerMetrics(m LedgerMetrics) LedgerOption {
	return func(uc *LedgerUseCase) { uc.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) LedgerOption {
	return func(uc *LedgerUseCase) { uc.logger = l }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) LedgerOption {
	return func(uc *LedgerUseCase) { uc.now = now }
}

// WithReferenceGenerator overrides how transfer references are minted.
func WithReferenceGenerator(f func() string) LedgerOption {
	return func(uc *LedgerUseCase) { uc.newRef = f }
}

// WithOperationTimeout bounds each operation including retries.
func WithOperationTimeout(d time.Duration) LedgerOption {
	return func(uc *LedgerUseCase) { uc.timeout = d }
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(accountRepo AccountRepository, retrier Retrier, opts ...LedgerOption) *LedgerUseCase {
	uc := &LedgerUseCase{
		accountRepo: accountRepo,
		retrier:     retrier,
		recorder:    nopRecorder{},
		metrics:     nopMetrics{},
		logger:      zerolog.Nop(),
		now:         func() time.Time { return time.Now().UTC() },
		newRef:      uuid.NewString,
		timeout:     DefaultOperationTimeout,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// CreditInput represents input for crediting an account.
type CreditInput struct {
	AccountNumber string
	Amount        decimal.Decimal
	Description   string
}

// DebitInput represents input for debiting an account.
type DebitInput struct {
	AccountNumber string
	Amount        decimal.Decimal
	Description   string
}

// TransferInput represents input for moving funds between two accounts.
type TransferInput struct {
	FromAccountNumber string
	ToAccountNumber   string
	Amount            decimal.Decimal
	Description       string
}

// Credit adds funds to an account and returns the committed account.
func (uc *LedgerUseCase) Credit(ctx context.Context, input CreditInput) (*domain.Account, error) {
	return uc.mutateOne(ctx, OperationCredit, input.AccountNumber, input.Amount, input.Description,
		func(a *domain.Account, now time.Time) error {
			return a.Credit(input.Amount, now)
		})
}

// Debit withdraws funds from an account and returns the committed account.
func (uc *LedgerUseCase) Debit(ctx context.Context, input DebitInput) (*domain.Account, error) {
	return uc.mutateOne(ctx, OperationDebit, input.AccountNumber, input.Amount, input.Description,
		func(a *domain.Account, now time.Time) error {
			return a.Debit(input.Amount, now)
		})
}

func (uc *LedgerUseCase) mutateOne(
	ctx context.Context,
	operation, accountNumber string,
	amount decimal.Decimal,
	description string,
	mutate func(*domain.Account, time.Time) error,
) (*domain.Account, error) {
	start := time.Now()
	log := uc.logger.With().
		Str("operation", operation).
		Str("account_number", accountNumber).
		Str("amount", amount.String()).
		Logger()

	if err := domain.ValidateAmount(amount); err != nil {
		uc.finish(log, operation, start, err)
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	var committed *domain.Account
	err := uc.retrier.Retry(ctx, func() error {
		stored, err := uc.accountRepo.GetByNumber(ctx, accountNumber)
		if err != nil {
			return err
		}

		account := stored.Clone()
		if err := mutate(account, uc.now()); err != nil {
			return err
		}

		uow := NewUnitOfWork(uc.accountRepo)
		defer uow.Discard()

		if err := uow.Track(account); err != nil {
			return err
		}
		if err := uow.Commit(ctx); err != nil {
			uc.conflict(log, operation, err)
			return err
		}

		committed = account
		return nil
	})
	err = asConcurrentModification(err)
	uc.finish(log, operation, start, err)
	if err != nil {
		return nil, err
	}

	balance := committed.Balance
	movement := domain.Movement{
		Reference:   uc.newRef(),
		Kind:        operation,
		Amount:      amount,
		Currency:    committed.Currency,
		Description: domain.TruncateDescription(description),
		OccurredAt:  *committed.LastTransactionDate,
	}
	if operation == OperationDebit {
		movement.FromAccountNumber = accountNumber
		movement.FromBalanceAfter = &balance
	} else {
		movement.ToAccountNumber = accountNumber
		movement.ToBalanceAfter = &balance
	}
	uc.record(ctx, log, operation, movement)

	return committed, nil
}

// Transfer debits the source and credits the destination as one unit of work.
// The returned transfer is always non-nil and records the state the
// orchestrator ended in: COMMITTED on success, REJECTED when validation
// failed before any mutation, ABORTED when a computed mutation was discarded.
func (uc *LedgerUseCase) Transfer(ctx context.Context, input TransferInput) (*domain.Transfer, error) {
	start := time.Now()
	transfer := &domain.Transfer{
		Reference:         uc.newRef(),
		FromAccountNumber: input.FromAccountNumber,
		ToAccountNumber:   input.ToAccountNumber,
		Amount:            input.Amount,
		Description:       domain.TruncateDescription(input.Description),
		State:             domain.TransferStateValidating,
		CreatedAt:         uc.now(),
	}
	log := uc.logger.With().
		Str("operation", OperationTransfer).
		Str("reference", transfer.Reference).
		Str("from_account_number", input.FromAccountNumber).
		Str("to_account_number", input.ToAccountNumber).
		Str("amount", input.Amount.String()).
		Logger()

	if err := transfer.Validate(); err != nil {
		transfer.State = domain.TransferStateRejected
		uc.finish(log, OperationTransfer, start, err)
		return transfer, err
	}
	if err := domain.ValidateAmount(input.Amount); err != nil {
		transfer.State = domain.TransferStateRejected
		uc.finish(log, OperationTransfer, start, err)
		return transfer, err
	}

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	var from, to *domain.Account
	err := uc.retrier.Retry(ctx, func() error {
		transfer.Attempts++
		transfer.State = domain.TransferStateValidating

		source, destination, err := uc.loadPair(ctx, input.FromAccountNumber, input.ToAccountNumber)
		if err != nil {
			return err
		}

		if err := source.CheckDebit(input.Amount); err != nil {
			return err
		}
		if err := destination.CheckCredit(input.Amount); err != nil {
			return err
		}
		if source.Currency != destination.Currency {
			return domain.ErrCurrencyMismatch
		}

		now := uc.now()

		transfer.State = domain.TransferStateDebiting
		if err := source.Debit(input.Amount, now); err != nil {
			return err
		}

		transfer.State = domain.TransferStateCrediting
		if err := destination.Credit(input.Amount, now); err != nil {
			return err
		}

		uow := NewUnitOfWork(uc.accountRepo)
		defer uow.Discard()

		if err := uow.Track(source, destination); err != nil {
			return err
		}
		if err := uow.Commit(ctx); err != nil {
			uc.conflict(log, OperationTransfer, err)
			return err
		}

		from, to = source, destination
		return nil
	})
	err = asConcurrentModification(err)
	uc.finish(log, OperationTransfer, start, err)

	if err != nil {
		if transfer.State == domain.TransferStateValidating {
			transfer.State = domain.TransferStateRejected
		} else {
			transfer.State = domain.TransferStateAborted
		}
		return transfer, err
	}

	committedAt := *from.LastTransactionDate
	transfer.State = domain.TransferStateCommitted
	transfer.CommittedAt = &committedAt

	fromBalance, toBalance := from.Balance, to.Balance
	uc.record(ctx, log, OperationTransfer, domain.Movement{
		Reference:         transfer.Reference,
		Kind:              domain.MovementKindTransfer,
		FromAccountNumber: from.AccountNumber,
		ToAccountNumber:   to.AccountNumber,
		Amount:            input.Amount,
		Currency:          from.Currency,
		Description:       transfer.Description,
		FromBalanceAfter:  &fromBalance,
		ToBalanceAfter:    &toBalance,
		OccurredAt:        committedAt,
	})

	return transfer, nil
}

// loadPair fetches both legs in account number order and returns private
// copies in (from, to) order.
func (uc *LedgerUseCase) loadPair(ctx context.Context, fromNumber, toNumber string) (*domain.Account, *domain.Account, error) {
	first, second := fromNumber, toNumber
	if second < first {
		first, second = second, first
	}

	a, err := uc.accountRepo.GetByNumber(ctx, first)
	if err != nil {
		return nil, nil, err
	}
	b, err := uc.accountRepo.GetByNumber(ctx, second)
	if err != nil {
		return nil, nil, err
	}

	if first == fromNumber {
		return a.Clone(), b.Clone(), nil
	}
	return b.Clone(), a.Clone(), nil
}

func (uc *LedgerUseCase) conflict(log zerolog.Logger, operation string, err error) {
	if !errors.Is(err, domain.ErrConcurrentModification) {
		return
	}
	uc.metrics.ObserveConflict(operation)
	log.Warn().Err(err).Msg("optimistic version conflict")
}

func (uc *LedgerUseCase) finish(log zerolog.Logger, operation string, start time.Time, err error) {
	outcome := outcomeOf(err)
	uc.metrics.ObserveOperation(operation, outcome, time.Since(start))

	switch outcome {
	case OutcomeCommitted:
		log.Info().Msg("ledger operation committed")
	case OutcomeRejected:
		log.Info().Err(err).Msg("ledger operation rejected")
	default:
		log.Error().Err(err).Str("outcome", outcome).Msg("ledger operation failed")
	}
}

// record hands a committed movement to the recorder. The balances are
// already durable, so a recorder failure is reported but not returned.
func (uc *LedgerUseCase) record(ctx context.Context, log zerolog.Logger, operation string, m domain.Movement) {
	uc.metrics.ObserveAmount(operation, m.Amount.InexactFloat64())

	if err := uc.recorder.Record(context.WithoutCancel(ctx), m); err != nil {
		uc.metrics.ObserveRecorderFailure()
		log.Error().Err(err).Str("reference", m.Reference).Msg("failed to record movement")
	}
}
