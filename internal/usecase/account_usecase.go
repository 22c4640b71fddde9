package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/telepesa/ledger/internal/domain"
)

// AccountUseCase handles account opening and lifecycle transitions.
type AccountUseCase struct {
	accountRepo AccountRepository
	idGen       IDGenerator
	numberGen   AccountNumberGenerator
	retrier     Retrier
	policy      domain.MinimumBalancePolicy
	metrics     LedgerMetrics
	logger      zerolog.Logger
	now         func() time.Time
	timeout     time.Duration
}

// AccountOption configures an AccountUseCase.
type AccountOption func(*AccountUseCase)

// WithMinimumBalancePolicy sets the per-type minimum balance table.
func WithMinimumBalancePolicy(p domain.MinimumBalancePolicy) AccountOption {
	return func(uc *AccountUseCase) { uc.policy = p }
}

// WithAccountMetrics sets the metrics sink for lifecycle operations.
func WithAccountMetrics(m LedgerMetrics) AccountOption {
	return func(uc *AccountUseCase) { uc.metrics = m }
}

// WithAccountLogger sets the logger.
func WithAccountLogger(l zerolog.Logger) AccountOption {
	return func(uc *AccountUseCase) { uc.logger = l }
}

// WithAccountClock overrides the time source.
func WithAccountClock(now func() time.Time) AccountOption {
	return func(uc *AccountUseCase) { uc.now = now }
}

// WithAccountOperationTimeout bounds one lifecycle transition including
// its retries.
func WithAccountOperationTimeout(d time.Duration) AccountOption {
	return func(uc *AccountUseCase) {
		if d > 0 {
			uc.timeout = d
		}
	}
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(
	accountRepo AccountRepository,
	idGen IDGenerator,
	numberGen AccountNumberGenerator,
	retrier Retrier,
	opts ...AccountOption,
) *AccountUseCase {
	uc := &AccountUseCase{
		accountRepo: accountRepo,
		idGen:       idGen,
		numberGen:   numberGen,
		retrier:     retrier,
		policy:      domain.DefaultMinimumBalancePolicy(),
		metrics:     nopMetrics{},
		logger:      zerolog.Nop(),
		now:         func() time.Time { return time.Now().UTC() },
		timeout:     DefaultOperationTimeout,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// OpenAccountInput represents input for opening an account.
type OpenAccountInput struct {
	Name     string
	Type     domain.AccountType
	Currency string
	// InitialDeposit may be zero.
	InitialDeposit decimal.Decimal
	// MinimumBalance overrides the policy floor for the type when set.
	MinimumBalance   *decimal.Decimal
	OverdraftAllowed bool
	OverdraftLimit   decimal.Decimal
	DailyLimit       *decimal.Decimal
	MonthlyLimit     *decimal.Decimal
}

// OpenAccount creates a PENDING account with a freshly generated number.
func (uc *AccountUseCase) OpenAccount(ctx context.Context, input OpenAccountInput) (*domain.Account, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" || len(name) > domain.MaxAccountNameLength {
		return nil, fmt.Errorf("%w: name must be 1-%d characters", domain.ErrInvalidAccountName, domain.MaxAccountNameLength)
	}

	accountType, err := domain.ParseAccountType(string(input.Type))
	if err != nil {
		return nil, err
	}

	currency, err := domain.NormalizeCurrency(input.Currency)
	if err != nil {
		return nil, err
	}

	minimum := uc.policy.MinimumFor(accountType)
	if input.MinimumBalance != nil {
		minimum = *input.MinimumBalance
	}
	if minimum.IsNegative() || !domain.HasMoneyScale(minimum) {
		return nil, domain.ErrInvalidMinimumBalance
	}
	if input.OverdraftLimit.IsNegative() || !domain.HasMoneyScale(input.OverdraftLimit) {
		return nil, domain.ErrInvalidOverdraftLimit
	}
	if input.InitialDeposit.IsNegative() || !domain.HasMoneyScale(input.InitialDeposit) {
		return nil, domain.ErrInvalidAmount
	}
	if input.InitialDeposit.LessThan(minimum) {
		return nil, fmt.Errorf("%w: initial deposit %s, minimum %s",
			domain.ErrBelowMinimumBalance, input.InitialDeposit, minimum)
	}

	now := uc.now()
	account := &domain.Account{
		ID:               uc.idGen.Generate(),
		Type:             accountType,
		Name:             name,
		Currency:         currency,
		Balance:          input.InitialDeposit,
		AvailableBalance: input.InitialDeposit,
		MinimumBalance:   minimum,
		OverdraftAllowed: input.OverdraftAllowed,
		OverdraftLimit:   input.OverdraftLimit,
		DailyLimit:       input.DailyLimit,
		MonthlyLimit:     input.MonthlyLimit,
		Status:           domain.AccountStatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	for attempt := 0; attempt < MaxAccountNumberAttempts; attempt++ {
		number, err := uc.numberGen.Generate(accountType, now)
		if err != nil {
			return nil, fmt.Errorf("generate account number: %w", err)
		}
		account.AccountNumber = number

		err = uc.accountRepo.Create(ctx, account)
		if err == nil {
			uc.logger.Info().
				Str("account_id", account.ID).
				Str("account_number", account.AccountNumber).
				Str("type", string(account.Type)).
				Msg("account opened")
			return account, nil
		}
		if !errors.Is(err, domain.ErrDuplicateAccountNumber) {
			return nil, err
		}

		uc.logger.Debug().Str("account_number", number).Msg("account number collision")
	}

	return nil, domain.ErrAccountNumberExhausted
}

// GetAccount retrieves an account by its number.
func (uc *AccountUseCase) GetAccount(ctx context.Context, accountNumber string) (*domain.Account, error) {
	return uc.accountRepo.GetByNumber(ctx, accountNumber)
}

// GetAccountByID retrieves an account by its ID.
func (uc *AccountUseCase) GetAccountByID(ctx context.Context, id string) (*domain.Account, error) {
	return uc.accountRepo.GetByID(ctx, id)
}

// ActivateAccount moves a pending account to ACTIVE.
func (uc *AccountUseCase) ActivateAccount(ctx context.Context, accountNumber string) (*domain.Account, error) {
	return uc.transition(ctx, OperationActivate, accountNumber, (*domain.Account).Activate)
}

// FreezeAccount blocks balance mutations on an account.
func (uc *AccountUseCase) FreezeAccount(ctx context.Context, accountNumber string) (*domain.Account, error) {
	return uc.transition(ctx, OperationFreeze, accountNumber, (*domain.Account).Freeze)
}

// UnfreezeAccount lifts a freeze.
func (uc *AccountUseCase) UnfreezeAccount(ctx context.Context, accountNumber string) (*domain.Account, error) {
	return uc.transition(ctx, OperationUnfreeze, accountNumber, (*domain.Account).Unfreeze)
}

// CloseAccount closes an account whose balance is exactly zero.
func (uc *AccountUseCase) CloseAccount(ctx context.Context, accountNumber string) (*domain.Account, error) {
	return uc.transition(ctx, OperationClose, accountNumber, (*domain.Account).Close)
}

func (uc *AccountUseCase) transition(
	ctx context.Context,
	operation, accountNumber string,
	apply func(*domain.Account, time.Time) error,
) (*domain.Account, error) {
	start := time.Now()
	log := uc.logger.With().
		Str("operation", operation).
		Str("account_number", accountNumber).
		Logger()

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	var updated *domain.Account
	err := uc.retrier.Retry(ctx, func() error {
		stored, err := uc.accountRepo.GetByNumber(ctx, accountNumber)
		if err != nil {
			return err
		}

		account := stored.Clone()
		if err := apply(account, uc.now()); err != nil {
			return err
		}

		uow := NewUnitOfWork(uc.accountRepo)
		defer uow.Discard()

		if err := uow.Track(account); err != nil {
			return err
		}
		if err := uow.Commit(ctx); err != nil {
			if errors.Is(err, domain.ErrConcurrentModification) {
				uc.metrics.ObserveConflict(operation)
				log.Warn().Err(err).Msg("optimistic version conflict")
			}
			return err
		}

		updated = account
		return nil
	})
	err = asConcurrentModification(err)

	outcome := outcomeOf(err)
	uc.metrics.ObserveOperation(operation, outcome, time.Since(start))
	if err != nil {
		log.Info().Err(err).Str("outcome", outcome).Msg("account transition failed")
		return nil, err
	}

	log.Info().Str("status", string(updated.Status)).Bool("frozen", updated.IsFrozen).Msg("account transition committed")
	return updated, nil
}
