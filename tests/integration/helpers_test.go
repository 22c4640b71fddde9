package integration

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/telepesa/ledger/internal/adapter/repository/postgres"
	"github.com/telepesa/ledger/internal/infrastructure/idgen"
	"github.com/telepesa/ledger/internal/infrastructure/retry"
	"github.com/telepesa/ledger/internal/usecase"
)

func newRetrier(maxRetries int) *retry.Retrier {
	return retry.New(retry.Config{
		MaxRetries:      maxRetries,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
		MaxElapsedTime:  5 * time.Second,
	}, zerolog.Nop())
}

func newUseCases(repo *postgres.AccountRepository, retrier usecase.Retrier) (*usecase.AccountUseCase, *usecase.LedgerUseCase) {
	accounts := usecase.NewAccountUseCase(repo, idgen.NewULIDGenerator(), idgen.NewAccountNumberGenerator(), retrier)
	ledger := usecase.NewLedgerUseCase(repo, retrier)
	return accounts, ledger
}
