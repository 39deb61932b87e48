package transactionrepo

import (
	"context"
	"database/sql"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/adnanbp/bankoffice/internal/accountrepo"
	"github.com/adnanbp/bankoffice/internal/domain"
	"github.com/adnanbp/bankoffice/internal/test"
	"github.com/adnanbp/bankoffice/pkg/configpkg"
	"github.com/adnanbp/bankoffice/pkg/errorspkg"
	"github.com/adnanbp/bankoffice/pkg/refpkg"

	_ "github.com/lib/pq"
)

var (
	testDB          *sql.DB
	testRepo        *RepoPGS
	testAccountRepo *accountrepo.RepoPGS
	testRefs        *refpkg.Generator
)

func TestMain(m *testing.M) {
	config, err := configpkg.Load("../../configs")
	if err != nil {
		log.Fatal("cannot load config:", err)
	}

	testDB, err = sql.Open(config.DBDriver, config.DBSource)
	if err != nil {
		log.Fatal("cannot connect to db:", err)
	}

	testRepo = NewRepoPGS(testDB)
	testAccountRepo = accountrepo.NewRepoPGS(testDB)
	testRefs = refpkg.NewGenerator()

	os.Exit(m.Run())
}

func requireAmountEqual(t *testing.T, want, got string) {
	t.Helper()

	wantDec := decimal.RequireFromString(want)
	gotDec := decimal.RequireFromString(got)

	require.True(t, wantDec.Equal(gotDec), "want %s, got %s", want, got)
}

func seedAccount(t *testing.T, balance string) domain.Account {
	t.Helper()

	customer := test.SeedCustomer(t, testDB)

	return test.SeedAccount(t, testDB, customer.ID, balance)
}

func TestExecuteTransfer(t *testing.T) {
	accountA := seedAccount(t, "1000")
	accountB := seedAccount(t, "500")

	arg := domain.CreateTransactionParams{
		Type:        domain.Transfer,
		FromAccount: accountA.AccountNumber,
		ToAccount:   accountB.AccountNumber,
		Amount:      "100",
		Description: "rent",
	}

	result, err := testRepo.Execute(context.Background(), arg, testRefs.Next())
	require.NoError(t, err)

	require.Equal(t, domain.TxCompleted, result.Transaction.Status)
	require.Equal(t, accountA.AccountNumber, result.Transaction.FromAccount)
	require.Equal(t, accountB.AccountNumber, result.Transaction.ToAccount)
	require.NotZero(t, result.Transaction.ID)
	require.NotEmpty(t, result.Transaction.ReferenceNo)

	require.NotNil(t, result.From)
	require.NotNil(t, result.To)
	requireAmountEqual(t, "1000", result.From.BalanceBefore)
	requireAmountEqual(t, "900", result.From.BalanceAfter)
	requireAmountEqual(t, "500", result.To.BalanceBefore)
	requireAmountEqual(t, "600", result.To.BalanceAfter)

	fromAccount, err := testAccountRepo.Get(context.Background(), accountA.AccountNumber)
	require.NoError(t, err)
	requireAmountEqual(t, "900", fromAccount.Balance)
	require.NotZero(t, fromAccount.LastTransactionAt)

	toAccount, err := testAccountRepo.Get(context.Background(), accountB.AccountNumber)
	require.NoError(t, err)
	requireAmountEqual(t, "600", toAccount.Balance)

	// Repeating the transfer is a new transaction, not a duplicate.
	repeat, err := testRepo.Execute(context.Background(), arg, testRefs.Next())
	require.NoError(t, err)
	require.NotEqual(t, result.Transaction.ReferenceNo, repeat.Transaction.ReferenceNo)
	require.NotEqual(t, result.Transaction.ID, repeat.Transaction.ID)
}

func TestExecuteDeposit(t *testing.T) {
	account := seedAccount(t, "0")

	arg := domain.CreateTransactionParams{
		Type:      domain.Deposit,
		ToAccount: account.AccountNumber,
		Amount:    "250.50",
	}

	result, err := testRepo.Execute(context.Background(), arg, testRefs.Next())
	require.NoError(t, err)

	require.Nil(t, result.From)
	require.Empty(t, result.Transaction.FromAccount)
	requireAmountEqual(t, "250.50", result.To.BalanceAfter)
}

func TestExecuteWithdrawal(t *testing.T) {
	account := seedAccount(t, "1000")

	arg := domain.CreateTransactionParams{
		Type:        domain.Withdrawal,
		FromAccount: account.AccountNumber,
		Amount:      "400",
	}

	result, err := testRepo.Execute(context.Background(), arg, testRefs.Next())
	require.NoError(t, err)

	require.Nil(t, result.To)
	require.Empty(t, result.Transaction.ToAccount)
	requireAmountEqual(t, "600", result.From.BalanceAfter)
}

func TestExecuteInsufficientBalance(t *testing.T) {
	account := seedAccount(t, "100")

	arg := domain.CreateTransactionParams{
		Type:        domain.Withdrawal,
		FromAccount: account.AccountNumber,
		Amount:      "500",
	}

	_, err := testRepo.Execute(context.Background(), arg, testRefs.Next())
	require.EqualError(t, err, domain.ErrInsufficientBalance.Error())

	// Balance untouched and no transaction row persisted.
	got, err := testAccountRepo.Get(context.Background(), account.AccountNumber)
	require.NoError(t, err)
	requireAmountEqual(t, "100", got.Balance)

	transactions, err := testRepo.ListByAccount(context.Background(), account.AccountNumber, 10, 0)
	require.NoError(t, err)
	require.Empty(t, transactions)
}

func TestExecuteAccountNotFound(t *testing.T) {
	arg := domain.CreateTransactionParams{
		Type:      domain.Deposit,
		ToAccount: "0000000000000",
		Amount:    "100",
	}

	_, err := testRepo.Execute(context.Background(), arg, testRefs.Next())
	require.EqualError(t, err, domain.ErrAccountNotFound.Error())
}

func TestExecuteInactiveAccount(t *testing.T) {
	customer := test.SeedCustomer(t, testDB)
	account := test.SeedAccountWithStatus(t, testDB, customer.ID, "1000", domain.StatusFrozen)

	arg := domain.CreateTransactionParams{
		Type:      domain.Deposit,
		ToAccount: account.AccountNumber,
		Amount:    "100",
	}

	_, err := testRepo.Execute(context.Background(), arg, testRefs.Next())
	require.EqualError(t, err, domain.ErrAccountNotActive.Error())

	got, err := testAccountRepo.Get(context.Background(), account.AccountNumber)
	require.NoError(t, err)
	requireAmountEqual(t, "1000", got.Balance)
}

func TestExecuteReferenceCollision(t *testing.T) {
	account := seedAccount(t, "1000")

	arg := domain.CreateTransactionParams{
		Type:      domain.Deposit,
		ToAccount: account.AccountNumber,
		Amount:    "100",
	}

	referenceNo := testRefs.Next()

	_, err := testRepo.Execute(context.Background(), arg, referenceNo)
	require.NoError(t, err)

	_, err = testRepo.Execute(context.Background(), arg, referenceNo)
	require.EqualError(t, err, domain.ErrReferenceCollision.Error())

	// The failed attempt must not move the balance.
	got, err := testAccountRepo.Get(context.Background(), account.AccountNumber)
	require.NoError(t, err)
	requireAmountEqual(t, "1100", got.Balance)
}

func TestConcurrentWithdrawals(t *testing.T) {
	account := seedAccount(t, "1000")

	arg := domain.CreateTransactionParams{
		Type:        domain.Withdrawal,
		FromAccount: account.AccountNumber,
		Amount:      "600",
	}

	const attempts = 2

	errs := make(chan error, attempts)

	var wg sync.WaitGroup

	for i := 0; i < attempts; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := testRepo.Execute(context.Background(), arg, testRefs.Next())
			errs <- err
		}()
	}

	wg.Wait()
	close(errs)

	var completed, rejected int

	for err := range errs {
		if err == nil {
			completed++
			continue
		}

		require.EqualError(t, err, domain.ErrInsufficientBalance.Error())
		rejected++
	}

	// Exactly one withdrawal may pass the balance check.
	require.Equal(t, 1, completed)
	require.Equal(t, 1, rejected)

	got, err := testAccountRepo.Get(context.Background(), account.AccountNumber)
	require.NoError(t, err)
	requireAmountEqual(t, "400", got.Balance)
}

func TestConcurrentReverseTransfers(t *testing.T) {
	accountA := seedAccount(t, "1000")
	accountB := seedAccount(t, "1000")

	const rounds = 5

	errs := make(chan error, 2*rounds)

	var wg sync.WaitGroup

	for i := 0; i < rounds; i++ {
		wg.Add(2)

		go func() {
			defer wg.Done()

			_, err := testRepo.Execute(context.Background(), domain.CreateTransactionParams{
				Type:        domain.Transfer,
				FromAccount: accountA.AccountNumber,
				ToAccount:   accountB.AccountNumber,
				Amount:      "10",
			}, testRefs.Next())
			errs <- err
		}()

		go func() {
			defer wg.Done()

			_, err := testRepo.Execute(context.Background(), domain.CreateTransactionParams{
				Type:        domain.Transfer,
				FromAccount: accountB.AccountNumber,
				ToAccount:   accountA.AccountNumber,
				Amount:      "10",
			}, testRefs.Next())
			errs <- err
		}()
	}

	wg.Wait()
	close(errs)

	// Canonical lock ordering makes reverse-direction transfers
	// deadlock-free; every round must land.
	for err := range errs {
		require.NoError(t, err)
	}

	gotA, err := testAccountRepo.Get(context.Background(), accountA.AccountNumber)
	require.NoError(t, err)
	requireAmountEqual(t, "1000", gotA.Balance)

	gotB, err := testAccountRepo.Get(context.Background(), accountB.AccountNumber)
	require.NoError(t, err)
	requireAmountEqual(t, "1000", gotB.Balance)
}

func TestListByAccount(t *testing.T) {
	account := seedAccount(t, "1000")

	deposit := domain.CreateTransactionParams{
		Type:      domain.Deposit,
		ToAccount: account.AccountNumber,
		Amount:    "50",
	}
	withdrawal := domain.CreateTransactionParams{
		Type:        domain.Withdrawal,
		FromAccount: account.AccountNumber,
		Amount:      "30",
	}

	first, err := testRepo.Execute(context.Background(), deposit, testRefs.Next())
	require.NoError(t, err)

	second, err := testRepo.Execute(context.Background(), withdrawal, testRefs.Next())
	require.NoError(t, err)

	transactions, err := testRepo.ListByAccount(context.Background(), account.AccountNumber, 10, 0)
	require.NoError(t, err)
	require.Len(t, transactions, 2)

	// Newest first.
	require.Equal(t, second.Transaction.ID, transactions[0].ID)
	require.Equal(t, first.Transaction.ID, transactions[1].ID)

	// Listing twice without an intervening write returns identical results.
	again, err := testRepo.ListByAccount(context.Background(), account.AccountNumber, 10, 0)
	require.NoError(t, err)

	if diff := cmp.Diff(transactions, again); diff != "" {
		t.Errorf("ListByAccount() mismatch (-first +second):\n%s", diff)
	}
}

func TestMutationsFor(t *testing.T) {
	amount := decimal.RequireFromString("+5")

	testCases := []struct {
		name string
		arg  domain.CreateTransactionParams
		want []mutation
	}{
		{
			name: "DepositDeltaFromParsedAmount",
			arg: domain.CreateTransactionParams{
				Type:      domain.Deposit,
				ToAccount: "2000000000000",
			},
			want: []mutation{{"2000000000000", "5", false}},
		},
		{
			name: "WithdrawalDeltaFromParsedAmount",
			arg: domain.CreateTransactionParams{
				Type:        domain.Withdrawal,
				FromAccount: "2000000000000",
			},
			want: []mutation{{"2000000000000", "-5", true}},
		},
		{
			name: "TransferLocksAscending",
			arg: domain.CreateTransactionParams{
				Type:        domain.Transfer,
				FromAccount: "2000000000000",
				ToAccount:   "1000000000000",
			},
			want: []mutation{
				{"1000000000000", "5", false},
				{"2000000000000", "-5", true},
			},
		},
		{
			name: "TransferAlreadyAscending",
			arg: domain.CreateTransactionParams{
				Type:        domain.Transfer,
				FromAccount: "1000000000000",
				ToAccount:   "2000000000000",
			},
			want: []mutation{
				{"1000000000000", "-5", true},
				{"2000000000000", "5", false},
			},
		},
	}

	for _, tc := range testCases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			got, err := mutationsFor(tc.arg, amount)
			require.NoError(t, err)

			if diff := cmp.Diff(tc.want, got, cmp.AllowUnexported(mutation{})); diff != "" {
				t.Errorf("mutationsFor() mismatch (-want +got):\n%s", diff)
			}
		})
	}

	_, err := mutationsFor(domain.CreateTransactionParams{Type: "Reversal"}, amount)
	require.EqualError(t, err, domain.ErrUnsupportedType.Error())
}

func TestExecuteSignPrefixedAmount(t *testing.T) {
	account := seedAccount(t, "1000")

	arg := domain.CreateTransactionParams{
		Type:        domain.Withdrawal,
		FromAccount: account.AccountNumber,
		Amount:      "+50",
	}

	result, err := testRepo.Execute(context.Background(), arg, testRefs.Next())
	require.NoError(t, err)
	require.Equal(t, domain.TxCompleted, result.Transaction.Status)
	requireAmountEqual(t, "950", result.From.BalanceAfter)

	got, err := testAccountRepo.Get(context.Background(), account.AccountNumber)
	require.NoError(t, err)
	requireAmountEqual(t, "950", got.Balance)
}

func TestExecuteExpiredContext(t *testing.T) {
	account := seedAccount(t, "1000")

	arg := domain.CreateTransactionParams{
		Type:        domain.Withdrawal,
		FromAccount: account.AccountNumber,
		Amount:      "100",
	}

	ctx, cancel := context.WithTimeout(context.Background(), -time.Second)
	defer cancel()

	_, err := testRepo.Execute(ctx, arg, testRefs.Next())
	require.EqualError(t, err, errorspkg.ErrTimeout.Error())

	// Expiry rolls the attempt back: balance untouched, no row.
	got, err := testAccountRepo.Get(context.Background(), account.AccountNumber)
	require.NoError(t, err)
	requireAmountEqual(t, "1000", got.Balance)

	transactions, err := testRepo.ListByAccount(context.Background(), account.AccountNumber, 10, 0)
	require.NoError(t, err)
	require.Empty(t, transactions)
}

func TestGet(t *testing.T) {
	account := seedAccount(t, "1000")

	arg := domain.CreateTransactionParams{
		Type:      domain.Deposit,
		ToAccount: account.AccountNumber,
		Amount:    "75",
	}

	created, err := testRepo.Execute(context.Background(), arg, testRefs.Next())
	require.NoError(t, err)

	got, err := testRepo.Get(context.Background(), created.Transaction.ID)
	require.NoError(t, err)
	require.Equal(t, created.Transaction, got)

	_, err = testRepo.Get(context.Background(), -1)
	require.EqualError(t, err, domain.ErrTransactionNotFound.Error())
}
