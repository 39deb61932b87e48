package customerrepo

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/adnanbp/bankoffice/internal/domain"
	"github.com/adnanbp/bankoffice/internal/test"
	"github.com/adnanbp/bankoffice/pkg/configpkg"
	"github.com/adnanbp/bankoffice/pkg/dbpkg"

	_ "github.com/lib/pq"
)

var testConfig configpkg.Config

func TestMain(m *testing.M) {
	config, err := configpkg.Load("../../configs")
	if err != nil {
		log.Fatal("cannot load config:", err)
	}

	testConfig = config

	os.Exit(m.Run())
}

func TestGet(t *testing.T) {
	tx := dbpkg.SetupTX(t, testConfig.DBDriver, testConfig.DBSource)
	repo := NewRepoPGS(tx)

	created := test.SeedCustomer(t, tx)

	customer, err := repo.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, created, customer)

	_, err = repo.Get(context.Background(), -1)
	require.EqualError(t, err, domain.ErrCustomerNotFound.Error())
}

func TestGetByAccount(t *testing.T) {
	tx := dbpkg.SetupTX(t, testConfig.DBDriver, testConfig.DBSource)
	repo := NewRepoPGS(tx)

	created := test.SeedCustomer(t, tx)
	account := test.SeedAccount(t, tx, created.ID, "0")

	customer, err := repo.GetByAccount(context.Background(), account.AccountNumber)
	require.NoError(t, err)
	require.Equal(t, created, customer)

	_, err = repo.GetByAccount(context.Background(), "0000000000000")
	require.EqualError(t, err, domain.ErrCustomerNotFound.Error())
}
