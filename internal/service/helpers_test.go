package service_test

import (
	"testing"
	"time"

	"github.com/competehub/compete-api/internal/platform/memory"
	"github.com/competehub/compete-api/internal/service"
	"github.com/competehub/compete-api/internal/service/auth"
	"github.com/competehub/compete-api/internal/service/registration"
	"github.com/competehub/compete-api/internal/store"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testServices struct {
	docs         *memory.DocumentStore
	accounts     service.AccountService
	competitions service.CompetitionService
	community    service.CommunityService
}

func newTestServices(t *testing.T) testServices {
	t.Helper()

	docs := memory.NewDocumentStore(
		memory.WithUniqueFields(store.CollectionAccounts, "username", "email", "phone_number"),
	)
	registrar, err := registration.NewService(docs, registration.Config{
		MaxAttempts:      30,
		BaseDelay:        time.Millisecond,
		MaxDelay:         2 * time.Millisecond,
		OperationTimeout: time.Second,
	}, nil)
	require.NoError(t, err)

	accounts, err := service.NewAccountService(docs, auth.NewBcryptHasher(bcrypt.MinCost), nil)
	require.NoError(t, err)
	competitions, err := service.NewCompetitionService(docs, registrar, nil)
	require.NoError(t, err)
	community, err := service.NewCommunityService(docs, registrar, nil)
	require.NoError(t, err)

	return testServices{docs: docs, accounts: accounts, competitions: competitions, community: community}
}
