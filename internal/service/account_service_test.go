package service_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/competehub/compete-api/internal/domain"
	"github.com/competehub/compete-api/internal/service"
	"github.com/competehub/compete-api/internal/service/auth"
	"github.com/competehub/compete-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func aliceInput() service.RegisterAccountInput {
	return service.RegisterAccountInput{
		Username:    "Alice",
		Email:       "Alice@Example.com",
		Password:    "password123",
		FirstName:   "Alice",
		LastName:    "Liddell",
		PhoneNumber: "+1 555 0100",
	}
}

func TestAccountService_Register(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestServices(t)

	account, err := svc.accounts.Register(ctx, aliceInput())
	require.NoError(t, err)
	assert.NotEmpty(t, account.ID)
	assert.Equal(t, "alice", account.Username)
	assert.Equal(t, "alice@example.com", account.Email)
	assert.Equal(t, "+15550100", account.PhoneNumber)
	assert.NotEqual(t, "password123", account.PasswordHash)

	doc, err := svc.docs.Get(ctx, store.CollectionAccounts, account.ID)
	require.NoError(t, err)
	fields, err := store.DecodeFields(doc.Data)
	require.NoError(t, err)
	hash, ok := fields.String("password_hash")
	require.True(t, ok)
	assert.Equal(t, account.PasswordHash, hash)
	_, hasPlain := fields["password"]
	assert.False(t, hasPlain)
}

func TestAccountService_Register_Duplicates(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestServices(t)

	_, err := svc.accounts.Register(ctx, aliceInput())
	require.NoError(t, err)

	tests := []struct {
		name  string
		input service.RegisterAccountInput
		field string
	}{
		{
			name:  "same username different case",
			input: service.RegisterAccountInput{Username: "ALICE", Email: "other@example.com", Password: "password123"},
			field: "username",
		},
		{
			name:  "same email",
			input: service.RegisterAccountInput{Username: "alice2", Email: "alice@example.COM", Password: "password123"},
			field: "email",
		},
		{
			name: "same phone formatted differently",
			input: service.RegisterAccountInput{
				Username: "alice3", Email: "a3@example.com", Password: "password123", PhoneNumber: "+1 (555) 0100",
			},
			field: "phone_number",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.accounts.Register(ctx, tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrAlreadyRegistered)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestAccountService_Register_EmptyPhonesDoNotCollide(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestServices(t)

	for i := 0; i < 3; i++ {
		_, err := svc.accounts.Register(ctx, service.RegisterAccountInput{
			Username: fmt.Sprintf("user%d", i),
			Email:    fmt.Sprintf("user%d@example.com", i),
			Password: "password123",
		})
		require.NoError(t, err)
	}
}

func TestAccountService_Register_Validation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestServices(t)

	tests := []struct {
		name  string
		input service.RegisterAccountInput
	}{
		{name: "short password", input: service.RegisterAccountInput{Username: "bob", Email: "bob@example.com", Password: "short"}},
		{name: "missing username", input: service.RegisterAccountInput{Email: "bob@example.com", Password: "password123"}},
		{name: "bad email", input: service.RegisterAccountInput{Username: "bob", Email: "bob", Password: "password123"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.accounts.Register(ctx, tt.input)
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.NotErrorIs(t, err, domain.ErrAlreadyRegistered)
		})
	}
}

func TestAccountService_Register_ConcurrentSameUsername(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestServices(t)

	const n = 10
	var created, rejected atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.accounts.Register(ctx, service.RegisterAccountInput{
				Username: "racer",
				Email:    fmt.Sprintf("racer%d@example.com", i),
				Password: "password123",
			})
			switch {
			case err == nil:
				created.Add(1)
			case assert.ErrorIs(t, err, domain.ErrAlreadyRegistered):
				rejected.Add(1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), created.Load())
	assert.Equal(t, int32(n-1), rejected.Load())

	found, err := svc.docs.FindByField(ctx, store.CollectionAccounts, "username", "racer")
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestAccountService_Authenticate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestServices(t)

	created, err := svc.accounts.Register(ctx, aliceInput())
	require.NoError(t, err)

	for _, login := range []string{"alice", "ALICE", "alice@example.com", " Alice@Example.com "} {
		account, err := svc.accounts.Authenticate(ctx, login, "password123")
		require.NoError(t, err, login)
		assert.Equal(t, created.ID, account.ID)
	}

	_, err = svc.accounts.Authenticate(ctx, "alice", "wrong-password")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.accounts.Authenticate(ctx, "nobody", "password123")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAccountService_Lookups(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestServices(t)

	created, err := svc.accounts.Register(ctx, aliceInput())
	require.NoError(t, err)

	byName, err := svc.accounts.GetByUsername(ctx, "Alice")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byName.ID)

	byID, err := svc.accounts.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	username, err := svc.accounts.UsernameByEmail(ctx, "ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, "alice", username)

	_, err = svc.accounts.GetByUsername(ctx, "ghost")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = svc.accounts.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrAccountNotFound)
	_, err = svc.accounts.UsernameByEmail(ctx, "ghost@example.com")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = svc.accounts.UsernameByEmail(ctx, "")
	assert.ErrorIs(t, err, domain.ErrValidation)

	all, err := svc.accounts.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestNewAccountService_RequiresDependencies(t *testing.T) {
	t.Parallel()

	_, err := service.NewAccountService(nil, auth.NewBcryptHasher(4), nil)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = service.NewAccountService(newTestServices(t).docs, nil, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}
