package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/retail-ledger/internal/application/auth"
	"github.com/jhoicas/retail-ledger/internal/application/dto"
	"github.com/jhoicas/retail-ledger/internal/domain"
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/retail-ledger/pkg/jwt"
)

const secret = "test-secret"

func newUC(t *testing.T) (*auth.AuthUseCase, *memory.Store) {
	t.Helper()
	store := memory.New()
	uc := auth.NewAuthUseCase(store.Repos().Users, auth.JWTConfig{Secret: secret, ExpMinutes: 5, Issuer: "test"}, nil)
	return uc, store
}

func TestRegisterYLogin(t *testing.T) {
	uc, _ := newUC(t)
	ctx := context.Background()

	user, err := uc.RegisterUser(ctx, dto.RegisterRequest{Email: "Caja@Tienda.co", Password: "secreto123", Role: entity.RoleCashier})
	require.NoError(t, err)
	assert.Equal(t, "caja@tienda.co", user.Email)

	out, err := uc.Login(ctx, dto.LoginRequest{Email: "caja@tienda.co", Password: "secreto123"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, out.User.ID)

	userID, role, err := jwt.Parse(secret, out.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
	assert.Equal(t, entity.RoleCashier, role)
}

func TestRegister_RolPorDefectoYDuplicado(t *testing.T) {
	uc, _ := newUC(t)
	ctx := context.Background()

	user, err := uc.RegisterUser(ctx, dto.RegisterRequest{Email: "a@b.co", Password: "12345678"})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleCashier, user.Role)

	_, err = uc.RegisterUser(ctx, dto.RegisterRequest{Email: "A@B.co", Password: "12345678"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestRegister_Validaciones(t *testing.T) {
	uc, _ := newUC(t)
	ctx := context.Background()

	_, err := uc.RegisterUser(ctx, dto.RegisterRequest{Email: "a@b.co", Password: "corta"})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = uc.RegisterUser(ctx, dto.RegisterRequest{Email: "a@b.co", Password: "12345678", Role: "root"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestLogin_CredencialesInvalidas(t *testing.T) {
	uc, _ := newUC(t)
	ctx := context.Background()
	_, err := uc.RegisterUser(ctx, dto.RegisterRequest{Email: "a@b.co", Password: "12345678"})
	require.NoError(t, err)

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "a@b.co", Password: "otra-clave"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = uc.Login(ctx, dto.LoginRequest{Email: "nadie@b.co", Password: "12345678"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestEnsureAdmin_Idempotente(t *testing.T) {
	uc, _ := newUC(t)
	ctx := context.Background()

	first, created, err := uc.EnsureAdmin(ctx, "admin@tienda.co", "admin-secret")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, entity.RoleAdmin, first.Role)

	again, created, err := uc.EnsureAdmin(ctx, "admin@tienda.co", "otra")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)
}
