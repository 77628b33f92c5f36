package services

import (
	"context"
	"testing"

	"github.com/JustArys/tennis/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewAuthService(users, testLogger())
	ctx := context.Background()

	input := RegisterInput{
		FirstName: "Iva",
		LastName:  "Petrova",
		Email:     "Iva.Petrova@Example.com",
		Password:  "correct-horse",
		Gender:    models.GenderFemale,
	}

	user, err := svc.Register(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, "iva.petrova@example.com", user.Email)
	assert.Equal(t, models.RolePlayer, user.Role)
	assert.Empty(t, user.PasswordHash)

	// The stored hash is never the raw password.
	stored, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, stored.PasswordHash)
	assert.NotEqual(t, input.Password, stored.PasswordHash)

	logged, err := svc.Login(ctx, LoginInput{Email: "iva.petrova@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)
	assert.Empty(t, logged.PasswordHash)
}

func TestRegisterRejectsWeakPasswordAndDuplicates(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewAuthService(users, testLogger())
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "a@example.com", Password: "short"})
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	first := RegisterInput{FirstName: "A", LastName: "B", Email: "a@example.com", Password: "long-enough", Gender: models.GenderMale}
	_, err = svc.Register(ctx, first)
	require.NoError(t, err)

	_, err = svc.Register(ctx, first)
	assert.ErrorIs(t, err, ErrAuthEmailTaken)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewAuthService(users, testLogger())
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{FirstName: "A", LastName: "B", Email: "a@example.com", Password: "long-enough", Gender: models.GenderMale})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginInput{Email: "a@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrAuthInvalidCredentials)

	_, err = svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "long-enough"})
	assert.ErrorIs(t, err, ErrAuthInvalidCredentials)
}
