package chart

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ohada-ledger/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccount(t *testing.T) {
	t.Run("SuccessfulCreation", func(t *testing.T) {
		before := time.Now().UTC()
		acc, err := NewAccount("512", "Banque", 5, "Compte courant", true)
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, acc.ID)
		assert.Equal(t, "512", acc.Code)
		assert.Equal(t, ClassNumber(5), acc.ClassNumber)
		assert.True(t, acc.IsActive)
		assert.Equal(t, DebitNormal, acc.Convention())
		assert.False(t, acc.CreatedAt.Before(before))
		assert.Equal(t, acc.CreatedAt, acc.UpdatedAt)
	})

	t.Run("InvalidFields", func(t *testing.T) {
		_, err := NewAccount("", "Banque", 5, "", true)
		assert.Equal(t, shared.KindRequiredField, shared.KindOf(err))

		_, err = NewAccount("51-2", "Banque", 5, "", true)
		assert.Equal(t, shared.KindInvalidRequest, shared.KindOf(err))

		_, err = NewAccount("512", "", 5, "", true)
		assert.Equal(t, shared.KindRequiredField, shared.KindOf(err))

		_, err = NewAccount("512", "Banque", 0, "", true)
		assert.Equal(t, shared.KindUnknownClass, shared.KindOf(err))
	})
}

func TestAccount_Apply(t *testing.T) {
	acc, err := NewAccount("571", "Caisse", 5, "", true)
	require.NoError(t, err)

	t.Run("PartialUpdate", func(t *testing.T) {
		name := "Caisse principale"
		inactive := false
		updated, err := acc.Apply(AccountUpdate{Name: &name, IsActive: &inactive})
		require.NoError(t, err)

		assert.Equal(t, "571", updated.Code)
		assert.Equal(t, name, updated.Name)
		assert.False(t, updated.IsActive)
		assert.Equal(t, "Caisse", acc.Name, "original account must not change")
	})

	t.Run("RejectsInvalidCode", func(t *testing.T) {
		code := "57 1"
		_, err := acc.Apply(AccountUpdate{Code: &code})
		assert.Equal(t, shared.KindInvalidRequest, shared.KindOf(err))
	})

	t.Run("Empty", func(t *testing.T) {
		assert.True(t, AccountUpdate{}.Empty())
	})
}

func TestAccountFilter_Matches(t *testing.T) {
	acc := &Account{Code: "6011", ClassNumber: 6, IsActive: true}
	six, five := ClassNumber(6), ClassNumber(5)
	inactive := false

	assert.True(t, AccountFilter{}.Matches(acc))
	assert.True(t, AccountFilter{ClassNumber: &six, CodePrefix: "60"}.Matches(acc))
	assert.False(t, AccountFilter{ClassNumber: &five}.Matches(acc))
	assert.False(t, AccountFilter{IsActive: &inactive}.Matches(acc))
	assert.False(t, AccountFilter{CodePrefix: "60111"}.Matches(acc))
}

func TestAccountFilter_Validate(t *testing.T) {
	assert.NoError(t, AccountFilter{}.Validate())
	assert.NoError(t, AccountFilter{CodePrefix: "52"}.Validate())

	for _, prefix := range []string{"5_", "5%", `5\`, "5 2"} {
		err := AccountFilter{CodePrefix: prefix}.Validate()
		var invalid shared.InvalidFieldError
		require.ErrorAs(t, err, &invalid, prefix)
		assert.Equal(t, "prefix", invalid.Field)
	}
}
