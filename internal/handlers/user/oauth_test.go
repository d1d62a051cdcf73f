package user

import (
	"testing"
	"time"

	"savoro_back_end/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestApplyFederatedIdentityStripsPassword(t *testing.T) {
	u := models.User{
		ID:        "u-1",
		Email:     "fatou@example.com",
		Name:      "Fatou",
		Password:  "$argon2id$v=19$m=65536,t=1,p=4$c2Vs$aGFzaA",
		Provider:  "local",
		Role:      models.RoleUser,
		CreatedAt: time.Now(),
	}
	require.NoError(t, u.Validate())

	update := applyFederatedIdentity(&u, "google", "g-789", "Fatou D.")

	// Le compte bascule proprement : plus de hash, identité fournisseur posée.
	assert.Empty(t, u.Password)
	assert.Equal(t, "google", u.Provider)
	assert.Equal(t, "g-789", u.ProviderID)
	assert.Equal(t, "Fatou D.", u.Name)
	require.NoError(t, u.Validate())

	set, ok := update["$set"].(bson.M)
	require.True(t, ok)
	assert.Equal(t, "google", set["provider"])
	assert.Equal(t, "g-789", set["provider_id"])

	unset, ok := update["$unset"].(bson.M)
	require.True(t, ok)
	_, ok = unset["password"]
	assert.True(t, ok, "le hash doit être retiré du document")
}

func TestApplyFederatedIdentityKeepsNameWhenProviderOmitsIt(t *testing.T) {
	u := models.User{
		Email:    "ali@example.com",
		Name:     "Ali",
		Password: "hash",
		Provider: "local",
		Role:     models.RoleUser,
	}

	applyFederatedIdentity(&u, "facebook", "fb-1", "")

	assert.Equal(t, "Ali", u.Name)
	require.NoError(t, u.Validate())
}
