package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realtysite/internal/domain"
	"realtysite/internal/repos"
	"realtysite/internal/services"
)

func TestListingService_Save(t *testing.T) {
	svc := services.NewListingService(repos.NewListingRepo(openDB(t)), nil)
	svc.Now = func() time.Time { return t0 }
	ctx := context.Background()

	l, err := svc.Save(ctx, services.ListingInput{
		Title:    "Cape Cod on Elm",
		Category: "residential",
		Payload:  []byte(`{"construction":{"yearBuilt":"1952"},"agentNote":{"private":true}}`),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, l.ID)
	assert.Equal(t, "RESIDENTIAL", l.Category)
	assert.JSONEq(t, `{"construction":{"yearBuilt":"1952"},"agentNote":{"private":true}}`, string(l.Details))

	svc.Now = func() time.Time { return t0.Add(time.Hour) }
	updated, err := svc.Save(ctx, services.ListingInput{
		ID: l.ID, Title: "Cape Cod on Elm St", Category: "RESIDENTIAL", Payload: []byte(`{}`),
	})
	require.NoError(t, err)
	assert.Equal(t, "Cape Cod on Elm St", updated.Title)
	assert.True(t, updated.CreatedAt.Equal(t0))
	assert.True(t, updated.UpdatedAt.Equal(t0.Add(time.Hour)))
}

func TestListingService_Rejects(t *testing.T) {
	svc := services.NewListingService(repos.NewListingRepo(openDB(t)), nil)
	ctx := context.Background()

	_, err := svc.Save(ctx, services.ListingInput{Title: "Lot 4", Category: "COMMERCIAL",
		Payload: []byte(`{"financial":{"capRate":6.5}}`)})
	require.Error(t, err)
	var de *domain.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, domain.ErrSchemaViolation, de.Kind)
	assert.Equal(t, "financial.capRate", de.Path)

	_, err = svc.Save(ctx, services.ListingInput{Title: "Lot 4", Category: "industrial", Payload: []byte(`{}`)})
	assert.Equal(t, domain.ErrValidation, domain.KindOf(err))

	_, err = svc.Save(ctx, services.ListingInput{Title: "  ", Category: "COMMERCIAL", Payload: []byte(`{}`)})
	assert.Equal(t, domain.ErrValidation, domain.KindOf(err))

	_, err = svc.Get(ctx, "nope")
	assert.Equal(t, domain.ErrNotFound, domain.KindOf(err))
}

func TestAuthService_Login(t *testing.T) {
	auth := &services.AuthService{Users: repos.NewUserRepo(openDB(t))}

	u, err := auth.Login("sid-a", "admin@realtysite.test", "Passw0rd!")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, u.Role)
	assert.True(t, auth.IsAdmin("sid-a"))

	_, err = auth.Login("sid-b", "admin@realtysite.test", "wrong")
	assert.ErrorIs(t, err, services.ErrBadCreds)
	_, err = auth.Login("sid-b", "nobody@realtysite.test", "Passw0rd!")
	assert.ErrorIs(t, err, services.ErrBadCreds)

	_, err = auth.Login("sid-c", "agent@realtysite.test", "Passw0rd!")
	require.NoError(t, err)
	assert.False(t, auth.IsAdmin("sid-c"))

	require.NoError(t, auth.Logout("sid-a"))
	assert.False(t, auth.IsAdmin("sid-a"))
}
