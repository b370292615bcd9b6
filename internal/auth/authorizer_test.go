package auth

import (
	"context"
	"testing"

	"github.com/SHUBHAMREWA/kanvei.in/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestAuthorizer_CanViewOrder(t *testing.T) {
	ownerID := uuid.New()
	otherID := uuid.New()
	order := &model.Order{
		ID:            uuid.New(),
		UserID:        &ownerID,
		CustomerEmail: "buyer@example.com",
	}

	a := NewAuthorizer()
	ctx := context.Background()

	tests := []struct {
		name      string
		principal *Principal
		want      bool
	}{
		{
			name:      "No principal",
			principal: nil,
			want:      false,
		},
		{
			name:      "Owner",
			principal: &Principal{UserID: &ownerID},
			want:      true,
		},
		{
			name:      "Different user",
			principal: &Principal{UserID: &otherID},
			want:      false,
		},
		{
			name:      "Matching customer email",
			principal: &Principal{UserID: &otherID, Email: "buyer@example.com"},
			want:      true,
		},
		{
			name:      "Admin",
			principal: &Principal{UserID: &otherID, Role: "admin"},
			want:      true,
		},
		{
			name:      "Bearer token without session",
			principal: &Principal{BearerToken: "some-token"},
			want:      true,
		},
		{
			name:      "Empty principal",
			principal: &Principal{},
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, a.CanViewOrder(ctx, tt.principal, order))
		})
	}
}

func TestAuthorizer_CanManageCatalog(t *testing.T) {
	a := NewAuthorizer()
	ctx := context.Background()

	userID := uuid.New()

	assert.False(t, a.CanManageCatalog(ctx, nil))
	assert.False(t, a.CanManageCatalog(ctx, &Principal{UserID: &userID}))
	assert.False(t, a.CanManageCatalog(ctx, &Principal{UserID: &userID, Role: "customer"}))
	assert.True(t, a.CanManageCatalog(ctx, &Principal{UserID: &userID, Role: "admin"}))
}
