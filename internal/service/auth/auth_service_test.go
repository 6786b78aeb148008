package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegisterRequest_Validation(t *testing.T) {
	tests := []struct {
		name    string
		request RegisterRequest
		wantErr bool
	}{
		{
			name: "valid request",
			request: RegisterRequest{
				Username: "testuser",
				Email:    "test@example.com",
				Password: "password123",
			},
			wantErr: false,
		},
		{
			name: "invalid username - too short",
			request: RegisterRequest{
				Username: "ab",
				Password: "password123",
			},
			wantErr: true,
		},
		{
			name: "invalid password - too short",
			request: RegisterRequest{
				Username: "testuser",
				Password: "12345",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hasErr := len(tt.request.Username) < 3 || len(tt.request.Username) > 20 ||
				len(tt.request.Password) < 6 || len(tt.request.Password) > 64
			assert.Equal(t, tt.wantErr, hasErr)
		})
	}
}

func TestLoginRequest_Validation(t *testing.T) {
	tests := []struct {
		name    string
		request LoginRequest
		wantErr bool
	}{
		{
			name: "valid request",
			request: LoginRequest{
				Username: "testuser",
				Password: "password123",
			},
			wantErr: false,
		},
		{
			name: "empty username",
			request: LoginRequest{
				Password: "password123",
			},
			wantErr: true,
		},
		{
			name: "empty password",
			request: LoginRequest{
				Username: "testuser",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hasErr := tt.request.Username == "" || tt.request.Password == ""
			assert.Equal(t, tt.wantErr, hasErr)
		})
	}
}

func TestPasswordHashing(t *testing.T) {
	svc := &authService{}

	hash, err := svc.hashPassword("password123")
	assert.NoError(t, err)
	assert.NotEqual(t, "password123", hash)

	assert.True(t, svc.verifyPassword("password123", hash))
	assert.False(t, svc.verifyPassword("wrongpassword", hash))
}

func TestVerifyPasswordRejectsGarbageHash(t *testing.T) {
	svc := &authService{}
	assert.False(t, svc.verifyPassword("password123", "not-a-bcrypt-hash"))
}
