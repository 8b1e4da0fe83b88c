package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Email    string `json:"email" validate:"omitempty,email"`
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		in   sample
		want Errors
	}{
		{
			name: "valid",
			in:   sample{Username: "alice", Password: "password123"},
			want: nil,
		},
		{
			name: "missing fields",
			in:   sample{},
			want: Errors{
				"username": "Missing required field: username",
				"password": "Missing required field: password",
			},
		},
		{
			name: "too short",
			in:   sample{Username: "al", Password: "short"},
			want: Errors{
				"username": "Username must be at least 3 characters long",
				"password": "Password must be at least 8 characters long",
			},
		},
		{
			name: "bad email",
			in:   sample{Username: "alice", Password: "password123", Email: "nope"},
			want: Errors{"email": "Email must be a valid email address"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Validate(tt.in))
		})
	}
}

func TestErrors_ErrorIsSortedByField(t *testing.T) {
	errs := Errors{"username": "u bad", "content": "c bad"}
	assert.Equal(t, "c bad; u bad", errs.Error())
}
