package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateBaseUsername(t *testing.T) {
	tests := []struct {
		name      string
		firstName string
		lastName  string
		want      string
	}{
		{"both parts", "John", "Smith", "john.smith"},
		{"internal whitespace", " Mary Ann ", "Van\tDer Berg", "maryann.vanderberg"},
		{"first only", "Cher", "   ", "cher"},
		{"last only", "", "Madonna", "madonna"},
		{"non ascii", "Élodie", "Ünal", "élodie.ünal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GenerateBaseUsername(tt.firstName, tt.lastName)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)

			again, err := GenerateBaseUsername(tt.firstName, tt.lastName)
			assert.NoError(t, err)
			assert.Equal(t, got, again)
		})
	}
}

func TestGenerateBaseUsername_BlankName(t *testing.T) {
	for _, names := range [][2]string{{"", ""}, {"  ", "\t\n"}} {
		got, err := GenerateBaseUsername(names[0], names[1])
		assert.Empty(t, got)
		assert.True(t, errors.Is(err, ErrValidation))
		assert.True(t, errors.Is(err, ErrInvalidName))
	}
}

func TestUsernameCandidate(t *testing.T) {
	assert.Equal(t, "a.b", usernameCandidate("a.b", 0))
	assert.Equal(t, "a.b1", usernameCandidate("a.b", 1))
	assert.Equal(t, "a.b12", usernameCandidate("a.b", 12))
}
