package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registration struct {
	Email    string `validate:"required,email,campus_email"`
	Name     string `validate:"required,min=2,max=100"`
	Password string `validate:"required,min=8,max=128"`
}

func TestStructPassesValidInput(t *testing.T) {
	v := New("apsit.edu.in")

	err := v.Struct(registration{
		Email:    "alice@apsit.edu.in",
		Name:     "Alice",
		Password: "longenough",
	})
	assert.NoError(t, err)
}

func TestStructRejectsForeignEmailDomain(t *testing.T) {
	v := New("apsit.edu.in")

	err := v.Struct(registration{
		Email:    "alice@gmail.com",
		Name:     "Alice",
		Password: "longenough",
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields["Email"], "@apsit.edu.in")
}

func TestStructCollectsAllFailures(t *testing.T) {
	v := New("apsit.edu.in")

	err := v.Struct(registration{Email: "not-an-email", Name: "A", Password: "short"})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 3)
	assert.Equal(t, "must be at least 2 characters", verr.Fields["Name"])
	assert.Equal(t, "must be at least 8 characters", verr.Fields["Password"])
}

func TestValidationErrorMessageIsStable(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{
		"B": "is required",
		"A": "is required",
	}}
	assert.Equal(t, "A: is required; B: is required", err.Error())
}
