package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type validatorTestInner struct {
	ContactEmail string `validate:"required,email"`
	Timeline     string `validate:"omitempty,oneof=asap flexible"`
}

type validatorTestOuter struct {
	ServiceName string             `validate:"required,max=200"`
	FormData    validatorTestInner `validate:"required"`
}

func TestValidateStructReportsNestedFieldPaths(t *testing.T) {
	err := ValidateStruct(validatorTestOuter{
		FormData: validatorTestInner{
			ContactEmail: "not-an-email",
			Timeline:     "someday",
		},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "serviceName is required")
	assert.Contains(t, err.Error(), "formData.contactEmail must be a valid email")
	assert.Contains(t, err.Error(), "formData.timeline must be one of: asap flexible")
}

type percentInput struct {
	Discount string `validate:"required,oneof=10% 20%"`
}

func TestValidateStructPreservesPercentInMessages(t *testing.T) {
	err := ValidateStruct(percentInput{Discount: "15%"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "discount must be one of: 10% 20%")
}

func TestValidateStructPassesValidInput(t *testing.T) {
	err := ValidateStruct(validatorTestOuter{
		ServiceName: "Smart Assistant",
		FormData: validatorTestInner{
			ContactEmail: "jane@example.com",
			Timeline:     "asap",
		},
	})
	assert.NoError(t, err)
}

func TestValidateEmailFormat(t *testing.T) {
	assert.NoError(t, ValidateEmailFormat("jane@example.com"))
	assert.Error(t, ValidateEmailFormat("not-an-email"))
	assert.Error(t, ValidateEmailFormat("missing@domain@double.com"))
}
