package utils

import (
	"errors"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type validationTarget struct {
	Name     string   `binding:"required"`
	Email    string   `binding:"required,email"`
	Password string   `binding:"required,min=6"`
	Price    *float64 `binding:"required,gte=0"`
	Category string   `binding:"required,category"`
}

func validTarget() validationTarget {
	price := 1.5
	return validationTarget{
		Name:     "Lamp",
		Email:    "a@example.com",
		Password: "secret123",
		Price:    &price,
		Category: "home",
	}
}

func TestRegisterValidators(t *testing.T) {
	RegisterValidators()
	RegisterValidators()

	target := validTarget()
	require.NoError(t, binding.Validator.ValidateStruct(&target))

	target.Category = "garden"
	err := binding.Validator.ValidateStruct(&target)
	require.Error(t, err)

	fields := GetValidationErrors(err)
	require.Len(t, fields, 1)
	assert.Equal(t, "Category", fields[0].Field)
	assert.Equal(t, "category", fields[0].Tag)
	assert.Contains(t, fields[0].Message, "electronics")
}

func TestDescribeBindError(t *testing.T) {
	RegisterValidators()

	target := validTarget()
	negative := -1.0
	target.Name = ""
	target.Email = "not-an-email"
	target.Password = "123"
	target.Price = &negative

	msg := DescribeBindError(binding.Validator.ValidateStruct(&target))
	assert.Contains(t, msg, "Invalid request body: ")
	assert.Contains(t, msg, "Name is required")
	assert.Contains(t, msg, "Email must be a valid email address")
	assert.Contains(t, msg, "Password must be at least 6")
	assert.Contains(t, msg, "Price must be greater than or equal to 0")

	assert.Equal(t, "Invalid request body: EOF", DescribeBindError(errors.New("EOF")))
	assert.Nil(t, GetValidationErrors(errors.New("EOF")))
}
