package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateCapacityBelowThreshold(t *testing.T) {
	check := ValidateCapacity(29)
	assert.Equal(t, CapacityOK, check.Level)
	assert.Empty(t, check.Message)
}

func TestValidateCapacityAtWarningThreshold(t *testing.T) {
	check := ValidateCapacity(30)
	assert.Equal(t, CapacityWarning, check.Level)
	assert.Equal(t, "Session approaching capacity (30/40 candidates)", check.Message)
}

func TestValidateCapacityAtLimit(t *testing.T) {
	check := ValidateCapacity(40)
	assert.Equal(t, CapacityWarning, check.Level)
	assert.Equal(t, "Session approaching capacity (40/40 candidates)", check.Message)
}

func TestValidateCapacityOverLimit(t *testing.T) {
	check := ValidateCapacity(41)
	assert.Equal(t, CapacityError, check.Level)
	assert.Equal(t, "Session exceeds maximum capacity of 40 candidates", check.Message)
}

func TestValidateCapacityZero(t *testing.T) {
	check := ValidateCapacity(0)
	assert.Equal(t, CapacityOK, check.Level)
}
