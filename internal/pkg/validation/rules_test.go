package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeRules(t *testing.T) {
	assert.True(t, IsValidCode("MAIN"))
	assert.True(t, IsValidCode("CS2"))
	assert.False(t, IsValidCode("cs"))
	assert.False(t, IsValidCode("C"))

	assert.True(t, IsValidEmployeeCode("HR-001"))
	assert.True(t, IsValidEmployeeCode("ENGG-123456"))
	assert.False(t, IsValidEmployeeCode("H-001"))
	assert.False(t, IsValidEmployeeCode("HR-01"))
	assert.False(t, IsValidEmployeeCode("hr-001"))
}

func TestPeriodAndSession(t *testing.T) {
	assert.True(t, IsValidPeriod("2024-01"))
	assert.True(t, IsValidPeriod("2024-12"))
	assert.False(t, IsValidPeriod("2024-13"))
	assert.False(t, IsValidPeriod("2024-1"))

	assert.True(t, IsValidSession("2025"))
	assert.False(t, IsValidSession("25"))
}

func TestClock(t *testing.T) {
	assert.True(t, IsValidClock("08:00"))
	assert.True(t, IsValidClock("23:59"))
	assert.False(t, IsValidClock("24:00"))
	assert.False(t, IsValidClock("8:00"))
}

func TestISBN(t *testing.T) {
	assert.True(t, IsValidISBN("978-0-13-468599-1"))
	assert.True(t, IsValidISBN("0-306-40615-x"))
	assert.False(t, IsValidISBN("12345"))
	assert.Equal(t, "030640615X", NormalizeISBN("0-306-40615-x"))
}

func TestPasswordAndEmail(t *testing.T) {
	assert.True(t, IsStrongPassword("abcdefg1"))
	assert.False(t, IsStrongPassword("abcdefgh"))
	assert.False(t, IsStrongPassword("1234567890"))
	assert.False(t, IsStrongPassword("ab1"))

	assert.True(t, IsValidEmail("Registrar@Campus.edu.pk"))
	assert.False(t, IsValidEmail("not-an-email"))
}
