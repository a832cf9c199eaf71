package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckCollectsFirstErrorPerKey(t *testing.T) {
	v := New()
	assert.True(t, v.IsValid())

	v.Check(false, "title", "must be provided")
	v.Check(false, "title", "another message")

	assert.False(t, v.IsValid())
	assert.Equal(t, "must be provided", v.Errors["title"])
}

func TestCheckNotBlank(t *testing.T) {
	v := New()
	v.CheckNotBlank("   ", "title", "must be provided")
	assert.Equal(t, "must be provided", v.Errors["title"])

	v = New()
	v.CheckNotBlank("hello", "title", "must be provided")
	assert.True(t, v.IsValid())
}

func TestCheckEmail(t *testing.T) {
	valid := []string{"alice@example.com", "a.b+c@sub.example.org"}
	for _, email := range valid {
		v := New()
		v.CheckEmail(email, "must be a valid email address")
		assert.True(t, v.IsValid(), "expected %q to be valid", email)
	}

	invalid := []string{"", "alice", "alice@", "@example.com", "a b@example.com"}
	for _, email := range invalid {
		v := New()
		v.CheckEmail(email, "must be a valid email address")
		assert.False(t, v.IsValid(), "expected %q to be invalid", email)
	}
}

func TestIsUnique(t *testing.T) {
	v := New()
	assert.True(t, v.IsUnique([]string{"a", "b", "c"}))
	assert.False(t, v.IsUnique([]string{"a", "b", "a"}))
	assert.True(t, v.IsUnique(nil))
}
