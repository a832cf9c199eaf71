package models

import (
	"testing"

	"github.com/mejova/bloggy/internal/auth"
	"github.com/stretchr/testify/assert"
)

func TestPostOwnershipPredicates(t *testing.T) {
	owner := &auth.User{ID: 1, Username: "alice"}
	stranger := &auth.User{ID: 2, Username: "bob"}
	admin := &auth.User{ID: 3, Username: "root", IsAdmin: true}

	post := &Post{ID: 10, AuthorID: 1}

	assert.True(t, post.EditableBy(owner))
	assert.False(t, post.EditableBy(stranger))
	// The admin flag gives delete rights, never edit rights.
	assert.False(t, post.EditableBy(admin))
	assert.False(t, post.EditableBy(nil))

	assert.True(t, post.DeletableBy(owner))
	assert.False(t, post.DeletableBy(stranger))
	assert.True(t, post.DeletableBy(admin))
	assert.False(t, post.DeletableBy(nil))
}
