package stringutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestINClause(t *testing.T) {
	placeholders, args := INClause([]int64{7, 8, 9})

	assert.Equal(t, []string{"$1", "$2", "$3"}, placeholders)
	assert.Equal(t, []any{int64(7), int64(8), int64(9)}, args)
}

func TestINClauseEmpty(t *testing.T) {
	placeholders, args := INClause([]int64{})

	assert.Empty(t, placeholders)
	assert.Empty(t, args)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, "plain text", EscapeLike("plain text"))
	assert.Equal(t, `100\% done`, EscapeLike("100% done"))
	assert.Equal(t, `snake\_case`, EscapeLike("snake_case"))
	assert.Equal(t, `back\\slash\%\_`, EscapeLike(`back\slash%_`))
	assert.Equal(t, "", EscapeLike(""))
}

func TestNormalizeTags(t *testing.T) {
	assert.Equal(t,
		[]string{"go", "web-dev", "intro"},
		NormalizeTags([]string{"  Go ", "Web-Dev", "", "   ", "intro"}))

	assert.Empty(t, NormalizeTags(nil))
}
