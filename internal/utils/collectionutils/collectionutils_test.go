package collectionutils

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssociate(t *testing.T) {
	type user struct {
		id   int64
		name string
	}

	users := []user{{1, "alice"}, {2, "bob"}}
	byID := Associate(users, func(u user) (int64, string) {
		return u.id, u.name
	})

	assert.Equal(t, map[int64]string{1: "alice", 2: "bob"}, byID)
}

func TestGroupBy(t *testing.T) {
	words := []string{"ant", "bee", "ape"}
	byFirstLetter := GroupBy(words, func(w string) byte {
		return w[0]
	})

	assert.Equal(t, []string{"ant", "ape"}, byFirstLetter['a'])
	assert.Equal(t, []string{"bee"}, byFirstLetter['b'])
}

func TestGetOrDefault(t *testing.T) {
	m := map[string]int{"a": 1}

	assert.Equal(t, 1, GetOrDefault(m, "a", 99))
	assert.Equal(t, 99, GetOrDefault(m, "b", 99))
}

func TestSafeMapConcurrentAccess(t *testing.T) {
	safeMap := NewSafeMap[int, int]()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			safeMap.Store(n, n*2)
		}(i)
	}
	wg.Wait()

	for i := 0; i < 50; i++ {
		value, ok := safeMap.Get(i)
		assert.True(t, ok)
		assert.Equal(t, i*2, value)
	}

	safeMap.Delete(0)
	_, ok := safeMap.Get(0)
	assert.False(t, ok)
}

func TestSafeMapDeleteFunc(t *testing.T) {
	safeMap := NewSafeMap[string, int]()
	safeMap.Store("keep-a", 1)
	safeMap.Store("drop-b", 10)
	safeMap.Store("keep-c", 2)
	safeMap.Store("drop-d", 20)

	safeMap.DeleteFunc(func(_ string, value int) bool {
		return value >= 10
	})

	_, ok := safeMap.Get("drop-b")
	assert.False(t, ok)
	_, ok = safeMap.Get("drop-d")
	assert.False(t, ok)

	value, ok := safeMap.Get("keep-a")
	assert.True(t, ok)
	assert.Equal(t, 1, value)
	_, ok = safeMap.Get("keep-c")
	assert.True(t, ok)
}
