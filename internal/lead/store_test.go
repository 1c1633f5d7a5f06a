// internal/lead/store_test.go
package lead

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"blueprint-leads/internal/quiz"
)

func makeLead(i int) *Lead {
	return &Lead{
		ID:             NewID(time.Now()),
		Name:           fmt.Sprintf("Lead %d", i),
		ContactHandle:  fmt.Sprintf("+62812345%05d", i),
		Archetype:      quiz.Builder,
		SubmittedAtUTC: time.Now().UTC(),
	}
}

func TestStore_AddMostRecentFirst(t *testing.T) {
	store := NewStore(10)

	for i := 0; i < 3; i++ {
		store.Add(makeLead(i))
	}

	leads := store.ListAll()
	assert.Len(t, leads, 3)
	assert.Equal(t, "Lead 2", leads[0].Name)
	assert.Equal(t, "Lead 1", leads[1].Name)
	assert.Equal(t, "Lead 0", leads[2].Name)
}

func TestStore_CapacityEvictsOldest(t *testing.T) {
	store := NewStore(5)

	for i := 0; i < 6; i++ {
		store.Add(makeLead(i))
	}

	leads := store.ListAll()
	assert.Len(t, leads, 5)
	assert.Equal(t, "Lead 5", leads[0].Name)
	assert.Equal(t, "Lead 1", leads[4].Name)
	for _, l := range leads {
		assert.NotEqual(t, "Lead 0", l.Name)
	}
}

func TestStore_ListAllMarksRead(t *testing.T) {
	store := NewStore(10)
	store.Add(makeLead(0))
	store.Add(makeLead(1))

	first := store.ListAll()
	for _, l := range first {
		assert.True(t, l.ReadFlag)
	}

	// A record added after the read stays unread until the next ListAll.
	late := makeLead(2)
	store.Add(late)
	assert.False(t, late.ReadFlag)

	second := store.ListAll()
	assert.Len(t, second, 3)
	for _, l := range second {
		assert.True(t, l.ReadFlag)
	}
}

func TestStore_FlagFollowUp(t *testing.T) {
	store := NewStore(10)
	a := makeLead(0)
	b := makeLead(1)
	store.Add(a)
	store.Add(b)

	assert.True(t, store.FlagFollowUp(b.ContactHandle))

	leads := store.ListAll()
	assert.True(t, leads[0].FollowUpRequested)
	assert.False(t, leads[1].FollowUpRequested)
}

func TestStore_FlagFollowUpIdempotent(t *testing.T) {
	store := NewStore(10)
	a := makeLead(0)
	store.Add(a)

	assert.True(t, store.FlagFollowUp(a.ContactHandle))
	assert.True(t, store.FlagFollowUp(a.ContactHandle))
	assert.True(t, store.ListAll()[0].FollowUpRequested)
}

func TestStore_FlagFollowUpUnknownHandle(t *testing.T) {
	store := NewStore(10)
	store.Add(makeLead(0))

	assert.False(t, store.FlagFollowUp("+6289999999999"))
	assert.False(t, store.ListAll()[0].FollowUpRequested)
}

func TestStore_FlagFollowUpMostRecentMatch(t *testing.T) {
	store := NewStore(10)
	older := makeLead(0)
	newer := makeLead(1)
	newer.ContactHandle = older.ContactHandle
	store.Add(older)
	store.Add(newer)

	assert.True(t, store.FlagFollowUp(older.ContactHandle))

	leads := store.ListAll()
	assert.True(t, leads[0].FollowUpRequested)
	assert.False(t, leads[1].FollowUpRequested)
}

func TestStore_ConcurrentAdds(t *testing.T) {
	store := NewStore(100)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			store.Add(makeLead(i))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, store.Len())
}

func TestNewID_Format(t *testing.T) {
	now := time.Now()
	id := NewID(now)

	assert.Regexp(t, `^PT-\d{13}-[0-9A-F]{6}$`, id)
	assert.Contains(t, id, fmt.Sprintf("PT-%d-", now.UnixMilli()))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 10))
	assert.Equal(t, "abc", Truncate("abcdef", 3))
	assert.Equal(t, "", Truncate("", 5))
}
