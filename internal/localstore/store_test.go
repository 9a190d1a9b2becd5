package localstore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type draft struct {
	Text string `json:"text"`
}

func exerciseStore(t *testing.T, s Store) {
	ctx := context.Background()

	var d draft
	found, err := s.Get(ctx, "answer-draft:q1", &d)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Set(ctx, "answer-draft:q1", draft{Text: "hello"}))
	require.NoError(t, s.Set(ctx, "user", map[string]string{"email": "a@b.c"}))

	found, err = s.Get(ctx, "answer-draft:q1", &d)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "hello", d.Text)

	require.NoError(t, s.Delete(ctx, "answer-draft:q1", "user", "never-set"))
	found, err = s.Get(ctx, "user", &map[string]string{})
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestMemoryStoreDecodeError(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Set(context.Background(), "k", "text"))
	var n int
	found, err := m.Get(context.Background(), "k", &n)
	assert.True(t, found)
	assert.Error(t, err)
}

func TestRedisStore(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	r, err := NewRedis(url, "test:"+uuid.NewString(), time.Minute)
	require.NoError(t, err)
	defer r.Close()
	require.NoError(t, r.Ping(context.Background()))

	exerciseStore(t, r)
}

func TestNewRedisRejectsBadURL(t *testing.T) {
	_, err := NewRedis("http://nope", "x", 0)
	assert.Error(t, err)
}
