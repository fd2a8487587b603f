package memory

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VenkataAditya897/vizzy-conversational/internal/config"
	"github.com/VenkataAditya897/vizzy-conversational/internal/domain/entity"
)

// fakeMemoryRepo 内存版偏好仓储，按自增 ID 模拟插入顺序
type fakeMemoryRepo struct {
	nextID int64
	rows   []entity.UserMemory
}

func (r *fakeMemoryRepo) Create(_ context.Context, m *entity.UserMemory) error {
	r.nextID++
	m.ID = r.nextID
	r.rows = append(r.rows, *m)
	return nil
}

func (r *fakeMemoryRepo) ListRecent(_ context.Context, userID string, limit int) ([]entity.UserMemory, error) {
	var out []entity.UserMemory
	for _, m := range r.rows {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeMemoryRepo) Count(_ context.Context, userID string) (int64, error) {
	var n int64
	for _, m := range r.rows {
		if m.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *fakeMemoryRepo) TrimToCap(ctx context.Context, userID string, keep int) (int64, error) {
	recent, _ := r.ListRecent(ctx, userID, keep)
	keepIDs := map[int64]bool{}
	for _, m := range recent {
		keepIDs[m.ID] = true
	}

	var kept []entity.UserMemory
	var trimmed int64
	for _, m := range r.rows {
		if m.UserID == userID && !keepIDs[m.ID] {
			trimmed++
			continue
		}
		kept = append(kept, m)
	}
	r.rows = kept
	return trimmed, nil
}

func (r *fakeMemoryRepo) DeleteByUser(_ context.Context, userID string) error {
	var kept []entity.UserMemory
	for _, m := range r.rows {
		if m.UserID != userID {
			kept = append(kept, m)
		}
	}
	r.rows = kept
	return nil
}

// fakeCache 直通缓存，记录失效调用
type fakeCache struct {
	invalidated []string
}

func (c *fakeCache) GetOrLoad(ctx context.Context, _ string, _ time.Duration, dest any, loader func(ctx context.Context) (any, error)) error {
	val, err := loader(ctx)
	if err != nil {
		return err
	}
	*(dest.(*string)) = val.(string)
	return nil
}

func (c *fakeCache) Delete(_ context.Context, keys ...string) error {
	c.invalidated = append(c.invalidated, keys...)
	return nil
}

func newTestService(enabled bool) (*Service, *fakeMemoryRepo, *fakeCache) {
	repo := &fakeMemoryRepo{}
	cache := &fakeCache{}
	svc := NewService(repo, cache, &config.PreferencesConfig{
		Enabled:  enabled,
		CacheTTL: time.Minute,
	})
	return svc, repo, cache
}

func textEntry(text string) Entry {
	return Entry{Type: entity.MemoryTypeText, Text: text}
}

func TestAppendSkipsBlankEntries(t *testing.T) {
	svc, repo, _ := newTestService(true)
	ctx := context.Background()

	err := svc.Append(ctx, "u1", []Entry{
		textEntry(" 喜欢水彩 "),
		textEntry(""),
		textEntry("  "),
		{Type: entity.MemoryTypeImage, ImageURL: " "},
	})
	require.NoError(t, err)

	items, err := svc.Recent(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, entity.MemoryTypeText, items[0].MemoryType)
	assert.Equal(t, "喜欢水彩", items[0].Text)
	assert.Len(t, repo.rows, 1)
}

func TestAppendRejectsUnknownType(t *testing.T) {
	svc, repo, _ := newTestService(true)

	err := svc.Append(context.Background(), "u1", []Entry{{Type: "audio", Text: "a"}})
	require.Error(t, err)
	assert.Empty(t, repo.rows)
}

func TestAppendImageEntryKeepsProvenance(t *testing.T) {
	svc, _, _ := newTestService(true)
	ctx := context.Background()

	err := svc.Append(ctx, "u1", []Entry{{
		ConversationID: "c1",
		Type:           entity.MemoryTypeImage,
		ImageURL:       "http://assets.local/ref.png",
	}})
	require.NoError(t, err)

	items, err := svc.Recent(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, entity.MemoryTypeImage, items[0].MemoryType)
	assert.Equal(t, "http://assets.local/ref.png", items[0].ImageURL)
	assert.Equal(t, "c1", items[0].ConversationID)
	assert.Empty(t, items[0].Text)
}

func TestAppendTrimsOldestBeyondCap(t *testing.T) {
	svc, repo, _ := newTestService(true)
	ctx := context.Background()

	for i := 0; i < entity.MaxMemoriesPerUser; i++ {
		require.NoError(t, svc.Append(ctx, "u1", []Entry{textEntry(fmt.Sprintf("item-%d", i))}))
	}
	count, err := repo.Count(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(entity.MaxMemoriesPerUser), count)

	// 再追加两条，最旧的两条被淘汰
	require.NoError(t, svc.Append(ctx, "u1", []Entry{textEntry("newest-1"), textEntry("newest-2")}))
	count, err = repo.Count(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(entity.MaxMemoriesPerUser), count)

	items, err := svc.Recent(ctx, "u1", 0)
	require.NoError(t, err)
	assert.Equal(t, "newest-2", items[0].Text)
	assert.Equal(t, "newest-1", items[1].Text)
	// 最早插入的 ID 1、2 已不存在
	for _, m := range items {
		assert.Greater(t, m.ID, int64(2))
	}
}

func TestAppendIsolatedPerUser(t *testing.T) {
	svc, repo, _ := newTestService(true)
	ctx := context.Background()

	for i := 0; i < entity.MaxMemoriesPerUser+5; i++ {
		require.NoError(t, svc.Append(ctx, "u1", []Entry{textEntry("a")}))
	}
	require.NoError(t, svc.Append(ctx, "u2", []Entry{textEntry("b")}))

	c1, _ := repo.Count(ctx, "u1")
	c2, _ := repo.Count(ctx, "u2")
	assert.Equal(t, int64(entity.MaxMemoriesPerUser), c1)
	assert.Equal(t, int64(1), c2)
}

func TestAppendDisabledIsNoop(t *testing.T) {
	svc, repo, _ := newTestService(false)
	require.NoError(t, svc.Append(context.Background(), "u1", []Entry{textEntry("a")}))
	assert.Empty(t, repo.rows)
}

func TestAppendInvalidatesCache(t *testing.T) {
	svc, _, cache := newTestService(true)
	require.NoError(t, svc.Append(context.Background(), "u1", []Entry{textEntry("a")}))
	assert.Contains(t, cache.invalidated, "preferences:block:u1")
}

func TestAppendAllBlankSkipsInvalidation(t *testing.T) {
	svc, _, cache := newTestService(true)
	require.NoError(t, svc.Append(context.Background(), "u1", []Entry{textEntry("  ")}))
	assert.Empty(t, cache.invalidated)
}

func TestPreferencesBlock(t *testing.T) {
	svc, _, _ := newTestService(true)
	ctx := context.Background()

	block, err := svc.PreferencesBlock(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, block)

	err = svc.Append(ctx, "u1", []Entry{
		textEntry("喜欢水彩"),
		textEntry("避免文字"),
		{Type: entity.MemoryTypeImage, ImageURL: "http://assets.local/ref.png"},
	})
	require.NoError(t, err)

	block, err = svc.PreferencesBlock(ctx, "u1")
	require.NoError(t, err)
	assert.Contains(t, block, "- 避免文字")
	assert.Contains(t, block, "- 喜欢水彩")
	assert.Contains(t, block, "[reference image] http://assets.local/ref.png")
}

func TestPreferencesBlockDisabled(t *testing.T) {
	svc, repo, _ := newTestService(false)
	repo.rows = append(repo.rows, entity.UserMemory{
		ID: 1, UserID: "u1", MemoryType: entity.MemoryTypeText, Text: "a",
	})

	block, err := svc.PreferencesBlock(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, block)
}

func TestReset(t *testing.T) {
	svc, repo, cache := newTestService(true)
	ctx := context.Background()

	require.NoError(t, svc.Append(ctx, "u1", []Entry{textEntry("a"), textEntry("b")}))
	require.NoError(t, svc.Reset(ctx, "u1"))

	count, _ := repo.Count(ctx, "u1")
	assert.Zero(t, count)
	assert.Contains(t, cache.invalidated, "preferences:block:u1")
}
