package closet

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annamdevulanavyasrijanaki-blip/THE-NEW-YOU/internal/core/domain"
	"github.com/annamdevulanavyasrijanaki-blip/THE-NEW-YOU/internal/infra/storage"
	"github.com/annamdevulanavyasrijanaki-blip/THE-NEW-YOU/internal/infra/storage/memory"
)

// mockUploader returns a URL derived from the payload.
type mockUploader struct {
	uploads []string
	err     error
}

func (m *mockUploader) Upload(ctx context.Context, image string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.uploads = append(m.uploads, image)
	return "https://i.ibb.co/" + image + ".jpg", nil
}

type mockFetcher struct{ calls int }

func (m *mockFetcher) FetchBase64(ctx context.Context, url string) (string, error) {
	m.calls++
	return "fetched", nil
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func newService(t *testing.T, opts ...Option) (*Service, *mockUploader, *storage.Facade) {
	t.Helper()
	mem := memory.NewMemoryStorage()
	f := storage.NewFacade(storage.DefaultSchema(), mem.Open)
	up := &mockUploader{}
	c := &clock{t: time.UnixMilli(1_700_000_000_000)}
	opts = append([]Option{WithClock(c.now)}, opts...)
	return NewService(f, up, opts...), up, f
}

func TestSave_Defaults(t *testing.T) {
	s, up, _ := newService(t)

	look, err := s.Save(context.Background(), domain.LookDraft{Image: "abc"})
	require.NoError(t, err)

	assert.Equal(t, []string{"abc"}, up.uploads)
	assert.Equal(t, "https://i.ibb.co/abc.jpg", look.ImageURL)
	assert.Equal(t, look.ImageURL, look.ThumbnailURL)
	assert.Equal(t, fmt.Sprintf("look-%d", look.SavedAt), look.ID)
	assert.Equal(t, domain.FolderUncategorized, look.Folder)
	assert.Equal(t, domain.LookSourceManualSave, look.Source)
	assert.False(t, look.IsFavorite)

	got, found, err := s.Get(context.Background(), look.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, look, got)
}

func TestSave_SourceFromFolder(t *testing.T) {
	tests := []struct {
		folder string
		want   domain.LookSource
	}{
		{domain.FolderTryOns, domain.LookSourceTryOn},
		{domain.FolderStylistArchive, domain.LookSourceStyledLook},
		{domain.FolderLookbookInspired, domain.LookSourceStyledLook},
		{"Weekend", domain.LookSourceManualSave},
	}

	s, _, _ := newService(t)
	for i, tt := range tests {
		look, err := s.Save(context.Background(), domain.LookDraft{
			Image:  fmt.Sprintf("img%d", i),
			Folder: tt.folder,
			Items:  []string{"dress"},
		})
		require.NoError(t, err)
		assert.Equal(t, tt.want, look.Source, "folder %s", tt.folder)
		assert.Equal(t, tt.folder, look.Folder)
	}
}

func TestSave_Duplicate(t *testing.T) {
	s, _, _ := newService(t)
	ctx := context.Background()

	_, err := s.Save(ctx, domain.LookDraft{Image: "same"})
	require.NoError(t, err)

	_, err = s.Save(ctx, domain.LookDraft{Image: "same", Folder: domain.FolderTryOns})
	assert.ErrorIs(t, err, ErrDuplicateLook)

	looks, _ := s.List(ctx)
	assert.Len(t, looks, 1)
}

func TestSave_RemoteImageIsFetched(t *testing.T) {
	fetcher := &mockFetcher{}
	s, up, _ := newService(t, WithFetcher(fetcher))

	_, err := s.Save(context.Background(), domain.LookDraft{Image: "https://shop.example/dress.jpg"})
	require.NoError(t, err)
	assert.Equal(t, 1, fetcher.calls)
	assert.Equal(t, []string{"fetched"}, up.uploads)
}

func TestSave_Errors(t *testing.T) {
	s, up, _ := newService(t)

	_, err := s.Save(context.Background(), domain.LookDraft{})
	assert.ErrorIs(t, err, ErrMissingImage)

	_, err = s.Save(context.Background(), domain.LookDraft{Image: "http://x/y.png"})
	assert.Error(t, err, "remote image without fetcher")

	up.err = errors.New("Invalid API v1 key.")
	_, err = s.Save(context.Background(), domain.LookDraft{Image: "abc"})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "Invalid API v1 key."))
}

func TestList_NewestFirst(t *testing.T) {
	s, _, _ := newService(t)
	ctx := context.Background()

	first, _ := s.Save(ctx, domain.LookDraft{Image: "a"})
	second, _ := s.Save(ctx, domain.LookDraft{Image: "b"})
	third, _ := s.Save(ctx, domain.LookDraft{Image: "c", ID: "aaa-custom"})

	looks, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, looks, 3)
	assert.Equal(t, []string{third.ID, second.ID, first.ID}, []string{looks[0].ID, looks[1].ID, looks[2].ID})
}

func TestMoveAndToggleFavorite(t *testing.T) {
	s, _, f := newService(t)
	ctx := context.Background()

	look, err := s.Save(ctx, domain.LookDraft{Image: "a"})
	require.NoError(t, err)

	// Fields unknown to SavedLook survive read-modify-write.
	rec, _, _ := f.Get(ctx, storage.CollSavedLooks, look.ID)
	rec["note"] = "keep me"
	require.NoError(t, f.Put(ctx, storage.CollSavedLooks, rec))

	require.NoError(t, s.Move(ctx, look.ID, "Gala"))
	fav, err := s.ToggleFavorite(ctx, look.ID)
	require.NoError(t, err)
	assert.True(t, fav)

	got, _, _ := s.Get(ctx, look.ID)
	assert.Equal(t, "Gala", got.Folder)
	assert.True(t, got.IsFavorite)

	rec, _, _ = f.Get(ctx, storage.CollSavedLooks, look.ID)
	assert.Equal(t, "keep me", rec["note"])

	fav, _ = s.ToggleFavorite(ctx, look.ID)
	assert.False(t, fav)

	// Missing looks are a no-op.
	assert.NoError(t, s.Move(ctx, "missing", "Gala"))
	fav, err = s.ToggleFavorite(ctx, "missing")
	assert.NoError(t, err)
	assert.False(t, fav)
	_, found, _ := s.Get(ctx, "missing")
	assert.False(t, found)
}

func TestDeleteAndClear(t *testing.T) {
	s, _, _ := newService(t)
	ctx := context.Background()

	a, _ := s.Save(ctx, domain.LookDraft{Image: "a"})
	_, _ = s.Save(ctx, domain.LookDraft{Image: "b"})

	require.NoError(t, s.Delete(ctx, a.ID))
	looks, _ := s.List(ctx)
	assert.Len(t, looks, 1)

	require.NoError(t, s.Clear(ctx))
	looks, _ = s.List(ctx)
	assert.Empty(t, looks)
}
