package archive_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/court/internal/adapters/archive"
	"github.com/example/court/internal/adapters/memory"
	"github.com/example/court/internal/core/courterr"
	"github.com/example/court/internal/ports/secondary"
)

func TestChannelStore_ResolvesByName(t *testing.T) {
	p := memory.NewPlatform(1, 2)
	p.AddChannel(secondary.ChannelRecord{ID: 50, Name: "Arkiv", Category: true})
	p.AddChannel(secondary.ChannelRecord{ID: 51, Name: "arkiv-logg", ParentID: 50})

	store := archive.NewChannelStore(p, 0, "")
	ref, err := store.Store(context.Background(), secondary.Document{
		Name:    "sak_4_20260101_000000.html",
		Data:    []byte("<html></html>"),
		Caption: "Case 4",
	})
	require.NoError(t, err)
	assert.Contains(t, ref, "sak_4_20260101_000000.html")

	sent := p.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, int64(51), sent[0].ChannelID)
	assert.Equal(t, "Case 4", sent[0].Message.Content)
	require.Len(t, sent[0].Message.Files, 1)

	// Resolution is cached
	_, err = store.Store(context.Background(), secondary.Document{Name: "b.html"})
	require.NoError(t, err)
	listCalls := 0
	for _, c := range p.Calls() {
		if c == "ListChannels" {
			listCalls++
		}
	}
	assert.Equal(t, 1, listCalls)
}

func TestChannelStore_MissingChannel(t *testing.T) {
	p := memory.NewPlatform(1, 2)
	store := archive.NewChannelStore(p, 0, "arkiv-logg")

	_, err := store.Store(context.Background(), secondary.Document{Name: "x.html"})
	assert.True(t, errors.Is(err, courterr.ErrNotFound), "got %v", err)
}

func TestChannelStore_UploadFailure(t *testing.T) {
	p := memory.NewPlatform(1, 2)
	p.AddChannel(secondary.ChannelRecord{ID: 51, Name: "logs"})
	p.FailOn("SendMessage", errors.New("boom"))

	store := archive.NewChannelStore(p, 51, "")
	_, err := store.Store(context.Background(), secondary.Document{Name: "x.html"})
	assert.Equal(t, courterr.KindExternal, courterr.KindOf(err))
}
