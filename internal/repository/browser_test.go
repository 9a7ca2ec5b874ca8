package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asteroid-belt/pantry/internal/models"
	"github.com/asteroid-belt/pantry/internal/paging"
)

func newTestBrowser(loader *fakeLoader) *Browser {
	return NewBrowser(New(loader, nil, Options{PageSize: 5, InitialLoadSize: 10}, nil))
}

func TestBrowser_Defaults(t *testing.T) {
	b := newTestBrowser(newFakeLoader(0))
	defer b.Close()

	assert.Equal(t, paging.All(), b.LoadType().Get())
	assert.Equal(t, models.CategoryAll, b.Selection().Get().Selected().ID)
	assert.Equal(t, "", b.Query().Get())
	assert.False(t, b.Offline().Get())
	assert.Equal(t, paging.All(), b.Active().LoadType())
}

func TestBrowser_SetSearchQuery(t *testing.T) {
	b := newTestBrowser(newFakeLoader(0))
	defer b.Close()

	s := b.SetSearchQuery("curry")
	assert.Equal(t, paging.Search("curry"), s.LoadType())
	assert.Equal(t, paging.Search("curry"), b.LoadType().Get())
	assert.Same(t, s, b.Active())

	// Same query keeps the stream and its cursor.
	assert.Same(t, s, b.SetSearchQuery("curry"))

	back := b.SetSearchQuery("   ")
	assert.Equal(t, paging.All(), back.LoadType())
	assert.Equal(t, "   ", b.Query().Get())
}

func TestBrowser_SelectCategoryClearsSearch(t *testing.T) {
	b := newTestBrowser(newFakeLoader(0))
	defer b.Close()

	b.SetSearchQuery("cake")
	dessert, ok := models.FindCategory("dessert")
	require.True(t, ok)

	s := b.SelectCategory(dessert)
	assert.Equal(t, paging.Category("dessert"), s.LoadType())
	assert.Equal(t, "", b.Query().Get())
	assert.True(t, b.Selection().Get().IsSelected(dessert))

	all := b.SelectCategory(models.Categories[0])
	assert.Equal(t, paging.All(), all.LoadType())
}

func TestBrowser_LoadTypeIsObservable(t *testing.T) {
	b := newTestBrowser(newFakeLoader(0))
	defer b.Close()

	ch, cancel := b.LoadType().Subscribe()
	defer cancel()
	assert.Equal(t, paging.All(), <-ch)

	b.SetSearchQuery("tacos")
	select {
	case lt := <-ch:
		assert.Equal(t, paging.Search("tacos"), lt)
	case <-time.After(time.Second):
		t.Fatal("no load type update")
	}
}

func TestBrowser_TracksQuotaAndLastError(t *testing.T) {
	loader := newFakeLoader(10)
	loader.setErr(paging.VariantAll, &paging.Error{Kind: paging.KindQuotaExhausted, StatusCode: 402})
	b := newTestBrowser(loader)
	defer b.Close()

	_, err := b.Active().First(context.Background())
	require.Error(t, err)
	assert.True(t, b.QuotaReached().Get())
	assert.Contains(t, b.LastError().Get(), "quota")

	loader.setErr(paging.VariantAll, nil)
	_, err = b.Active().Retry(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "", b.LastError().Get())
	assert.True(t, b.QuotaReached().Get(), "quota flag stays set")
}

func TestBrowser_ReloadsWhenConnectivityReturns(t *testing.T) {
	loader := newFakeLoader(10)
	loader.loaded = make(chan paging.Request, 4)
	b := newTestBrowser(loader)
	defer b.Close()

	updates := make(chan bool)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		b.Run(ctx, updates)
		close(done)
	}()

	updates <- true // already online: no reload
	updates <- false
	updates <- true

	select {
	case req := <-loader.loaded:
		assert.Equal(t, paging.Request{Type: paging.All(), Index: 0, Size: 10}, req)
	case <-time.After(time.Second):
		t.Fatal("feed was not reloaded")
	}
	assert.False(t, b.Offline().Get())

	close(updates)
	<-done
	assert.Len(t, loader.requests(), 1)
}

func TestBrowser_NoReloadDuringSearch(t *testing.T) {
	loader := newFakeLoader(10)
	b := newTestBrowser(loader)
	defer b.Close()
	b.SetSearchQuery("ramen")

	updates := make(chan bool, 2)
	updates <- false
	updates <- true
	close(updates)

	b.Run(context.Background(), updates)
	assert.Empty(t, loader.requests())
	assert.False(t, b.Offline().Get())
}
