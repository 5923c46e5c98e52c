package source_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zggff/shopbot/catalogue"
	"github.com/zggff/shopbot/source"
)

type reload struct {
	snap *catalogue.Snapshot[product, string]
	err  error
}

func TestWatcherSwapsStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shop.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleJSON), 0o600))

	root, err := source.LoadFile[product, string](path, "")
	require.NoError(t, err)
	store := catalogue.NewStore(root, path)

	events := make(chan reload, 4)
	w := &source.Watcher[product, string]{
		Path:     path,
		Store:    store,
		Debounce: 20 * time.Millisecond,
		OnReload: func(snap *catalogue.Snapshot[product, string], err error) {
			events <- reload{snap, err}
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	// give the watcher time to register
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte(`{"List":{"data":"new","list":[{"Item":{"price":1,"title":"one"}}]}}`), 0o600))
	select {
	case ev := <-events:
		require.NoError(t, ev.err)
		assert.Equal(t, uint64(2), ev.snap.Version)
		label, _ := ev.snap.Root.Data()
		assert.Equal(t, "new", label)
	case <-time.After(3 * time.Second):
		t.Fatal("no reload after write")
	}

	require.NoError(t, os.WriteFile(path, []byte(`{"List":`), 0o600))
	select {
	case ev := <-events:
		assert.Error(t, ev.err)
		assert.Nil(t, ev.snap)
	case <-time.After(3 * time.Second):
		t.Fatal("no reload after broken write")
	}

	snap := store.Load()
	assert.Equal(t, uint64(2), snap.Version)
	_, ok := store.Resolve(catalogue.NewAddress(0))
	assert.True(t, ok)
}

func TestWatcherReloadOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shop.yaml")
	require.NoError(t, os.WriteFile(path, []byte("Item: {price: 2, title: pin}\n"), 0o600))

	store := &catalogue.Store[product, string]{}
	w := &source.Watcher[product, string]{Path: path, Store: store}

	snap, err := w.Reload()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), snap.Version)
	assert.Equal(t, path, snap.Source)

	w.Path = filepath.Join(t.TempDir(), "gone.yaml")
	_, err = w.Reload()
	assert.Error(t, err)
	assert.Equal(t, uint64(1), store.Load().Version)
}

func TestWatchStopsOnCancel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shop.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleJSON), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, source.Watch(ctx, path, "", &catalogue.Store[product, string]{}))
}
