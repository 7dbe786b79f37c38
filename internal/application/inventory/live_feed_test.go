package inventory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labstock/backend/internal/domain/inventory"
)

func TestLiveItemFeed(t *testing.T) {
	ctx := context.Background()

	t.Run("forwards events to subscribers", func(t *testing.T) {
		feed := NewLiveItemFeed()
		defer feed.Close()

		id, ch := feed.Subscribe()
		defer feed.Unsubscribe(id)

		item := mustNewItem(t, inventory.ItemFields{Name: "WBC Lyse", Quantity: 10})
		require.NoError(t, feed.Handle(ctx, inventory.NewItemCreatedEvent(item)))

		change := <-ch
		assert.Equal(t, inventory.EventTypeItemCreated, change.Event)
		assert.Equal(t, item.ID, change.ItemID)
		assert.Equal(t, "WBC Lyse", change.Name)
	})

	t.Run("slow subscriber drops instead of blocking", func(t *testing.T) {
		feed := NewLiveItemFeed()
		defer feed.Close()

		_, ch := feed.Subscribe()
		item := mustNewItem(t, inventory.ItemFields{Name: "x", Quantity: 1})
		for range 40 {
			require.NoError(t, feed.Handle(ctx, inventory.NewItemCreatedEvent(item)))
		}
		assert.LessOrEqual(t, len(ch), 16)
	})

	t.Run("unsubscribe closes the channel", func(t *testing.T) {
		feed := NewLiveItemFeed()
		defer feed.Close()

		id, ch := feed.Subscribe()
		assert.Equal(t, 1, feed.SubscriberCount())

		feed.Unsubscribe(id)
		_, open := <-ch
		assert.False(t, open)
		assert.Equal(t, 0, feed.SubscriberCount())
	})

	t.Run("close disconnects everyone", func(t *testing.T) {
		feed := NewLiveItemFeed()
		_, ch1 := feed.Subscribe()
		_, ch2 := feed.Subscribe()

		feed.Close()
		_, open1 := <-ch1
		_, open2 := <-ch2
		assert.False(t, open1)
		assert.False(t, open2)

		// Handle after close is a no-op
		item := mustNewItem(t, inventory.ItemFields{Name: "x", Quantity: 1})
		assert.NoError(t, feed.Handle(ctx, inventory.NewItemCreatedEvent(item)))
	})
}
