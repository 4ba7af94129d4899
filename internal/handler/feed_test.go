package handler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"greenbuilder/internal/models"
	repomocks "greenbuilder/internal/repository/mocks"
)

func TestFeedPublishKeepsOnlyLatestSnapshot(t *testing.T) {
	m := NewFeedManager(new(repomocks.DesignRepository), FeedConfig{}, nil)
	client := &feedClient{userID: "u1", send: make(chan []models.DesignSummary, 1)}
	m.attach(client)

	m.publish([]models.DesignSummary{{ID: "old"}})
	m.publish([]models.DesignSummary{{ID: "new"}})

	select {
	case snapshot := <-client.send:
		require.Len(t, snapshot, 1)
		assert.Equal(t, "new", snapshot[0].ID)
	default:
		t.Fatal("expected a snapshot to be queued")
	}
}

func TestFeedAttachSeedsLatestSnapshot(t *testing.T) {
	m := NewFeedManager(new(repomocks.DesignRepository), FeedConfig{}, nil)
	m.publish([]models.DesignSummary{{ID: "d1"}})

	client := &feedClient{userID: "u1", send: make(chan []models.DesignSummary, 1)}
	m.attach(client)

	select {
	case snapshot := <-client.send:
		require.Len(t, snapshot, 1)
		assert.Equal(t, "d1", snapshot[0].ID)
	default:
		t.Fatal("expected the latest snapshot on attach")
	}
}

func TestFeedDetachClosesSendChannel(t *testing.T) {
	m := NewFeedManager(new(repomocks.DesignRepository), FeedConfig{}, nil)
	client := &feedClient{userID: "u1", send: make(chan []models.DesignSummary, 1)}
	id := m.attach(client)

	m.detach(id)

	_, open := <-client.send
	assert.False(t, open)
	// Повторный detach безопасен
	m.detach(id)
}

func TestFeedRefreshReloadsInPollingMode(t *testing.T) {
	repo := new(repomocks.DesignRepository)
	repo.On("List", mock.Anything).Return([]models.DesignSummary{{ID: "d1", DesignName: "Eco Home"}}, nil)

	m := NewFeedManager(repo, FeedConfig{Live: false, PollPeriod: time.Hour}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	client := &feedClient{userID: "u1", send: make(chan []models.DesignSummary, 1)}
	m.attach(client)
	m.Refresh()

	select {
	case snapshot := <-client.send:
		require.Len(t, snapshot, 1)
		assert.Equal(t, "Eco Home", snapshot[0].DesignName)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a snapshot after refresh")
	}
}
