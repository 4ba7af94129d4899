package clients_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"greenbuilder/internal/clients"
	"greenbuilder/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testDraft() models.DesignDraft {
	draft := models.NewDesignDraft()
	draft.DesignName = "Eco Home"
	draft.Length = "10"
	draft.Width = "8"
	draft.Rooms[models.RoomBedroom] = 2
	draft.Windows[models.WindowTop] = true
	draft.Windows[models.WindowLeft] = true
	return draft
}

func TestGenerateSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/designs", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var draft models.DesignDraft
		require.NoError(t, json.NewDecoder(r.Body).Decode(&draft))
		assert.Equal(t, "Eco Home", draft.DesignName)
		assert.Equal(t, 2, draft.Rooms[models.RoomBedroom])

		resp := models.Design{
			ID:         "design-1",
			DesignName: draft.DesignName,
			Length:     draft.Length,
			Width:      draft.Width,
			Rooms:      draft.Rooms,
			Windows:    draft.Windows,
			CreatedAt:  time.Now().UTC(),
			Configurations: []models.Configuration{
				{
					Name:        "Variant A",
					Description: "South facing living room",
					Report: models.EfficiencyReport{
						Grade:      "A",
						TotalScore: 92.5,
						DetailedScores: map[string]float64{
							"temperature_score": 30,
							"light_score":       32.5,
							"humidity_score":    30,
						},
					},
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client, err := clients.NewGeneratorClient(server.URL, 5*time.Second, zap.NewNop())
	require.NoError(t, err)

	design, err := client.Generate(context.Background(), testDraft())
	require.NoError(t, err)
	require.NotNil(t, design)
	assert.Equal(t, "design-1", design.ID)
	require.Len(t, design.Configurations, 1)
	assert.Equal(t, "A", design.Configurations[0].Report.Grade)
	assert.InDelta(t, 92.5, design.Configurations[0].Report.TotalScore, 0.001)
}

func TestGenerateLegacyNestedConfigurations(t *testing.T) {
	// Старый бэкенд вкладывает варианты в gpt_configurations
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "design-2",
			"designName": "Eco Home",
			"gpt_configurations": {
				"configurations": [
					{"name": "Variant A", "description": "", "image": "",
					 "energy_efficiency_report": {"energy_efficiency_grade": "B", "total_score": 81, "detailed_scores": {}}}
				]
			}
		}`))
	}))
	defer server.Close()

	client, err := clients.NewGeneratorClient(server.URL, 5*time.Second, zap.NewNop())
	require.NoError(t, err)

	design, err := client.Generate(context.Background(), testDraft())
	require.NoError(t, err)
	require.Len(t, design.Configurations, 1)
	assert.Equal(t, "B", design.Configurations[0].Report.Grade)
}

func TestGenerateServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "generation backend overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client, err := clients.NewGeneratorClient(server.URL, 5*time.Second, zap.NewNop())
	require.NoError(t, err)

	design, err := client.Generate(context.Background(), testDraft())
	assert.Nil(t, design)

	var svcErr *models.ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, http.StatusServiceUnavailable, svcErr.StatusCode)
	assert.Contains(t, svcErr.Message, "overloaded")
}

func TestGenerateNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // соединение откажет

	client, err := clients.NewGeneratorClient(server.URL, time.Second, zap.NewNop())
	require.NoError(t, err)

	design, err := client.Generate(context.Background(), testDraft())
	assert.Nil(t, design)

	var netErr *models.NetworkError
	require.ErrorAs(t, err, &netErr)
}

func TestNewGeneratorClientRejectsBadURL(t *testing.T) {
	_, err := clients.NewGeneratorClient("not a url", time.Second, zap.NewNop())
	assert.Error(t, err)
}
