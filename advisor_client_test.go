package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"agrisense/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gatewayStub(t *testing.T, reply string, captured *[]map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"))
		var body struct {
			Messages []map[string]any `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if captured != nil {
			*captured = body.Messages
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": reply}},
			},
		})
	}))
}

func TestChatHandler(t *testing.T) {
	var messages []map[string]any
	backend := gatewayStub(t, "Water in the evening to limit evaporation.", &messages)
	defer backend.Close()

	app, _, _ := newTestApp(t)
	app.advisor = newAdvisorClient(backend.URL, "key", "test-model")

	temp := 38.0
	rec := postJSON(t, app.handleChat, chatReq{
		Messages:      []chatMessage{{Role: "user", Content: "When should I water?"}},
		SensorData:    &models.SensorSnapshot{Temperature: &temp},
		PredictedCrop: "cotton",
		Language:      "mr",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var out chatResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Contains(t, out.Response, "evening")

	// System prompt carries the sensor context, crop and language.
	require.Len(t, messages, 2)
	system, _ := messages[0]["content"].(string)
	assert.Contains(t, system, "Marathi")
	assert.Contains(t, system, "Temperature: 38°C")
	assert.Contains(t, system, "AI Predicted Crop: cotton")
}

func TestChatHandlerRequiresMessages(t *testing.T) {
	app, _, _ := newTestApp(t)
	app.advisor = newAdvisorClient("http://127.0.0.1:0", "key", "m")

	rec := postJSON(t, app.handleChat, chatReq{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatHandlerMissingKey(t *testing.T) {
	app, _, _ := newTestApp(t)
	app.advisor = newAdvisorClient("http://127.0.0.1:0", "", "m")

	rec := postJSON(t, app.handleChat, chatReq{
		Messages: []chatMessage{{Role: "user", Content: "hi"}},
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCropPricesHandler(t *testing.T) {
	backend := gatewayStub(t, "Wholesale around ₹2,400/quintal, trending stable.", nil)
	defer backend.Close()

	app, _, _ := newTestApp(t)
	app.advisor = newAdvisorClient(backend.URL, "key", "m")

	rec := postJSON(t, app.handleCropPrices, cropPricesReq{CropName: "wheat", Location: "Nashik"})
	require.Equal(t, http.StatusOK, rec.Code)

	var out cropPricesResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Contains(t, out.PriceInfo, "quintal")
}

func TestCropPricesHandlerRequiresCrop(t *testing.T) {
	app, _, _ := newTestApp(t)
	app.advisor = newAdvisorClient("http://127.0.0.1:0", "key", "m")

	rec := postJSON(t, app.handleCropPrices, cropPricesReq{Location: "Nashik"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInsuranceAdviceHandler(t *testing.T) {
	backend := gatewayStub(t, "PMFBY covers kharif cotton at 2% premium.", nil)
	defer backend.Close()

	app, _, _ := newTestApp(t)
	app.advisor = newAdvisorClient(backend.URL, "key", "m")

	rec := postJSON(t, app.handleInsuranceAdvice, insuranceAdviceReq{
		CropType: "cotton",
		Location: "Maharashtra",
		Season:   "kharif",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var out insuranceAdviceResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Contains(t, out.Advice, "PMFBY")
}
