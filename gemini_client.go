package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"agrisense/guide"
	"agrisense/models"
)

// geminiClient talks to the Gemini generateContent REST endpoint. It
// implements guide.Generator for the daily instructions and also backs
// the crop-prediction handler.
type geminiClient struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
}

func newGeminiClient(baseURL, apiKey, model string) *geminiClient {
	return &geminiClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		http:    &http.Client{Timeout: 25 * time.Second},
	}
}

type geminiGenConfig struct {
	Temperature     float64 `json:"temperature,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiReq struct {
	Contents         []geminiContent  `json:"contents"`
	GenerationConfig *geminiGenConfig `json:"generationConfig,omitempty"`
}

type geminiResp struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Generate produces today's instructions. The model output is freeform
// text and is stored verbatim.
func (g *geminiClient) Generate(ctx context.Context, req guide.GenerateRequest) (models.InstructionRecord, error) {
	text, err := g.generateContent(ctx, dailyGuidePrompt(req), nil)
	if err != nil {
		return models.InstructionRecord{}, err
	}
	return models.InstructionRecord{
		Instructions: text,
		GeneratedAt:  time.Now().UTC(),
	}, nil
}

// generateContent runs one prompt through the model and returns the
// first candidate's text.
func (g *geminiClient) generateContent(ctx context.Context, prompt string, cfg *geminiGenConfig) (string, error) {
	if g.apiKey == "" {
		return "", &guide.ConfigError{Missing: "GEMINI_API_KEY"}
	}

	in := geminiReq{
		Contents:         []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: cfg,
	}
	body, err := json.Marshal(in)
	if err != nil {
		return "", fmt.Errorf("marshal gemini req: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, g.model, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := g.http.Do(req)
	if err != nil {
		return "", &guide.UpstreamError{Service: "gemini", Msg: err.Error()}
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &guide.UpstreamError{Service: "gemini", Status: resp.StatusCode, Msg: string(data)}
	}

	var out geminiResp
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("decode gemini resp: %w", err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", &guide.UpstreamError{Service: "gemini", Msg: "empty response"}
	}
	return out.Candidates[0].Content.Parts[0].Text, nil
}

// dailyGuidePrompt mirrors the dashboard's generator prompt: sensor
// context, growth context, then the instruction sections.
func dailyGuidePrompt(req guide.GenerateRequest) string {
	sensorContext := fmt.Sprintf(`
Current Sensor Readings:
- Temperature: %s°C
- Humidity: %s%%
- Soil Moisture: %s%%
- pH Level: %s
- Light Intensity: %s lux
- Rain Detection: %s
`,
		orNA(req.SensorData.Temperature),
		orNA(req.SensorData.Humidity),
		orNA(req.SensorData.SoilMoisture),
		orNA(req.SensorData.PHLevel),
		orNA(req.SensorData.LightIntensity),
		yesNo(req.SensorData.RainDetected),
	)

	growthContext := ""
	if req.DaysSincePlanting > 0 && req.CropDuration > 0 {
		growthContext = fmt.Sprintf("\nCrop Growth Progress: Day %d of %d days (%.0f%% complete)",
			req.DaysSincePlanting, req.CropDuration,
			guide.Progress(req.DaysSincePlanting, req.CropDuration))
	}

	return fmt.Sprintf(`You are an expert agricultural advisor providing daily farming guidance.

%s
%s

Crop: %s

Provide practical, actionable daily instructions in %s language for this farmer. Include:

1. **Watering Schedule**: Specific watering instructions based on soil moisture and weather
2. **Fertilizer Advice**: Any fertilization needs for today
3. **Light/Sun Exposure**: Guidance on light management
4. **Alerts**: Any critical alerts or warnings based on sensor readings
5. **General Tasks**: Other important tasks for today

Format your response as clear, numbered sections. Be specific and practical.`,
		sensorContext, growthContext, req.Crop, languageName(req.Language))
}

func orNA(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
