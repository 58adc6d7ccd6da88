package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

// handleChat answers free-form farming questions, grounding the model
// in the caller's sensor snapshot and predicted crop when provided.
func (a *App) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "bad json")
		return
	}
	if len(req.Messages) == 0 {
		writeErr(w, http.StatusBadRequest, "messages are required")
		return
	}

	var extra strings.Builder
	if req.SensorData != nil {
		s := req.SensorData
		fmt.Fprintf(&extra, "\n\nCurrent Farm Sensor Data:\n- Temperature: %s°C\n- Humidity: %s%%\n- Soil Moisture: %s%%\n- pH Level: %s\n- Light Intensity: %s lux",
			orNA(s.Temperature), orNA(s.Humidity), orNA(s.SoilMoisture), orNA(s.PHLevel), orNA(s.LightIntensity))
	}
	if req.PredictedCrop != "" {
		fmt.Fprintf(&extra, "\n\nAI Predicted Crop: %s", req.PredictedCrop)
	}

	system := fmt.Sprintf("You are a helpful smart farming assistant. You can answer questions about farming, analyze sensor data, and provide agricultural advice. IMPORTANT: Always respond in %s language.%s",
		languageName(req.Language), extra.String())
	user := req.Messages[len(req.Messages)-1].Content

	answer, err := a.advisor.complete(r.Context(), system, user, 1024)
	if err != nil {
		writeGuideErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chatResp{Response: answer})
}

// Matches a fenced ```json block, else the widest brace span.
var (
	jsonFenceRe = regexp.MustCompile("```json\\n([\\s\\S]*?)\\n```")
	jsonBraceRe = regexp.MustCompile(`\{[\s\S]*\}`)
)

// handleCropPrediction asks the model for a suitable crop as JSON. The
// model does not reliably comply, so the output goes through defensive
// extraction with a synthetic fallback record.
func (a *App) handleCropPrediction(w http.ResponseWriter, r *http.Request) {
	var req cropPredictionReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "bad json")
		return
	}

	prompt := fmt.Sprintf(`Based on these sensor readings from a smart farm:
- Temperature: %s°C
- Humidity: %s%%
- Soil Moisture: %s%%
- pH Level: %s
- Light Intensity: %s lux

Which crop is most suitable to grow right now in this farm? Please provide:
1. The name of the recommended crop
2. A brief explanation (2-3 sentences) of why this crop is suitable
3. Any specific care recommendations

IMPORTANT: Provide your entire response in %s language.
Format your response as JSON with keys: cropName, reason, recommendations`,
		orNA(req.SensorData.Temperature), orNA(req.SensorData.Humidity),
		orNA(req.SensorData.SoilMoisture), orNA(req.SensorData.PHLevel),
		orNA(req.SensorData.LightIntensity), languageName(req.Language))

	raw, err := a.gemini.generateContent(r.Context(), prompt, &geminiGenConfig{
		Temperature:     0.5,
		MaxOutputTokens: 512,
	})
	if err != nil {
		writeGuideErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, extractPrediction(raw))
}

// extractPrediction pulls the JSON record out of the model output,
// tolerating markdown fences and surrounding prose.
func extractPrediction(raw string) cropPrediction {
	jsonStr := raw
	if m := jsonFenceRe.FindStringSubmatch(raw); m != nil {
		jsonStr = m[1]
	} else if m := jsonBraceRe.FindString(raw); m != "" {
		jsonStr = m
	}

	var pred cropPrediction
	if err := json.Unmarshal([]byte(jsonStr), &pred); err != nil || pred.CropName == "" {
		reason := raw
		if len(reason) > 200 {
			reason = reason[:200]
		}
		return cropPrediction{
			CropName:        "Various Suitable Crops",
			Reason:          reason,
			Recommendations: "Consult with local agricultural experts for specific recommendations.",
		}
	}
	return pred
}

// handleCropPrices returns market analysis for a crop and location.
func (a *App) handleCropPrices(w http.ResponseWriter, r *http.Request) {
	var req cropPricesReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "bad json")
		return
	}
	if req.CropName == "" {
		writeErr(w, http.StatusBadRequest, "cropName is required")
		return
	}

	prompt := fmt.Sprintf(`You are an agricultural market analyst for Indian farmers. Provide current market information for the following:

Crop: %s
Location: %s

Please provide:
1. Current wholesale price (per quintal in INR)
2. Current retail price (per quintal in INR)
3. Price trend analysis (last 7-30 days) - mention if prices are rising, falling, or stable
4. Market insights and predictions (factors affecting prices like weather, demand, season)
5. Best time to sell recommendations
6. Nearby mandis/markets with better rates

Reference sources like Agmarknet, government market data, and current agricultural trends in India. Be specific and practical.

IMPORTANT: Provide your entire response in %s language.
Format the response in a clear, structured way that farmers can easily understand.`,
		req.CropName, req.Location, languageName(req.Language))

	info, err := a.advisor.complete(r.Context(), "", prompt, 2048)
	if err != nil {
		writeGuideErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cropPricesResp{PriceInfo: info})
}

// handleInsuranceAdvice returns crop-insurance scheme recommendations.
func (a *App) handleInsuranceAdvice(w http.ResponseWriter, r *http.Request) {
	var req insuranceAdviceReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "bad json")
		return
	}
	if req.CropType == "" {
		writeErr(w, http.StatusBadRequest, "cropType is required")
		return
	}

	prompt := fmt.Sprintf(`You are an agricultural insurance advisor for Indian farmers. Analyze the following data and provide detailed insurance recommendations:

Crop Type: %s
Location: %s
Season: %s

Please provide:
1. Best suitable insurance schemes (prioritize PMFBY and other government schemes)
2. Coverage amount and premium rates
3. Eligibility criteria
4. Official website links
5. A daily tip or advisory specific to this crop and season
6. Any deadlines or important dates

IMPORTANT: Provide your entire response in %s language.
Format the response in a structured way with clear sections. Be specific to Indian agricultural insurance schemes.`,
		req.CropType, req.Location, req.Season, languageName(req.Language))

	advice, err := a.advisor.complete(r.Context(), "", prompt, 2048)
	if err != nil {
		writeGuideErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, insuranceAdviceResp{Advice: advice})
}
