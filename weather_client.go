package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"agrisense/guide"
)

// weatherClient proxies OpenWeatherMap: current conditions plus the
// 5-day forecast collapsed to one reading per day (the noon slot).
type weatherClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func newWeatherClient(baseURL, apiKey string) *weatherClient {
	return &weatherClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

type owmCurrent struct {
	Name string `json:"name"`
	Sys  struct {
		Country string `json:"country"`
	} `json:"sys"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Weather []struct {
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
}

type owmForecast struct {
	List []struct {
		DtTxt string `json:"dt_txt"`
		Main  struct {
			Temp     float64 `json:"temp"`
			TempMin  float64 `json:"temp_min"`
			TempMax  float64 `json:"temp_max"`
			Humidity int     `json:"humidity"`
		} `json:"main"`
		Wind struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
		Weather []struct {
			Description string `json:"description"`
			Icon        string `json:"icon"`
		} `json:"weather"`
	} `json:"list"`
}

type currentWeather struct {
	Temp        int    `json:"temp"`
	FeelsLike   int    `json:"feels_like"`
	Humidity    int    `json:"humidity"`
	WindSpeed   int    `json:"wind_speed"` // km/h
	Description string `json:"description"`
	Icon        string `json:"icon"`
	City        string `json:"city"`
	Country     string `json:"country"`
}

type forecastDay struct {
	Date        string `json:"date"`
	Temp        int    `json:"temp"`
	TempMin     int    `json:"temp_min"`
	TempMax     int    `json:"temp_max"`
	Humidity    int    `json:"humidity"`
	WindSpeed   int    `json:"wind_speed"` // km/h
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type weatherReport struct {
	Current  currentWeather `json:"current"`
	Forecast []forecastDay  `json:"forecast"`
}

// Fetch returns the shaped report for either a city name or coordinates.
func (c *weatherClient) Fetch(ctx context.Context, city string, lat, lon float64) (*weatherReport, error) {
	if c.apiKey == "" {
		return nil, &guide.ConfigError{Missing: "OPENWEATHERMAP_API_KEY"}
	}

	q := url.Values{}
	q.Set("units", "metric")
	q.Set("appid", c.apiKey)
	if city != "" {
		q.Set("q", city)
	} else {
		q.Set("lat", fmt.Sprintf("%g", lat))
		q.Set("lon", fmt.Sprintf("%g", lon))
	}

	var current owmCurrent
	if err := c.getJSON(ctx, "/weather?"+q.Encode(), &current); err != nil {
		return nil, err
	}
	var forecast owmForecast
	if err := c.getJSON(ctx, "/forecast?"+q.Encode(), &forecast); err != nil {
		return nil, err
	}

	report := &weatherReport{
		Current: currentWeather{
			Temp:      roundInt(current.Main.Temp),
			FeelsLike: roundInt(current.Main.FeelsLike),
			Humidity:  current.Main.Humidity,
			WindSpeed: roundInt(current.Wind.Speed * 3.6), // m/s -> km/h
			City:      current.Name,
			Country:   current.Sys.Country,
		},
	}
	if len(current.Weather) > 0 {
		report.Current.Description = current.Weather[0].Description
		report.Current.Icon = current.Weather[0].Icon
	}

	// One reading per day: the forecast list carries 3h slots, the
	// noon one stands in for the day.
	for _, slot := range forecast.List {
		if !strings.Contains(slot.DtTxt, "12:00:00") {
			continue
		}
		day := forecastDay{
			Date:      strings.SplitN(slot.DtTxt, " ", 2)[0],
			Temp:      roundInt(slot.Main.Temp),
			TempMin:   roundInt(slot.Main.TempMin),
			TempMax:   roundInt(slot.Main.TempMax),
			Humidity:  slot.Main.Humidity,
			WindSpeed: roundInt(slot.Wind.Speed * 3.6), // m/s -> km/h
		}
		if len(slot.Weather) > 0 {
			day.Description = slot.Weather[0].Description
			day.Icon = slot.Weather[0].Icon
		}
		report.Forecast = append(report.Forecast, day)
		if len(report.Forecast) == 5 {
			break
		}
	}

	return report, nil
}

func (c *weatherClient) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return &guide.UpstreamError{Service: "openweathermap", Msg: err.Error()}
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &guide.UpstreamError{Service: "openweathermap", Status: resp.StatusCode, Msg: string(data)}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode weather resp: %w", err)
	}
	return nil
}

func roundInt(f float64) int { return int(math.Round(f)) }
