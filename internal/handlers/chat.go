package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// ChatHandler relays a single user message to the configured
// generateContent endpoint and returns the model's reply verbatim.
type ChatHandler struct {
	URL    string
	APIKey string
	Client *http.Client
}

func NewChatHandler(url, apiKey string) *ChatHandler {
	return &ChatHandler{
		URL:    url,
		APIKey: apiKey,
		Client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (h *ChatHandler) Chat(c echo.Context) error {
	var req struct {
		Message string `json:"message"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}
	if req.Message == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "message required")
	}
	if h.URL == "" {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "chat relay not configured")
	}

	payload := map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": req.Message}}},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	upstream, err := http.NewRequestWithContext(c.Request().Context(), http.MethodPost, h.URL, bytes.NewReader(body))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	upstream.Header.Set("Content-Type", "application/json")
	upstream.Header.Set("x-goog-api-key", h.APIKey)

	res, err := h.Client.Do(upstream)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return echo.NewHTTPError(http.StatusBadGateway, "chat upstream error: "+res.Status)
	}

	var r struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}

	reply := ""
	if len(r.Candidates) > 0 && len(r.Candidates[0].Content.Parts) > 0 {
		reply = r.Candidates[0].Content.Parts[0].Text
	}

	return c.JSON(http.StatusOK, echo.Map{"reply": reply})
}
