// FILE: internal/client/api/client.go
// Package api is the HTTP client for the match API, with request and
// response echoing for debugging.
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"chesscoach/internal/client/display"
	"chesscoach/internal/core"
)

type HealthResponse struct {
	Status  string `json:"status"`
	Time    int64  `json:"time"`
	Matches int    `json:"matches"`
	Storage string `json:"storage"`
}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Verbose    bool
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			// Long-poll waits can hold a request near 25s
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) SetVerbose(v bool) {
	c.Verbose = v
}

// SetBaseURL updates the API base URL for the client
func (c *Client) SetBaseURL(url string) {
	c.BaseURL = strings.TrimRight(url, "/")
}

func (c *Client) doRequest(method, path string, body interface{}, result interface{}) error {
	url := c.BaseURL + path

	var bodyReader io.Reader
	var bodyStr string
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewReader(jsonData)
		bodyStr = string(jsonData)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	// Display request
	fmt.Printf("\n%s[API] %s %s%s\n", display.Blue, method, path, display.Reset)
	if bodyStr != "" {
		fmt.Printf("%s%s%s\n", display.Blue, bodyStr, display.Reset)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		fmt.Printf("%s[ERROR] %s%s\n", display.Red, err.Error(), display.Reset)
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	statusColor := display.Green
	if resp.StatusCode >= 400 {
		statusColor = display.Red
	}
	fmt.Printf("%s[%d %s]%s\n", statusColor, resp.StatusCode, http.StatusText(resp.StatusCode), display.Reset)

	if c.Verbose && len(respBody) > 0 {
		var prettyResp interface{}
		if err := json.Unmarshal(respBody, &prettyResp); err == nil {
			prettyJSON, _ := json.MarshalIndent(prettyResp, "", "  ")
			fmt.Printf("%sResponse Body:%s\n%s\n", display.Cyan, display.Reset, string(prettyJSON))
		} else {
			fmt.Printf("%sResponse:%s\n%s\n", display.Cyan, display.Reset, string(respBody))
		}
	}

	if resp.StatusCode >= 400 {
		var errResp core.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil {
			if !c.Verbose {
				fmt.Printf("%sError: %s%s\n", display.Red, errResp.Error, display.Reset)
				if errResp.Code != "" {
					fmt.Printf("%sCode: %s%s\n", display.Red, errResp.Code, display.Reset)
				}
				if errResp.Details != "" {
					fmt.Printf("%sDetails: %s%s\n", display.Red, errResp.Details, display.Reset)
				}
			}
		} else if !c.Verbose {
			fmt.Printf("%s%s%s\n", display.Red, string(respBody), display.Reset)
		}
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			fmt.Printf("%sResponse parse error: %s%s\n", display.Red, err.Error(), display.Reset)
			fmt.Printf("%sRaw response: %s%s\n", display.Green, string(respBody), display.Reset)
			return err
		}
	}

	return nil
}

// API Methods

func (c *Client) Health() (*HealthResponse, error) {
	var resp HealthResponse
	err := c.doRequest("GET", "/health", nil, &resp)
	return &resp, err
}

func (c *Client) CreateMatch(level int, fen string) (*core.MatchResponse, error) {
	req := &core.CreateMatchRequest{Level: level, FEN: fen}
	var resp core.MatchResponse
	err := c.doRequest("POST", "/api/v1/matches", req, &resp)
	return &resp, err
}

func (c *Client) GetMatch(matchID string) (*core.MatchResponse, error) {
	var resp core.MatchResponse
	err := c.doRequest("GET", "/api/v1/matches/"+matchID, nil, &resp)
	return &resp, err
}

// GetMatchWithPoll long-polls until the rated ledger grows past
// moveCount or the server-side wait times out.
func (c *Client) GetMatchWithPoll(matchID string, moveCount int) (*core.MatchResponse, error) {
	var resp core.MatchResponse
	path := fmt.Sprintf("/api/v1/matches/%s?wait=true&moveCount=%d", matchID, moveCount)
	err := c.doRequest("GET", path, nil, &resp)
	return &resp, err
}

func (c *Client) MakeMove(matchID string, move string) (*core.MatchResponse, error) {
	req := &core.MoveRequest{Move: move}
	var resp core.MatchResponse
	err := c.doRequest("POST", "/api/v1/matches/"+matchID+"/moves", req, &resp)
	return &resp, err
}

func (c *Client) RestartMatch(matchID string) (*core.MatchResponse, error) {
	var resp core.MatchResponse
	err := c.doRequest("POST", "/api/v1/matches/"+matchID+"/restart", nil, &resp)
	return &resp, err
}

func (c *Client) SetLevel(matchID string, level int) (*core.MatchResponse, error) {
	req := &core.SetLevelRequest{Level: level}
	var resp core.MatchResponse
	err := c.doRequest("PUT", "/api/v1/matches/"+matchID+"/level", req, &resp)
	return &resp, err
}

func (c *Client) DeleteMatch(matchID string) error {
	return c.doRequest("DELETE", "/api/v1/matches/"+matchID, nil, nil)
}

// RawRequest performs a raw HTTP request for debugging purposes
func (c *Client) RawRequest(method, path string, body string) error {
	var bodyData interface{}
	if body != "" {
		if err := json.Unmarshal([]byte(body), &bodyData); err != nil {
			bodyData = body
		}
	}
	return c.doRequest(method, path, bodyData, nil)
}
