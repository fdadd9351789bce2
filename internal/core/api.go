// FILE: internal/core/api.go
package core

// Request types

type CreateMatchRequest struct {
	Level int    `json:"level,omitempty" validate:"omitempty,min=1,max=7"`
	FEN   string `json:"fen,omitempty" validate:"omitempty,max=100"`
}

type MoveRequest struct {
	Move string `json:"move" validate:"required,min=4,max=5"` // UCI text, e.g. "e2e4" or "a7a8q"
}

type SetLevelRequest struct {
	Level int `json:"level" validate:"required,min=1,max=7"`
}

// Response types

type MatchResponse struct {
	MatchID string        `json:"matchId"`
	FEN     string        `json:"fen"`
	Turn    string        `json:"turn"`   // "w" or "b"
	Phase   string        `json:"phase"`  // scheduler phase
	Result  string        `json:"result"` // "ongoing", "white wins", etc
	Level   int           `json:"level"`
	Moves   []RatedMove   `json:"moves"`
	Summary *MatchSummary `json:"summary,omitempty"`
}

type RatedMove struct {
	Ply     int    `json:"ply"`
	Color   string `json:"color"` // "w" or "b"
	Move    string `json:"move"`
	SAN     string `json:"san"`
	Rating  string `json:"rating"`
	DeltaCP int    `json:"deltaCp"`
}

type MatchSummary struct {
	Brilliant  int `json:"brilliant"`
	Great      int `json:"great"`
	Good       int `json:"good"`
	Inaccuracy int `json:"inaccuracy"`
	Mistake    int `json:"mistake"`
	Blunder    int `json:"blunder"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}
