package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidRequest is returned for requests the caller must fix
var ErrInvalidRequest = errors.New("invalid analysis request")

// AnalysisRequest asks for a risk report on one product
type AnalysisRequest struct {
	ProductName  string   `json:"product_name"`
	UserScenario string   `json:"user_scenario,omitempty"` // Free-text description of where/how it will be used
	Budget       string   `json:"budget,omitempty"`
	Priorities   []string `json:"priorities,omitempty"` // Ordered by importance
	Brand        string   `json:"brand,omitempty"`      // Optional, narrows the history lookup
}

// Validate checks the required fields
func (r AnalysisRequest) Validate() error {
	if strings.TrimSpace(r.ProductName) == "" {
		return fmt.Errorf("%w: product_name is required", ErrInvalidRequest)
	}
	return nil
}

// Message is one entry in the rolling conversation history
type Message struct {
	Role    string `json:"role"` // user or assistant
	Content string `json:"content"`
}

// Conversation roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)
