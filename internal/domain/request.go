package domain

// ChatRequest is the body of POST /chat/:session_id.
type ChatRequest struct {
	Text string `json:"text"`
}

// RegisterToolRequest is the body of POST /tools. Name and Description are
// optional; when empty they are derived from the descriptor's info block.
type RegisterToolRequest struct {
	SpecLocation string `json:"spec_location"`
	Name         string `json:"name,omitempty"`
	Description  string `json:"description,omitempty"`
}
