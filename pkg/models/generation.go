package models

// GenerateRequest represents a content generation request
type GenerateRequest struct {
	Topic  string `json:"topic"`
	Style  string `json:"style" validate:"omitempty,oneof=article blog script"`
	Length string `json:"length" validate:"omitempty,oneof=short medium long"`
}

// GenerateResponse carries either generated text or an error message, never both.
// Text is always present on the wire so clients can rely on it.
type GenerateResponse struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

// QuotaExceededResponse is returned when the user must upgrade to keep generating
type QuotaExceededResponse struct {
	Error      string     `json:"error"`
	Message    string     `json:"message"`
	UpgradeURL string     `json:"upgrade_url"`
	Usage      *UsageInfo `json:"usage,omitempty"`
}

// UsageInfo represents generation usage statistics
type UsageInfo struct {
	Used      int `json:"used"`
	Limit     int `json:"limit"`
	Remaining int `json:"remaining"`
}
