package request

import (
	"errors"
	"strings"
)

var (
	ErrTextRequired  = errors.New("text is required")
	ErrItemsRequired = errors.New("items must not be empty")
)

type CheckRequest struct {
	Text    string                 `json:"text"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (r *CheckRequest) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return ErrTextRequired
	}
	return nil
}

type BatchItem struct {
	Text string `json:"text"`
}

type BatchCheckRequest struct {
	Items []BatchItem `json:"items"`
}

func (r *BatchCheckRequest) Validate() error {
	if len(r.Items) == 0 {
		return ErrItemsRequired
	}
	for _, item := range r.Items {
		if strings.TrimSpace(item.Text) == "" {
			return ErrTextRequired
		}
	}
	return nil
}

func (r *BatchCheckRequest) Texts() []string {
	texts := make([]string, 0, len(r.Items))
	for _, item := range r.Items {
		texts = append(texts, item.Text)
	}
	return texts
}

type ClassifyRequest struct {
	Text string `json:"text"`
}

func (r *ClassifyRequest) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return ErrTextRequired
	}
	return nil
}
