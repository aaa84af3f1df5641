package service

import "paperbuilder/internal/model"

// Message types pushed to live preview subscribers
const (
	MsgPaperUpdated = "paper_updated"
)

// PaperUpdate is the payload of a paper_updated message
type PaperUpdate struct {
	Op    string         `json:"op"`
	Paper model.Document `json:"paper"`
}

// Broadcaster interface for WebSocket broadcasting (avoids import cycle)
type Broadcaster interface {
	BroadcastPaper(msgType string, payload interface{})
}
