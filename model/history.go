package model

import "time"

type HistoryKind string

const (
	HistoryKindText  HistoryKind = "text"
	HistoryKindImage HistoryKind = "image"

	MaxHistoryEntries = 100
)

type HistoryEntry struct {
	ID           string      `json:"id"`
	Term         string      `json:"term"`
	Timestamp    time.Time   `json:"timestamp"`
	Kind         HistoryKind `json:"type"`
	ImagePreview string      `json:"imagePreview,omitempty"`
}
