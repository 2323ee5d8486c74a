package api

import (
	"context"
	"time"
)

// TaskKind names the browser operation a queued task performs.
type TaskKind string

const (
	TaskLoad       TaskKind = "load"
	TaskScreenshot TaskKind = "screenshot"
	TaskPDF        TaskKind = "pdf"
	TaskReset      TaskKind = "reset"
	TaskRelaunch   TaskKind = "relaunch"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail represents error details
type ErrorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
}

// RequestTask represents a queued request task
type RequestTask struct {
	ID        string             `json:"id"`
	Kind      TaskKind           `json:"kind"`
	Request   string             `json:"request"`
	Response  chan *TaskResponse `json:"-"`
	CreatedAt time.Time          `json:"created_at"`
	Context   context.Context    `json:"-"`
}

// TaskResponse represents the response from processing a task
type TaskResponse struct {
	Success     bool   `json:"success"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"-"`
	Error       error  `json:"-"`
}
