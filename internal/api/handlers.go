package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/luispater/storefrontBot/internal/browser/chrome"
	"github.com/luispater/storefrontBot/internal/config"
	"github.com/luispater/storefrontBot/internal/event"
	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

const defaultEventLimit = 50

// APIHandlers contains the handlers for API endpoints
type APIHandlers struct {
	queue       *RequestQueue
	recorder    *event.Recorder
	appConfig   *config.AppConfig
	taskTimeout time.Duration
}

// NewAPIHandlers creates a new API handlers instance
func NewAPIHandlers(appConfig *config.AppConfig, queue *RequestQueue, recorder *event.Recorder) *APIHandlers {
	return &APIHandlers{
		queue:       queue,
		recorder:    recorder,
		appConfig:   appConfig,
		taskTimeout: 5 * time.Minute,
	}
}

// Load handles POST /v1/load
func (h *APIHandlers) Load(c *gin.Context) {
	rawJson, err := c.GetRawData()
	if err != nil {
		h.badRequest(c, fmt.Sprintf("Invalid request: %v", err))
		return
	}
	if !gjson.ValidBytes(rawJson) {
		h.badRequest(c, "Invalid request: body is not JSON")
		return
	}
	if gjson.GetBytes(rawJson, "url").String() == "" {
		h.badRequest(c, "Invalid request: url is required")
		return
	}
	h.runTask(c, TaskLoad, string(rawJson))
}

// Screenshot handles GET /v1/screenshot
func (h *APIHandlers) Screenshot(c *gin.Context) {
	c.Header("Cache-Control", "no-cache")
	h.runTask(c, TaskScreenshot, "")
}

// PDF handles POST /v1/pdf
func (h *APIHandlers) PDF(c *gin.Context) {
	rawJson, err := c.GetRawData()
	if err != nil {
		h.badRequest(c, fmt.Sprintf("Invalid request: %v", err))
		return
	}
	if len(rawJson) == 0 {
		rawJson = []byte("{}")
	}
	if !gjson.ValidBytes(rawJson) {
		h.badRequest(c, "Invalid request: body is not JSON")
		return
	}
	h.runTask(c, TaskPDF, string(rawJson))
}

// Reset handles POST /v1/reset
func (h *APIHandlers) Reset(c *gin.Context) {
	h.runTask(c, TaskReset, "")
}

// Relaunch handles POST /v1/relaunch
func (h *APIHandlers) Relaunch(c *gin.Context) {
	h.runTask(c, TaskRelaunch, "")
}

// Events handles GET /v1/events
func (h *APIHandlers) Events(c *gin.Context) {
	var m event.Matcher
	if kind := c.Query("kind"); kind != "" {
		k, err := event.ParseKind(kind)
		if err != nil {
			h.badRequest(c, err.Error())
			return
		}
		m = event.OfKind(k)
	}

	limit := defaultEventLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.badRequest(c, fmt.Sprintf("Invalid limit %q", raw))
			return
		}
		limit = n
	}

	events := make([]event.Event, 0)
	if h.recorder != nil {
		events = h.recorder.Recent(m, limit)
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

func (h *APIHandlers) runTask(c *gin.Context, kind TaskKind, request string) {
	task := &RequestTask{
		ID:        uuid.New().String(),
		Kind:      kind,
		Request:   request,
		Response:  make(chan *TaskResponse, 1),
		CreatedAt: time.Now(),
		Context:   c.Request.Context(),
	}

	if err := h.queue.AddTask(task); err != nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error: ErrorDetail{
				Message: fmt.Sprintf("Failed to queue request: %v", err),
				Type:    "server_error",
			},
		})
		return
	}

	select {
	case response := <-task.Response:
		if !response.Success {
			status, detail := errorDetail(response.Error)
			log.Debugf("Task %s failed: %v", task.ID, response.Error)
			c.JSON(status, ErrorResponse{Error: detail})
			return
		}
		c.Data(http.StatusOK, response.ContentType, response.Body)
	case <-c.Request.Context().Done():
		log.Debugf("Client disconnected: %v", c.Request.Context().Err())
	case <-time.After(h.taskTimeout):
		c.JSON(http.StatusRequestTimeout, ErrorResponse{
			Error: ErrorDetail{
				Message: "Request timeout",
				Type:    "timeout_error",
			},
		})
	}
}

func (h *APIHandlers) badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error: ErrorDetail{
			Message: message,
			Type:    "invalid_request_error",
		},
	})
}

// errorDetail maps a browser error onto an HTTP status.
func errorDetail(err error) (int, ErrorDetail) {
	if err == nil {
		err = errors.New("unknown error")
	}
	var notOk *chrome.NotOkResponse
	switch {
	case errors.As(err, &notOk):
		return http.StatusBadGateway, ErrorDetail{
			Message: err.Error(),
			Type:    "upstream_error",
			Code:    strconv.FormatInt(notOk.Status, 10),
		}
	case errors.Is(err, chrome.ErrWaitTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, ErrorDetail{Message: err.Error(), Type: "timeout_error"}
	case errors.Is(err, chrome.ErrSessionClosed):
		return http.StatusServiceUnavailable, ErrorDetail{Message: err.Error(), Type: "server_error"}
	}
	return http.StatusInternalServerError, ErrorDetail{
		Message: fmt.Sprintf("Processing failed: %v", err),
		Type:    "server_error",
	}
}
