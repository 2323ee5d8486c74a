package api

import (
	"context"
	"fmt"
	"time"

	"github.com/luispater/storefrontBot/internal/config"
	"github.com/luispater/storefrontBot/internal/method"
	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// BrowserProcessor implements TaskProcessor against a Browser.
type BrowserProcessor struct {
	browser   Browser
	appConfig *config.AppConfig
}

func NewBrowserProcessor(appConfig *config.AppConfig, browser Browser) *BrowserProcessor {
	return &BrowserProcessor{
		browser:   browser,
		appConfig: appConfig,
	}
}

// ProcessTask processes a browser task
func (bp *BrowserProcessor) ProcessTask(ctx context.Context, task *RequestTask) *TaskResponse {
	log.Debugf("Starting to process task %s", task.ID)

	switch task.Kind {
	case TaskLoad:
		return bp.processLoad(ctx, task)
	case TaskScreenshot:
		return bp.processScreenshot(ctx)
	case TaskPDF:
		return bp.processPDF(ctx, task)
	case TaskReset:
		return bp.processAction(ctx, bp.browser.Reset)
	case TaskRelaunch:
		return bp.processAction(ctx, bp.browser.Relaunch)
	}
	return &TaskResponse{Error: fmt.Errorf("unknown task kind %q", task.Kind)}
}

func (bp *BrowserProcessor) processLoad(ctx context.Context, task *RequestTask) *TaskResponse {
	req := parseLoadRequest(task.Request)
	if req.Timeout == 0 {
		req.Timeout = bp.appConfig.WaitTimeoutDuration()
	}

	result, err := bp.browser.Load(ctx, req)
	if err != nil {
		return &TaskResponse{Error: err}
	}

	jsonOutput := `{"ok":false,"status":0}`
	jsonOutput, _ = sjson.Set(jsonOutput, "ok", result.OK)
	jsonOutput, _ = sjson.Set(jsonOutput, "status", result.Status)
	jsonOutput, _ = sjson.Set(jsonOutput, "url", req.URL)
	if result.Event != nil {
		jsonOutput, _ = sjson.Set(jsonOutput, "response", result.Response)
		jsonOutput, _ = sjson.Set(jsonOutput, "event", result.Event.Kind.String())
	}
	return &TaskResponse{
		Success:     true,
		ContentType: "application/json",
		Body:        []byte(jsonOutput),
	}
}

func (bp *BrowserProcessor) processScreenshot(ctx context.Context) *TaskResponse {
	buf, err := bp.browser.Screenshot(ctx)
	if err != nil {
		return &TaskResponse{Error: err}
	}
	return &TaskResponse{Success: true, ContentType: "image/png", Body: buf}
}

func (bp *BrowserProcessor) processPDF(ctx context.Context, task *RequestTask) *TaskResponse {
	opts := method.PDFOptions{
		Format:          bp.appConfig.PDF.Format,
		Landscape:       bp.appConfig.PDF.Landscape,
		PrintBackground: bp.appConfig.PDF.PrintBackground,
	}
	if f := gjson.Get(task.Request, "format"); f.Type == gjson.String {
		opts.Format = f.String()
	}
	if l := gjson.Get(task.Request, "landscape"); l.IsBool() {
		opts.Landscape = l.Bool()
	}
	if pb := gjson.Get(task.Request, "print_background"); pb.IsBool() {
		opts.PrintBackground = pb.Bool()
	}

	buf, err := bp.browser.PDF(ctx, gjson.Get(task.Request, "url").String(), opts)
	if err != nil {
		return &TaskResponse{Error: err}
	}
	return &TaskResponse{Success: true, ContentType: "application/pdf", Body: buf}
}

// processAction runs a browser action that returns no payload.
func (bp *BrowserProcessor) processAction(ctx context.Context, action func(context.Context) error) *TaskResponse {
	if err := action(ctx); err != nil {
		return &TaskResponse{Error: err}
	}
	return &TaskResponse{Success: true, ContentType: "application/json", Body: []byte(`{"ok":true}`)}
}

func parseLoadRequest(raw string) LoadRequest {
	req := LoadRequest{
		URL:         gjson.Get(raw, "url").String(),
		WaitPath:    gjson.Get(raw, "wait_path").String(),
		WaitURL:     gjson.Get(raw, "wait_url").String(),
		WaitConsole: gjson.Get(raw, "wait_console").String(),
	}
	if ms := gjson.Get(raw, "timeout_ms"); ms.Type == gjson.Number && ms.Int() > 0 {
		req.Timeout = time.Duration(ms.Int()) * time.Millisecond
	}
	return req
}
