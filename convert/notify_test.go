package convert

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"mdc/common"
)

func TestLogEmitter(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	e := NewLogEmitter(zap.New(core))
	ctx := context.Background()

	e.Status(ctx, Status{Description: "Converting to Word document...", Done: false})
	e.Notify(ctx, common.NotifyTypeError, "boom")
	e.Notify(ctx, common.NotifyTypeWarning, "careful")
	e.Notify(ctx, common.NotifyTypeSuccess, "done")

	entries := logs.All()
	if len(entries) != 4 {
		t.Fatalf("expected 4 log entries, got %d", len(entries))
	}
	if entries[0].Level != zap.InfoLevel || entries[0].Message != "Status" {
		t.Errorf("status entry: %v %q", entries[0].Level, entries[0].Message)
	}
	fields := entries[0].ContextMap()
	if fields["description"] != "Converting to Word document..." || fields["done"] != false {
		t.Errorf("status fields: %v", fields)
	}
	if entries[1].Level != zap.ErrorLevel || entries[1].Message != "boom" {
		t.Errorf("error entry: %v %q", entries[1].Level, entries[1].Message)
	}
	if entries[2].Level != zap.WarnLevel || entries[2].Message != "careful" {
		t.Errorf("warning entry: %v %q", entries[2].Level, entries[2].Message)
	}
	if entries[3].Level != zap.InfoLevel || entries[3].Message != "done" {
		t.Errorf("success entry: %v %q", entries[3].Level, entries[3].Message)
	}
}
