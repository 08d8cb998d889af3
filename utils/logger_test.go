package utils

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func bufferedLogger() (*DefaultLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	return &DefaultLogger{logger: slog.New(slog.NewTextHandler(&buf, nil))}, &buf
}

func TestWithDefaultArgs(t *testing.T) {
	log, buf := bufferedLogger()

	ctx := WithDefaultArgs(context.Background(), "collection", "shirts")
	log.InfoCtx(ctx, "collection opened", "objects", 3)

	out := buf.String()
	assert.Contains(t, out, "collection=shirts")
	assert.Contains(t, out, "objects=3")
	assert.Contains(t, out, prefix+"collection opened")
}

func TestWithDefaultArgsAccumulates(t *testing.T) {
	log, buf := bufferedLogger()

	ctx := WithDefaultArgs(context.Background(), "collection", "shirts")
	ctx = WithDefaultArgs(ctx, "fields", "size")
	log.ErrorCtx(ctx, "backfill failed", "err", "boom")

	out := buf.String()
	assert.Contains(t, out, "collection=shirts")
	assert.Contains(t, out, "fields=size")
	assert.Contains(t, out, "err=boom")
}

func TestPlainLoggingWithoutCtx(t *testing.T) {
	log, buf := bufferedLogger()
	log.Info("index added", "fields", "size")
	assert.Contains(t, buf.String(), prefix+"index added")
	assert.Contains(t, buf.String(), "fields=size")
}
