package auditlog_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/uploadkit/pkg/auditlog"
)

func TestRecorder_RecordsInOrder(t *testing.T) {
	t.Parallel()
	rec := auditlog.NewRecorder()
	log := slog.New(rec)

	log.Info("capture set", slog.String("input", "file"))
	log.Warn("file exists", slog.String("filename", "a.txt"))
	log.Debug("checking size", slog.Int64("size", 100))

	entries := rec.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, []string{
		"capture set input=file",
		"file exists filename=a.txt",
		"checking size size=100",
	}, auditlog.Messages(entries))
	assert.Equal(t, slog.LevelWarn, entries[1].Level)
	assert.False(t, entries[0].Time.IsZero())
}

func TestRecorder_Level(t *testing.T) {
	t.Parallel()
	rec := auditlog.NewRecorder(auditlog.WithLevel(slog.LevelInfo))
	log := slog.New(rec)

	log.Debug("hidden")
	log.Info("shown")

	assert.Equal(t, []string{"shown"}, auditlog.Messages(rec.Entries()))
}

func TestRecorder_WithAttrsAndGroup(t *testing.T) {
	t.Parallel()
	rec := auditlog.NewRecorder()
	log := slog.New(rec).With(slog.String("component", "upload")).WithGroup("file")

	log.Info("saved", slog.String("name", "a.txt"), slog.Group("meta", slog.Int("size", 3)))

	entries := rec.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "saved component=upload file.name=a.txt file.meta.size=3", entries[0].String())

	v, ok := entries[0].Attr("file.meta.size")
	require.True(t, ok)
	assert.Equal(t, int64(3), v.Int64())
}

func TestRecorder_SharedState(t *testing.T) {
	t.Parallel()
	rec := auditlog.NewRecorder()
	slog.New(rec).Info("one")
	slog.New(rec).With("k", "v").Info("two")

	assert.Equal(t, 2, rec.Len())

	rec.Reset()
	assert.Zero(t, rec.Len())
}

func TestRecorder_ForwardsToNext(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	next := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})
	rec := auditlog.NewRecorder(auditlog.WithNext(next))
	log := slog.New(rec)

	log.Info("quiet")
	log.Warn("loud", slog.String("why", "overwrite"))

	assert.Equal(t, 2, rec.Len())
	assert.NotContains(t, buf.String(), "quiet")
	assert.Contains(t, buf.String(), "loud")
	assert.Contains(t, buf.String(), "why=overwrite")
}

func TestEntry_MarshalJSON(t *testing.T) {
	t.Parallel()
	rec := auditlog.NewRecorder()
	slog.New(rec).Error("transfer failed",
		slog.String("destination", "/tmp/a.txt"),
		slog.Any("error", errors.New("disk full")),
		slog.Bool("status", false),
	)

	data, err := json.Marshal(rec.Entries()[0])
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "transfer failed", got["message"])
	assert.Equal(t, "ERROR", got["level"])

	attrs, ok := got["attrs"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "/tmp/a.txt", attrs["destination"])
	assert.Equal(t, "disk full", attrs["error"])
	assert.Equal(t, false, attrs["status"])
}
