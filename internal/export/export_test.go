package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dori/tempo/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, nil))
	assert.JSONEq(t, `[]`, buf.String())
}

func TestWriteFieldNames(t *testing.T) {
	ts := time.Date(2026, 5, 10, 8, 0, 0, 0, time.UTC)
	todos := []model.Todo{{ID: 3, Title: "a", Description: "b", CreatedAt: ts, UpdatedAt: ts, StartedAt: &ts}}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, todos))

	assert.JSONEq(t, `[{
		"id": 3,
		"title": "a",
		"description": "b",
		"status": false,
		"remindIn": null,
		"createdAt": "2026-05-10T08:00:00.000Z",
		"updatedAt": "2026-05-10T08:00:00.000Z",
		"inProgress": false,
		"startedAt": "2026-05-10T08:00:00.000Z",
		"endedAt": null
	}]`, buf.String())
}

func TestWriteTimestampsSortLikeTime(t *testing.T) {
	a := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	b := a.Add(500 * time.Millisecond)
	todos := []model.Todo{
		{ID: 1, Title: "a", Description: "x", CreatedAt: a, UpdatedAt: a},
		{ID: 2, Title: "b", Description: "x", CreatedAt: b, UpdatedAt: b},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, todos))

	var doc []struct {
		UpdatedAt string `json:"updatedAt"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	require.Len(t, doc, 2)

	assert.Equal(t, model.FormatTimestamp(a), doc[0].UpdatedAt)
	assert.Equal(t, "2026-01-01T10:00:00.000Z", doc[0].UpdatedAt)
	assert.Equal(t, "2026-01-01T10:00:00.500Z", doc[1].UpdatedAt)
	assert.Less(t, doc[0].UpdatedAt, doc[1].UpdatedAt)
}

func TestWriteFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	ts := time.Date(2026, 5, 10, 8, 0, 0, 0, time.UTC)
	todos := []model.Todo{
		{ID: 1, Title: "a", Description: "b", CreatedAt: ts, UpdatedAt: ts},
		{ID: 2, Title: "c", Description: "d", Status: true, CreatedAt: ts, UpdatedAt: ts},
	}

	path, err := WriteFile(dir, todos)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, FileName), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got []model.Todo
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, todos, got)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not be left behind")
}
