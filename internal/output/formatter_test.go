package output

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintShown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintShown(&buf, Shown{Title: "Hi"}, false))
	assert.Equal(t, "Notification shown.\n", buf.String())

	buf.Reset()
	require.NoError(t, PrintShown(&buf, Shown{Title: "Hi", Backend: "dbus", Worker: true, AutoCloseMS: 4000}, true))
	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "Hi", got["title"])
	assert.Equal(t, "dbus", got["backend"])
	assert.Equal(t, true, got["worker"])
	assert.Equal(t, float64(4000), got["auto_close_ms"])
	assert.NotContains(t, got, "tag")
}

func TestPrintPermission(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintPermission(&buf, PermissionStatus{State: "default"}, false))
	assert.Equal(t, "default\n", buf.String())

	at := time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)
	buf.Reset()
	require.NoError(t, PrintPermission(&buf, PermissionStatus{State: "granted", UpdatedAt: &at}, true))
	assert.Contains(t, buf.String(), `"state": "granted"`)
	assert.Contains(t, buf.String(), `"updated_at": "2024-01-01T09:30:00Z"`)
}

func TestPrintGranted(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintGranted(&buf, true, false))
	require.NoError(t, PrintGranted(&buf, false, false))
	assert.Equal(t, "Permission Granted.\nPermission Not Granted.\n", buf.String())

	buf.Reset()
	require.NoError(t, PrintGranted(&buf, true, true))
	assert.JSONEq(t, `{"granted": true}`, buf.String())
}
