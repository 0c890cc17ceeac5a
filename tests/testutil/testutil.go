// Package testutil wires the marketplace for tests: an App over in-memory
// sqlite, request helpers and an event recorder.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ToJSONReader encodes v as a JSON request body
func ToJSONReader(t *testing.T, v any) io.Reader {
	t.Helper()

	data, err := json.Marshal(v)
	require.NoError(t, err, "Failed to marshal to JSON")
	return bytes.NewReader(data)
}
