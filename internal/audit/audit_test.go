package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fittogether/server/pkg/log"
)

func capture(t *testing.T, fn func(ctx context.Context)) map[string]interface{} {
	t.Helper()

	var buf bytes.Buffer
	fn(log.WithLogger(context.Background(), log.New(log.Config{Level: "info"}, &buf)))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestLogWithTarget(t *testing.T) {
	entry := capture(t, func(ctx context.Context) {
		Log(ctx, ActionDMRoomCreated, "user-1", "chat room created", Target("17"))
	})

	assert.Equal(t, log.LogTypeAudit, entry[log.FieldLogType])
	assert.Equal(t, ActionDMRoomCreated, entry[FieldAction])
	assert.Equal(t, "user-1", entry[log.FieldUserID])
	assert.Equal(t, "17", entry[FieldTargetID])
	assert.Equal(t, "chat room created", entry["message"])
}

func TestLogAnonymousWithDetail(t *testing.T) {
	entry := capture(t, func(ctx context.Context) {
		Log(ctx, ActionSignInFailed, "", "sign in failed", Detail("ghost@x.com"))
	})

	assert.NotContains(t, entry, log.FieldUserID)
	assert.Equal(t, "ghost@x.com", entry[FieldDetail])
}
