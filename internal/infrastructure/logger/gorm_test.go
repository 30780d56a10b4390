package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

const upsertSQL = `INSERT INTO "options" ("option_name","option_value") VALUES ('shipkia_access_token','tok-secret') ON CONFLICT DO UPDATE SET "option_value"="excluded"."option_value"`

func TestRedactSQL(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want string
	}{
		{"insert", upsertSQL, `INSERT INTO "options" ("option_name","option_value") [redacted]`},
		{"select", `SELECT * FROM "options" WHERE option_name = 'shipkia_refresh_token'`, `SELECT * FROM "options" [redacted]`},
		{"update", `UPDATE "options" SET option_value = 'x'`, `UPDATE "options" [redacted]`},
		{"no values", `SELECT count(*) FROM "order_meta"`, `SELECT count(*) FROM "order_meta"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RedactSQL(tt.sql))
		})
	}
}

func TestGormLogger_Trace(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-9")
	fc := func() (string, int64) { return upsertSQL, 1 }

	t.Run("redacts values by default", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		gl := NewGormLogger(zap.New(core), gormlogger.Info)

		gl.Trace(ctx, time.Now(), fc, nil)

		entry := findEntry(t, recorded, "SQL Query")
		sql := entry.ContextMap()["sql"].(string)
		assert.NotContains(t, sql, "tok-secret")
		assert.Equal(t, "req-9", entry.ContextMap()["request_id"])
	})

	t.Run("full SQL when enabled", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		gl := NewGormLogger(zap.New(core), gormlogger.Info, WithFullSQL(true))

		gl.Trace(ctx, time.Now(), fc, nil)

		entry := findEntry(t, recorded, "SQL Query")
		assert.Equal(t, upsertSQL, entry.ContextMap()["sql"])
	})

	t.Run("logs errors and skips record not found", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		gl := NewGormLogger(zap.New(core), gormlogger.Warn)

		gl.Trace(ctx, time.Now(), fc, gormlogger.ErrRecordNotFound)
		assert.Equal(t, 0, recorded.Len())

		gl.Trace(ctx, time.Now(), fc, errors.New("deadlock"))
		findEntry(t, recorded, "SQL Error")
	})

	t.Run("logs slow queries at warn", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		gl := NewGormLogger(zap.New(core), gormlogger.Warn, WithSlowThreshold(time.Millisecond))

		gl.Trace(ctx, time.Now().Add(-time.Second), fc, nil)

		entries := recorded.All()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	})

	t.Run("silent logs nothing", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		gl := NewGormLogger(zap.New(core), gormlogger.Info).LogMode(gormlogger.Silent)

		gl.Trace(ctx, time.Now(), fc, errors.New("boom"))
		assert.Equal(t, 0, recorded.Len())
	})
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("error"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("warn"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("other"))
}
