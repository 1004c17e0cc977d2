package postgres

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"fintracker/config"
	deliverycontext "fintracker/internal/delivery/context"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newBufferedGormLogger(debug bool) (*bytes.Buffer, logger.Interface) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	cfg := &config.Config{}
	cfg.Env.Debug = debug
	cfg.Database.SlowQueryThreshold = 200 * time.Millisecond

	return &buf, newGormSlogLogger(base, cfg)
}

func sqlFn() (string, int64) {
	return "SELECT 1", 1
}

func TestGormSlogLogger_Trace(t *testing.T) {
	t.Run("failed query is logged", func(t *testing.T) {
		buf, l := newBufferedGormLogger(false)
		l.Trace(context.Background(), time.Now(), sqlFn, assert.AnError)
		assert.Contains(t, buf.String(), "GORM query failed")
	})

	t.Run("record not found is silent", func(t *testing.T) {
		buf, l := newBufferedGormLogger(false)
		l.Trace(context.Background(), time.Now(), sqlFn, gorm.ErrRecordNotFound)
		assert.Empty(t, buf.String())
	})

	t.Run("unique violation is silent", func(t *testing.T) {
		buf, l := newBufferedGormLogger(false)
		l.Trace(context.Background(), time.Now(), sqlFn, &pgconn.PgError{Code: "23505"})
		assert.Empty(t, buf.String())
	})

	t.Run("slow query warns", func(t *testing.T) {
		buf, l := newBufferedGormLogger(false)
		l.Trace(context.Background(), time.Now().Add(-time.Second), sqlFn, nil)
		assert.Contains(t, buf.String(), "GORM slow query")
	})

	t.Run("fast query only in debug", func(t *testing.T) {
		buf, l := newBufferedGormLogger(false)
		l.Trace(context.Background(), time.Now(), sqlFn, nil)
		assert.Empty(t, buf.String())

		buf, l = newBufferedGormLogger(true)
		l.Trace(context.Background(), time.Now(), sqlFn, nil)
		assert.Contains(t, buf.String(), "GORM query")
	})

	t.Run("slow query logging can be disabled", func(t *testing.T) {
		var buf bytes.Buffer
		cfg := &config.Config{}
		l := newGormSlogLogger(slog.New(slog.NewTextHandler(&buf, nil)), cfg)

		l.Trace(context.Background(), time.Now().Add(-time.Hour), sqlFn, nil)
		assert.Empty(t, buf.String())
	})

	t.Run("silent mode drops failures", func(t *testing.T) {
		buf, l := newBufferedGormLogger(true)
		l.LogMode(logger.Silent).Trace(context.Background(), time.Now(), sqlFn, assert.AnError)
		assert.Empty(t, buf.String())
	})

	t.Run("uses request logger from context", func(t *testing.T) {
		_, l := newBufferedGormLogger(false)

		var reqBuf bytes.Buffer
		reqLogger := slog.New(slog.NewTextHandler(&reqBuf, nil)).With(slog.String("request_id", "req-1"))
		ctx := deliverycontext.WithLogger(context.Background(), reqLogger)

		l.Trace(ctx, time.Now(), sqlFn, assert.AnError)
		assert.Contains(t, reqBuf.String(), "request_id=req-1")
	})
}

func TestGormSlogLogger_Printf(t *testing.T) {
	buf, l := newBufferedGormLogger(false)

	l.Info(context.Background(), "hidden %d", 1)
	assert.Empty(t, buf.String())

	l.Warn(context.Background(), "replica %s lagging", "r1")
	assert.Contains(t, buf.String(), "GORM WARN")
	assert.Contains(t, buf.String(), "replica r1 lagging")
}
