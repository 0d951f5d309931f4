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

func TestOperationFromSQL(t *testing.T) {
	assert.Equal(t, "SELECT", operationFromSQL("select * from folios"))
	assert.Equal(t, "INSERT", operationFromSQL(" WITH x AS (select 1) INSERT INTO t"))
	assert.Equal(t, "UPDATE", operationFromSQL("WITH due AS (SELECT id FROM guest_invoices WHERE amount_due > 0) UPDATE guest_invoices SET status = 'final'"))
	assert.Equal(t, "DELETE", operationFromSQL("with a as (select 1), b as (select (2)) delete from folio_charges"))
	assert.Equal(t, "INSERT", operationFromSQL(`INSERT INTO folio_charges (description) VALUES ('select (')`))
	assert.Equal(t, "SELECT", operationFromSQL("SELECT update_count FROM stats"))
	assert.Equal(t, "UNKNOWN", operationFromSQL("CREATE TABLE folios (id bigint)"))
	assert.Equal(t, "UNKNOWN", operationFromSQL(""))
}

func TestGormLoggerTrace(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewGormLogger(zap.New(core))

	query := func() (string, int64) { return "UPDATE guest_invoices SET status = ?", 1 }

	l.Trace(context.Background(), time.Now(), query, nil)
	assert.Equal(t, 0, logs.Len(), "fast queries are not logged at warn level")

	l.Trace(context.Background(), time.Now(), query, errors.New("boom"))
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.ErrorLevel, entry.Level)
	assert.Equal(t, "UPDATE", entry.ContextMap()["operation"])

	l.Trace(context.Background(), time.Now(), query, gormlogger.ErrRecordNotFound)
	assert.Equal(t, 1, logs.Len(), "record not found is ignored")

	l.LogMode(gormlogger.Info).Trace(context.Background(), time.Now(), query, nil)
	assert.Equal(t, 2, logs.Len())
}
