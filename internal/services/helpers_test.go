package services

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/example/agrolink/internal/database"
)

// newTestDB opens an isolated in-memory database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	return db
}

// fakeSMS records outgoing messages instead of dispatching them.
type fakeSMS struct {
	sent []sentMessage
	fail bool
}

type sentMessage struct {
	to   string
	body string
}

func (f *fakeSMS) Send(phoneNumber, message string) error {
	if f.fail {
		return errors.New("gateway unavailable")
	}
	f.sent = append(f.sent, sentMessage{to: phoneNumber, body: message})
	return nil
}
