//go:build integration

// Package integration runs the connector against a real PostgreSQL database.
// It uses testcontainers to start the database and applies the embedded migrations.
package integration

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/shipkia/connector/internal/infrastructure/migration"
	"github.com/shipkia/connector/internal/infrastructure/persistence/models"
)

// TablePrefix is the site table prefix used by the integration tests
const TablePrefix = "wp_"

var (
	// Shared container for all tests in the package
	sharedContainer    testcontainers.Container
	sharedContainerMu  sync.Mutex
	sharedContainerDSN string
)

// TestDB is a connection to the test database
type TestDB struct {
	DB        *gorm.DB
	SqlDB     *sql.DB
	Container testcontainers.Container
	DSN       string
	t         *testing.T
}

// NewTestDB returns a connection to the shared PostgreSQL container,
// starting it and applying the migrations on first use.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	sharedContainerMu.Lock()
	defer sharedContainerMu.Unlock()

	ctx := context.Background()

	if sharedContainer == nil {
		container, err := tcpostgres.Run(ctx,
			"postgres:16-alpine",
			tcpostgres.WithDatabase("shipkia_test"),
			tcpostgres.WithUsername("postgres"),
			tcpostgres.WithPassword("shipkia123"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second)),
		)
		require.NoError(t, err, "Failed to start PostgreSQL container")

		dsn, err := container.ConnectionString(ctx, "sslmode=disable")
		require.NoError(t, err, "Failed to get connection string")

		sharedContainer = container
		sharedContainerDSN = dsn

		_, sqlDB := connectToDatabase(t, dsn)
		runMigrations(t, sqlDB)
		sqlDB.Close()
	}

	db, sqlDB := connectToDatabase(t, sharedContainerDSN)

	testDB := &TestDB{
		DB:        db,
		SqlDB:     sqlDB,
		Container: sharedContainer,
		DSN:       sharedContainerDSN,
		t:         t,
	}
	t.Cleanup(func() {
		testDB.SqlDB.Close()
	})

	return testDB
}

// Reset empties the order meta and keys tables and restores the seeded options
func (tdb *TestDB) Reset() {
	tdb.t.Helper()

	for _, stmt := range []string{
		"TRUNCATE TABLE order_meta",
		fmt.Sprintf("DROP TABLE IF EXISTS %s", models.WooCommerceAPIKeysTable(TablePrefix)),
		`DELETE FROM options WHERE option_name NOT IN
			('shipkia_app_url', 'shipkia_tracking_enabled', 'shipkia_tracking_button_text', 'shipkia_tracking_new_tab')`,
		`UPDATE options SET option_value = CASE option_name
			WHEN 'shipkia_app_url' THEN 'https://app.shipkia.com'
			WHEN 'shipkia_tracking_button_text' THEN 'Track'
			ELSE 'yes' END`,
	} {
		require.NoError(tdb.t, tdb.DB.Exec(stmt).Error, "Failed to reset: %s", stmt)
	}
}

// CreateAPIKeysTable creates the WooCommerce REST API keys table with the given
// permissions and secrets, one row each, in key id order
func (tdb *TestDB) CreateAPIKeysTable(keys ...models.WooCommerceAPIKeyModel) {
	tdb.t.Helper()

	table := models.WooCommerceAPIKeysTable(TablePrefix)
	err := tdb.DB.Exec(fmt.Sprintf(`CREATE TABLE %s (
		key_id          BIGSERIAL PRIMARY KEY,
		user_id         BIGINT NOT NULL DEFAULT 1,
		description     VARCHAR(200),
		permissions     VARCHAR(10) NOT NULL,
		consumer_key    VARCHAR(64) NOT NULL DEFAULT '',
		consumer_secret VARCHAR(43) NOT NULL
	)`, table)).Error
	require.NoError(tdb.t, err, "Failed to create keys table")

	for _, key := range keys {
		err := tdb.DB.Table(table).Select("permissions", "consumer_secret").Create(&key).Error
		require.NoError(tdb.t, err, "Failed to insert key")
	}
}

// connectToDatabase establishes a GORM connection to the database
func connectToDatabase(t *testing.T, dsn string) (*gorm.DB, *sql.DB) {
	t.Helper()

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}
	if os.Getenv("TEST_DB_DEBUG") != "" {
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(gormpostgres.Open(dsn), gormConfig)
	require.NoError(t, err, "Failed to connect to database")

	sqlDB, err := db.DB()
	require.NoError(t, err, "Failed to get underlying SQL DB")

	sqlDB.SetMaxOpenConns(5)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	return db, sqlDB
}

// runMigrations applies the migrations embedded in the binary
func runMigrations(t *testing.T, sqlDB *sql.DB) {
	t.Helper()

	m, err := migration.New(sqlDB, zap.NewNop())
	require.NoError(t, err, "Failed to create migrator")
	require.NoError(t, m.Up(), "Failed to run migrations")
}

// CleanupSharedContainer terminates the shared container.
// It is called from TestMain.
func CleanupSharedContainer() {
	sharedContainerMu.Lock()
	defer sharedContainerMu.Unlock()

	if sharedContainer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = sharedContainer.Terminate(ctx)
		sharedContainer = nil
		sharedContainerDSN = ""
	}
}
