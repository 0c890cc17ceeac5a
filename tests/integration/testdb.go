// Package integration runs the marketplace against real PostgreSQL and Redis
// instances started with testcontainers.
package integration

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/coderr/backend/internal/infrastructure/config"
	"github.com/coderr/backend/internal/infrastructure/migration"
	"github.com/coderr/backend/internal/infrastructure/persistence"
	"github.com/coderr/backend/migrations"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"
)

const (
	postgresImage = "postgres:16-alpine"
	testDBName    = "coderr_test"
	testDBUser    = "postgres"
	testDBPass    = "admin123"
)

var (
	// Shared container for all tests in the package
	sharedContainer   *tcpostgres.PostgresContainer
	sharedContainerMu sync.Mutex
	sharedDBConfig    config.DatabaseConfig
)

// TestDB is a migrated database and the container behind it
type TestDB struct {
	*persistence.Database
	Config    config.DatabaseConfig
	Container *tcpostgres.PostgresContainer
	t         *testing.T
}

// NewTestDB starts a dedicated PostgreSQL container and applies the
// embedded migrations. Use it for tests that change the schema.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()
	skipIfShort(t)

	container, cfg := startPostgres(t)
	tdb := &TestDB{
		Database:  connect(t, cfg),
		Config:    cfg,
		Container: container,
		t:         t,
	}
	t.Cleanup(tdb.Close)
	return tdb
}

// NewSharedTestDB returns a connection to the package-wide container, migrated
// once and truncated before every test.
func NewSharedTestDB(t *testing.T) *TestDB {
	t.Helper()
	skipIfShort(t)

	sharedContainerMu.Lock()
	defer sharedContainerMu.Unlock()

	if sharedContainer == nil {
		container, cfg := startPostgres(t)
		db := connect(t, cfg)
		Migrate(t, db)
		_ = db.Close()

		sharedContainer = container
		sharedDBConfig = cfg
	}

	tdb := &TestDB{
		Database:  connect(t, sharedDBConfig),
		Config:    sharedDBConfig,
		Container: sharedContainer,
		t:         t,
	}
	tdb.CleanTables()
	t.Cleanup(func() {
		_ = tdb.Database.Close()
	})
	return tdb
}

// Migrate applies every embedded migration
func Migrate(t *testing.T, db *persistence.Database) {
	t.Helper()

	sqlDB, err := db.DB.DB()
	require.NoError(t, err)
	m, err := migration.New(sqlDB, migration.Source{FS: migrations.FS}, zap.NewNop())
	require.NoError(t, err, "Failed to create migrator")
	require.NoError(t, m.Up(), "Failed to run migrations")
}

// Close closes the connection and terminates a dedicated container
func (tdb *TestDB) Close() {
	_ = tdb.Database.Close()

	if tdb.Container != nil && tdb.Container != sharedContainer {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := tdb.Container.Terminate(ctx); err != nil {
			tdb.t.Logf("Warning: Failed to terminate container: %v", err)
		}
	}
}

// CleanTables truncates every table except the migration bookkeeping
func (tdb *TestDB) CleanTables() {
	tdb.t.Helper()

	var tables []string
	err := tdb.DB.Raw(`
		SELECT tablename FROM pg_tables
		WHERE schemaname = 'public'
		AND tablename != 'schema_migrations'
	`).Scan(&tables).Error
	require.NoError(tdb.t, err, "Failed to get table names")

	for _, table := range tables {
		err := tdb.DB.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error
		require.NoError(tdb.t, err, "Failed to truncate %s", table)
	}
}

// CleanupSharedContainer terminates the shared container. Call it from TestMain.
func CleanupSharedContainer() {
	sharedContainerMu.Lock()
	defer sharedContainerMu.Unlock()

	if sharedContainer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = sharedContainer.Terminate(ctx)
		sharedContainer = nil
	}
}

func startPostgres(t *testing.T) (*tcpostgres.PostgresContainer, config.DatabaseConfig) {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		postgresImage,
		tcpostgres.WithDatabase(testDBName),
		tcpostgres.WithUsername(testDBUser),
		tcpostgres.WithPassword(testDBPass),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)
	portNum, err := strconv.Atoi(port.Port())
	require.NoError(t, err)

	return container, config.DatabaseConfig{
		Driver:          config.DriverPostgres,
		Host:            host,
		Port:            portNum,
		User:            testDBUser,
		Password:        testDBPass,
		DBName:          testDBName,
		SSLMode:         "disable",
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: 5,
		ConnMaxIdleTime: 5,
	}
}

func connect(t *testing.T, cfg config.DatabaseConfig) *persistence.Database {
	t.Helper()

	level := logger.Silent
	if os.Getenv("TEST_DB_DEBUG") != "" {
		level = logger.Info
	}
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg, logger.Default.LogMode(level))
	require.NoError(t, err, "Failed to connect to database")
	return db
}

func skipIfShort(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
}
