package database

import (
	"context"
	"fmt"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TeardownFunc stop test database container
type TeardownFunc func(context.Context, ...testcontainers.TerminateOption) error

var testContainerDSN string

func startPostgresContainer(ctx context.Context) (*postgres.PostgresContainer, string, error) {
	var (
		dbName = "database"
		dbPwd  = "password"
		dbUser = "user"
	)

	dbContainer, err := postgres.Run(
		ctx,
		"postgres:16-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPwd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		return nil, "", err
	}

	dbHost, err := dbContainer.Host(ctx)
	if err != nil {
		return dbContainer, "", err
	}

	dbPort, err := dbContainer.MappedPort(ctx, nat.Port("5432/tcp"))
	if err != nil {
		return dbContainer, "", err
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		dbHost, dbPort.Port(), dbUser, dbPwd, dbName)
	return dbContainer, dsn, nil
}

// StartTestDB starts an empty PostgreSQL container. The connection string is kept
// for TestDSN so tests can open their own instance.
func StartTestDB() (TeardownFunc, error) {
	dbContainer, dsn, err := startPostgresContainer(context.Background())
	if err != nil {
		if dbContainer != nil {
			return dbContainer.Terminate, err
		}
		return nil, err
	}

	testContainerDSN = dsn
	return dbContainer.Terminate, nil
}

// TestDSN return connection string of container started by StartTestDB
func TestDSN() string {
	return testContainerDSN
}

func ptr[T any](v T) *T { return &v }
