// Package testhelpers provides helpers for integration tests.
package testhelpers

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	tc "github.com/testcontainers/testcontainers-go"
	tcmssql "github.com/testcontainers/testcontainers-go/modules/mssql"
	tcmysql "github.com/testcontainers/testcontainers-go/modules/mysql"
	tcpsql "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Seed creates the "entries" table used by every integration test. It is
// valid in postgres, mysql and sqlserver.
const Seed = `
CREATE TABLE entries (
	id VARCHAR(64) PRIMARY KEY,
	title VARCHAR(255),
	score DOUBLE PRECISION,
	tags TEXT
);
INSERT INTO entries (id, title, score, tags) VALUES
	('a', 'Alpha', 1.5, '["x","y"]'),
	('b', 'Beta', NULL, NULL),
	('c', 'Gamma', 3, NULL);
`

// GetContainerProvider returns the container provider type to use for the tests.
// If we detect podman is available, we use it, otherwise we use docker.
func GetContainerProvider() tc.ProviderType {
	if _, err := exec.LookPath("podman"); err == nil {
		fmt.Println("Podman detected. Remember to set TESTCONTAINERS_RYUK_CONTAINER_PRIVILEGED=true;")
		return tc.ProviderPodman
	}
	return tc.ProviderDocker
}

// NewPostgresContainer starts postgres and returns it with its connection url.
func NewPostgresContainer(ctx context.Context) (*tcpsql.PostgresContainer, string, error) {
	ctr, err := tcpsql.Run(
		ctx,
		"postgres:16-alpine",
		tcpsql.BasicWaitStrategies(),
		tc.CustomizeRequest(tc.GenericContainerRequest{
			ProviderType: GetContainerProvider(),
		}),
		tcpsql.WithDatabase("dev"),
	)
	if err != nil {
		return nil, "", err
	}

	connURL, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, "", err
	}

	return ctr, connURL, nil
}

// NewMySQLContainer starts mysql and returns it with its connection url.
func NewMySQLContainer(ctx context.Context) (*tcmysql.MySQLContainer, string, error) {
	ctr, err := tcmysql.Run(
		ctx,
		"mysql:9.2.0",
		tc.CustomizeRequest(tc.GenericContainerRequest{
			ProviderType: GetContainerProvider(),
		}),
		tcmysql.WithDatabase("dev"),
		tcmysql.WithPassword("password"),
		tcmysql.WithUsername("root"),
	)
	if err != nil {
		return nil, "", err
	}

	connURL, err := ctr.ConnectionString(ctx, "multiStatements=true")
	if err != nil {
		return nil, "", err
	}

	return ctr, connURL, nil
}

// NewRedisContainer starts redis and returns it with its connection url.
func NewRedisContainer(ctx context.Context) (tc.Container, string, error) {
	ctr, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ProviderType: GetContainerProvider(),
		ContainerRequest: tc.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		return nil, "", err
	}

	endpoint, err := ctr.PortEndpoint(ctx, "6379/tcp", "redis")
	if err != nil {
		return nil, "", err
	}

	return ctr, endpoint + "/0", nil
}

// NewSQLServerContainer starts sqlserver and returns it with its connection url.
func NewSQLServerContainer(ctx context.Context) (*tcmssql.MSSQLServerContainer, string, error) {
	ctr, err := tcmssql.Run(
		ctx,
		"mcr.microsoft.com/mssql/server:2022-CU17-ubuntu-22.04",
		tcmssql.WithAcceptEULA(), // ok for testing purposes
		tcmssql.WithPassword("H3ll0@W0rld"),
		tc.CustomizeRequest(tc.GenericContainerRequest{
			ProviderType: GetContainerProvider(),
		}),
	)
	if err != nil {
		return nil, "", err
	}

	connURL, err := ctr.ConnectionString(ctx, "encrypt=false", "TrustServerCertificate=true")
	if err != nil {
		return nil, "", err
	}

	return ctr, connURL, nil
}

// NewMongoContainer starts mongo and returns it with a connection url
// pointing to the "dev" database.
func NewMongoContainer(ctx context.Context) (tc.Container, string, error) {
	ctr, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ProviderType: GetContainerProvider(),
		ContainerRequest: tc.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForLog("Waiting for connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		return nil, "", err
	}

	endpoint, err := ctr.PortEndpoint(ctx, "27017/tcp", "mongodb")
	if err != nil {
		return nil, "", err
	}

	return ctr, endpoint + "/dev", nil
}
