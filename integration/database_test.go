//go:build database

package integration

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestRobotSamplerWithMySQL tests the CLI with a MySQL backend.
func TestRobotSamplerWithMySQL(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306:3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "robotsampler",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(30 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/robotsampler?parseTime=true", host, port.Port())
	setBackendEnv(t, "mysql", connStr)

	runLifecycle(t)
}

// TestRobotSamplerWithPostgres tests the CLI with a PostgreSQL backend.
func TestRobotSamplerWithPostgres(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432:5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithStartupTimeout(30 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()
	time.Sleep(5 * time.Second)

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres", host, port.Port())
	setBackendEnv(t, "postgresql", connStr)

	runLifecycle(t)
}

// setBackendEnv points both the result cache and the run store at one database.
func setBackendEnv(t *testing.T, backend, connStr string) {
	t.Helper()
	env := map[string]string{
		"ROBOTSAMPLER_CACHE_BACKEND":    backend,
		"ROBOTSAMPLER_CACHE_DB_CONNECT": connStr,
		"ROBOTSAMPLER_STORE_BACKEND":    backend,
		"ROBOTSAMPLER_STORE_DB_CONNECT": connStr,
	}
	for k, v := range env {
		_ = os.Setenv(k, v)
		t.Cleanup(func() { _ = os.Unsetenv(k) })
	}
}

func runLifecycle(t *testing.T) {
	t.Helper()
	steps := [][]string{
		{"cache", "clear"},
		{"store", "clear"},
		{"store", "migrate"},
		{"run", "--sims", "1000"},
		{"sweep", "--sims", "500", "--horizons", "7,14", "--occupancies", "0.1", "--detections", "0.1"},
		{"run", "--sims", "1000"},
		{"cache", "status"},
		{"store", "status"},
	}
	for _, args := range steps {
		_, err := runCommand(t, args...)
		require.NoError(t, err, "robotsampler %v", args)
	}
}
