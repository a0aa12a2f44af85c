package testhelper

import (
	"context"
	"fmt"
	"testing"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// NewPostgresURL starts a PostgreSQL container and returns its connection string.
// It skips t when Docker is unavailable.
func NewPostgresURL(t *testing.T) string {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        "postgres:17-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "eraser",
			"POSTGRES_PASSWORD": "eraser",
			"POSTGRES_DB":       "app",
		},
		// the server restarts once after the init scripts
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	}
	postgresC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("failed to create PostgreSQL container: %v", err)
	}

	t.Cleanup(func() {
		if err := postgresC.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	})

	endpoint, err := postgresC.PortEndpoint(ctx, nat.Port("5432/tcp"), "")
	if err != nil {
		t.Skipf("failed to get PostgreSQL container endpoint: %v", err)
	}

	return fmt.Sprintf("postgres://eraser:eraser@%s/app?sslmode=disable", endpoint)
}
