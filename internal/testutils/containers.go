//go:build integration

package testutils

import (
	"context"
	"fmt"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// NginxEnv is a containerized data store serving a static forecast tree.
type NginxEnv struct {
	Container testcontainers.Container
	BaseURL   string
}

// Close terminates the container.
func (e *NginxEnv) Close(ctx context.Context) error {
	if e.Container != nil {
		return e.Container.Terminate(ctx)
	}
	return nil
}

// StartNginxStore serves hostDir as the store root from an nginx container.
// hostDir must contain index.html files in the listing format (build them
// with ListingHTML), mirroring the real store's static index pages.
func StartNginxStore(t *testing.T, ctx context.Context, hostDir string) *NginxEnv {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image:        "nginx:alpine",
		ExposedPorts: []string{"80/tcp"},
		Files: []testcontainers.ContainerFile{
			{
				HostFilePath:      hostDir,
				ContainerFilePath: "/usr/share/nginx/html/forecasts",
				FileMode:          0o755,
			},
		},
		WaitingFor: wait.ForHTTP("/").WithPort("80"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("start nginx container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "80")
	if err != nil {
		t.Fatalf("get container port: %v", err)
	}

	return &NginxEnv{
		Container: container,
		BaseURL:   fmt.Sprintf("http://%s:%s/forecasts/", host, port.Port()),
	}
}
