package solr

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"sir/pkg/logger"
)

// Core is a handle to a single Solr core, scoped to <base>/<name>.
type Core struct {
	Name   string
	URI    string
	client *http.Client
}

// CoreURI joins the base URI and core name.
func CoreURI(base, core string) string {
	return strings.TrimRight(base, "/") + "/" + core
}

// Connect pings <base>/<core>/admin/ping and returns a handle for the core.
// Any 2xx ping response counts as alive.
func Connect(ctx context.Context, client *http.Client, base, core string) (*Core, error) {
	return ConnectWithLogger(ctx, client, base, core, logger.Default)
}

// ConnectWithLogger is Connect with an explicit logger.
func ConnectWithLogger(ctx context.Context, client *http.Client, base, core string, log logger.Logger) (*Core, error) {
	if client == nil {
		client = http.DefaultClient
	}
	c := &Core{Name: core, URI: CoreURI(base, core), client: client}
	pingURI := c.URI + "/admin/ping"
	log.Debug("pinging %s", pingURI)
	if _, err := get(ctx, client, pingURI); err != nil {
		return nil, err
	}
	log.Debug("connected to solr core at %s", c.URI)
	return c, nil
}

// Bind returns a handle without pinging.
func Bind(client *http.Client, base, core string) *Core {
	if client == nil {
		client = http.DefaultClient
	}
	return &Core{Name: core, URI: CoreURI(base, core), client: client}
}

var errNoVersion = errors.New(`response has no numeric "version" field`)

// SchemaVersion fetches <core>/schema/version and returns its "version" field.
func (c *Core) SchemaVersion(ctx context.Context) (float64, error) {
	uri := c.URI + "/schema/version"
	var body struct {
		Version *float64 `json:"version"`
	}
	if err := getJSON(ctx, c.client, uri, &body); err != nil {
		return 0, err
	}
	if body.Version == nil {
		return 0, &TransportError{URI: uri, Err: errNoVersion}
	}
	return *body.Version, nil
}
