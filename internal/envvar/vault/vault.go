// Package vault implements the secret provider on HashiCorp Vault's KV v2
// engine.
package vault

import (
	"fmt"
	"path"
	"strings"

	"github.com/hashicorp/vault/api"

	"github.com/courseflow/board/internal"
)

// Provider reads secrets from Vault.
type Provider struct {
	client *api.Client
	path   string
}

// New instantiates the provider, authenticating with the received token.
func New(token, addr, mountPath string) (*Provider, error) {
	config := api.DefaultConfig()
	config.Address = addr

	client, err := api.NewClient(config)
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "api.NewClient")
	}

	client.SetToken(token)

	return &Provider{
		client: client,
		path:   mountPath,
	}, nil
}

// Get reads the secret at "dir" and returns its "base" field, where dir and
// base are the received value split on its last separator.
func (p *Provider) Get(v string) (string, error) {
	dir, key := path.Split(v)

	target := fmt.Sprintf("%s/data/%s", p.path, strings.TrimSuffix(dir, "/"))

	secret, err := p.client.Logical().Read(target)
	if err != nil {
		return "", internal.WrapErrorf(err, internal.ErrorCodeUnknown, "client.Logical().Read")
	}

	if secret == nil {
		return "", internal.NewErrorf(internal.ErrorCodeNotFound, "secret %q not found", target)
	}

	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return "", internal.NewErrorf(internal.ErrorCodeUnknown, "secret %q has no data", target)
	}

	res, ok := data[key].(string)
	if !ok {
		return "", internal.NewErrorf(internal.ErrorCodeNotFound, "key %q not found in %q", key, target)
	}

	return res, nil
}
