package source

import (
	"fmt"

	"alice-hq/hassil-parser/pkg/config"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
)

// gitAuth returns the transport authentication for cfg. Public
// repositories need none; private mirrors use a token as the HTTP basic
// auth password.
func gitAuth(cfg *config.GitAuthConfig) (transport.AuthMethod, error) {
	switch cfg.Type {
	case "none", "":
		return nil, nil
	case "token":
		if cfg.Token == "" {
			return nil, fmt.Errorf("token auth requires non-empty token")
		}
		return &http.BasicAuth{
			Username: "git", // any non-empty name works with tokens
			Password: cfg.Token,
		}, nil
	default:
		return nil, fmt.Errorf("unknown auth type: %s", cfg.Type)
	}
}
