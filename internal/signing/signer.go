// Package signing produces detached signatures for commit objects.
//
// A Signer is passed per call; a nil Signer means the commit is not signed.
// FromConfig builds the signer git itself would use for the repository's
// configuration, or nil when commit.gpgsign is off.
package signing

import (
	"context"
	"fmt"

	"stackit.dev/gitrewrite/internal/config"
	rwerrors "stackit.dev/gitrewrite/internal/errors"
	"stackit.dev/gitrewrite/internal/identity"
)

// Signer signs the canonical serialization of a commit. Failures are
// *errors.SignError values.
type Signer interface {
	Sign(ctx context.Context, buffer []byte, id identity.Identity) ([]byte, error)
}

// SignerFunc adapts a function to the Signer interface
type SignerFunc func(ctx context.Context, buffer []byte, id identity.Identity) ([]byte, error)

// Sign implements Signer
func (f SignerFunc) Sign(ctx context.Context, buffer []byte, id identity.Identity) ([]byte, error) {
	return f(ctx, buffer, id)
}

// FromConfig returns the signer described by the configuration, or nil when
// commit.gpgsign is false or unset.
func FromConfig(ctx context.Context, r config.Reader) (Signer, error) {
	cfg, err := config.GetSigningConfig(r)
	if err != nil {
		return nil, err
	}
	if !cfg.Enabled {
		return nil, nil
	}
	return fromSigningConfig(ctx, cfg)
}

// Require returns the configured signer whatever commit.gpgsign says, for
// callers that were explicitly asked to sign.
func Require(ctx context.Context, r config.Reader) (Signer, error) {
	cfg, err := config.GetSigningConfig(r)
	if err != nil {
		return nil, err
	}
	return fromSigningConfig(ctx, cfg)
}

func fromSigningConfig(ctx context.Context, cfg *config.SigningConfig) (Signer, error) {
	switch cfg.Format {
	case config.FormatOpenPGP, config.FormatX509:
		return &GPGSigner{Program: cfg.Program, Key: cfg.Key, Format: cfg.Format}, nil
	case config.FormatSSH:
		key := cfg.Key
		if key == "" {
			var err error
			key, err = DefaultSSHKey(ctx, cfg.DefaultKeyCommand)
			if err != nil {
				return nil, err
			}
		}
		if key == "" {
			return nil, rwerrors.NewNoKeyError("either user.signingkey or gpg.ssh.defaultKeyCommand needs to be configured")
		}
		return &SSHSigner{Program: cfg.Program, Key: key}, nil
	}
	return nil, fmt.Errorf("invalid value for gpg.format: %s", cfg.Format)
}
