package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Signature formats accepted by gpg.format
const (
	FormatOpenPGP = "openpgp"
	FormatX509    = "x509"
	FormatSSH     = "ssh"
)

// SigningConfig is the signing related subset of git configuration
type SigningConfig struct {
	// Enabled mirrors commit.gpgsign
	Enabled bool
	// Format is one of FormatOpenPGP, FormatX509 or FormatSSH
	Format string
	// Program is the signing binary for Format
	Program string
	// Key is user.signingkey, possibly empty
	Key string
	// DefaultKeyCommand is gpg.ssh.defaultKeyCommand, possibly empty
	DefaultKeyCommand string
}

// GetSigningConfig reads the signing configuration
func GetSigningConfig(r Reader) (*SigningConfig, error) {
	enabled, err := GetBool(r, "commit.gpgsign", false)
	if err != nil {
		return nil, err
	}

	cfg := &SigningConfig{
		Enabled:           enabled,
		Format:            strings.ToLower(GetString(r, "gpg.format", FormatOpenPGP)),
		Key:               GetString(r, "user.signingkey", ""),
		DefaultKeyCommand: GetString(r, "gpg.ssh.defaultKeyCommand", ""),
	}

	switch cfg.Format {
	case FormatOpenPGP:
		cfg.Program = GetString(r, "gpg.openpgp.program", GetString(r, "gpg.program", "gpg"))
	case FormatX509:
		cfg.Program = GetString(r, "gpg.x509.program", "gpgsm")
	case FormatSSH:
		cfg.Program = GetString(r, "gpg.ssh.program", "ssh-keygen")
	default:
		return nil, fmt.Errorf("invalid value for gpg.format: %s", cfg.Format)
	}

	return cfg, nil
}

// ExpandHome replaces a leading "~/" with the user's home directory
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
