package signing

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kballard/go-shellquote"
	"golang.org/x/crypto/ssh"

	"stackit.dev/gitrewrite/internal/config"
	rwerrors "stackit.dev/gitrewrite/internal/errors"
	"stackit.dev/gitrewrite/internal/identity"
)

// SSHSigner signs with `ssh-keygen -Y sign`
type SSHSigner struct {
	Program string
	// Key is a path to a key file, or a literal public key ("key::..." or
	// "ssh-...") whose private half is held by an agent
	Key string
}

// Sign implements Signer
func (s *SSHSigner) Sign(ctx context.Context, buffer []byte, _ identity.Identity) ([]byte, error) {
	if s.Key == "" {
		return nil, rwerrors.NewNoKeyError("user.signingkey needs to be set for ssh signing")
	}

	dir, err := os.MkdirTemp("", "git-rewrite-sign-*")
	if err != nil {
		return nil, rwerrors.NewSignBackendError(s.Program, "failed writing buffer", err)
	}
	defer os.RemoveAll(dir)

	keyFile := config.ExpandHome(s.Key)
	if literal := literalKey(s.Key); literal != "" {
		keyFile = filepath.Join(dir, "key.pub")
		if err := os.WriteFile(keyFile, []byte(literal), 0600); err != nil {
			return nil, rwerrors.NewSignBackendError(s.Program, "failed writing ssh signing key", err)
		}
	}

	bufferFile := filepath.Join(dir, "buffer")
	if err := os.WriteFile(bufferFile, buffer, 0600); err != nil {
		return nil, rwerrors.NewSignBackendError(s.Program, "failed writing buffer", err)
	}

	_, stderr, err := pipeCommand(ctx, s.Program, []string{"-Y", "sign", "-n", "git", "-f", keyFile, bufferFile}, buffer)
	if err != nil {
		if strings.Contains(string(stderr), "usage:") {
			return nil, rwerrors.NewSignBackendError(s.Program,
				"ssh-keygen -Y sign is needed for ssh signing (available in openssh version 8.2p1+)", err)
		}
		return nil, rwerrors.NewSignBackendError(s.Program, "failed to sign the data: "+strings.TrimSpace(string(stderr)), err)
	}

	sigFile := bufferFile + ".sig"
	raw, err := os.ReadFile(sigFile)
	if err != nil {
		return nil, rwerrors.NewSignBackendError(s.Program, fmt.Sprintf("failed reading ssh signature from %s", sigFile), err)
	}
	sig := normalizeLineEndings(raw)
	if len(sig) == 0 {
		return nil, rwerrors.NewSignBackendError(s.Program, "empty signature", nil)
	}
	return sig, nil
}

// literalKey returns the public key text when signingKey is a literal key
// rather than a path
func literalKey(signingKey string) string {
	if literal, ok := strings.CutPrefix(signingKey, "key::"); ok {
		return literal
	}
	if strings.HasPrefix(signingKey, "ssh-") {
		return signingKey
	}
	return ""
}

// DefaultSSHKey runs gpg.ssh.defaultKeyCommand and returns the first key it
// prints, or "" when the command fails or prints no usable public key. A
// command that cannot be parsed is a configuration error.
func DefaultSSHKey(ctx context.Context, command string) (string, error) {
	if strings.TrimSpace(command) == "" {
		return "", nil
	}
	args, err := shellquote.Split(command)
	if err != nil || len(args) == 0 {
		return "", fmt.Errorf("malformed gpg.ssh.defaultKeyCommand: %s", command)
	}

	stdout, _, err := pipeCommand(ctx, args[0], args[1:], nil)
	if err != nil {
		return "", nil
	}

	line, _, _ := strings.Cut(string(stdout), "\n")
	line = strings.TrimSpace(line)
	literal := literalKey(line)
	if literal == "" {
		return "", nil
	}
	if _, _, _, _, err := ssh.ParseAuthorizedKey([]byte(literal)); err != nil {
		return "", nil
	}
	return line, nil
}
