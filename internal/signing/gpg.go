package signing

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp/armor"

	"stackit.dev/gitrewrite/internal/config"
	rwerrors "stackit.dev/gitrewrite/internal/errors"
	"stackit.dev/gitrewrite/internal/identity"
)

const pgpSignatureBlock = "PGP SIGNATURE"

// GPGSigner signs with gpg, or gpgsm for the x509 format
type GPGSigner struct {
	Program string
	// Key selects the signing key; the identity's email when empty
	Key string
	// Format is config.FormatOpenPGP or config.FormatX509
	Format string
}

// Sign implements Signer
func (s *GPGSigner) Sign(ctx context.Context, buffer []byte, id identity.Identity) ([]byte, error) {
	key := s.Key
	if key == "" {
		key = id.Email
	}
	if key == "" {
		return nil, rwerrors.NewNoKeyError("no user.signingkey and no committer email to select a key")
	}

	stdout, stderr, err := pipeCommand(ctx, s.Program, []string{"--status-fd=2", "-bsau", key}, buffer)
	if err != nil {
		return nil, rwerrors.NewSignBackendError(s.Program, "failed to sign the data: "+strings.TrimSpace(string(stderr)), err)
	}
	if !hasStatus(stderr, "SIG_CREATED") {
		return nil, rwerrors.NewSignBackendError(s.Program, "failed to sign the data: no SIG_CREATED status", nil)
	}

	sig := normalizeLineEndings(stdout)
	if len(sig) == 0 {
		return nil, rwerrors.NewSignBackendError(s.Program, "empty signature", nil)
	}
	if s.Format != config.FormatX509 {
		if err := checkArmor(sig); err != nil {
			return nil, rwerrors.NewSignBackendError(s.Program, "malformed signature", err)
		}
	}
	return sig, nil
}

// hasStatus looks for a "[GNUPG:] <keyword> " line in --status-fd output
func hasStatus(stderr []byte, keyword string) bool {
	scanner := bufio.NewScanner(bytes.NewReader(stderr))
	for scanner.Scan() {
		if strings.HasPrefix(scanner.Text(), "[GNUPG:] "+keyword+" ") {
			return true
		}
	}
	return false
}

func checkArmor(sig []byte) error {
	block, err := armor.Decode(bytes.NewReader(sig))
	if err != nil {
		return err
	}
	if block.Type != pgpSignatureBlock {
		return &armorTypeError{got: block.Type}
	}
	_, err = io.Copy(io.Discard, block.Body)
	return err
}

type armorTypeError struct {
	got string
}

func (e *armorTypeError) Error() string {
	return "expected " + pgpSignatureBlock + " armor, got " + e.got
}
