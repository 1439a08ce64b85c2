package signing

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
)

// pipeCommand runs name with args, feeding stdin when non-nil, and returns
// what the process wrote
func pipeCommand(ctx context.Context, name string, args []string, stdin []byte) (stdout, stderr []byte, err error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}
	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	err = cmd.Run()
	return outBuf.Bytes(), errBuf.Bytes(), err
}

// normalizeLineEndings strips carriage returns and terminates every line
// with a single newline
func normalizeLineEndings(sig []byte) []byte {
	text := strings.ReplaceAll(string(sig), "\r\n", "\n")
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return nil
	}
	return []byte(text + "\n")
}
