package utils

import (
	"io"
	"os"
)

// ReadFromStdin reads all content from in. A terminal or an empty regular
// file yields an empty string instead of blocking.
func ReadFromStdin(in io.Reader) (string, error) {
	if f, ok := in.(*os.File); ok {
		stat, err := f.Stat()
		if err != nil {
			return "", err
		}

		// If it's a terminal, we don't want to block waiting for input
		if (stat.Mode() & os.ModeCharDevice) != 0 {
			return "", nil
		}
		if stat.Mode().IsRegular() && stat.Size() == 0 {
			return "", nil
		}
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
