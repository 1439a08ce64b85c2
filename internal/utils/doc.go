// Package utils provides small helpers shared by the commands: terminal
// detection, standard input and commit message cleanup.
package utils
