package planner

import (
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"
)

// MaxInputFileSize caps syllabus and reference uploads.
const MaxInputFileSize = 1 << 20

var (
	// ErrInputTooLarge is returned for files over MaxInputFileSize.
	ErrInputTooLarge = errors.New("input file exceeds 1 MiB")

	// ErrNotText is returned for files that are not valid UTF-8 text.
	ErrNotText = errors.New("input file is not plain text")
)

// ReadInputFile reads a syllabus or reference file as text.
func ReadInputFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxInputFileSize+1))
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	if len(data) > MaxInputFileSize {
		return "", ErrInputTooLarge
	}
	if !utf8.Valid(data) {
		return "", ErrNotText
	}
	return string(data), nil
}
