// Package testutil содержит помощники для тестов CLI.
package testutil

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// CaptureStdout перехватывает os.Stdout на время fn и возвращает записанное.
func CaptureStdout(t *testing.T, fn func()) string {
	t.Helper()
	return capture(t, &os.Stdout, fn)
}

// CaptureStderr перехватывает os.Stderr на время fn и возвращает записанное.
// Логгер с output=stderr нужно создавать внутри fn.
func CaptureStderr(t *testing.T, fn func()) string {
	t.Helper()
	return capture(t, &os.Stderr, fn)
}

// capture читает pipe параллельно с fn, поэтому объём вывода не ограничен буфером pipe.
func capture(t *testing.T, target **os.File, fn func()) string {
	t.Helper()

	r, w, err := os.Pipe()
	require.NoError(t, err, "не удалось создать pipe")

	done := make(chan string, 1)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		_ = r.Close()
		done <- buf.String()
	}()

	orig := *target
	*target = w
	func() {
		defer func() {
			*target = orig
			_ = w.Close()
		}()
		fn()
	}()

	return <-done
}
