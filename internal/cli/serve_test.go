package cli_test

import (
	"bytes"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/flatdb/internal/cli"
)

// syncBuffer is a bytes.Buffer safe for the server goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}

func Test_Serve_Bootstraps_And_Answers_Until_Signal(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	sigCh := make(chan os.Signal, 1)
	done := make(chan int, 1)

	var stdout, stderr syncBuffer

	go func() {
		args := []string{"flatdb", "--cwd", dir, "serve", "--listen", "127.0.0.1:0"}
		done <- cli.Run(nil, &stdout, &stderr, args, map[string]string{}, sigCh)
	}()

	var addr string

	require.Eventually(t, func() bool {
		after, ok := strings.CutPrefix(stdout.String(), "listening on ")
		if !ok {
			return false
		}

		addr = strings.TrimSpace(after)

		return true
	}, 5*time.Second, 10*time.Millisecond, "stderr: %s", stderr.String())

	assert.FileExists(t, filepath.Join(dir, "flatdb.json"))
	assert.DirExists(t, filepath.Join(dir, "databases"))

	resp, err := http.Get("http://" + addr + "/list/db?username=&password=")
	require.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"200 OK","response":{"database":[]}}`, string(body))

	sigCh <- os.Interrupt

	select {
	case code := <-done:
		assert.Equal(t, 0, code, "stderr: %s", stderr.String())
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not stop after signal")
	}

	assert.Contains(t, stderr.String(), "no credentials configured")
}

func Test_Serve_Fails_When_PortInvalid(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stderr := c.MustFail("serve", "--port", "70000")

	cli.AssertContains(t, stderr, "port must be between 1 and 65535")
}
