package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testNowFlag = "2024-03-15T12:00:00Z"

// runCLI executes the root command with args against db and returns stdout.
func runCLI(t *testing.T, db string, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}

	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(append([]string{"--db", db, "--now", testNowFlag}, args...))

	err := cmd.Execute()
	return out.String(), err
}

func tempDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "polls.db")
}

// decodeData unwraps the "data" field of a JSON CLI response.
func decodeData(t *testing.T, out string, v any) {
	t.Helper()
	var resp struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp), "output: %s", out)
	require.Equal(t, "ok", resp.Status)
	require.NoError(t, json.Unmarshal(resp.Data, v))
}

// addQuestion creates a question through the CLI and returns its detail.
func addQuestion(t *testing.T, db, text, offset string, choices ...string) QuestionDetail {
	t.Helper()
	args := []string{"--format", "json", "question", "add", text, "--pub-offset", offset}
	for _, c := range choices {
		args = append(args, "--choice", c)
	}
	out, err := runCLI(t, db, args...)
	require.NoError(t, err)

	var detail QuestionDetail
	decodeData(t, out, &detail)
	return detail
}
