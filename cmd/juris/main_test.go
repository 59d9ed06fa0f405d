package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/juris/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLogger(t *testing.T) {
	var buf bytes.Buffer
	for _, level := range []string{"debug", "INFO", "warn", "error"} {
		assert.NoError(t, setupLogger(level, &buf), level)
	}
	assert.Error(t, setupLogger("chatty", &buf))
}

func TestAsk_RequiresQuestion(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := newApp(&stdout, &stderr).Run([]string{"juris", "ask"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "question is required")
}

func TestLoad_RequiresFile(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := newApp(&stdout, &stderr).Run([]string{"juris", "load"})
	require.Error(t, err)
}

func TestLoad_BadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "juris.toml")
	require.NoError(t, os.WriteFile(path, []byte("log_level = \"chatty\"\n"), 0o600))

	var stdout, stderr bytes.Buffer
	err := newApp(&stdout, &stderr).Run([]string{"juris", "--config", path, "load", "--file", "-"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log_level")
}

func TestConsoleMonitor(t *testing.T) {
	var buf bytes.Buffer
	m := newConsoleMonitor(&buf)

	m.Start([]string{"article 1457", "art. 1457"})
	m.QueryFinished("article 1457", 4, 2, nil)
	m.QueryFinished("art. 1457", 0, 0, errors.New("timeout"))
	m.AfterMerge(3)
	m.BudgetReached(2, 3)
	m.Finish(&core.FusedContext{Text: "abc", Candidates: []core.Candidate{{ID: "1"}}})

	out := buf.String()
	assert.Contains(t, out, "2 requêtes")
	assert.Contains(t, out, " 1. article 1457")
	assert.Contains(t, out, `"article 1457": 4 résultats, 2 retenus`)
	assert.Contains(t, out, "timeout")
	assert.Contains(t, out, "3 passages uniques")
	assert.Contains(t, out, "2/3 passages")
	assert.Contains(t, out, "1 passages, 3 caractères")
}
