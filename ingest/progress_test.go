package ingest

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgress_ReportsAtInterval(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, "passages", 1000, 100)
	p.Start()

	p.Add(50)
	assert.Empty(t, buf.String(), "should not print under interval")

	p.Add(50)
	assert.Contains(t, buf.String(), "100/1000 (10.0%)")
	assert.Contains(t, buf.String(), "passages/s")
}

func TestProgress_CapsAtTotal(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, "passages", 100, 10)
	p.Start()

	p.Add(150)
	assert.Equal(t, 100, p.Current())
	assert.Contains(t, buf.String(), "100/100 (100.0%)")
}

func TestProgress_Finish(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, "passages", 0, 10)
	p.Start()
	p.Finish()

	assert.Contains(t, buf.String(), "0/0")
	assert.Contains(t, buf.String(), "\n")
}

func TestProgress_NotStartedOrSilent(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, "passages", 100, 10)
	p.Add(10)
	p.Finish()
	assert.Empty(t, buf.String())

	silent := NewProgress(nil, "passages", 100, 10)
	silent.Start()
	assert.NotPanics(t, func() {
		silent.Add(50)
		silent.Finish()
	})
}
