package method

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaperSize(t *testing.T) {
	w, h, err := PaperSize("A4")
	require.NoError(t, err)
	assert.Equal(t, 8.27, w)
	assert.Equal(t, 11.7, h)

	w, h, err = PaperSize(" letter ")
	require.NoError(t, err)
	assert.Equal(t, 8.5, w)
	assert.Equal(t, 11.0, h)

	_, _, err = PaperSize("napkin")
	assert.Error(t, err)
}

func TestWriteArtifactCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "screenshots", "nested", "epic_store.png")
	require.NoError(t, writeArtifact(path, []byte("png")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))
}

func TestJSONHelpers(t *testing.T) {
	m := &Method{}
	body := `{"account":{"id":"42","name":"guest"}}`

	v, err := m.JSONValue(body, "account.name")
	require.NoError(t, err)
	assert.Equal(t, "guest", v)

	_, err = m.JSONValue(body, "account.email")
	assert.Error(t, err)
	_, err = m.JSONValue("<html>", "account")
	assert.Error(t, err)

	assert.True(t, m.JSONExists(body, "account.id"))
	assert.False(t, m.JSONExists(body, "cart"))
}

func TestTools(t *testing.T) {
	m := &Method{}
	assert.True(t, m.AlwaysTrue())
	start := time.Now()
	assert.True(t, m.SleepMilliseconds(5))
	assert.GreaterOrEqual(t, time.Since(start), 5*time.Millisecond)
	assert.Equal(t, 1500*time.Millisecond, msDuration(1500))
}

func TestPDFOptionsLeaveBackgroundOffByDefault(t *testing.T) {
	params, err := PDFOptions{Format: "a4"}.params()
	require.NoError(t, err)
	assert.False(t, params.PrintBackground)
	assert.False(t, params.Landscape)
	assert.Equal(t, 8.27, params.PaperWidth)
	assert.Equal(t, 11.7, params.PaperHeight)

	params, err = PDFOptions{Format: "letter", Landscape: true, PrintBackground: true}.params()
	require.NoError(t, err)
	assert.True(t, params.PrintBackground)
	assert.True(t, params.Landscape)

	_, err = PDFOptions{Format: "napkin"}.params()
	assert.Error(t, err)
}

type sessionKey struct{}

func TestLinkContextsEndsWithEitherSide(t *testing.T) {
	session, closeSession := context.WithCancel(context.WithValue(context.Background(), sessionKey{}, "page"))
	defer closeSession()

	task, cancelTask := context.WithCancel(context.Background())
	linked, cancel := linkContexts(session, task)
	defer cancel()
	assert.Equal(t, "page", linked.Value(sessionKey{}))
	assert.NoError(t, linked.Err())

	cancelTask()
	select {
	case <-linked.Done():
	case <-time.After(time.Second):
		t.Fatal("linked context outlived the task")
	}
	assert.NoError(t, session.Err())

	linked, cancel = linkContexts(session, context.Background())
	defer cancel()
	closeSession()
	select {
	case <-linked.Done():
	case <-time.After(time.Second):
		t.Fatal("linked context outlived the session")
	}
}
