package app

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/ytshim/internal/domain"
)

func TestProtocolWriter_Lines(t *testing.T) {
	var out bytes.Buffer
	writer := NewProtocolWriter(&out)

	writer.Progress(domain.ProgressEvent{Status: domain.ProgressDownloading, Downloaded: 1024, Total: 4096})
	writer.Progress(domain.ProgressEvent{Status: domain.ProgressDownloading, Downloaded: 2048})
	writer.Progress(domain.ProgressEvent{Status: domain.ProgressFinished})
	require.NoError(t, writer.FilePath("/tmp/out/Example_abc123.mp4"))

	assert.Equal(t,
		"PROGRESS 1024 4096\nPROGRESS 2048 0\nFINISHED\nFILEPATH /tmp/out/Example_abc123.mp4\n",
		out.String())
}

func TestProtocolWriter_FlushesEachLine(t *testing.T) {
	var out bytes.Buffer
	writer := NewProtocolWriter(&out)

	writer.Progress(domain.ProgressEvent{Status: domain.ProgressDownloading, Downloaded: 1, Total: 2})
	assert.Equal(t, "PROGRESS 1 2\n", out.String())

	writer.Progress(domain.ProgressEvent{Status: domain.ProgressFinished})
	assert.Equal(t, "PROGRESS 1 2\nFINISHED\n", out.String())
}

func TestProtocolWriter_IgnoresUnknownStatus(t *testing.T) {
	var out bytes.Buffer
	writer := NewProtocolWriter(&out)

	writer.Progress(domain.ProgressEvent{Status: "post_processing", Downloaded: 5})
	writer.Progress(domain.ProgressEvent{Status: "error"})

	assert.Empty(t, out.String())
}

func TestProtocolWriter_NegativeTotalIsZero(t *testing.T) {
	var out bytes.Buffer
	writer := NewProtocolWriter(&out)

	writer.Progress(domain.ProgressEvent{Status: domain.ProgressDownloading, Downloaded: 7, Total: -1})

	assert.Equal(t, "PROGRESS 7 0\n", out.String())
}

func TestProtocolWriter_FilePathIsLast(t *testing.T) {
	var out bytes.Buffer
	writer := NewProtocolWriter(&out)

	require.NoError(t, writer.FilePath("/tmp/a.mp4"))
	writer.Progress(domain.ProgressEvent{Status: domain.ProgressDownloading, Downloaded: 9, Total: 9})
	writer.Progress(domain.ProgressEvent{Status: domain.ProgressFinished})
	require.NoError(t, writer.FilePath("/tmp/b.mp4"))

	assert.Equal(t, "FILEPATH /tmp/a.mp4\n", out.String())
}

func TestProtocolWriter_WriteError(t *testing.T) {
	writer := NewProtocolWriter(failingWriter{})

	writer.Progress(domain.ProgressEvent{Status: domain.ProgressFinished})

	require.Error(t, writer.Err())
	assert.Error(t, writer.FilePath("/tmp/x.mp4"))
}

func TestProtocolWriter_ConcurrentProgress(t *testing.T) {
	var out bytes.Buffer
	writer := NewProtocolWriter(&out)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			writer.Progress(domain.ProgressEvent{Status: domain.ProgressDownloading, Downloaded: int64(n), Total: 100})
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Len(t, lines, 20)
	for _, line := range lines {
		assert.True(t, strings.HasPrefix(line, "PROGRESS "), line)
		assert.Len(t, strings.Fields(line), 3)
	}
}

func TestWriteJSONLine_NoHTMLEscaping(t *testing.T) {
	var out bytes.Buffer

	require.NoError(t, WriteJSONLine(&out, map[string]string{"thumbnail": "https://i.example.com/a.jpg?x=1&y=2"}))

	assert.Equal(t, `{"thumbnail":"https://i.example.com/a.jpg?x=1&y=2"}`+"\n", out.String())
}
