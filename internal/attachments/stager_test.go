package attachments

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func upload(name, body string) Upload {
	return Upload{
		Filename: name,
		Size:     int64(len(body)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(body)), nil
		},
	}
}

func newTestStager(t *testing.T) *DiskStager {
	t.Helper()
	s := NewDiskStager(filepath.Join(t.TempDir(), "uploads"), "/uploads/")
	n := 0
	s.newName = func(ext string) string {
		n++
		return "f" + string(rune('0'+n)) + ext
	}
	return s
}

func TestStage_WritesFilesAndLinks(t *testing.T) {
	s := newTestStager(t)

	links, err := s.Stage(context.Background(), []Upload{
		upload("report.pdf", "%PDF"),
		upload("empty.txt", ""),
		upload(`C:\Users\me\notes.txt`, "hola"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"/uploads/f1.pdf", "/uploads/f2.txt"}, links)
	assert.Equal(t, "/uploads/f1.pdf,/uploads/f2.txt", JoinLinks(links))

	b, err := os.ReadFile(filepath.Join(s.Dir, "f2.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hola", string(b))
}

func TestStage_NoFiles(t *testing.T) {
	s := newTestStager(t)
	links, err := s.Stage(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, links)

	_, err = os.Stat(s.Dir)
	assert.True(t, os.IsNotExist(err), "dir should not be created when nothing is staged")
}

func TestStage_OpenErrorFails(t *testing.T) {
	s := newTestStager(t)
	boom := errors.New("boom")

	_, err := s.Stage(context.Background(), []Upload{{
		Filename: "x.bin",
		Size:     3,
		Open:     func() (io.ReadCloser, error) { return nil, boom },
	}})
	require.ErrorIs(t, err, boom)

	entries, err := os.ReadDir(s.Dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStage_NoDir(t *testing.T) {
	s := NewDiskStager("", "")
	_, err := s.Stage(context.Background(), []Upload{upload("a.txt", "a")})
	require.ErrorIs(t, err, ErrNoUploadDir)
}

func TestExtOf(t *testing.T) {
	assert.Equal(t, ".pdf", extOf("a.pdf"))
	assert.Equal(t, ".gz", extOf("../../etc/a.tar.gz"))
	assert.Equal(t, "", extOf("README"))
	assert.Equal(t, "", extOf("weird."))
}

func TestFileServer_ServesFilesNotDirs(t *testing.T) {
	s := newTestStager(t)
	links, err := s.Stage(context.Background(), []Upload{upload("a.txt", "contenido")})
	require.NoError(t, err)
	require.Len(t, links, 1)

	h := s.FileServer()

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, links[0], nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "contenido", rr.Body.String())

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/uploads/", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
