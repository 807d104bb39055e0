// Package attachments persiste los adjuntos recibidos por el relay en el
// directorio de uploads y los sirve en modo solo lectura.
package attachments

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/dropDatabas3/mailgate/internal/observability/logger"
)

// Upload es un archivo recibido en el request.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// Stager guarda uploads y devuelve sus links relativos.
type Stager interface {
	Stage(ctx context.Context, files []Upload) ([]string, error)
}

// DiskStager escribe cada archivo como <uuid><ext> bajo Dir.
type DiskStager struct {
	Dir       string // ej: wwwroot/uploads
	URLPrefix string // ej: /uploads

	newName func(ext string) string
}

// NewDiskStager crea un DiskStager.
func NewDiskStager(dir, urlPrefix string) *DiskStager {
	if urlPrefix == "" {
		urlPrefix = "/uploads"
	}
	return &DiskStager{
		Dir:       dir,
		URLPrefix: "/" + strings.Trim(urlPrefix, "/"),
		newName:   func(ext string) string { return uuid.NewString() + ext },
	}
}

var _ Stager = (*DiskStager)(nil)

var ErrNoUploadDir = errors.New("attachments: upload dir not configured")

// Stage crea Dir si falta y escribe los archivos. Los de tamaño cero se omiten.
func (s *DiskStager) Stage(ctx context.Context, files []Upload) ([]string, error) {
	log := logger.From(ctx).With(logger.Component("attachments.stager"))

	if len(files) == 0 {
		return nil, nil
	}
	if s.Dir == "" {
		return nil, ErrNoUploadDir
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	links := make([]string, 0, len(files))
	for _, f := range files {
		if f.Size <= 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return links, err
		}
		name := s.newName(extOf(f.Filename))
		if err := s.write(name, f); err != nil {
			log.Error("stage attachment failed", logger.String("file", f.Filename), logger.Err(err))
			return links, err
		}
		links = append(links, path.Join(s.URLPrefix, name))
	}

	log.Debug("attachments staged", logger.Count(len(links)))
	return links, nil
}

func (s *DiskStager) write(name string, f Upload) (err error) {
	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("open upload %q: %w", f.Filename, err)
	}
	defer src.Close()

	dst := filepath.Join(s.Dir, name)
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create %q: %w", dst, err)
	}
	defer func() {
		if cerr := out.Close(); err == nil && cerr != nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(dst)
		}
	}()

	if _, err = io.Copy(out, src); err != nil {
		return fmt.Errorf("write %q: %w", dst, err)
	}
	return nil
}

// extOf devuelve la extensión del nombre original (sin rutas del cliente).
func extOf(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	ext := filepath.Ext(base)
	if ext == "." || strings.ContainsAny(ext, "/\\") {
		return ""
	}
	return ext
}

// FileServer sirve Dir en solo lectura, sin listado de directorios.
func (s *DiskStager) FileServer() http.Handler {
	fs := http.FileServer(noListFS{http.Dir(s.Dir)})
	return http.StripPrefix(s.URLPrefix, fs)
}

type noListFS struct{ fs http.FileSystem }

func (n noListFS) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if st.IsDir() {
		_ = f.Close()
		return nil, os.ErrNotExist
	}
	return f, nil
}

// JoinLinks arma el valor de attachment_link.
func JoinLinks(links []string) string {
	return strings.Join(links, ",")
}
