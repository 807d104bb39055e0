// Package health contiene el service para health checks.
package health

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	dto "github.com/dropDatabas3/mailgate/internal/http/dto/health"
	jwtx "github.com/dropDatabas3/mailgate/internal/jwt"
	"github.com/dropDatabas3/mailgate/internal/observability/logger"
)

// HealthService define las operaciones de health check.
type HealthService interface {
	Check(ctx context.Context) dto.HealthResponse
}

// TokenSelfChecker firma y valida un token de prueba. Implementado por *jwt.Issuer.
type TokenSelfChecker interface {
	IssueAccess(sub string) (string, time.Time, error)
	Parse(raw string) (*jwtx.Claims, error)
}

// Deps contiene las dependencias inyectables para el health service.
type Deps struct {
	DBCheck    func(ctx context.Context) error // crítico
	Issuer     TokenSelfChecker                // crítico
	UploadsDir string                          // no crítico
	SMTPHost   string                          // informativo
	Version    string
}

type healthService struct {
	deps Deps
}

// NewHealthService crea un nuevo service de health check.
func NewHealthService(deps Deps) HealthService {
	return &healthService{deps: deps}
}

const componentHealth = "health"

// Estados globales.
const (
	StatusReady       = "ready"
	StatusDegraded    = "degraded"
	StatusUnavailable = "unavailable"
)

func (s *healthService) Check(ctx context.Context) dto.HealthResponse {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component(componentHealth),
		logger.Op("Check"),
	)

	response := dto.HealthResponse{
		Version:    s.deps.Version,
		Components: make(map[string]dto.HealthStatus),
		Timestamp:  time.Now().UTC(),
	}
	if response.Version == "" {
		response.Version = os.Getenv("SERVICE_VERSION")
	}

	hasErrors := false
	hasCriticalErrors := false

	// 1) DB (crítico)
	if s.deps.DBCheck != nil {
		if err := s.deps.DBCheck(ctx); err != nil {
			response.Components["db"] = dto.HealthStatus{Status: "error", Message: fmt.Sprintf("unavailable: %v", err)}
			hasCriticalErrors = true
			log.Error("db unavailable", logger.Err(err))
		} else {
			response.Components["db"] = dto.HealthStatus{Status: "ok"}
		}
	} else {
		response.Components["db"] = dto.HealthStatus{Status: "error", Message: "not configured"}
		hasCriticalErrors = true
	}

	// 2) JWT (crítico)
	if s.deps.Issuer != nil {
		if err := s.checkIssuer(); err != nil {
			response.Components["jwt"] = dto.HealthStatus{Status: "error", Message: err.Error()}
			hasCriticalErrors = true
			log.Error("jwt self-check failed", logger.Err(err))
		} else {
			response.Components["jwt"] = dto.HealthStatus{Status: "ok"}
		}
	} else {
		response.Components["jwt"] = dto.HealthStatus{Status: "error", Message: "issuer not initialized"}
		hasCriticalErrors = true
	}

	// 3) Uploads (no crítico)
	if s.deps.UploadsDir != "" {
		if err := checkDir(s.deps.UploadsDir); err != nil {
			response.Components["uploads"] = dto.HealthStatus{Status: "error", Message: err.Error()}
			hasErrors = true
			log.Warn("uploads dir not usable", logger.Err(err))
		} else {
			response.Components["uploads"] = dto.HealthStatus{Status: "ok"}
		}
	} else {
		response.Components["uploads"] = dto.HealthStatus{Status: "disabled"}
	}

	// 4) SMTP (informativo, sin conexión)
	if s.deps.SMTPHost != "" {
		response.Components["smtp"] = dto.HealthStatus{Status: "ok", Message: "configured: " + s.deps.SMTPHost}
	} else {
		response.Components["smtp"] = dto.HealthStatus{Status: "disabled", Message: "smtp.host empty"}
		hasErrors = true
	}

	switch {
	case hasCriticalErrors:
		response.Status = StatusUnavailable
	case hasErrors:
		response.Status = StatusDegraded
	default:
		response.Status = StatusReady
	}
	return response
}

func (s *healthService) checkIssuer() error {
	signed, _, err := s.deps.Issuer.IssueAccess("selfcheck")
	if err != nil {
		return fmt.Errorf("sign failed: %w", err)
	}
	claims, err := s.deps.Issuer.Parse(signed)
	if err != nil {
		return fmt.Errorf("verify failed: %w", err)
	}
	if claims.Email() != "selfcheck" {
		return errors.New("verify failed: subject mismatch")
	}
	return nil
}

// checkDir acepta un directorio existente o uno que todavía no fue creado.
func checkDir(dir string) error {
	st, err := os.Stat(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if !st.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}
