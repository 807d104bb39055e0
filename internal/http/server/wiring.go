// Package server arma el handler HTTP con todas sus dependencias.
package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dropDatabas3/mailgate/internal/attachments"
	"github.com/dropDatabas3/mailgate/internal/config"
	"github.com/dropDatabas3/mailgate/internal/email"
	authctrl "github.com/dropDatabas3/mailgate/internal/http/controllers/auth"
	emailctrl "github.com/dropDatabas3/mailgate/internal/http/controllers/email"
	healthctrl "github.com/dropDatabas3/mailgate/internal/http/controllers/health"
	"github.com/dropDatabas3/mailgate/internal/http/router"
	authsvc "github.com/dropDatabas3/mailgate/internal/http/services/auth"
	emailsvc "github.com/dropDatabas3/mailgate/internal/http/services/email"
	healthsvc "github.com/dropDatabas3/mailgate/internal/http/services/health"
	jwtx "github.com/dropDatabas3/mailgate/internal/jwt"
	"github.com/dropDatabas3/mailgate/internal/metrics"
	"github.com/dropDatabas3/mailgate/internal/store/pg"
)

// Options permite reemplazar piezas en tests.
type Options struct {
	Version  string
	Mailer   email.Sender          // nil = SMTPSender con cfg.SMTP
	Registry prometheus.Registerer // nil = default registry
	Gatherer prometheus.Gatherer
}

// BuildHandler instancia services, controllers y router sobre el store dado.
func BuildHandler(cfg *config.Config, st *pg.Store, opts Options) (http.Handler, error) {
	if cfg == nil || st == nil {
		return nil, fmt.Errorf("server: config and store are required")
	}

	issuer, err := jwtx.NewIssuer([]byte(cfg.JWT.Key), cfg.JWT.Issuer, cfg.JWT.Audience, cfg.AccessTTL())
	if err != nil {
		return nil, fmt.Errorf("jwt issuer: %w", err)
	}

	mailer := opts.Mailer
	if mailer == nil {
		mailer = email.NewSMTPSender(email.SMTPConfig{
			Host:               cfg.SMTP.Host,
			Port:               cfg.SMTP.Port,
			Username:           cfg.SMTP.Username,
			Password:           cfg.SMTP.Password,
			From:               cfg.SMTP.From,
			TLSMode:            cfg.SMTP.TLS,
			InsecureSkipVerify: cfg.SMTP.InsecureSkipVerify,
		})
	}

	metricsHandler, err := metrics.Register(metrics.Config{
		Registry: opts.Registry,
		Gatherer: opts.Gatherer,
		DB:       st.DB(),
	})
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	// Auth
	authServices := authsvc.NewServices(authsvc.Deps{
		Users:                      st.Users(),
		OTPs:                       st.OTPs(),
		Mailer:                     mailer,
		Issuer:                     issuer,
		OTPTTL:                     cfg.Auth.OTP.TTL,
		OTPFromName:                cfg.Email.OTPFromName,
		ConsumeOTPOnVerify:         cfg.ConsumeOTPOnVerify(),
		RequireVerifiedOTPForReset: cfg.Auth.Reset.RequireVerifiedOTP,
	})

	// Relay
	stager := attachments.NewDiskStager(cfg.Uploads.Dir, cfg.Uploads.URLPrefix)
	relay := emailsvc.NewRelayService(emailsvc.Deps{
		Mailer:             mailer,
		Stager:             stager,
		Logs:               st.EmailLogs(),
		FromName:           cfg.Email.FromName,
		RestrictedDomains:  cfg.Email.RestrictedDomains,
		MaxAttachmentBytes: cfg.Email.MaxAttachmentBytes,
	})

	// Health
	health := healthsvc.NewHealthService(healthsvc.Deps{
		DBCheck:    st.Ping,
		Issuer:     issuer,
		UploadsDir: cfg.Uploads.Dir,
		SMTPHost:   cfg.SMTP.Host,
		Version:    opts.Version,
	})

	return router.New(router.Deps{
		AuthControllers:    authctrl.NewControllers(authServices),
		RelayController:    emailctrl.NewRelayController(relay, cfg.Email.MaxAttachmentBytes),
		HealthController:   healthctrl.NewHealthController(health),
		Auth:               issuer,
		Uploads:            stager.FileServer(),
		UploadsPrefix:      stager.URLPrefix,
		Metrics:            metricsHandler,
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
	}), nil
}

// NewHTTPServer crea el *http.Server con los timeouts de config.
func NewHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           h,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       120 * time.Second,
	}
}
