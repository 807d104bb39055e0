// Package logger expone un logger Zap único con scoping por contexto.
//
// Inicialización (una vez, en cmd/mailgate):
//
//	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, ServiceName: "mailgate"})
//	defer logger.Sync()
//
// En controllers/services el logger del request viene en el contexto
// (lo inyecta middlewares.WithLogging):
//
//	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("Register"))
//	log.Info("otp issued", logger.Email(email), logger.Purpose("registration"))
//
// "dev" escribe en consola con colores, "prod" en JSON.
package logger
