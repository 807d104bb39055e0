// Package repository define los contratos de persistencia del dominio.
//
// Las interfaces son independientes del almacenamiento; la implementación
// PostgreSQL vive en internal/store/pg y los tests de services usan fakes
// en memoria.
//
//	┌──────────────────────────────────────────────┐
//	│       services (auth, email relay)           │
//	└──────────────────────────────────────────────┘
//	                      │
//	                      ▼
//	┌──────────────────────────────────────────────┐
//	│  domain/repository (interfaces)              │
//	│  UserRepository, OTPRepository,              │
//	│  EmailLogRepository                          │
//	└──────────────────────────────────────────────┘
//	                      │
//	                      ▼
//	┌──────────────────────────────────────────────┐
//	│  store/pg (database/sql + pgx stdlib)        │
//	└──────────────────────────────────────────────┘
//
// Convenciones:
//   - Context siempre es el primer parámetro
//   - Los instantes se guardan en UTC
//   - Errores de dominio están en errors.go
package repository
