// Package logger expone el logger zap del proceso como singleton, con
// helpers de campos tipados y propagación por contexto.
package logger

import (
	"sync"

	"go.uber.org/zap"
)

var (
	once     sync.Once
	instance *zap.Logger
)

// Init construye el singleton. Idempotente: solo la primera llamada
// tiene efecto; main la invoca antes de cualquier log.
func Init(cfg Config) {
	once.Do(func() {
		instance = build(cfg)
	})
}

// L retorna el singleton. Sin Init previo arma uno de dev nivel info,
// así los tests y tools chicos loguean sin boilerplate.
func L() *zap.Logger {
	if instance == nil {
		Init(Config{Env: "dev", Level: "info"})
	}
	return instance
}

// Sync vacía los buffers pendientes. Para el defer de main.
func Sync() error {
	if instance != nil {
		return instance.Sync()
	}
	return nil
}
