// Package ratelimit implementa contadores de ventana fija por clave (ej. IP) para limitar
// intentos de login. Hay un store en memoria (un solo proceso) y uno sobre Redis (compartido).
package ratelimit

import (
	"context"
	"time"
)

// Store incrementa el contador de key dentro de una ventana fija.
// Retorna el conteo tras el incremento y el tiempo restante hasta que la ventana se reinicie.
type Store interface {
	Hit(ctx context.Context, key string, window time.Duration) (count int64, resetIn time.Duration, err error)
}
