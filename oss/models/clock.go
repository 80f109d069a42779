package models

import (
	"fmt"
	"sync/atomic"
)

// ClockReader es la vista de solo lectura del reloj que reciben los procesos de usuario.
type ClockReader interface {
	Now() uint64
	Time() (seconds uint32, nanoseconds uint32)
}

// SimulatedClock es el reloj lógico del oss. Solo avanza con Advance.
// Segundos y nanosegundos viajan juntos en un único atomic para que los
// lectores nunca vean un valor a medio escribir.
type SimulatedClock struct {
	packed atomic.Uint64 // segundos << 32 | nanosegundos
}

func pack(seconds, nanoseconds uint32) uint64 {
	return uint64(seconds)<<32 | uint64(nanoseconds)
}

// Advance suma deltaNanos al reloj arrastrando el excedente a los segundos.
// Tiene un único escritor: el MemoryManager.
func (c *SimulatedClock) Advance(deltaNanos uint64) {
	seconds, nanoseconds := c.Time()
	total := uint64(nanoseconds) + deltaNanos
	seconds += uint32(total / NanosPerSecond)
	nanoseconds = uint32(total % NanosPerSecond)
	c.packed.Store(pack(seconds, nanoseconds))
}

// Now devuelve el tiempo transcurrido en nanosegundos como un único valor comparable.
func (c *SimulatedClock) Now() uint64 {
	seconds, nanoseconds := c.Time()
	return uint64(seconds)*NanosPerSecond + uint64(nanoseconds)
}

func (c *SimulatedClock) Time() (uint32, uint32) {
	value := c.packed.Load()
	return uint32(value >> 32), uint32(value)
}

func (c *SimulatedClock) String() string {
	seconds, nanoseconds := c.Time()
	return fmt.Sprintf("%d:%09d", seconds, nanoseconds)
}
