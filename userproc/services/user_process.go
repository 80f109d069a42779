package services

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/sisoputnfrba/tp-oss-paginacion/oss/models"
)

// UserProcess genera pedidos de lectura/escritura al oss y espera cada respuesta
// antes de hacer el siguiente.
type UserProcess struct {
	Pid             int
	Clock           models.ClockReader
	Link            models.WorkerLink
	Policy          models.UserCfg
	PageSize        int
	PagesPerProcess int

	rng       *rand.Rand
	completed int
}

func NewUserProcess(pid int, clock models.ClockReader, link models.WorkerLink, config *models.Config, seed uint64) *UserProcess {
	return &UserProcess{
		Pid:             pid,
		Clock:           clock,
		Link:            link,
		Policy:          config.UserProcess,
		PageSize:        config.PageSize,
		PagesPerProcess: config.PagesPerProcess,
		rng:             rand.New(rand.NewPCG(seed, uint64(pid))),
	}
}

// Run hace pedidos hasta decidir terminar o hasta que se cancele ctx.
// Al terminar por decisión propia manda un TerminationNotice.
func (u *UserProcess) Run(ctx context.Context) error {
	seconds, nanoseconds := u.Clock.Time()
	slog.Debug(fmt.Sprintf("## PID: %d - Proceso de usuario iniciado en %d:%d", u.Pid, seconds, nanoseconds))

	for {
		request := u.NextRequest()
		if err := u.send(ctx, request); err != nil {
			return err
		}
		if err := u.await(ctx); err != nil {
			return err
		}
		u.completed++

		if u.shouldTerminate() {
			seconds, nanoseconds = u.Clock.Time()
			slog.Debug(fmt.Sprintf("## PID: %d - Decide terminar en %d:%d tras %d pedidos", u.Pid, seconds, nanoseconds, u.completed))
			return u.send(ctx, models.TerminationNotice{Requester: u.Pid})
		}
	}
}

// NextRequest elige una página y un desplazamiento al azar dentro del espacio del proceso.
func (u *UserProcess) NextRequest() models.MemoryRequest {
	page := u.rng.IntN(u.PagesPerProcess)
	offset := u.rng.IntN(u.PageSize)

	operation := models.Write
	if u.rng.Float64() < u.Policy.ReadProbability {
		operation = models.Read
	}

	return models.MemoryRequest{
		Requester: u.Pid,
		Address:   uint32(page*u.PageSize + offset),
		Operation: operation,
	}
}

// Completed es la cantidad de pedidos ya respondidos.
func (u *UserProcess) Completed() int {
	return u.completed
}

func (u *UserProcess) shouldTerminate() bool {
	if u.completed%u.Policy.TerminationCheckEvery != 0 {
		return false
	}
	return u.rng.Float64() < u.Policy.TerminationProbability
}

func (u *UserProcess) send(ctx context.Context, message models.Message) error {
	select {
	case u.Link.Requests <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (u *UserProcess) await(ctx context.Context) error {
	select {
	case response := <-u.Link.Replies:
		if response.Target != u.Pid {
			return fmt.Errorf("PID %d recibió una respuesta para PID %d", u.Pid, response.Target)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
