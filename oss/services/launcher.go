package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sisoputnfrba/tp-oss-paginacion/oss/models"
	userproc "github.com/sisoputnfrba/tp-oss-paginacion/userproc/services"
	"github.com/sisoputnfrba/tp-oss-paginacion/utils/list"
)

// ProcessLauncher crea procesos de usuario y avisa cuáles terminaron.
type ProcessLauncher interface {
	Launch(ctx context.Context, pid int, clock models.ClockReader, link models.WorkerLink)
	// Reap devuelve un proceso terminado sin bloquear.
	Reap() (int, bool)
	// Running lista los procesos que todavía no terminaron.
	Running() []int
	// Wait bloquea hasta que todos los procesos lanzados terminen.
	Wait()
}

// GoroutineLauncher corre cada proceso de usuario en su propia goroutine.
type GoroutineLauncher struct {
	config *models.Config
	seed   uint64

	running list.ArrayList[int]
	exited  list.ArrayList[int]
	wg      sync.WaitGroup
}

func NewGoroutineLauncher(config *models.Config, seed uint64) *GoroutineLauncher {
	return &GoroutineLauncher{config: config, seed: seed}
}

func (l *GoroutineLauncher) Launch(ctx context.Context, pid int, clock models.ClockReader, link models.WorkerLink) {
	process := userproc.NewUserProcess(pid, clock, link, l.config, l.seed)

	l.running.Add(pid)
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		defer func() {
			l.running.RemoveWhere(func(running int) bool { return running == pid })
			l.exited.Add(pid)
		}()

		err := process.Run(ctx)
		if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			slog.Error(fmt.Sprintf("## PID: %d - Proceso de usuario terminó con error: %v", pid, err))
		}
	}()
}

func (l *GoroutineLauncher) Reap() (int, bool) {
	pid, err := l.exited.Dequeue()
	if err != nil {
		return 0, false
	}
	return pid, true
}

func (l *GoroutineLauncher) Running() []int {
	return l.running.GetAll()
}

func (l *GoroutineLauncher) Wait() {
	l.wg.Wait()
}
