package services

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/sisoputnfrba/tp-oss-paginacion/oss/models"
)

// MemoryManager es el oss: dueño único del reloj y de las tablas. Corre un
// ciclo de un solo hilo que en cada vuelta cosecha procesos terminados, admite
// nuevos, despierta swaps vencidos, atiende a lo sumo un pedido, reporta y
// avanza el reloj.
type MemoryManager struct {
	config    *models.Config
	options   models.RunOptions
	clock     *models.SimulatedClock
	pages     *PageTable
	frames    *FrameTable
	processes *ProcessTable
	router    *Router
	launcher  ProcessLauncher
	reporter  *Reporter

	nextPid    int
	launched   int
	active     int
	lastLaunch uint64
	nextReport uint64
	totals     models.Metrics
}

func NewMemoryManager(config *models.Config, options models.RunOptions, launcher ProcessLauncher, reporter *Reporter) *MemoryManager {
	return &MemoryManager{
		config:     config,
		options:    options,
		clock:      &models.SimulatedClock{},
		pages:      NewPageTable(config),
		frames:     NewFrameTable(config.NumFrames),
		processes:  NewProcessTable(config.MaxProcesses),
		router:     NewRouter(config.RequestBuffer),
		launcher:   launcher,
		reporter:   reporter,
		nextReport: config.ReportIntervalNanos,
	}
}

// Clock es la vista de solo lectura del reloj para procesos y handlers.
func (m *MemoryManager) Clock() models.ClockReader {
	return m.clock
}

func (m *MemoryManager) Totals() models.Metrics {
	return m.totals
}

// Done indica que no quedan procesos activos ni lanzamientos pendientes.
func (m *MemoryManager) Done() bool {
	return m.active == 0 && m.launched >= m.options.TotalProcesses
}

// Run ejecuta el ciclo hasta terminar la simulación, hasta un error fatal o
// hasta que se cancele ctx. Siempre libera las tablas y espera a los procesos.
func (m *MemoryManager) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	slog.Info(fmt.Sprintf("## OSS iniciado: %d procesos, %d simultáneos, %d marcos de %d bytes",
		m.options.TotalProcesses, m.options.MaxSimultaneous, m.config.NumFrames, m.config.PageSize))

	for !m.Done() {
		if err := ctx.Err(); err != nil {
			m.shutdown(cancel)
			return err
		}
		if err := m.Step(ctx); err != nil {
			m.shutdown(cancel)
			return err
		}
		runtime.Gosched()
	}

	m.report()
	m.logStatistics()
	m.shutdown(cancel)
	return nil
}

// Step ejecuta una vuelta del ciclo en orden fijo.
func (m *MemoryManager) Step(ctx context.Context) error {
	m.reap()

	if err := m.admit(ctx); err != nil {
		return err
	}
	if err := m.wakeExpired(); err != nil {
		return err
	}
	if err := m.serviceRequest(); err != nil {
		return err
	}
	if m.config.ReportIntervalNanos > 0 && m.clock.Now() >= m.nextReport {
		m.report()
		m.nextReport = m.clock.Now() + m.config.ReportIntervalNanos
	}

	// El reloj avanza aunque no haya pedidos: si todos están bloqueados, los swaps igual vencen.
	m.clock.Advance(m.config.LoopTickNanos)
	return nil
}

func (m *MemoryManager) reap() {
	for {
		pid, exited := m.launcher.Reap()
		if !exited {
			return
		}
		m.releaseProcess(pid)
		m.active--

		seconds, nanoseconds := m.clock.Time()
		slog.Info(fmt.Sprintf("## PID: %d - Finalizó en %d:%d", pid, seconds, nanoseconds))
	}
}

func (m *MemoryManager) admit(ctx context.Context) error {
	if m.active >= m.options.MaxSimultaneous || m.launched >= m.options.TotalProcesses {
		return nil
	}
	now := m.clock.Now()
	if m.launched > 0 && now-m.lastLaunch < m.options.LaunchIntervalNanos {
		return nil
	}

	m.nextPid++
	pid := m.nextPid

	base, err := m.pages.Assign(pid)
	if err != nil {
		return fmt.Errorf("admisión de PID %d: %w", pid, err)
	}
	if _, err := m.processes.Admit(pid, base); err != nil {
		m.pages.Release(pid)
		return fmt.Errorf("admisión de PID %d: %w", pid, err)
	}

	for page := 0; page < m.pages.PagesPerProcess(); page++ {
		index := base + page
		frame, eviction, evicted := m.acquireFrame(index)
		m.frames.Complete(frame, m.pages, index)
		m.clock.Advance(m.config.AdmissionPageNanos + m.writeBackCost(eviction, evicted))
	}

	link := m.router.Register(pid)
	m.launcher.Launch(ctx, pid, m.clock, link)
	m.launched++
	m.active++
	m.lastLaunch = now

	seconds, nanoseconds := m.clock.Time()
	slog.Info(fmt.Sprintf("## PID: %d - Proceso Creado en %d:%d (%d/%d lanzados, %d marcos libres)",
		pid, seconds, nanoseconds, m.launched, m.options.TotalProcesses, m.frames.FreeCount()))
	return nil
}

func (m *MemoryManager) wakeExpired() error {
	for slot := range m.processes.ScanExpired(m.clock.Now()) {
		pcb := m.processes.PCB(slot)
		pid := pcb.Pid

		frame := pcb.PendingFrame
		if !m.frames.Complete(frame, m.pages, pcb.NeededPage) {
			slog.Warn(fmt.Sprintf("## PID: %d - El marco %d fue desalojado durante el swap, se busca otro", pid, frame))
			var eviction Eviction
			var evicted bool
			frame, eviction, evicted = m.acquireFrame(pcb.NeededPage)
			m.frames.Complete(frame, m.pages, pcb.NeededPage)
			// La página ya está leída: solo falta escribir la víctima modificada.
			m.clock.Advance(m.writeBackCost(eviction, evicted))
		}
		m.applyAccess(pcb, pcb.NeededPage, frame, pcb.PendingOp)

		seconds, nanoseconds := m.clock.Time()
		slog.Info(fmt.Sprintf("## PID: %d - Swap completo: página %d en marco %d, se responde %s de la dirección %d en %d:%d",
			pid, pcb.NeededPage-pcb.PageBase, frame, pcb.PendingOp, pcb.PendingAddr, seconds, nanoseconds))

		m.processes.Unblock(slot)
		if err := m.router.Reply(pid); err != nil {
			return err
		}
	}
	return nil
}

func (m *MemoryManager) serviceRequest() error {
	message, received := m.router.Poll()
	if !received {
		return nil
	}

	switch request := message.(type) {
	case models.MemoryRequest:
		return m.serviceAccess(request)
	case models.TerminationNotice:
		seconds, nanoseconds := m.clock.Time()
		slog.Info(fmt.Sprintf("## PID: %d - Aviso de finalización en %d:%d", request.Requester, seconds, nanoseconds))
		m.releaseProcess(request.Requester)
	}
	return nil
}

func (m *MemoryManager) serviceAccess(request models.MemoryRequest) error {
	pid := request.Requester
	slot, found := m.processes.Find(pid)
	if !found {
		slog.Warn(fmt.Sprintf("## PID: %d - Pedido ignorado: %v", pid, ErrUnknownProcess))
		return nil
	}
	pcb := m.processes.PCB(slot)
	if pcb.Blocked {
		slog.Warn(fmt.Sprintf("## PID: %d - Pedido ignorado: el proceso está bloqueado", pid))
		return nil
	}

	seconds, nanoseconds := m.clock.Time()
	slog.Info(fmt.Sprintf("## PID: %d - Solicita %s de la dirección %d en %d:%d", pid, request.Operation, request.Address, seconds, nanoseconds))

	page, offset := m.pages.Translate(request.Address)
	index, err := m.pages.Index(pcb.PageBase, page)
	if err != nil {
		slog.Warn(fmt.Sprintf("## PID: %d - Dirección %d descartada: %v", pid, request.Address, err))
		return m.router.Reply(pid)
	}

	m.totals.Accesses++
	pcb.Metrics.Accesses++

	if frame, resident := m.pages.Lookup(index); resident {
		m.applyAccess(pcb, index, frame, request.Operation)
		cost := m.config.ReadHitNanos
		if request.Operation == models.Write {
			cost = m.config.WriteHitNanos
		}
		m.clock.Advance(cost)

		seconds, nanoseconds = m.clock.Time()
		slog.Info(fmt.Sprintf("## PID: %d - Dirección %d en marco %d (página %d, desplazamiento %d), %s resuelta en %d:%d",
			pid, request.Address, frame, page, offset, request.Operation, seconds, nanoseconds))
		return m.router.Reply(pid)
	}

	m.totals.PageFaults++
	pcb.Metrics.PageFaults++
	slog.Info(fmt.Sprintf("## PID: %d - Page fault: la dirección %d (página %d) no está en un marco", pid, request.Address, page))

	frame, eviction, evicted := m.acquireFrame(index)
	latency := m.config.SwapLatencyNanos + m.writeBackCost(eviction, evicted)
	m.processes.Block(slot, request, index, frame, latency, m.clock)

	slog.Debug("Proceso bloqueado por swap", "pid", pid, "marco", frame, "espera_hasta", pcb.EventWaitTime)
	return nil
}

// acquireFrame usa un marco libre si hay y si no desaloja la cabeza de la cola FIFO.
func (m *MemoryManager) acquireFrame(index int) (int, Eviction, bool) {
	if frame, free := m.frames.AllocateFrame(index); free {
		return frame, Eviction{}, false
	}

	eviction := m.frames.EvictFrame(m.pages, index)
	m.totals.Evictions++

	seconds, nanoseconds := m.clock.Time()
	slog.Info(fmt.Sprintf("## Marco %d desalojado en %d:%d: sale P%d página %d", eviction.Frame, seconds, nanoseconds, eviction.VictimOwner, m.pageNumber(eviction.VictimPage)))
	if eviction.Dirty {
		m.totals.DirtyWriteBacks++
		slog.Info(fmt.Sprintf("## Marco %d con bit de modificado, se suma la escritura a disco", eviction.Frame))
	}
	return eviction.Frame, eviction, true
}

// writeBackCost es lo que cuesta escribir a disco la víctima de un desalojo, 0 si estaba limpia.
func (m *MemoryManager) writeBackCost(eviction Eviction, evicted bool) uint64 {
	if evicted && eviction.Dirty {
		return m.config.DirtyWriteBackNanos
	}
	return 0
}

func (m *MemoryManager) applyAccess(pcb *models.ProcessControlBlock, index, frame int, operation models.Operation) {
	m.pages.Touch(index, operation)
	if operation == models.Write {
		m.frames.MarkDirty(frame)
		pcb.Metrics.Writes++
		m.totals.Writes++
		return
	}
	pcb.Metrics.Reads++
	m.totals.Reads++
}

// releaseProcess libera las tablas de pid. Llamarlo dos veces no hace nada la segunda.
func (m *MemoryManager) releaseProcess(pid int) {
	m.router.Unregister(pid)

	slot, found := m.processes.Find(pid)
	if !found {
		return
	}
	metrics := m.processes.PCB(slot).Metrics
	m.processes.Release(pid, m.pages, m.frames)

	slog.Info(fmt.Sprintf("## PID: %d - Proceso Destruido - Métricas - Accesos: %d; Lecturas: %d; Escrituras: %d; Page faults: %d",
		pid, metrics.Accesses, metrics.Reads, metrics.Writes, metrics.PageFaults))
}

func (m *MemoryManager) report() {
	snapshot := BuildSnapshot(m.clock, m.pages, m.frames, m.processes, m.totals)
	m.reporter.Publish(snapshot)
	slog.Info(FrameTableText(snapshot) + PageTableText(snapshot) + ProcessTableText(snapshot))
}

func (m *MemoryManager) logStatistics() {
	elapsed := float64(m.clock.Now()) / models.NanosPerSecond
	accessesPerSecond := 0.0
	if elapsed > 0 {
		accessesPerSecond = float64(m.totals.Accesses) / elapsed
	}
	faultsPerAccess := 0.0
	if m.totals.Accesses > 0 {
		faultsPerAccess = float64(m.totals.PageFaults) / float64(m.totals.Accesses)
	}

	slog.Info(fmt.Sprintf("## Estadísticas - Accesos: %d; Accesos por segundo: %.2f; Page faults por acceso: %.4f; Desalojos: %d; Escrituras a disco: %d",
		m.totals.Accesses, accessesPerSecond, faultsPerAccess, m.totals.Evictions, m.totals.DirtyWriteBacks))
}

func (m *MemoryManager) shutdown(cancel context.CancelFunc) {
	cancel()
	for _, pcb := range m.processes.Occupied() {
		m.releaseProcess(pcb.Pid)
	}
	if running := m.launcher.Running(); len(running) > 0 {
		slog.Debug("Esperando a que terminen los procesos de usuario", "pids", running)
	}
	m.launcher.Wait()
}

// pageNumber pasa de índice global de la tabla a número de página del proceso.
func (m *MemoryManager) pageNumber(index int) int {
	if index == models.NoPage {
		return models.NoPage
	}
	return index % m.pages.PagesPerProcess()
}
