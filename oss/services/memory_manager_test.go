package services

import (
	"context"
	"testing"
	"time"

	"github.com/sisoputnfrba/tp-oss-paginacion/oss/models"
)

// fakeLauncher guarda los extremos de cada proceso para que el test haga de proceso de usuario.
type fakeLauncher struct {
	links  map[int]models.WorkerLink
	exited []int
}

func newFakeLauncher() *fakeLauncher {
	return &fakeLauncher{links: make(map[int]models.WorkerLink)}
}

func (f *fakeLauncher) Launch(ctx context.Context, pid int, clock models.ClockReader, link models.WorkerLink) {
	f.links[pid] = link
}

func (f *fakeLauncher) Reap() (int, bool) {
	if len(f.exited) == 0 {
		return 0, false
	}
	pid := f.exited[0]
	f.exited = f.exited[1:]
	return pid, true
}

func (f *fakeLauncher) Running() []int {
	return nil
}

func (f *fakeLauncher) Wait() {}

func newTestManager(t *testing.T, config *models.Config, options models.RunOptions) (*MemoryManager, *fakeLauncher) {
	t.Helper()
	launcher := newFakeLauncher()
	return NewMemoryManager(config, options, launcher, NewReporter()), launcher
}

func step(t *testing.T, manager *MemoryManager) {
	t.Helper()
	if err := manager.Step(context.Background()); err != nil {
		t.Fatalf("Unexpected error in step: %v", err)
	}
}

func hasReply(link models.WorkerLink) bool {
	select {
	case <-link.Replies:
		return true
	default:
		return false
	}
}

func TestMemoryManager_AdmissionLoadsAllPages(t *testing.T) {
	config := models.DefaultConfig()
	config.ReportIntervalNanos = 0
	manager, launcher := newTestManager(t, config, models.RunOptions{TotalProcesses: 1, MaxSimultaneous: 1, LaunchIntervalNanos: 1})

	step(t, manager)

	if _, launched := launcher.links[1]; !launched {
		t.Fatalf("Expected PID 1 to be launched")
	}
	for page := 0; page < 32; page++ {
		frame, resident := manager.pages.Lookup(page)
		if !resident || frame != page {
			t.Errorf("Page %d: expected frame %d, got %d (resident %v)", page, page, frame, resident)
		}
	}
	if manager.frames.FreeCount() != 256-32 {
		t.Errorf("Expected %d free frames, got %d", 256-32, manager.frames.FreeCount())
	}
	if manager.totals.Evictions != 0 || manager.frames.Head() != 0 {
		t.Errorf("Admission into free frames should not evict nor move the head")
	}

	expected := 32*config.AdmissionPageNanos + config.LoopTickNanos
	if manager.clock.Now() != expected {
		t.Errorf("Expected clock at %d, got %d", expected, manager.clock.Now())
	}
	checkMapping(t, manager.pages, manager.frames)
}

func TestMemoryManager_NinthProcessEvictsFIFO(t *testing.T) {
	config := models.DefaultConfig()
	config.ReportIntervalNanos = 0
	manager, _ := newTestManager(t, config, models.RunOptions{TotalProcesses: 9, MaxSimultaneous: 9, LaunchIntervalNanos: 1})

	for i := 0; i < 8; i++ {
		step(t, manager)
	}
	if manager.frames.FreeCount() != 0 || manager.totals.Evictions != 0 {
		t.Fatalf("Eight processes should fill memory without evictions")
	}

	step(t, manager)

	if manager.totals.Evictions != 32 {
		t.Errorf("Expected 32 evictions, got %d", manager.totals.Evictions)
	}
	if manager.frames.Head() != 32 {
		t.Errorf("Expected head at 32, got %d", manager.frames.Head())
	}
	// PID 1 ocupaba los marcos 0..31 y fue el primero en salir.
	for page := 0; page < 32; page++ {
		if _, resident := manager.pages.Lookup(page); resident {
			t.Errorf("PID 1 page %d should have been evicted", page)
		}
	}
	slot, _ := manager.processes.Find(9)
	base := manager.processes.PCB(slot).PageBase
	if frame, resident := manager.pages.Lookup(base); !resident || frame != 0 {
		t.Errorf("PID 9 page 0 should be in frame 0, got %d", frame)
	}
	checkMapping(t, manager.pages, manager.frames)
}

func TestMemoryManager_HitRepliesImmediately(t *testing.T) {
	config := models.DefaultConfig()
	config.ReportIntervalNanos = 0
	manager, launcher := newTestManager(t, config, models.RunOptions{TotalProcesses: 1, MaxSimultaneous: 1, LaunchIntervalNanos: 1})
	step(t, manager)
	link := launcher.links[1]

	before := manager.clock.Now()
	link.Requests <- models.MemoryRequest{Requester: 1, Address: 2050, Operation: models.Write}
	step(t, manager)

	if !hasReply(link) {
		t.Fatalf("Expected an immediate reply for a resident page")
	}
	if got := manager.clock.Now() - before; got != config.WriteHitNanos+config.LoopTickNanos {
		t.Errorf("Expected clock to advance %d, got %d", config.WriteHitNanos+config.LoopTickNanos, got)
	}
	if !manager.pages.Entry(2).Dirty || !manager.frames.Entry(2).Dirty {
		t.Errorf("Write should mark page and frame 2 dirty")
	}
	if manager.totals.Accesses != 1 || manager.totals.Writes != 1 || manager.totals.PageFaults != 0 {
		t.Errorf("Unexpected totals %+v", manager.totals)
	}
}

func TestMemoryManager_FaultRepliesAfterSwap(t *testing.T) {
	config := models.DefaultConfig()
	config.NumFrames = 32
	config.ReportIntervalNanos = 0
	manager, launcher := newTestManager(t, config, models.RunOptions{TotalProcesses: 2, MaxSimultaneous: 2, LaunchIntervalNanos: 1})

	// PID 2 desaloja todas las páginas de PID 1.
	step(t, manager)
	step(t, manager)
	link := launcher.links[1]

	link.Requests <- models.MemoryRequest{Requester: 1, Address: 2050, Operation: models.Read}
	step(t, manager)

	slot, _ := manager.processes.Find(1)
	pcb := manager.processes.PCB(slot)
	if !pcb.Blocked {
		t.Fatalf("Expected PID 1 to block on a page fault")
	}
	waitTime := pcb.EventWaitTime
	if hasReply(link) {
		t.Fatalf("A page fault must not be answered before the swap ends")
	}
	if frame := pcb.PendingFrame; frame != 0 {
		t.Errorf("Expected the FIFO head frame 0, got %d", frame)
	}

	for pcb.Blocked {
		if hasReply(link) {
			t.Fatalf("Reply arrived at %d before the swap ended at %d", manager.clock.Now(), waitTime)
		}
		step(t, manager)
	}

	if manager.clock.Now() < waitTime {
		t.Errorf("Swap completed at %d before its wait time %d", manager.clock.Now(), waitTime)
	}
	if !hasReply(link) {
		t.Fatalf("Expected exactly one reply after the swap")
	}
	if hasReply(link) {
		t.Errorf("Expected a single reply")
	}
	if frame, resident := manager.pages.Lookup(2); !resident || frame != 0 {
		t.Errorf("Page 2 of PID 1 should be in frame 0, got %d", frame)
	}
	if manager.totals.PageFaults != 1 || manager.totals.Reads != 1 {
		t.Errorf("Unexpected totals %+v", manager.totals)
	}
	checkMapping(t, manager.pages, manager.frames)
}

func TestMemoryManager_OutOfRangeAddressIsAnswered(t *testing.T) {
	config := models.DefaultConfig()
	config.ReportIntervalNanos = 0
	manager, launcher := newTestManager(t, config, models.RunOptions{TotalProcesses: 1, MaxSimultaneous: 1, LaunchIntervalNanos: 1})
	step(t, manager)
	link := launcher.links[1]

	link.Requests <- models.MemoryRequest{Requester: 1, Address: config.AddressSpace()}
	step(t, manager)

	if !hasReply(link) {
		t.Errorf("An out of range address should still be answered")
	}
	if manager.totals.Accesses != 0 {
		t.Errorf("Out of range address should not count as an access")
	}
}

func TestMemoryManager_TerminationReleasesAndReaps(t *testing.T) {
	config := models.DefaultConfig()
	config.ReportIntervalNanos = 0
	manager, launcher := newTestManager(t, config, models.RunOptions{TotalProcesses: 1, MaxSimultaneous: 1, LaunchIntervalNanos: 1})
	step(t, manager)

	launcher.links[1].Requests <- models.TerminationNotice{Requester: 1}
	step(t, manager)

	if manager.frames.FreeCount() != config.NumFrames {
		t.Errorf("Expected all frames free, got %d", manager.frames.FreeCount())
	}
	if _, found := manager.processes.Find(1); found {
		t.Errorf("PID 1 should be released")
	}
	if manager.Done() {
		t.Errorf("Manager should wait for the process to exit")
	}

	launcher.exited = append(launcher.exited, 1)
	step(t, manager)
	if !manager.Done() {
		t.Errorf("Expected manager to be done after reaping the last process")
	}
}

func TestMemoryManager_LaunchInterval(t *testing.T) {
	config := models.DefaultConfig()
	config.ReportIntervalNanos = 0
	config.AdmissionPageNanos = 0
	manager, launcher := newTestManager(t, config, models.RunOptions{TotalProcesses: 2, MaxSimultaneous: 2, LaunchIntervalNanos: 5 * config.LoopTickNanos})

	step(t, manager)
	for i := 0; i < 4; i++ {
		step(t, manager)
		if len(launcher.links) != 1 {
			t.Fatalf("Second process launched after only %d ticks", i+1)
		}
	}
	step(t, manager)
	if len(launcher.links) != 2 {
		t.Errorf("Expected the second process after 5 ticks")
	}
}

func TestMemoryManager_RunWithUserProcesses(t *testing.T) {
	config := models.DefaultConfig()
	config.PageSize = 256
	config.PagesPerProcess = 8
	config.NumFrames = 16
	config.MaxProcesses = 4
	config.AdmissionPageNanos = 1000
	config.SwapLatencyNanos = 5000
	config.DirtyWriteBackNanos = 5000
	config.LoopTickNanos = 100
	config.ReportIntervalNanos = 0
	config.UserProcess.TerminationCheckEvery = 10
	config.UserProcess.TerminationProbability = 1

	reporter := NewReporter()
	launcher := NewGoroutineLauncher(config, 42)
	manager := NewMemoryManager(config, models.RunOptions{TotalProcesses: 6, MaxSimultaneous: 3, LaunchIntervalNanos: 1000}, launcher, reporter)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := manager.Run(ctx); err != nil {
		t.Fatalf("Unexpected error running the simulation: %v", err)
	}
	if !manager.Done() {
		t.Errorf("Expected all processes to finish")
	}
	if got := manager.Totals().Accesses; got != 60 {
		t.Errorf("Expected 60 accesses, got %d", got)
	}
	if manager.processes.Active() != 0 || manager.frames.FreeCount() != config.NumFrames {
		t.Errorf("Expected empty tables after the run")
	}
	if _, published := reporter.Latest(); !published {
		t.Errorf("Expected a final report")
	}
	if running := launcher.Running(); len(running) != 0 {
		t.Errorf("Expected no running processes, got %v", running)
	}
}

func TestMemoryManager_RunCancelled(t *testing.T) {
	config := models.DefaultConfig()
	config.ReportIntervalNanos = 0
	config.UserProcess.TerminationProbability = 0
	launcher := NewGoroutineLauncher(config, 7)
	manager := NewMemoryManager(config, models.RunOptions{TotalProcesses: 3, MaxSimultaneous: 3, LaunchIntervalNanos: 1}, launcher, NewReporter())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := manager.Run(ctx); err == nil {
		t.Fatalf("Expected cancellation error")
	}
	if manager.processes.Active() != 0 || manager.frames.FreeCount() != config.NumFrames {
		t.Errorf("Cancellation should release every table")
	}
}

// newTwoFrameManager admite dos procesos de 2 páginas sobre 2 marcos: PID 2
// queda en los marcos 0 y 1 y todas las páginas de PID 1 quedan afuera.
func newTwoFrameManager(t *testing.T) (*MemoryManager, *fakeLauncher, *models.Config) {
	t.Helper()
	config := models.DefaultConfig()
	config.PagesPerProcess = 2
	config.NumFrames = 2
	config.MaxProcesses = 3
	config.AdmissionPageNanos = 0
	config.SwapLatencyNanos = 10_000
	config.DirtyWriteBackNanos = 10_000
	config.ReportIntervalNanos = 0

	manager, launcher := newTestManager(t, config, models.RunOptions{TotalProcesses: 2, MaxSimultaneous: 2, LaunchIntervalNanos: 1})
	step(t, manager)
	step(t, manager)
	if manager.pages.Entry(2).Frame != 0 || manager.pages.Entry(3).Frame != 1 || manager.frames.Head() != 0 {
		t.Fatalf("Unexpected layout after admission")
	}
	return manager, launcher, config
}

// request manda un pedido y corre un paso del ciclo.
func request(t *testing.T, manager *MemoryManager, link models.WorkerLink, pid int, address uint32, operation models.Operation) {
	t.Helper()
	link.Requests <- models.MemoryRequest{Requester: pid, Address: address, Operation: operation}
	step(t, manager)
}

func blocked(manager *MemoryManager, pid int) bool {
	slot, found := manager.processes.Find(pid)
	return found && manager.processes.PCB(slot).Blocked
}

func stepWhileBlocked(t *testing.T, manager *MemoryManager, pid int) uint64 {
	t.Helper()
	var before uint64
	for i := 0; blocked(manager, pid); i++ {
		if i > 1000 {
			t.Fatalf("PID %d never woke up", pid)
		}
		before = manager.clock.Now()
		step(t, manager)
	}
	return before
}

func TestMemoryManager_DirtyVictimExtendsSwapWait(t *testing.T) {
	manager, launcher, config := newTwoFrameManager(t)
	p1, p2 := launcher.links[1], launcher.links[2]

	request(t, manager, p2, 2, 0, models.Write)
	if !hasReply(p2) || !manager.frames.Entry(0).Dirty {
		t.Fatalf("Expected a write hit that dirties frame 0")
	}

	before := manager.clock.Now()
	request(t, manager, p1, 1, 0, models.Read)

	slot, _ := manager.processes.Find(1)
	pcb := manager.processes.PCB(slot)
	if expected := before + config.SwapLatencyNanos + config.DirtyWriteBackNanos; pcb.EventWaitTime != expected {
		t.Errorf("Expected wait until %d, got %d", expected, pcb.EventWaitTime)
	}
	if manager.totals.DirtyWriteBacks != 1 {
		t.Errorf("Expected 1 dirty write back, got %d", manager.totals.DirtyWriteBacks)
	}

	// Con la víctima limpia solo se espera el swap.
	before = manager.clock.Now()
	request(t, manager, p2, 2, 0, models.Read)
	slot, _ = manager.processes.Find(2)
	if expected := before + config.SwapLatencyNanos; manager.processes.PCB(slot).EventWaitTime != expected {
		t.Errorf("Expected wait until %d, got %d", expected, manager.processes.PCB(slot).EventWaitTime)
	}
}

func TestMemoryManager_StolenInFlightFrameChargesWriteBack(t *testing.T) {
	manager, launcher, config := newTwoFrameManager(t)
	p1, p2 := launcher.links[1], launcher.links[2]

	request(t, manager, p2, 2, 0, models.Write)
	hasReply(p2)

	// PID 1 espera su página 0 en el marco 0.
	request(t, manager, p1, 1, 0, models.Read)
	// PID 2 vuelve a traer su página 0 al marco 1 y la modifica.
	request(t, manager, p2, 2, 0, models.Read)
	stepWhileBlocked(t, manager, 2)
	if !hasReply(p2) {
		t.Fatalf("Expected PID 2 to be answered after its swap")
	}
	request(t, manager, p2, 2, 0, models.Write)
	if !hasReply(p2) || !manager.frames.Entry(1).Dirty {
		t.Fatalf("Expected a write hit that dirties frame 1")
	}

	// El fallo de PID 2 sobre su página 1 se lleva el marco en vuelo de PID 1.
	if !blocked(manager, 1) {
		t.Fatalf("PID 1 should still be waiting for its swap")
	}
	request(t, manager, p2, 2, 1024, models.Read)
	if entry := manager.frames.Entry(0); entry.Page != 3 || entry.Valid {
		t.Fatalf("Expected frame 0 in flight for page 3, got %+v", entry)
	}

	writeBacks := manager.totals.DirtyWriteBacks
	before := stepWhileBlocked(t, manager, 1)

	if got := manager.clock.Now() - before; got != config.DirtyWriteBackNanos+config.LoopTickNanos {
		t.Errorf("Expected the waking step to charge %d, got %d", config.DirtyWriteBackNanos+config.LoopTickNanos, got)
	}
	if manager.totals.DirtyWriteBacks != writeBacks+1 {
		t.Errorf("Expected one more dirty write back, got %d", manager.totals.DirtyWriteBacks)
	}
	if !hasReply(p1) {
		t.Fatalf("Expected PID 1 to be answered")
	}
	if frame, resident := manager.pages.Lookup(0); !resident || frame != 1 {
		t.Errorf("PID 1 page 0 should be in frame 1, got %d", frame)
	}
	checkMapping(t, manager.pages, manager.frames)

	stepWhileBlocked(t, manager, 2)
	if !hasReply(p2) {
		t.Fatalf("Expected PID 2 to be answered")
	}
	if frame, resident := manager.pages.Lookup(3); !resident || frame != 0 {
		t.Errorf("PID 2 page 1 should be in frame 0, got %d", frame)
	}
	checkMapping(t, manager.pages, manager.frames)
}

func TestMemoryManager_TwoBlockedProcessesGetOneReplyEach(t *testing.T) {
	manager, launcher, _ := newTwoFrameManager(t)
	p1, p2 := launcher.links[1], launcher.links[2]

	request(t, manager, p1, 1, 0, models.Read)
	request(t, manager, p2, 2, 0, models.Write)
	if manager.processes.Blocked() != 2 {
		t.Fatalf("Expected both processes blocked, got %d", manager.processes.Blocked())
	}

	replies := map[int]int{}
	for i := 0; i < 100; i++ {
		step(t, manager)
		if hasReply(p1) {
			replies[1]++
		}
		if hasReply(p2) {
			replies[2]++
		}
	}

	if replies[1] != 1 || replies[2] != 1 {
		t.Errorf("Expected exactly one reply per process, got %v", replies)
	}
	if manager.processes.Blocked() != 0 {
		t.Errorf("Expected no blocked processes")
	}
	if manager.totals.PageFaults != 2 || manager.totals.Reads != 1 || manager.totals.Writes != 1 {
		t.Errorf("Unexpected totals %+v", manager.totals)
	}
	checkMapping(t, manager.pages, manager.frames)
}

func TestMemoryManager_PeriodicReport(t *testing.T) {
	config := models.DefaultConfig()
	config.AdmissionPageNanos = 0
	config.ReportIntervalNanos = 5 * config.LoopTickNanos
	reporter := NewReporter()
	manager := NewMemoryManager(config, models.RunOptions{TotalProcesses: 1, MaxSimultaneous: 1, LaunchIntervalNanos: 1}, newFakeLauncher(), reporter)

	for i := 0; i < 5; i++ {
		step(t, manager)
	}
	if _, published := reporter.Latest(); published {
		t.Fatalf("No report expected before %d", config.ReportIntervalNanos)
	}

	step(t, manager)
	snapshot, published := reporter.Latest()
	if !published {
		t.Fatalf("Expected a report at %d", config.ReportIntervalNanos)
	}
	reportedAt := uint64(snapshot.Seconds)*models.NanosPerSecond + uint64(snapshot.Nanoseconds)
	if reportedAt != config.ReportIntervalNanos {
		t.Errorf("Expected report at %d, got %d", config.ReportIntervalNanos, reportedAt)
	}
	if manager.nextReport != reportedAt+config.ReportIntervalNanos {
		t.Errorf("Expected next report at %d, got %d", reportedAt+config.ReportIntervalNanos, manager.nextReport)
	}
	if len(snapshot.Processes) != 1 || len(snapshot.Pages) != config.PagesPerProcess {
		t.Errorf("Report should include the admitted process")
	}

	for i := 0; i < 5; i++ {
		step(t, manager)
	}
	snapshot, _ = reporter.Latest()
	if next := uint64(snapshot.Seconds)*models.NanosPerSecond + uint64(snapshot.Nanoseconds); next != 2*config.ReportIntervalNanos {
		t.Errorf("Expected the second report at %d, got %d", 2*config.ReportIntervalNanos, next)
	}
}
