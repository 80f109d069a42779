package services

import (
	"fmt"
	"iter"

	"github.com/sisoputnfrba/tp-oss-paginacion/oss/models"
)

// ProcessTable tiene un PCB por lugar de admisión (MAX_PROCESSES lugares).
type ProcessTable struct {
	slots []models.ProcessControlBlock
}

func NewProcessTable(maxProcesses int) *ProcessTable {
	slots := make([]models.ProcessControlBlock, maxProcesses)
	for i := range slots {
		slots[i] = models.EmptyProcessControlBlock()
	}
	return &ProcessTable{slots: slots}
}

// Admit ocupa el primer PCB libre. Que no haya lugar es un error de contabilidad
// del llamador, que ya limita la cantidad de procesos simultáneos.
func (p *ProcessTable) Admit(pid, pageBase int) (int, error) {
	for i := range p.slots {
		if p.slots[i].Occupied {
			continue
		}
		p.slots[i] = models.EmptyProcessControlBlock()
		p.slots[i].Occupied = true
		p.slots[i].Pid = pid
		p.slots[i].PageBase = pageBase
		return i, nil
	}
	return 0, fmt.Errorf("%w: PID %d", ErrProcessTableFull, pid)
}

// Find devuelve el lugar que ocupa pid.
func (p *ProcessTable) Find(pid int) (int, bool) {
	for i := range p.slots {
		if p.slots[i].Occupied && p.slots[i].Pid == pid {
			return i, true
		}
	}
	return 0, false
}

func (p *ProcessTable) PCB(slot int) *models.ProcessControlBlock {
	return &p.slots[slot]
}

// Block deja al proceso esperando el swap de neededPage hasta clock.Now() + swapLatency.
func (p *ProcessTable) Block(slot int, request models.MemoryRequest, neededPage, frame int, swapLatency uint64, clock models.ClockReader) {
	pcb := &p.slots[slot]
	pcb.Blocked = true
	pcb.NeededPage = neededPage
	pcb.PendingFrame = frame
	pcb.PendingOp = request.Operation
	pcb.PendingAddr = request.Address
	pcb.EventWaitTime = clock.Now() + swapLatency
}

// ScanExpired recorre, en orden de lugar, los procesos bloqueados cuyo swap ya
// terminó a currentTime. La secuencia es perezosa y se puede recorrer de nuevo.
func (p *ProcessTable) ScanExpired(currentTime uint64) iter.Seq[int] {
	return func(yield func(int) bool) {
		for i := range p.slots {
			pcb := &p.slots[i]
			if !pcb.Occupied || !pcb.Blocked || pcb.EventWaitTime > currentTime {
				continue
			}
			if !yield(i) {
				return
			}
		}
	}
}

// Unblock limpia el estado de espera del proceso.
func (p *ProcessTable) Unblock(slot int) {
	pcb := &p.slots[slot]
	pcb.Blocked = false
	pcb.EventWaitTime = 0
	pcb.NeededPage = models.NoPage
	pcb.PendingFrame = models.NoFrame
}

// Release libera los marcos y entradas de pid y vacía su PCB. Si pid no está
// admitido no toca nada y devuelve false.
func (p *ProcessTable) Release(pid int, pages *PageTable, frames *FrameTable) bool {
	slot, found := p.Find(pid)
	if !found {
		return false
	}
	frames.ReleaseOwned(pages, pid)
	pages.Release(pid)
	p.slots[slot] = models.EmptyProcessControlBlock()
	return true
}

// Active cuenta los PCB ocupados.
func (p *ProcessTable) Active() int {
	active := 0
	for _, pcb := range p.slots {
		if pcb.Occupied {
			active++
		}
	}
	return active
}

func (p *ProcessTable) Blocked() int {
	blocked := 0
	for _, pcb := range p.slots {
		if pcb.Occupied && pcb.Blocked {
			blocked++
		}
	}
	return blocked
}

// Occupied devuelve copias de los PCB ocupados en orden de lugar.
func (p *ProcessTable) Occupied() []models.ProcessControlBlock {
	occupied := make([]models.ProcessControlBlock, 0, len(p.slots))
	for _, pcb := range p.slots {
		if pcb.Occupied {
			occupied = append(occupied, pcb)
		}
	}
	return occupied
}
