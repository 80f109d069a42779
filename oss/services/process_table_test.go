package services

import (
	"errors"
	"slices"
	"testing"

	"github.com/sisoputnfrba/tp-oss-paginacion/oss/models"
)

func TestProcessTable_AdmitUntilFull(t *testing.T) {
	processes := NewProcessTable(2)

	if slot, err := processes.Admit(1, 0); err != nil || slot != 0 {
		t.Errorf("Expected slot 0, got %d (%v)", slot, err)
	}
	if slot, err := processes.Admit(2, 32); err != nil || slot != 1 {
		t.Errorf("Expected slot 1, got %d (%v)", slot, err)
	}
	if _, err := processes.Admit(3, 64); !errors.Is(err, ErrProcessTableFull) {
		t.Errorf("Expected ErrProcessTableFull, got %v", err)
	}
	if processes.Active() != 2 {
		t.Errorf("Expected 2 active processes, got %d", processes.Active())
	}

	slot, found := processes.Find(2)
	if !found || processes.PCB(slot).PageBase != 32 {
		t.Errorf("Expected PID 2 with page base 32")
	}
}

func TestProcessTable_ScanExpired(t *testing.T) {
	processes := NewProcessTable(3)
	clock := &models.SimulatedClock{}
	processes.Admit(1, 0)
	processes.Admit(2, 4)
	processes.Admit(3, 8)

	processes.Block(2, models.MemoryRequest{Requester: 3, Address: 10, Operation: models.Write}, 8, 1, 500, clock)
	clock.Advance(100)
	processes.Block(0, models.MemoryRequest{Requester: 1, Address: 20}, 0, 0, 500, clock)

	if expired := slices.Collect(processes.ScanExpired(499)); len(expired) != 0 {
		t.Errorf("Expected nothing expired at 499, got %v", expired)
	}
	if expired := slices.Collect(processes.ScanExpired(500)); !slices.Equal(expired, []int{2}) {
		t.Errorf("Expected slot 2 expired at 500, got %v", expired)
	}
	if expired := slices.Collect(processes.ScanExpired(600)); !slices.Equal(expired, []int{0, 2}) {
		t.Errorf("Expected slots [0 2] in slot order at 600, got %v", expired)
	}

	pcb := processes.PCB(2)
	if !pcb.Blocked || pcb.EventWaitTime != 500 || pcb.PendingOp != models.Write || pcb.PendingAddr != 10 {
		t.Errorf("Unexpected blocked PCB %+v", *pcb)
	}
	if processes.Blocked() != 2 {
		t.Errorf("Expected 2 blocked processes, got %d", processes.Blocked())
	}

	processes.Unblock(2)
	if pcb.Blocked || pcb.NeededPage != models.NoPage || pcb.PendingFrame != models.NoFrame {
		t.Errorf("Unblock should clear the wait, got %+v", *pcb)
	}
	if expired := slices.Collect(processes.ScanExpired(600)); !slices.Equal(expired, []int{0}) {
		t.Errorf("Expected only slot 0 after unblocking, got %v", expired)
	}
}

func TestProcessTable_ReleaseIsIdempotent(t *testing.T) {
	config := newSmallConfig()
	pages := NewPageTable(config)
	frames := NewFrameTable(config.NumFrames)
	processes := NewProcessTable(config.MaxProcesses)

	base1, _ := pages.Assign(1)
	processes.Admit(1, base1)
	base2, _ := pages.Assign(2)
	processes.Admit(2, base2)
	loadPage(t, pages, frames, base1)
	loadPage(t, pages, frames, base2)
	loadPage(t, pages, frames, base2+1)

	if !processes.Release(1, pages, frames) {
		t.Fatalf("Expected PID 1 to be released")
	}
	if processes.Release(1, pages, frames) {
		t.Errorf("Second release of PID 1 should do nothing")
	}
	if processes.Release(99, pages, frames) {
		t.Errorf("Releasing an unknown PID should do nothing")
	}

	if _, found := processes.Find(1); found {
		t.Errorf("PID 1 should not be admitted anymore")
	}
	if _, found := processes.Find(2); !found {
		t.Errorf("PID 2 should still be admitted")
	}
	if frames.FreeCount() != 2 {
		t.Errorf("Expected 2 free frames, got %d", frames.FreeCount())
	}
	for i := base2; i < base2+2; i++ {
		if _, resident := pages.Lookup(i); !resident {
			t.Errorf("PID 2 page %d should still be resident", i)
		}
	}
	checkMapping(t, pages, frames)
}

func TestProcessTable_OccupiedReturnsCopies(t *testing.T) {
	processes := NewProcessTable(3)
	processes.Admit(7, 0)

	occupied := processes.Occupied()
	if len(occupied) != 1 || occupied[0].Pid != 7 {
		t.Fatalf("Expected one PCB for PID 7, got %+v", occupied)
	}
	occupied[0].Blocked = true
	if processes.PCB(0).Blocked {
		t.Errorf("Occupied should return copies")
	}
}
