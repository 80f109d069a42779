package services

import (
	"golang.org/x/exp/slices"

	"github.com/sisoputnfrba/tp-oss-paginacion/oss/models"
)

// FrameTable es el pool fijo de marcos organizado como cola FIFO circular.
// Exactamente un marco tiene IsQueueHead: la próxima víctima. El bit de
// referencia de las páginas no se consulta para elegirla.
type FrameTable struct {
	entries []models.FrameTableEntry
	head    int
}

// Eviction describe el marco desalojado por EvictFrame.
type Eviction struct {
	Frame       int
	VictimPage  int // models.NoPage si el marco estaba libre
	VictimOwner int
	Dirty       bool // hay que escribir la víctima a disco
	InFlight    bool // la víctima todavía no había terminado de cargarse
}

func NewFrameTable(numFrames int) *FrameTable {
	entries := make([]models.FrameTableEntry, numFrames)
	for i := range entries {
		entries[i] = models.EmptyFrameTableEntry()
	}
	entries[0].IsQueueHead = true
	return &FrameTable{entries: entries}
}

// AllocateFrame toma el primer marco libre para page sin mover la cabeza de la cola.
// El marco queda ocupado pero no válido hasta Complete.
func (ft *FrameTable) AllocateFrame(page int) (int, bool) {
	for i := range ft.entries {
		if !ft.entries[i].Occupied {
			ft.reserve(i, page)
			return i, true
		}
	}
	return models.NoFrame, false
}

// EvictFrame desaloja el marco cabeza de la cola, invalida la página que lo usaba,
// lo reasigna a page y avanza la cabeza a (cabeza + 1) mod NUM_FRAMES.
func (ft *FrameTable) EvictFrame(pages *PageTable, page int) Eviction {
	victim := ft.head
	entry := ft.entries[victim]

	eviction := Eviction{Frame: victim, VictimPage: entry.Page, VictimOwner: models.Unassigned}
	if entry.Occupied && entry.Page != models.NoPage {
		eviction.VictimOwner = pages.Entry(entry.Page).Owner
		eviction.Dirty = entry.Dirty
		eviction.InFlight = !entry.Valid
		if current, resident := pages.Lookup(entry.Page); resident && current == victim {
			pages.unmap(entry.Page)
		}
	}

	ft.reserve(victim, page)
	ft.advanceHead()
	return eviction
}

// Complete termina el swap de page hacia frame y cierra el mapeo en ambas tablas.
// Devuelve false si el marco fue desalojado mientras tanto.
func (ft *FrameTable) Complete(frame int, pages *PageTable, page int) bool {
	if frame < 0 || frame >= len(ft.entries) {
		return false
	}
	entry := &ft.entries[frame]
	if !entry.Occupied || entry.Page != page {
		return false
	}
	entry.Valid = true
	pages.setFrame(page, frame)
	return true
}

func (ft *FrameTable) MarkDirty(frame int) {
	ft.entries[frame].Dirty = true
}

// ReleaseOwned libera los marcos que respaldan páginas de pid. La cabeza no se mueve.
func (ft *FrameTable) ReleaseOwned(pages *PageTable, pid int) int {
	released := 0
	for i := range ft.entries {
		entry := &ft.entries[i]
		if !entry.Occupied || entry.Page == models.NoPage {
			continue
		}
		if pages.Entry(entry.Page).Owner != pid {
			continue
		}
		isHead := entry.IsQueueHead
		*entry = models.EmptyFrameTableEntry()
		entry.IsQueueHead = isHead
		released++
	}
	return released
}

func (ft *FrameTable) Head() int {
	return ft.head
}

func (ft *FrameTable) Entry(frame int) models.FrameTableEntry {
	return ft.entries[frame]
}

func (ft *FrameTable) Len() int {
	return len(ft.entries)
}

func (ft *FrameTable) FreeCount() int {
	free := 0
	for _, entry := range ft.entries {
		if !entry.Occupied {
			free++
		}
	}
	return free
}

// Snapshot devuelve una copia de la tabla de marcos.
func (ft *FrameTable) Snapshot() []models.FrameTableEntry {
	return slices.Clone(ft.entries)
}

func (ft *FrameTable) reserve(frame, page int) {
	isHead := ft.entries[frame].IsQueueHead
	ft.entries[frame] = models.FrameTableEntry{Occupied: true, Page: page, IsQueueHead: isHead}
}

func (ft *FrameTable) advanceHead() {
	ft.entries[ft.head].IsQueueHead = false
	ft.head = (ft.head + 1) % len(ft.entries)
	ft.entries[ft.head].IsQueueHead = true
}
