package services

import (
	"fmt"
	"log/slog"

	"github.com/sisoputnfrba/tp-oss-paginacion/oss/models"
)

// PageTable es un arreglo fijo de pagesPerProcess * maxProcesses entradas.
// Cada proceso ocupa un bloque contiguo de pagesPerProcess entradas a partir de su PageBase.
type PageTable struct {
	entries         []models.PageTableEntry
	pageSize        int
	pagesPerProcess int
}

func NewPageTable(config *models.Config) *PageTable {
	entries := make([]models.PageTableEntry, config.PagesPerProcess*config.MaxProcesses)
	for i := range entries {
		entries[i] = models.EmptyPageTableEntry()
	}
	return &PageTable{
		entries:         entries,
		pageSize:        config.PageSize,
		pagesPerProcess: config.PagesPerProcess,
	}
}

// Translate separa una dirección virtual en número de página y desplazamiento.
func (pt *PageTable) Translate(address uint32) (page int, offset int) {
	pageSize := uint32(pt.pageSize)
	return int(address / pageSize), int(address % pageSize)
}

// Assign reserva un bloque libre de entradas para pid, marcándolas válidas y no residentes.
func (pt *PageTable) Assign(pid int) (int, error) {
	for base := 0; base < len(pt.entries); base += pt.pagesPerProcess {
		if pt.entries[base].Owner != models.Unassigned {
			continue
		}
		for i := base; i < base+pt.pagesPerProcess; i++ {
			pt.entries[i] = models.PageTableEntry{Owner: pid, Frame: models.NoFrame, Valid: true}
		}
		slog.Debug("Bloque de tabla de páginas asignado", "pid", pid, "base", base)
		return base, nil
	}
	return 0, fmt.Errorf("%w: PID %d", ErrPageTableFull, pid)
}

// Index devuelve la entrada global de la página page de un proceso con base base.
func (pt *PageTable) Index(base, page int) (int, error) {
	if page < 0 || page >= pt.pagesPerProcess {
		return 0, fmt.Errorf("%w: página %d", ErrAddressOutOfRange, page)
	}
	return base + page, nil
}

// Lookup informa el marco de la entrada index, o false si acceder es un page fault.
func (pt *PageTable) Lookup(index int) (int, bool) {
	frame := pt.entries[index].Frame
	return frame, frame != models.NoFrame
}

// Touch marca la entrada como referenciada y, si es una escritura, como modificada.
func (pt *PageTable) Touch(index int, operation models.Operation) {
	pt.entries[index].Referenced = true
	if operation == models.Write {
		pt.entries[index].Dirty = true
	}
}

// Release devuelve a la tabla todas las entradas de pid. Retorna cuántas liberó.
func (pt *PageTable) Release(pid int) int {
	released := 0
	for i := range pt.entries {
		if pt.entries[i].Owner == pid {
			pt.entries[i] = models.EmptyPageTableEntry()
			released++
		}
	}
	return released
}

func (pt *PageTable) Entry(index int) models.PageTableEntry {
	return pt.entries[index]
}

func (pt *PageTable) Len() int {
	return len(pt.entries)
}

func (pt *PageTable) PagesPerProcess() int {
	return pt.pagesPerProcess
}

// setFrame y unmap mantienen el lado de la tabla de páginas del mapeo con la tabla de marcos.
func (pt *PageTable) setFrame(index, frame int) {
	pt.entries[index].Frame = frame
}

func (pt *PageTable) unmap(index int) {
	pt.entries[index].Frame = models.NoFrame
	pt.entries[index].Dirty = false
	pt.entries[index].Referenced = false
}
