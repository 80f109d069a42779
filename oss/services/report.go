package services

import (
	"fmt"
	"strings"
	"sync/atomic"

	"gopkg.in/yaml.v3"

	"github.com/sisoputnfrba/tp-oss-paginacion/oss/models"
)

// Reporter guarda la última foto publicada por el oss. La leen los handlers
// HTTP desde otras goroutines sin tocar las tablas vivas.
type Reporter struct {
	latest atomic.Pointer[models.Snapshot]
}

func NewReporter() *Reporter {
	return &Reporter{}
}

func (r *Reporter) Publish(snapshot models.Snapshot) {
	r.latest.Store(&snapshot)
}

// Latest devuelve la última foto, o false si todavía no hubo ningún reporte.
func (r *Reporter) Latest() (models.Snapshot, bool) {
	snapshot := r.latest.Load()
	if snapshot == nil {
		return models.Snapshot{}, false
	}
	return *snapshot, true
}

// BuildSnapshot copia el estado de las tablas al instante actual del reloj.
func BuildSnapshot(clock models.ClockReader, pages *PageTable, frames *FrameTable, processes *ProcessTable, totals models.Metrics) models.Snapshot {
	seconds, nanoseconds := clock.Time()

	snapshot := models.Snapshot{
		Seconds:     seconds,
		Nanoseconds: nanoseconds,
		QueueHead:   frames.Head(),
		Frames:      frames.Snapshot(),
		Processes:   processes.Occupied(),
		Totals:      totals,
	}

	perProcess := pages.PagesPerProcess()
	for i := 0; i < pages.Len(); i++ {
		entry := pages.Entry(i)
		if entry.Owner == models.Unassigned {
			continue
		}
		snapshot.Pages = append(snapshot.Pages, models.PageSnapshot{
			Index:          i,
			Page:           i % perProcess,
			PageTableEntry: entry,
		})
	}
	return snapshot
}

// FrameTableText arma la tabla de marcos como texto para el log.
func FrameTableText(snapshot models.Snapshot) string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "Estado de la memoria en %d:%d\n", snapshot.Seconds, snapshot.Nanoseconds)
	fmt.Fprintf(&builder, "%-11s %-8s %-6s %-7s %-6s %s\n", "", "Ocupado", "Sucio", "Válido", "Cabeza", "Página")

	for i, frame := range snapshot.Frames {
		head := ""
		if frame.IsQueueHead {
			head = "*"
		}
		page := "-"
		if frame.Page != models.NoPage {
			page = fmt.Sprintf("%d", frame.Page)
		}
		fmt.Fprintf(&builder, "Marco %-5d %-8s %-6s %-7s %-6s %s\n",
			i, yesNo(frame.Occupied), yesNo(frame.Dirty), yesNo(frame.Valid), head, page)
	}
	return builder.String()
}

// PageTableText arma una línea por proceso con el marco de cada página (-1 si no está cargada).
func PageTableText(snapshot models.Snapshot) string {
	var builder strings.Builder
	currentOwner := models.Unassigned

	for _, page := range snapshot.Pages {
		if page.Owner != currentOwner {
			if currentOwner != models.Unassigned {
				builder.WriteString(" ]\n")
			}
			currentOwner = page.Owner
			fmt.Fprintf(&builder, "P%d tabla de páginas: [", page.Owner)
		}
		fmt.Fprintf(&builder, " %d", page.Frame)
	}
	if currentOwner != models.Unassigned {
		builder.WriteString(" ]\n")
	}
	return builder.String()
}

// ProcessTableText resume los PCB ocupados.
func ProcessTableText(snapshot models.Snapshot) string {
	var builder strings.Builder
	for _, pcb := range snapshot.Processes {
		if pcb.Blocked {
			fmt.Fprintf(&builder, "P%d BLOQUEADO esperando página %d hasta %d\n", pcb.Pid, pcb.NeededPage, pcb.EventWaitTime)
			continue
		}
		fmt.Fprintf(&builder, "P%d LISTO accesos=%d fallos=%d\n", pcb.Pid, pcb.Metrics.Accesses, pcb.Metrics.PageFaults)
	}
	return builder.String()
}

// SnapshotYAML serializa la foto completa en yaml.
func SnapshotYAML(snapshot models.Snapshot) ([]byte, error) {
	return yaml.Marshal(snapshot)
}

func yesNo(value bool) string {
	if value {
		return "Sí"
	}
	return "No"
}
