package models

// Snapshot es la foto de las tablas que el oss publica en cada reporte.
type Snapshot struct {
	Seconds     uint32                `json:"seconds" yaml:"seconds"`
	Nanoseconds uint32                `json:"nanoseconds" yaml:"nanoseconds"`
	QueueHead   int                   `json:"queue_head" yaml:"queue_head"`
	Frames      []FrameTableEntry     `json:"frames" yaml:"frames"`
	Pages       []PageSnapshot        `json:"pages" yaml:"pages"`
	Processes   []ProcessControlBlock `json:"processes" yaml:"processes"`
	Totals      Metrics               `json:"totals" yaml:"totals"`
}

// PageSnapshot es una entrada asignada de la tabla de páginas junto con su índice.
type PageSnapshot struct {
	Index int `json:"index" yaml:"index"`
	Page  int `json:"page" yaml:"page"` // número de página dentro del proceso

	PageTableEntry `yaml:",inline"`
}

// ClockStatus es la respuesta de GET /oss/reloj.
type ClockStatus struct {
	Seconds     uint32 `json:"seconds" yaml:"seconds"`
	Nanoseconds uint32 `json:"nanoseconds" yaml:"nanoseconds"`
	TotalNanos  uint64 `json:"total_nanos" yaml:"total_nanos"`
}
