package models

// Valores centinela de los índices de las tablas.
const (
	NoFrame    = -1
	NoPage     = -1
	Unassigned = -1
)

// PageTableEntry es la entrada de una página virtual de un proceso.
// Frame == NoFrame con Valid == true es una página del proceso que no está cargada (page fault).
type PageTableEntry struct {
	Owner      int  `json:"owner" yaml:"owner"` // PID dueño o Unassigned
	Frame      int  `json:"frame" yaml:"frame"`
	Dirty      bool `json:"dirty" yaml:"dirty"`
	Valid      bool `json:"valid" yaml:"valid"`
	Referenced bool `json:"referenced" yaml:"referenced"` // se registra pero no interviene en el desalojo
}

// FrameTableEntry es un marco de memoria física.
// Occupied con Valid == false indica un swap en curso hacia ese marco.
type FrameTableEntry struct {
	Occupied    bool `json:"occupied" yaml:"occupied"`
	Page        int  `json:"page" yaml:"page"` // índice en la tabla de páginas o NoPage
	Dirty       bool `json:"dirty" yaml:"dirty"`
	Valid       bool `json:"valid" yaml:"valid"`
	IsQueueHead bool `json:"is_queue_head" yaml:"is_queue_head"`
}

type ProcessControlBlock struct {
	Occupied      bool      `json:"occupied" yaml:"occupied"`
	Pid           int       `json:"pid" yaml:"pid"`
	PageBase      int       `json:"page_base" yaml:"page_base"` // primera entrada del proceso en la tabla de páginas
	Blocked       bool      `json:"blocked" yaml:"blocked"`
	EventWaitTime uint64    `json:"event_wait_time" yaml:"event_wait_time"`
	NeededPage    int       `json:"needed_page" yaml:"needed_page"`
	PendingFrame  int       `json:"pending_frame" yaml:"pending_frame"`
	PendingOp     Operation `json:"pending_op" yaml:"pending_op"`
	PendingAddr   uint32    `json:"pending_addr" yaml:"pending_addr"`
	Metrics       Metrics   `json:"metrics" yaml:"metrics"`
}

// Metrics acumula los accesos de un proceso o de toda la simulación.
type Metrics struct {
	Accesses        int `json:"accesses" yaml:"accesses"`
	Reads           int `json:"reads" yaml:"reads"`
	Writes          int `json:"writes" yaml:"writes"`
	PageFaults      int `json:"page_faults" yaml:"page_faults"`
	Evictions       int `json:"evictions" yaml:"evictions"`
	DirtyWriteBacks int `json:"dirty_write_backs" yaml:"dirty_write_backs"`
}

func EmptyPageTableEntry() PageTableEntry {
	return PageTableEntry{Owner: Unassigned, Frame: NoFrame}
}

func EmptyFrameTableEntry() FrameTableEntry {
	return FrameTableEntry{Page: NoPage}
}

func EmptyProcessControlBlock() ProcessControlBlock {
	return ProcessControlBlock{Pid: Unassigned, NeededPage: NoPage, PendingFrame: NoFrame}
}
