package models

// Operation es el tipo de acceso pedido. Los valores son parte del contrato de mensajes.
type Operation int

const (
	Read  Operation = 0
	Write Operation = 1
)

func (o Operation) String() string {
	if o == Write {
		return "WRITE"
	}
	return "READ"
}

// Message es un pedido de un proceso de usuario al oss: MemoryRequest o TerminationNotice.
type Message interface {
	RequesterID() int
	isMessage()
}

type MemoryRequest struct {
	Requester int
	Address   uint32
	Operation Operation
}

type TerminationNotice struct {
	Requester int
}

func (m MemoryRequest) RequesterID() int     { return m.Requester }
func (m TerminationNotice) RequesterID() int { return m.Requester }
func (MemoryRequest) isMessage()             {}
func (TerminationNotice) isMessage()         {}

// Response no lleva datos: que llegue significa que el pedido quedó resuelto.
type Response struct {
	Target int
}

// WorkerLink son los extremos del canal que ve un proceso de usuario.
type WorkerLink struct {
	Requests chan<- Message
	Replies  <-chan Response
}
