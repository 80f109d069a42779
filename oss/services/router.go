package services

import (
	"fmt"

	"github.com/sisoputnfrba/tp-oss-paginacion/oss/models"
)

// Router es la cola de mensajes entre el oss y los procesos de usuario.
// Todos los pedidos llegan por un único canal; cada proceso tiene su propio
// canal de respuestas. El mapa de respuestas solo lo toca el oss.
type Router struct {
	requests chan models.Message
	replies  map[int]chan models.Response
}

func NewRouter(buffer int) *Router {
	return &Router{
		requests: make(chan models.Message, buffer),
		replies:  make(map[int]chan models.Response),
	}
}

// Register crea el canal de respuestas de pid y devuelve los extremos que ve el proceso.
func (r *Router) Register(pid int) models.WorkerLink {
	reply := make(chan models.Response, 1)
	r.replies[pid] = reply
	return models.WorkerLink{Requests: r.requests, Replies: reply}
}

func (r *Router) Unregister(pid int) {
	delete(r.replies, pid)
}

// Poll saca el próximo pedido sin bloquear. Que no haya ninguno no es un error.
func (r *Router) Poll() (models.Message, bool) {
	select {
	case message := <-r.requests:
		return message, true
	default:
		return nil, false
	}
}

// Reply avisa a pid que su pedido quedó resuelto.
func (r *Router) Reply(pid int) error {
	reply, exists := r.replies[pid]
	if !exists {
		return fmt.Errorf("%w: PID %d sin canal registrado", ErrReplyUndeliverable, pid)
	}
	select {
	case reply <- models.Response{Target: pid}:
		return nil
	default:
		return fmt.Errorf("%w: PID %d tiene una respuesta sin leer", ErrReplyUndeliverable, pid)
	}
}

// Pending es la cantidad de pedidos encolados.
func (r *Router) Pending() int {
	return len(r.requests)
}
