package list

import (
	"errors"
	"sync"

	"golang.org/x/exp/slices"
)

// ErrEmptyList se devuelve al sacar elementos de una lista vacía.
var ErrEmptyList = errors.New("list is empty")

// List define las operaciones de cola que se usan entre goroutines.
type List[T any] interface {
	Add(item T)                                 // Añadir un elemento al final de la lista
	Dequeue() (T, error)                        // Eliminar y devolver el primer elemento de la lista
	GetAll() []T                                // Copia de todos los elementos
	RemoveWhere(match func(T) bool) int         // Eliminar todos los elementos que cumplan match
	Size() int                                  // Tamaño de la lista
}

// ArrayList implementa List sobre un slice protegido por un RWMutex.
// El valor cero está listo para usarse.
type ArrayList[T any] struct {
	mu    sync.RWMutex
	items []T
}

// Add inserta un elemento al final de la lista.
//
// Ejemplo:
//
//	func main() {
//		exited := &list.ArrayList[int]{}
//		exited.Add(3)
//	}
func (list *ArrayList[T]) Add(item T) {
	list.mu.Lock()
	defer list.mu.Unlock()

	list.items = append(list.items, item)
}

// Dequeue elimina y devuelve el primer elemento de la cola.
// Nunca bloquea: si la lista está vacía devuelve el valor "cero" de T y ErrEmptyList.
//
// Ejemplo:
//
//	func main() {
//		numbers := &list.ArrayList[int]{}
//		numbers.Add(10)
//		numbers.Add(20)
//		value, _ := numbers.Dequeue()
//		fmt.Println("Valor: ", value) //output: 10
//	}
func (list *ArrayList[T]) Dequeue() (T, error) {
	list.mu.Lock()
	defer list.mu.Unlock()

	if len(list.items) == 0 {
		var zero T
		return zero, ErrEmptyList
	}
	value := list.items[0]
	var zero T
	list.items[0] = zero
	list.items = list.items[1:]
	return value, nil
}

// GetAll retorna una copia de todos los elementos que se encuentra en la lista
func (list *ArrayList[T]) GetAll() []T {
	list.mu.RLock()
	defer list.mu.RUnlock()

	return slices.Clone(list.items)
}

// RemoveWhere elimina todos los elementos que cumplen match y devuelve cuántos quitó.
func (list *ArrayList[T]) RemoveWhere(match func(T) bool) int {
	list.mu.Lock()
	defer list.mu.Unlock()

	before := len(list.items)
	list.items = slices.DeleteFunc(list.items, match)
	return before - len(list.items)
}

// Size devuelve el tamaño de la lista.
func (list *ArrayList[T]) Size() int {
	list.mu.RLock()
	defer list.mu.RUnlock()

	return len(list.items)
}
