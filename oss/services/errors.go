package services

import "errors"

var (
	ErrProcessTableFull   = errors.New("tabla de procesos llena")
	ErrPageTableFull      = errors.New("tabla de páginas llena")
	ErrReplyUndeliverable = errors.New("no se pudo entregar la respuesta")
	ErrUnknownProcess     = errors.New("proceso desconocido")
	ErrAddressOutOfRange  = errors.New("dirección fuera del espacio del proceso")
)
