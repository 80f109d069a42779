package handlers

import (
	"net/http"

	"github.com/sisoputnfrba/tp-oss-paginacion/utils/web/server"
)

// Handshake es la respuesta de HandshakeHandler.
type Handshake struct {
	Module  string `json:"modulo"`
	Message string `json:"mensaje"`
}

// HandshakeHandler se usa para chequear la conexión al servidor
//
// Parámetros:
//   - module: nombre del módulo que responde
//   - message: el mensaje que querés devolver en la respuesta
//
// Ejemplo:
//
//	func main() {
//		mux := http.NewServeMux()
//		mux.HandleFunc("GET /oss", handlers.HandshakeHandler("oss", "OSS en funcionamiento"))
//	}
func HandshakeHandler(module string, message string) func(http.ResponseWriter, *http.Request) {
	return func(writer http.ResponseWriter, request *http.Request) {
		server.SendJsonResponse(writer, Handshake{Module: module, Message: message})
	}
}
