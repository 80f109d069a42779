package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

// InitServer levanta el servidor y bloquea hasta que se cancele ctx o falle el listen.
// Al cancelarse ctx el servidor se apaga ordenadamente y devuelve nil.
//
// Parámetros:
//   - ctx: contexto que apaga el servidor
//   - port: puerto donde se iniciará el servidor
//   - handler: mux con las rutas registradas
//
// Ejemplo:
//
//	func main() {
//		mux := http.NewServeMux()
//		mux.HandleFunc("GET /oss", handlers.HandshakeHandler("oss", "OSS en funcionamiento"))
//		err := server.InitServer(ctx, 8080, mux)
//		if err != nil {
//			slog.Error(fmt.Sprintf("error initializing server: %v", err))
//		}
//	}
func InitServer(ctx context.Context, port int, handler http.Handler) error {
	addr := ":" + strconv.Itoa(port)
	httpServer := &http.Server{Addr: addr, Handler: handler}

	errChan := make(chan error, 1)
	go func() {
		errChan <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("error al escuchar en el puerto %s: %w", addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errChan; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		slog.Debug("Servidor HTTP detenido", "puerto", port)
		return nil
	}
}

// SendJsonResponse retorna la respuesta del servidor en formato JSON
//
// Parámetros:
//   - writer: el http.ResponseWriter con el que se escribe la respuesta HTTP
//   - data: cualquier estructura de datos que querés enviar al cliente, se convierte automáticamente a JSON.
func SendJsonResponse(writer http.ResponseWriter, data any) {
	response, err := json.Marshal(data)
	if err != nil {
		http.Error(writer, "Error al convertir datos a JSON", http.StatusInternalServerError)
		return
	}
	SendResponse(writer, "application/json", response)
}

// SendResponse escribe body con el content type indicado y status 200.
func SendResponse(writer http.ResponseWriter, contentType string, body []byte) {
	writer.Header().Set("Content-Type", contentType)
	writer.WriteHeader(http.StatusOK)
	writer.Write(body)
}
