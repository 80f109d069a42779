package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

var httpClient = &http.Client{Timeout: 5 * time.Second}

// DoRequest es una función genérica para realizar peticiones HTTP (GET, POST, PUT, DELETE, etc.) desde un cliente.
// Retorna la respuesta del servidor. Si el status no es 200 devuelve la respuesta y un error.
//
// Parámetros:
//   - ctx: contexto de la petición
//   - port: el puerto al que se hará la petición
//   - ip: la IP o dominio del servidor
//   - metodo: metodo HTTP
//   - query: parte final de la URL
//   - bodies ...[]byte: (opcional) body del request, puede pasarse vacío.
//
// Ejemplo:
//
//	func main() {
//		response, err := client.DoRequest(ctx, 8080, "127.0.0.1", "GET", "oss/reloj")
//		if err != nil {
//			slog.Error(fmt.Sprintf("Ocurrió un error: %v", err))
//			return
//		}
//		defer response.Body.Close()
//	}
func DoRequest(ctx context.Context, port int, ip string, metodo string, query string, bodies ...[]byte) (*http.Response, error) {
	url := fmt.Sprintf("http://%s:%d/%s", ip, port, query)

	req, err := http.NewRequestWithContext(ctx, metodo, url, ifBody(bodies...))
	if err != nil {
		slog.Error(fmt.Sprintf("error creando request a ip: %s puerto: %d", ip, port))
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	respuesta, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error enviando request a ip: %s puerto: %d: %w", ip, port, err)
	}

	if respuesta.StatusCode != http.StatusOK {
		return respuesta, fmt.Errorf("status error: %d %s", respuesta.StatusCode, http.StatusText(respuesta.StatusCode))
	}

	return respuesta, nil
}

// GetJson hace un GET y decodifica el cuerpo JSON en out.
func GetJson(ctx context.Context, port int, ip string, query string, out any) error {
	respuesta, err := DoRequest(ctx, port, ip, http.MethodGet, query)
	if respuesta != nil {
		defer respuesta.Body.Close()
	}
	if err != nil {
		return err
	}
	if err := json.NewDecoder(respuesta.Body).Decode(out); err != nil {
		return fmt.Errorf("error decodificando respuesta de %s: %w", query, err)
	}
	return nil
}

func ifBody(bodies ...[]byte) io.Reader {
	if len(bodies) == 0 {
		return nil
	}
	return bytes.NewBuffer(bodies[0])
}
