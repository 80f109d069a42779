package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sisoputnfrba/tp-oss-paginacion/oss/models"
	"github.com/sisoputnfrba/tp-oss-paginacion/oss/services"
	"github.com/sisoputnfrba/tp-oss-paginacion/utils/web/server"
)

const (
	FormatJson = "json"
	FormatYaml = "yaml"
	FormatText = "texto"
)

// ClockHandler devuelve el reloj simulado.
func ClockHandler(clock models.ClockReader) func(http.ResponseWriter, *http.Request) {
	return func(writer http.ResponseWriter, request *http.Request) {
		seconds, nanoseconds := clock.Time()
		server.SendJsonResponse(writer, models.ClockStatus{
			Seconds:     seconds,
			Nanoseconds: nanoseconds,
			TotalNanos:  uint64(seconds)*models.NanosPerSecond + uint64(nanoseconds),
		})
	}
}

// ReportHandler devuelve el último reporte publicado. El formato se elige con
// ?formato=json|yaml|texto, json por defecto.
func ReportHandler(reporter *services.Reporter) func(http.ResponseWriter, *http.Request) {
	return func(writer http.ResponseWriter, request *http.Request) {
		snapshot, ok := reporter.Latest()
		if !ok {
			http.Error(writer, "Todavía no hay reportes", http.StatusServiceUnavailable)
			return
		}

		format := request.URL.Query().Get("formato")
		switch format {
		case "", FormatJson:
			server.SendJsonResponse(writer, snapshot)
		case FormatYaml:
			body, err := services.SnapshotYAML(snapshot)
			if err != nil {
				slog.Error(fmt.Sprintf("Error al serializar el reporte: %v", err))
				http.Error(writer, "Error al convertir datos a YAML", http.StatusInternalServerError)
				return
			}
			server.SendResponse(writer, "application/yaml", body)
		case FormatText:
			body := services.FrameTableText(snapshot) + services.PageTableText(snapshot) + services.ProcessTableText(snapshot)
			server.SendResponse(writer, "text/plain; charset=utf-8", []byte(body))
		default:
			http.Error(writer, fmt.Sprintf("Formato desconocido: %s", format), http.StatusBadRequest)
		}
	}
}
