package config

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadConfig carga el archivo en config eligiendo el decoder según la extensión.
// Los valores que no aparecen en el archivo conservan lo que ya tenía config.
//
// Parámetros:
//   - filePath: ubicacion donde se encuentra el archivo de configuracion (.json, .yaml o .yml)
//   - config: puntero a cualquier tipo de estructura
//
// Ejemplo:
//
//	func main() {
//		ossConfig := models.DefaultConfig()
//		if err := config.LoadConfig("oss/configs/oss.json", ossConfig); err != nil {
//			fmt.Fprintln(os.Stderr, err)
//			os.Exit(1)
//		}
//	}
func LoadConfig(filePath string, config any) error {
	configFile, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("error al abrir el archivo de configuración %s: %w", filePath, err)
	}
	defer configFile.Close()

	if isYamlFile(filePath) {
		if err := yaml.NewDecoder(configFile).Decode(config); err != nil {
			return fmt.Errorf("error decodificando yaml %s: %w", filePath, err)
		}
		return nil
	}
	if err := json.NewDecoder(configFile).Decode(config); err != nil {
		return fmt.Errorf("error decodificando json %s: %w", filePath, err)
	}

	return nil
}
