package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseValue intenta leer valueStr como JSON (números, booleanos) y si no puede lo deja como string.
func ParseValue(valueStr string) any {
	var parsedValue any
	if err := json.Unmarshal([]byte(valueStr), &parsedValue); err != nil {
		return valueStr
	}
	return parsedValue
}

// UpdateFile reemplaza en el archivo de configuración las claves de updates que ya existan.
// Las claves anidadas se escriben con punto, por ejemplo "user_process.read_probability".
// Devuelve las claves modificadas; si no hubo ninguna el archivo no se reescribe.
func UpdateFile(filePath string, updates map[string]any) ([]string, error) {
	fileContent, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error al leer el archivo %s: %w", filePath, err)
	}

	isYaml := isYamlFile(filePath)
	data := map[string]any{}
	if isYaml {
		err = yaml.Unmarshal(fileContent, &data)
	} else {
		err = json.Unmarshal(fileContent, &data)
	}
	if err != nil {
		return nil, fmt.Errorf("error al parsear %s: %w", filePath, err)
	}

	var modified []string
	for key, value := range updates {
		if setKey(data, strings.Split(key, "."), value) {
			modified = append(modified, key)
		}
	}
	if len(modified) == 0 {
		return nil, nil
	}

	var newContent []byte
	if isYaml {
		newContent, err = yaml.Marshal(data)
	} else {
		newContent, err = json.MarshalIndent(data, "", "  ")
	}
	if err != nil {
		return nil, fmt.Errorf("error al serializar %s: %w", filePath, err)
	}
	if err := os.WriteFile(filePath, newContent, 0644); err != nil {
		return nil, fmt.Errorf("error al escribir el archivo %s: %w", filePath, err)
	}
	return modified, nil
}

func setKey(data map[string]any, path []string, value any) bool {
	current, exists := data[path[0]]
	if !exists {
		return false
	}
	if len(path) == 1 {
		data[path[0]] = value
		return true
	}
	nested, ok := current.(map[string]any)
	if !ok {
		return false
	}
	return setKey(nested, path[1:], value)
}

func isYamlFile(filePath string) bool {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
