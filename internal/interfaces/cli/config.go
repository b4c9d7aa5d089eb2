package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

const (
	configName = ".quotectl"
	envPrefix  = "QUOTECTL"
)

// Settings configuración de quotectl: ~/.quotectl.yaml con overrides
// QUOTECTL_SERVER, QUOTECTL_TOKEN, QUOTECTL_DEBOUNCE y QUOTECTL_TIMEOUT.
type Settings struct {
	Server   string
	Token    string
	Debounce time.Duration
	Timeout  time.Duration
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("server", "http://localhost:8080")
	v.SetDefault("debounce", "500ms")
	v.SetDefault("timeout", "15s")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	return v
}

// configPath ruta del archivo: la indicada o ~/.quotectl.yaml.
func configPath(path string) (string, error) {
	if path != "" {
		return homedir.Expand(path)
	}
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("config: directorio home: %w", err)
	}
	return filepath.Join(home, configName+".yaml"), nil
}

func loadSettings(v *viper.Viper, path string) (*Settings, error) {
	file, err := configPath(path)
	if err != nil {
		return nil, err
	}
	v.SetConfigFile(file)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: leer %s: %w", file, err)
		}
	}
	return &Settings{
		Server:   v.GetString("server"),
		Token:    v.GetString("token"),
		Debounce: v.GetDuration("debounce"),
		Timeout:  v.GetDuration("timeout"),
	}, nil
}

// saveToken persiste el token de sesión en el archivo de configuración.
func saveToken(v *viper.Viper, path, server, token string) (string, error) {
	file, err := configPath(path)
	if err != nil {
		return "", err
	}
	v.Set("server", server)
	v.Set("token", token)
	if err := v.WriteConfigAs(file); err != nil {
		return "", fmt.Errorf("config: escribir %s: %w", file, err)
	}
	return file, nil
}
