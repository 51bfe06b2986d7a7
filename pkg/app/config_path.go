package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ilkoid/poncho-techsupport/pkg/config"
	"github.com/ilkoid/poncho-techsupport/pkg/utils"
)

// ConfigPathFinder определяет стратегию поиска файла конфигурации.
type ConfigPathFinder interface {
	FindConfigPath() string
}

// DefaultConfigPathFinder ищет конфиг по порядку:
// 1. Флаг -config (если указан)
// 2. Текущая директория (config.yaml, затем config.toml)
// 3. Директория бинарника
// 4. Родительские директории (для запуска из cmd/<tool>/)
type DefaultConfigPathFinder struct {
	// ConfigFlag - значение флага -config, если указан
	ConfigFlag string
}

var configNames = []string{"config.yaml", "config.toml"}

// FindConfigPath возвращает путь к конфигу. Если файл не найден,
// возвращает ./config.yaml (которого может не быть).
func (f *DefaultConfigPathFinder) FindConfigPath() string {
	if f.ConfigFlag != "" {
		return resolveAbsPath(f.ConfigFlag)
	}

	dirs := []string{"."}
	if execPath, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Dir(execPath))
	}
	dirs = append(dirs, filepath.Join("..", ".."), "..")

	for _, dir := range dirs {
		for _, name := range configNames {
			p := filepath.Join(dir, name)
			if _, err := os.Stat(p); err == nil {
				return resolveAbsPath(p)
			}
		}
	}

	return resolveAbsPath("config.yaml")
}

// InitializeConfig загружает конфигурацию.
//
// Отсутствующий файл не ошибка, если путь не задан флагом явно:
// используется config.Default() с переопределениями из ENV.
func InitializeConfig(finder ConfigPathFinder) (*config.AppConfig, string, error) {
	cfgPath := finder.FindConfigPath()

	cfg, err := config.Load(cfgPath)
	if err == nil {
		return cfg, cfgPath, nil
	}

	explicit := false
	if f, ok := finder.(*DefaultConfigPathFinder); ok && f.ConfigFlag != "" {
		explicit = true
	}
	if _, statErr := os.Stat(cfgPath); !explicit && errors.Is(statErr, os.ErrNotExist) {
		utils.Warn("Config file not found, using built-in defaults", "path", cfgPath)
		return config.Default(), "", nil
	}

	return nil, "", fmt.Errorf("failed to load config from %s: %w", cfgPath, err)
}

func resolveAbsPath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	return abs
}
