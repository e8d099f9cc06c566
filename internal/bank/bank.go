// Package bank reads question banks from YAML and ships the built-in
// eco-awareness bank.
package bank

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"eco-quiz-engine/internal/domain"
	"gopkg.in/yaml.v3"
)

// DefaultID is the id of the embedded bank.
const DefaultID = "eco"

//go:embed eco.yaml
var ecoYAML []byte

// Default returns the embedded eco-awareness bank.
func Default() domain.Bank {
	b, err := Parse(ecoYAML)
	if err != nil {
		panic("bank: embedded eco.yaml is invalid: " + err.Error())
	}
	return b
}

// Parse decodes a YAML bank document.
func Parse(data []byte) (domain.Bank, error) {
	var b domain.Bank
	if err := yaml.Unmarshal(data, &b); err != nil {
		return domain.Bank{}, fmt.Errorf("decode bank: %w", err)
	}
	return b, nil
}

// LoadFile reads a YAML bank from path. An empty id is filled from the file name.
func LoadFile(path string) (domain.Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Bank{}, err
	}
	b, err := Parse(data)
	if err != nil {
		return domain.Bank{}, fmt.Errorf("%s: %w", path, err)
	}
	if b.ID == "" {
		b.ID = trimExt(filepath.Base(path))
	}
	return b, nil
}

// FileLoader loads banks from {dir}/{id}.yaml.
type FileLoader struct {
	dir string
}

func NewFileLoader(dir string) *FileLoader {
	return &FileLoader{dir: dir}
}

func (l *FileLoader) LoadBank(_ context.Context, bankID string) (domain.Bank, error) {
	if bankID == "" || bankID != filepath.Base(bankID) {
		return domain.Bank{}, domain.ErrBankNotFound
	}
	b, err := LoadFile(filepath.Join(l.dir, bankID+".yaml"))
	if errors.Is(err, os.ErrNotExist) {
		return domain.Bank{}, domain.ErrBankNotFound
	}
	return b, err
}

func trimExt(name string) string {
	return name[:len(name)-len(filepath.Ext(name))]
}
