package scene

import (
	"errors"
	"fmt"
	"sync"
)

// Attachable любой ресурс, который можно прикрепить к сцене.
type Attachable interface {
	SceneID() string
}

var (
	// ErrAlreadyAttached ресурс с таким ID уже есть в сцене
	ErrAlreadyAttached = errors.New("ресурс уже прикреплён к сцене")
	// ErrNotAttached ресурса с таким ID в сцене нет
	ErrNotAttached = errors.New("ресурс не прикреплён к сцене")
)

// Graph граф сцены: реестр прикреплённых визуальных ресурсов.
// Дубликат прикрепления и открепление чужого ресурса считаются
// нарушением протокола и возвращают ошибку.
type Graph struct {
	mu    sync.RWMutex
	nodes map[string]Attachable
}

// NewGraph создаёт пустой граф сцены
func NewGraph() *Graph {
	return &Graph{
		nodes: make(map[string]Attachable),
	}
}

// Attach прикрепляет ресурс к сцене.
func (g *Graph) Attach(node Attachable) error {
	id := node.SceneID()
	if id == "" {
		return fmt.Errorf("ресурс без идентификатора не может быть прикреплён")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.nodes[id]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyAttached, id)
	}
	g.nodes[id] = node
	return nil
}

// Detach открепляет ресурс от сцены.
func (g *Graph) Detach(node Attachable) error {
	id := node.SceneID()

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.nodes[id]; !exists {
		return fmt.Errorf("%w: %s", ErrNotAttached, id)
	}
	delete(g.nodes, id)
	return nil
}

// Has проверяет присутствие ресурса в сцене
func (g *Graph) Has(id string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, exists := g.nodes[id]
	return exists
}

// Count возвращает число прикреплённых ресурсов
func (g *Graph) Count() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}
