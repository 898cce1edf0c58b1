package app

// RunRegistry tracks the engines behind live connections (in-memory, Redis, etc).
type RunRegistry interface {
	Register(id string, engine *Engine)
	Get(id string) (*Engine, bool)
	Remove(id string)
	Count() int
}
