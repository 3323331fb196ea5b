package testutil

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Common test errors
var (
	ErrTest        = errors.New("test error")
	ErrConstructor = errors.New("constructor error")
	ErrDisposal    = errors.New("disposal error")
)

// Tire is the interface most fixtures bind.
type Tire interface {
	Brand() string
	Serial() string
}

// Goodyear is the default Tire.
type Goodyear struct {
	ID string
}

func NewGoodyear() *Goodyear {
	return &Goodyear{ID: uuid.NewString()}
}

func (*Goodyear) Brand() string    { return "Goodyear" }
func (g *Goodyear) Serial() string { return g.ID }

// Pirelli is the alternative Tire.
type Pirelli struct {
	ID string
}

func NewPirelli() *Pirelli {
	return &Pirelli{ID: uuid.NewString()}
}

func (*Pirelli) Brand() string    { return "Pirelli" }
func (p *Pirelli) Serial() string { return p.ID }

// Vehicle depends on a Tire.
type Vehicle interface {
	Tire() Tire
}

// Radio is an optional Car property. Nothing binds it by default.
type Radio interface {
	Station() string
}

// FM is a Radio.
type FM struct {
	Frequency string
}

func (f *FM) Station() string { return f.Frequency }

// Car is a Vehicle built from a Tire, with injectable properties.
type Car struct {
	ID     string
	Front  Tire
	Radio  Radio `inject:"optional"`
	Answer int   `inject:"constant=answer,optional"`
}

func NewCar(tire Tire) *Car {
	return &Car{ID: uuid.NewString(), Front: tire}
}

func (c *Car) Tire() Tire { return c.Front }

// Truck takes two tires of the same type, told apart by name.
type Truck struct {
	Front Tire
	Rear  Tire
}

func NewTruck(front, rear Tire) *Truck {
	return &Truck{Front: front, Rear: rear}
}

func (t *Truck) Tire() Tire { return t.Front }

// Engine is built from a constant.
type Engine struct {
	Cylinders int
}

func NewEngine(cylinders int) *Engine {
	return &Engine{Cylinders: cylinders}
}

// Plugin is used for list and map multibindings.
type Plugin interface {
	Name() string
}

// NamedPlugin is a Plugin with a fixed name.
type NamedPlugin struct {
	PluginName string
}

func NewPlugin(name string) *NamedPlugin {
	return &NamedPlugin{PluginName: name}
}

func (p *NamedPlugin) Name() string { return p.PluginName }

// TireProvider produces Goodyear tires whose serial is the requested name.
type TireProvider struct {
	Calls atomic.Int64
}

func (p *TireProvider) Get(name string) (any, error) {
	p.Calls.Add(1)
	if name == "" {
		name = uuid.NewString()
	}
	return &Goodyear{ID: name}, nil
}

// FailingProvider always returns ErrTest.
type FailingProvider struct{}

func (FailingProvider) Get(string) (any, error) {
	return nil, ErrTest
}

// NotAProvider looks like a provider but has the wrong method set.
type NotAProvider struct {
	ID string
}

// Counter counts constructor invocations.
type Counter struct {
	n atomic.Int64
}

func (c *Counter) Inc() int64 { return c.n.Add(1) }

func (c *Counter) Load() int64 { return c.n.Load() }

// CloseLog records the order resources are closed in.
type CloseLog struct {
	mu    sync.Mutex
	names []string
}

func (l *CloseLog) record(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.names = append(l.names, name)
}

// Names returns the closed resource names in order.
func (l *CloseLog) Names() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.names))
	copy(out, l.names)
	return out
}

// Resource is an io.Closer that reports to a CloseLog.
type Resource struct {
	Name string
	Log  *CloseLog
	Fail bool
}

func (r *Resource) Close() error {
	r.Log.record(r.Name)
	if r.Fail {
		return fmt.Errorf("%s: %w", r.Name, ErrDisposal)
	}
	return nil
}

// SelfReferencing depends on itself through its constructor.
type SelfReferencing struct{}

func NewSelfReferencing(*SelfReferencing) *SelfReferencing {
	return &SelfReferencing{}
}

// CycleA and CycleB depend on each other.
type CycleA struct{ B *CycleB }
type CycleB struct{ A *CycleA }

func NewCycleA(b *CycleB) *CycleA { return &CycleA{B: b} }
func NewCycleB(a *CycleA) *CycleB { return &CycleB{A: a} }
