package mock

import "sync"

// Interceptor records method invocations so tests can assert on what a
// component did to its collaborator.
type Interceptor struct {
	m      sync.Mutex
	Events map[string][]interface{}
}

func NewInterceptor() *Interceptor {
	return &Interceptor{
		Events: make(map[string][]interface{}),
	}
}

func (i *Interceptor) Reset() {
	i.m.Lock()
	defer i.m.Unlock()

	i.Events = make(map[string][]interface{})
}

func (i *Interceptor) Record(name string, args []interface{}) {
	i.m.Lock()
	defer i.m.Unlock()

	events := i.Events
	v, ok := events[name]
	if !ok {
		v = []interface{}{}
	}

	events[name] = append(v, interface{}(args))
}

// Calls returns how many times name was recorded.
func (i *Interceptor) Calls(name string) int {
	i.m.Lock()
	defer i.m.Unlock()
	return len(i.Events[name])
}
