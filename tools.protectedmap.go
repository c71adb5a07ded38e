package uvgrtp

import "github.com/kar8uncle/uvgRTP/my"

/*
 SDESRegistry holds the local session's own SDES items (CNAME mandatory,
 NAME/EMAIL/PHONE/LOC/TOOL/NOTE optional), keyed by the rtcp.SDES_*
 item type constant so the Scheduler can assemble an SDES chunk for
 self without touching caller-facing API surface. Adapted from
 tools.protectedmap.go's generic string-keyed map, narrowed to the
 fixed SDES item-type key space used here.
*/
type SDESRegistry struct {
	my.RWMutex
	d map[int]string
}

func NewSDESRegistry() *SDESRegistry {
	m := new(SDESRegistry)
	m.Init()
	return m
}

func (m *SDESRegistry) Init() {
	m.d = make(map[int]string)
}

func (m *SDESRegistry) Set(kind int, text string) {
	m.Lock()
	defer m.Unlock()

	m.d[kind] = text
}

func (m *SDESRegistry) Get(kind int) (string, bool) {
	m.RLock()
	defer m.RUnlock()

	text, ok := m.d[kind]
	return text, ok
}

func (m *SDESRegistry) Del(kind int) {
	m.Lock()
	defer m.Unlock()
	delete(m.d, kind)
}

// Items returns a stable copy of all set items, suitable for assembling
// a rtcp.SDESChunk.
func (m *SDESRegistry) Items() map[int]string {
	m.RLock()
	defer m.RUnlock()

	items := make(map[int]string, len(m.d))
	for k, v := range m.d {
		items[k] = v
	}
	return items
}
