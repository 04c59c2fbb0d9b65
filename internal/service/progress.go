package service

import "sync"

// ProgressEvent is one observable step of a running analysis, pushed to
// websocket subscribers and mirrored into the task row.
type ProgressEvent struct {
	TaskId   string `json:"task_id"`
	State    string `json:"state"`
	Progress int    `json:"progress"`
	Message  string `json:"message,omitempty"`
}

// progressHub fans analysis progress out to any number of subscribers.
// Slow subscribers drop events instead of stalling the pipeline.
type progressHub struct {
	mu   sync.Mutex
	subs map[string]map[chan ProgressEvent]struct{}
}

func newProgressHub() *progressHub {
	return &progressHub{subs: make(map[string]map[chan ProgressEvent]struct{})}
}

func (h *progressHub) subscribe(taskId string) (<-chan ProgressEvent, func()) {
	ch := make(chan ProgressEvent, 16)
	h.mu.Lock()
	if h.subs[taskId] == nil {
		h.subs[taskId] = make(map[chan ProgressEvent]struct{})
	}
	h.subs[taskId][ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if set, ok := h.subs[taskId]; ok {
			delete(set, ch)
			if len(set) == 0 {
				delete(h.subs, taskId)
			}
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

func (h *progressHub) publish(event ProgressEvent) {
	h.mu.Lock()
	for ch := range h.subs[event.TaskId] {
		select {
		case ch <- event:
		default:
		}
	}
	h.mu.Unlock()
}

// listeners is shared across Service instances for the same reason runs is.
var listeners = newProgressHub()

// Subscribe streams progress events for a task until cancel is called.
func Subscribe(taskId string) (<-chan ProgressEvent, func()) {
	return listeners.subscribe(taskId)
}
