package events

import "github.com/atomicstack/mdns-dashboard/internal/logging"

type UITracer struct{}

type FilterTracer struct{}

var (
	UI     = UITracer{}
	Filter = FilterTracer{}
)

func (UITracer) Tab(tab string) {
	logging.Trace("ui.tab", map[string]interface{}{"tab": tab})
}

func (UITracer) Cursor(pane string, cursor int) {
	logging.Trace("ui.cursor", map[string]interface{}{"pane": pane, "cursor": cursor})
}

func (UITracer) Quit(reason string) {
	logging.Trace("ui.quit", map[string]interface{}{"reason": reason})
}

func (FilterTracer) Enter(pane string) {
	logging.Trace("filter.enter", map[string]interface{}{"pane": pane})
}

func (FilterTracer) Edit(pane, buffer string) {
	logging.Trace("filter.edit", map[string]interface{}{"pane": pane, "buffer": buffer})
}

func (FilterTracer) Cancel(pane string) {
	logging.Trace("filter.cancel", map[string]interface{}{"pane": pane})
}

func (FilterTracer) Apply(pane, pattern string) {
	logging.Trace("filter.apply", map[string]interface{}{"pane": pane, "pattern": pattern})
}

func (FilterTracer) Reject(pane string, err error) {
	logging.Trace("filter.reject", map[string]interface{}{"pane": pane, "error": err.Error()})
}
